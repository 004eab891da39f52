// Package qr implements ports.SymbolEncoder on top of go-qrcode.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// Encoder generates QR symbols at a forced version. The symbol keeps the
// standard 4-module quiet zone.
type Encoder struct{}

// New returns an Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode builds a symbol for data. A payload that does not fit the
// version/level combination fails with domain.ErrCapacityExceeded.
func (e *Encoder) Encode(data []byte, version int, level domain.ECLevel) (domain.Symbol, error) {
	rl, err := recoveryLevel(level)
	if err != nil {
		return domain.Symbol{}, err
	}
	if version < 1 || version > 40 {
		return domain.Symbol{}, fmt.Errorf("%w: qr version must be 1-40, got %d", domain.ErrInvalidConfig, version)
	}

	code, err := qrcode.NewWithForcedVersion(string(data), version, rl)
	if err != nil {
		if isCapacityError(err) {
			return domain.Symbol{}, fmt.Errorf("%w: %d bytes at version %d level %s: %v",
				domain.ErrCapacityExceeded, len(data), version, level, err)
		}
		return domain.Symbol{}, fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	modules := code.Bitmap()
	if len(modules) == 0 {
		return domain.Symbol{}, fmt.Errorf("%w: empty bitmap", domain.ErrRender)
	}
	return domain.Symbol{
		Version: code.VersionNumber,
		Level:   level,
		Modules: modules,
	}, nil
}

func recoveryLevel(level domain.ECLevel) (qrcode.RecoveryLevel, error) {
	switch level {
	case domain.ECLevelL:
		return qrcode.Low, nil
	case domain.ECLevelM:
		return qrcode.Medium, nil
	case domain.ECLevelQ:
		return qrcode.High, nil
	case domain.ECLevelH:
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("%w: unknown error correction level %d", domain.ErrInvalidConfig, int(level))
	}
}

// go-qrcode reports capacity failures only through the message text.
func isCapacityError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too large") || strings.Contains(msg, "too long")
}

var _ ports.SymbolEncoder = (*Encoder)(nil)
