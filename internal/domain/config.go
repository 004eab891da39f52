package domain

import (
	"fmt"
	"strings"
)

// ECLevel is a QR error-correction level.
type ECLevel int

const (
	ECLevelL ECLevel = iota
	ECLevelM
	ECLevelQ
	ECLevelH
)

// String returns the single-letter name of the level.
func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	default:
		return fmt.Sprintf("ECLevel(%d)", int(l))
	}
}

// ParseECLevel parses "L", "M", "Q" or "H", case-insensitive.
func ParseECLevel(s string) (ECLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	default:
		return 0, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidConfig, s)
	}
}

// Default QR parameters, matched to the receiving device's scanner.
// Version 20 is the documented fit for 630-byte chunks but fails
// intermittently at level M, so 21 is used.
const (
	DefaultBytesPerCode = 630
	DefaultVersion      = 21
	DefaultECLevel      = ECLevelM
)

// QrConfig holds the only tunable knobs of the encoding pipeline.
type QrConfig struct {
	// BytesPerCode is the container bytes carried by each code
	BytesPerCode int

	// Version is the forced QR symbol version (1-40)
	Version int

	// Level is the error-correction level
	Level ECLevel
}

// DefaultQrConfig returns the device defaults.
func DefaultQrConfig() QrConfig {
	return QrConfig{
		BytesPerCode: DefaultBytesPerCode,
		Version:      DefaultVersion,
		Level:        DefaultECLevel,
	}
}

// Validate checks that all fields are in range.
func (c QrConfig) Validate() error {
	if c.BytesPerCode <= 0 {
		return fmt.Errorf("%w: bytes per code must be positive, got %d", ErrInvalidConfig, c.BytesPerCode)
	}
	if c.BytesPerCode > MaxBytesPerCode {
		return fmt.Errorf("%w: bytes per code %d cannot fit any qr version, max %d",
			ErrInvalidConfig, c.BytesPerCode, MaxBytesPerCode)
	}
	if c.Version < 1 || c.Version > 40 {
		return fmt.Errorf("%w: qr version must be 1-40, got %d", ErrInvalidConfig, c.Version)
	}
	if c.Level < ECLevelL || c.Level > ECLevelH {
		return fmt.Errorf("%w: unknown error correction level %d", ErrInvalidConfig, int(c.Level))
	}
	return nil
}
