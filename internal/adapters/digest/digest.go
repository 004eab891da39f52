// Package digest provides the 128-bit checksummers used in wire frames.
package digest

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// Algorithm names accepted by ByName.
const (
	MD5    = "md5"
	BLAKE3 = "blake3"
)

// Default is the algorithm the stock device firmware verifies.
const Default = MD5

type md5Sum struct{}

func (md5Sum) Name() string { return MD5 }

func (md5Sum) Sum(b []byte) domain.Checksum { return md5.Sum(b) }

// blake3Sum truncates the BLAKE3 output to 16 bytes, which equals the
// first 16 bytes of its extendable output.
type blake3Sum struct{}

func (blake3Sum) Name() string { return BLAKE3 }

func (blake3Sum) Sum(b []byte) domain.Checksum {
	full := blake3.Sum256(b)
	var out domain.Checksum
	copy(out[:], full[:domain.ChecksumSize])
	return out
}

var registry = map[string]ports.Checksummer{
	MD5:    md5Sum{},
	BLAKE3: blake3Sum{},
}

// NewMD5 returns the MD5 checksummer.
func NewMD5() ports.Checksummer { return md5Sum{} }

// NewBLAKE3 returns the truncated BLAKE3 checksummer.
func NewBLAKE3() ports.Checksummer { return blake3Sum{} }

// ByName looks up a checksummer by algorithm name, case-insensitive.
// An empty name selects Default.
func ByName(name string) (ports.Checksummer, error) {
	if name == "" {
		name = Default
	}
	c, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown checksum algorithm %q (want one of %s)",
			domain.ErrInvalidConfig, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists the supported algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
