// Package container builds the fixed-layout container the device reassembles.
package container

import (
	"fmt"
	"math"

	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// NameField returns the 8-byte name field for name: its bytes, zero-padded,
// truncated when longer than the field.
func NameField(name string) [domain.NameSize]byte {
	var field [domain.NameSize]byte
	copy(field[:], name)
	return field
}

// Build frames file into a Container, compressing its raw bytes with c.
func Build(file domain.SourceFile, c ports.Compressor) (domain.Container, error) {
	if len(file.Raw) < domain.MinRawSize {
		return domain.Container{}, fmt.Errorf("%w: %d bytes, need at least %d for the type tag",
			domain.ErrTooShort, len(file.Raw), domain.MinRawSize)
	}
	if uint64(len(file.Raw)) > math.MaxUint32 {
		return domain.Container{}, fmt.Errorf("%w: raw length %d does not fit the length field",
			domain.ErrCapacityExceeded, len(file.Raw))
	}

	var tag [domain.TypeTagSize]byte
	copy(tag[:], file.TypeTag())

	compressed, err := c.Compress(file.Raw)
	if err != nil {
		return domain.Container{}, fmt.Errorf("%w: %v", domain.ErrCompression, err)
	}
	if uint64(len(compressed)) > math.MaxUint32 {
		return domain.Container{}, fmt.Errorf("%w: compressed length %d does not fit the length field",
			domain.ErrCapacityExceeded, len(compressed))
	}

	return domain.NewContainer(NameField(file.Name), tag, uint32(len(file.Raw)), compressed), nil
}
