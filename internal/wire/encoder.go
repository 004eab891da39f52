// Package wire wraps container chunks into device-readable wire frames.
package wire

import (
	"fmt"

	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// Encoder stamps chunks with sequence metadata and checksums.
type Encoder struct {
	sum ports.Checksummer
}

// NewEncoder returns an Encoder using sum for both checksums.
func NewEncoder(sum ports.Checksummer) *Encoder {
	return &Encoder{sum: sum}
}

// Encode returns one frame per chunk. The container checksum is computed
// once over the whole container and shared by every frame.
func (e *Encoder) Encode(c domain.Container, chunks []domain.Chunk) ([]domain.WireFrame, error) {
	total := len(chunks)
	if total > domain.MaxCodes {
		return nil, fmt.Errorf("%w: %d chunks, limit is %d", domain.ErrCapacityExceeded, total, domain.MaxCodes)
	}

	whole := e.sum.Sum(c.Bytes())
	frames := make([]domain.WireFrame, 0, total)
	for i, ch := range chunks {
		if ch.Sequence != i+1 || ch.Total != total {
			return nil, fmt.Errorf("%w: chunk %d reports %d/%d, want %d/%d",
				domain.ErrInvalidChunk, i, ch.Sequence, ch.Total, i+1, total)
		}
		frames = append(frames, domain.WireFrame{
			Sequence:          uint8(ch.Sequence),
			Total:             uint8(total),
			ChunkChecksum:     e.sum.Sum(ch.Payload),
			ContainerChecksum: whole,
			Payload:           ch.Payload,
		})
	}
	return frames, nil
}
