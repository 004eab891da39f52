// Package chunker splits a container into per-code byte ranges.
package chunker

import (
	"fmt"

	"github.com/bft-labs/qrship/internal/domain"
)

// Count returns ceil(n / bytesPerCode).
func Count(n, bytesPerCode int) int {
	if bytesPerCode <= 0 || n <= 0 {
		return 0
	}
	total := n / bytesPerCode
	if n%bytesPerCode != 0 {
		total++
	}
	return total
}

// Split cuts data into contiguous chunks of bytesPerCode bytes; the last
// chunk holds the remainder. It fails without producing chunks when more
// than domain.MaxCodes would be needed.
func Split(data []byte, bytesPerCode int) ([]domain.Chunk, error) {
	if bytesPerCode <= 0 {
		return nil, fmt.Errorf("%w: bytes per code must be positive, got %d", domain.ErrInvalidConfig, bytesPerCode)
	}
	total := Count(len(data), bytesPerCode)
	if total > domain.MaxCodes {
		return nil, fmt.Errorf("%w: %d bytes need %d codes of %d bytes, limit is %d",
			domain.ErrCapacityExceeded, len(data), total, bytesPerCode, domain.MaxCodes)
	}

	chunks := make([]domain.Chunk, 0, total)
	for k := 1; k <= total; k++ {
		start := (k - 1) * bytesPerCode
		end := len(data)
		if end-start > bytesPerCode {
			end = start + bytesPerCode
		}
		chunks = append(chunks, domain.Chunk{
			Sequence: k,
			Total:    total,
			Payload:  data[start:end:end],
		})
	}
	return chunks, nil
}
