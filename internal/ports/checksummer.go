package ports

import "github.com/bft-labs/qrship/internal/domain"

// Checksummer computes the 128-bit digest written into wire frames.
// The algorithm must match what the receiving device verifies.
type Checksummer interface {
	// Name identifies the algorithm (e.g. "md5").
	Name() string

	// Sum digests b.
	Sum(b []byte) domain.Checksum
}
