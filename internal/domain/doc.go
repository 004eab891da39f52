// Package domain contains the core entities and value objects for qrship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (compression, QR generation,
// logging) and contains only the binary layouts and their invariants.
//
// # Entities
//
//   - [SourceFile]: one named file as received from the upstream document
//   - [Container]: the framed, compressed representation of a SourceFile
//   - [Chunk]: a contiguous slice of a Container bounded by the per-code budget
//   - [WireFrame]: a chunk plus sequence metadata and two checksums
//   - [Symbol]: the module matrix of one generated QR code
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction
//   - Created fresh per request and never shared between requests
//   - Byte-compatible with the device-side reader
package domain
