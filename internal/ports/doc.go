// Package ports defines the interfaces (ports) that connect the encoding
// pipeline to infrastructure adapters.
//
// Ports are the boundaries between the application core and the
// third-party capabilities it consumes. They say what the pipeline needs
// without saying how it is fulfilled, so every stage can run against a
// deterministic fake in tests.
//
// # Port Interfaces
//
//   - [Compressor]: DEFLATE-class compression at maximum ratio
//   - [Checksummer]: 128-bit digest for chunk and container checksums
//   - [SymbolEncoder]: wire frame bytes to a QR module matrix
//   - [ImageRenderer]: module matrix to vector image markup
//   - [Logger]: structured logging abstraction
//
// Concrete implementations live under internal/adapters.
package ports
