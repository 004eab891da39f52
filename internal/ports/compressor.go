package ports

// Compressor compresses a whole buffer in one call.
// Implementations must be deterministic: equal input yields equal output.
type Compressor interface {
	Compress(raw []byte) ([]byte, error)
}

// CompressorFunc adapts a function to Compressor.
type CompressorFunc func(raw []byte) ([]byte, error)

// Compress calls f(raw).
func (f CompressorFunc) Compress(raw []byte) ([]byte, error) { return f(raw) }
