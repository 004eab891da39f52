// Package zlib implements ports.Compressor with zlib at best compression.
package zlib

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/bft-labs/qrship/internal/ports"
)

// Compressor writes a complete zlib stream (header, DEFLATE body, Adler-32)
// for each call. The device inflates it with a stock zlib decoder.
type Compressor struct {
	level int
}

// New returns a Compressor at zlib.BestCompression.
func New() *Compressor {
	return &Compressor{level: zlib.BestCompression}
}

// NewWithLevel returns a Compressor at the given zlib level.
func NewWithLevel(level int) (*Compressor, error) {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return nil, fmt.Errorf("zlib: invalid compression level %d", level)
	}
	return &Compressor{level: level}, nil
}

// Compress returns the zlib-compressed form of raw.
func (c *Compressor) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

var _ ports.Compressor = (*Compressor)(nil)
