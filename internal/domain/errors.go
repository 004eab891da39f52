package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent the failure classes of the encoding pipeline.
// None of them are retryable: the same input and config always reproduce
// the same error. Check them with errors.Is.
var (
	// ErrDecode is returned when the upstream payload encoding is malformed.
	ErrDecode = errors.New("qrship: malformed input encoding")

	// ErrTooShort is returned when raw bytes are too short to carry a type tag.
	ErrTooShort = errors.New("qrship: raw data too short")

	// ErrCapacityExceeded is returned when a container needs more than
	// MaxCodes codes, or a frame does not fit the configured QR version/ECC.
	ErrCapacityExceeded = errors.New("qrship: capacity exceeded")

	// ErrCompression is returned when the compressor fails.
	ErrCompression = errors.New("qrship: compression failed")

	// ErrRender is returned when symbol generation or image rendering fails
	// for reasons other than capacity.
	ErrRender = errors.New("qrship: render failed")

	// ErrInvalidConfig is returned when a QrConfig is out of range.
	ErrInvalidConfig = errors.New("qrship: invalid configuration")

	// ErrInvalidChunk is returned when chunk sequence metadata is inconsistent.
	ErrInvalidChunk = errors.New("qrship: invalid chunk sequence")

	// ErrNoFiles is returned when the upstream document carries no file list.
	ErrNoFiles = errors.New("qrship: document has no files")
)

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageDecode Stage = "decode"
	StageFrame  Stage = "frame"
	StageChunk  Stage = "chunk"
	StageEncode Stage = "encode"
	StageRender Stage = "render"
)

// FileError attributes a pipeline failure to one file and stage.
type FileError struct {
	File  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Stage, e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
