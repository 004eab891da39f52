// Package qrship turns files into sequences of QR codes that a camera-only
// device scans back in order.
//
// Example usage:
//
//	files, err := qrship.LoadDocument(text)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rendered, err := qrship.Render(context.Background(), files, qrship.DefaultQrConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, code := range rendered[0].Codes {
//	    fmt.Printf("%d / %d\n%s\n", code.Sequence, code.Total, code.SVG)
//	}
package qrship

import (
	"context"

	"github.com/bft-labs/qrship/internal/adapters/digest"
	logadapter "github.com/bft-labs/qrship/internal/adapters/log"
	"github.com/bft-labs/qrship/internal/adapters/qr"
	"github.com/bft-labs/qrship/internal/adapters/svg"
	"github.com/bft-labs/qrship/internal/adapters/zlib"
	"github.com/bft-labs/qrship/internal/app"
	"github.com/bft-labs/qrship/internal/document"
	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

type (
	// QrConfig holds bytes per code, QR version and error-correction level.
	QrConfig = domain.QrConfig

	// ECLevel is a QR error-correction level.
	ECLevel = domain.ECLevel

	// SourceFile is one named file with its raw bytes.
	SourceFile = domain.SourceFile

	// RenderedFile is the ordered output for one file.
	RenderedFile = app.RenderedFile

	// RenderedCode is one SVG image with its sequence position.
	RenderedCode = app.RenderedCode

	// Pipeline renders files; safe for concurrent use.
	Pipeline = app.Pipeline

	// Observer receives state changes and per-code progress.
	Observer = app.Observer

	// State is a step of the per-file pipeline.
	State = app.State

	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField represents a structured log field.
	LogField = ports.Field

	// FileError attributes a failure to a file and pipeline stage.
	FileError = domain.FileError
)

// Error-correction levels.
const (
	ECLevelL = domain.ECLevelL
	ECLevelM = domain.ECLevelM
	ECLevelQ = domain.ECLevelQ
	ECLevelH = domain.ECLevelH
)

// Pipeline states reported to an Observer.
const (
	StateRawInput = app.StateRawInput
	StateFramed   = app.StateFramed
	StateChunked  = app.StateChunked
	StateEncoded  = app.StateEncoded
	StateRendered = app.StateRendered
	StateFailed   = app.StateFailed
)

// Errors returned by the pipeline; check with errors.Is.
var (
	ErrDecode           = domain.ErrDecode
	ErrTooShort         = domain.ErrTooShort
	ErrCapacityExceeded = domain.ErrCapacityExceeded
	ErrCompression      = domain.ErrCompression
	ErrRender           = domain.ErrRender
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrNoFiles          = domain.ErrNoFiles
)

// DefaultQrConfig returns 630 bytes per code, version 21, level M.
func DefaultQrConfig() QrConfig {
	return domain.DefaultQrConfig()
}

// ParseECLevel parses "L", "M", "Q" or "H".
func ParseECLevel(s string) (ECLevel, error) {
	return domain.ParseECLevel(s)
}

// Option configures optional behavior of New.
type Option func(*options)

type options struct {
	logger   ports.Logger
	checksum string
	observer app.Observer
}

// WithLogger sets a logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithChecksum selects the frame checksum algorithm ("md5" or "blake3").
// The default, md5, is what the stock device firmware verifies.
func WithChecksum(name string) Option {
	return func(o *options) {
		o.checksum = name
	}
}

// WithObserver registers an observer for pipeline progress.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// New builds a Pipeline wired to zlib compression, go-qrcode symbols and
// SVG output.
func New(cfg QrConfig, opts ...Option) (*Pipeline, error) {
	o := options{checksum: digest.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logadapter.NoopLogger{}
	}

	sum, err := digest.ByName(o.checksum)
	if err != nil {
		return nil, err
	}

	var appOpts []app.Option
	if o.observer != nil {
		appOpts = append(appOpts, app.WithObserver(o.observer))
	}
	return app.NewPipeline(cfg, app.Dependencies{
		Compressor:  zlib.New(),
		Checksummer: sum,
		Symbols:     qr.New(),
		Images:      svg.New(),
		Logger:      o.logger,
	}, appOpts...)
}

// Render renders files with cfg. The first failing file aborts the batch.
func Render(ctx context.Context, files []SourceFile, cfg QrConfig, opts ...Option) ([]RenderedFile, error) {
	p, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p.RenderBatch(ctx, files)
}

// LoadDocument parses the upstream JSON array of
// {"name", "base64", "description"} entries and decodes every payload.
func LoadDocument(text []byte) ([]SourceFile, error) {
	return document.Load(text)
}

// RenderDocument loads text and renders every file it lists.
func RenderDocument(ctx context.Context, text []byte, cfg QrConfig, opts ...Option) ([]RenderedFile, error) {
	files, err := LoadDocument(text)
	if err != nil {
		return nil, err
	}
	return Render(ctx, files, cfg, opts...)
}
