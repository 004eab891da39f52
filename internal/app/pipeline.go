// Package app drives source files through framing, chunking, wire encoding
// and rendering.
package app

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bft-labs/qrship/internal/chunker"
	"github.com/bft-labs/qrship/internal/container"
	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
	"github.com/bft-labs/qrship/internal/wire"
)

// Dependencies are the capabilities the pipeline consumes.
type Dependencies struct {
	Compressor  ports.Compressor
	Checksummer ports.Checksummer
	Symbols     ports.SymbolEncoder
	Images      ports.ImageRenderer
	Logger      ports.Logger
}

// RenderedCode is one scannable image and its position in the sequence.
type RenderedCode struct {
	Sequence int
	Total    int
	SVG      string
}

// RenderedFile is the ordered output for one source file.
type RenderedFile struct {
	Name        string
	Description string

	// ContainerSize is the framed, compressed size in bytes
	ContainerSize int

	// ContainerChecksum is the hex container checksum shared by every code
	ContainerChecksum string

	Codes []RenderedCode
}

// Option configures optional behavior of a Pipeline.
type Option func(*Pipeline)

// WithObserver registers an observer for state changes and rendered codes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// Pipeline holds no mutable state after construction and may be used from
// multiple goroutines.
type Pipeline struct {
	cfg      domain.QrConfig
	deps     Dependencies
	encoder  *wire.Encoder
	logger   ports.Logger
	observer Observer
}

// NewPipeline validates cfg and deps and returns a ready pipeline.
func NewPipeline(cfg domain.QrConfig, deps Dependencies, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Compressor == nil:
		return nil, errors.New("app: compressor is required")
	case deps.Checksummer == nil:
		return nil, errors.New("app: checksummer is required")
	case deps.Symbols == nil:
		return nil, errors.New("app: symbol encoder is required")
	case deps.Images == nil:
		return nil, errors.New("app: image renderer is required")
	case deps.Logger == nil:
		return nil, errors.New("app: logger is required")
	}

	p := &Pipeline{
		cfg:     cfg,
		deps:    deps,
		encoder: wire.NewEncoder(deps.Checksummer),
		logger:  deps.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Frame builds the container for file.
func (p *Pipeline) Frame(file domain.SourceFile) (domain.Container, error) {
	p.logger.Debug("framing file",
		ports.String("file", file.Name),
		ports.Int("raw_length", len(file.Raw)),
		ports.String("type_tag", fmt.Sprintf("%q", file.TypeTag())),
	)
	c, err := container.Build(file, p.deps.Compressor)
	if err != nil {
		return domain.Container{}, err
	}
	p.logger.Debug("framed file",
		ports.String("file", file.Name),
		ports.Int("compressed_length", int(c.CompressedLength())),
		ports.Int("container_length", c.Len()),
	)
	return c, nil
}

// Chunk splits c by the configured bytes per code.
func (p *Pipeline) Chunk(c domain.Container) ([]domain.Chunk, error) {
	return chunker.Split(c.Bytes(), p.cfg.BytesPerCode)
}

// Encode wraps chunks in wire frames.
func (p *Pipeline) Encode(c domain.Container, chunks []domain.Chunk) ([]domain.WireFrame, error) {
	return p.encoder.Encode(c, chunks)
}

// Render generates and draws the QR code for one frame.
func (p *Pipeline) Render(frame domain.WireFrame) (string, error) {
	symbol, err := p.deps.Symbols.Encode(frame.Bytes(), p.cfg.Version, p.cfg.Level)
	if err != nil {
		return "", err
	}
	img, err := p.deps.Images.Render(symbol)
	if err != nil {
		return "", err
	}
	return img, nil
}

// RenderFile runs file through every stage and returns its codes in order.
func (p *Pipeline) RenderFile(ctx context.Context, file domain.SourceFile) (RenderedFile, error) {
	state := StateRawInput
	fail := func(stage domain.Stage, err error) (RenderedFile, error) {
		p.transition(file.Name, &state, StateFailed)
		return RenderedFile{}, &domain.FileError{File: file.Name, Stage: stage, Err: err}
	}

	c, err := p.Frame(file)
	if err != nil {
		return fail(domain.StageFrame, err)
	}
	p.transition(file.Name, &state, StateFramed)

	chunks, err := p.Chunk(c)
	if err != nil {
		return fail(domain.StageChunk, err)
	}
	p.transition(file.Name, &state, StateChunked)
	p.logger.Debug("chunked container", ports.String("file", file.Name), ports.Int("codes", len(chunks)))

	frames, err := p.Encode(c, chunks)
	if err != nil {
		return fail(domain.StageEncode, err)
	}
	p.transition(file.Name, &state, StateEncoded)

	out := RenderedFile{
		Name:          file.Name,
		Description:   file.Description,
		ContainerSize: c.Len(),
		Codes:         make([]RenderedCode, 0, len(frames)),
	}
	if len(frames) > 0 {
		out.ContainerChecksum = hex.EncodeToString(frames[0].ContainerChecksum[:])
	}

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return fail(domain.StageRender, err)
		}
		p.logger.Debug("rendering code",
			ports.String("file", file.Name),
			ports.Int("sequence", int(f.Sequence)),
			ports.Int("frame_size", f.Len()),
		)
		img, err := p.Render(f)
		if err != nil {
			return fail(domain.StageRender, fmt.Errorf("code %d/%d: %w", f.Sequence, f.Total, err))
		}
		out.Codes = append(out.Codes, RenderedCode{
			Sequence: int(f.Sequence),
			Total:    int(f.Total),
			SVG:      img,
		})
		if p.observer != nil {
			p.observer.OnCodeRendered(file.Name, int(f.Sequence), int(f.Total))
		}
	}
	p.transition(file.Name, &state, StateRendered)

	p.logger.Info("rendered file",
		ports.String("file", file.Name),
		ports.Int("codes", len(out.Codes)),
		ports.String("checksum", p.deps.Checksummer.Name()+":"+out.ContainerChecksum),
	)
	return out, nil
}

// RenderBatch renders files in order. The first failure aborts the batch
// and no partial results are returned.
func (p *Pipeline) RenderBatch(ctx context.Context, files []domain.SourceFile) ([]RenderedFile, error) {
	out := make([]RenderedFile, 0, len(files))
	for _, f := range files {
		rf, err := p.RenderFile(ctx, f)
		if err != nil {
			p.logger.Error("batch aborted", ports.String("file", f.Name), ports.Err(err))
			return nil, err
		}
		out = append(out, rf)
	}
	return out, nil
}

func (p *Pipeline) transition(file string, state *State, next State) {
	prev := *state
	*state = next
	if p.observer != nil {
		p.observer.OnStateChange(file, prev, next)
	}
}
