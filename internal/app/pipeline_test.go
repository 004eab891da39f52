package app

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/bft-labs/qrship/internal/adapters/digest"
	logadapter "github.com/bft-labs/qrship/internal/adapters/log"
	"github.com/bft-labs/qrship/internal/adapters/qr"
	"github.com/bft-labs/qrship/internal/adapters/svg"
	"github.com/bft-labs/qrship/internal/adapters/zlib"
	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// twelveBytes stands in for zlib with a fixed-size output.
func twelveBytes(raw []byte) ([]byte, error) {
	return bytes.Repeat([]byte{0xCC}, 12), nil
}

// echoSymbols records every frame it is asked to encode and returns a 1x1
// symbol so rendering stays cheap.
type echoSymbols struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (s *echoSymbols) Encode(data []byte, version int, level domain.ECLevel) (domain.Symbol, error) {
	if s.err != nil {
		return domain.Symbol{}, s.err
	}
	s.mu.Lock()
	s.frames = append(s.frames, append([]byte(nil), data...))
	s.mu.Unlock()
	return domain.Symbol{Version: version, Level: level, Modules: [][]bool{{true}}}, nil
}

type countingImages struct {
	mu sync.Mutex
	n  int
}

func (r *countingImages) Render(domain.Symbol) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return fmt.Sprintf("<svg>%d</svg>", r.n), nil
}

type recorder struct {
	states []string
	codes  []string
}

func (r *recorder) OnStateChange(file string, prev, cur State) {
	r.states = append(r.states, fmt.Sprintf("%s:%s->%s", file, prev, cur))
}

func (r *recorder) OnCodeRendered(file string, seq, total int) {
	r.codes = append(r.codes, fmt.Sprintf("%s:%d/%d", file, seq, total))
}

func fakePipeline(t *testing.T, bytesPerCode int, compress ports.CompressorFunc, opts ...Option) (*Pipeline, *echoSymbols) {
	t.Helper()
	syms := &echoSymbols{}
	cfg := domain.DefaultQrConfig()
	cfg.BytesPerCode = bytesPerCode
	p, err := NewPipeline(cfg, Dependencies{
		Compressor:  compress,
		Checksummer: digest.NewMD5(),
		Symbols:     syms,
		Images:      &countingImages{},
		Logger:      logadapter.NoopLogger{},
	}, opts...)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	return p, syms
}

func realPipeline(t *testing.T, cfg domain.QrConfig) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, Dependencies{
		Compressor:  zlib.New(),
		Checksummer: digest.NewMD5(),
		Symbols:     qr.New(),
		Images:      svg.New(),
		Logger:      logadapter.NoopLogger{},
	})
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	return p
}

func randomRaw(n int, seed int64) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

func TestRenderFile_FourCodes(t *testing.T) {
	rec := &recorder{}
	p, syms := fakePipeline(t, 8, twelveBytes, WithObserver(rec))

	file := domain.SourceFile{Name: "AB", Raw: make([]byte, 16), Description: "zeros"}
	out, err := p.RenderFile(context.Background(), file)
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}

	// 20-byte header + 12 compressed bytes = 32 bytes in 8-byte chunks
	if out.ContainerSize != 32 {
		t.Errorf("ContainerSize = %d, want 32", out.ContainerSize)
	}
	if len(out.Codes) != 4 {
		t.Fatalf("got %d codes, want 4", len(out.Codes))
	}
	for i, c := range out.Codes {
		if c.Sequence != i+1 || c.Total != 4 {
			t.Errorf("code %d reports %d/%d", i, c.Sequence, c.Total)
		}
	}
	if out.Name != "AB" || out.Description != "zeros" {
		t.Errorf("unexpected metadata %q %q", out.Name, out.Description)
	}

	first := syms.frames[0]
	if first[0] != 0x50 || first[1] != 0x54 || first[2] != 1 || first[3] != 4 {
		t.Errorf("first frame header = % x", first[:4])
	}

	wantStates := []string{
		"AB:RawInput->Framed",
		"AB:Framed->Chunked",
		"AB:Chunked->Encoded",
		"AB:Encoded->Rendered",
	}
	if strings.Join(rec.states, ",") != strings.Join(wantStates, ",") {
		t.Errorf("states = %v, want %v", rec.states, wantStates)
	}
	if strings.Join(rec.codes, ",") != "AB:1/4,AB:2/4,AB:3/4,AB:4/4" {
		t.Errorf("code notifications = %v", rec.codes)
	}
}

func TestRenderFile_FramesReassemble(t *testing.T) {
	p, syms := fakePipeline(t, 8, twelveBytes)
	raw := make([]byte, 16)
	copy(raw[8:], "BASC")

	out, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "AB", Raw: raw})
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}

	var container []byte
	for _, f := range syms.frames {
		payload := f[domain.FrameHeaderSize:]
		if got := md5.Sum(payload); !bytes.Equal(got[:], f[4:20]) {
			t.Errorf("frame %d: chunk checksum mismatch", f[2])
		}
		container = append(container, payload...)
	}
	sum := md5.Sum(container)
	for _, f := range syms.frames {
		if !bytes.Equal(f[20:36], sum[:]) {
			t.Errorf("frame %d: container checksum mismatch", f[2])
		}
	}
	if fmt.Sprintf("%x", sum) != out.ContainerChecksum {
		t.Errorf("ContainerChecksum = %s, want %x", out.ContainerChecksum, sum)
	}

	if !bytes.Equal(container[:8], []byte{'A', 'B', 0, 0, 0, 0, 0, 0}) {
		t.Errorf("name field = % x", container[:8])
	}
	if string(container[8:12]) != "BASC" {
		t.Errorf("type tag = %q", container[8:12])
	}
	if got := binary.LittleEndian.Uint32(container[12:16]); got != 12 {
		t.Errorf("compressed length = %d, want 12", got)
	}
	if got := binary.LittleEndian.Uint32(container[16:20]); got != 16 {
		t.Errorf("raw length = %d, want 16", got)
	}
}

func TestRenderFile_NameAffectsContainerChecksum(t *testing.T) {
	p, _ := fakePipeline(t, 8, twelveBytes)
	raw := make([]byte, 16)

	a, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "AB", Raw: raw})
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "AC", Raw: raw})
	if err != nil {
		t.Fatal(err)
	}
	if a.ContainerChecksum == b.ContainerChecksum {
		t.Fatal("different names produced the same container checksum")
	}
}

func TestRenderFile_TooShort(t *testing.T) {
	rec := &recorder{}
	called := false
	compress := ports.CompressorFunc(func(raw []byte) ([]byte, error) {
		called = true
		return raw, nil
	})
	p, syms := fakePipeline(t, 8, compress, WithObserver(rec))

	_, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "X", Raw: make([]byte, 11)})
	if !errors.Is(err, domain.ErrTooShort) {
		t.Fatalf("error = %v, want ErrTooShort", err)
	}
	var fe *domain.FileError
	if !errors.As(err, &fe) || fe.Stage != domain.StageFrame || fe.File != "X" {
		t.Fatalf("error = %#v, want frame-stage FileError for X", err)
	}
	if called {
		t.Error("compressor ran for a too-short file")
	}
	if len(syms.frames) != 0 {
		t.Error("frames were encoded for a too-short file")
	}
	if len(rec.states) != 1 || rec.states[0] != "X:RawInput->Failed" {
		t.Errorf("states = %v", rec.states)
	}
}

func TestRenderFile_TooManyCodes(t *testing.T) {
	// 20-byte header + 300 bytes at one byte per code needs 320 codes
	compress := ports.CompressorFunc(func(raw []byte) ([]byte, error) {
		return make([]byte, 300), nil
	})
	p, syms := fakePipeline(t, 1, compress)

	out, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "BIG", Raw: make([]byte, 64)})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("error = %v, want ErrCapacityExceeded", err)
	}
	if len(out.Codes) != 0 || len(syms.frames) != 0 {
		t.Error("partial output produced")
	}
}

func TestRenderFile_ExactlyMaxCodes(t *testing.T) {
	compress := ports.CompressorFunc(func(raw []byte) ([]byte, error) {
		return make([]byte, domain.MaxCodes-domain.HeaderSize), nil
	})
	p, _ := fakePipeline(t, 1, compress)

	out, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "MAX", Raw: make([]byte, 12)})
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	if len(out.Codes) != domain.MaxCodes {
		t.Fatalf("got %d codes, want %d", len(out.Codes), domain.MaxCodes)
	}
	if last := out.Codes[len(out.Codes)-1]; last.Sequence != 255 || last.Total != 255 {
		t.Errorf("last code = %d/%d", last.Sequence, last.Total)
	}
}

func TestRenderFile_CompressionError(t *testing.T) {
	compress := ports.CompressorFunc(func(raw []byte) ([]byte, error) {
		return nil, errors.New("disk on fire")
	})
	p, _ := fakePipeline(t, 8, compress)

	_, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "X", Raw: make([]byte, 16)})
	if !errors.Is(err, domain.ErrCompression) {
		t.Fatalf("error = %v, want ErrCompression", err)
	}
}

func TestRenderFile_RenderErrorNamesCode(t *testing.T) {
	p, syms := fakePipeline(t, 8, twelveBytes)
	syms.err = fmt.Errorf("%w: too big", domain.ErrCapacityExceeded)

	_, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "AB", Raw: make([]byte, 16)})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("error = %v, want ErrCapacityExceeded", err)
	}
	var fe *domain.FileError
	if !errors.As(err, &fe) || fe.Stage != domain.StageRender {
		t.Fatalf("error = %v, want render-stage FileError", err)
	}
	if !strings.Contains(err.Error(), "code 1/4") {
		t.Errorf("error %q does not name the failing code", err)
	}
}

func TestRenderFile_Cancelled(t *testing.T) {
	p, syms := fakePipeline(t, 8, twelveBytes)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RenderFile(ctx, domain.SourceFile{Name: "AB", Raw: make([]byte, 16)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(syms.frames) != 0 {
		t.Error("codes rendered after cancellation")
	}
}

func TestRenderBatch_FailFast(t *testing.T) {
	rec := &recorder{}
	p, _ := fakePipeline(t, 8, twelveBytes, WithObserver(rec))

	files := []domain.SourceFile{
		{Name: "ONE", Raw: make([]byte, 16)},
		{Name: "TWO", Raw: make([]byte, 3)},
		{Name: "THREE", Raw: make([]byte, 16)},
	}
	out, err := p.RenderBatch(context.Background(), files)
	if !errors.Is(err, domain.ErrTooShort) {
		t.Fatalf("error = %v, want ErrTooShort", err)
	}
	if out != nil {
		t.Errorf("got %d results, want none", len(out))
	}
	for _, s := range rec.states {
		if strings.HasPrefix(s, "THREE:") {
			t.Fatal("file after the failure was processed")
		}
	}
}

func TestRenderBatch_Order(t *testing.T) {
	p, _ := fakePipeline(t, 8, twelveBytes)
	files := []domain.SourceFile{
		{Name: "B", Raw: make([]byte, 16)},
		{Name: "A", Raw: make([]byte, 16)},
	}
	out, err := p.RenderBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("RenderBatch() error: %v", err)
	}
	if len(out) != 2 || out[0].Name != "B" || out[1].Name != "A" {
		t.Fatalf("unexpected order: %+v", out)
	}

	empty, err := p.RenderBatch(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty batch = %v, %v", empty, err)
	}
}

func TestRenderFile_Idempotent(t *testing.T) {
	p := realPipeline(t, domain.DefaultQrConfig())
	file := domain.SourceFile{Name: "GAME.BAS", Raw: randomRaw(1500, 7)}

	a, err := p.RenderFile(context.Background(), file)
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	b, err := p.RenderFile(context.Background(), file)
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	if len(a.Codes) != len(b.Codes) || a.ContainerChecksum != b.ContainerChecksum {
		t.Fatal("repeated renders differ")
	}
	for i := range a.Codes {
		if a.Codes[i].SVG != b.Codes[i].SVG {
			t.Fatalf("code %d differs between renders", i+1)
		}
	}
	if !strings.HasPrefix(a.Codes[0].SVG, "<?xml") {
		t.Error("output is not an SVG document")
	}
}

func TestRenderFile_FrameTooLargeForVersion(t *testing.T) {
	cfg := domain.QrConfig{BytesPerCode: 630, Version: 1, Level: domain.ECLevelM}
	p := realPipeline(t, cfg)

	_, err := p.RenderFile(context.Background(), domain.SourceFile{Name: "R", Raw: randomRaw(2000, 9)})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("error = %v, want ErrCapacityExceeded", err)
	}
}

func TestPipeline_Concurrent(t *testing.T) {
	p, _ := fakePipeline(t, 64, ports.CompressorFunc(func(raw []byte) ([]byte, error) {
		return raw, nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := domain.SourceFile{Name: fmt.Sprintf("F%d", i), Raw: randomRaw(500+i, int64(i))}
			out, err := p.RenderFile(context.Background(), f)
			if err != nil {
				errs <- err
				return
			}
			// 20 + 500+i bytes in 64-byte chunks
			if want := (20 + 500 + i + 63) / 64; len(out.Codes) != want {
				errs <- fmt.Errorf("%s: %d codes, want %d", f.Name, len(out.Codes), want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	deps := Dependencies{
		Compressor:  zlib.New(),
		Checksummer: digest.NewMD5(),
		Symbols:     qr.New(),
		Images:      svg.New(),
		Logger:      logadapter.NoopLogger{},
	}

	bad := domain.DefaultQrConfig()
	bad.BytesPerCode = 0
	if _, err := NewPipeline(bad, deps); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("zero bytes per code: error = %v, want ErrInvalidConfig", err)
	}

	missing := deps
	missing.Symbols = nil
	if _, err := NewPipeline(domain.DefaultQrConfig(), missing); err == nil {
		t.Error("missing symbol encoder accepted")
	}

	noLogger := deps
	noLogger.Logger = nil
	if _, err := NewPipeline(domain.DefaultQrConfig(), noLogger); err == nil {
		t.Error("missing logger accepted")
	}
}

func TestState_String(t *testing.T) {
	if StateEncoded.String() != "Encoded" || State(99).String() != "Unknown" {
		t.Fatal("unexpected state names")
	}
}
