// Package http exposes the render pipeline over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bft-labs/qrship/internal/app"
	"github.com/bft-labs/qrship/internal/document"
	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

const (
	renderEndpoint = "/v1/render"
	healthEndpoint = "/health"

	// RequestIDHeader carries the per-request identifier in every response.
	RequestIDHeader = "X-Request-Id"

	// DefaultMaxBodyBytes bounds the request document size.
	DefaultMaxBodyBytes = 16 << 20
)

// PipelineFactory builds a pipeline for the effective per-request config.
type PipelineFactory func(cfg domain.QrConfig) (*app.Pipeline, error)

// Server serves render requests. It keeps no state between requests.
type Server struct {
	base         domain.QrConfig
	factory      PipelineFactory
	logger       ports.Logger
	maxBodyBytes int64
}

// NewServer creates a Server whose requests start from base.
func NewServer(base domain.QrConfig, factory PipelineFactory, logger ports.Logger) *Server {
	return &Server{
		base:         base,
		factory:      factory,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// SetMaxBodyBytes overrides DefaultMaxBodyBytes.
func (s *Server) SetMaxBodyBytes(n int64) {
	if n > 0 {
		s.maxBodyBytes = n
	}
}

// Router returns the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc(renderEndpoint, s.handleRender).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", ports.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type ctxKey struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type renderResponse struct {
	RequestID string         `json:"request_id"`
	Files     []renderedFile `json:"files"`
}

type renderedFile struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	ContainerSize     int            `json:"container_size"`
	ContainerChecksum string         `json:"container_checksum"`
	Codes             []renderedCode `json:"codes"`
}

type renderedCode struct {
	Sequence int    `json:"sequence"`
	Total    int    `json:"total"`
	SVG      string `json:"svg"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := requestIDFrom(r.Context())

	cfg, err := s.configFor(r)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.writeError(w, id, fmt.Errorf("%w: read body: %v", domain.ErrDecode, err))
		return
	}
	files, err := document.Load(body)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	pipeline, err := s.factory(cfg)
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	rendered, err := pipeline.RenderBatch(r.Context(), files)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	resp := renderResponse{RequestID: id, Files: make([]renderedFile, 0, len(rendered))}
	codes := 0
	for _, f := range rendered {
		rf := renderedFile{
			Name:              f.Name,
			Description:       f.Description,
			ContainerSize:     f.ContainerSize,
			ContainerChecksum: f.ContainerChecksum,
			Codes:             make([]renderedCode, 0, len(f.Codes)),
		}
		for _, c := range f.Codes {
			rf.Codes = append(rf.Codes, renderedCode{Sequence: c.Sequence, Total: c.Total, SVG: c.SVG})
		}
		codes += len(f.Codes)
		resp.Files = append(resp.Files, rf)
	}

	s.logger.Info("render request",
		ports.String("request_id", id),
		ports.Int("files", len(resp.Files)),
		ports.Int("codes", codes),
		ports.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, resp)
}

// configFor applies the bytes_per_code, version and ecc query overrides.
func (s *Server) configFor(r *http.Request) (domain.QrConfig, error) {
	cfg := s.base
	q := r.URL.Query()
	if v := q.Get("bytes_per_code"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: bytes_per_code: %v", domain.ErrInvalidConfig, err)
		}
		cfg.BytesPerCode = n
	}
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: version: %v", domain.ErrInvalidConfig, err)
		}
		cfg.Version = n
	}
	if v := q.Get("ecc"); v != "" {
		l, err := domain.ParseECLevel(v)
		if err != nil {
			return cfg, err
		}
		cfg.Level = l
	}
	return cfg, cfg.Validate()
}

func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	status, kind := StatusFor(err)
	s.logger.Warn("render request failed",
		ports.String("request_id", id),
		ports.String("kind", kind),
		ports.Err(err),
	)
	writeJSON(w, status, errorResponse{RequestID: id, Error: err.Error(), Kind: kind})
}

// StatusFor maps a pipeline error to an HTTP status and a short kind label.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDecode):
		return http.StatusBadRequest, "decode"
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusBadRequest, "no_files"
	case errors.Is(err, domain.ErrTooShort):
		return http.StatusBadRequest, "too_short"
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, "capacity_exceeded"
	case errors.Is(err, domain.ErrCompression):
		return http.StatusInternalServerError, "compression"
	case errors.Is(err, domain.ErrRender):
		return http.StatusInternalServerError, "render"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
