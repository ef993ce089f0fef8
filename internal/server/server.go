// Package server exposes the skill matcher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/U-Jay-git/ResumeRise/internal/analysis"
	"github.com/U-Jay-git/ResumeRise/internal/metrics"
	"github.com/U-Jay-git/ResumeRise/internal/report"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const (
	defaultAddress     = ":8000"
	defaultMaxUploadMB = 10
	shutdownTimeout    = 30 * time.Second
)

// Analyzer runs a resume/job analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) *report.Response
}

// Config holds the HTTP server settings.
type Config struct {
	Address      string        `mapstructure:"address"`
	MaxUploadMB  int64         `mapstructure:"max-upload-mb"`
	CORSOrigins  []string      `mapstructure:"cors-origins"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

// Server serves the matching API.
type Server struct {
	cfg        Config
	analyzer   Analyzer
	metrics    *metrics.Metrics
	logger     *zap.Logger
	schema     *gojsonschema.Schema
	handler    http.Handler
	httpServer *http.Server
}

// New builds the server and its routes. m may be nil to disable /metrics.
func New(cfg Config, analyzer Analyzer, m *metrics.Metrics, logger *zap.Logger) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(matchRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling request schema: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		metrics:  m,
		logger:   logger,
		schema:   schema,
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.handleRoot)
	s.handle(mux, "GET /health", s.handleHealth)
	s.handle(mux, "POST /match-skills", s.handleMatchSkills)
	s.handle(mux, "POST /upload-resume", s.handleUploadResume)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	s.handler = s.withRequestID(s.withLogging(s.withCORS(mux)))

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("address", s.cfg.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// handle registers h and records metrics under the route pattern.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.ObserveRequest(pattern, rec.status, time.Since(start))
	}))
}
