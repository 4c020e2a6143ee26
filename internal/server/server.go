// Package server exposes the sdfexpand pipeline over HTTP.
//
// Every endpoint takes a graph document in the request body, in the same
// JSON, TOML or YAML format the CLI reads. The format is picked from the
// "input" query parameter, then the Content-Type header, and defaults to
// JSON.
//
//	GET  /health
//	POST /v1/topology
//	POST /v1/repetitions
//	POST /v1/expand?merge=true&workers=4
//	POST /v1/render?view=hsdf&format=svg&merge=true
//
// Failures are returned as {"code", "message", "hint"} with a status that
// follows the error code: 400 for malformed input, 422 for graphs whose
// balance equations have no positive solution, 501 for missing renderers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when Config.Addr is empty.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps the size of an uploaded graph document.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultMaxTokens caps the HSDF channels a single request may expand.
	DefaultMaxTokens = 1_000_000

	// DefaultRequestTimeout bounds the time spent on one request.
	DefaultRequestTimeout = 60 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server. Zero fields take the Default* values.
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	MaxTokens      int64
	Workers        int
	RequestTimeout time.Duration
	Logger         *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Workers <= 0 {
		c.Workers = pipeline.DefaultWorkers
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// Server serves the pipeline stages of one Runner.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	cfg.setDefaults()
	return &Server{
		runner: runner,
		cfg:    cfg,
		logger: cfg.Logger.WithPrefix("http"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/topology", s.handleTopology)
		r.Post("/repetitions", s.handleRepetitions)
		r.Post("/expand", s.handleExpand)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request at info level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Method+" "+r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request", middleware.GetReqID(r.Context()))
	})
}
