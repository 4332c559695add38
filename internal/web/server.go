package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"pingtrend/internal/chart"
	"pingtrend/internal/models"
	"pingtrend/internal/trend"
)

//go:embed static/*
var staticFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

// Source provides the data served by the web layer
type Source interface {
	Snapshot() trend.Snapshot
	Stats() []models.Stats
}

// TargetEditor is the editable target list
type TargetEditor interface {
	Targets() []models.Target
	Add(name, address string) error
	Remove(name string) error
}

// Server handles web requests
type Server struct {
	source  Source
	targets TargetEditor
	chart   chart.Options
	refresh time.Duration
	logger  *slog.Logger

	srv  *http.Server
	addr net.Addr
}

// New creates a new web server. refresh is how often the page reloads the chart.
func New(source Source, targets TargetEditor, opts chart.Options, refresh time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		source:  source,
		targets: targets,
		chart:   opts,
		refresh: refresh,
		logger:  logger,
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /api/samples", s.handleSamples)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/targets", s.handleTargets)
	mux.HandleFunc("POST /api/targets", s.handleAddTarget)
	mux.HandleFunc("DELETE /api/targets/{name}", s.handleRemoveTarget)
	mux.HandleFunc("GET /chart.png", s.handleChart)

	mux.HandleFunc("GET /{$}", s.handleIndex)

	return mux
}

// Start listens on addr and serves until Shutdown is called.
// It returns once the listener is bound; serve errors are logged.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("web server started", "url", "http://"+ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address after Start
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
