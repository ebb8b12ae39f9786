package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trackmerge/internal/config"
	"trackmerge/internal/logging"
	"trackmerge/internal/metrics"
)

// Options configures a Server.
type Options struct {
	Bind         string
	DatabasePath string
	StaticDir    string
	IndexFile    string
	ClientID     string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// OptionsFromConfig maps the loaded configuration onto server options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) Options {
	return Options{
		Bind:         cfg.Server.Bind,
		DatabasePath: cfg.Paths.Database,
		StaticDir:    cfg.Paths.StaticDir,
		IndexFile:    cfg.Server.IndexFile,
		ClientID:     cfg.Spotify.ClientID,
		Logger:       logger,
		Metrics:      m,
	}
}

// Server serves the analyzer and its data API.
type Server struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	router  chi.Router
}

// New builds the router. Nothing listens until Serve is called.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "."
	}
	s := &Server{
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "server"),
		metrics: opts.Metrics,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/api/music-data", s.handleMusicData)
	r.Get("/api/spotify-config", s.handleSpotifyConfig)
	r.Get("/spotify-callback", s.handleSpotifyCallback)
	if s.metrics != nil {
		r.Get("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}
	r.Get("/", s.handleIndex)

	files := http.FileServer(http.Dir(s.opts.StaticDir))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		files.ServeHTTP(w, req)
	})
	return r
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return errors.New("server bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", bind, err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("presentation server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("database", s.opts.DatabasePath),
		logging.String("static_dir", s.opts.StaticDir))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("presentation server stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index := strings.TrimSpace(s.opts.IndexFile)
	if index == "" {
		http.NotFound(w, r)
		return
	}
	path := index
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.opts.StaticDir, filepath.FromSlash(index))
	}
	http.ServeFile(w, r, path)
}

// observe logs and counts each request under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "static"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(r.Method, route, status, elapsed)
		s.logger.Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("route", route),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())))
	})
}
