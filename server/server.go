// Package server serves published feed documents over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/metrics"
	"github.com/theoremus-urban-solutions/feedformatter/publish"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

// Options wires the server's collaborators. Metrics and Gatherer are optional.
type Options struct {
	Config    *config.AppConfig
	Store     *store.Store
	Publisher *publish.Publisher
	Metrics   *metrics.Collector
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
}

// Server exposes stored feeds, on-demand refresh, health and metrics.
type Server struct {
	cfg       *config.AppConfig
	store     *store.Store
	publisher *publish.Publisher
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	cache     *documentCache
	started   time.Time
}

// New creates a server.
func New(opts Options) *Server {
	return &Server{
		cfg:       opts.Config,
		store:     opts.Store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		logger:    opts.Logger,
		cache:     newDocumentCache(),
		started:   time.Now(),
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)
	r.Use(middleware.GetHead)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/feeds", s.handleList)
	r.Get("/feeds/{name}", s.handleFeed)
	r.Post("/feeds/{name}/refresh", s.handleRefresh)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves until ctx is done, then shuts down gracefully. With a refresh
// interval configured, every feed is re-published on that schedule.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info().Str("addr", addr).Msg("server listening")

	if interval := s.cfg.Server.RefreshInterval(); interval > 0 && s.publisher != nil {
		go s.refreshLoop(ctx, interval)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("server shut down successfully")
	return nil
}

func (s *Server) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			results, err := s.publisher.PublishAll(ctx)
			for _, res := range results {
				s.cache.put(res.Document)
			}
			if err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh incomplete")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Skip logging for health checks and metrics
		if strings.HasPrefix(r.URL.Path, "/api/health") || r.URL.Path == "/metrics" {
			return
		}

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		s.metrics.ObserveRequest(r.Method, route, ww.Status(), time.Since(start))
	})
}
