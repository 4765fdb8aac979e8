// Package server implements the reference topology server: topology
// persistence, simulation control, preset and config catalogs, and the
// live event channel the CLI subscribes to.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qforge/qtopo/pkg/cache"
)

// Config assembles a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// Store persists topologies and users. Required.
	Store Store

	// Cache holds the rendered preset and config catalogs. Optional;
	// nil disables catalog caching.
	Cache cache.Cache

	// SimStep is the simulation tick interval. Zero means one second.
	SimStep time.Duration

	// Logger defaults to the default logger.
	Logger *log.Logger
}

// Server is the reference topology server.
type Server struct {
	addr   string
	logger *log.Logger
	store  Store
	cache  cache.Cache
	keyer  cache.Keyer
	hub    *Hub
	sim    *simRunner
}

// New assembles a Server from cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	backend := cfg.Cache
	if backend == nil {
		backend = cache.NewNullCache()
	}
	hub := NewHub(logger.WithPrefix("hub"))
	return &Server{
		addr:   cfg.Addr,
		logger: logger,
		store:  cfg.Store,
		cache:  backend,
		keyer:  cache.NewDefaultKeyer(),
		hub:    hub,
		sim:    newSimRunner(hub, cfg.SimStep, logger.WithPrefix("sim")),
	}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(bearerUser)

	r.Route("/topology", func(r chi.Router) {
		r.Get("/", s.handleListTopologies)
		r.Put("/", s.handlePutTopology)
		r.Get("/connection_config_presets", s.handlePresets)
		r.Get("/{pk}", s.handleGetTopology)
		r.Put("/{pk}", s.handlePutTopology)
	})

	r.Route("/simulation", func(r chi.Router) {
		r.Post("/{topologyID}", s.handleStartSimulation)
		r.Delete("/", s.handleStopSimulation)
		r.Post("/message/", s.handleMessage)
		r.Get("/status/", s.handleStatus)
	})

	r.Get("/config/", s.handleConfig)
	r.Post("/user/{id}/", s.handlePutUser)
	r.Get("/ws", s.hub.ServeHTTP)

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.sim.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// requestLogger logs each request with method, path, status, and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

type ctxKey int

const userKey ctxKey = iota

// bearerUser extracts the bearer user id into the request context.
// Requests without credentials proceed anonymously.
func bearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
			ctx := context.WithValue(r.Context(), userKey, auth[len(prefix):])
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// requestUser returns the bearer user id, or "" for anonymous requests.
func requestUser(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}
