package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger is any dependency whose liveness the health endpoint reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the operational endpoints: health and Prometheus metrics.
type Server struct {
	deps map[string]Pinger
	log  *zerolog.Logger
}

func NewServer(logger *zerolog.Logger, deps map[string]Pinger) *Server {
	return &Server{deps: deps, log: logger}
}

// Router builds the admin router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
