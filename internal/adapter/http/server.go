package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// ProjectionFetcher runs the fetch-transform pipeline for one query.
type ProjectionFetcher interface {
	Fetch(ctx context.Context, res domain.Resolution, q domain.QueryParams) (domain.Projection, error)
}

// Server exposes the projection API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	fetcher    ProjectionFetcher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/v1 routes, /healthz, /readyz, and /metrics.
// An empty allowedOrigins list allows every origin.
func NewServer(addr string, fetcher ProjectionFetcher, ready sharedobs.ReadinessChecker, allowedOrigins []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     newCORS(allowedOrigins).Handler(mux),
			ReadTimeout: 10 * time.Second,
			// A multi-year daily projection makes one remote call per day.
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		fetcher: fetcher,
		logger:  logger,
	}

	mux.HandleFunc("GET /api/v1/options", s.handleOptions)
	mux.HandleFunc("GET /api/v1/projections/daily", s.handleProjection(domain.ResolutionDaily))
	mux.HandleFunc("GET /api/v1/projections/monthly", s.handleProjection(domain.ResolutionMonthly))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
