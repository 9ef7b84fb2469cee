package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/internal/config"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
	"github.com/WessleyAI/gradepoint/pkg/mid"
	"github.com/WessleyAI/gradepoint/pkg/resilience"
)

const serviceName = "GPA Calculator API"

// transcriptParser is the slice of *transcript.Parser the handlers use.
type transcriptParser interface {
	Parse(ctx context.Context, path string) ([]domain.Course, error)
}

type server struct {
	cfg     config.Config
	parser  transcriptParser
	metrics *metrics.Service
	log     *slog.Logger

	uploadLimiter *resilience.KeyedLimiter
	gpaLimiter    *resilience.KeyedLimiter
}

func newServer(cfg config.Config, parser transcriptParser, m *metrics.Service, log *slog.Logger) *server {
	return &server{
		cfg:           cfg,
		parser:        parser,
		metrics:       m,
		log:           log,
		uploadLimiter: resilience.NewKeyedLimiter(resilience.LimiterOpts{PerMinute: cfg.RateLimitUpload}),
		gpaLimiter:    resilience.NewKeyedLimiter(resilience.LimiterOpts{PerMinute: cfg.RateLimitGPA}),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		mid.Recover(s.log),
		mid.RequestID(),
		mid.Logger(s.log),
		mid.CORS(s.cfg.CORSOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.With(s.limit(s.uploadLimiter)).Post("/upload", s.handleUpload)
		r.With(s.limit(s.gpaLimiter)).Post("/gpa", s.handleGPA)
	})
	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", s.metrics.Registry().Handler())
	}

	return mid.Chain(r, mid.OTel("gradepoint-api"))
}

// limit applies l unless the process runs under TESTING=true.
func (s *server) limit(l *resilience.KeyedLimiter) func(http.Handler) http.Handler {
	if s.cfg.IsTesting() {
		return func(next http.Handler) http.Handler { return next }
	}
	return mid.RateLimit(l, s.log)
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Service:     serviceName,
		Version:     s.cfg.AppVersion,
		Environment: s.cfg.Environment,
	})
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
