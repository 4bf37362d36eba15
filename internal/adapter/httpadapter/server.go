package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/pipeline"
)

// Validator runs a validation profile over a submission payload.
type Validator interface {
	Validate(ctx context.Context, profile string, payload []byte) (domain.Report, error)
}

// ProfileCatalog lists the profiles a Validator can resolve.
type ProfileCatalog interface {
	Names() []string
	Default() string
}

// Options configures the listener.
type Options struct {
	Addr         string
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Server exposes health, readiness, metrics and validation HTTP endpoints.
type Server struct {
	httpServer   *http.Server
	validator    Validator
	profiles     ProfileCatalog
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /profiles and /validate routes.
func NewServer(opts Options, ready sharedobs.ReadinessChecker, validator Validator, profiles ProfileCatalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  60 * time.Second,
		},
		validator:    validator,
		profiles:     profiles,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /profiles", s.handleProfiles)
	mux.HandleFunc("POST /validate", s.handleValidate)

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

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":  s.profiles.Default(),
		"profiles": s.profiles.Names(),
	})
}

// handleValidate answers 200 with the report for accepted and rejected
// submissions alike. Payloads that cannot be decoded or routed get 400.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}
	payload, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.validator.Validate(r.Context(), r.URL.Query().Get("profile"), payload)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, pipeline.ErrMalformedSubmission), report.ID != "":
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logger.Error("validation failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
