package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/internal/presentation/graph"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxProblemSize bounds the body of POST /solve.
const maxProblemSize = 1 << 20

// Service is what the server exposes; *session.Manager implements it.
type Service interface {
	Solve(ctx context.Context, p *problem.Problem, backend, outputPath string) (*archsynth.Result, error)
	Load(ctx context.Context, id string) (*domain.Snapshot, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// Server serves solves and snapshot inspection.
type Server struct {
	Service  Service
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager, typically one whose Hooks feed the
// Service.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithGatherer exposes metrics of g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates a new HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{Service: svc, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	if doc, err := LoadSpec(context.Background()); err != nil {
		s.logger.Error("request validation disabled", "err", err)
	} else if mw, err := validateRequests(doc, s.logger); err != nil {
		s.logger.Error("request validation disabled", "err", err)
	} else {
		r.Use(mw)
	}
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/solve", s.Solve)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.ListSnapshots)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSnapshot)
			r.Delete("/", s.DeleteSnapshot)
			r.Get("/report.md", s.GetReport)
			r.Get("/decisions.mmd", s.GetDecisions)
			r.Get("/layers/{layer}.mmd", s.GetLayer)
		})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SolveResponse is the body of a POST /solve answer.
type SolveResponse struct {
	SnapshotID string        `json:"snapshot_id,omitempty"`
	Report     domain.Report `json:"report"`
}

// Solve handles POST /solve. The body is a problem in YAML, or JSON when
// the content type says so. The backend query parameter overrides the one
// of the problem.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxProblemSize+1))
	if err != nil || len(data) > maxProblemSize {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var p *problem.Problem
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		p = &problem.Problem{}
		err = json.Unmarshal(data, p)
	} else {
		p, err = problem.Parse(data)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid problem: %v", err), http.StatusBadRequest)
		s.logger.Warn("Solve: invalid problem", "err", err)
		return
	}

	res, err := s.Service.Solve(r.Context(), p, r.URL.Query().Get("backend"), "")
	if res == nil {
		http.Error(w, fmt.Sprintf("Solve error: %v", err), http.StatusBadRequest)
		s.logger.Warn("Solve rejected", "problem", p.Name, "err", err)
		return
	}

	status := http.StatusOK
	switch {
	case errors.Is(err, domain.ErrSearchExhausted):
		status = http.StatusUnprocessableEntity
	case err != nil:
		status = http.StatusInternalServerError
		s.logger.Error("Solve failed", "problem", p.Name, "err", err)
	}
	writeJSON(w, status, SolveResponse{SnapshotID: res.SnapshotID, Report: res.Report}, s.logger)
}

// ListSnapshots handles GET /snapshots.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("List failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids, s.logger)
}

// GetSnapshot handles GET /snapshots/{id}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.load(w, r); ok {
		writeJSON(w, http.StatusOK, snap, s.logger)
	}
}

// DeleteSnapshot handles DELETE /snapshots/{id}.
func (s *Server) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Delete failed", "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetReport handles GET /snapshots/{id}/report.md.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.load(w, r); ok {
		writeText(w, "text/markdown; charset=utf-8", tui.ReportMarkdown(snap.Report))
	}
}

// GetDecisions handles GET /snapshots/{id}/decisions.mmd.
func (s *Server) GetDecisions(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.load(w, r); ok {
		writeText(w, "text/plain; charset=utf-8", graph.DecisionMermaid(snap.Decisions, nil))
	}
}

// GetLayer handles GET /snapshots/{id}/layers/{layer}.mmd.
func (s *Server) GetLayer(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	l, ok := snap.Layer(chi.URLParam(r, "layer"))
	if !ok {
		http.Error(w, "Layer not found", http.StatusNotFound)
		return
	}
	writeText(w, "text/plain; charset=utf-8", graph.LayerMermaid(l))
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	snap, err := s.Service.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		http.Error(w, "Snapshot not found", http.StatusNotFound)
		return nil, false
	case err != nil:
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Load failed", "err", err)
		return nil, false
	}
	return snap, true
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "archsynth-http",
		"version": strings.TrimSpace(archsynth.Version),
	}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, body)
}
