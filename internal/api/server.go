// Package api exposes the HTTP interface for the enrichment service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/config"
	"github.com/refsignal/tourney-enrich/internal/enrich"
	"github.com/refsignal/tourney-enrich/internal/metrics"
	"github.com/refsignal/tourney-enrich/internal/review"
	"github.com/refsignal/tourney-enrich/internal/scheduler"
)

// Server wires HTTP handlers to the scheduler, stores, and review merger.
type Server struct {
	router      chi.Router
	jobs        enrich.JobStore
	candidates  enrich.CandidateStore
	tournaments enrich.TournamentStore
	sched       *scheduler.Scheduler
	merger      *review.Merger
	cfg         config.Config
	logger      *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	jobs enrich.JobStore,
	candidates enrich.CandidateStore,
	tournaments enrich.TournamentStore,
	sched *scheduler.Scheduler,
	merger *review.Merger,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		jobs:        jobs,
		candidates:  candidates,
		tournaments: tournaments,
		sched:       sched,
		merger:      merger,
		cfg:         cfg,
		logger:      logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/enqueue", s.enqueueJobs)
			r.Post("/run", s.runJobs)
			r.Get("/{job_id}", s.getJob)
		})
		r.Route("/tournaments/{tournament_id}", func(r chi.Router) {
			r.Get("/candidates", s.listCandidates)
			r.Get("/review-groups", s.listReviewGroups)
			r.Post("/review/apply", s.applyReview)
			r.Post("/review/reject", s.rejectReview)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// The job store is the hard dependency; a failing lookup for a bogus id
	// still proves the store responds.
	if _, err := s.jobs.GetJob(r.Context(), "readyz-probe"); err != nil && !errors.Is(err, enrich.ErrNotFound) {
		s.writeError(w, http.StatusServiceUnavailable, "job store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type enqueueRequest struct {
	TournamentIDs []string `json:"tournament_ids"`
}

func (s *Server) enqueueJobs(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.TournamentIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "tournament_ids required")
		return
	}
	inserted, err := s.sched.Enqueue(r.Context(), req.TournamentIDs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]int{"enqueued": inserted})
}

type runRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) runJobs(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Scheduler.BatchLimit
	}
	outcomes, err := s.sched.RunQueued(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, enrich.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) listCandidates(w http.ResponseWriter, r *http.Request) {
	tid := chi.URLParam(r, "tournament_id")
	pending, err := s.candidates.ListPending(r.Context(), tid)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tournament_id": tid,
		"contacts":      pending.Contacts,
		"venues":        pending.Venues,
		"comps":         pending.Comps,
		"dates":         pending.Dates,
		"attributes":    pending.Attributes,
	})
}

func (s *Server) listReviewGroups(w http.ResponseWriter, r *http.Request) {
	tid := chi.URLParam(r, "tournament_id")
	pending, err := s.candidates.ListPending(r.Context(), tid)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	groups := review.BuildGroups(tid, pending)
	s.writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

type reviewRequest struct {
	Selections []review.Selection `json:"selections"`
}

func (s *Server) applyReview(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.merger.Apply)
}

func (s *Server) rejectReview(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.merger.Reject)
}

func (s *Server) handleReview(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, tournamentID string, selections []review.Selection) error,
) {
	tid := chi.URLParam(r, "tournament_id")
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Selections) == 0 {
		s.writeError(w, http.StatusBadRequest, "selections required")
		return
	}
	if err := fn(r.Context(), tid, req.Selections); err != nil {
		if errors.Is(err, enrich.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "tournament not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
