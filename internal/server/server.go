// Package server exposes the resolution engine over HTTP. The server is
// read-only with respect to the store: resolving a plan produces a
// change-set document, never a database write.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/engine"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/schema"
	"github.com/roach88/formsmith/internal/store"
)

// maxPlanBytes bounds the request body of a resolve call.
const maxPlanBytes = 1 << 20

// Server wires the engine and store into an HTTP handler.
type Server struct {
	engine  *engine.Engine
	store   *store.Store
	catalog *schema.Catalog
}

// New builds a server over an engine, its store, and its schema catalog.
func New(eng *engine.Engine, s *store.Store, catalog *schema.Catalog) *Server {
	return &Server{engine: eng, store: s, catalog: catalog}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Get("/forms", s.handleForms)
		r.Get("/forms/{id}/snapshot", s.handleSnapshot)
		r.Get("/schema", s.handleSchema)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResolve validates the posted plan document and runs one resolution
// pass. Clarifications are 200 responses like change-sets; only malformed
// plans, oversized plans, and structural failures map to error statuses.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPlanBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	plan, err := intent.Decode(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid plan: "+err.Error())
		return
	}

	result, err := s.engine.Resolve(r.Context(), plan)
	if err != nil {
		var se *changeset.StructureError
		switch {
		case engine.IsRowLimit(err):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.As(err, &se):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "change-set validation failed",
				"violations": se.Violations,
			})
		default:
			slog.Error("resolve failed", "error", err)
			writeError(w, http.StatusInternalServerError, "resolution failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.store.Forms(r.Context())
	if err != nil {
		slog.Error("list forms failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list forms failed")
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	structure, err := s.store.FormStructure(r.Context(), id)
	if err != nil {
		slog.Error("snapshot failed", "form_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	if structure == nil {
		writeError(w, http.StatusNotFound, "form not found")
		return
	}
	writeJSON(w, http.StatusOK, structure)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
