package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
)

// healthCheckTimeout bounds each dependency check on /api/v1/health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Slack endpoints, all signed
	r.Route("/slack", func(r chi.Router) {
		r.Use(s.verifySlackSignature)

		r.Post("/actions", s.handleActions)
		r.Post("/options", s.handleOptions)
		r.Post("/commands", s.handleCommand)
	})

	// Dashboard API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(s.corsOptions()))

		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/devices", s.handleListDevices)
			r.Get("/members/{id}/kudos", s.handleMemberKudos)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// corsOptions builds the dashboard CORS policy. An empty origin list allows
// all origins (dev mode).
func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: s.cfg.CORS.AllowedMethods,
		AllowedHeaders: s.cfg.CORS.AllowedHeaders,
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
	}
	return opts
}

// handleHealth runs every registered dependency check.
// Any failing check makes the response 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.health))
	for name := range s.health {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.health[name](ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// handleListDevices returns the same snapshots the device list renders.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	if s.devices == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "device listing is not configured")
		return
	}

	snapshots, err := s.devices.Snapshots(r.Context())
	if err != nil {
		s.logger.Error("listing devices for dashboard", "error", err)
		if errors.Is(err, gateway.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "lighting gateway unavailable")
			return
		}
		writeInternalError(w, "listing devices failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": snapshots,
		"count":   len(snapshots),
	})
}

// handleMemberKudos returns a member's kudos total and the kudos behind it,
// newest first.
func (s *Server) handleMemberKudos(w http.ResponseWriter, r *http.Request) {
	if s.members == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "member ledger is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	m, err := s.members.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "member not found")
			return
		}
		s.logger.Error("reading member for dashboard", "member_id", id, "error", err)
		writeInternalError(w, "reading member failed")
		return
	}

	kudos, err := s.members.ListKudos(r.Context(), id)
	if err != nil {
		s.logger.Error("listing kudos for dashboard", "member_id", id, "error", err)
		writeInternalError(w, "listing kudos failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id":   m.ID,
		"kudos_count": m.KudosCount,
		"kudos":       kudos,
	})
}
