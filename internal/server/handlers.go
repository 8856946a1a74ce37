package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/colthorp/aoclb/internal/leaderboard"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Cached     int    `json:"cached"`
	Configured int    `json:"configured"`
}

// Handlers exposes a leaderboard.Service over HTTP.
type Handlers struct {
	service *leaderboard.Service
	logger  *slog.Logger
}

// NewHandlers creates handlers for service.
func NewHandlers(service *leaderboard.Service, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// GetLeaderboard serves one reduced leaderboard.
func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	board, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, leaderboard.ErrUnknownLeaderboard):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Leaderboard not found"})
		return
	case err != nil:
		h.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Failed to fetch leaderboard data",
			Message: err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, board)
}

// GetLeaderboards serves every configured leaderboard with per-item errors.
func (h *Handlers) GetLeaderboards(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.GetAll(r.Context()))
}

// Health reports liveness and how much of the allow-list is cached.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Cached:     h.service.Cached(),
		Configured: len(h.service.IDs()),
	})
}

// Recover turns a panic in next into a JSON 500. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection.
func (h *Handlers) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.logger.ErrorContext(r.Context(), "panic serving request",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()))
			h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "Internal Server Error",
				Message: fmt.Sprint(rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
