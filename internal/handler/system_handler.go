package handlers

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
	Error  string `json:"error,omitempty"`
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": "Social network API is running",
		"docs":    "/api/auth, /api/posts, /api/users",
	}, http.StatusOK)
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Health.HealthCheck(ctx); err != nil {
		writeJSON(w, HealthResponse{Status: "unavailable", Driver: h.Cfg.DBDriver, Error: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, HealthResponse{Status: "ok", Driver: h.Cfg.DBDriver}, http.StatusOK)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.StatsService.GetStats(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}
