package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// HealthHandler reports whether the run store answers and whether this
// server accepts reconciliations.
type HealthHandler struct {
	*Base
	reconcile bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo storage.Repository, reconcile bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		Base:      NewBase(repo, logger),
		reconcile: reconcile,
	}
}

// ServeHTTP handles GET /health. It answers 503 when the store is unreachable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.repo.Ping()
	if err != nil {
		h.logger.WarnContext(r.Context(), "health check: store unreachable", "error", err)
	}

	resp := dto.NewHealthResponse(err, h.reconcile)
	status := http.StatusOK
	if resp.Status != dto.HealthOK {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}
