package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/application/service"
	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// ReconcileHandler runs reconciliations submitted over HTTP.
type ReconcileHandler struct {
	*Base
	service *service.ReconcileService
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(svc *service.ReconcileService, logger *slog.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    NewBase(nil, logger),
		service: svc,
	}
}

// Create handles POST /api/reconciliations - runs a reconciliation
// synchronously and returns the recorded run with its result.
func (h *ReconcileHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Rules fields left out of the body keep their defaults
	defaults := matcher.DefaultRules()
	req := dto.ReconcileRequest{Rules: &defaults}
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return
	}

	rules := matcher.DefaultRules()
	if req.Rules != nil {
		rules = *req.Rules
	}

	run, err := h.service.Reconcile(r.Context(), service.ReconcileRequest{
		RowsA:   req.RowsA,
		RowsB:   req.RowsB,
		SourceA: req.SourceA,
		SourceB: req.SourceB,
		Rules:   rules,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		if errors.Is(err, service.ErrInconsistentResult) {
			h.logger.ErrorContext(r.Context(), "reconciliation rejected", "error", err)
			h.WriteError(w, http.StatusInternalServerError, dto.InconsistentResultError(err.Error()))
			return
		}
		h.logger.ErrorContext(r.Context(), "reconciliation failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToRunDetailResponse(run))
}
