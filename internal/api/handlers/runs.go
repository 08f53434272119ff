package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// RunsHandler serves recorded reconciliation runs.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo, logger),
	}
}

// List handles GET /api/runs - returns a page of runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.DefaultRunListParams()
	params.Status = r.URL.Query().Get("status")
	params.Limit = ParseIntParam(r, "limit", params.Limit)
	params.Offset = ParseIntParam(r, "offset", params.Offset)

	switch params.Status {
	case "", storage.RunStatusRunning, storage.RunStatusCompleted, storage.RunStatusFailed:
	default:
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unknown status "+params.Status))
		return
	}

	result, err := h.repo.ListRuns(storage.RunFilters{
		Status: params.Status,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		h.writeStorageError(w, r, err, "runs")
		return
	}

	response := dto.RunListResponse{
		Runs:       make([]dto.RunResponse, 0, len(result.Runs)),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
	for _, run := range result.Runs {
		response.Runs = append(response.Runs, ToRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns one run with its full result.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.writeStorageError(w, r, err, "run")
		return
	}

	h.WriteJSON(w, http.StatusOK, ToRunDetailResponse(run))
}

// Exceptions handles GET /api/runs/{id}/exceptions.
// Optional filters: category and source (A or B).
func (h *RunsHandler) Exceptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	params := dto.ExceptionListParams{
		Category: r.URL.Query().Get("category"),
		Source:   strings.ToUpper(r.URL.Query().Get("source")),
	}

	if params.Category != "" && !matcher.Category(params.Category).Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unknown category "+params.Category))
		return
	}
	if params.Source != "" && params.Source != string(matcher.SideA) && params.Source != string(matcher.SideB) {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("source must be A or B"))
		return
	}

	exceptions, err := h.repo.ListExceptions(id, storage.ExceptionFilters{
		Category: params.Category,
		Source:   params.Source,
	})
	if err != nil {
		h.writeStorageError(w, r, err, "run")
		return
	}
	if exceptions == nil {
		exceptions = []matcher.ExceptionClassification{}
	}

	h.WriteJSON(w, http.StatusOK, dto.ExceptionListResponse{
		RunID:      id,
		Exceptions: exceptions,
		Count:      len(exceptions),
	})
}

// ToRunResponse converts a storage Run to its list representation.
func ToRunResponse(run *storage.Run) dto.RunResponse {
	resp := dto.RunResponse{
		ID:              run.ID,
		SourceA:         run.SourceALabel,
		SourceB:         run.SourceBLabel,
		Status:          run.Status,
		StartedAt:       dto.FormatTime(run.StartedAt),
		RowCountA:       run.RowCountA,
		RowCountB:       run.RowCountB,
		MatchedCount:    run.MatchedCount,
		UnmatchedACount: run.UnmatchedACount,
		UnmatchedBCount: run.UnmatchedBCount,
		ExceptionCount:  run.ExceptionCount,
		MatchRate:       run.MatchRate(),
		Variance:        run.Variance,
		ErrorMessage:    run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = dto.FormatTime(*run.CompletedAt)
	}
	return resp
}

// ToRunDetailResponse converts a storage Run including its result.
func ToRunDetailResponse(run *storage.Run) dto.RunDetailResponse {
	return dto.RunDetailResponse{
		RunResponse: ToRunResponse(run),
		Rules:       run.Rules,
		Result:      run.Result,
	}
}
