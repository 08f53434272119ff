package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo, logger),
	}
}

// Get handles GET /api/stats - returns aggregate statistics.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.writeStorageError(w, r, err, "stats")
		return
	}

	// Map to a slice, largest category first, for easier frontend consumption
	categories := make([]dto.CategoryCountResponse, 0, len(stats.ExceptionsByCategory))
	for category, count := range stats.ExceptionsByCategory {
		categories = append(categories, dto.CategoryCountResponse{Category: category, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})

	response := dto.StatsResponse{
		TotalRuns:            stats.TotalRuns,
		CompletedRuns:        stats.CompletedRuns,
		FailedRuns:           stats.FailedRuns,
		TotalMatched:         stats.TotalMatched,
		TotalExceptions:      stats.TotalExceptions,
		AverageMatchRate:     stats.AverageMatchRate,
		ExceptionsByCategory: categories,
	}
	if stats.LastRunAt != nil {
		response.LastRunAt = dto.FormatTime(*stats.LastRunAt)
	}

	h.WriteJSON(w, http.StatusOK, response)
}
