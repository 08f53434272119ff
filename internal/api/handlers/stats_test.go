package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/api/handlers"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

func TestStatsHandler_Get(t *testing.T) {
	t.Run("empty repository", func(t *testing.T) {
		handler := handlers.NewStatsHandler(storage.NewMockRepository(), quietLogger)

		rec := httptest.NewRecorder()
		handler.Get(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 0, response.TotalRuns)
		assert.Empty(t, response.ExceptionsByCategory)
		assert.Empty(t, response.LastRunAt)
	})

	t.Run("aggregates runs and orders categories by count", func(t *testing.T) {
		repo := storage.NewMockRepository()
		last := time.Date(2024, 4, 2, 8, 30, 0, 0, time.UTC)
		require.NoError(t, repo.SaveRun(storedRun("r1", last.Add(-time.Hour))))
		require.NoError(t, repo.SaveRun(storedRun("r2", last)))

		handler := handlers.NewStatsHandler(repo, quietLogger)

		rec := httptest.NewRecorder()
		handler.Get(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.TotalRuns)
		assert.Equal(t, 2, response.CompletedRuns)
		assert.Equal(t, 2, response.TotalMatched)
		assert.Equal(t, 6, response.TotalExceptions)
		assert.InDelta(t, 1.0/3.0, response.AverageMatchRate, 0.0001)
		assert.Equal(t, "2024-04-02T08:30:00Z", response.LastRunAt)
		assert.Equal(t, []dto.CategoryCountResponse{
			{Category: "bank_fee", Count: 4},
			{Category: "interest", Count: 2},
		}, response.ExceptionsByCategory)
	})

	t.Run("returns 500 on repository error", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.GetStatsErr = errors.New("boom")
		handler := handlers.NewStatsHandler(repo, quietLogger)

		rec := httptest.NewRecorder()
		handler.Get(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
