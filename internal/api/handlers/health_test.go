package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/api/handlers"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

func checkHealth(t *testing.T, handler *handlers.HealthHandler) (*httptest.ResponseRecorder, dto.HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var response dto.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return rec, response
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	t.Run("reports a reachable store", func(t *testing.T) {
		repo := storage.NewMockRepository()

		rec, response := checkHealth(t, handlers.NewHealthHandler(repo, true, quietLogger))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, dto.HealthOK, response.Status)
		assert.Equal(t, dto.StoreReachable, response.Store)
		assert.True(t, response.Reconcile)
		assert.NotEmpty(t, response.Timestamp)
	})

	t.Run("read-only server", func(t *testing.T) {
		_, response := checkHealth(t, handlers.NewHealthHandler(storage.NewMockRepository(), false, quietLogger))

		assert.False(t, response.Reconcile)
	})

	t.Run("unreachable store degrades", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.PingErr = errors.New("database is locked")

		rec, response := checkHealth(t, handlers.NewHealthHandler(repo, true, quietLogger))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, dto.HealthDegraded, response.Status)
		assert.Equal(t, dto.StoreUnreachable, response.Store)
	})
}
