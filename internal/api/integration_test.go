package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledgermatch/internal/api"
	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/application/service"
	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// These tests run the full stack against a real SQLite file:
// HTTP request → Router → Handlers → Service → Engine → Storage → SQLite

func createTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "api_integration.db"))
	require.NoError(t, err)

	engine := matcher.NewEngine(nil, matcher.DefaultOptions(), quietLogger)
	server := api.NewServer(api.DefaultConfig(), store, service.NewReconcileService(engine, store, quietLogger), quietLogger)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestAPI_Integration_ReconcileAndBrowse(t *testing.T) {
	ts := createTestServer(t)

	body := map[string]any{
		"sourceA": map[string]any{"label": "Checking", "columns": []map[string]string{
			{"key": "date", "type": "date"},
			{"key": "amount", "type": "amount"},
			{"key": "check_no", "type": "reference"},
		}},
		"sourceB": map[string]any{"label": "Books", "columns": []map[string]string{
			{"key": "date", "type": "date"},
			{"key": "amount", "type": "amount"},
			{"key": "doc", "type": "reference"},
		}},
		"rowsA": []map[string]any{
			{"date": "2024-03-01", "amount": "250.00", "check_no": "1041"},
			{"date": "2024-03-02", "amount": "250.00", "check_no": "1042"},
			{"date": "2024-03-31", "amount": "-15.00", "check_no": ""},
		},
		"rowsB": []map[string]any{
			{"date": "2024-03-02", "amount": "250.00", "doc": "1042"},
			{"date": "2024-03-01", "amount": "250.00", "doc": "1041"},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/reconciliations", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.RunDetailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotNil(t, created.Result)
	assert.Len(t, created.Result.Matched, 2)
	assert.Equal(t, -15.0, created.Result.Variance)

	for _, pair := range created.Result.Matched {
		// Check numbers pair rows 0↔1 and 1↔0
		assert.Equal(t, 1-pair.SourceAIndex, pair.SourceBIndex)
	}

	t.Run("run detail survives the round trip", func(t *testing.T) {
		var got dto.RunDetailResponse
		require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/runs/"+created.ID, &got))
		assert.Equal(t, created.Result, got.Result)
		assert.Equal(t, "Checking", got.SourceA)
		assert.Equal(t, 1, got.ExceptionCount)
	})

	t.Run("runs list includes the run", func(t *testing.T) {
		var list dto.RunListResponse
		require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/runs?status=completed", &list))
		require.Len(t, list.Runs, 1)
		assert.Equal(t, created.ID, list.Runs[0].ID)
	})

	t.Run("exceptions come from the exceptions table", func(t *testing.T) {
		var list dto.ExceptionListResponse
		require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/runs/"+created.ID+"/exceptions?source=A", &list))
		require.Equal(t, 1, list.Count)
		assert.Equal(t, 2, list.Exceptions[0].RowIndex)
		assert.Equal(t, matcher.CategoryOther, list.Exceptions[0].Category)
	})

	t.Run("stats aggregate the run", func(t *testing.T) {
		var stats dto.StatsResponse
		require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/stats", &stats))
		assert.Equal(t, 1, stats.CompletedRuns)
		assert.Equal(t, 2, stats.TotalMatched)
		assert.Equal(t, []dto.CategoryCountResponse{{Category: "other", Count: 1}}, stats.ExceptionsByCategory)
	})

	t.Run("unknown run is 404 with error envelope", func(t *testing.T) {
		var apiErr dto.APIError
		require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/runs/does-not-exist", &apiErr))
		assert.Equal(t, dto.ErrCodeNotFound, apiErr.Code)
	})
}
