package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eshaffer321/ledgermatch/internal/api/dto"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// maxBodyBytes caps request bodies; row sets travel inline.
const maxBodyBytes = 32 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{repo: repo, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// writeStorageError maps repository errors onto responses
func (b *Base) writeStorageError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	if errors.Is(err, storage.ErrRunNotFound) {
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(resource))
		return
	}
	b.logger.ErrorContext(r.Context(), "storage request failed", "path", r.URL.Path, "error", err)
	b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
}

// DecodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ParseIntParam parses an integer query parameter with a default value.
// Negative values are treated as absent.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return parsed
}
