// Package web holds the JSON response helpers shared by all handler
// packages, including the mapping from domain error kinds to HTTP status
// codes.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storefront-backend/internal/domain"
)

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	WriteJSON(w, logger, status, map[string]string{"error": message})
}

// WriteDomainError resolves the status code from the error kind and sends
// the error message as the body. Unknown errors are not echoed to the
// client.
func WriteDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", err)
		WriteError(w, logger, status, "internal server error")
		return
	}
	WriteError(w, logger, status, err.Error())
}

func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrChargeFailed):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// ParsePageParams reads page and size query parameters with the listing
// defaults: page 0, size 10, size capped at 100.
func ParsePageParams(r *http.Request) (page, size int) {
	page = intParam(r, "page", 0)
	size = intParam(r, "size", 10)
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
