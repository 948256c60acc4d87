// Package handler contains the HTTP handlers for the betting API. Each
// handler declares a local interface for the service methods it needs, so
// the package never depends on concrete service types.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the domain sentinel errors onto HTTP statuses.
// Anything unmapped is a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrMarketClosed):
		writeError(w, http.StatusUnprocessableEntity, "market is closed")
	case errors.Is(err, domain.ErrMarketResolved):
		writeError(w, http.StatusUnprocessableEntity, "market is already resolved")
	case errors.Is(err, domain.ErrInvalidSide):
		writeError(w, http.StatusBadRequest, "side must be yes or no")
	case errors.Is(err, domain.ErrBetOutOfBounds):
		writeError(w, http.StatusUnprocessableEntity, "bet amount outside market bounds")
	case errors.Is(err, domain.ErrPaymentFailed):
		writeError(w, http.StatusBadGateway, "treasury payment failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseListOpts extracts pagination parameters from the query string.
// Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{Limit: limit, Offset: offset}
}
