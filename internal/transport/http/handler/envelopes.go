package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/admin-console-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Bearer   string           `json:"Bearer,omitempty"`
	Operator *domain.Operator `json:"operator,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// AccountListEnvelope wraps the paged account listing.
type AccountListEnvelope struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalCount int              `json:"totalCount"`
	Data       []domain.Account `json:"data"`
	Error      string           `json:"error,omitempty"`
}

// CouponListEnvelope wraps the coupon listing.
type CouponListEnvelope struct {
	Data  []domain.Coupon `json:"data"`
	Error string          `json:"error,omitempty"`
}

// SendResultEnvelope wraps a single send response.
type SendResultEnvelope struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// BulkResultEnvelope wraps a bulk send response.
type BulkResultEnvelope struct {
	Message string              `json:"message"`
	Results *domain.BatchResult `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps sentinel errors to HTTP statuses. Conflicts come
// back as 400 because the console client treats duplicate coupon codes as a
// validation failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
