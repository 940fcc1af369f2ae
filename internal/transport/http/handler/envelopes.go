package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rarepair-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// AuthEnvelope wraps login/register responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer,omitempty"`
	User   *domain.User `json:"user,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// CodeIssuedEnvelope reports when an emailed verification code lapses.
type CodeIssuedEnvelope struct {
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError translates a service error into a status and a stable
// machine-readable error code. Clients branch on error_code, never on the
// message text.
func httpError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrExpired):
		status, code = http.StatusGone, "EXPIRED"
	case errors.Is(err, domain.ErrMismatch):
		status, code = http.StatusUnprocessableEntity, "MISMATCH"
	case errors.Is(err, domain.ErrDeliveryFailed):
		status, code = http.StatusBadGateway, "DELIVERY_FAILED"
	case errors.Is(err, domain.ErrScoringUnavailable):
		status, code = http.StatusServiceUnavailable, "SCORING_UNAVAILABLE"
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrBadRequest):
		status, code = http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	}
	writeJSON(w, status, MessageEnvelope{Error: err.Error(), ErrorCode: code})
}
