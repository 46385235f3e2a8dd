package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dashcrm-api/internal/domain"
)

// Envelope is the uniform response wrapper. Success responses carry data;
// failures carry a human-readable error plus a stable machine code.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, Envelope{Success: false, Error: msg, Code: code})
}

// httpError maps a service error onto status, message and machine code.
// Unclassified errors log at error level and surface as an opaque 500.
func httpError(w http.ResponseWriter, err error) {
	var locked *domain.LockedError
	switch {
	case errors.As(err, &locked):
		writeError(w, http.StatusTooManyRequests, locked.Error(), "TOO_MANY_ATTEMPTS")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, "invalid or expired code", "INVALID_OR_EXPIRED_CODE")
	case errors.Is(err, domain.ErrCredentialInvalid):
		writeError(w, http.StatusUnauthorized, "credential rejected by upstream", "CREDENTIAL_INVALID")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
	case errors.Is(err, domain.ErrUpstreamNotFound), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream unavailable", "SERVICE_UNAVAILABLE")
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream error", "BAD_GATEWAY")
	default:
		slog.Error("unhandled request error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_SERVER_ERROR")
	}
}
