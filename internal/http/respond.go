package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cashy/internal/auth"
	"cashy/internal/core"
	"cashy/internal/storage"
)

// Envelope is the standard API response wrapper used across handlers. Kind
// carries the machine-readable validation kind on domain errors so clients
// can pick a field-specific message without parsing Message.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// writeDecodeError handles request body decode failures. Validation errors
// raised by custom unmarshallers (amount, date) keep their kind; anything
// else is malformed JSON.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeDomainError(w, r, err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON payload")
}

// writeDomainError maps service and storage errors onto HTTP statuses.
// Login uses 404 for an unknown email and 400 for a bad password, so
// clients can distinguish the two without text matching.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Kind == core.KindUserNotFound {
			status = http.StatusNotFound
		}
		write(w, status, Envelope{Code: status, Message: verr.Msg, Kind: string(verr.Kind)})
	case errors.Is(err, storage.ErrEmailExists):
		write(w, http.StatusBadRequest, Envelope{
			Code:    http.StatusBadRequest,
			Message: "Email already in use",
			Kind:    string(core.KindEmailTaken),
		})
	case errors.Is(err, storage.ErrUsernameExists):
		write(w, http.StatusBadRequest, Envelope{
			Code:    http.StatusBadRequest,
			Message: "Username already taken",
			Kind:    string(core.KindUsernameTaken),
		})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "Invalid token")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
