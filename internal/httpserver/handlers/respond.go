package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// notification is the toast the client shows after a mutation.
type notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func success(msg string) *notification { return &notification{Level: "success", Message: msg} }
func failure(msg string) *notification { return &notification{Level: "error", Message: msg} }

type errorResponse struct {
	Error        string        `json:"error"`
	Field        string        `json:"field,omitempty"`
	Notification *notification `json:"notification,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps store and validation errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsStorage(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. toast is the user-facing
// message; it is omitted for plain reads when empty.
func writeError(w http.ResponseWriter, log logger.Logger, err error, toast string) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if toast != "" {
		resp.Notification = failure(toast)
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.Int("status", status), logger.Error(err))
	} else {
		log.Debug("request rejected", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, resp)
}
