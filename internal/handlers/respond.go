package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/scenario"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse = chat.ErrorResponse

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps engine and session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, dialogue.ErrBusy),
		errors.Is(err, dialogue.ErrNoConversation),
		errors.Is(err, dialogue.ErrNotPlaying),
		errors.Is(err, dialogue.ErrNPCNotHere):
		return http.StatusConflict
	case errors.Is(err, dialogue.ErrInvalidAction),
		errors.Is(err, scenario.ErrUnknownLocation),
		errors.Is(err, scenario.ErrUnknownNPC):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with its mapped status. Internal errors are not echoed.
func writeErr(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		msg = "Internal server error"
	}
	writeError(w, logger, status, msg)
}

// idFromPath parses the uuid that follows prefix, e.g. "/v1/menu/" in
// "/v1/menu/{id}". rest is whatever follows the id.
func idFromPath(path, prefix string) (id uuid.UUID, rest string, err error) {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	idStr, rest, _ := strings.Cut(tail, "/")
	id, err = uuid.Parse(idStr)
	return id, rest, err
}

func methodNotAllowed(w http.ResponseWriter, logger *slog.Logger, r *http.Request, allowed ...string) {
	logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+strings.Join(allowed, ", "))
}
