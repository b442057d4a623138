package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

// ChatHandler takes typed player input for the active conversation.
type ChatHandler struct {
	sessions *Sessions
	logger   *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions *Sessions, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles POST /v1/chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger, r, http.MethodPost)
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'gamestate_id' and 'message' fields.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	engine := h.sessions.Engine()
	gs, turn, err := h.sessions.Do(r.Context(), request.GameStateID, func(gs *state.GameState) (dialogue.Turn, error) {
		return engine.HandleInput(gs, request.Message)
	})
	if err != nil {
		h.logger.Debug("Input rejected", "game_id", request.GameStateID.String(), "error", err)
		writeErr(w, h.logger, err)
		return
	}

	h.logger.Info("Input handled",
		"game_id", gs.ID.String(),
		"category", turn.Category,
		"steps", len(turn.Steps))
	writeJSON(w, h.logger, http.StatusOK, chat.NewTurnResponse(gs, turn))
}
