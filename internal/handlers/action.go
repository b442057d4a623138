package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

// ActionHandler applies menu, modal and screen button presses.
type ActionHandler struct {
	sessions *Sessions
	logger   *slog.Logger
}

func NewActionHandler(sessions *Sessions, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles POST /v1/action
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger, r, http.MethodPost)
		return
	}

	var request chat.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'gamestate_id' and 'action' fields.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	engine := h.sessions.Engine()
	gs, turn, err := h.sessions.Do(r.Context(), request.GameStateID, func(gs *state.GameState) (dialogue.Turn, error) {
		return engine.Perform(gs, request.Action)
	})
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	h.logger.Info("Action performed",
		"game_id", gs.ID.String(),
		"action", request.Action.Kind,
		"target", request.Action.Target,
		"location", gs.CurrentLocation)
	writeJSON(w, h.logger, http.StatusOK, chat.NewTurnResponse(gs, turn))
}

// MenuHandler lists the actions offered at the player's location.
type MenuHandler struct {
	sessions *Sessions
	logger   *slog.Logger
}

func NewMenuHandler(sessions *Sessions, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles GET /v1/menu/{id}
func (h *MenuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r, http.MethodGet)
		return
	}
	id, _, err := idFromPath(r.URL.Path, "/v1/menu/")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	gs, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	options := h.sessions.Engine().Menu(gs)
	if options == nil {
		options = []dialogue.MenuOption{}
	}
	writeJSON(w, h.logger, http.StatusOK, chat.MenuResponse{GameStateID: gs.ID, Options: options})
}
