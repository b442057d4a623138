package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

type GameStateHandler struct {
	sessions *Sessions
	logger   *slog.Logger
}

func NewGameStateHandler(sessions *Sessions, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for game state operations
// Routes:
// POST /v1/gamestate              - Create a session on the start screen
// GET /v1/gamestate/{id}          - Read game state by ID
// DELETE /v1/gamestate/{id}       - Delete game state by ID
// POST /v1/gamestate/{id}/restart - Reset to the start screen
func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/v1/gamestate" || path == "/v1/gamestate/" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, h.logger, r, http.MethodPost)
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, rest, err := idFromPath(path, "/v1/gamestate/")
	if err != nil {
		h.logger.Warn("Invalid game state ID", "path", path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	switch {
	case rest == "restart":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, h.logger, r, http.MethodPost)
			return
		}
		h.handleRestart(w, r, id)
	case rest != "":
		writeError(w, h.logger, http.StatusNotFound, "Unknown game state route")
	case r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		methodNotAllowed(w, h.logger, r, http.MethodGet, http.MethodDelete)
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	gs, turn, err := h.sessions.Create(r.Context())
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, chat.NewTurnResponse(gs, turn))
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		writeErr(w, h.logger, err)
		return
	}
	h.logger.Info("Game deleted", "game_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleRestart(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	engine := h.sessions.Engine()
	gs, turn, err := h.sessions.Do(r.Context(), id, func(gs *state.GameState) (dialogue.Turn, error) {
		return engine.Restart(gs), nil
	})
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, chat.NewTurnResponse(gs, turn))
}
