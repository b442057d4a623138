package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

const (
	playReadTimeout  = 60 * time.Second
	playWriteTimeout = 10 * time.Second
	playPingInterval = 30 * time.Second
	playSendBuffer   = 16
)

// PlayHandler serves a websocket over which one game is played. Each client
// frame is handled exactly like the equivalent REST call and answered with a
// single reply frame.
type PlayHandler struct {
	sessions *Sessions
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewPlayHandler(sessions *Sessions, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP handles GET /v1/play/{id}
func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r, http.MethodGet)
		return
	}
	id, _, err := idFromPath(r.URL.Path, "/v1/play/")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		writeErr(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("Websocket upgrade failed", "game_id", id.String(), "error", err)
		return
	}
	h.logger.Info("Play client connected", "game_id", id.String())

	// The hijacked request's context says nothing about the socket's lifetime.
	ctx := context.WithoutCancel(r.Context())

	send := make(chan chat.PlayReply, playSendBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, send)
	}()

	h.readLoop(ctx, conn, id, send)
	close(send)
	<-done
	conn.Close()
	h.logger.Info("Play client disconnected", "game_id", id.String())
}

func (h *PlayHandler) readLoop(ctx context.Context, conn *websocket.Conn, id uuid.UUID, send chan<- chat.PlayReply) {
	conn.SetReadLimit(4 * chat.MaxMessageLength)
	conn.SetReadDeadline(time.Now().Add(playReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(playReadTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Play read failed", "game_id", id.String(), "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(playReadTimeout))

		var msg chat.PlayMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			send <- chat.PlayReply{Type: chat.PlayError, Status: http.StatusBadRequest, Error: "Could not parse message"}
			continue
		}
		send <- h.handle(ctx, id, &msg)
	}
}

func (h *PlayHandler) handle(ctx context.Context, id uuid.UUID, msg *chat.PlayMessage) chat.PlayReply {
	if err := msg.Validate(); err != nil {
		return chat.PlayReply{Type: chat.PlayError, Status: http.StatusBadRequest, Error: err.Error()}
	}

	engine := h.sessions.Engine()
	var op func(gs *state.GameState) (dialogue.Turn, error)
	switch msg.Type {
	case chat.PlayPing:
		return chat.PlayReply{Type: chat.PlayPong}
	case chat.PlayMenu:
		gs, err := h.sessions.Get(ctx, id)
		if err != nil {
			return h.errorReply(err)
		}
		options := engine.Menu(gs)
		if options == nil {
			options = []dialogue.MenuOption{}
		}
		return chat.PlayReply{Type: chat.PlayMenu, Options: options}
	case chat.PlayChat:
		op = func(gs *state.GameState) (dialogue.Turn, error) {
			return engine.HandleInput(gs, msg.Message)
		}
	case chat.PlayAction:
		action := *msg.Action
		op = func(gs *state.GameState) (dialogue.Turn, error) {
			return engine.Perform(gs, action)
		}
	case chat.PlayRestart:
		op = func(gs *state.GameState) (dialogue.Turn, error) {
			return engine.Restart(gs), nil
		}
	}

	gs, turn, err := h.sessions.Do(ctx, id, op)
	if err != nil {
		h.logger.Debug("Play frame rejected", "game_id", id.String(), "type", msg.Type, "error", err)
		return h.errorReply(err)
	}
	resp := chat.NewTurnResponse(gs, turn)
	return chat.PlayReply{Type: chat.PlayTurn, Turn: &resp}
}

func (h *PlayHandler) errorReply(err error) chat.PlayReply {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Play frame failed", "error", err)
		msg = "Internal server error"
	}
	return chat.PlayReply{Type: chat.PlayError, Status: status, Error: msg}
}

// writePump owns all writes to conn. It exits when send is closed or a write
// fails.
func (h *PlayHandler) writePump(conn *websocket.Conn, send <-chan chat.PlayReply) {
	ticker := time.NewTicker(playPingInterval)
	defer ticker.Stop()

	failed := false
	for {
		select {
		case reply, ok := <-send:
			if !ok {
				if !failed {
					conn.SetWriteDeadline(time.Now().Add(playWriteTimeout))
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				}
				return
			}
			if failed {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(playWriteTimeout))
			if err := conn.WriteJSON(reply); err != nil {
				h.logger.Warn("Play write failed", "error", err)
				failed = true
				// Unblock the reader so the connection winds down.
				conn.Close()
			}
		case <-ticker.C:
			if failed {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(playWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				failed = true
				conn.Close()
			}
		}
	}
}
