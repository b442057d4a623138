package chat

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

// ChatRequest is a line the player typed into the active conversation.
type ChatRequest struct {
	GameStateID uuid.UUID `json:"gamestate_id"` // Unique ID for the game state
	Message     string    `json:"message"`
}

// ActionRequest is a menu, modal or screen button press.
type ActionRequest struct {
	GameStateID uuid.UUID       `json:"gamestate_id"`
	Action      dialogue.Action `json:"action"`
}

// TurnResponse carries the schedule a client plays for one operation, along
// with enough of the session for it to resync after a reload.
type TurnResponse struct {
	GameStateID uuid.UUID           `json:"gamestate_id"`
	Category    classifier.Category `json:"category,omitempty"`
	Steps       []dialogue.Step     `json:"steps"`
	Transcript  []state.Line        `json:"transcript,omitempty"`
	Screen      state.Screen        `json:"screen"`
	Location    string              `json:"location,omitempty"`
	BusyUntilMS int64               `json:"busy_until_ms,omitempty"` // unix millis; input before this is rejected
}

// MenuResponse lists the options currently offered at the player's location.
type MenuResponse struct {
	GameStateID uuid.UUID             `json:"gamestate_id"`
	Options     []dialogue.MenuOption `json:"options"`
}

// ErrorResponse is returned by the API on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewTurnResponse wraps a turn for the session it was produced for.
func NewTurnResponse(gs *state.GameState, turn dialogue.Turn) TurnResponse {
	steps := turn.Steps
	if steps == nil {
		steps = []dialogue.Step{}
	}
	resp := TurnResponse{
		GameStateID: gs.ID,
		Category:    turn.Category,
		Steps:       steps,
		Transcript:  turn.Transcript,
		Screen:      gs.Screen,
		Location:    gs.CurrentLocation,
	}
	if !gs.PendingUntil.IsZero() {
		resp.BusyUntilMS = gs.PendingUntil.UnixMilli()
	}
	return resp
}

// Validate checks the request. An empty message is allowed and produces an
// empty turn.
func (cr *ChatRequest) Validate() error {
	if cr.GameStateID == uuid.Nil {
		return fmt.Errorf("gamestate_id is required")
	}
	if len(cr.Message) > MaxMessageLength {
		return fmt.Errorf("message cannot exceed %d characters", MaxMessageLength)
	}
	return nil
}

// Validate checks the request and the action it carries.
func (ar *ActionRequest) Validate() error {
	if ar.GameStateID == uuid.Nil {
		return fmt.Errorf("gamestate_id is required")
	}
	return ar.Action.Validate()
}

// MaxMessageLength bounds a single typed line.
const MaxMessageLength = 500

// PlayMessageType names a frame on the play websocket.
type PlayMessageType string

const (
	PlayChat    PlayMessageType = "chat"
	PlayAction  PlayMessageType = "action"
	PlayRestart PlayMessageType = "restart"
	PlayMenu    PlayMessageType = "menu"
	PlayPing    PlayMessageType = "ping"

	PlayTurn  PlayMessageType = "turn"
	PlayError PlayMessageType = "error"
	PlayPong  PlayMessageType = "pong"
)

// PlayMessage is a client frame on the play websocket. The game is fixed by
// the connection URL, so frames carry no id.
type PlayMessage struct {
	Type    PlayMessageType  `json:"type"`
	Message string           `json:"message,omitempty"`
	Action  *dialogue.Action `json:"action,omitempty"`
}

// PlayReply is a server frame on the play websocket. Status mirrors the HTTP
// status the same request would have received.
type PlayReply struct {
	Type    PlayMessageType       `json:"type"`
	Turn    *TurnResponse         `json:"turn,omitempty"`
	Options []dialogue.MenuOption `json:"options,omitempty"`
	Status  int                   `json:"status,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Validate checks the frame's payload against its type.
func (pm *PlayMessage) Validate() error {
	switch pm.Type {
	case PlayChat:
		if len(pm.Message) > MaxMessageLength {
			return fmt.Errorf("message cannot exceed %d characters", MaxMessageLength)
		}
	case PlayAction:
		if pm.Action == nil {
			return fmt.Errorf("action is required")
		}
		return pm.Action.Validate()
	case PlayRestart, PlayMenu, PlayPing:
	default:
		return fmt.Errorf("unknown message type %q", pm.Type)
	}
	return nil
}
