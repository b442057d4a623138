package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/scenario"
)

// Screen is the top-level view a session is on.
type Screen string

const (
	ScreenStart    Screen = "start"
	ScreenPlaying  Screen = "playing"
	ScreenGameOver Screen = "game_over"
)

// Ending records which authored ending closed the session, if any.
type Ending string

const (
	EndingNone       Ending = ""
	EndingExpelled   Ending = "expelled"
	EndingDroppedOut Ending = "dropped_out"
)

// JimStage tracks where the quest giver's conversation arc stands.
type JimStage string

const (
	JimGreeting      JimStage = "greeting"
	JimAwaitingTopic JimStage = "awaiting_topic"
	JimAwaitingTime  JimStage = "awaiting_time_answer"
	JimAwaitingAny   JimStage = "awaiting_any_response" // scripted policy
	JimAnswered      JimStage = "answered"
	JimExited        JimStage = "exited"
)

// DeanStage is derived from progress flags; it is never stored.
type DeanStage string

const (
	DeanAwaitingName    DeanStage = "awaiting_name"
	DeanGraduated       DeanStage = "graduated"
	DeanPostOrientation DeanStage = "post_orientation"
)

// GameState is the state of one Console University session.
// Progress flags are embedded so they serialize at the top level.
type GameState struct {
	ID              uuid.UUID `json:"id"`
	PlayerName      string    `json:"player_name"`
	CurrentLocation string    `json:"current_location"`
	scenario.Progress

	Ending       Ending                       `json:"ending,omitempty"`
	Screen       Screen                       `json:"screen"`
	Conversation *Conversation                `json:"conversation,omitempty"` // non-nil while in dialogue mode
	JimStage     JimStage                     `json:"jim_stage"`
	Locations    map[string]scenario.Location `json:"locations"` // session copy of the world graph
	PendingUntil time.Time                    `json:"pending_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates a session positioned on the start screen of s.
func NewGameState(s *scenario.Scenario) *GameState {
	now := time.Now()
	gs := &GameState{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	gs.Reset(s)
	return gs
}

// Reset returns every field except the session id and creation time to its
// initial value, including a fresh copy of the world graph.
func (gs *GameState) Reset(s *scenario.Scenario) {
	gs.PlayerName = s.PlayerName
	gs.CurrentLocation = s.StartLocation
	gs.Progress = s.GameState
	gs.Ending = EndingNone
	gs.Screen = ScreenStart
	gs.Conversation = nil
	gs.JimStage = JimGreeting
	gs.Locations = s.CloneLocations()
	gs.PendingUntil = time.Time{}
	gs.UpdatedAt = time.Now()
}

// InDialogue reports whether a conversation is active.
func (gs *GameState) InDialogue() bool {
	return gs.Conversation != nil
}

// SetName records the player's name. HasName and TalkedToDean are only ever
// set here, together. Returns false if the player was already named.
func (gs *GameState) SetName(name string) bool {
	if gs.HasName {
		return false
	}
	gs.PlayerName = name
	gs.HasName = true
	gs.TalkedToDean = true
	return true
}

// RecordWrongAnswer increments the quest giver's strike counter and returns
// the new count.
func (gs *GameState) RecordWrongAnswer() int {
	gs.JimWrongAnswers++
	return gs.JimWrongAnswers
}

// Location returns the session's copy of a location.
func (gs *GameState) Location(id string) (*scenario.Location, error) {
	loc, ok := gs.Locations[id]
	if !ok {
		return nil, scenario.UnknownLocation(id)
	}
	if loc.ID == "" {
		loc.ID = id
	}
	return &loc, nil
}

// DetachNPC permanently removes the NPC from the location. Returns false if
// the NPC was not attached there.
func (gs *GameState) DetachNPC(locationID, npcID string) bool {
	loc, ok := gs.Locations[locationID]
	if !ok || loc.NPC == "" || loc.NPC != npcID {
		return false
	}
	loc.NPC = ""
	gs.Locations[locationID] = loc
	return true
}

// NPCAt returns the NPC attached to the location, or "".
func (gs *GameState) NPCAt(locationID string) string {
	return gs.Locations[locationID].NPC
}

// DeanStage derives the Dean's conversation stage from progress flags.
func (gs *GameState) DeanStage() DeanStage {
	switch {
	case !gs.HasName:
		return DeanAwaitingName
	case gs.GotOrientation:
		return DeanPostOrientation
	default:
		return DeanGraduated
	}
}

// Busy reports whether a previously scheduled response is still playing at now.
func (gs *GameState) Busy(now time.Time) bool {
	return now.Before(gs.PendingUntil)
}

// Touch updates the modification time.
func (gs *GameState) Touch() {
	gs.UpdatedAt = time.Now()
}
