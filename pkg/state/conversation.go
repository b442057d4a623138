package state

import "time"

// Side is which side of the dialogue panel a line is drawn on.
type Side string

const (
	SideNPC    Side = "left"
	SidePlayer Side = "right"
)

// Line is one spoken line in a conversation transcript.
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Side    Side   `json:"side"`
}

// Conversation is the transient dialogue session with one NPC. It exists only
// while the player is in dialogue mode.
type Conversation struct {
	NPCID     string    `json:"npc_id"`
	Lines     []Line    `json:"lines"`
	StartedAt time.Time `json:"started_at"`
}

// StartConversation opens a dialogue with npcID, replacing any active one.
func (gs *GameState) StartConversation(npcID string) *Conversation {
	gs.Conversation = &Conversation{
		NPCID:     npcID,
		Lines:     make([]Line, 0, 8),
		StartedAt: time.Now(),
	}
	return gs.Conversation
}

// EndConversation discards the active dialogue and its transcript.
func (gs *GameState) EndConversation() {
	gs.Conversation = nil
}

// Add appends a line to the transcript.
func (c *Conversation) Add(speaker, text string, side Side) {
	c.Lines = append(c.Lines, Line{Speaker: speaker, Text: text, Side: side})
}

// Transcript returns a copy of the lines spoken so far, or nil outside dialogue.
func (gs *GameState) Transcript() []Line {
	if gs.Conversation == nil {
		return nil
	}
	return append([]Line(nil), gs.Conversation.Lines...)
}
