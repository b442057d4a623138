package scenario

import (
	"errors"
	"fmt"
	"sort"
)

// Well-known ids used by the authored Console University data.
const (
	StartLocation = "start"
	DeanOffice    = "dean_office"
	Quad          = "quad"
	DeanID        = "dean_cain"
	QuestGiverID  = "earthworm_jim"
	DefaultName   = "Console University"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownNPC      = errors.New("unknown npc")
	ErrUnknownResponse = errors.New("unknown response")
)

// UnknownLocation wraps ErrUnknownLocation with the offending id.
func UnknownLocation(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownLocation, id)
}

// Progress is the set of story flags tracked per session.
type Progress struct {
	HasName             bool `json:"has_name" yaml:"has_name" toml:"has_name"`
	TalkedToDean        bool `json:"talked_to_dean" yaml:"talked_to_dean" toml:"talked_to_dean"`
	GotOrientation      bool `json:"got_orientation" yaml:"got_orientation" toml:"got_orientation"`
	TalkedToJim         bool `json:"talked_to_jim" yaml:"talked_to_jim" toml:"talked_to_jim"`
	JimQuestionAnswered bool `json:"jim_question_answered" yaml:"jim_question_answered" toml:"jim_question_answered"`
	JimWrongAnswers     int  `json:"jim_wrong_answers" yaml:"jim_wrong_answers" toml:"jim_wrong_answers"`
	Expelled            bool `json:"expelled" yaml:"expelled" toml:"expelled"`
}

// Scenario is the game data document: the world graph, the cast, and the
// initial state a new session starts from.
type Scenario struct {
	Name          string              `json:"name" yaml:"name" toml:"name"`
	StartLocation string              `json:"start_location" yaml:"start_location" toml:"start_location"`
	PlayerName    string              `json:"player_name" yaml:"player_name" toml:"player_name"`
	GameState     Progress            `json:"game_state" yaml:"game_state" toml:"game_state"`
	Locations     map[string]Location `json:"locations" yaml:"locations" toml:"locations"`
	NPCs          map[string]NPC      `json:"npcs" yaml:"npcs" toml:"npcs"`
}

// Location represents a place in the game world.
type Location struct {
	ID                 string   `json:"id" yaml:"id" toml:"id"`
	Name               string   `json:"name" yaml:"name" toml:"name"`
	Image              string   `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"` // empty means under construction
	SettingDescription string   `json:"setting_description,omitempty" yaml:"setting_description,omitempty" toml:"setting_description,omitempty"`
	Description        string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Exits              []string `json:"exits,omitempty" yaml:"exits,omitempty" toml:"exits,omitempty"` // location ids
	NPC                string   `json:"npc,omitempty" yaml:"npc,omitempty" toml:"npc,omitempty"`
	RequiresTalk       bool     `json:"requires_talk,omitempty" yaml:"requires_talk,omitempty" toml:"requires_talk,omitempty"` // NPC must be talked to before leaving
	KeepWalking        bool     `json:"keep_walking,omitempty" yaml:"keep_walking,omitempty" toml:"keep_walking,omitempty"`   // menu offers "Keep Walking" instead of exits
}

// UnderConstruction reports whether the location has no scene yet.
func (l *Location) UnderConstruction() bool {
	return l.Image == ""
}

// Setting returns the text shown when the player enters.
func (l *Location) Setting() string {
	if l.SettingDescription != "" {
		return l.SettingDescription
	}
	return l.Description
}

// Location returns the location with the given id.
func (s *Scenario) Location(id string) (*Location, error) {
	loc, ok := s.Locations[id]
	if !ok {
		return nil, UnknownLocation(id)
	}
	if loc.ID == "" {
		loc.ID = id
	}
	return &loc, nil
}

// NPC returns the NPC with the given id.
func (s *Scenario) NPC(id string) (*NPC, error) {
	npc, ok := s.NPCs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNPC, id)
	}
	if npc.ID == "" {
		npc.ID = id
	}
	return &npc, nil
}

// NPCName returns the NPC's display name, or the id itself when the NPC is unknown.
func (s *Scenario) NPCName(id string) string {
	if npc, ok := s.NPCs[id]; ok && npc.Name != "" {
		return npc.Name
	}
	return id
}

// CloneLocations returns a deep copy of the location map. Sessions mutate their
// own copy when an NPC leaves for good.
func (s *Scenario) CloneLocations() map[string]Location {
	out := make(map[string]Location, len(s.Locations))
	for id, loc := range s.Locations {
		if loc.ID == "" {
			loc.ID = id
		}
		loc.Exits = append([]string(nil), loc.Exits...)
		out[id] = loc
	}
	return out
}

// LocationIDs returns the location ids in sorted order.
func (s *Scenario) LocationIDs() []string {
	ids := make([]string, 0, len(s.Locations))
	for id := range s.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveExits returns the exits of loc that exist in locations, in declaration
// order. Unknown exit ids are skipped.
func ResolveExits(loc *Location, locations map[string]Location) []Location {
	var out []Location
	for _, id := range loc.Exits {
		exit, ok := locations[id]
		if !ok {
			continue
		}
		if exit.ID == "" {
			exit.ID = id
		}
		out = append(out, exit)
	}
	return out
}

// normalize fills ids from map keys and falls back to the default start location.
func (s *Scenario) normalize() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.StartLocation == "" {
		s.StartLocation = StartLocation
	}
	if s.Locations == nil {
		s.Locations = make(map[string]Location)
	}
	if s.NPCs == nil {
		s.NPCs = make(map[string]NPC)
	}
	for id, loc := range s.Locations {
		loc.ID = id
		s.Locations[id] = loc
	}
	for id, npc := range s.NPCs {
		npc.ID = id
		s.NPCs[id] = npc
	}
}
