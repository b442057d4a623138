package scenario

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/jwebster45206/console-university/pkg/classifier"
)

// Issue is one problem found in game data. Warnings describe data the engine
// tolerates, such as exits to locations that do not exist.
type Issue struct {
	Path    string
	Message string
	Warning bool
}

func (i Issue) String() string {
	level := "error"
	if i.Warning {
		level = "warning"
	}
	return fmt.Sprintf("%s: %s: %s", level, i.Path, i.Message)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// IsValidID reports whether id is lowercase snake_case.
func IsValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

// requiredLines are the response keys each persona cannot play without.
var requiredLines = map[classifier.Persona][]string{
	classifier.PersonaDean: {
		RespInsult, RespNonsense, RespNameGiven, RespLeaveOffice, RespExitOffice,
	},
	classifier.PersonaQuestGiver: {
		RespAboutQuest, RespWhatToDo, RespMean, RespSuccess, RespWrongFirst,
		RespWrongThird, RespIrrelevant, RespGeneric,
	},
}

// Validate checks ids, references between locations and NPCs, and the lines
// each NPC needs. Issues are returned in a stable order.
func (s *Scenario) Validate() []Issue {
	var issues []Issue
	add := func(warning bool, path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Warning: warning})
	}

	if s.StartLocation == "" {
		add(false, "start_location", "is required")
	} else if _, ok := s.Locations[s.StartLocation]; !ok {
		add(false, "start_location", "unknown location %q", s.StartLocation)
	}

	for _, id := range s.LocationIDs() {
		loc := s.Locations[id]
		path := "locations." + id
		if !IsValidID(id) {
			add(false, path, "id should be lowercase snake_case")
		}
		if loc.ID != "" && loc.ID != id {
			add(false, path+".id", "%q does not match its key", loc.ID)
		}
		if loc.Name == "" {
			add(true, path+".name", "is empty")
		}
		for _, exit := range loc.Exits {
			if _, ok := s.Locations[exit]; !ok {
				add(true, path+".exits", "unknown location %q is skipped", exit)
			}
		}
		if loc.NPC != "" {
			if _, ok := s.NPCs[loc.NPC]; !ok {
				add(false, path+".npc", "unknown npc %q", loc.NPC)
			}
		} else if loc.RequiresTalk {
			add(true, path+".requires_talk", "set without an npc")
		}
	}

	npcIDs := make([]string, 0, len(s.NPCs))
	for id := range s.NPCs {
		npcIDs = append(npcIDs, id)
	}
	sort.Strings(npcIDs)

	for _, id := range npcIDs {
		npc := s.NPCs[id]
		path := "npcs." + id
		if !IsValidID(id) {
			add(false, path, "id should be lowercase snake_case")
		}
		if npc.ID != "" && npc.ID != id {
			add(false, path+".id", "%q does not match its key", npc.ID)
		}
		if npc.Greeting == "" {
			add(true, path+".greeting", "is empty")
		}
		if npc.Images[VariantDefault] == "" {
			add(true, path+".images", "no default image")
		}

		required, ok := requiredLines[npc.Persona]
		if !ok {
			add(false, path+".persona", "unknown persona %q", npc.Persona)
			continue
		}
		for _, key := range required {
			if _, ok := npc.Responses[key]; !ok {
				add(false, path+".responses", "missing %q", key)
			}
		}
	}
	return issues
}

// Errors filters out warnings.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if !i.Warning {
			out = append(out, i)
		}
	}
	return out
}
