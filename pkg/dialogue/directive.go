package dialogue

import (
	"time"

	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/state"
)

// Kind names a presentation side effect.
type Kind string

const (
	SetSceneImage        Kind = "set_scene_image"
	ShowSpeechLine       Kind = "show_speech_line"
	EndConversation      Kind = "end_conversation"
	TriggerGameOver      Kind = "trigger_game_over"
	ShowOrientation      Kind = "show_orientation"
	DetachNPC            Kind = "detach_npc"
	ShowPlaceholderScene Kind = "show_placeholder_scene"
	ShowActionBubble     Kind = "show_action_bubble"
	ClearActionBubble    Kind = "clear_action_bubble"
	SetPortrait          Kind = "set_portrait"
	ShowMenu             Kind = "show_menu"
	HideMenu             Kind = "hide_menu"
	ClearSpeech          Kind = "clear_speech"
	StartConversation    Kind = "start_conversation"
	ShowStartScreen      Kind = "show_start_screen"
)

// Directive is one side effect for the presentation adapter to apply. Only the
// fields relevant to Kind are set.
type Directive struct {
	Kind       Kind         `json:"kind"`
	Image      string       `json:"image,omitempty"`
	Speaker    string       `json:"speaker,omitempty"`
	Text       string       `json:"text,omitempty"`
	Side       state.Side   `json:"side,omitempty"`
	Title      string       `json:"title,omitempty"`
	LocationID string       `json:"location_id,omitempty"`
	NPCID      string       `json:"npc_id,omitempty"`
	Variant    string       `json:"variant,omitempty"`
	Options    []MenuOption `json:"options,omitempty"`
}

// Step pairs a directive with the pause before it, measured from the previous step.
type Step struct {
	Directive Directive `json:"directive"`
	DelayMS   int64     `json:"delay_ms"`
}

// Delay returns the step's pause as a duration.
func (s Step) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// Turn is the result of one engine operation.
type Turn struct {
	Category   classifier.Category `json:"category,omitempty"`
	Steps      []Step              `json:"steps"`
	Transcript []state.Line        `json:"transcript,omitempty"` // conversation so far, captured before it ends
}

// Duration is the time from the first step to the last.
func (t Turn) Duration() time.Duration {
	var total time.Duration
	for _, s := range t.Steps {
		total += s.Delay()
	}
	return total
}

// Find returns the first step of the given kind.
func (t Turn) Find(kind Kind) (Step, bool) {
	for _, s := range t.Steps {
		if s.Directive.Kind == kind {
			return s, true
		}
	}
	return Step{}, false
}

// Has reports whether any step has the given kind.
func (t Turn) Has(kind Kind) bool {
	_, ok := t.Find(kind)
	return ok
}

// Script accumulates steps. The zero value is ready to use.
type Script struct {
	steps []Step
	wait  time.Duration
}

// Now appends d after any pending wait.
func (s *Script) Now(d Directive) *Script {
	s.steps = append(s.steps, Step{Directive: d, DelayMS: s.wait.Milliseconds()})
	s.wait = 0
	return s
}

// After appends d once delay has elapsed since the previous step.
func (s *Script) After(delay time.Duration, d Directive) *Script {
	s.wait += delay
	return s.Now(d)
}

// Append copies steps onto the script, adding any pending wait to the first one.
func (s *Script) Append(steps ...Step) *Script {
	for _, st := range steps {
		st.DelayMS += s.wait.Milliseconds()
		s.wait = 0
		s.steps = append(s.steps, st)
	}
	return s
}

// Wait adds a pause before the next appended step.
func (s *Script) Wait(delay time.Duration) *Script {
	s.wait += delay
	return s
}

// Steps returns the accumulated steps.
func (s *Script) Steps() []Step {
	if s.steps == nil {
		return []Step{}
	}
	return s.steps
}

// Directive constructors

func Scene(image string) Directive {
	return Directive{Kind: SetSceneImage, Image: image}
}

func Speech(speaker, text string, side state.Side) Directive {
	return Directive{Kind: ShowSpeechLine, Speaker: speaker, Text: text, Side: side}
}

func End() Directive {
	return Directive{Kind: EndConversation}
}

func GameOver(title, message string) Directive {
	return Directive{Kind: TriggerGameOver, Title: title, Text: message}
}

func Orientation(text, image string) Directive {
	return Directive{Kind: ShowOrientation, Text: text, Image: image}
}

func Detach(locationID, npcID string) Directive {
	return Directive{Kind: DetachNPC, LocationID: locationID, NPCID: npcID}
}

func Placeholder(title, label string) Directive {
	return Directive{Kind: ShowPlaceholderScene, Title: title, Text: label}
}

func ActionBubble(title, text string) Directive {
	return Directive{Kind: ShowActionBubble, Title: title, Text: text}
}

func ClearBubble() Directive {
	return Directive{Kind: ClearActionBubble}
}

func Portrait(npcID, variant, image string) Directive {
	return Directive{Kind: SetPortrait, NPCID: npcID, Variant: variant, Image: image}
}

func Menu(options []MenuOption) Directive {
	return Directive{Kind: ShowMenu, Options: options}
}

func NoMenu() Directive {
	return Directive{Kind: HideMenu}
}

func ClearLines() Directive {
	return Directive{Kind: ClearSpeech}
}

func Converse(npcID, speaker string) Directive {
	return Directive{Kind: StartConversation, NPCID: npcID, Speaker: speaker}
}

func StartScreen(image string) Directive {
	return Directive{Kind: ShowStartScreen, Image: image}
}
