package scenario

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/console-university/pkg/classifier"
)

// Image variants an NPC can be shown in.
const (
	VariantDefault     = "default"
	VariantQuestion    = "question"
	VariantBad         = "bad"
	VariantExam        = "exam"
	VariantExpelled    = "expelled"
	VariantOrientation = "orientation"
)

// Response keys used by the dialogue engine.
const (
	// Dean
	RespInsult      = "insult"
	RespNonsense    = "nonsense"
	RespNameGiven   = "name_given"
	RespLeaveOffice = "leave_office" // after orientation
	RespExitOffice  = "exit_office"  // named, orientation not yet shown

	// Quest giver
	RespAboutQuest = "question_about_sonic"
	RespWhatToDo   = "what_do_i_need"
	RespMean       = "mean"
	RespSuccess    = "correct_answer"
	RespWrongFirst = "wrong_answer_1"
	RespWrongThird = "wrong_answer_3"
	RespIrrelevant = "irrelevant"
	RespAside      = "aside"
	RespGeneric    = "generic"
	RespScripted   = "scripted"
)

// WrongAnswerKey returns the response key for the nth wrong answer.
func WrongAnswerKey(n int) string {
	return fmt.Sprintf("wrong_answer_%d", n)
}

// NPC is a scripted conversational character.
type NPC struct {
	ID               string             `json:"id" yaml:"id" toml:"id"`
	Name             string             `json:"name" yaml:"name" toml:"name"`
	Persona          classifier.Persona `json:"persona" yaml:"persona" toml:"persona"`
	Greeting         string             `json:"greeting" yaml:"greeting" toml:"greeting"`
	Responses        map[string]string  `json:"responses" yaml:"responses" toml:"responses"`                // key → template, may contain {name}
	Images           map[string]string  `json:"images,omitempty" yaml:"images,omitempty" toml:"images,omitempty"` // variant → image
	Orientation      string             `json:"orientation,omitempty" yaml:"orientation,omitempty" toml:"orientation,omitempty"`
	OrientationImage string             `json:"orientation_image,omitempty" yaml:"orientation_image,omitempty" toml:"orientation_image,omitempty"`
}

// Line renders the response template for key, substituting every {name}.
func (n *NPC) Line(key, playerName string) (string, error) {
	tmpl, ok := n.Responses[key]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %q line", ErrUnknownResponse, n.ID, key)
	}
	return Render(tmpl, playerName), nil
}

// LineOr renders key, falling back to the fallback key, then to the empty string.
func (n *NPC) LineOr(key, fallback, playerName string) string {
	if line, err := n.Line(key, playerName); err == nil {
		return line
	}
	line, _ := n.Line(fallback, playerName)
	return line
}

// Image returns the image for variant, falling back to the default variant.
func (n *NPC) Image(variant string) string {
	if img, ok := n.Images[variant]; ok && img != "" {
		return img
	}
	return n.Images[VariantDefault]
}

// OrientationText renders the orientation schedule for the player.
func (n *NPC) OrientationText(playerName string) string {
	return Render(n.Orientation, playerName)
}

// Render substitutes {name} with the player's name.
func Render(tmpl, playerName string) string {
	return strings.ReplaceAll(tmpl, "{name}", playerName)
}
