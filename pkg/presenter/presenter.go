// Package presenter is the boundary between the dialogue engine and whatever
// draws the game. An Adapter renders directives; a Runner plays a turn's
// schedule against an Adapter with cancellable timers.
package presenter

import (
	"fmt"

	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

// ModalOrientation is the only modal the game shows.
const ModalOrientation = "orientation"

// Adapter renders the game. Implementations only mutate their own view state.
type Adapter interface {
	DisplayLine(speaker, text string, side state.Side)
	SetScene(image string)
	SetPortrait(npcID, variant, image string)
	ShowMenu(options []dialogue.MenuOption)
	HideMenu()
	ShowModal(kind, text, image string)
	ShowGameOver(title, message string)
	ShowActionBubble(title, text string)
	ClearActionBubble()
	ClearSpeech()
	StartConversation(npcID, name string)
	EndConversation()
	DetachNPC(locationID, npcID string)
	ShowPlaceholder(title, label string)
	ShowStartScreen(image string)
}

// Dispatch applies one directive to the adapter.
func Dispatch(a Adapter, d dialogue.Directive) error {
	switch d.Kind {
	case dialogue.SetSceneImage:
		a.SetScene(d.Image)
	case dialogue.ShowSpeechLine:
		a.DisplayLine(d.Speaker, d.Text, d.Side)
	case dialogue.EndConversation:
		a.EndConversation()
	case dialogue.TriggerGameOver:
		a.ShowGameOver(d.Title, d.Text)
	case dialogue.ShowOrientation:
		a.ShowModal(ModalOrientation, d.Text, d.Image)
	case dialogue.DetachNPC:
		a.DetachNPC(d.LocationID, d.NPCID)
	case dialogue.ShowPlaceholderScene:
		a.ShowPlaceholder(d.Title, d.Text)
	case dialogue.ShowActionBubble:
		a.ShowActionBubble(d.Title, d.Text)
	case dialogue.ClearActionBubble:
		a.ClearActionBubble()
	case dialogue.SetPortrait:
		a.SetPortrait(d.NPCID, d.Variant, d.Image)
	case dialogue.ShowMenu:
		a.ShowMenu(d.Options)
	case dialogue.HideMenu:
		a.HideMenu()
	case dialogue.ClearSpeech:
		a.ClearSpeech()
	case dialogue.StartConversation:
		a.StartConversation(d.NPCID, d.Speaker)
	case dialogue.ShowStartScreen:
		a.ShowStartScreen(d.Image)
	default:
		return fmt.Errorf("unknown directive kind %q", d.Kind)
	}
	return nil
}
