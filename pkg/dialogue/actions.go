package dialogue

import (
	"fmt"

	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
)

// ActionKind names something the player can do outside of typed dialogue.
type ActionKind string

const (
	ActionEnroll           ActionKind = "enroll"
	ActionTalk             ActionKind = "talk"
	ActionGo               ActionKind = "go"
	ActionKeepWalking      ActionKind = "keep_walking"
	ActionCancel           ActionKind = "cancel"
	ActionCloseOrientation ActionKind = "close_orientation"
	ActionGoToQuad         ActionKind = "go_to_quad"
	ActionDropOut          ActionKind = "drop_out"
	ActionRestart          ActionKind = "restart"
)

// Action is a menu, modal or screen button press.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target,omitempty"` // npc id for talk, location id for go
}

// Validate checks the action is well formed.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionEnroll, ActionKeepWalking, ActionCancel, ActionCloseOrientation,
		ActionGoToQuad, ActionDropOut, ActionRestart, ActionTalk:
		return nil
	case ActionGo:
		if a.Target == "" {
			return fmt.Errorf("%w: go requires a target", ErrInvalidAction)
		}
		return nil
	case "":
		return fmt.Errorf("%w: kind is required", ErrInvalidAction)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}
}

// MenuOption is one entry of the floating action menu.
type MenuOption struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

// Perform applies a player action. Actions are not subject to the input
// reentrancy guard; a new schedule supersedes the one playing.
func (e *Engine) Perform(gs *state.GameState, a Action) (Turn, error) {
	if err := a.Validate(); err != nil {
		return Turn{Steps: []Step{}}, err
	}

	if a.Kind == ActionRestart {
		return e.Restart(gs), nil
	}
	switch gs.Screen {
	case state.ScreenStart:
		if a.Kind != ActionEnroll {
			return Turn{Steps: []Step{}}, ErrNotPlaying
		}
		return e.StartGame(gs)
	case state.ScreenGameOver:
		return Turn{Steps: []Step{}}, ErrNotPlaying
	}

	switch a.Kind {
	case ActionEnroll:
		return Turn{Steps: []Step{}}, fmt.Errorf("%w: already enrolled", ErrInvalidAction)

	case ActionTalk:
		target := a.Target
		if target == "" {
			target = gs.NPCAt(gs.CurrentLocation)
		}
		return e.StartConversation(gs, target)

	case ActionGo:
		if !e.offered(gs, a) {
			return Turn{Steps: []Step{}}, fmt.Errorf("%w: no way to %s from %s", ErrInvalidAction, a.Target, gs.CurrentLocation)
		}
		return e.EnterLocation(gs, a.Target)

	case ActionKeepWalking:
		loc, err := gs.Location(gs.CurrentLocation)
		if err != nil {
			return Turn{Steps: []Step{}}, err
		}
		if !loc.KeepWalking {
			return Turn{Steps: []Step{}}, fmt.Errorf("%w: nowhere to walk from %s", ErrInvalidAction, loc.ID)
		}
		var sc Script
		sc.Now(ActionBubble(ComingSoon, OtherAreas))
		return e.finish(gs, &sc, ""), nil

	case ActionCancel:
		return e.CancelConversation(gs)

	case ActionCloseOrientation:
		var sc Script
		sc.Now(Menu(e.Menu(gs)))
		return e.finish(gs, &sc, ""), nil

	case ActionGoToQuad:
		if !gs.GotOrientation {
			return Turn{Steps: []Step{}}, fmt.Errorf("%w: orientation not received", ErrInvalidAction)
		}
		return e.EnterLocation(gs, scenario.Quad)

	case ActionDropOut:
		if !gs.GotOrientation {
			return Turn{Steps: []Step{}}, fmt.Errorf("%w: orientation not received", ErrInvalidAction)
		}
		return e.DropOut(gs), nil
	}

	return Turn{Steps: []Step{}}, fmt.Errorf("%w: %s", ErrInvalidAction, a.Kind)
}

// StartGame leaves the start screen for the first location past the gate.
func (e *Engine) StartGame(gs *state.GameState) (Turn, error) {
	if gs.Screen != state.ScreenStart {
		return Turn{Steps: []Step{}}, fmt.Errorf("%w: already enrolled", ErrInvalidAction)
	}
	return e.EnterLocation(gs, e.entryLocation())
}

// DropOut ends the game by the player's choice.
func (e *Engine) DropOut(gs *state.GameState) Turn {
	gs.EndConversation()
	gs.Ending = state.EndingDroppedOut
	gs.Screen = state.ScreenGameOver
	var sc Script
	sc.Now(NoMenu()).Now(GameOver(DroppedOutTitle, DroppedOutMessage))
	e.logger.Info("Player dropped out", "game_id", gs.ID.String())
	return e.finish(gs, &sc, "")
}

// entryLocation is where enrolling takes the player: the start location's
// first exit, or the Dean's office.
func (e *Engine) entryLocation() string {
	if start, err := e.world.Location(e.world.StartLocation); err == nil && len(start.Exits) > 0 {
		return start.Exits[0]
	}
	return scenario.DeanOffice
}

// offered reports whether the current menu contains the action.
func (e *Engine) offered(gs *state.GameState, a Action) bool {
	for _, opt := range e.Menu(gs) {
		if opt.Action == a {
			return true
		}
	}
	return false
}
