package dialogue

import (
	"fmt"

	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
)

const (
	ComingSoon        = "Scene Coming Soon"
	UnderConstruction = "This location is under construction."
	OtherAreas        = "Other areas are under construction."
	KeepWalkingLabel  = "Keep Walking"
)

// EnterLocation moves the player to a location. Entering a location whose NPC
// must be talked to first hides the menu and starts that conversation after a
// short pause.
func (e *Engine) EnterLocation(gs *state.GameState, id string) (Turn, error) {
	loc, err := gs.Location(id)
	if err != nil {
		e.logger.Error("Cannot enter location", "game_id", gs.ID.String(), "location", id, "error", err)
		return Turn{Steps: []Step{}}, err
	}

	gs.EndConversation()
	gs.CurrentLocation = loc.ID
	gs.Screen = state.ScreenPlaying

	var sc Script
	sc.Now(Scene(loc.Image))
	if loc.UnderConstruction() {
		sc.Now(ActionBubble(ComingSoon, UnderConstruction))
	} else {
		sc.Now(ActionBubble(fmt.Sprintf("You enter %s", loc.Name), loc.Setting()))
	}
	sc.Now(ClearLines())

	if loc.RequiresTalk && loc.NPC != "" && !e.talkedTo(gs, loc.NPC) {
		npc, err := e.world.NPC(loc.NPC)
		if err != nil {
			e.logger.Error("Location requires talking to unknown NPC",
				"game_id", gs.ID.String(), "location", loc.ID, "npc", loc.NPC)
			sc.Now(Menu(e.Menu(gs)))
			return e.finish(gs, &sc, ""), nil
		}
		sc.Now(NoMenu()).Wait(deanAutoTalkDelay)
		sc.Append(e.openConversation(gs, npc).Steps()...)
	} else {
		sc.Now(Menu(e.Menu(gs)))
	}

	e.logger.Debug("Location entered", "game_id", gs.ID.String(), "location", loc.ID)
	return e.finish(gs, &sc, ""), nil
}

// Menu builds the floating action menu for the current location.
func (e *Engine) Menu(gs *state.GameState) []MenuOption {
	options := []MenuOption{}
	loc, err := gs.Location(gs.CurrentLocation)
	if err != nil || gs.Screen != state.ScreenPlaying {
		return options
	}

	if loc.NPC != "" {
		talked := e.talkedTo(gs, loc.NPC)
		if loc.RequiresTalk && !talked {
			return append(options, e.talkOption(loc.NPC))
		}
		if !loc.RequiresTalk {
			options = append(options, e.talkOption(loc.NPC))
		}
	}

	if loc.KeepWalking {
		return append(options, MenuOption{
			Label:  KeepWalkingLabel,
			Action: Action{Kind: ActionKeepWalking},
		})
	}

	for _, exit := range scenario.ResolveExits(loc, gs.Locations) {
		options = append(options, MenuOption{
			Label:  fmt.Sprintf("Go to %s", exit.Name),
			Action: Action{Kind: ActionGo, Target: exit.ID},
		})
	}
	return options
}

func (e *Engine) talkOption(npcID string) MenuOption {
	return MenuOption{
		Label:  fmt.Sprintf("Talk to %s", e.world.NPCName(npcID)),
		Action: Action{Kind: ActionTalk, Target: npcID},
	}
}

// talkedTo reports whether the player has spoken with the NPC, by persona.
func (e *Engine) talkedTo(gs *state.GameState, npcID string) bool {
	npc, err := e.world.NPC(npcID)
	if err != nil {
		return false
	}
	switch npc.Persona {
	case classifier.PersonaDean:
		return gs.TalkedToDean
	case classifier.PersonaQuestGiver:
		return gs.TalkedToJim
	}
	return false
}
