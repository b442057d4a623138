package dialogue

import (
	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
)

// Authored endings.
const (
	ExpelledTitle     = "Expelled from Console University"
	ExpelledMessage   = "You insulted the Dean. Game over."
	DroppedOutTitle   = "Dropped Out"
	DroppedOutMessage = "You decided to drop out of Console University. Game over."
	EntranceExamTitle = "Entrance Exam"
)

// deanTurn applies the gatekeeper's rules. It reports whether the
// conversation is over.
func (e *Engine) deanTurn(gs *state.GameState, npc *scenario.NPC, text string, sc *Script) (classifier.Category, bool) {
	cat := classifier.Classify(text, classifier.Context{
		Persona: npc.Persona,
		HasName: gs.HasName,
	})

	switch cat {
	case classifier.Insult:
		gs.Expelled = true
		gs.Ending = state.EndingExpelled
		gs.Screen = state.ScreenGameOver
		image := npc.Image(scenario.VariantExpelled)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantExpelled, image)).
			Now(e.say(gs, npc, scenario.RespInsult, "", "")).
			Now(End()).
			After(deanExitDelay, GameOver(ExpelledTitle, ExpelledMessage))
		e.logger.Info("Player expelled", "game_id", gs.ID.String())
		return cat, true

	case classifier.Question, classifier.Fallback:
		image := npc.Image(scenario.VariantExam)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantExam, image)).
			Now(e.say(gs, npc, scenario.RespNonsense, "", "")).
			After(deanExitDelay, Placeholder(EntranceExamTitle, ComingSoon))
		e.leave(gs, sc, 0)
		return cat, true

	case classifier.Name:
		gs.SetName(text)
		gs.GotOrientation = true
		image := npc.Image(scenario.VariantOrientation)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantOrientation, image)).
			After(nameLineDelay, e.say(gs, npc, scenario.RespNameGiven, "", "")).
			After(orientationDelay, Orientation(npc.OrientationText(gs.PlayerName), npc.OrientationImage))
		e.leave(gs, sc, 0)
		e.logger.Info("Player named", "game_id", gs.ID.String(), "player_name", gs.PlayerName)
		return cat, true

	case classifier.Dismissed:
		if gs.GotOrientation {
			image := npc.Image(scenario.VariantBad)
			sc.Now(Scene(image)).
				Now(Portrait(npc.ID, scenario.VariantBad, image)).
				Now(e.say(gs, npc, scenario.RespLeaveOffice, "", ""))
		} else {
			sc.Now(e.say(gs, npc, scenario.RespExitOffice, scenario.RespLeaveOffice, ""))
		}
		e.leave(gs, sc, dismissDelay)
		return cat, true
	}

	return cat, false
}
