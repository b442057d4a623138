package dialogue

import (
	"time"

	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/jwebster45206/console-university/pkg/textfilter"
)

// jimTurn applies the quest giver's rules under the active policy. It reports
// whether the conversation is over.
func (e *Engine) jimTurn(gs *state.GameState, npc *scenario.NPC, text string, sc *Script) (classifier.Category, bool) {
	cat := classifier.Classify(text, classifier.Context{
		Persona:        npc.Persona,
		Answered:       gs.JimQuestionAnswered,
		WrongAnswers:   gs.JimWrongAnswers,
		ScriptedPolicy: e.policy == PolicyScripted,
	})

	switch cat {
	case classifier.Scripted:
		sc.Now(e.say(gs, npc, scenario.RespScripted, scenario.RespSuccess, ""))
		e.exit(gs, npc, sc, jimExitDelay, true)
		return cat, true

	case classifier.Mean:
		image := npc.Image(scenario.VariantBad)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantBad, image)).
			Now(e.say(gs, npc, scenario.RespMean, "", e.aside(gs, npc)))
		e.exit(gs, npc, sc, jimExitDelay, false)
		return cat, true

	case classifier.Topical:
		gs.JimStage = state.JimAwaitingTime
		image := npc.Image(scenario.VariantQuestion)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantQuestion, image))
		if classifier.AsksWhatToDo(textfilter.Fold(text)) {
			sc.Wait(replyDelay)
		}
		sc.Now(e.say(gs, npc, scenario.RespAboutQuest, "", "")).
			After(chainedLineDelay, e.say(gs, npc, scenario.RespWhatToDo, "", ""))
		return cat, false

	case classifier.CorrectTime:
		gs.JimQuestionAnswered = true
		gs.JimStage = state.JimAnswered
		image := npc.Image(scenario.VariantDefault)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantDefault, image)).
			Now(e.say(gs, npc, scenario.RespSuccess, "", ""))
		e.exit(gs, npc, sc, jimExitDelay, true)
		e.logger.Info("Quest giver answered", "game_id", gs.ID.String())
		return cat, true

	case classifier.WrongTime:
		gs.JimStage = state.JimAwaitingTime
		n := gs.RecordWrongAnswer()
		sc.After(replyDelay, e.say(gs, npc, scenario.WrongAnswerKey(n), scenario.RespWrongFirst, ""))
		return cat, false

	case classifier.ThirdStrike:
		image := npc.Image(scenario.VariantBad)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantBad, image)).
			After(replyDelay, e.say(gs, npc, scenario.RespWrongThird, "", ""))
		e.exit(gs, npc, sc, jimExitDelay, false)
		return cat, true

	case classifier.Irrelevant:
		image := npc.Image(scenario.VariantBad)
		sc.Now(Scene(image)).
			Now(Portrait(npc.ID, scenario.VariantBad, image)).
			After(replyDelay, e.say(gs, npc, scenario.RespIrrelevant, "", e.aside(gs, npc)))
		e.exit(gs, npc, sc, jimExitDelay, false)
		return cat, true

	case classifier.Generic:
		sc.Now(e.say(gs, npc, scenario.RespGeneric, "", ""))
		return cat, false
	}

	return cat, false
}

// aside returns the muttered suffix appended to the quest giver's parting shots.
func (e *Engine) aside(gs *state.GameState, npc *scenario.NPC) string {
	return npc.LineOr(scenario.RespAside, "", gs.PlayerName)
}

// exit ends the conversation after delay and permanently detaches the NPC from
// the current location. With restoreScene the location's own image fades back
// in before the NPC leaves.
func (e *Engine) exit(gs *state.GameState, npc *scenario.NPC, sc *Script, delay time.Duration, restoreScene bool) {
	if gs.JimStage != state.JimAnswered {
		gs.JimStage = state.JimExited
	}
	locationID := gs.CurrentLocation
	sc.After(delay, End())
	if restoreScene {
		if loc, err := gs.Location(locationID); err == nil {
			sc.After(sceneRestoreDelay, Scene(loc.Image))
		}
	}
	if gs.DetachNPC(locationID, npc.ID) {
		sc.Now(Detach(locationID, npc.ID))
		e.logger.Info("NPC left for good", "game_id", gs.ID.String(), "npc", npc.ID, "location", locationID)
	}
	sc.Now(Menu(e.Menu(gs)))
}
