package dialogue

import (
	"testing"

	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meetJim graduates and opens the conversation on the quad.
func meetJim(t *testing.T, policy JimPolicy) *harness {
	t.Helper()
	h := newHarness(t, policy)
	h.graduate("Alexandra Smith")
	turn := h.do(Action{Kind: ActionTalk})
	require.True(t, turn.Has(StartConversation))
	require.Equal(t, scenario.QuestGiverID, h.gs.Conversation.NPCID)
	return h
}

func assertJimGone(t *testing.T, h *harness, turn Turn) {
	t.Helper()
	assert.Nil(t, h.gs.Conversation)
	assert.Equal(t, "", h.gs.NPCAt(scenario.Quad))

	detach, ok := turn.Find(DetachNPC)
	require.True(t, ok)
	assert.Equal(t, scenario.Quad, detach.Directive.LocationID)
	assert.Equal(t, scenario.QuestGiverID, detach.Directive.NPCID)

	assert.NotContains(t, menuLabels(h.engine.Menu(h.gs)), "Talk to Earthworm Jim")
	_, err := h.engine.Perform(h.gs, Action{Kind: ActionTalk, Target: scenario.QuestGiverID})
	assert.ErrorIs(t, err, ErrNPCNotHere)
}

func TestJim_Greeting(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.graduate("Sam")
	assert.Equal(t, []string{"Talk to Earthworm Jim", "Keep Walking"}, menuLabels(h.engine.Menu(h.gs)))

	turn := h.do(Action{Kind: ActionTalk})
	assert.True(t, h.gs.TalkedToJim)
	assert.Equal(t, state.JimAwaitingTopic, h.gs.JimStage)
	scene, _ := turn.Find(SetSceneImage)
	assert.Equal(t, "assets/images/Jim1.png", scene.Directive.Image)
	require.Len(t, npcLines(turn), 1)
}

func TestJim_Topical(t *testing.T) {
	tests := []struct {
		input      string
		firstDelay bool
	}{
		{input: "What do I need to do?", firstDelay: true},
		{input: "can you help", firstDelay: true},
		{input: "Where's Sonic?", firstDelay: false},
		{input: "stadium", firstDelay: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := meetJim(t, PolicyFull)

			turn := h.say(tt.input)
			assert.Equal(t, classifier.Topical, turn.Category)
			assert.Equal(t, state.JimAwaitingTime, h.gs.JimStage)
			assert.NotNil(t, h.gs.Conversation)

			lines := npcLines(turn)
			require.Len(t, lines, 2)
			assert.Contains(t, lines[0], "Sonic?")
			assert.Contains(t, lines[1], "What time does the championship start?")

			first := atNPCLine(t, turn, 0)
			if tt.firstDelay {
				assert.Equal(t, inputDelay+replyDelay, first)
			} else {
				assert.Equal(t, inputDelay, first)
			}
			assert.Equal(t, chainedLineDelay, atNPCLine(t, turn, 1)-first)

			scene, _ := turn.Find(SetSceneImage)
			assert.Equal(t, "assets/images/JIM2.png", scene.Directive.Image)
		})
	}
}

func TestJim_ThreeStrikes(t *testing.T) {
	h := meetJim(t, PolicyFull)
	h.say("Where's Sonic?")

	turn := h.say("2pm")
	assert.Equal(t, classifier.WrongTime, turn.Category)
	assert.Equal(t, 1, h.gs.JimWrongAnswers)
	assert.Equal(t, []string{"Nope. Did you even read your orientation?"}, npcLines(turn))
	assert.Equal(t, inputDelay+replyDelay, atNPCLine(t, turn, 0))

	turn = h.say("noon")
	assert.Equal(t, classifier.WrongTime, turn.Category)
	assert.Equal(t, 2, h.gs.JimWrongAnswers)
	assert.Equal(t, []string{"Wrong again. One more try, kid."}, npcLines(turn))
	assert.NotNil(t, h.gs.Conversation)

	turn = h.say("5")
	assert.Equal(t, classifier.ThirdStrike, turn.Category)
	assert.Equal(t, 2, h.gs.JimWrongAnswers)
	assert.Equal(t, []string{"Three strikes! I don't have time for this."}, npcLines(turn))
	assert.False(t, h.gs.JimQuestionAnswered)
	assert.Equal(t, state.JimExited, h.gs.JimStage)
	assert.Equal(t, jimExitDelay, at(t, turn, EndConversation)-atNPCLine(t, turn, 0))
	assertJimGone(t, h, turn)

	// leaving and coming back does not bring him back
	_, err := h.engine.EnterLocation(h.gs, scenario.DeanOffice)
	require.NoError(t, err)
	_, err = h.engine.EnterLocation(h.gs, scenario.Quad)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep Walking"}, menuLabels(h.engine.Menu(h.gs)))
}

func TestJim_WrongAnswerFallsBackToFirstLine(t *testing.T) {
	h := meetJim(t, PolicyFull)
	jim := h.engine.world.NPCs[scenario.QuestGiverID]
	delete(jim.Responses, scenario.WrongAnswerKey(2))

	h.say("1pm")
	turn := h.say("2pm")
	assert.Equal(t, []string{"Nope. Did you even read your orientation?"}, npcLines(turn))
}

func TestJim_CorrectTime(t *testing.T) {
	for _, input := range []string{"3:15", "315", "three fifteen", "Three-Fifteen", "3 15"} {
		t.Run(input, func(t *testing.T) {
			h := meetJim(t, PolicyFull)
			h.say("what do I need to do")
			h.say("2pm")

			turn := h.say(input)
			assert.Equal(t, classifier.CorrectTime, turn.Category)
			assert.True(t, h.gs.JimQuestionAnswered)
			assert.Equal(t, state.JimAnswered, h.gs.JimStage)
			assert.Equal(t, []string{"Sonic is Sleeping on off, I gotta go late for the tickle fight!"}, npcLines(turn))
			assertJimGone(t, h, turn)

			// the quad image comes back after Jim's line and the exit
			var images []string
			for _, s := range turn.Steps {
				if s.Directive.Kind == SetSceneImage {
					images = append(images, s.Directive.Image)
				}
			}
			assert.Equal(t, []string{"assets/images/Jim1.png", "assets/images/Quad1.png"}, images)
			assert.Equal(t, sceneRestoreDelay, at(t, turn, DetachNPC)-at(t, turn, EndConversation))
		})
	}
}

func TestJim_CorrectTimeWithoutTopic(t *testing.T) {
	h := meetJim(t, PolicyFull)
	turn := h.say("3:15")
	assert.Equal(t, classifier.CorrectTime, turn.Category)
	assert.True(t, h.gs.JimQuestionAnswered)
}

func TestJim_Mean(t *testing.T) {
	h := meetJim(t, PolicyFull)

	turn := h.say("you're gross")
	assert.Equal(t, classifier.Mean, turn.Category)
	assert.Equal(t, []string{"Whoa, no need to get nasty. *under his breath* Psycho"}, npcLines(turn))
	assert.Equal(t, inputDelay, atNPCLine(t, turn, 0))
	assert.Equal(t, state.JimExited, h.gs.JimStage)
	assertJimGone(t, h, turn)
}

func TestJim_Irrelevant(t *testing.T) {
	h := meetJim(t, PolicyFull)

	turn := h.say("banana")
	assert.Equal(t, classifier.Irrelevant, turn.Category)
	assert.Equal(t, []string{"Uh... okay. I'm gonna go now. *under his breath* Psycho"}, npcLines(turn))
	assert.Equal(t, inputDelay+replyDelay, atNPCLine(t, turn, 0))
	scene, _ := turn.Find(SetSceneImage)
	assert.Equal(t, "assets/images/JIM3.png", scene.Directive.Image)
	assertJimGone(t, h, turn)
}

func TestJim_GenericAfterAnswer(t *testing.T) {
	h := meetJim(t, PolicyFull)
	// answered but still attached, e.g. data without the exit
	h.gs.JimQuestionAnswered = true

	turn := h.say("bye")
	assert.Equal(t, classifier.Generic, turn.Category)
	assert.Equal(t, []string{"Yeah, good luck with that."}, npcLines(turn))
	assert.NotNil(t, h.gs.Conversation)
	assert.False(t, turn.Has(EndConversation))
}

func TestJim_ScriptedPolicy(t *testing.T) {
	for _, input := range []string{"3:15", "banana", "you're weird", "what do I need to do"} {
		t.Run(input, func(t *testing.T) {
			h := meetJim(t, PolicyScripted)
			assert.Equal(t, state.JimAwaitingAny, h.gs.JimStage)

			turn := h.say(input)
			assert.Equal(t, classifier.Scripted, turn.Category)
			assert.Equal(t, []string{"Sonic is Sleeping on off, I gotta go late for the tickle fight!"}, npcLines(turn))
			assert.Equal(t, jimExitDelay, at(t, turn, EndConversation)-atNPCLine(t, turn, 0))
			assert.True(t, h.gs.TalkedToJim)
			assert.False(t, h.gs.JimQuestionAnswered)
			assert.Equal(t, 0, h.gs.JimWrongAnswers)
			assert.Equal(t, state.JimExited, h.gs.JimStage)
			assertJimGone(t, h, turn)

			step, _ := turn.Find(SetSceneImage)
			assert.Equal(t, "assets/images/Quad1.png", step.Directive.Image)
		})
	}
}
