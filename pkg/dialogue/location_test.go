package dialogue

import (
	"testing"

	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterLocation_UnderConstruction(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.graduate("Sam")

	turn, err := h.engine.EnterLocation(h.gs, "library")
	require.NoError(t, err)
	assert.Equal(t, "library", h.gs.CurrentLocation)

	bubble, ok := turn.Find(ShowActionBubble)
	require.True(t, ok)
	assert.Equal(t, ComingSoon, bubble.Directive.Title)
	assert.Equal(t, UnderConstruction, bubble.Directive.Text)

	scene, _ := turn.Find(SetSceneImage)
	assert.Equal(t, "", scene.Directive.Image)
	assert.True(t, turn.Has(ClearSpeech))

	menu, ok := turn.Find(ShowMenu)
	require.True(t, ok)
	assert.Equal(t, []string{"Go to the Quad"}, menuLabels(menu.Directive.Options))
}

func TestEnterLocation_Unknown(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.graduate("Sam")

	turn, err := h.engine.EnterLocation(h.gs, "moon_base")
	assert.ErrorIs(t, err, scenario.ErrUnknownLocation)
	assert.Empty(t, turn.Steps)
	assert.Equal(t, scenario.Quad, h.gs.CurrentLocation)
}

func TestEnterLocation_Setting(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.enroll()
	h.say("Sam")

	turn := h.do(Action{Kind: ActionGo, Target: scenario.Quad})
	bubble, ok := turn.Find(ShowActionBubble)
	require.True(t, ok)
	assert.Equal(t, "You enter the Quad", bubble.Directive.Title)
	assert.Contains(t, bubble.Directive.Text, "frisbees")

	scene, _ := turn.Find(SetSceneImage)
	assert.Equal(t, "assets/images/Quad1.png", scene.Directive.Image)
}

func TestMenu_ExitsSkipUnknownIDs(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.graduate("Sam")

	lib := h.gs.Locations["library"]
	lib.Exits = []string{"quad", "nowhere", "sonic_stadium"}
	h.gs.Locations["library"] = lib

	_, err := h.engine.EnterLocation(h.gs, "library")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go to the Quad", "Go to Sonic Stadium"}, menuLabels(h.engine.Menu(h.gs)))
}

func TestPerform_KeepWalking(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.graduate("Sam")

	turn := h.do(Action{Kind: ActionKeepWalking})
	bubble, ok := turn.Find(ShowActionBubble)
	require.True(t, ok)
	assert.Equal(t, ComingSoon, bubble.Directive.Title)
	assert.Equal(t, OtherAreas, bubble.Directive.Text)
	assert.Equal(t, scenario.Quad, h.gs.CurrentLocation)

	_, err := h.engine.EnterLocation(h.gs, "library")
	require.NoError(t, err)
	_, err = h.engine.Perform(h.gs, Action{Kind: ActionKeepWalking})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestPerform_GoRequiresOfferedExit(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.enroll()
	h.do(Action{Kind: ActionCancel})

	// the Dean must be talked to before leaving
	_, err := h.engine.Perform(h.gs, Action{Kind: ActionGo, Target: scenario.Quad})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, scenario.DeanOffice, h.gs.CurrentLocation)

	_, err = h.engine.Perform(h.gs, Action{Kind: ActionGoToQuad})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestPerform_EnrollTwice(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.enroll()
	_, err := h.engine.Perform(h.gs, Action{Kind: ActionEnroll})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestPerform_OrientationModal(t *testing.T) {
	t.Run("close keeps the player in the office", func(t *testing.T) {
		h := newHarness(t, PolicyFull)
		h.enroll()
		h.say("Sam")

		turn := h.do(Action{Kind: ActionCloseOrientation})
		menu, ok := turn.Find(ShowMenu)
		require.True(t, ok)
		assert.Equal(t, []string{"Go to the Quad"}, menuLabels(menu.Directive.Options))
		assert.Equal(t, scenario.DeanOffice, h.gs.CurrentLocation)
	})

	t.Run("go to quad", func(t *testing.T) {
		h := newHarness(t, PolicyFull)
		h.enroll()
		h.say("Sam")

		h.do(Action{Kind: ActionGoToQuad})
		assert.Equal(t, scenario.Quad, h.gs.CurrentLocation)
	})

	t.Run("drop out", func(t *testing.T) {
		h := newHarness(t, PolicyFull)
		h.enroll()
		h.say("Sam")

		turn := h.do(Action{Kind: ActionDropOut})
		over, ok := turn.Find(TriggerGameOver)
		require.True(t, ok)
		assert.Equal(t, DroppedOutTitle, over.Directive.Title)
		assert.Equal(t, DroppedOutMessage, over.Directive.Text)
		assert.Equal(t, state.ScreenGameOver, h.gs.Screen)
		assert.Equal(t, state.EndingDroppedOut, h.gs.Ending)
		assert.False(t, h.gs.Expelled)

		_, err := h.engine.Perform(h.gs, Action{Kind: ActionGoToQuad})
		assert.ErrorIs(t, err, ErrNotPlaying)

		h.do(Action{Kind: ActionRestart})
		assert.Equal(t, state.ScreenStart, h.gs.Screen)
		assert.Equal(t, state.EndingNone, h.gs.Ending)
	})
}

func TestStartGame_FallbackScenario(t *testing.T) {
	h := newHarness(t, PolicyFull)
	h.engine = NewEngine(scenario.Fallback(), PolicyFull, h.engine.logger).WithClock(h.clock.Now)
	h.gs, _ = h.engine.NewGame()

	_, err := h.engine.Perform(h.gs, Action{Kind: ActionEnroll})
	assert.ErrorIs(t, err, scenario.ErrUnknownLocation)
	assert.Equal(t, state.ScreenStart, h.gs.Screen)
}
