// Package dialogue is the Console University state machine. Every operation
// mutates the session state immediately and returns the presentation side
// effects as an ordered schedule of (directive, delay) steps.
package dialogue

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
)

var (
	ErrBusy           = errors.New("previous response is still playing")
	ErrNoConversation = errors.New("no active conversation")
	ErrNotPlaying     = errors.New("game is not in progress")
	ErrNPCNotHere     = errors.New("npc is not at the current location")
	ErrInvalidAction  = errors.New("invalid action")
)

// JimPolicy selects how the quest giver's conversation plays out.
type JimPolicy string

const (
	PolicyFull     JimPolicy = "full"     // branching riddle with strikes
	PolicyScripted JimPolicy = "scripted" // one fixed line, then he leaves
)

// ParseJimPolicy parses a policy name. Empty selects PolicyFull.
func ParseJimPolicy(s string) (JimPolicy, error) {
	switch JimPolicy(s) {
	case "", PolicyFull:
		return PolicyFull, nil
	case PolicyScripted:
		return PolicyScripted, nil
	default:
		return "", fmt.Errorf("unknown jim policy %q (want %q or %q)", s, PolicyFull, PolicyScripted)
	}
}

// Timings between steps.
const (
	inputDelay        = 500 * time.Millisecond  // player line to NPC reaction
	deanAutoTalkDelay = 1500 * time.Millisecond // entering the office to the Dean speaking
	deanExitDelay     = 3000 * time.Millisecond
	nameLineDelay     = 500 * time.Millisecond
	orientationDelay  = 3000 * time.Millisecond
	dismissDelay      = 2000 * time.Millisecond
	replyDelay        = 500 * time.Millisecond
	chainedLineDelay  = 2500 * time.Millisecond
	jimExitDelay      = 3000 * time.Millisecond
	sceneRestoreDelay = 500 * time.Millisecond
)

// Speaker name used for the player's own lines.
const PlayerSpeaker = "You"

// Engine runs conversations against one scenario. It holds no session state;
// every operation takes the session explicitly.
type Engine struct {
	world  *scenario.Scenario
	policy JimPolicy
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates an engine for world with the given quest giver policy.
func NewEngine(world *scenario.Scenario, policy JimPolicy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = PolicyFull
	}
	return &Engine{
		world:  world,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for the reentrancy guard.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Scenario returns the game data the engine runs.
func (e *Engine) Scenario() *scenario.Scenario {
	return e.world
}

// Policy returns the active quest giver policy.
func (e *Engine) Policy() JimPolicy {
	return e.policy
}

// NewGame creates a session on the start screen.
func (e *Engine) NewGame() (*state.GameState, Turn) {
	gs := state.NewGameState(e.world)
	return gs, e.finish(gs, e.startScreen(), "")
}

// Restart resets the session and returns it to the start screen.
func (e *Engine) Restart(gs *state.GameState) Turn {
	gs.Reset(e.world)
	e.logger.Debug("Game restarted", "game_id", gs.ID.String())
	return e.finish(gs, e.startScreen(), "")
}

func (e *Engine) startScreen() *Script {
	var sc Script
	image := ""
	if start, err := e.world.Location(e.world.StartLocation); err == nil {
		image = start.Image
	}
	sc.Now(NoMenu()).Now(StartScreen(image))
	return &sc
}

// StartConversation opens a dialogue with an NPC attached to the current location.
func (e *Engine) StartConversation(gs *state.GameState, npcID string) (Turn, error) {
	if gs.Screen != state.ScreenPlaying {
		return Turn{Steps: []Step{}}, ErrNotPlaying
	}
	if gs.NPCAt(gs.CurrentLocation) != npcID {
		e.logger.Warn("Conversation requested with absent NPC",
			"game_id", gs.ID.String(), "npc", npcID, "location", gs.CurrentLocation)
		return Turn{Steps: []Step{}}, fmt.Errorf("%w: %s", ErrNPCNotHere, npcID)
	}
	npc, err := e.world.NPC(npcID)
	if err != nil {
		e.logger.Error("Unknown NPC attached to location",
			"game_id", gs.ID.String(), "npc", npcID, "location", gs.CurrentLocation)
		return Turn{Steps: []Step{}}, err
	}
	sc := e.openConversation(gs, npc)
	return e.finish(gs, sc, ""), nil
}

// openConversation starts the dialogue state and returns the greeting steps.
func (e *Engine) openConversation(gs *state.GameState, npc *scenario.NPC) *Script {
	conv := gs.StartConversation(npc.ID)

	variant := scenario.VariantDefault
	switch npc.Persona {
	case classifier.PersonaDean:
		if gs.GotOrientation {
			variant = scenario.VariantBad
		}
	case classifier.PersonaQuestGiver:
		gs.TalkedToJim = true
		switch {
		case gs.JimQuestionAnswered:
			gs.JimStage = state.JimAnswered
		case e.policy == PolicyScripted:
			gs.JimStage = state.JimAwaitingAny
		case gs.JimWrongAnswers > 0:
			gs.JimStage = state.JimAwaitingTime
		default:
			gs.JimStage = state.JimAwaitingTopic
		}
	}

	var sc Script
	image := npc.Image(variant)
	sc.Now(Converse(npc.ID, npc.Name)).
		Now(NoMenu()).
		Now(ClearBubble()).
		Now(Scene(image)).
		Now(Portrait(npc.ID, variant, image))
	conv.Add(npc.Name, npc.Greeting, state.SideNPC)
	sc.Now(Speech(npc.Name, npc.Greeting, state.SideNPC))

	e.logger.Debug("Conversation started", "game_id", gs.ID.String(), "npc", npc.ID)
	return &sc
}

// HandleInput processes one player utterance in the active conversation.
// Blank input is ignored. Input that arrives while the previous schedule is
// still playing is rejected with ErrBusy.
func (e *Engine) HandleInput(gs *state.GameState, raw string) (Turn, error) {
	text := classifier.Normalize(raw)
	if text == "" {
		return Turn{Category: classifier.Empty, Steps: []Step{}}, nil
	}
	if gs.Conversation == nil {
		return Turn{Steps: []Step{}}, ErrNoConversation
	}
	if gs.Busy(e.now()) {
		return Turn{Steps: []Step{}}, ErrBusy
	}
	npc, err := e.world.NPC(gs.Conversation.NPCID)
	if err != nil {
		e.logger.Error("Conversation with unknown NPC", "game_id", gs.ID.String(), "npc", gs.Conversation.NPCID)
		return Turn{Steps: []Step{}}, err
	}

	var sc Script
	gs.Conversation.Add(PlayerSpeaker, text, state.SidePlayer)
	sc.Now(Speech(PlayerSpeaker, text, state.SidePlayer)).Wait(inputDelay)

	var (
		cat  classifier.Category
		done bool
	)
	switch npc.Persona {
	case classifier.PersonaDean:
		cat, done = e.deanTurn(gs, npc, text, &sc)
	case classifier.PersonaQuestGiver:
		cat, done = e.jimTurn(gs, npc, text, &sc)
	default:
		cat = classifier.Classify(text, classifier.Context{Persona: npc.Persona})
		e.logger.Warn("NPC has no conversation rules", "npc", npc.ID, "persona", npc.Persona)
	}

	transcript := gs.Transcript()
	if done {
		gs.EndConversation()
	}

	e.logger.Debug("Player input classified",
		"game_id", gs.ID.String(),
		"npc", npc.ID,
		"category", cat,
		"conversation_over", done)
	turn := e.finish(gs, &sc, cat)
	turn.Transcript = transcript
	return turn, nil
}

// CancelConversation leaves dialogue mode without a reply.
func (e *Engine) CancelConversation(gs *state.GameState) (Turn, error) {
	if gs.Conversation == nil {
		return Turn{Steps: []Step{}}, ErrNoConversation
	}
	var sc Script
	e.closeConversation(gs, &sc)
	return e.finish(gs, &sc, ""), nil
}

// closeConversation ends dialogue mode and shows the menu for the current location.
func (e *Engine) closeConversation(gs *state.GameState, sc *Script) {
	gs.EndConversation()
	sc.Now(End()).Now(Menu(e.Menu(gs)))
}

// leave schedules the end of the conversation after delay, followed by the
// menu. The caller ends the conversation state.
func (e *Engine) leave(gs *state.GameState, sc *Script, delay time.Duration) {
	sc.After(delay, End()).Now(Menu(e.Menu(gs)))
}

// say renders an NPC line, records it in the transcript, and returns the
// directive. A missing key is logged and falls back to the fallback key.
func (e *Engine) say(gs *state.GameState, npc *scenario.NPC, key, fallback, suffix string) Directive {
	text, err := npc.Line(key, gs.PlayerName)
	if err != nil {
		if fallback != "" {
			text = npc.LineOr(fallback, "", gs.PlayerName)
		}
		e.logger.Warn("Missing NPC line", "npc", npc.ID, "key", key, "fallback", fallback)
	}
	text += suffix
	if gs.Conversation != nil {
		gs.Conversation.Add(npc.Name, text, state.SideNPC)
	}
	return Speech(npc.Name, text, state.SideNPC)
}

// finish stamps the reentrancy guard and builds the turn.
func (e *Engine) finish(gs *state.GameState, sc *Script, cat classifier.Category) Turn {
	turn := Turn{Category: cat, Steps: sc.Steps(), Transcript: gs.Transcript()}
	gs.PendingUntil = e.now().Add(turn.Duration())
	gs.Touch()
	return turn
}
