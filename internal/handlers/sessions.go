package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/internal/events"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/jwebster45206/console-university/pkg/storage"
)

// ErrGameNotFound is returned for unknown or expired sessions.
var ErrGameNotFound = errors.New("game state not found")

const lockStripes = 64

// Sessions runs engine operations against stored game states. Operations on
// one session are serialized; the state is loaded, changed and saved under a
// lock so concurrent requests cannot interleave.
type Sessions struct {
	engine    *dialogue.Engine
	storage   storage.Storage
	publisher events.Publisher // optional
	logger    *slog.Logger

	locks [lockStripes]sync.Mutex
}

// NewSessions creates the session service. publisher may be nil.
func NewSessions(engine *dialogue.Engine, store storage.Storage, publisher events.Publisher, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		engine:    engine,
		storage:   store,
		publisher: publisher,
		logger:    logger,
	}
}

// Engine returns the dialogue engine.
func (s *Sessions) Engine() *dialogue.Engine {
	return s.engine
}

func (s *Sessions) lockFor(id uuid.UUID) *sync.Mutex {
	return &s.locks[int(id[0])%lockStripes]
}

// Create starts a new session on the start screen.
func (s *Sessions) Create(ctx context.Context) (*state.GameState, dialogue.Turn, error) {
	gs, turn := s.engine.NewGame()
	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, dialogue.Turn{}, fmt.Errorf("failed to save new game: %w", err)
	}
	s.logger.Info("Game created", "game_id", gs.ID.String())
	return gs, turn, nil
}

// Get loads a session.
func (s *Sessions) Get(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, ErrGameNotFound
	}
	return gs, nil
}

// Delete removes a session.
func (s *Sessions) Delete(ctx context.Context, id uuid.UUID) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	gs, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.storage.DeleteGameState(ctx, gs.ID)
}

// Do applies op to the session and saves the result. Nothing is saved when
// op fails.
func (s *Sessions) Do(ctx context.Context, id uuid.UUID, op func(*state.GameState) (dialogue.Turn, error)) (*state.GameState, dialogue.Turn, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	gs, err := s.Get(ctx, id)
	if err != nil {
		return nil, dialogue.Turn{}, err
	}

	turn, err := op(gs)
	if err != nil {
		return gs, turn, err
	}

	if err := s.storage.SaveGameState(ctx, id, gs); err != nil {
		return gs, turn, fmt.Errorf("failed to save game state: %w", err)
	}
	s.publish(ctx, gs, turn)
	return gs, turn, nil
}

// publish broadcasts the turn to event stream subscribers. Failures are
// logged and never fail the request.
func (s *Sessions) publish(ctx context.Context, gs *state.GameState, turn dialogue.Turn) {
	if s.publisher == nil {
		return
	}
	log := s.logger.With("game_id", gs.ID.String())

	if err := s.publisher.PublishTurn(ctx, gs.ID, chat.NewTurnResponse(gs, turn)); err != nil {
		log.Warn("Failed to publish turn", "error", err)
	}
	if err := s.publisher.PublishGameStateUpdated(ctx, gs.ID, string(gs.Screen), gs.CurrentLocation); err != nil {
		log.Warn("Failed to publish state update", "error", err)
	}
	if turn.Has(dialogue.TriggerGameOver) {
		if err := s.publisher.PublishGameOver(ctx, gs.ID, string(gs.Ending)); err != nil {
			log.Warn("Failed to publish game over", "error", err)
		}
	}
}
