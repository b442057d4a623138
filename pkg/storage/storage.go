package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/state"
)

// Storage persists game sessions for the lifetime of a visit.
// LoadGameState returns nil, nil when the session does not exist or expired.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}
