package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SaveLoadIsolated(t *testing.T) {
	m := NewMemoryStorage(time.Hour)
	ctx := context.Background()

	gs := state.NewGameState(scenario.Builtin())
	gs.PlayerName = "Sam"
	require.NoError(t, m.SaveGameState(ctx, gs.ID, gs))

	// mutating the saved value does not leak into the store
	gs.PlayerName = "Changed"

	loaded, err := m.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Sam", loaded.PlayerName)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryStorage_Expiry(t *testing.T) {
	m := NewMemoryStorage(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	gs := state.NewGameState(scenario.Builtin())
	require.NoError(t, m.SaveGameState(ctx, gs.ID, gs))

	now = now.Add(59 * time.Second)
	loaded, err := m.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded)

	now = now.Add(2 * time.Second)
	loaded, err = m.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStorage_DeleteAndMissing(t *testing.T) {
	m := NewMemoryStorage(0)
	ctx := context.Background()

	loaded, err := m.LoadGameState(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	gs := state.NewGameState(scenario.Builtin())
	require.NoError(t, m.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, m.DeleteGameState(ctx, gs.ID))
	loaded, _ = m.LoadGameState(ctx, gs.ID)
	assert.Nil(t, loaded)

	assert.Error(t, m.SaveGameState(ctx, gs.ID, nil))
	assert.NoError(t, m.Ping(ctx))
}
