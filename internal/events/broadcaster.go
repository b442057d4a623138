package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTurn             EventType = "game.turn"
	EventTypeGameStateUpdated EventType = "game.state_updated"
	EventTypeGameOver         EventType = "game.over"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel for one game.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Publisher is what handlers need from a broadcaster.
type Publisher interface {
	PublishTurn(ctx context.Context, gameID uuid.UUID, turn any) error
	PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, screen, location string) error
	PublishGameOver(ctx context.Context, gameID uuid.UUID, ending string) error
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishTurn publishes a game.turn event carrying the full turn response.
func (b *Broadcaster) PublishTurn(ctx context.Context, gameID uuid.UUID, turn any) error {
	event := Event{
		Type:   EventTypeTurn,
		GameID: gameID.String(),
		Data: map[string]any{
			"turn": turn,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, screen, location string) error {
	event := Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gameID.String(),
		Data: map[string]any{
			"screen":   screen,
			"location": location,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishGameOver publishes a game.over event
func (b *Broadcaster) PublishGameOver(ctx context.Context, gameID uuid.UUID, ending string) error {
	event := Event{
		Type:   EventTypeGameOver,
		GameID: gameID.String(),
		Data: map[string]any{
			"ending": ending,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// Subscribe opens a subscription to one game's channel. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(gameID))
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)
	return nil
}
