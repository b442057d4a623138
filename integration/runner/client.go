package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

// StatusError is a response whose status the caller did not ask for.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Body)
}

func call(ctx context.Context, client *http.Client, method, url string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return &StatusError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateGame starts a new session on the start screen.
func CreateGame(ctx context.Context, client *http.Client, baseURL string) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	if err := call(ctx, client, http.MethodPost, baseURL+"/v1/gamestate", nil, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetGameState retrieves the current gamestate along with its raw JSON
// fields, which expectations use to read progress flags by name.
func GetGameState(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*state.GameState, map[string]any, error) {
	var raw json.RawMessage
	if err := call(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/gamestate/%s", baseURL, id), nil, http.StatusOK, &raw); err != nil {
		return nil, nil, err
	}
	var gs state.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return nil, nil, fmt.Errorf("failed to decode gamestate: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, fmt.Errorf("failed to decode gamestate fields: %w", err)
	}
	return &gs, fields, nil
}

// PostChat sends typed input to the active conversation.
func PostChat(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, message string) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	req := chat.ChatRequest{GameStateID: id, Message: message}
	if err := call(ctx, client, http.MethodPost, baseURL+"/v1/chat", req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostAction performs a menu, modal or screen action.
func PostAction(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, action dialogue.Action) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	req := chat.ActionRequest{GameStateID: id, Action: action}
	if err := call(ctx, client, http.MethodPost, baseURL+"/v1/action", req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Restart returns the session to the start screen.
func Restart(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	url := fmt.Sprintf("%s/v1/gamestate/%s/restart", baseURL, id)
	if err := call(ctx, client, http.MethodPost, url, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMenu lists the options at the player's location.
func GetMenu(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) ([]dialogue.MenuOption, error) {
	var resp chat.MenuResponse
	if err := call(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/menu/%s", baseURL, id), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Options, nil
}

// DeleteGame removes the session.
func DeleteGame(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) error {
	return call(ctx, client, http.MethodDelete, fmt.Sprintf("%s/v1/gamestate/%s", baseURL, id), nil, http.StatusNoContent, nil)
}
