package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// apiError is a non-success response from the API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
}

// isBusy reports whether the server rejected input because a schedule is
// still playing.
func isBusy(err error) bool {
	ae, ok := err.(*apiError)
	return ok && ae.Status == http.StatusConflict
}

func doJSON(client *http.Client, method, url string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp chat.ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return &apiError{Status: resp.StatusCode, Message: string(respBody)}
		}
		return &apiError{Status: resp.StatusCode, Message: errorResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func createGame(client *http.Client, baseURL string) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/gamestate", nil, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func sendChat(client *http.Client, baseURL string, id uuid.UUID, message string) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	req := chat.ChatRequest{GameStateID: id, Message: message}
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/chat", req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func sendAction(client *http.Client, baseURL string, id uuid.UUID, action dialogue.Action) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	req := chat.ActionRequest{GameStateID: id, Action: action}
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/action", req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func getMenu(client *http.Client, baseURL string, id uuid.UUID) ([]dialogue.MenuOption, error) {
	var resp chat.MenuResponse
	if err := doJSON(client, http.MethodGet, fmt.Sprintf("%s/v1/menu/%s", baseURL, id), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Options, nil
}

func restartGame(client *http.Client, baseURL string, id uuid.UUID) (*chat.TurnResponse, error) {
	var resp chat.TurnResponse
	url := fmt.Sprintf("%s/v1/gamestate/%s/restart", baseURL, id)
	if err := doJSON(client, http.MethodPost, url, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func deleteGame(client *http.Client, baseURL string, id uuid.UUID) error {
	return doJSON(client, http.MethodDelete, fmt.Sprintf("%s/v1/gamestate/%s", baseURL, id), nil, http.StatusNoContent, nil)
}
