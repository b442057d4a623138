package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/classifier"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/jwebster45206/console-university/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, s)
	return p.err
}

func (p *recordingPublisher) PublishTurn(ctx context.Context, gameID uuid.UUID, turn any) error {
	return p.record("turn")
}

func (p *recordingPublisher) PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, screen, location string) error {
	return p.record("state:" + screen + ":" + location)
}

func (p *recordingPublisher) PublishGameOver(ctx context.Context, gameID uuid.UUID, ending string) error {
	return p.record("over:" + ending)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type apiHarness struct {
	t         *testing.T
	store     *storage.MockStorage
	publisher *recordingPublisher
	sessions  *Sessions
	mux       *http.ServeMux
}

func newAPI(t *testing.T) *apiHarness {
	t.Helper()
	log := testLogger()
	store := storage.NewMockStorage()
	pub := &recordingPublisher{}
	engine := dialogue.NewEngine(scenario.Builtin(), dialogue.PolicyFull, log)
	sessions := NewSessions(engine, store, pub, log)

	mux := http.NewServeMux()
	gsHandler := NewGameStateHandler(sessions, log)
	mux.Handle("/v1/gamestate", gsHandler)
	mux.Handle("/v1/gamestate/", gsHandler)
	mux.Handle("/v1/chat", NewChatHandler(sessions, log))
	mux.Handle("/v1/action", NewActionHandler(sessions, log))
	mux.Handle("/v1/menu/", NewMenuHandler(sessions, log))
	mux.Handle("/v1/play/", NewPlayHandler(sessions, log))
	mux.Handle("/health", NewHealthHandler(store, log))

	return &apiHarness{t: t, store: store, publisher: pub, sessions: sessions, mux: mux}
}

func (a *apiHarness) request(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.mux.ServeHTTP(rr, req)
	return rr
}

func decodeTurn(t *testing.T, rr *httptest.ResponseRecorder) chat.TurnResponse {
	t.Helper()
	var resp chat.TurnResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), rr.Body.String())
	return resp
}

func hasKind(resp chat.TurnResponse, kind dialogue.Kind) bool {
	for _, s := range resp.Steps {
		if s.Directive.Kind == kind {
			return true
		}
	}
	return false
}

func (a *apiHarness) create() uuid.UUID {
	a.t.Helper()
	rr := a.request(http.MethodPost, "/v1/gamestate", nil)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeTurn(a.t, rr).GameStateID
}

func (a *apiHarness) action(id uuid.UUID, kind dialogue.ActionKind, target string) *httptest.ResponseRecorder {
	return a.request(http.MethodPost, "/v1/action", chat.ActionRequest{
		GameStateID: id,
		Action:      dialogue.Action{Kind: kind, Target: target},
	})
}

func (a *apiHarness) chat(id uuid.UUID, msg string) *httptest.ResponseRecorder {
	return a.request(http.MethodPost, "/v1/chat", chat.ChatRequest{GameStateID: id, Message: msg})
}

// settle clears the input guard as if the client finished playing the schedule.
func (a *apiHarness) settle(id uuid.UUID) {
	a.t.Helper()
	gs, err := a.store.LoadGameState(context.Background(), id)
	require.NoError(a.t, err)
	require.NotNil(a.t, gs)
	gs.PendingUntil = time.Time{}
}

func TestGameStateHandler_Create(t *testing.T) {
	a := newAPI(t)
	rr := a.request(http.MethodPost, "/v1/gamestate", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decodeTurn(t, rr)
	assert.NotEqual(t, uuid.Nil, resp.GameStateID)
	assert.Equal(t, state.ScreenStart, resp.Screen)
	assert.True(t, hasKind(resp, dialogue.ShowStartScreen))
	assert.Equal(t, 1, a.store.Saves())
}

func TestGameStateHandler_ReadDelete(t *testing.T) {
	a := newAPI(t)
	id := a.create()

	rr := a.request(http.MethodGet, "/v1/gamestate/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))
	assert.Equal(t, id, gs.ID)
	assert.Equal(t, scenario.StartLocation, gs.CurrentLocation)

	rr = a.request(http.MethodDelete, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.request(http.MethodGet, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = a.request(http.MethodDelete, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGameStateHandler_BadRequests(t *testing.T) {
	a := newAPI(t)
	id := a.create()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "bad id", method: http.MethodGet, path: "/v1/gamestate/not-a-uuid", want: http.StatusBadRequest},
		{name: "list not allowed", method: http.MethodGet, path: "/v1/gamestate", want: http.StatusMethodNotAllowed},
		{name: "patch not allowed", method: http.MethodPatch, path: "/v1/gamestate/" + id.String(), want: http.StatusMethodNotAllowed},
		{name: "unknown sub route", method: http.MethodPost, path: "/v1/gamestate/" + id.String() + "/save", want: http.StatusNotFound},
		{name: "restart by get", method: http.MethodGet, path: "/v1/gamestate/" + id.String() + "/restart", want: http.StatusMethodNotAllowed},
		{name: "unknown game", method: http.MethodGet, path: "/v1/gamestate/" + uuid.NewString(), want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.request(tt.method, tt.path, nil)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			var e ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestPlaythrough_NameThenQuad(t *testing.T) {
	a := newAPI(t)
	id := a.create()

	rr := a.action(id, dialogue.ActionEnroll, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeTurn(t, rr)
	assert.Equal(t, scenario.DeanOffice, resp.Location)
	assert.Equal(t, state.ScreenPlaying, resp.Screen)
	assert.True(t, hasKind(resp, dialogue.StartConversation))
	assert.Greater(t, resp.BusyUntilMS, time.Now().UnixMilli())

	// the Dean is still talking
	rr = a.chat(id, "Sam")
	assert.Equal(t, http.StatusConflict, rr.Code)

	a.settle(id)
	rr = a.chat(id, "Sam")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp = decodeTurn(t, rr)
	assert.Equal(t, classifier.Name, resp.Category)
	assert.True(t, hasKind(resp, dialogue.ShowOrientation))
	require.NotEmpty(t, resp.Transcript)
	assert.Equal(t, "Sam", resp.Transcript[1].Text)

	rr = a.request(http.MethodGet, "/v1/menu/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var menu chat.MenuResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&menu))
	require.Len(t, menu.Options, 1)
	assert.Equal(t, "Go to the Quad", menu.Options[0].Label)

	rr = a.action(id, dialogue.ActionGoToQuad, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, scenario.Quad, decodeTurn(t, rr).Location)

	gs, err := a.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Sam", gs.PlayerName)
	assert.True(t, gs.GotOrientation)

	assert.Contains(t, a.publisher.Events(), "state:playing:quad")
}

func TestPlaythrough_InsultPublishesGameOver(t *testing.T) {
	a := newAPI(t)
	id := a.create()
	require.Equal(t, http.StatusOK, a.action(id, dialogue.ActionEnroll, "").Code)
	a.settle(id)

	rr := a.chat(id, "you suck")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeTurn(t, rr)
	assert.Equal(t, classifier.Insult, resp.Category)
	assert.Equal(t, state.ScreenGameOver, resp.Screen)
	assert.Contains(t, a.publisher.Events(), "over:expelled")

	rr = a.action(id, dialogue.ActionGoToQuad, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.request(http.MethodPost, "/v1/gamestate/"+id.String()+"/restart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decodeTurn(t, rr)
	assert.Equal(t, state.ScreenStart, resp.Screen)
	assert.True(t, hasKind(resp, dialogue.ShowStartScreen))
}

func TestChatHandler_Errors(t *testing.T) {
	a := newAPI(t)
	id := a.create()

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "malformed json", body: "{", want: http.StatusBadRequest},
		{name: "missing id", body: chat.ChatRequest{Message: "hi"}, want: http.StatusBadRequest},
		{name: "unknown game", body: chat.ChatRequest{GameStateID: uuid.New(), Message: "hi"}, want: http.StatusNotFound},
		{name: "no conversation", body: chat.ChatRequest{GameStateID: id, Message: "hi"}, want: http.StatusConflict},
		{name: "empty input is a no-op", body: chat.ChatRequest{GameStateID: id, Message: "   "}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.request(http.MethodPost, "/v1/chat", tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	rr := a.request(http.MethodGet, "/v1/chat", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestActionHandler_Errors(t *testing.T) {
	a := newAPI(t)
	id := a.create()

	tests := []struct {
		name   string
		action dialogue.Action
		want   int
	}{
		{name: "unknown kind", action: dialogue.Action{Kind: "fly"}, want: http.StatusBadRequest},
		{name: "go without target", action: dialogue.Action{Kind: dialogue.ActionGo}, want: http.StatusBadRequest},
		{name: "talk before enrolling", action: dialogue.Action{Kind: dialogue.ActionTalk}, want: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.request(http.MethodPost, "/v1/action", chat.ActionRequest{GameStateID: id, Action: tt.action})
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	require.Equal(t, http.StatusOK, a.action(id, dialogue.ActionEnroll, "").Code)
	rr := a.action(id, dialogue.ActionGo, "library")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = a.action(id, dialogue.ActionTalk, scenario.QuestGiverID)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSessions_SaveFailure(t *testing.T) {
	a := newAPI(t)
	id := a.create()
	a.store.SetSaveError(errors.New("disk full"))

	rr := a.action(id, dialogue.ActionEnroll, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
}

func TestSessions_ConcurrentInputIsSerialized(t *testing.T) {
	a := newAPI(t)
	id := a.create()
	require.Equal(t, http.StatusOK, a.action(id, dialogue.ActionEnroll, "").Code)
	a.settle(id)

	var wg sync.WaitGroup
	codes := make(chan int, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			codes <- a.chat(id, fmt.Sprintf("Sam%c", 'a'+n)).Code
		}(i)
	}
	wg.Wait()
	close(codes)

	ok := 0
	for code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, ok, "exactly one input is accepted while the reply plays")
}

func TestHealthHandler(t *testing.T) {
	a := newAPI(t)
	rr := a.request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"storage":"healthy"`)

	a.store.SetPingError(errors.New("down"))
	rr = a.request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "degraded"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: ErrGameNotFound, want: http.StatusNotFound},
		{err: dialogue.ErrBusy, want: http.StatusConflict},
		{err: fmt.Errorf("wrapped: %w", dialogue.ErrNPCNotHere), want: http.StatusConflict},
		{err: dialogue.ErrInvalidAction, want: http.StatusBadRequest},
		{err: scenario.UnknownLocation("moon"), want: http.StatusBadRequest},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
