package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted sessions against a running console-university API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode

	// Now and Sleep pace steps against the server's busy window. Tests
	// running an in-process server swap them for a shared fake clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
		Now:               time.Now,
		Sleep:             sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	for i, step := range suite.Steps {
		if err := step.validate(); err != nil {
			return TestSuite{}, fmt.Errorf("%s: step %d (%s): %w", filename, i, step.Name, err)
		}
	}

	return suite, nil
}

func (s TestStep) validate() error {
	n := 0
	if s.Input != nil {
		n++
	}
	if s.Action != nil {
		n++
	}
	if s.Restart {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of input, action or restart is required")
	}
	return nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a complete test suite in a fresh session.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	created, err := CreateGame(ctx, r.Client, r.BaseURL)
	if err != nil {
		result.Error = fmt.Errorf("failed to create gamestate: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	gameStateID := created.GameStateID
	result.GameState = gameStateID
	defer func() {
		if err := DeleteGame(context.WithoutCancel(ctx), r.Client, r.BaseURL, gameStateID); err != nil {
			r.Logger("    failed to delete gamestate %s: %v", gameStateID, err)
		}
	}()

	busyUntil := created.BusyUntilMS
	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		if !step.NoWait {
			if err := r.waitIdle(ctx, busyUntil); err != nil {
				result.Error = fmt.Errorf("step %d (%s): %w", i, step.Name, err)
				break
			}
		}

		stepResult, resp := r.runStep(ctx, gameStateID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)
		if resp != nil {
			busyUntil = resp.BusyUntilMS
		}

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// waitIdle blocks until the server will accept input again.
func (r *Runner) waitIdle(ctx context.Context, busyUntilMS int64) error {
	if busyUntilMS == 0 {
		return nil
	}
	d := time.UnixMilli(busyUntilMS).Sub(r.Now())
	if d <= 0 {
		return nil
	}
	if d > r.Timeout {
		return fmt.Errorf("server busy for %v, longer than the %v step timeout", d, r.Timeout)
	}
	return r.Sleep(ctx, d)
}

// runStep sends one interaction and checks its expectations.
func (r *Runner) runStep(ctx context.Context, gameStateID uuid.UUID, step TestStep) (TestResult, *chat.TurnResponse) {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var (
		resp *chat.TurnResponse
		err  error
	)
	switch {
	case step.Input != nil:
		resp, err = PostChat(ctx, r.Client, r.BaseURL, gameStateID, *step.Input)
	case step.Action != nil:
		resp, err = PostAction(ctx, r.Client, r.BaseURL, gameStateID, *step.Action)
	default:
		resp, err = Restart(ctx, r.Client, r.BaseURL, gameStateID)
	}

	wantStatus := http.StatusOK
	if step.Expectations.Status != nil {
		wantStatus = *step.Expectations.Status
	}
	if err != nil {
		// An expected rejection still gets its state checks.
		var se *StatusError
		if !errors.As(err, &se) || se.Status != wantStatus {
			result.Error = err
			result.Duration = time.Since(start)
			return result, nil
		}
	} else if wantStatus != http.StatusOK {
		result.Error = fmt.Errorf("expected status %d, got 200", wantStatus)
		result.Duration = time.Since(start)
		return result, resp
	}

	gs, fields, err := GetGameState(ctx, r.Client, r.BaseURL, gameStateID)
	if err != nil {
		result.Error = fmt.Errorf("failed to get gamestate after step: %w", err)
		result.Duration = time.Since(start)
		return result, resp
	}

	var menu []dialogue.MenuOption
	if step.Expectations.Menu != nil {
		if menu, err = GetMenu(ctx, r.Client, r.BaseURL, gameStateID); err != nil {
			result.Error = fmt.Errorf("failed to get menu: %w", err)
			result.Duration = time.Since(start)
			return result, resp
		}
	}

	if resp != nil {
		result.SpeechText = SpeechText(resp.Steps)
	}
	if err := CheckExpectations(step.Expectations, gs, fields, resp, menu); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result, resp
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result, resp
}

// SpeechText joins the NPC lines of a schedule.
func SpeechText(steps []dialogue.Step) string {
	var lines []string
	for _, s := range steps {
		d := s.Directive
		if d.Kind == dialogue.ShowSpeechLine && d.Side == state.SideNPC {
			lines = append(lines, d.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// CheckExpectations validates a step's expectations against the session after
// the step. resp is nil when the step was rejected.
func CheckExpectations(exp Expectations, gs *state.GameState, fields map[string]any, resp *chat.TurnResponse, menu []dialogue.MenuOption) error {
	if exp.Screen != nil && string(gs.Screen) != *exp.Screen {
		return fmt.Errorf("expected screen %s, got %s", *exp.Screen, gs.Screen)
	}
	if exp.Location != nil && gs.CurrentLocation != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, gs.CurrentLocation)
	}
	if exp.PlayerName != nil && gs.PlayerName != *exp.PlayerName {
		return fmt.Errorf("expected player_name %q, got %q", *exp.PlayerName, gs.PlayerName)
	}
	if exp.Ending != nil && string(gs.Ending) != *exp.Ending {
		return fmt.Errorf("expected ending %q, got %q", *exp.Ending, gs.Ending)
	}
	if exp.JimStage != nil && string(gs.JimStage) != *exp.JimStage {
		return fmt.Errorf("expected jim_stage %s, got %s", *exp.JimStage, gs.JimStage)
	}
	if exp.InDialogue != nil && gs.InDialogue() != *exp.InDialogue {
		return fmt.Errorf("expected in_dialogue %t, got %t", *exp.InDialogue, gs.InDialogue())
	}
	if exp.WrongCount != nil && gs.JimWrongAnswers != *exp.WrongCount {
		return fmt.Errorf("expected jim_wrong_answers %d, got %d", *exp.WrongCount, gs.JimWrongAnswers)
	}
	for name, want := range exp.Flags {
		got, ok := fields[name].(bool)
		if !ok {
			return fmt.Errorf("expected flag %s to be set, but it doesn't exist", name)
		}
		if got != want {
			return fmt.Errorf("expected flag %s to be %t, got %t", name, want, got)
		}
	}

	turnChecks := exp.Category != nil || len(exp.SpeechContains) > 0 || len(exp.SpeechNotContains) > 0 ||
		exp.SpeechRegex != "" || len(exp.Directives) > 0
	if turnChecks && resp == nil {
		return errors.New("turn expectations given for a rejected step")
	}
	if resp == nil {
		return checkMenu(exp.Menu, menu)
	}

	if exp.Category != nil && string(resp.Category) != *exp.Category {
		return fmt.Errorf("expected category %s, got %s", *exp.Category, resp.Category)
	}

	speech := strings.ToLower(SpeechText(resp.Steps))
	for _, text := range exp.SpeechContains {
		if !strings.Contains(speech, strings.ToLower(text)) {
			return fmt.Errorf("expected speech to contain '%s', but it didn't", text)
		}
	}
	for _, text := range exp.SpeechNotContains {
		if strings.Contains(speech, strings.ToLower(text)) {
			return fmt.Errorf("expected speech to NOT contain '%s', but it did", text)
		}
	}
	if exp.SpeechRegex != "" {
		matched, err := regexp.MatchString(exp.SpeechRegex, SpeechText(resp.Steps))
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("speech didn't match regex pattern: %s", exp.SpeechRegex)
		}
	}

	turn := dialogue.Turn{Steps: resp.Steps}
	for _, kind := range exp.Directives {
		if !turn.Has(dialogue.Kind(kind)) {
			return fmt.Errorf("expected a %s directive in the schedule", kind)
		}
	}

	return checkMenu(exp.Menu, menu)
}

func checkMenu(want []string, menu []dialogue.MenuOption) error {
	if want == nil {
		return nil
	}
	got := make([]string, 0, len(menu))
	for _, opt := range menu {
		got = append(got, opt.Label)
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		return fmt.Errorf("expected menu %v, got %v", want, got)
	}
	return nil
}
