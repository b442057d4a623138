package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/dialogue"
)

// TestSuite defines a complete playthrough. It can either be a regular test
// with Steps, or a sequence that references other Cases.
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one player interaction. Exactly one of Input, Action or
// Restart is used; Input is sent to the chat endpoint.
type TestStep struct {
	Name    string           `json:"name,omitempty"`
	Input   *string          `json:"input,omitempty"`
	Action  *dialogue.Action `json:"action,omitempty"`
	Restart bool             `json:"restart,omitempty"`

	// NoWait sends the step without waiting for the previous schedule to
	// finish, to exercise the busy guard.
	NoWait bool `json:"no_wait,omitempty"`

	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status *int `json:"status,omitempty"` // HTTP status; 200 when unset

	// GameState properties, aligned with pkg/state/gamestate.go
	Screen     *string         `json:"screen,omitempty"`
	Location   *string         `json:"location,omitempty"`
	PlayerName *string         `json:"player_name,omitempty"`
	Ending     *string         `json:"ending,omitempty"`
	JimStage   *string         `json:"jim_stage,omitempty"`
	InDialogue *bool           `json:"in_dialogue,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`         // progress flags by JSON name
	WrongCount *int            `json:"jim_wrong_answers,omitempty"`

	// Turn analysis
	Category          *string  `json:"category,omitempty"`
	SpeechContains    []string `json:"speech_contains,omitempty"`
	SpeechNotContains []string `json:"speech_not_contains,omitempty"`
	SpeechRegex       string   `json:"speech_regex,omitempty"`
	Directives        []string `json:"directives,omitempty"` // kinds that must appear in the schedule

	// Menu offered after the step
	Menu []string `json:"menu,omitempty"` // exact labels, in order
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName   string
	StepName   string
	Success    bool
	Error      error
	Duration   time.Duration
	SpeechText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	GameState uuid.UUID // ID of the gamestate used for this test
}
