package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_Delays(t *testing.T) {
	var sc Script
	sc.Now(Scene("a.png")).
		After(500*time.Millisecond, Speech("Jim", "one", "left")).
		Wait(time.Second).
		After(1500*time.Millisecond, End()).
		Now(NoMenu())

	steps := sc.Steps()
	require.Len(t, steps, 4)
	assert.Equal(t, int64(0), steps[0].DelayMS)
	assert.Equal(t, int64(500), steps[1].DelayMS)
	assert.Equal(t, int64(2500), steps[2].DelayMS)
	assert.Equal(t, int64(0), steps[3].DelayMS)

	turn := Turn{Steps: steps}
	assert.Equal(t, 3*time.Second, turn.Duration())
}

func TestScript_AppendCarriesWait(t *testing.T) {
	var inner Script
	inner.Now(Converse("dean_cain", "Dean Cain")).After(200*time.Millisecond, End())

	var sc Script
	sc.Now(NoMenu()).Wait(1500 * time.Millisecond).Append(inner.Steps()...)

	steps := sc.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, int64(1500), steps[1].DelayMS)
	assert.Equal(t, int64(200), steps[2].DelayMS)
}

func TestScript_EmptyStepsNotNil(t *testing.T) {
	var sc Script
	assert.NotNil(t, sc.Steps())
	assert.Empty(t, sc.Steps())
}

func TestTurn_Find(t *testing.T) {
	turn := Turn{Steps: []Step{
		{Directive: Scene("x.png")},
		{Directive: GameOver("Title", "Message"), DelayMS: 3000},
	}}

	step, ok := turn.Find(TriggerGameOver)
	require.True(t, ok)
	assert.Equal(t, "Title", step.Directive.Title)
	assert.Equal(t, 3*time.Second, step.Delay())

	assert.True(t, turn.Has(SetSceneImage))
	assert.False(t, turn.Has(DetachNPC))
}

func TestParseJimPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    JimPolicy
		wantErr bool
	}{
		{in: "", want: PolicyFull},
		{in: "full", want: PolicyFull},
		{in: "scripted", want: PolicyScripted},
		{in: "chaotic", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseJimPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_Validate(t *testing.T) {
	assert.NoError(t, Action{Kind: ActionTalk}.Validate())
	assert.NoError(t, Action{Kind: ActionGo, Target: "quad"}.Validate())
	assert.ErrorIs(t, Action{Kind: ActionGo}.Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Action{}.Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Action{Kind: "fly"}.Validate(), ErrInvalidAction)
}
