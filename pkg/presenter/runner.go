package presenter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/console-university/pkg/dialogue"
)

// Runner plays step schedules against an adapter. Starting a new schedule
// cancels whatever is still pending from the previous one, so stale steps
// never reach the adapter after a state change.
type Runner struct {
	adapter Adapter
	logger  *slog.Logger

	// dispatchMu is held across the liveness check and the adapter call, and
	// by Play and Stop while they switch schedules.
	dispatchMu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	current *playback
}

type playback struct {
	gen   uint64
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (p *playback) finish() {
	p.once.Do(func() { close(p.done) })
}

// NewRunner creates a runner for the adapter.
func NewRunner(a Adapter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{adapter: a, logger: logger}
}

// Play starts the schedule and returns a channel closed when the last step
// has been applied or the schedule was cancelled. Steps without a delay are
// applied before Play returns.
func (r *Runner) Play(steps []dialogue.Step) <-chan struct{} {
	r.dispatchMu.Lock()
	r.mu.Lock()
	r.stopLocked()
	r.gen++
	p := &playback{gen: r.gen, done: make(chan struct{})}
	r.current = p
	r.mu.Unlock()
	r.dispatchMu.Unlock()

	r.advance(p, steps, 0, false)
	return p.done
}

// Stop cancels the pending schedule, if any.
func (r *Runner) Stop() {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Pending reports whether a schedule is still playing.
func (r *Runner) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

func (r *Runner) stopLocked() {
	if r.current == nil {
		return
	}
	if r.current.timer != nil {
		r.current.timer.Stop()
	}
	r.current.finish()
	r.current = nil
}

// live reports whether p is still the active schedule.
func (r *Runner) live(p *playback) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current == p && r.gen == p.gen
}

// advance applies steps from i on, arming a timer at the first step that
// still has to wait.
func (r *Runner) advance(p *playback, steps []dialogue.Step, i int, waited bool) {
	for ; i < len(steps); i++ {
		if !waited && steps[i].Delay() > 0 {
			next := i
			r.mu.Lock()
			if r.current != p {
				r.mu.Unlock()
				return
			}
			p.timer = time.AfterFunc(steps[i].Delay(), func() {
				r.advance(p, steps, next, true)
			})
			r.mu.Unlock()
			return
		}
		waited = false

		if !r.dispatch(p, steps[i].Directive) {
			return
		}
	}

	r.mu.Lock()
	if r.current == p {
		r.current = nil
	}
	r.mu.Unlock()
	p.finish()
}

// dispatch applies d if p is still the active schedule. A concurrent Play or
// Stop waits for an in-flight directive, so nothing from p reaches the adapter
// once they return.
func (r *Runner) dispatch(p *playback, d dialogue.Directive) bool {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	if !r.live(p) {
		return false
	}
	if err := Dispatch(r.adapter, d); err != nil {
		r.logger.Warn("Skipping directive", "error", err)
	}
	return true
}
