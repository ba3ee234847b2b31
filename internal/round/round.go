// Package round owns the round lifecycle: starting, the countdown, and the
// end-of-round score bookkeeping including the in-process high score.
package round

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"go-dots/internal/scoring"
)

// Round lifecycle states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
	StateEnded   = "ended"
)

// ErrRoundRunning is returned when Start is called mid-round.
var ErrRoundRunning = errors.New("round already running")

// DefaultSeconds is the countdown length for a round.
const DefaultSeconds = 60

// Summary is handed to the host when a round ends.
type Summary struct {
	Score        int
	HighScore    int
	NewHighScore bool
}

// Controller drives the idle -> running -> ended -> idle cycle. The high
// score survives across rounds for the lifetime of the process; the
// optional history additionally persists every round's score.
type Controller struct {
	fsm     *fsm.FSM
	tracker *scoring.Tracker
	history *scoring.History // may be nil: history persistence disabled

	seconds   int
	remaining int
	highScore int

	// OnStateChanged fires on every lifecycle transition. summary is
	// non-nil only when entering the ended state. Nil-safe.
	OnStateChanged func(state string, summary *Summary)
}

// NewController creates an idle controller. seconds < 1 falls back to
// DefaultSeconds; history may be nil.
func NewController(tracker *scoring.Tracker, history *scoring.History, seconds int) *Controller {
	if seconds < 1 {
		seconds = DefaultSeconds
	}
	c := &Controller{
		tracker: tracker,
		history: history,
		seconds: seconds,
	}
	c.fsm = fsm.NewFSM(
		StateIdle,
		getRoundTransitions(),
		getRoundCallbacks(c),
	)
	return c
}

func getRoundTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "start", Src: []string{StateIdle}, Dst: StateRunning},
		{Name: "expire", Src: []string{StateRunning}, Dst: StateEnded},
		{Name: "acknowledge", Src: []string{StateEnded}, Dst: StateIdle},
	}
}

func getRoundCallbacks(c *Controller) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_" + StateRunning: func(ctx context.Context, e *fsm.Event) {
			c.tracker.Reset()
			c.remaining = c.seconds
			c.notify(nil)
		},
		"enter_" + StateEnded: func(ctx context.Context, e *fsm.Event) {
			score := c.tracker.Total()
			newHigh := score > c.highScore
			if newHigh {
				c.highScore = score
			}
			if c.history != nil {
				// History is a convenience; a failing disk must not take
				// the round summary down with it.
				_ = c.history.RecordRound(score)
			}
			c.notify(&Summary{
				Score:        score,
				HighScore:    c.highScore,
				NewHighScore: newHigh,
			})
		},
		"enter_" + StateIdle: func(ctx context.Context, e *fsm.Event) {
			c.notify(nil)
		},
	}
}

func (c *Controller) notify(summary *Summary) {
	if c.OnStateChanged != nil {
		c.OnStateChanged(c.fsm.Current(), summary)
	}
}

// Start arms a fresh round: score reset, countdown armed. Calling it while
// a round is running is a precondition violation.
func (c *Controller) Start() error {
	if c.fsm.Is(StateRunning) {
		return ErrRoundRunning
	}
	if err := c.fsm.Event(context.Background(), "start"); err != nil {
		return fmt.Errorf("cannot start round from state %q: %w", c.fsm.Current(), err)
	}
	return nil
}

// Tick consumes one second of the countdown. On expiry the controller
// transitions to ended, snapshots the high score and emits the summary.
func (c *Controller) Tick() {
	if !c.fsm.Is(StateRunning) {
		return
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		_ = c.fsm.Event(context.Background(), "expire")
	}
}

// Acknowledge moves an ended round back to idle, awaiting the next Start.
func (c *Controller) Acknowledge() {
	_ = c.fsm.Event(context.Background(), "acknowledge")
}

// State returns the current lifecycle state name.
func (c *Controller) State() string { return c.fsm.Current() }

// Running reports whether input should currently be accepted.
func (c *Controller) Running() bool { return c.fsm.Is(StateRunning) }

// Remaining returns the countdown seconds left in the current round.
func (c *Controller) Remaining() int { return c.remaining }

// Seconds returns the configured round length.
func (c *Controller) Seconds() int { return c.seconds }

// HighScore returns the best score seen this process.
func (c *Controller) HighScore() int { return c.highScore }
