// Package game wires the core pieces (board, chain selector, score
// tracker, round controller) into the event surface the host drives:
// gesture press/touch/release and the once-per-second tick.
package game

import (
	"math/rand"

	"go-dots/internal/board"
	"go-dots/internal/chain"
	"go-dots/internal/hexgrid"
	"go-dots/internal/round"
	"go-dots/internal/scoring"
)

// Options is the immutable game configuration, fixed at initialization.
type Options struct {
	Width          int
	Height         int
	Colors         int
	RoundSeconds   int
	BonusThreshold int
	Seed           int64 // 0 picks a random seed
}

// Default board shape.
const (
	DefaultWidth  = 6
	DefaultHeight = 6
	DefaultColors = 4
)

func (o *Options) applyDefaults() {
	if o.Width < 1 {
		o.Width = DefaultWidth
	}
	if o.Height < 1 {
		o.Height = DefaultHeight
	}
	if o.Colors < 1 {
		o.Colors = DefaultColors
	}
	if o.RoundSeconds < 1 {
		o.RoundSeconds = round.DefaultSeconds
	}
	if o.BonusThreshold < 1 {
		o.BonusThreshold = scoring.DefaultBonusThreshold
	}
	if o.Seed == 0 {
		o.Seed = rand.Int63()
	}
}

// Game owns the complete core state for one process. The board is replaced
// wholesale at round start; everything else lives as long as the Game.
type Game struct {
	opts Options
	rng  *rand.Rand

	Board   *board.Board
	Chain   *chain.Chain
	Tracker *scoring.Tracker
	Rounds  *round.Controller

	pressed  bool
	lastCol  int
	lastRow  int
	hasTouch bool

	latch *Latch

	// Host-facing observers. All nil-safe.
	OnChainChanged      func(tokens []*board.Token, looped bool)
	OnClearCommitted    func(cleared []*board.Token, columns []int)
	OnCompactionReport  func(reports []board.ColumnReport)
	OnScoreChanged      func(total, preview int)
	OnRoundStateChanged func(state string, summary *round.Summary)
}

// New builds a game from options. history may be nil to disable score
// persistence (tests do this; main wires the JSON storage).
func New(opts Options, history *scoring.History) (*Game, error) {
	opts.applyDefaults()

	g := &Game{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
	g.Tracker = scoring.NewTracker(opts.BonusThreshold)
	g.Rounds = round.NewController(g.Tracker, history, opts.RoundSeconds)
	g.Rounds.OnStateChanged = g.roundStateChanged

	if err := g.rebuild(); err != nil {
		return nil, err
	}
	return g, nil
}

// Options returns the configuration the game was built with.
func (g *Game) Options() Options { return g.opts }

// rebuild replaces the board and selector, rewiring the observers.
func (g *Game) rebuild() error {
	b, err := board.New(g.opts.Width, g.opts.Height, g.opts.Colors, g.rng)
	if err != nil {
		return err
	}
	g.Board = b
	g.Chain = chain.New(b)
	g.Chain.OnChanged = func(tokens []*board.Token, looped bool) {
		if g.OnChainChanged != nil {
			g.OnChainChanged(tokens, looped)
		}
	}
	g.Chain.OnPreview = func(delta int) {
		g.Tracker.AddPreview(delta)
		g.scoreChanged()
	}
	return nil
}

func (g *Game) scoreChanged() {
	if g.OnScoreChanged != nil {
		g.OnScoreChanged(g.Tracker.Total(), g.Tracker.Preview())
	}
}

func (g *Game) roundStateChanged(state string, summary *round.Summary) {
	if state == round.StateEnded {
		// Freeze whatever the player was doing: abandon the gesture, drop
		// any clear still waiting on animations.
		g.pressed = false
		g.hasTouch = false
		g.latch = nil
		g.Chain.Reset()
		g.Tracker.ResetPreview()
	}
	if g.OnRoundStateChanged != nil {
		g.OnRoundStateChanged(state, summary)
	}
}

// StartRound resets score, selection and board and arms the countdown.
// Starting while a round is running returns round.ErrRoundRunning.
func (g *Game) StartRound() error {
	if err := g.Rounds.Start(); err != nil {
		return err
	}
	if err := g.rebuild(); err != nil {
		return err
	}
	g.scoreChanged()
	return nil
}

// Tick consumes one second of round time.
func (g *Game) Tick() {
	g.Rounds.Tick()
}

// Press begins a drag gesture. Touches are ignored until the host presses.
// Any clear still waiting on removal animations is compacted first: the
// board must be whole again before a new gesture starts.
func (g *Game) Press() {
	if !g.Rounds.Running() {
		return
	}
	g.flushPendingClear()
	g.pressed = true
	g.hasTouch = false
}

// flushPendingClear drains the outstanding completion latch, firing the
// deferred compaction immediately.
func (g *Game) flushPendingClear() {
	for g.latch != nil {
		g.latch.Done()
	}
}

// TouchCell feeds the cell currently under the cursor into the selector.
// Consecutive touches of the same cell are collapsed into one, mirroring
// on-enter overlap events from a pointer host.
func (g *Game) TouchCell(col, row int) {
	if !g.pressed || !g.Rounds.Running() {
		return
	}
	if g.hasTouch && col == g.lastCol && row == g.lastRow {
		return
	}
	g.lastCol, g.lastRow = col, row
	g.hasTouch = true
	g.Chain.Touch(g.Board.At(col, row))
}

// ReleaseGesture ends the drag. Chains of length > 1 are committed: points
// are scored, the clear set is announced, and a completion latch is armed.
// Compaction runs once the host has signalled one ClearDone per cleared
// token. Shorter chains are discarded.
//
// It returns the number of cleared tokens (0 when nothing was committed).
func (g *Game) ReleaseGesture() int {
	if !g.pressed {
		return 0
	}
	g.pressed = false
	g.hasTouch = false

	if g.Chain.Len() <= 1 {
		g.Chain.Reset()
		g.Tracker.ResetPreview()
		g.scoreChanged()
		return 0
	}

	// Snapshot the clear set before Release wipes the selector.
	set := g.Chain.ClearSet()
	tokens, _ := g.Chain.Release()

	g.Tracker.Commit(len(tokens))
	g.scoreChanged()

	cleared := make([]*board.Token, 0, set.Len())
	colSeen := map[int]bool{}
	var columns []int
	for c := 0; c < g.Board.Width(); c++ {
		for r := 0; r < g.Board.Height(); r++ {
			t := g.Board.At(c, r)
			if t == nil || !set.Has(hexgrid.Cell{Col: c, Row: r}.Index(g.Board.Width())) {
				continue
			}
			cleared = append(cleared, t)
			if !colSeen[c] {
				colSeen[c] = true
				columns = append(columns, c)
			}
		}
	}

	if g.OnClearCommitted != nil {
		g.OnClearCommitted(cleared, columns)
	}

	g.latch = NewLatch(len(cleared), func() {
		g.latch = nil
		reports := g.Board.Compact(set)
		if g.OnCompactionReport != nil {
			g.OnCompactionReport(reports)
		}
	})
	return len(cleared)
}

// ClearDone signals that one cleared token's removal animation finished.
// The compaction fires when every cleared token has been signalled.
func (g *Game) ClearDone() {
	if g.latch != nil {
		g.latch.Done()
	}
}

// PendingClears returns how many removal completions are still outstanding.
func (g *Game) PendingClears() int {
	if g.latch == nil {
		return 0
	}
	return g.latch.Remaining()
}
