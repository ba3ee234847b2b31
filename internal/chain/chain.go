// Package chain implements the selection state machine for an in-progress
// drag gesture: an ordered run of same-colored, adjacency-valid tokens with
// backtrack (undo) and loop-closure handling.
package chain

import (
	"context"

	"github.com/kamstrup/intmap"
	"github.com/looplab/fsm"

	"go-dots/internal/board"
	"go-dots/internal/hexgrid"
)

// Gesture states.
const (
	StateEmpty    = "empty"
	StateBuilding = "building"
	StateLooped   = "looped"
)

// Chain tracks the ordered selection for the current gesture. It reads the
// board but never mutates cell contents; clearing happens downstream via
// the set handed out by ClearSet.
type Chain struct {
	board  *board.Board
	fsm    *fsm.FSM
	tokens []*board.Token

	// OnChanged fires after every append, pop, loop closure, and reset so
	// the host can redraw the selection. Nil-safe.
	OnChanged func(tokens []*board.Token, looped bool)
	// OnPreview reports the signed selection delta (+1 append, -1 pop) to
	// the score preview. Nil-safe.
	OnPreview func(delta int)
}

// New creates an empty selector bound to the given board.
func New(b *board.Board) *Chain {
	ch := &Chain{board: b}
	ch.fsm = fsm.NewFSM(
		StateEmpty,
		getChainTransitions(),
		getChainCallbacks(ch),
	)
	return ch
}

func getChainTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "select", Src: []string{StateEmpty}, Dst: StateBuilding},
		{Name: "close", Src: []string{StateBuilding}, Dst: StateLooped},
		{Name: "release", Src: []string{StateEmpty, StateBuilding, StateLooped}, Dst: StateEmpty},
	}
}

func getChainCallbacks(ch *Chain) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_" + StateBuilding: func(ctx context.Context, e *fsm.Event) {
			// First token of the gesture, accepted unconditionally.
			ch.append(e.Args[0].(*board.Token))
		},
		"enter_" + StateLooped: func(ctx context.Context, e *fsm.Event) {
			// The loop-closing token is appended a second time. That keeps
			// the capture count consistent with the number of touch events
			// the player produced; see the double-count note in DESIGN.md.
			ch.append(e.Args[0].(*board.Token))
		},
		"enter_" + StateEmpty: func(ctx context.Context, e *fsm.Event) {
			ch.tokens = nil
			ch.notify()
		},
	}
}

// Touch feeds one candidate token into the state machine. Candidates that
// fail the adjacency or color rule are ignored silently; that is the normal
// outcome of exploratory pointer movement, not an error.
func (ch *Chain) Touch(t *board.Token) {
	if t == nil || !t.Alive {
		return
	}
	ctx := context.Background()

	if ch.fsm.Is(StateEmpty) {
		_ = ch.fsm.Event(ctx, "select", t)
		return
	}

	// Membership is checked before adjacency: loop detection must win over
	// the already-selected rejection.
	if i := ch.indexOf(t); i >= 0 {
		if ch.fsm.Is(StateLooped) {
			return
		}
		if i == len(ch.tokens)-2 {
			// Backtrack: undo the last selection.
			ch.pop()
			return
		}
		_ = ch.fsm.Event(ctx, "close", t)
		return
	}

	tail := ch.tokens[len(ch.tokens)-1]
	if t.Color != tail.Color {
		return
	}
	if !hexgrid.Adjacent(tail.Col, tail.Row, t.Col, t.Row) {
		return
	}
	ch.append(t)
}

func (ch *Chain) append(t *board.Token) {
	ch.tokens = append(ch.tokens, t)
	if ch.OnPreview != nil {
		ch.OnPreview(1)
	}
	ch.notify()
}

func (ch *Chain) pop() {
	ch.tokens = ch.tokens[:len(ch.tokens)-1]
	if ch.OnPreview != nil {
		ch.OnPreview(-1)
	}
	ch.notify()
}

func (ch *Chain) notify() {
	if ch.OnChanged != nil {
		ch.OnChanged(ch.Tokens(), ch.Looped())
	}
}

func (ch *Chain) indexOf(t *board.Token) int {
	for i, got := range ch.tokens {
		if got == t {
			return i
		}
	}
	return -1
}

// Tokens returns a copy of the current selection in selection order.
func (ch *Chain) Tokens() []*board.Token {
	out := make([]*board.Token, len(ch.tokens))
	copy(out, ch.tokens)
	return out
}

// Len reports the number of captured tokens, counting the loop-closing
// token twice when the chain is looped.
func (ch *Chain) Len() int { return len(ch.tokens) }

// Looped reports whether a loop closure has been detected this gesture.
func (ch *Chain) Looped() bool { return ch.fsm.Is(StateLooped) }

// Color returns the chain's color; ok is false while the chain is empty.
func (ch *Chain) Color() (board.Color, bool) {
	if len(ch.tokens) == 0 {
		return 0, false
	}
	return ch.tokens[0].Color, true
}

// ClearSet derives the effective set of flat cell indexes about to be
// cleared: the literal chain cells, or every live same-color cell on the
// board when the chain is looped.
func (ch *Chain) ClearSet() *intmap.Set[uint32] {
	width := ch.board.Width()
	if ch.Looped() {
		color := ch.tokens[0].Color
		matches := ch.board.TokensOfColor(color)
		set := intmap.NewSet[uint32](len(matches))
		for _, t := range matches {
			set.Add(hexgrid.Cell{Col: t.Col, Row: t.Row}.Index(width))
		}
		return set
	}
	set := intmap.NewSet[uint32](len(ch.tokens))
	for _, t := range ch.tokens {
		set.Add(hexgrid.Cell{Col: t.Col, Row: t.Row}.Index(width))
	}
	return set
}

// Release ends the gesture, returning the captured tokens and the looped
// flag, and resets the selector. Chains of length <= 1 are the caller's to
// discard.
func (ch *Chain) Release() ([]*board.Token, bool) {
	tokens := ch.Tokens()
	looped := ch.Looped()
	_ = ch.fsm.Event(context.Background(), "release")
	return tokens, looped
}

// Reset discards the gesture outright, for round termination.
func (ch *Chain) Reset() {
	_ = ch.fsm.Event(context.Background(), "release")
}
