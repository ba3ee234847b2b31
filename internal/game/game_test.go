package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dots/internal/board"
	"go-dots/internal/round"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := New(Options{
		Width:        6,
		Height:       6,
		Colors:       4,
		RoundSeconds: 60,
		Seed:         42,
	}, nil)
	require.NoError(t, err)
	return g
}

// paintColumn forces a column to one color so gestures along it are valid.
func paintColumn(b *board.Board, col int, color board.Color) {
	for r := 0; r < b.Height(); r++ {
		b.At(col, r).Color = color
	}
}

func TestStartRound_ReplacesBoardAndResetsScore(t *testing.T) {
	g := newTestGame(t)
	oldBoard := g.Board

	require.NoError(t, g.StartRound())
	assert.NotSame(t, oldBoard, g.Board)
	assert.Equal(t, 0, g.Tracker.Total())
	assert.True(t, g.Rounds.Running())
	assert.Equal(t, 60, g.Rounds.Remaining())
}

func TestStartRound_WhileRunning(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	assert.ErrorIs(t, g.StartRound(), round.ErrRoundRunning)
}

func TestGesture_IgnoredWhenNotPressedOrIdle(t *testing.T) {
	g := newTestGame(t)

	// Idle: nothing accepted.
	g.Press()
	g.TouchCell(0, 0)
	assert.Equal(t, 0, g.Chain.Len())

	require.NoError(t, g.StartRound())

	// Running but no press yet.
	g.TouchCell(0, 0)
	assert.Equal(t, 0, g.Chain.Len())

	g.Press()
	g.TouchCell(0, 0)
	assert.Equal(t, 1, g.Chain.Len())
}

func TestTouchCell_DedupesSameCell(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 0) // cursor still on the same cell: no new event
	g.TouchCell(2, 0)
	assert.Equal(t, 1, g.Chain.Len())

	g.TouchCell(2, 1)
	g.TouchCell(2, 1)
	assert.Equal(t, 2, g.Chain.Len())
}

func TestReleaseGesture_ShortChainDiscarded(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())

	g.Press()
	g.TouchCell(3, 3)
	cleared := g.ReleaseGesture()

	assert.Equal(t, 0, cleared)
	assert.Equal(t, 0, g.Tracker.Total())
	assert.Equal(t, 0, g.Chain.Len())
	// Board untouched.
	assert.NotNil(t, g.Board.At(3, 3))
}

func TestReleaseGesture_CommitsAndCompactsAfterLatch(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)

	var clearedTokens []*board.Token
	var clearedCols []int
	var reports []board.ColumnReport
	g.OnClearCommitted = func(cleared []*board.Token, columns []int) {
		clearedTokens = cleared
		clearedCols = columns
	}
	g.OnCompactionReport = func(r []board.ColumnReport) { reports = r }

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 1)
	g.TouchCell(2, 2)
	n := g.ReleaseGesture()

	require.Equal(t, 3, n)
	assert.Equal(t, 3, g.Tracker.Total())
	assert.Len(t, clearedTokens, 3)
	assert.Equal(t, []int{2}, clearedCols)

	// Compaction waits for all three removal animations.
	assert.Nil(t, reports)
	assert.Equal(t, 3, g.PendingClears())
	g.ClearDone()
	g.ClearDone()
	assert.Nil(t, reports)
	g.ClearDone()

	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Col)
	assert.Len(t, reports[0].Spawns, 3)
	assert.Equal(t, 0, g.PendingClears())

	// Column is whole again.
	for r := 0; r < g.Board.Height(); r++ {
		require.NotNil(t, g.Board.At(2, r))
		assert.True(t, g.Board.At(2, r).Alive)
	}
}

func TestPress_CompactsOutstandingClearFirst(t *testing.T) {
	// A second gesture started while the previous clear is still waiting
	// on removal animations must not drop that clear's compaction: the
	// board is made whole before the new gesture begins.
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)
	paintColumn(g.Board, 4, 2)

	firstGesture := []*board.Token{g.Board.At(2, 0), g.Board.At(2, 1), g.Board.At(2, 2)}

	var reports [][]board.ColumnReport
	g.OnCompactionReport = func(r []board.ColumnReport) {
		reports = append(reports, r)
	}

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 1)
	g.TouchCell(2, 2)
	require.Equal(t, 3, g.ReleaseGesture())
	require.Equal(t, 3, g.PendingClears())

	// Next press lands before any ClearDone arrives: the pending clear is
	// compacted immediately.
	g.Press()
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0][0].Col)
	assert.Equal(t, 0, g.PendingClears())
	for _, tok := range firstGesture {
		assert.False(t, tok.Alive)
	}
	for r := 0; r < g.Board.Height(); r++ {
		require.NotNil(t, g.Board.At(2, r))
		assert.True(t, g.Board.At(2, r).Alive)
	}

	// The second gesture proceeds normally on the whole board.
	g.TouchCell(4, 0)
	g.TouchCell(4, 1)
	g.TouchCell(4, 2)
	require.Equal(t, 3, g.ReleaseGesture())
	g.ClearDone()
	g.ClearDone()
	g.ClearDone()

	require.Len(t, reports, 2)
	assert.Equal(t, 4, reports[1][0].Col)
	assert.Equal(t, 6, g.Tracker.Total())
	for c := 0; c < g.Board.Width(); c++ {
		for r := 0; r < g.Board.Height(); r++ {
			require.NotNil(t, g.Board.At(c, r))
			assert.True(t, g.Board.At(c, r).Alive)
		}
	}
}

func TestReleaseGesture_LoopClearsWholeColor(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)

	total := len(g.Board.TokensOfColor(1))
	require.GreaterOrEqual(t, total, 6)

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 1)
	g.TouchCell(2, 2)
	g.TouchCell(2, 0) // loop closure
	n := g.ReleaseGesture()

	assert.Equal(t, total, n)
	for i := 0; i < n; i++ {
		g.ClearDone()
	}
	// Every color-1 token on the board was replaced or fell; board whole.
	for c := 0; c < g.Board.Width(); c++ {
		for r := 0; r < g.Board.Height(); r++ {
			require.NotNil(t, g.Board.At(c, r))
		}
	}
}

func TestScoreObserver_PreviewAndCommit(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)

	type scoreEvent struct{ total, preview int }
	var events []scoreEvent
	g.OnScoreChanged = func(total, preview int) {
		events = append(events, scoreEvent{total, preview})
	}

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 1)
	g.ReleaseGesture()

	require.NotEmpty(t, events)
	assert.Equal(t, scoreEvent{0, 1}, events[0])
	assert.Equal(t, scoreEvent{0, 2}, events[1])
	assert.Equal(t, scoreEvent{2, 0}, events[len(events)-1])
}

func TestRoundEnd_AbandonsGestureAndPendingClear(t *testing.T) {
	g, err := New(Options{Width: 6, Height: 6, Colors: 4, RoundSeconds: 1, Seed: 42}, nil)
	require.NoError(t, err)
	require.NoError(t, g.StartRound())
	paintColumn(g.Board, 2, 1)

	var endSummary *round.Summary
	g.OnRoundStateChanged = func(state string, s *round.Summary) {
		if state == round.StateEnded {
			endSummary = s
		}
	}

	g.Press()
	g.TouchCell(2, 0)
	g.TouchCell(2, 1)
	g.TouchCell(2, 2)
	g.ReleaseGesture()
	require.Equal(t, 3, g.PendingClears())

	// Start another gesture, then let the clock run out mid-drag.
	g.Press()
	g.TouchCell(4, 4)
	g.Tick()

	require.NotNil(t, endSummary)
	assert.Equal(t, 3, endSummary.Score)
	assert.Equal(t, 3, endSummary.HighScore)
	assert.True(t, endSummary.NewHighScore)

	assert.Equal(t, 0, g.Chain.Len())
	assert.Equal(t, 0, g.PendingClears())
	assert.Equal(t, 0, g.Tracker.Preview())

	// Dangling completion signals after the round ended are ignored.
	g.ClearDone()
	assert.Equal(t, 0, g.PendingClears())
}

func TestOptions_Defaults(t *testing.T) {
	g, err := New(Options{}, nil)
	require.NoError(t, err)
	opts := g.Options()
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, DefaultColors, opts.Colors)
	assert.Equal(t, round.DefaultSeconds, opts.RoundSeconds)
	assert.NotZero(t, opts.Seed)
}
