package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dots/internal/scoring"
)

func newController(seconds int) (*Controller, *scoring.Tracker) {
	tr := scoring.NewTracker(10)
	return NewController(tr, nil, seconds), tr
}

func TestStart(t *testing.T) {
	c, tr := newController(30)
	assert.Equal(t, StateIdle, c.State())

	tr.Commit(5) // leftover score from nowhere; Start must wipe it

	require.NoError(t, c.Start())
	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, 30, c.Remaining())
	assert.Equal(t, 0, tr.Total())
}

func TestStart_WhileRunningFails(t *testing.T) {
	c, _ := newController(30)
	require.NoError(t, c.Start())

	err := c.Start()
	assert.ErrorIs(t, err, ErrRoundRunning)
	assert.Equal(t, StateRunning, c.State())
}

func TestTick_CountsDownAndExpires(t *testing.T) {
	c, tr := newController(3)
	require.NoError(t, c.Start())
	tr.Commit(5)

	c.Tick()
	assert.Equal(t, 2, c.Remaining())
	assert.Equal(t, StateRunning, c.State())

	c.Tick()
	c.Tick()
	assert.Equal(t, StateEnded, c.State())
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, 5, c.HighScore())
}

func TestTick_IgnoredOutsideRunning(t *testing.T) {
	c, _ := newController(3)
	c.Tick()
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, c.Remaining())
}

func TestHighScore_OnlyImproves(t *testing.T) {
	c, tr := newController(1)

	var summaries []*Summary
	c.OnStateChanged = func(state string, s *Summary) {
		if s != nil {
			summaries = append(summaries, s)
		}
	}

	// Round 1: score 10.
	require.NoError(t, c.Start())
	tr.Commit(10)
	c.Tick()
	require.Equal(t, StateEnded, c.State())

	// Round 2: score 3. High score must stay at 20 (10 doubled).
	c.Acknowledge()
	require.NoError(t, c.Start())
	tr.Commit(3)
	c.Tick()

	require.Len(t, summaries, 2)
	assert.Equal(t, 20, summaries[0].Score)
	assert.True(t, summaries[0].NewHighScore)
	assert.Equal(t, 3, summaries[1].Score)
	assert.Equal(t, 20, summaries[1].HighScore)
	assert.False(t, summaries[1].NewHighScore)
	assert.Equal(t, 20, c.HighScore())
}

func TestAcknowledge(t *testing.T) {
	c, _ := newController(1)

	// Acknowledge from idle is a no-op.
	c.Acknowledge()
	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.Start())
	c.Tick()
	require.Equal(t, StateEnded, c.State())

	c.Acknowledge()
	assert.Equal(t, StateIdle, c.State())
	require.NoError(t, c.Start())
}

func TestStateChangeNotifications(t *testing.T) {
	c, _ := newController(1)

	var states []string
	c.OnStateChanged = func(state string, _ *Summary) {
		states = append(states, state)
	}

	require.NoError(t, c.Start())
	c.Tick()
	c.Acknowledge()

	assert.Equal(t, []string{StateRunning, StateEnded, StateIdle}, states)
}

func TestNewController_DefaultSeconds(t *testing.T) {
	c, _ := newController(0)
	assert.Equal(t, DefaultSeconds, c.Seconds())
}
