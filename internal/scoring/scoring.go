// Package scoring tracks points for committed chains, the live preview
// shown while a gesture is in progress, and persistent round history.
package scoring

// DefaultBonusThreshold is the chain length at which committed points
// double.
const DefaultBonusThreshold = 10

// Tracker manages the running total and the "points about to be added"
// preview for the current round.
type Tracker struct {
	// BonusThreshold is the chain length at which the doubling bonus
	// kicks in. Fixed at construction.
	BonusThreshold int

	total   int
	preview int
}

// NewTracker creates a tracker with the given bonus threshold; values < 1
// fall back to DefaultBonusThreshold.
func NewTracker(bonusThreshold int) *Tracker {
	if bonusThreshold < 1 {
		bonusThreshold = DefaultBonusThreshold
	}
	return &Tracker{BonusThreshold: bonusThreshold}
}

// AddPreview applies one signed selection toggle (+1 append, -1 pop) to the
// running preview.
func (t *Tracker) AddPreview(delta int) {
	t.preview += delta
}

// Preview returns the preview magnitude for display, clamped to zero. The
// selector's append/pop symmetry keeps it non-negative in practice.
func (t *Tracker) Preview() int {
	if t.preview < 0 {
		return 0
	}
	return t.preview
}

// ResetPreview clears the preview at gesture end.
func (t *Tracker) ResetPreview() {
	t.preview = 0
}

// Commit converts a finished chain into awarded points, adds them to the
// running total and returns the award: the chain length, doubled once the
// length reaches the bonus threshold.
func (t *Tracker) Commit(chainLength int) int {
	if chainLength <= 0 {
		return 0
	}
	awarded := chainLength
	if chainLength >= t.BonusThreshold {
		awarded = chainLength * 2
	}
	t.total += awarded
	t.preview = 0
	return awarded
}

// Total returns the round's running score.
func (t *Tracker) Total() int { return t.total }

// Reset zeroes everything for a new round.
func (t *Tracker) Reset() {
	t.total = 0
	t.preview = 0
}

// BonusProportion reports how close a chain is to the doubling bonus, in
// [0, 1]. The presentation layer uses it to grow the bonus border around
// the selection.
func (t *Tracker) BonusProportion(chainLength int) float64 {
	p := float64(chainLength) / float64(t.BonusThreshold)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
