package board

import (
	"github.com/kamstrup/intmap"

	"go-dots/internal/hexgrid"
)

// Fall describes a surviving token after compaction. Distance is the
// number of rows fallen, zero for tokens that did not move.
type Fall struct {
	Token    *Token
	Distance int
}

// Spawn describes a freshly created token dropped in from above the board.
// FromRow is its virtual starting row (negative, above row 0) so the host
// can animate the same fall distance the token logically traveled.
type Spawn struct {
	Token    *Token
	FromRow  int
	Distance int
}

// ColumnReport lists, for one affected column, the surviving tokens (top
// to bottom, with their fall distances) and the tokens spawned to refill
// the vacated top slots.
type ColumnReport struct {
	Col    int
	Falls  []Fall
	Spawns []Spawn
}

// Compact removes every token whose flat cell index is in the clear set,
// lets the survivors in each affected column fall into the gaps, and fills
// the remaining top slots with new randomized tokens. Survivors keep their
// relative top-to-bottom order. Afterwards every column again holds exactly
// Height live tokens.
//
// A nil or empty clear set is a no-op returning no reports.
func (b *Board) Compact(clear *intmap.Set[uint32]) []ColumnReport {
	if clear == nil || clear.Len() == 0 {
		return nil
	}

	var reports []ColumnReport
	for c := 0; c < b.width; c++ {
		cleared := 0
		for r := 0; r < b.height; r++ {
			idx := hexgrid.Cell{Col: c, Row: r}.Index(b.width)
			if clear.Has(idx) {
				b.cols[c][r].Alive = false
				b.cols[c][r] = nil
				cleared++
			}
		}
		if cleared == 0 {
			continue
		}
		reports = append(reports, b.compactColumn(c, cleared))
	}
	return reports
}

// compactColumn rebuilds one column after `cleared` slots were emptied.
// Scanning bottom to top, each survivor falls by the number of empty slots
// below it; the vacated top slots are refilled with spawns whose virtual
// start rows stack upward from just above the board.
func (b *Board) compactColumn(c, cleared int) ColumnReport {
	report := ColumnReport{Col: c}
	col := b.cols[c]

	gap := 0
	for r := b.height - 1; r >= 0; r-- {
		t := col[r]
		if t == nil {
			gap++
			continue
		}
		if gap > 0 {
			col[r+gap] = t
			col[r] = nil
			t.Row = r + gap
		}
		report.Falls = append(report.Falls, Fall{Token: t, Distance: gap})
	}
	// The scan ran bottom-up; report survivors top to bottom.
	for i, j := 0, len(report.Falls)-1; i < j; i, j = i+1, j-1 {
		report.Falls[i], report.Falls[j] = report.Falls[j], report.Falls[i]
	}

	// gap == cleared survivors-free slots remain at the top of the column.
	for r := cleared - 1; r >= 0; r-- {
		t := b.newToken(c, r)
		col[r] = t
		// Spawns queue up above the board in landing order, so every
		// spawn token falls the same distance.
		fromRow := r - cleared
		report.Spawns = append(report.Spawns, Spawn{
			Token:    t,
			FromRow:  fromRow,
			Distance: r - fromRow,
		})
	}

	return report
}
