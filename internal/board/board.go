// Package board owns the play field: a fixed-size grid of color-tagged
// tokens stored arena-style as per-column slot arrays, plus the compaction
// step that collapses cleared cells and refills each column from above.
package board

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Color indexes into the configured palette. The board only cares that two
// colors compare equal; the presentation layer maps them to actual hues.
type Color int

// Token is one placeable circle. Its Row is a logical position within its
// column and changes as the token falls during compaction; the ID is what
// stays stable across moves.
type Token struct {
	ID    string
	Color Color
	Col   int
	Row   int
	Alive bool
}

// Board holds exactly Width columns of Height slots each. Slots are always
// filled once compaction completes; nil slots exist only transiently inside
// Compact.
type Board struct {
	width  int
	height int
	colors int
	rng    *rand.Rand

	// cols[c][r], r counted top to bottom.
	cols [][]*Token
}

// New builds a fully populated board with independently randomized token
// colors drawn from a palette of the given size.
func New(width, height, colors int, rng *rand.Rand) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", width, height)
	}
	if colors < 1 {
		return nil, fmt.Errorf("palette must have at least one color, got %d", colors)
	}

	b := &Board{
		width:  width,
		height: height,
		colors: colors,
		rng:    rng,
	}
	b.cols = make([][]*Token, width)
	for c := range b.cols {
		b.cols[c] = make([]*Token, height)
		for r := range b.cols[c] {
			b.cols[c][r] = b.newToken(c, r)
		}
	}
	return b, nil
}

func (b *Board) newToken(col, row int) *Token {
	return &Token{
		ID:    uuid.NewString(),
		Color: Color(b.rng.Intn(b.colors)),
		Col:   col,
		Row:   row,
		Alive: true,
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }
func (b *Board) Colors() int { return b.colors }

// InBounds reports whether (col, row) addresses a slot on the board.
func (b *Board) InBounds(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}

// At returns the token at (col, row), or nil when out of bounds.
func (b *Board) At(col, row int) *Token {
	if !b.InBounds(col, row) {
		return nil
	}
	return b.cols[col][row]
}

// TokensOfColor returns every live token with the given color, scanning
// columns left to right and rows top to bottom.
func (b *Board) TokensOfColor(color Color) []*Token {
	var tokens []*Token
	for c := 0; c < b.width; c++ {
		for r := 0; r < b.height; r++ {
			if t := b.cols[c][r]; t != nil && t.Alive && t.Color == color {
				tokens = append(tokens, t)
			}
		}
	}
	return tokens
}
