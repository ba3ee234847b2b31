// Package hexgrid provides the geometry of a staggered ("brick offset")
// grid, where every other row is shifted half a cell to the right. On such
// a grid each cell has six neighbors instead of four, and the diagonal
// neighbor columns depend on the parity of the cell's row.
package hexgrid

// Offset is a relative (column, row) displacement to a neighboring cell.
type Offset struct {
	DX int
	DY int
}

// Cell is an absolute (column, row) position on the grid.
type Cell struct {
	Col int
	Row int
}

// Index flattens the cell to a single array index for a grid of the given
// width. Callers must bounds-check first; negative rows (spawn positions
// above the board) have no flat index.
func (c Cell) Index(width int) uint32 {
	return uint32(c.Row*width + c.Col)
}

// Even rows sit half a cell to the left of odd rows, so their diagonal
// neighbors share the column or sit one column to the left. Odd rows
// mirror that to the right.
var (
	evenRowOffsets = []Offset{
		{-1, 0}, {1, 0},
		{-1, -1}, {0, -1},
		{-1, 1}, {0, 1},
	}
	oddRowOffsets = []Offset{
		{-1, 0}, {1, 0},
		{0, -1}, {1, -1},
		{0, 1}, {1, 1},
	}
)

// AdjacentOffsets returns the six neighbor offsets for a cell in the given
// row. The result depends only on the row's parity. The returned slice is
// shared and must not be mutated.
func AdjacentOffsets(row int) []Offset {
	// Go's % keeps the sign of the dividend, so test against zero rather
	// than comparing to 1. Rows above the board (negative) alternate the
	// same way.
	if row%2 == 0 {
		return evenRowOffsets
	}
	return oddRowOffsets
}

// Neighbors applies AdjacentOffsets to an absolute position. No bounds
// checking is performed; callers filter out-of-range cells themselves.
func Neighbors(col, row int) []Cell {
	offsets := AdjacentOffsets(row)
	cells := make([]Cell, len(offsets))
	for i, o := range offsets {
		cells[i] = Cell{Col: col + o.DX, Row: row + o.DY}
	}
	return cells
}

// Adjacent reports whether (toCol, toRow) is one of the six neighbors of
// (fromCol, fromRow). The offset set is keyed by the row parity of the
// "from" cell.
func Adjacent(fromCol, fromRow, toCol, toRow int) bool {
	for _, o := range AdjacentOffsets(fromRow) {
		if fromCol+o.DX == toCol && fromRow+o.DY == toRow {
			return true
		}
	}
	return false
}
