// Package grid holds the static walkability index the planner searches over.
//
// Cells are numbered row-major from 1, so on a grid cols wide the cell at
// column c, row r has index r*cols + c + 1. Index 0 is never a valid cell.
package grid

import (
	"errors"
	"fmt"
)

// Index identifies a cell. Valid indices run from 1 to TotalCells.
type Index int

// None is the invalid index.
const None Index = 0

var (
	ErrEmptyGrid         = errors.New("grid: no cells")
	ErrBadTileSize       = errors.New("grid: tile size must be positive")
	ErrBlockedOutOfRange = errors.New("grid: blocked cell out of range")
)

// Cell is one grid square. X and Y are the pixel coordinates of its top-left corner.
type Cell struct {
	Index    Index
	X, Y     int
	Walkable bool
}

// Neighbor is a cell adjacent to another, together with the step that reaches it.
type Neighbor struct {
	Index Index
	Dir   Direction
}

// Grid is an immutable row-major cell table. It is safe for concurrent reads.
type Grid struct {
	cols  int
	rows  int
	tileW int
	tileH int
	cells []Cell // cells[i-1] holds Index i
}

// New builds a grid cols×rows cells of tileW×tileH pixels. Every index listed in
// blocked is marked unwalkable; all other cells are walkable.
func New(cols, rows, tileW, tileH int, blocked []int) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w (%dx%d)", ErrEmptyGrid, cols, rows)
	}
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("%w (%dx%d)", ErrBadTileSize, tileW, tileH)
	}

	total := cols * rows
	solid := make(map[int]bool, len(blocked))
	for _, b := range blocked {
		if b < 1 || b > total {
			return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrBlockedOutOfRange, b, total)
		}
		solid[b] = true
	}

	g := &Grid{
		cols:  cols,
		rows:  rows,
		tileW: tileW,
		tileH: tileH,
		cells: make([]Cell, 0, total),
	}
	n := 1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.cells = append(g.cells, Cell{
				Index:    Index(n),
				X:        c * tileW,
				Y:        r * tileH,
				Walkable: !solid[n],
			})
			n++
		}
	}
	return g, nil
}

func (g *Grid) Cols() int       { return g.cols }
func (g *Grid) Rows() int       { return g.rows }
func (g *Grid) TileWidth() int  { return g.tileW }
func (g *Grid) TileHeight() int { return g.tileH }
func (g *Grid) TotalCells() int { return len(g.cells) }

// Contains reports whether i names a cell of g.
func (g *Grid) Contains(i Index) bool {
	return i >= 1 && int(i) <= len(g.cells)
}

// CellAt returns the cell for i, or false when i is outside [1, TotalCells].
func (g *Grid) CellAt(i Index) (Cell, bool) {
	if !g.Contains(i) {
		return Cell{}, false
	}
	return g.cells[i-1], true
}

// IsWalkable reports whether i is a walkable cell. Out-of-range indices are not.
func (g *Grid) IsWalkable(i Index) bool {
	if !g.Contains(i) {
		return false
	}
	return g.cells[i-1].Walkable
}

// ColRow returns the zero-based column and row of i.
func (g *Grid) ColRow(i Index) (int, int) {
	n := int(i) - 1
	return n % g.cols, n / g.cols
}

// IndexAt returns the index at column c, row r, or None when off the grid.
func (g *Grid) IndexAt(c, r int) Index {
	if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
		return None
	}
	return Index(r*g.cols + c + 1)
}

// Position returns the pixel top-left corner of i.
func (g *Grid) Position(i Index) (int, int) {
	c, r := g.ColRow(i)
	return c * g.tileW, r * g.tileH
}

// Locate converts a pixel position to the cell containing it, or None when the
// point lies outside the grid.
func (g *Grid) Locate(px, py float64) Index {
	if px < 0 || py < 0 {
		return None
	}
	return g.IndexAt(int(px)/g.tileW, int(py)/g.tileH)
}

// Neighbors returns the cells around i in N, NE, E, SE, S, SW, W, NW order.
// Offsets landing outside [1, TotalCells] are dropped, as are east/west offsets
// that would wrap onto the neighbouring row. Walkability is not filtered here.
func (g *Grid) Neighbors(i Index) []Neighbor {
	if !g.Contains(i) {
		return nil
	}
	col, _ := g.ColRow(i)
	out := make([]Neighbor, 0, len(Directions))
	for _, d := range Directions {
		n := i + Index(d.Delta(g.cols))
		if !g.Contains(n) {
			continue
		}
		dc := d.Vector()[0]
		if col+dc < 0 || col+dc >= g.cols {
			continue
		}
		out = append(out, Neighbor{Index: n, Dir: d})
	}
	return out
}

// ManhattanCells is the |dcol| + |drow| distance between two cells.
func (g *Grid) ManhattanCells(a, b Index) int {
	ac, ar := g.ColRow(a)
	bc, br := g.ColRow(b)
	return abs(ac-bc) + abs(ar-br)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
