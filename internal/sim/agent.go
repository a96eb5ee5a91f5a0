package sim

import (
	"fmt"

	"github.com/firzad/zombieapocalypse/internal/grid"
)

// Point is a pixel position. Entities are tracked by the top-left corner of
// the tile-sized box they occupy.
type Point struct {
	X, Y float64
}

// Agent is a zombie chasing the target one tile at a time.
type Agent struct {
	ID    int
	Label string
	Pos   Point
	Speed float64 // pixels per second

	grid    *grid.Grid
	pending *Point
	next    grid.Index
}

func newAgent(id int, g *grid.Grid, at grid.Index, speed float64) *Agent {
	x, y := g.Position(at)
	return &Agent{
		ID:    id,
		Label: fmt.Sprintf("Z%d", id),
		Pos:   Point{X: float64(x), Y: float64(y)},
		Speed: speed,
		grid:  g,
	}
}

// Cell is the tile the agent's top-left corner is on.
func (a *Agent) Cell() grid.Index { return a.grid.Locate(a.Pos.X, a.Pos.Y) }

func (a *Agent) HasPendingMove() bool { return a.pending != nil }

// SetPendingMove starts a move into next. It is ignored while another move is
// still in flight.
func (a *Agent) SetPendingMove(next grid.Cell) {
	if a.pending != nil {
		return
	}
	a.pending = &Point{X: float64(next.X), Y: float64(next.Y)}
	a.next = next.Index
}

// PendingMove returns the pixel target of the move in flight.
func (a *Agent) PendingMove() (Point, bool) {
	if a.pending == nil {
		return Point{}, false
	}
	return *a.pending, true
}

// NextCell is the cell being moved into, or grid.None when idle.
func (a *Agent) NextCell() grid.Index {
	if a.pending == nil {
		return grid.None
	}
	return a.next
}

// Aligned reports whether the agent sits exactly on a tile.
func (a *Agent) Aligned() bool { return aligned(a.grid, a.Pos) }

// advance moves up to speed/tps pixels toward the pending target and reports
// whether the target was reached this tick.
func (a *Agent) advance(tps int) bool {
	if a.pending == nil {
		return false
	}
	if stepToward(&a.Pos, *a.pending, a.Speed/float64(tps)) {
		a.pending = nil
		a.next = grid.None
		return true
	}
	return false
}

// Target is the survivor every agent paths toward.
type Target struct {
	Pos    Point
	Speed  float64
	Health int
	Wander bool

	grid    *grid.Grid
	pending *Point
}

// Cell is the tile the target's top-left corner is on.
func (t *Target) Cell() grid.Index { return t.grid.Locate(t.Pos.X, t.Pos.Y) }

func (t *Target) Moving() bool { return t.pending != nil }

// Aligned reports whether the target sits exactly on a tile.
func (t *Target) Aligned() bool { return aligned(t.grid, t.Pos) }

// Step starts a one-tile move in an axis-aligned direction. It refuses while a
// move is in flight, for diagonals, and when the destination is blocked.
func (t *Target) Step(d grid.Direction) bool {
	if t.pending != nil || d.Diagonal() {
		return false
	}
	col, row := t.grid.ColRow(t.Cell())
	v := d.Vector()
	dest := t.grid.IndexAt(col+v[0], row+v[1])
	if !t.grid.IsWalkable(dest) {
		return false
	}
	x, y := t.grid.Position(dest)
	t.pending = &Point{X: float64(x), Y: float64(y)}
	return true
}

func (t *Target) advance(tps int) bool {
	if t.pending == nil {
		return false
	}
	if stepToward(&t.Pos, *t.pending, t.Speed/float64(tps)) {
		t.pending = nil
		return true
	}
	return false
}

// stepToward moves p by at most step on each axis toward dst. It reports
// whether p now equals dst.
func stepToward(p *Point, dst Point, step float64) bool {
	p.X = approach(p.X, dst.X, step)
	p.Y = approach(p.Y, dst.Y, step)
	return p.X == dst.X && p.Y == dst.Y
}

func approach(v, dst, step float64) float64 {
	switch {
	case dst-v > step:
		return v + step
	case v-dst > step:
		return v - step
	default:
		return dst
	}
}

func aligned(g *grid.Grid, p Point) bool {
	return p.X == float64(int(p.X)) && p.Y == float64(int(p.Y)) &&
		int(p.X)%g.TileWidth() == 0 && int(p.Y)%g.TileHeight() == 0
}
