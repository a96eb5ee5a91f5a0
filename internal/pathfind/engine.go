// Package pathfind computes per-tick next-step moves with a from-scratch A* search.
//
// Every call runs one complete search over the grid: nothing is cached between
// calls and no score is stored on the grid itself, so an Engine may be shared by
// callers that serialise their calls.
//
// Movement is blocky by default: only the four axis-aligned neighbours are
// considered. Diagonal steps (cost 14 against 10 for straight steps) are enabled
// with WithDiagonal.
//
// A closed cell is never re-opened, and F ties go to the cell that entered the
// open set last.
package pathfind

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/grid"
)

// Step costs in tenths of a cell. 14 approximates 10·√2.
const (
	CostStraight = 10
	CostDiagonal = 14
)

var ErrCellOutOfRange = errors.New("pathfind: cell out of range")

// Result is the outcome of one search.
type Result struct {
	Path     []grid.Index // start..goal inclusive; nil when not found
	Expanded int          // cells moved to the closed set
	Found    bool
}

// Mover is an agent the engine can plan for.
type Mover interface {
	Cell() grid.Index
	HasPendingMove() bool
	SetPendingMove(next grid.Cell)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagonal admits diagonal steps into the candidate set. A diagonal is only
// taken when both axis-aligned cells it passes between are walkable.
func WithDiagonal(on bool) Option {
	return func(e *Engine) { e.diagonal = on }
}

// WithLogger sets the logger used for per-search debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine plans moves over one grid.
type Engine struct {
	grid     *grid.Grid
	diagonal bool
	logger   *log.Logger
	expanded int // running total over every search
}

// New returns an engine over g.
func New(g *grid.Grid, opts ...Option) *Engine {
	e := &Engine{grid: g, logger: log.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grid returns the grid the engine searches.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Diagonal reports whether diagonal steps are enabled.
func (e *Engine) Diagonal() bool { return e.diagonal }

// Expanded returns how many cells all searches so far have closed.
func (e *Engine) Expanded() int { return e.expanded }

// PlanStep decides the next cell for agent, moving it toward target. Agents
// already mid-move are skipped. When a step is chosen it is reported to the
// agent through SetPendingMove.
func (e *Engine) PlanStep(agent Mover, target grid.Index) (grid.Index, bool) {
	if agent.HasPendingMove() {
		return grid.None, false
	}
	next, ok := e.Next(agent.Cell(), target)
	if !ok {
		return grid.None, false
	}
	cell, _ := e.grid.CellAt(next)
	agent.SetPendingMove(cell)
	return next, true
}

// Next returns the cell to step into from start on the way to goal. It reports
// false when no path exists, when start and goal coincide, or when goal is
// already adjacent to start.
func (e *Engine) Next(start, goal grid.Index) (grid.Index, bool) {
	res, err := e.search(start, goal)
	if err != nil {
		e.logger.Debug("search rejected", "start", start, "goal", goal, "err", err)
		return grid.None, false
	}
	e.expanded += res.expanded
	if !res.found {
		e.logger.Debug("no path", "start", start, "goal", goal, "expanded", res.expanded)
		return grid.None, false
	}

	// Walk back from the goal, stopping before the start cell.
	var last grid.Index
	collected := 0
	for c := goal; ; {
		last = c
		collected++
		p := res.nodes[c].parent
		if p == grid.None || p == start {
			break
		}
		c = p
	}
	if collected <= 1 {
		return grid.None, false
	}
	return last, true
}

// Search runs A* from start to goal and returns the full path.
func (e *Engine) Search(start, goal grid.Index) (Result, error) {
	res, err := e.search(start, goal)
	if err != nil {
		return Result{}, err
	}
	e.expanded += res.expanded
	out := Result{Expanded: res.expanded, Found: res.found}
	if !res.found {
		return out, nil
	}
	for c := goal; c != grid.None; c = res.nodes[c].parent {
		out.Path = append(out.Path, c)
	}
	for i, j := 0, len(out.Path)-1; i < j; i, j = i+1, j-1 {
		out.Path[i], out.Path[j] = out.Path[j], out.Path[i]
	}
	return out, nil
}

type searchState struct {
	nodes    map[grid.Index]*node
	found    bool
	expanded int
}

func (e *Engine) search(start, goal grid.Index) (searchState, error) {
	if !e.grid.Contains(start) {
		return searchState{}, fmt.Errorf("%w: start %d", ErrCellOutOfRange, start)
	}
	if !e.grid.Contains(goal) {
		return searchState{}, fmt.Errorf("%w: goal %d", ErrCellOutOfRange, goal)
	}

	goalX, goalY := e.grid.Position(goal)
	tileW := e.grid.TileWidth()
	heuristic := func(c grid.Index) int {
		x, y := e.grid.Position(c)
		return CostStraight * (abs(x-goalX) + abs(y-goalY)) / tileW
	}

	st := searchState{nodes: make(map[grid.Index]*node)}
	open := &openSet{}
	seq := 0
	push := func(n *node) {
		seq++
		n.seq = seq
		n.open = true
		heap.Push(open, n)
	}

	startNode := &node{cell: start, h: heuristic(start)}
	st.nodes[start] = startNode
	push(startNode)

	for open.Len() > 0 {
		if g, ok := st.nodes[goal]; ok && g.closed {
			break
		}
		cur := heap.Pop(open).(*node)
		cur.open = false
		cur.closed = true
		st.expanded++

		for _, nb := range e.candidates(cur.cell, st.nodes) {
			cost := CostStraight
			if nb.Dir.Diagonal() {
				cost = CostDiagonal
			}
			g := cur.g + cost

			n, seen := st.nodes[nb.Index]
			if !seen {
				n = &node{cell: nb.Index, h: heuristic(nb.Index), g: g, parent: cur.cell}
				st.nodes[nb.Index] = n
				push(n)
				continue
			}
			if n.open && g < n.g {
				n.g = g
				n.parent = cur.cell
				heap.Fix(open, n.index)
			}
		}
	}

	if g, ok := st.nodes[goal]; ok && g.closed {
		st.found = true
	}
	return st, nil
}

// candidates lists the neighbours of c worth expanding: walkable, not closed,
// and passing the diagonal filter.
func (e *Engine) candidates(c grid.Index, nodes map[grid.Index]*node) []grid.Neighbor {
	all := e.grid.Neighbors(c)
	out := all[:0]
	for _, nb := range all {
		if !e.grid.IsWalkable(nb.Index) {
			continue
		}
		if n, ok := nodes[nb.Index]; ok && n.closed {
			continue
		}
		if nb.Dir.Diagonal() && !e.diagonalAllowed(c, nb.Dir) {
			continue
		}
		out = append(out, nb)
	}
	return out
}

func (e *Engine) diagonalAllowed(c grid.Index, d grid.Direction) bool {
	if !e.diagonal {
		return false
	}
	// No corner cutting: both orthogonal cells beside the diagonal must be open.
	col, row := e.grid.ColRow(c)
	v := d.Vector()
	return e.grid.IsWalkable(e.grid.IndexAt(col+v[0], row)) &&
		e.grid.IsWalkable(e.grid.IndexAt(col, row+v[1]))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
