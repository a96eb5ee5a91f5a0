package pathfind

import "github.com/firzad/zombieapocalypse/internal/grid"

// node is the per-search score record for one cell. It lives only as long as
// the Search call that created it.
type node struct {
	cell   grid.Index
	g, h   int
	parent grid.Index // grid.None for the start cell
	seq    int        // insertion order into the open set
	open   bool
	closed bool
	index  int // heap index while open
}

func (n *node) f() int { return n.g + n.h }

// openSet orders nodes by lowest F. Equal F goes to the most recently inserted
// node.
type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	fi, fj := o[i].f(), o[j].f()
	if fi != fj {
		return fi < fj
	}
	return o[i].seq > o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i]; o[i].index = i; o[j].index = j }
func (o *openSet) Push(x any)   { n := x.(*node); n.index = len(*o); *o = append(*o, n) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*o = old[:len(old)-1]
	return n
}
