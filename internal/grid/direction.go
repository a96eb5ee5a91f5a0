package grid

// Direction is one of the eight compass offsets around a cell.
type Direction int

// Expansion order matches the order neighbours are reported in.
const (
	DirN Direction = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
	dirCount
)

// Directions lists every direction in expansion order.
var Directions = [dirCount]Direction{DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW, DirNW}

// colRow offsets per direction, matching Directions.
var dirVectors = [dirCount][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Diagonal reports whether the step changes both column and row.
func (d Direction) Diagonal() bool {
	return d == DirNE || d == DirSE || d == DirSW || d == DirNW
}

// Delta returns the linear index offset of d on a grid cols wide.
func (d Direction) Delta(cols int) int {
	v := d.Vector()
	return v[1]*cols + v[0]
}

// Vector returns the (col, row) offset of d.
func (d Direction) Vector() [2]int {
	if d < 0 || d >= dirCount {
		return [2]int{}
	}
	return dirVectors[d]
}

func (d Direction) String() string {
	switch d {
	case DirN:
		return "N"
	case DirNE:
		return "NE"
	case DirE:
		return "E"
	case DirSE:
		return "SE"
	case DirS:
		return "S"
	case DirSW:
		return "SW"
	case DirW:
		return "W"
	case DirNW:
		return "NW"
	default:
		return "?"
	}
}
