package gems

// BoardSize is the edge length of the square gem board.
const BoardSize = 5

// Coord addresses a board cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the coordinate lies on the board.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// Board is the 5x5 gem grid. Each cell holds exactly one Gem value; a zero Gem is empty.
type Board [BoardSize][BoardSize]Gem

// At returns the gem at a coordinate. Out-of-bounds coordinates read as empty.
func (b *Board) At(c Coord) Gem {
	if !c.InBounds() {
		return Gem{}
	}
	return b[c.Row][c.Col]
}

// Set places a gem at a coordinate.
func (b *Board) Set(c Coord, g Gem) {
	if c.InBounds() {
		b[c.Row][c.Col] = g
	}
}

// Clear empties a cell and returns what it held.
func (b *Board) Clear(c Coord) Gem {
	g := b.At(c)
	b.Set(c, Gem{})
	return g
}

// Count returns the number of occupied cells.
func (b *Board) Count() int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if !b[r][c].IsZero() {
				n++
			}
		}
	}
	return n
}

// CountColor returns the number of gems of a color on the board.
func (b *Board) CountColor(color Color) int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if !b[r][c].IsZero() && b[r][c].Color == color {
				n++
			}
		}
	}
	return n
}

// HasNonGold reports whether any non-gold gem remains on the board.
func (b *Board) HasNonGold() bool {
	for r := range b {
		for c := range b[r] {
			if !b[r][c].IsZero() && b[r][c].Color != Gold {
				return true
			}
		}
	}
	return false
}

// spiral is computed once; the board geometry never changes.
var spiral = buildSpiral()

// SpiralOrder returns the fixed refill order: the centre first, then winding outward
// up, right, down, left with run lengths 1,1,2,2,3,3,4,4,4.
func SpiralOrder() []Coord {
	out := make([]Coord, len(spiral))
	copy(out, spiral)
	return out
}

func buildSpiral() []Coord {
	dirs := []Coord{{Row: -1}, {Col: 1}, {Row: 1}, {Col: -1}}
	runs := []int{1, 1, 2, 2, 3, 3, 4, 4, 4}

	pos := Coord{Row: BoardSize / 2, Col: BoardSize / 2}
	order := []Coord{pos}
	for i, run := range runs {
		d := dirs[i%len(dirs)]
		for step := 0; step < run; step++ {
			pos = Coord{Row: pos.Row + d.Row, Col: pos.Col + d.Col}
			order = append(order, pos)
		}
	}
	return order
}
