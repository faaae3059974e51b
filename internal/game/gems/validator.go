package gems

import (
	"errors"
	"fmt"
	"sort"
)

// MaxSelection is the largest number of cells a single TakeGems may select.
const MaxSelection = 3

// Selection errors returned by ValidateSelection.
var (
	ErrEmptySelection    = errors.New("no cells selected")
	ErrSelectionTooLarge = fmt.Errorf("at most %d cells may be selected", MaxSelection)
	ErrOutOfBounds       = errors.New("selected cell is off the board")
	ErrDuplicateCell     = errors.New("a cell was selected twice")
	ErrNotInLine         = errors.New("selected cells must share a row, column or diagonal")
	ErrNotContiguous     = errors.New("selected cells must be adjacent with no gaps")
)

// ValidateSelection checks the geometric legality of a gem selection: one to three
// distinct on-board cells lying on a single row, column or diagonal with no gaps.
// Cell contents are not inspected.
func ValidateSelection(cells []Coord) error {
	if len(cells) == 0 {
		return ErrEmptySelection
	}
	if len(cells) > MaxSelection {
		return ErrSelectionTooLarge
	}

	seen := make(map[Coord]bool, len(cells))
	for _, c := range cells {
		if !c.InBounds() {
			return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, c.Row, c.Col)
		}
		if seen[c] {
			return fmt.Errorf("%w: (%d,%d)", ErrDuplicateCell, c.Row, c.Col)
		}
		seen[c] = true
	}
	if len(cells) == 1 {
		return nil
	}

	sorted := make([]Coord, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	dr := sorted[1].Row - sorted[0].Row
	dc := sorted[1].Col - sorted[0].Col
	if !isUnitStep(dr, dc) {
		if isLine(dr, dc) {
			return ErrNotContiguous
		}
		return ErrNotInLine
	}
	for i := 2; i < len(sorted); i++ {
		r := sorted[i].Row - sorted[i-1].Row
		c := sorted[i].Col - sorted[i-1].Col
		if r == dr && c == dc {
			continue
		}
		if isLine(r, c) && sameDirection(r, c, dr, dc) {
			return ErrNotContiguous
		}
		return ErrNotInLine
	}
	return nil
}

// isUnitStep reports whether (dr, dc) moves to a neighbouring cell along a line.
// Rows are sorted ascending, so dr is never negative.
func isUnitStep(dr, dc int) bool {
	switch {
	case dr == 0 && dc == 1:
		return true
	case dr == 1 && (dc == 0 || dc == 1 || dc == -1):
		return true
	}
	return false
}

func isLine(dr, dc int) bool {
	return dr == 0 || dc == 0 || dr == dc || dr == -dc
}

func sameDirection(r, c, dr, dc int) bool {
	return sign(r) == sign(dr) && sign(c) == sign(dc)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
