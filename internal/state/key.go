package state

import (
	"fmt"
	"regexp"
	"strconv"
)

// Cell key grammar: exactly "L1:{mx},{my}:{lx},{ly}" with decimal
// integers. Any non-matching key in the cells mapping is normalized in
// place from the cell's own coordinates.

var cellKeyRe = regexp.MustCompile(`^L1:(-?\d+),(-?\d+):(-?\d+),(-?\d+)$`)

// CellKey builds the canonical key for a cell's coordinates.
func CellKey(mx, my, lx, ly int) string {
	return fmt.Sprintf("L1:%d,%d:%d,%d", mx, my, lx, ly)
}

// ParseCellKey parses a canonical key. ok is false for malformed keys.
func ParseCellKey(key string) (mx, my, lx, ly int, ok bool) {
	m := cellKeyRe.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, 0, 0, false
	}
	mx, _ = strconv.Atoi(m[1])
	my, _ = strconv.Atoi(m[2])
	lx, _ = strconv.Atoi(m[3])
	ly, _ = strconv.Atoi(m[4])
	return mx, my, lx, ly, true
}

// NormalizeCellKeys rewrites any cells map entry whose key does not match
// the cell's own coordinates. Returns the number of keys rewritten.
func (w *World) NormalizeCellKeys() int {
	fixed := 0
	for key, cell := range w.Cells {
		want := CellKey(cell.MX, cell.MY, cell.LX, cell.LY)
		if key == want {
			continue
		}
		delete(w.Cells, key)
		cell.ID = want
		w.Cells[want] = cell
		fixed++
	}
	return fixed
}

// Chebyshev is the L∞ distance between two L1 coordinates.
func Chebyshev(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// L0ID renders a macro coordinate as row letter + column number
// ("A1" is the north-west corner).
func L0ID(mx, my int) string {
	return fmt.Sprintf("%c%d", 'A'+rune(my), mx+1)
}
