// Package render projects a captured page snapshot onto a character grid:
// pixel-to-cell projection, z-ordered compositing with last-write-wins
// cells, rectangle-overlap text deduplication, and link/image numbering.
// All state is scoped to a single Render call.
package render

// CellRect is a rectangle on the character grid: column/row origin plus
// extent in columns and rows.
type CellRect struct {
	Col, Row   int
	Cols, Rows int
}

// Area returns Cols*Rows.
func (r CellRect) Area() int { return r.Cols * r.Rows }

// IoU computes the intersection-over-union of two cell rectangles:
// overlap area divided by the union area. Symmetric, bounded in [0, 1],
// and 0 for disjoint rectangles.
func IoU(a, b CellRect) float64 {
	ix1 := max(a.Col, b.Col)
	iy1 := max(a.Row, b.Row)
	ix2 := min(a.Col+a.Cols, b.Col+b.Cols)
	iy2 := min(a.Row+a.Rows, b.Row+b.Rows)

	iw := max(0, ix2-ix1)
	ih := max(0, iy2-iy1)
	inter := iw * ih
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	return float64(inter) / float64(max(1, union))
}
