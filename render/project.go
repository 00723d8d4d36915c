package render

import (
	"math"

	"github.com/hazyhaar/termweb/geom"
)

// minViewportPx floors the observed page width so narrow or empty pages
// do not blow up the horizontal scale.
const minViewportPx = 1200

// Projector maps pixel-space rectangles onto the character grid. It is
// pure and never fails: degenerate input produces floor-clamped output.
type Projector struct {
	scaleX, scaleY float64
}

// NewProjector derives the projection scales from the terminal width in
// columns, the widest right edge observed in the snapshot (floored at
// 1200px), and the row aspect constant (a character cell is visually
// taller than it is wide, so rows scale by scaleX*rowAspect).
func NewProjector(termWidth, viewportPx int, rowAspect float64) Projector {
	if viewportPx < minViewportPx {
		viewportPx = minViewportPx
	}
	sx := float64(termWidth) / float64(viewportPx)
	return Projector{scaleX: sx, scaleY: sx * rowAspect}
}

// Project converts a pixel rectangle to a cell rectangle, flooring each
// coordinate and clamping width to at least 6 columns and height to at
// least 1 row so degenerate geometry stays paintable.
func (p Projector) Project(r geom.Rect) CellRect {
	return CellRect{
		Col:  int(math.Floor(float64(r.X) * p.scaleX)),
		Row:  int(math.Floor(float64(r.Y) * p.scaleY)),
		Cols: max(6, int(math.Floor(float64(r.W)*p.scaleX))),
		Rows: max(1, int(math.Floor(float64(r.H)*p.scaleY))),
	}
}

// viewportWidth returns the widest right edge across all nodes.
func viewportWidth(nodes []geom.Node) int {
	w := 0
	for _, n := range nodes {
		if edge := n.Rect.X + n.Rect.W; edge > w {
			w = edge
		}
	}
	return w
}
