package mcpserver

import (
	"math"

	"canvasdoc/internal/domain"
)

const (
	GridSize = 10.0
	Margin   = 40.0 // page margin kept free on every side
	Gap      = 20.0 // space between placed objects
)

// LayoutEngine places objects on a page so that objects created through
// MCP without explicit coordinates don't overlap existing ones.
type LayoutEngine struct {
	gridSize  float64
	margin    float64
	gap       float64
	pageWidth float64
}

func NewLayoutEngine(pageWidth float64) *LayoutEngine {
	return &LayoutEngine{
		gridSize:  GridSize,
		margin:    Margin,
		gap:       Gap,
		pageWidth: pageWidth,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

func bounds(o *domain.Object) rect {
	x, y, w, h := o.Bounds()
	return rect{x, y, w, h}
}

// NextPosition finds the first grid position inside the page margins where
// an object of size (w, h) fits without touching the existing objects.
// Objects wider than the printable area are placed at the left margin.
func (le *LayoutEngine) NextPosition(existing []*domain.Object, w, h float64) (float64, float64) {
	occupied := make([]rect, len(existing))
	for i, o := range existing {
		occupied[i] = bounds(o)
	}

	right := le.pageWidth - le.margin - w
	if right < le.margin {
		right = le.margin
	}

	candidate := rect{w: w, h: h}
	for y := le.margin; y < 100000; y += le.gridSize {
		for x := le.margin; x <= right; x += le.gridSize {
			candidate.x = le.snap(x)
			candidate.y = le.snap(y)

			free := true
			for _, occ := range occupied {
				padded := rect{
					x: occ.x - le.gap,
					y: occ.y - le.gap,
					w: occ.w + le.gap*2,
					h: occ.h + le.gap*2,
				}
				if candidate.intersects(padded) {
					free = false
					break
				}
			}
			if free {
				return candidate.x, candidate.y
			}
		}
	}

	// Fallback: below everything.
	maxY := 0.0
	for _, occ := range occupied {
		if occ.y+occ.h > maxY {
			maxY = occ.y + occ.h
		}
	}
	return le.margin, le.snap(maxY + le.gap)
}

// Arrange lays objects out in rows starting at the top-left margin, wrapping
// at the right margin. It returns the target position of each object.
func (le *LayoutEngine) Arrange(objects []*domain.Object) [][2]float64 {
	out := make([][2]float64, len(objects))
	x, y := le.margin, le.margin
	rowHeight := 0.0
	for i, o := range objects {
		_, _, w, h := o.Bounds()
		if x > le.margin && x+w > le.pageWidth-le.margin {
			x = le.margin
			y = le.snap(y + rowHeight + le.gap)
			rowHeight = 0
		}
		out[i] = [2]float64{le.snap(x), le.snap(y)}
		if h > rowHeight {
			rowHeight = h
		}
		x += w + le.gap
	}
	return out
}
