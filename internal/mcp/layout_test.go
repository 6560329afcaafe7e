package mcpserver

import (
	"testing"

	"canvasdoc/internal/domain"
)

func box(x, y, w, h float64) *domain.Object {
	o := domain.NewObject(domain.ObjectRect)
	o.Left, o.Top, o.Width, o.Height = x, y, w, h
	return o
}

func TestNextPosition_EmptyPage(t *testing.T) {
	le := NewLayoutEngine(domain.PageWidth)
	x, y := le.NextPosition(nil, 200, 100)
	if x != Margin || y != Margin {
		t.Errorf("expected (%.0f, %.0f) for empty page, got (%.0f, %.0f)", Margin, Margin, x, y)
	}
}

func TestNextPosition_AvoidsExistingObjects(t *testing.T) {
	le := NewLayoutEngine(domain.PageWidth)
	existing := []*domain.Object{
		box(40, 40, 300, 100),
		box(400, 40, 300, 100),
	}
	x, y := le.NextPosition(existing, 300, 100)

	r := rect{x, y, 300, 100}
	for _, o := range existing {
		padded := rect{o.Left - Gap, o.Top - Gap, o.Width + Gap*2, o.Height + Gap*2}
		if r.intersects(padded) {
			t.Errorf("position (%.0f, %.0f) overlaps object at (%.0f, %.0f)", x, y, o.Left, o.Top)
		}
	}
	if x+300 > domain.PageWidth-Margin {
		t.Errorf("position (%.0f, %.0f) runs past the right margin", x, y)
	}
}

func TestNextPosition_WideObjectUsesLeftMargin(t *testing.T) {
	le := NewLayoutEngine(domain.PageWidth)
	x, _ := le.NextPosition(nil, 2000, 50)
	if x != Margin {
		t.Errorf("expected x=%.0f for an object wider than the page, got %.0f", Margin, x)
	}
}

func TestArrange(t *testing.T) {
	le := NewLayoutEngine(domain.PageWidth)
	objects := []*domain.Object{
		box(0, 0, 300, 200),
		box(0, 0, 300, 150),
		box(0, 0, 300, 100),
	}

	pos := le.Arrange(objects)
	if len(pos) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(pos))
	}

	// Two fit on the first row, the third wraps.
	if pos[0][1] != pos[1][1] {
		t.Errorf("first two objects should share a row: %v", pos)
	}
	if pos[2][0] != Margin || pos[2][1] < Margin+200 {
		t.Errorf("third object should wrap below the tallest: %v", pos[2])
	}

	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			a := rect{pos[i][0], pos[i][1], objects[i].Width, objects[i].Height}
			b := rect{pos[j][0], pos[j][1], objects[j].Width, objects[j].Height}
			if a.intersects(b) {
				t.Errorf("objects %d and %d overlap: %v and %v", i, j, pos[i], pos[j])
			}
		}
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine(domain.PageWidth)
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{14, 10},
		{15, 20},
		{397, 400},
	}
	for _, tt := range tests {
		got := le.snap(tt.input)
		if got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
