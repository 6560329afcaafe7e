package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLines(t *testing.T) {
	o := NewObject(ObjectTextbox)
	o.Text = "first\n\nthird"

	assert.Equal(t, []string{"first", "", "third"}, o.DisplayLines())

	o.SetAllLines(ListBullet)
	assert.Equal(t, []string{"• first", "", "• third"}, o.DisplayLines())

	o.SetAllLines(ListNumbered)
	assert.Equal(t, []string{"1. first", "", "3. third"}, o.DisplayLines())

	o.SetAllLines(ListNone)
	assert.Nil(t, o.LineLists)
	assert.Equal(t, "first\n\nthird", o.DisplayText())
}

func TestLineListOutOfRange(t *testing.T) {
	o := NewObject(ObjectTextbox)
	o.Text = "a"
	o.SetAllLines(ListBullet)
	o.Text = "a\nb"
	assert.Equal(t, ListNone, o.LineList(1))
	assert.Equal(t, []string{"• a", "b"}, o.DisplayLines())
}

func TestBorderStyleDashArray(t *testing.T) {
	assert.Nil(t, BorderSolid.DashArray())
	assert.Equal(t, []float64{10, 5}, BorderDashed.DashArray())
	assert.Equal(t, []float64{2, 3}, BorderDotted.DashArray())
	assert.Equal(t, []float64{1, 0}, BorderDouble.DashArray())
	assert.Equal(t, BorderSolid, ParseBorderStyle("wavy"))
}

func TestObjectCloneIsDeep(t *testing.T) {
	g := NewObject(ObjectGroup)
	child := NewObject(ObjectRect)
	child.StrokeDashArray = []float64{1, 2}
	g.Children = []*Object{child}

	c := g.Clone()
	assert.NotEqual(t, g.ID, c.ID)
	assert.NotEqual(t, child.ID, c.Children[0].ID)
	c.Children[0].StrokeDashArray[0] = 9
	assert.Equal(t, 1.0, child.StrokeDashArray[0])
}

func TestObjectCopyKeepsIDs(t *testing.T) {
	g := NewObject(ObjectGroup)
	g.Table = &TableMeta{Rows: 1, Cols: 1}
	child := NewObject(ObjectTextbox)
	child.Editing = true
	g.Children = []*Object{child}

	c := g.Copy()
	assert.Equal(t, g.ID, c.ID)
	assert.Equal(t, child.ID, c.Children[0].ID)
	assert.True(t, c.Children[0].Editing)
	assert.NotSame(t, child, c.Children[0])

	c.Table.Rows = 5
	c.Children[0].Text = "changed"
	assert.Equal(t, 1, g.Table.Rows)
	assert.Empty(t, child.Text)
}

func TestObjectContains(t *testing.T) {
	c := NewObject(ObjectCircle)
	c.Left, c.Top, c.Radius = 10, 10, 40
	assert.True(t, c.Contains(50, 50))
	assert.False(t, c.Contains(95, 50))

	l := NewObject(ObjectLine)
	l.Left, l.Top, l.X2, l.StrokeWidth = 0, 0, 100, 2
	assert.True(t, l.Contains(50, 2))
	assert.False(t, l.Contains(50, 10))
}
