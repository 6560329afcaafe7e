package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
	"canvasdoc/internal/service"
)

func newTables() (*service.TableService, *scene.Canvas, *service.MockEmitter) {
	c := newCanvas()
	em := &service.MockEmitter{}
	return service.NewTableService(c, em), c, em
}

func TestInsertTable_Tiling(t *testing.T) {
	svc, c, em := newTables()
	tbl, err := svc.InsertTable(context.Background(), 3, 4, service.TableOptions{Editable: true})
	require.NoError(t, err)

	box := tbl.Container
	assert.Equal(t, domain.PageWidth/2-200, box.Left)
	assert.Equal(t, domain.PageHeight/2-45, box.Top)
	assert.Equal(t, 400.0, box.Width)
	assert.Equal(t, 90.0, box.Height)
	assert.Same(t, box, c.Active())
	require.Len(t, box.Children, 12)

	for r := 0; r < 3; r++ {
		for col := 0; col < 4; col++ {
			cell := tbl.Cell(r, col)
			require.NotNil(t, cell, "cell %d,%d", r, col)
			assert.Equal(t, float64(col)*100, cell.Left)
			assert.Equal(t, float64(r)*30, cell.Top)
			assert.Equal(t, 100.0, cell.Width)
			assert.Equal(t, 30.0, cell.Height)
			require.Len(t, cell.Children, 2)
			text := cell.Children[1]
			assert.Equal(t, domain.ObjectTextbox, text.Type)
			assert.Equal(t, 96.0, text.Width)
			assert.Equal(t, 2.0, text.Left)
		}
		assert.InDelta(t, 400, tbl.RowWidth(r), 1e-9)
	}

	require.Len(t, tbl.Handles, 3)
	for i, h := range tbl.Handles {
		assert.Equal(t, i+1, h.Handle.ColumnIndex)
		assert.Equal(t, box.Left+float64(i+1)*100-2, h.Left)
		assert.Equal(t, 4.0, h.Width)
		assert.Equal(t, 90.0, h.Height)
		assert.True(t, h.ExcludeFromExport)
		assert.Zero(t, h.Opacity)
	}
	assert.Equal(t, "3x4 editable table added", lastNotification(t, em).Message)
}

func TestInsertTable_GridVariantHasNoText(t *testing.T) {
	svc, _, em := newTables()
	tbl, err := svc.InsertTable(context.Background(), 2, 2, service.TableOptions{})
	require.NoError(t, err)
	for _, cell := range tbl.Container.Children {
		assert.Len(t, cell.Children, 1)
	}
	assert.Equal(t, "2x2 grid table added", lastNotification(t, em).Message)
}

func TestInsertTable_InvalidSize(t *testing.T) {
	svc, c, _ := newTables()
	for _, size := range [][2]int{{0, 3}, {3, 0}, {11, 1}, {1, 11}, {-1, -1}} {
		_, err := svc.InsertTable(context.Background(), size[0], size[1], service.TableOptions{})
		assert.ErrorIs(t, err, service.ErrInvalidTableSize)
	}
	assert.Empty(t, c.Objects())
}

func TestInsertTable_SingleColumnHasNoHandles(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 1, service.TableOptions{})
	require.NoError(t, err)
	assert.Empty(t, tbl.Handles)
}

func TestUpdateColumnWidths(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 2, 4, service.TableOptions{Editable: true})
	require.NoError(t, err)

	applied := svc.UpdateColumnWidths(tbl, 2, 15)
	assert.Equal(t, 15.0, applied)

	for r := 0; r < 2; r++ {
		first, left, right, far := tbl.Cell(r, 0), tbl.Cell(r, 1), tbl.Cell(r, 2), tbl.Cell(r, 3)
		assert.Equal(t, 100.0, first.Width)
		assert.Zero(t, first.Left)
		assert.Equal(t, 115.0, left.Width)
		assert.Equal(t, 100.0, left.Left)
		assert.Equal(t, 85.0, right.Width)
		assert.Equal(t, 215.0, right.Left)
		assert.Equal(t, 100.0, far.Width)
		assert.Equal(t, 315.0, far.Left)
		assert.Equal(t, 111.0, left.Children[1].Width)
		assert.Equal(t, 81.0, right.Children[1].Width)
		assert.InDelta(t, 400, tbl.RowWidth(r), 1e-9)
	}
	assert.Equal(t, []float64{100, 115, 85, 100}, tbl.ColumnWidths())
}

func TestUpdateColumnWidths_HandlesTrackBoundaries(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 3, service.TableOptions{})
	require.NoError(t, err)
	before := []float64{tbl.Handles[0].Left, tbl.Handles[1].Left}

	assert.Equal(t, 50.0, svc.UpdateColumnWidths(tbl, 1, 50))
	assert.Equal(t, -20.0, svc.UpdateColumnWidths(tbl, 2, -20))

	assert.InDelta(t, before[0]+50, tbl.Handles[0].Left, 1e-9)
	assert.InDelta(t, before[1]+30, tbl.Handles[1].Left, 1e-9)
	for i, h := range tbl.Handles {
		boundary := tbl.Container.Left + tbl.Cell(0, i+1).Left
		assert.InDelta(t, boundary, h.Left+service.HandleWidth/2, 1e-9, "handle %d", i+1)
	}
}

func TestUpdateColumnWidths_Clamps(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 2, service.TableOptions{})
	require.NoError(t, err)

	assert.Equal(t, 190.0, svc.UpdateColumnWidths(tbl, 1, 500))
	assert.Equal(t, []float64{390, 10}, tbl.ColumnWidths())

	assert.Zero(t, svc.UpdateColumnWidths(tbl, 1, 5))

	assert.Equal(t, -380.0, svc.UpdateColumnWidths(tbl, 1, -1000))
	assert.Equal(t, []float64{10, 390}, tbl.ColumnWidths())
	assert.InDelta(t, 400, tbl.RowWidth(0), 1e-9)
}

func TestUpdateColumnWidths_IgnoresOuterEdges(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 3, service.TableOptions{})
	require.NoError(t, err)
	before := tbl.ColumnWidths()

	assert.Zero(t, svc.UpdateColumnWidths(tbl, 0, 20))
	assert.Zero(t, svc.UpdateColumnWidths(tbl, 3, 20))
	assert.Equal(t, before, tbl.ColumnWidths())
}

func TestColumnDrag(t *testing.T) {
	svc, c, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 2, 2, service.TableOptions{Editable: true})
	require.NoError(t, err)
	handle := tbl.Handles[0]
	start := handle.Left

	drag := svc.BeginColumnDrag(tbl, handle, 300)
	assert.Equal(t, 1, c.ListenerCount(scene.EventMouseMove))
	assert.Equal(t, 1, c.ListenerCount(scene.EventMouseUp))

	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 310})
	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 330})
	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 320})

	assert.Equal(t, 20.0, drag.Applied())
	assert.Equal(t, []float64{220, 180}, tbl.ColumnWidths())
	assert.Equal(t, start+20, handle.Left)
	for r := 0; r < 2; r++ {
		assert.InDelta(t, 400, tbl.RowWidth(r), 1e-9)
	}

	c.Dispatch(scene.EventMouseUp, scene.Pointer{X: 320})
	assert.Zero(t, c.ListenerCount(scene.EventMouseMove))
	assert.Zero(t, c.ListenerCount(scene.EventMouseUp))

	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 400})
	assert.Equal(t, []float64{220, 180}, tbl.ColumnWidths())
	drag.End()
}

func TestColumnDrag_ClampedBeyondMinimum(t *testing.T) {
	svc, c, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 2, service.TableOptions{})
	require.NoError(t, err)

	drag := svc.BeginColumnDrag(tbl, tbl.Handles[0], 0)
	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 1000})
	assert.Equal(t, 190.0, drag.Applied())
	c.Dispatch(scene.EventMouseMove, scene.Pointer{X: 100})
	assert.Equal(t, 100.0, drag.Applied())
	assert.Equal(t, []float64{300, 100}, tbl.ColumnWidths())
	drag.End()
}

func TestHoverHandle(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 1, 2, service.TableOptions{})
	require.NoError(t, err)
	h := tbl.Handles[0]

	svc.HoverHandle(h, true)
	assert.Equal(t, 1.0, h.Opacity)
	svc.HoverHandle(h, false)
	assert.Zero(t, h.Opacity)
}

func TestFindTable(t *testing.T) {
	svc, _, _ := newTables()
	tbl, err := svc.InsertTable(context.Background(), 2, 3, service.TableOptions{})
	require.NoError(t, err)

	found, ok := svc.FindTable(tbl.Container.ID)
	require.True(t, ok)
	assert.Same(t, tbl.Container, found.Container)
	require.Len(t, found.Handles, 2)
	assert.Equal(t, 1, found.Handles[0].Handle.ColumnIndex)

	_, ok = svc.FindTable("missing")
	assert.False(t, ok)
	assert.Len(t, svc.Tables(), 1)
}
