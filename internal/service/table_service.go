package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Table Service: cell grids with draggable column boundaries
// ─────────────────────────────────────────────────────────────

const (
	TableWidth   = 400.0
	CellHeight   = 30.0
	CellInset    = 2.0
	HandleWidth  = 4.0
	MinCellWidth = 10.0
	MaxTableDim  = 10
)

var ErrInvalidTableSize = errors.New("table rows and columns must be between 1 and 10")

// Table is a view over a table container and its resize handles.
type Table struct {
	Container *domain.Object
	Handles   []*domain.Object
}

// Copy returns a deep copy of the table that keeps every ID.
func (t *Table) Copy() *Table {
	c := &Table{Container: t.Container.Copy()}
	for _, h := range t.Handles {
		c.Handles = append(c.Handles, h.Copy())
	}
	return c
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.Container.Table.Rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return t.Container.Table.Cols }

// Cell returns the cell group at (row, col), or nil.
func (t *Table) Cell(row, col int) *domain.Object {
	for _, c := range t.Container.Children {
		if c.Cell != nil && c.Cell.Row == row && c.Cell.Col == col {
			return c
		}
	}
	return nil
}

// ColumnWidths returns the widths of the first row's cells, left to right.
func (t *Table) ColumnWidths() []float64 {
	out := make([]float64, t.Cols())
	for c := range out {
		if cell := t.Cell(0, c); cell != nil {
			out[c] = cell.Width
		}
	}
	return out
}

// RowWidth returns the summed cell width of a row.
func (t *Table) RowWidth(row int) float64 {
	sum := 0.0
	for _, c := range t.Container.Children {
		if c.Cell != nil && c.Cell.Row == row {
			sum += c.Width
		}
	}
	return sum
}

// TableOptions selects the grid variant.
type TableOptions struct {
	// Editable adds a text region to every cell.
	Editable bool
}

type TableService struct {
	scene   Scene
	emitter EventEmitter
}

func NewTableService(scene Scene, emitter EventEmitter) *TableService {
	return &TableService{scene: scene, emitter: emitter}
}

// InsertTable adds a rows×cols table centred on the page, makes it the
// active object and attaches column resize handles.
func (s *TableService) InsertTable(ctx context.Context, rows, cols int, opts TableOptions) (*Table, error) {
	if rows < 1 || cols < 1 || rows > MaxTableDim || cols > MaxTableDim {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidTableSize, rows, cols)
	}

	cellWidth := TableWidth / float64(cols)
	tableHeight := float64(rows) * CellHeight

	container := domain.NewObject(domain.ObjectGroup)
	container.Name = domain.NameTable
	container.Left = s.scene.Width()/2 - TableWidth/2
	container.Top = s.scene.Height()/2 - tableHeight/2
	container.Width = TableWidth
	container.Height = tableHeight
	container.Table = &domain.TableMeta{Rows: rows, Cols: cols, Editable: opts.Editable}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			container.Children = append(container.Children,
				newCell(r, c, cellWidth, opts.Editable))
		}
	}

	s.scene.Add(container)
	t := &Table{Container: container}
	s.MakeResizable(t)
	s.scene.SetActive(container)

	kind := "editable"
	if !opts.Editable {
		kind = "grid"
	}
	notify(ctx, s.emitter, LevelSuccess, fmt.Sprintf("%dx%d %s table added", rows, cols, kind))
	return t, nil
}

func newCell(row, col int, width float64, editable bool) *domain.Object {
	cell := domain.NewObject(domain.ObjectGroup)
	cell.Name = domain.NameTableCell
	cell.Left = float64(col) * width
	cell.Top = float64(row) * CellHeight
	cell.Width = width
	cell.Height = CellHeight
	cell.LockMovement = true
	cell.Cell = &domain.CellMeta{Row: row, Col: col}

	bg := domain.NewObject(domain.ObjectRect)
	bg.Width = width
	bg.Height = CellHeight
	bg.Fill = "#ffffff"
	bg.Stroke = "#343a40"
	bg.StrokeWidth = 1
	bg.Selectable = false
	cell.Children = append(cell.Children, bg)

	if editable {
		text := domain.NewObject(domain.ObjectTextbox)
		text.Left = CellInset
		text.Top = CellInset
		text.Width = width - 2*CellInset
		text.Height = CellHeight - 2*CellInset
		text.FontSize = 14
		text.FontFamily = "Inter"
		text.Fill = "#343a40"
		text.Editable = true
		cell.Children = append(cell.Children, text)
	}
	return cell
}

// cellParts returns the background rect and text region of a cell group.
func cellParts(cell *domain.Object) (bg, text *domain.Object) {
	for _, ch := range cell.Children {
		switch ch.Type {
		case domain.ObjectRect:
			if bg == nil {
				bg = ch
			}
		case domain.ObjectTextbox:
			if text == nil {
				text = ch
			}
		}
	}
	return bg, text
}

// MakeResizable adds an invisible drag handle on every internal column
// boundary, replacing any handles the table already had.
func (s *TableService) MakeResizable(t *Table) {
	for _, h := range t.Handles {
		s.scene.Remove(h)
	}
	t.Handles = nil

	for c := 1; c < t.Cols(); c++ {
		boundary := float64(c) * TableWidth / float64(t.Cols())
		if cell := t.Cell(0, c); cell != nil {
			boundary = cell.Left
		}
		x := boundary - HandleWidth/2

		h := domain.NewObject(domain.ObjectRect)
		h.Name = domain.NameResizeHandle
		h.Left = t.Container.Left + x
		h.Top = t.Container.Top
		h.Width = HandleWidth
		h.Height = t.Container.Height
		h.Fill = "#4361ee"
		h.Opacity = 0
		h.Selectable = false
		h.LockMovement = true
		h.ExcludeFromExport = true
		h.Handle = &domain.HandleMeta{TableID: t.Container.ID, ColumnIndex: c, OriginalX: x}

		s.scene.Add(h)
		t.Handles = append(t.Handles, h)
	}
}

// FindTable rebuilds the table view for a container ID from the scene.
func (s *TableService) FindTable(id string) (*Table, bool) {
	var t *Table
	for _, o := range s.scene.Objects() {
		if o.ID == id && o.Table != nil {
			t = &Table{Container: o}
		}
	}
	if t == nil {
		return nil, false
	}
	for _, o := range s.scene.Objects() {
		if o.Handle != nil && o.Handle.TableID == id {
			t.Handles = append(t.Handles, o)
		}
	}
	sort.Slice(t.Handles, func(i, j int) bool {
		return t.Handles[i].Handle.ColumnIndex < t.Handles[j].Handle.ColumnIndex
	})
	return t, true
}

// Tables returns every table on the live scene in draw order.
func (s *TableService) Tables() []*Table {
	var out []*Table
	for _, o := range s.scene.Objects() {
		if o.Table != nil {
			if t, ok := s.FindTable(o.ID); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// HoverHandle shows a handle while the pointer is over it.
func (s *TableService) HoverHandle(h *domain.Object, over bool) {
	if h == nil || h.Handle == nil {
		return
	}
	if over {
		h.Opacity = 1
	} else {
		h.Opacity = 0
	}
}

// UpdateColumnWidths moves the boundary left of columnIndex by deltaX: the
// column on its left grows, the column on its right shrinks and shifts,
// and columns further right shift with unchanged width. Handles on that
// boundary and every boundary to its right follow. deltaX is clamped so no
// cell gets narrower than MinCellWidth. Returns the delta applied.
func (s *TableService) UpdateColumnWidths(t *Table, columnIndex int, deltaX float64) float64 {
	if columnIndex < 1 || columnIndex >= t.Cols() {
		return 0
	}
	widths := t.ColumnWidths()
	delta := math.Max(deltaX, MinCellWidth-widths[columnIndex-1])
	delta = math.Min(delta, widths[columnIndex]-MinCellWidth)
	if delta == 0 || math.IsNaN(delta) {
		return 0
	}

	for _, cell := range t.Container.Children {
		if cell.Cell == nil {
			continue
		}
		bg, text := cellParts(cell)
		switch col := cell.Cell.Col; {
		case col == columnIndex-1:
			resizeCell(cell, bg, text, cell.Width+delta)
		case col == columnIndex:
			cell.Left += delta
			resizeCell(cell, bg, text, cell.Width-delta)
		case col > columnIndex:
			cell.Left += delta
		}
	}
	for _, h := range t.Handles {
		if h.Handle != nil && h.Handle.ColumnIndex >= columnIndex {
			h.Left += delta
		}
	}
	return delta
}

func resizeCell(cell, bg, text *domain.Object, width float64) {
	cell.Width = width
	if bg != nil {
		bg.Width = width
	}
	if text != nil {
		text.Width = width - 2*CellInset
	}
}

// ── Drag gesture ───────────────────────────────────────────

// ColumnDrag is an in-progress drag of a column resize handle.
type ColumnDrag struct {
	svc     *TableService
	table   *Table
	handle  *domain.Object
	startX  float64
	applied float64

	moveID scene.ListenerID
	upID   scene.ListenerID
	done   bool
}

// BeginColumnDrag starts dragging handle from pointerX. Pointer moves and the
// release are delivered through scene listeners, which are removed on release.
func (s *TableService) BeginColumnDrag(t *Table, handle *domain.Object, pointerX float64) *ColumnDrag {
	d := &ColumnDrag{
		svc:    s,
		table:  t,
		handle: handle,
		startX: pointerX,
	}
	d.moveID = s.scene.On(scene.EventMouseMove, func(p scene.Pointer) { d.Move(p.X) })
	d.upID = s.scene.On(scene.EventMouseUp, func(scene.Pointer) { d.End() })
	return d
}

// Move applies the pointer position. The total applied delta tracks the
// pointer offset from the drag start, within the width clamp.
func (d *ColumnDrag) Move(pointerX float64) {
	if d.done {
		return
	}
	deltaX := pointerX - d.startX
	step := d.svc.UpdateColumnWidths(d.table, d.handle.Handle.ColumnIndex, deltaX-d.applied)
	d.applied += step
}

// End detaches the drag listeners. Safe to call more than once.
func (d *ColumnDrag) End() {
	if d.done {
		return
	}
	d.done = true
	d.svc.scene.Off(d.moveID)
	d.svc.scene.Off(d.upID)
}

// Applied returns the total boundary offset applied so far.
func (d *ColumnDrag) Applied() float64 {
	return d.applied
}
