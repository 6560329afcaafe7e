package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Editor: the document controller composing all services
// ─────────────────────────────────────────────────────────────

const (
	ZoomMin     = 10
	ZoomMax     = 200
	ZoomStep    = 10
	ZoomDefault = 100

	maxImageSize    = 300.0
	duplicateOffset = 20.0
)

var ErrNotFound = errors.New("object not found")

// EditorDeps holds everything an Editor needs. History is optional.
type EditorDeps struct {
	Scene      Scene
	Store      domain.ProjectStore
	History    domain.HistoryStore
	Emitter    EventEmitter
	Logger     *zap.Logger
	ProjectKey string
}

// Editor serializes every command on one mutex; callers may use it from
// any goroutine.
type Editor struct {
	mu sync.Mutex

	scene   Scene
	emitter EventEmitter
	logger  *zap.Logger
	history domain.HistoryStore

	docs    *DocumentService
	tables  *TableService
	borders *BorderService
	exports *ExportService

	zoom      int
	hovered   *domain.Object
	drag      *ColumnDrag
	listeners []scene.ListenerID
}

func NewEditor(deps EditorDeps) *Editor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = LogEmitter{Logger: logger}
	}

	borders := NewBorderService(deps.Scene, emitter)
	docs := NewDocumentService(deps.Scene, borders, deps.Store, emitter, logger, deps.ProjectKey)
	return &Editor{
		scene:   deps.Scene,
		emitter: emitter,
		logger:  logger,
		history: deps.History,
		docs:    docs,
		tables:  NewTableService(deps.Scene, emitter),
		borders: borders,
		exports: NewExportService(deps.Scene, docs, logger),
		zoom:    ZoomDefault,
	}
}

// Start waits for the scene to become ready, installs pointer handling,
// adds the starter text box and loads the stored project.
func (e *Editor) Start(ctx context.Context) error {
	select {
	case <-e.scene.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.attachPointerHandlers()
	e.addTextbox(ctx)
	if err := e.docs.LoadProject(ctx); err != nil {
		return fmt.Errorf("start editor: %w", err)
	}
	e.logger.Info("editor started", zap.Int("pages", e.docs.PageCount()))
	return nil
}

// Close removes the pointer handlers installed by Start.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range e.listeners {
		e.scene.Off(id)
	}
	e.listeners = nil
	if e.drag != nil {
		e.drag.End()
		e.drag = nil
	}
}

// ── Pages ──────────────────────────────────────────────────

func (e *Editor) SaveCurrentPage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs.SaveCurrentPage()
}

func (e *Editor) AddNewPage(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs.AddNewPage(ctx)
}

func (e *Editor) NavigatePage(ctx context.Context, direction int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endDrag()
	return e.docs.NavigatePage(ctx, direction)
}

// PageInfo describes the document's page position.
type PageInfo struct {
	Index   int      `json:"index"`
	Count   int      `json:"count"`
	PageIDs []string `json:"pageIds"`
}

func (e *Editor) PageInfo() PageInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := PageInfo{Index: e.docs.CurrentIndex(), Count: e.docs.PageCount()}
	for _, p := range e.docs.Pages() {
		info.PageIDs = append(info.PageIDs, p.ID)
	}
	return info
}

// Project captures the live scene and returns the whole document.
func (e *Editor) Project() domain.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs.Project()
}

func (e *Editor) SaveProject(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs.SaveProject(ctx)
}

func (e *Editor) LoadProject(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endDrag()
	return e.docs.LoadProject(ctx)
}

// ApplyExternal replaces the document with project data changed outside
// this process. Unusable data leaves the document untouched.
func (e *Editor) ApplyExternal(ctx context.Context, data string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endDrag()
	ok := e.docs.ApplyProject(ctx, data)
	if ok {
		notify(ctx, e.emitter, LevelSuccess, "Project reloaded from disk")
	}
	return ok
}

// ── Objects ────────────────────────────────────────────────

// Objects returns copies of the top-level objects of the live scene.
func (e *Editor) Objects() []*domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	objs := e.scene.Objects()
	out := make([]*domain.Object, len(objs))
	for i, o := range objs {
		out[i] = o.Copy()
	}
	return out
}

// Object returns a copy of the object with the given ID.
func (e *Editor) Object(id string) (*domain.Object, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.scene.Find(id)
	if o == nil {
		return nil, false
	}
	return o.Copy(), true
}

// Active returns a copy of the selected object, or nil.
func (e *Editor) Active() *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.scene.Active(); o != nil {
		return o.Copy()
	}
	return nil
}

func (e *Editor) AddTextbox(ctx context.Context) *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	var tb *domain.Object
	e.track(ctx, "Add text box", func() { tb = e.addTextbox(ctx) })
	return tb
}

func (e *Editor) addTextbox(ctx context.Context) *domain.Object {
	tb := newTextbox("Type here...", 300)
	tb.Left = e.scene.Width()/2 - 150
	tb.Top = e.scene.Height()/2 - 25
	tb.Fill = "#343a40"
	e.scene.Add(tb)
	e.scene.SetActive(tb)
	notify(ctx, e.emitter, LevelSuccess, "Text box added")
	return tb
}

func newTextbox(text string, width float64) *domain.Object {
	tb := domain.NewObject(domain.ObjectTextbox)
	tb.Text = text
	tb.Width = width
	tb.Height = 25
	tb.FontSize = 18
	tb.FontFamily = "Inter"
	tb.FontWeight = "normal"
	tb.FontStyle = "normal"
	tb.TextAlign = "left"
	tb.Editable = true
	return tb
}

// Shape kinds accepted by AddShape.
const (
	ShapeSquare = "square"
	ShapeCircle = "circle"
	ShapeVLine  = "vline"
	ShapeHLine  = "hline"
)

// AddShape adds a preset shape centred on the page and selects it.
func (e *Editor) AddShape(ctx context.Context, kind string) (*domain.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cx, cy := e.scene.Width()/2, e.scene.Height()/2
	var o *domain.Object
	switch kind {
	case ShapeSquare:
		o = domain.NewObject(domain.ObjectRect)
		o.Left, o.Top, o.Width, o.Height = cx-40, cy-40, 80, 80
		o.Fill, o.Opacity, o.Stroke, o.StrokeWidth = "#4361ee", 0.8, "#3f37c9", 1
	case ShapeCircle:
		o = domain.NewObject(domain.ObjectCircle)
		o.Left, o.Top, o.Radius = cx-40, cy-40, 40
		o.Fill, o.Opacity, o.Stroke, o.StrokeWidth = "#4895ef", 0.8, "#3f37c9", 1
	case ShapeVLine:
		o = domain.NewObject(domain.ObjectLine)
		o.Left, o.Top, o.Y2 = cx, cy-50, 100
		o.Stroke, o.StrokeWidth = "#212529", 2
	case ShapeHLine:
		o = domain.NewObject(domain.ObjectLine)
		o.Left, o.Top, o.X2 = cx-50, cy, 100
		o.Stroke, o.StrokeWidth = "#212529", 2
	default:
		return nil, fmt.Errorf("unknown shape %q", kind)
	}

	e.track(ctx, "Add "+kind, func() {
		e.scene.Add(o)
		e.scene.SetActive(o)
	})
	notify(ctx, e.emitter, LevelSuccess, kind+" added")
	return o, nil
}

// AddImage places an image data URL centred on the page, scaled down to fit
// 300×300. An empty source only warns.
func (e *Editor) AddImage(ctx context.Context, dataURL string) (*domain.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dataURL == "" {
		notify(ctx, e.emitter, LevelWarning, "Please select an image")
		return nil, nil
	}
	w, h, err := scene.ImageSize(dataURL)
	if err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}
	scale := math.Min(1, maxImageSize/math.Max(float64(w), float64(h)))

	img := domain.NewObject(domain.ObjectImage)
	img.Src = dataURL
	img.Width, img.Height = float64(w), float64(h)
	img.ScaleX, img.ScaleY = scale, scale
	img.Left = e.scene.Width()/2 - float64(w)*scale/2
	img.Top = e.scene.Height()/2 - float64(h)*scale/2

	e.track(ctx, "Add image", func() {
		e.scene.Add(img)
		e.scene.SetActive(img)
	})
	notify(ctx, e.emitter, LevelSuccess, "Image added to canvas")
	return img, nil
}

// InsertField inserts a {{name}} placeholder at the caret of the active text
// box, or as a new text box when no text box is selected.
func (e *Editor) InsertField(ctx context.Context, name string) *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()

	tag := "{{" + name + "}}"
	active := e.scene.Active()
	if !active.IsText() {
		tb := newTextbox(tag, 200)
		tb.Left = e.scene.Width()/2 - 50
		tb.Top = e.scene.Height()/2 - 25
		tb.Fill = "#1976d2"
		e.track(ctx, "Insert field", func() {
			e.scene.Add(tb)
			e.scene.SetActive(tb)
		})
		notify(ctx, e.emitter, LevelSuccess, fmt.Sprintf("Field %s inserted", tag))
		return tb
	}

	e.track(ctx, "Insert field", func() {
		runes := []rune(active.Text)
		pos := min(max(active.Caret, 0), len(runes))
		active.Text = string(runes[:pos]) + tag + string(runes[pos:])
		active.Caret = pos + len([]rune(tag))
	})
	notify(ctx, e.emitter, LevelSuccess, fmt.Sprintf("Field %s inserted", tag))
	return active
}

// Select makes the object with the given ID active.
func (e *Editor) Select(id string) (*domain.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.scene.Find(id)
	if o == nil || isPrimitive(o) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.scene.SetActive(o)
	return o, nil
}

// SelectAt selects the object under the point. Clicking a table selects the
// text region of the cell under the point and enters editing.
func (e *Editor) SelectAt(x, y float64) *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectAt(x, y)
}

func (e *Editor) selectAt(x, y float64) *domain.Object {
	target := e.scene.HitTest(x, y)
	if target != nil && target.Table != nil {
		if text := cellTextAt(target, x, y); text != nil {
			text.Editing = true
			text.Caret = len([]rune(text.Text))
			target = text
		}
	}
	e.scene.SetActive(target)
	return target
}

func cellTextAt(table *domain.Object, x, y float64) *domain.Object {
	lx, ly := x-table.Left, y-table.Top
	for _, cell := range table.Children {
		if cell.Cell != nil && cell.Contains(lx, ly) {
			_, text := cellParts(cell)
			return text
		}
	}
	return nil
}

// SetText replaces the text of a text box.
func (e *Editor) SetText(ctx context.Context, id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.scene.Find(id)
	if !o.IsText() {
		return fmt.Errorf("%w: text box %s", ErrNotFound, id)
	}
	e.track(ctx, "Edit text", func() {
		o.Text = text
		o.Caret = len([]rune(text))
		if len(o.LineLists) > 0 {
			o.SetAllLines(o.LineLists[0])
		}
	})
	return nil
}

// DuplicateSelected clones the active object 20px down and right.
func (e *Editor) DuplicateSelected(ctx context.Context) *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duplicate(ctx, e.scene.Active())
}

func (e *Editor) duplicate(ctx context.Context, o *domain.Object) *domain.Object {
	if o == nil || !e.isTopLevel(o) {
		return nil
	}
	c := o.Clone()
	c.Left += duplicateOffset
	c.Top += duplicateOffset
	c.Evented = true
	e.track(ctx, "Duplicate", func() {
		e.scene.Add(c)
		if c.Table != nil {
			e.tables.MakeResizable(&Table{Container: c})
		}
		e.scene.SetActive(c)
	})
	notify(ctx, e.emitter, LevelSuccess, "Object duplicated")
	return c
}

// MoveObject places a top-level object at (x, y). Table handles follow
// their table.
func (e *Editor) MoveObject(ctx context.Context, id string, x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.scene.Find(id)
	if o == nil || !e.isTopLevel(o) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	dx, dy := x-o.Left, y-o.Top
	e.track(ctx, "Move", func() {
		if o.Table != nil {
			if t, ok := e.tables.FindTable(o.ID); ok {
				for _, h := range t.Handles {
					h.Left += dx
					h.Top += dy
				}
			}
		}
		o.Left, o.Top = x, y
	})
	return nil
}

// DeleteSelected removes the active object.
func (e *Editor) DeleteSelected(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.delete(ctx, e.scene.Active())
}

func (e *Editor) delete(ctx context.Context, o *domain.Object) bool {
	if o == nil || !e.isTopLevel(o) {
		return false
	}
	e.track(ctx, "Delete", func() {
		if o.Table != nil {
			if t, ok := e.tables.FindTable(o.ID); ok {
				for _, h := range t.Handles {
					e.scene.Remove(h)
				}
			}
		}
		e.scene.Remove(o)
	})
	notify(ctx, e.emitter, LevelSuccess, "Object deleted")
	return true
}

// DeleteObject removes the object with the given ID.
func (e *Editor) DeleteObject(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.scene.Find(id)
	if o == nil || !e.delete(ctx, o) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DuplicateObject clones the object with the given ID.
func (e *Editor) DuplicateObject(ctx context.Context, id string) (*domain.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.duplicate(ctx, e.scene.Find(id))
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

func (e *Editor) BringToFront(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.scene.Active(); o != nil && e.isTopLevel(o) {
		e.track(ctx, "Bring to front", func() { e.scene.BringToFront(o) })
		notify(ctx, e.emitter, LevelSuccess, "Brought to front")
	}
}

func (e *Editor) SendToBack(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.scene.Active(); o != nil && e.isTopLevel(o) {
		e.track(ctx, "Send to back", func() { e.scene.SendToBack(o) })
		notify(ctx, e.emitter, LevelSuccess, "Sent to back")
	}
}

// isTopLevel reports whether o is a top-level user object. Resize handles
// and the page border are owned by their services.
func (e *Editor) isTopLevel(o *domain.Object) bool {
	if isPrimitive(o) {
		return false
	}
	for _, x := range e.scene.Objects() {
		if x == o {
			return true
		}
	}
	return false
}

func isPrimitive(o *domain.Object) bool {
	return o.Handle != nil || o.Name == domain.NamePageBorder
}

// ── Tables ─────────────────────────────────────────────────

func (e *Editor) InsertTable(ctx context.Context, rows, cols int, editable bool) (*Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var t *Table
	var err error
	e.track(ctx, "Insert table", func() {
		t, err = e.tables.InsertTable(ctx, rows, cols, TableOptions{Editable: editable})
	})
	return t, err
}

// Tables returns copies of the tables on the current page.
func (e *Editor) Tables() []*Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	tables := e.tables.Tables()
	for i, t := range tables {
		tables[i] = t.Copy()
	}
	return tables
}

// Table returns a copy of the table with the given container ID.
func (e *Editor) Table(id string) (*Table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables.FindTable(id)
	if !ok {
		return nil, false
	}
	return t.Copy(), true
}

// ResizeColumn moves the boundary left of column by delta on table id.
// Returns the delta actually applied after clamping.
func (e *Editor) ResizeColumn(ctx context.Context, tableID string, column int, delta float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables.FindTable(tableID)
	if !ok {
		return 0, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	if column < 1 || column >= t.Cols() {
		return 0, fmt.Errorf("column boundary %d out of range [1, %d)", column, t.Cols())
	}
	var applied float64
	e.track(ctx, "Resize column", func() {
		applied = e.tables.UpdateColumnWidths(t, column, delta)
	})
	return applied, nil
}

// ── Border ─────────────────────────────────────────────────

// ApplyPageBorder parses form input, enables the border on the current page
// and draws it.
func (e *Editor) ApplyPageBorder(ctx context.Context, in BorderInput) domain.BorderConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := ParseBorderInput(in)
	e.track(ctx, "Apply border", func() {
		e.borders.Apply(ctx, cfg)
		e.docs.SaveCurrentPage()
	})
	return e.borders.Config()
}

func (e *Editor) RemovePageBorder(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.track(ctx, "Remove border", func() {
		e.borders.Disable(ctx)
		e.docs.SaveCurrentPage()
	})
}

func (e *Editor) Border() domain.BorderConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.borders.Config()
}

// ── Zoom ───────────────────────────────────────────────────

// ChangeZoom adjusts the zoom percentage by delta, clamped to [10, 200].
func (e *Editor) ChangeZoom(ctx context.Context, delta int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = clampZoom(e.zoom + delta)
	e.scene.SetZoom(float64(e.zoom) / 100)
	e.emitter.Emit(ctx, EventZoomChanged, e.zoom)
	return e.zoom
}

func (e *Editor) Zoom() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

func clampZoom(z int) int {
	return max(ZoomMin, min(ZoomMax, z))
}

// ── Export ─────────────────────────────────────────────────

func (e *Editor) Export(ctx context.Context, format domain.ExportFormat) (*domain.ExportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports.Export(ctx, domain.NewExportJob(format))
}

// ── Pointer ────────────────────────────────────────────────

// DispatchPointer feeds a pointer event from the presentation layer into
// the scene.
func (e *Editor) DispatchPointer(event string, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.Dispatch(event, scene.Pointer{X: x, Y: y})
}

func (e *Editor) attachPointerHandlers() {
	if len(e.listeners) > 0 {
		return
	}
	e.listeners = append(e.listeners,
		e.scene.On(scene.EventMouseOver, func(p scene.Pointer) {
			if p.Target != nil && p.Target.Handle != nil {
				e.hovered = p.Target
				e.tables.HoverHandle(p.Target, true)
			}
		}),
		e.scene.On(scene.EventMouseOut, func(scene.Pointer) {
			if e.hovered != nil {
				e.tables.HoverHandle(e.hovered, false)
				e.hovered = nil
			}
		}),
		e.scene.On(scene.EventMouseDown, func(p scene.Pointer) {
			if p.Target != nil && p.Target.Handle != nil {
				if t, ok := e.tables.FindTable(p.Target.Handle.TableID); ok {
					e.endDrag()
					e.drag = e.tables.BeginColumnDrag(t, p.Target, p.X)
				}
				return
			}
			e.selectAt(p.X, p.Y)
		}),
	)
}

func (e *Editor) endDrag() {
	if e.drag != nil {
		e.drag.End()
		e.drag = nil
	}
}
