package domain

import "github.com/google/uuid"

type ObjectType string

const (
	ObjectTextbox ObjectType = "textbox"
	ObjectRect    ObjectType = "rect"
	ObjectCircle  ObjectType = "circle"
	ObjectLine    ObjectType = "line"
	ObjectImage   ObjectType = "image"
	ObjectGroup   ObjectType = "group"
)

// Well-known object names used to find special primitives in a scene.
const (
	NamePageBorder   = "pageBorder"
	NameTable        = "table"
	NameTableCell    = "tableCell"
	NameResizeHandle = "tableResizeHandle"
)

// Object is a node of the scene tree. Geometry is in page units. Children of a
// group are positioned relative to the group's top-left corner.
type Object struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`
	Name string     `json:"name,omitempty"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius,omitempty"`
	// Line end points, relative to Left/Top.
	X1     float64 `json:"x1,omitempty"`
	Y1     float64 `json:"y1,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	ScaleX float64 `json:"scaleX,omitempty"`
	ScaleY float64 `json:"scaleY,omitempty"`

	Fill            string    `json:"fill,omitempty"`
	Stroke          string    `json:"stroke,omitempty"`
	StrokeWidth     float64   `json:"strokeWidth,omitempty"`
	StrokeDashArray []float64 `json:"strokeDashArray,omitempty"`
	Opacity         float64   `json:"opacity"`

	Text       string     `json:"text,omitempty"`
	FontSize   float64    `json:"fontSize,omitempty"`
	FontFamily string     `json:"fontFamily,omitempty"`
	FontWeight string     `json:"fontWeight,omitempty"`
	FontStyle  string     `json:"fontStyle,omitempty"`
	Underline  bool       `json:"underline,omitempty"`
	TextAlign  string     `json:"textAlign,omitempty"`
	LineLists  []ListKind `json:"lineLists,omitempty"`
	// Caret is the insertion point inside Text while the textbox is being edited.
	Caret   int  `json:"-"`
	Editing bool `json:"-"`

	Src string `json:"src,omitempty"` // image data URL

	Selectable        bool `json:"selectable"`
	Evented           bool `json:"evented"`
	Editable          bool `json:"editable,omitempty"`
	ExcludeFromExport bool `json:"excludeFromExport,omitempty"`
	LockMovement      bool `json:"lockMovement,omitempty"`

	Children []*Object `json:"objects,omitempty"`

	Table  *TableMeta  `json:"table,omitempty"`
	Cell   *CellMeta   `json:"cell,omitempty"`
	Handle *HandleMeta `json:"handle,omitempty"`
}

// TableMeta tags a table container.
type TableMeta struct {
	Rows     int  `json:"rows"`
	Cols     int  `json:"cols"`
	Editable bool `json:"editable"`
}

// CellMeta tags a cell group inside a table container.
type CellMeta struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// HandleMeta tags an invisible column resize handle.
type HandleMeta struct {
	TableID     string  `json:"tableId"`
	ColumnIndex int     `json:"columnIndex"`
	OriginalX   float64 `json:"originalX"`
}

// NewObject returns an object of type t with a fresh ID and interactive defaults.
func NewObject(t ObjectType) *Object {
	return &Object{
		ID:         uuid.New().String(),
		Type:       t,
		Opacity:    1,
		ScaleX:     1,
		ScaleY:     1,
		Selectable: true,
		Evented:    true,
	}
}

// IsText reports whether the object accepts text formatting.
func (o *Object) IsText() bool {
	return o != nil && o.Type == ObjectTextbox
}

// Scale returns the effective scale factors, treating zero as 1.
func (o *Object) Scale() (float64, float64) {
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Bounds returns the scaled bounding box of the object in its parent's space.
func (o *Object) Bounds() (x, y, w, h float64) {
	sx, sy := o.Scale()
	switch o.Type {
	case ObjectCircle:
		return o.Left, o.Top, o.Radius * 2 * sx, o.Radius * 2 * sy
	case ObjectLine:
		minX, maxX := o.X1, o.X2
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		minY, maxY := o.Y1, o.Y2
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		return o.Left + minX, o.Top + minY, (maxX - minX) * sx, (maxY - minY) * sy
	default:
		return o.Left, o.Top, o.Width * sx, o.Height * sy
	}
}

// Contains reports whether the point lies inside the object's bounding box.
// Lines get a small tolerance so thin strokes stay hittable.
func (o *Object) Contains(px, py float64) bool {
	x, y, w, h := o.Bounds()
	if o.Type == ObjectLine {
		tol := o.StrokeWidth/2 + 3
		x, y, w, h = x-tol, y-tol, w+tol*2, h+tol*2
	}
	return px >= x && px <= x+w && py >= y && py <= y+h
}

// Clone deep-copies the object and all its children, assigning fresh IDs.
func (o *Object) Clone() *Object {
	c := o.Copy()
	c.Walk(func(x *Object) {
		x.ID = uuid.New().String()
		x.Editing = false
	})
	return c
}

// Copy returns a deep copy of o that keeps every ID.
func (o *Object) Copy() *Object {
	c := *o
	if o.StrokeDashArray != nil {
		c.StrokeDashArray = append([]float64(nil), o.StrokeDashArray...)
	}
	if o.LineLists != nil {
		c.LineLists = append([]ListKind(nil), o.LineLists...)
	}
	if o.Table != nil {
		t := *o.Table
		c.Table = &t
	}
	if o.Cell != nil {
		cm := *o.Cell
		c.Cell = &cm
	}
	if o.Handle != nil {
		h := *o.Handle
		c.Handle = &h
	}
	c.Children = nil
	for _, ch := range o.Children {
		c.Children = append(c.Children, ch.Copy())
	}
	return &c
}

// Walk calls fn for o and every descendant in depth-first order.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, ch := range o.Children {
		ch.Walk(fn)
	}
}
