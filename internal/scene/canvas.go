// Package scene is an in-memory 2D scene graph: an ordered list of objects
// with an active selection, zoom, pointer listeners and serialization to JSON,
// SVG and PNG. A Canvas is not safe for concurrent use.
package scene

import (
	"encoding/json"
	"fmt"
	"sync"

	"canvasdoc/internal/domain"
)

// Pointer events dispatched to listeners.
const (
	EventMouseDown = "mouse:down"
	EventMouseMove = "mouse:move"
	EventMouseUp   = "mouse:up"
	EventMouseOver = "mouse:over"
	EventMouseOut  = "mouse:out"
)

// Pointer is a pointer position in page coordinates.
type Pointer struct {
	X, Y   float64
	Target *domain.Object
}

type Handler func(Pointer)

type ListenerID int

type listener struct {
	id    ListenerID
	event string
	fn    Handler
}

// Canvas holds the live scene of the page being edited.
type Canvas struct {
	width      float64
	height     float64
	background string
	zoom       float64

	objects []*domain.Object
	active  *domain.Object

	listeners []listener
	nextID    ListenerID

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an empty canvas of the given size with zoom 1.
func New(width, height float64) *Canvas {
	return &Canvas{
		width:      width,
		height:     height,
		background: "#ffffff",
		zoom:       1,
		ready:      make(chan struct{}),
	}
}

// MarkReady signals that the canvas is initialized. Safe to call more than once.
func (c *Canvas) MarkReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// Ready is closed once the canvas is initialized.
func (c *Canvas) Ready() <-chan struct{} {
	return c.ready
}

func (c *Canvas) Width() float64  { return c.width }
func (c *Canvas) Height() float64 { return c.height }

func (c *Canvas) SetDimensions(w, h float64) {
	c.width, c.height = w, h
}

func (c *Canvas) Zoom() float64 { return c.zoom }

func (c *Canvas) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

// ── Objects ────────────────────────────────────────────────

// Add appends objects on top of the draw order.
func (c *Canvas) Add(objs ...*domain.Object) {
	c.objects = append(c.objects, objs...)
}

// Remove detaches o from the scene. Reports whether it was present.
func (c *Canvas) Remove(o *domain.Object) bool {
	i := c.indexOf(o)
	if i < 0 {
		return false
	}
	c.objects = append(c.objects[:i], c.objects[i+1:]...)
	if c.active == o {
		c.active = nil
	}
	return true
}

// Objects returns the top-level objects in draw order (back to front).
func (c *Canvas) Objects() []*domain.Object {
	out := make([]*domain.Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// Find returns the object with the given ID anywhere in the tree.
func (c *Canvas) Find(id string) *domain.Object {
	var found *domain.Object
	for _, o := range c.objects {
		o.Walk(func(n *domain.Object) {
			if found == nil && n.ID == id {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindByName returns the first top-level object with the given name.
func (c *Canvas) FindByName(name string) *domain.Object {
	for _, o := range c.objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Clear removes every object and the active selection.
func (c *Canvas) Clear() {
	c.objects = nil
	c.active = nil
}

func (c *Canvas) SendToBack(o *domain.Object) {
	i := c.indexOf(o)
	if i <= 0 {
		return
	}
	copy(c.objects[1:i+1], c.objects[:i])
	c.objects[0] = o
}

func (c *Canvas) BringToFront(o *domain.Object) {
	i := c.indexOf(o)
	if i < 0 || i == len(c.objects)-1 {
		return
	}
	copy(c.objects[i:], c.objects[i+1:])
	c.objects[len(c.objects)-1] = o
}

func (c *Canvas) indexOf(o *domain.Object) int {
	for i, x := range c.objects {
		if x == o {
			return i
		}
	}
	return -1
}

// ── Selection ──────────────────────────────────────────────

// SetActive selects o. Passing nil clears the selection.
func (c *Canvas) SetActive(o *domain.Object) {
	c.active = o
}

func (c *Canvas) Active() *domain.Object {
	return c.active
}

// HitTest returns the topmost evented top-level object under the point.
func (c *Canvas) HitTest(x, y float64) *domain.Object {
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i]
		if o.Evented && o.Contains(x, y) {
			return o
		}
	}
	return nil
}

// ── Events ─────────────────────────────────────────────────

// On registers fn for event and returns an ID usable with Off.
func (c *Canvas) On(event string, fn Handler) ListenerID {
	c.nextID++
	c.listeners = append(c.listeners, listener{id: c.nextID, event: event, fn: fn})
	return c.nextID
}

// Off removes a listener. Unknown IDs are ignored.
func (c *Canvas) Off(id ListenerID) {
	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns how many listeners are registered for event.
func (c *Canvas) ListenerCount(event string) int {
	n := 0
	for _, l := range c.listeners {
		if l.event == event {
			n++
		}
	}
	return n
}

// Dispatch delivers a pointer event to its listeners in registration order.
// Listeners may unregister themselves while being called.
func (c *Canvas) Dispatch(event string, p Pointer) {
	if p.Target == nil {
		p.Target = c.HitTest(p.X, p.Y)
	}
	var fns []Handler
	for _, l := range c.listeners {
		if l.event == event {
			fns = append(fns, l.fn)
		}
	}
	for _, fn := range fns {
		fn(p)
	}
}

// ── Serialization ──────────────────────────────────────────

// Snapshot serializes the scene to JSON.
func (c *Canvas) Snapshot() (json.RawMessage, error) {
	s := domain.SceneSnapshot{
		Version:    domain.SnapshotVersion,
		Width:      c.width,
		Height:     c.height,
		Background: c.background,
		Objects:    c.objects,
	}
	if s.Objects == nil {
		s.Objects = []*domain.Object{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// Load replaces the scene contents with a serialized snapshot. Canvas
// dimensions are kept. On error the scene is left unchanged.
func (c *Canvas) Load(data json.RawMessage) error {
	s, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	c.objects = s.Objects
	c.active = nil
	if s.Background != "" {
		c.background = s.Background
	}
	return nil
}

// SVG renders the live scene.
func (c *Canvas) SVG() (string, error) {
	return renderSVG(c.objects, c.width, c.height, c.background), nil
}

// PNG renders the live scene.
func (c *Canvas) PNG() ([]byte, error) {
	return renderPNG(c.objects, c.width, c.height, c.background)
}

// RenderSVG renders a serialized scene without a live canvas.
func (c *Canvas) RenderSVG(snapshot json.RawMessage) (string, error) {
	return RenderSVG(snapshot)
}

func decodeSnapshot(data json.RawMessage) (*domain.SceneSnapshot, error) {
	var s domain.SceneSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}
