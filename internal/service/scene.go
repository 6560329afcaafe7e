package service

import (
	"encoding/json"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
)

// Scene is the scene graph the editor drives. *scene.Canvas implements it.
type Scene interface {
	Width() float64
	Height() float64

	Add(objs ...*domain.Object)
	Remove(o *domain.Object) bool
	Objects() []*domain.Object
	Find(id string) *domain.Object
	FindByName(name string) *domain.Object
	Clear()
	SendToBack(o *domain.Object)
	BringToFront(o *domain.Object)

	SetActive(o *domain.Object)
	Active() *domain.Object
	HitTest(x, y float64) *domain.Object

	On(event string, fn scene.Handler) scene.ListenerID
	Off(id scene.ListenerID)
	Dispatch(event string, p scene.Pointer)

	Snapshot() (json.RawMessage, error)
	Load(data json.RawMessage) error
	SVG() (string, error)
	PNG() ([]byte, error)
	RenderSVG(snapshot json.RawMessage) (string, error)

	Zoom() float64
	SetZoom(z float64)

	Ready() <-chan struct{}
}

var _ Scene = (*scene.Canvas)(nil)
