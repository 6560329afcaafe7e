package domain

import (
	"encoding/json"
)

// Page is one canvas of a document: an opaque scene snapshot plus its border.
type Page struct {
	ID     string          `json:"id"`
	Scene  json.RawMessage `json:"scene"`
	Border BorderConfig    `json:"pageBorder"`
}

// Project is the persisted form of a whole document.
type Project struct {
	Pages            []Page `json:"pages"`
	CurrentPageIndex int    `json:"currentPageIndex"`
}

// DefaultProjectKey is the store key the project is saved under.
const DefaultProjectKey = "canvasEditorProject"

// SceneSnapshot is the serialized form of a scene.
type SceneSnapshot struct {
	Version    string    `json:"version"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background"`
	Objects    []*Object `json:"objects"`
}

// SnapshotVersion is written into every serialized scene.
const SnapshotVersion = "1"

// A4 page size in CSS pixels at 96 dpi.
const (
	PageWidth  = 794.0
	PageHeight = 1123.0
)

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
)

// ParseBorderStyle maps user input to a style, falling back to solid.
func ParseBorderStyle(s string) BorderStyle {
	switch BorderStyle(s) {
	case BorderDashed, BorderDotted, BorderDouble:
		return BorderStyle(s)
	default:
		return BorderSolid
	}
}

// DashArray returns the stroke dash pattern for the style, nil for solid.
// Double keeps the [1,0] pattern, which draws as a solid line.
func (s BorderStyle) DashArray() []float64 {
	switch s {
	case BorderDashed:
		return []float64{10, 5}
	case BorderDotted:
		return []float64{2, 3}
	case BorderDouble:
		return []float64{1, 0}
	default:
		return nil
	}
}

type Padding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

type BorderConfig struct {
	Enabled bool        `json:"enabled"`
	Width   int         `json:"width"`
	Style   BorderStyle `json:"style"`
	Color   string      `json:"color"`
	Padding Padding     `json:"padding"`
}

// DefaultBorder is the configuration of a fresh page.
func DefaultBorder() BorderConfig {
	return BorderConfig{
		Enabled: false,
		Width:   1,
		Style:   BorderSolid,
		Color:   "#000000",
		Padding: Padding{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}
}

// UnmarshalJSON fills border fields missing from the input with the defaults.
func (p *Page) UnmarshalJSON(data []byte) error {
	type plain Page
	v := plain{Border: DefaultBorder()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Page(v)
	return nil
}
