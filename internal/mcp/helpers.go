package mcpserver

import (
	"fmt"

	"canvasdoc/internal/domain"
)

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// getInt reads a JSON number argument as an int.
func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func getBool(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// objectSummary is a compact view of an object for tool results.
type objectSummary struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Name   string  `json:"name,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"text,omitempty"`
	Rows   int     `json:"rows,omitempty"`
	Cols   int     `json:"cols,omitempty"`
}

func summarizeObject(o *domain.Object) objectSummary {
	x, y, w, h := o.Bounds()
	s := objectSummary{
		ID:     o.ID,
		Type:   string(o.Type),
		Name:   o.Name,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Text:   o.Text,
	}
	if len([]rune(s.Text)) > 100 {
		s.Text = string([]rune(s.Text)[:100]) + "..."
	}
	if o.Table != nil {
		s.Rows, s.Cols = o.Table.Rows, o.Table.Cols
	}
	return s
}

// visibleObjects filters out resize handles and the page border.
func visibleObjects(objects []*domain.Object) []objectSummary {
	out := []objectSummary{}
	for _, o := range objects {
		if o.Handle != nil || o.Name == domain.NamePageBorder {
			continue
		}
		out = append(out, summarizeObject(o))
	}
	return out
}
