package service

import (
	"context"
	"strconv"
	"strings"

	"canvasdoc/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Border Service: one non-interactive border rectangle per page
// ─────────────────────────────────────────────────────────────

// BorderInput is raw border form input. Numeric fields are parsed leniently.
type BorderInput struct {
	Width  string `json:"width"`
	Style  string `json:"style"`
	Color  string `json:"color"`
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

// ParseBorderInput builds an enabled BorderConfig from form input. Numbers
// are read up to the first non-digit ("12px" is 12); missing or negative
// numbers become 0 and unknown styles become solid.
func ParseBorderInput(in BorderInput) domain.BorderConfig {
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = domain.DefaultBorder().Color
	}
	return domain.BorderConfig{
		Enabled: true,
		Width:   parseNonNegative(in.Width),
		Style:   domain.ParseBorderStyle(in.Style),
		Color:   color,
		Padding: domain.Padding{
			Top:    parseNonNegative(in.Top),
			Right:  parseNonNegative(in.Right),
			Bottom: parseNonNegative(in.Bottom),
			Left:   parseNonNegative(in.Left),
		},
	}
}

func parseNonNegative(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[0] == '+' || s[0] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type BorderService struct {
	scene   Scene
	emitter EventEmitter
	config  domain.BorderConfig
}

func NewBorderService(scene Scene, emitter EventEmitter) *BorderService {
	return &BorderService{scene: scene, emitter: emitter, config: domain.DefaultBorder()}
}

// Config returns the border configuration of the current page.
func (s *BorderService) Config() domain.BorderConfig {
	return s.config
}

// SetConfig replaces the configuration without touching the scene.
func (s *BorderService) SetConfig(cfg domain.BorderConfig) {
	s.config = cfg
}

// Reset restores the fresh-page defaults without touching the scene.
func (s *BorderService) Reset() {
	s.config = domain.DefaultBorder()
}

// Apply enables cfg on the current page and draws it.
func (s *BorderService) Apply(ctx context.Context, cfg domain.BorderConfig) {
	cfg.Enabled = true
	s.config = cfg
	s.Render()
	notify(ctx, s.emitter, LevelSuccess, "Page border applied")
}

// Disable turns the border off and removes its primitive.
func (s *BorderService) Disable(ctx context.Context) {
	s.config.Enabled = false
	s.Remove()
	notify(ctx, s.emitter, LevelSuccess, "Page border removed")
}

// Render replaces any existing border primitive with one matching the
// current configuration. Nothing is drawn when the border is disabled.
func (s *BorderService) Render() {
	s.Remove()
	if !s.config.Enabled {
		return
	}
	b := BorderRect(s.config, s.scene.Width(), s.scene.Height())
	s.scene.Add(b)
	s.scene.SendToBack(b)
}

// Remove deletes the border primitive if present.
func (s *BorderService) Remove() {
	if b := s.scene.FindByName(domain.NamePageBorder); b != nil {
		s.scene.Remove(b)
	}
}

// BorderRect builds the border primitive for a page of size w×h. The stroke
// is centred on the rectangle edge, so the rect is inset by half the width.
func BorderRect(cfg domain.BorderConfig, w, h float64) *domain.Object {
	sw := float64(cfg.Width)
	p := cfg.Padding

	r := domain.NewObject(domain.ObjectRect)
	r.Name = domain.NamePageBorder
	r.Left = float64(p.Left) + sw/2
	r.Top = float64(p.Top) + sw/2
	r.Width = w - float64(p.Left) - float64(p.Right) - sw
	r.Height = h - float64(p.Top) - float64(p.Bottom) - sw
	r.Fill = "transparent"
	r.Stroke = cfg.Color
	r.StrokeWidth = sw
	r.StrokeDashArray = cfg.Style.DashArray()
	r.Selectable = false
	r.Evented = false
	return r
}
