package service

import (
	"context"
	"fmt"

	"canvasdoc/internal/domain"
)

// Text formats accepted by ToggleFormat.
const (
	FormatBold      = "bold"
	FormatItalic    = "italic"
	FormatUnderline = "underline"
)

// activeText returns the selected text box, or nil. Formatting commands are
// no-ops without one.
func (e *Editor) activeText() *domain.Object {
	if o := e.scene.Active(); o.IsText() {
		return o
	}
	return nil
}

// ToggleFormat flips bold, italic or underline on the active text box.
func (e *Editor) ToggleFormat(ctx context.Context, format string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tb := e.activeText()
	if tb == nil {
		return nil
	}
	var apply func()
	switch format {
	case FormatBold:
		apply = func() { tb.FontWeight = flip(tb.FontWeight, "bold") }
	case FormatItalic:
		apply = func() { tb.FontStyle = flip(tb.FontStyle, "italic") }
	case FormatUnderline:
		apply = func() { tb.Underline = !tb.Underline }
	default:
		return fmt.Errorf("unknown text format %q", format)
	}
	e.track(ctx, "Toggle "+format, apply)
	notify(ctx, e.emitter, LevelSuccess, format+" formatting toggled")
	return nil
}

func flip(current, on string) string {
	if current == on {
		return "normal"
	}
	return on
}

func (e *Editor) SetTextColor(ctx context.Context, color string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tb := e.activeText(); tb != nil {
		e.track(ctx, "Text color", func() { tb.Fill = color })
		notify(ctx, e.emitter, LevelSuccess, "Text color changed")
	}
}

func (e *Editor) SetFontSize(ctx context.Context, size float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tb := e.activeText(); tb != nil && size > 0 {
		e.track(ctx, "Font size", func() { tb.FontSize = size })
		notify(ctx, e.emitter, LevelSuccess, fmt.Sprintf("Font size set to %gpx", size))
	}
}

func (e *Editor) SetFontFamily(ctx context.Context, family string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tb := e.activeText(); tb != nil && family != "" {
		e.track(ctx, "Font family", func() { tb.FontFamily = family })
		notify(ctx, e.emitter, LevelSuccess, "Font changed to "+family)
	}
}

// AlignText sets left, center or right alignment.
func (e *Editor) AlignText(ctx context.Context, align string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch align {
	case "left", "center", "right":
	default:
		return fmt.Errorf("unknown alignment %q", align)
	}
	if tb := e.activeText(); tb != nil {
		e.track(ctx, "Align "+align, func() { tb.TextAlign = align })
		notify(ctx, e.emitter, LevelSuccess, "Text aligned "+align)
	}
	return nil
}

// ToggleList turns every line of the active text box into a list of kind, or
// back into plain lines when the first line already has that kind.
func (e *Editor) ToggleList(ctx context.Context, kind domain.ListKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if kind != domain.ListBullet && kind != domain.ListNumbered {
		return fmt.Errorf("unknown list kind %q", kind)
	}
	tb := e.activeText()
	if tb == nil {
		return nil
	}

	removing := tb.LineList(0) == kind
	e.track(ctx, "Toggle list", func() {
		if removing {
			tb.SetAllLines(domain.ListNone)
		} else {
			tb.SetAllLines(kind)
		}
	})

	name := string(kind) + " list"
	verb := "applied"
	if removing {
		verb = "removed"
	}
	notify(ctx, e.emitter, LevelSuccess, fmt.Sprintf("%s formatting %s", name, verb))
	return nil
}
