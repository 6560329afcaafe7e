package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"canvasdoc/internal/domain"
)

// lineHeight is the text line advance as a multiple of the font size.
const lineHeight = 1.16

var (
	fontFamilySafeRe = regexp.MustCompile(`[^a-zA-Z0-9 ,_-]+`)
	colorSafeRe      = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9., ]+\))$`)
)

// sanitizeFontFamily strips characters that could break out of a CSS declaration.
func sanitizeFontFamily(s string) string {
	return fontFamilySafeRe.ReplaceAllString(s, "")
}

// sanitizeColor returns s if it is a hex, named or rgb()/rgba() colour, else "".
func sanitizeColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "transparent" {
		return "none"
	}
	if colorSafeRe.MatchString(s) {
		return s
	}
	return ""
}

// RenderSVG renders a serialized scene to standalone SVG markup.
func RenderSVG(snapshot json.RawMessage) (string, error) {
	s, err := decodeSnapshot(snapshot)
	if err != nil {
		return "", err
	}
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		w, h = domain.PageWidth, domain.PageHeight
	}
	return renderSVG(s.Objects, w, h, s.Background), nil
}

func renderSVG(objects []*domain.Object, w, h float64, background string) string {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(w), px(h))
	if bg := sanitizeColor(background); bg != "" && bg != "none" {
		canvas.Rect(0, 0, px(w), px(h), "fill:"+bg)
	}
	for _, o := range objects {
		drawSVG(canvas, o, 0, 0)
	}
	canvas.End()
	return buf.String()
}

func drawSVG(canvas *svg.SVG, o *domain.Object, ox, oy float64) {
	if o.ExcludeFromExport {
		return
	}
	sx, sy := o.Scale()
	x, y := ox+o.Left, oy+o.Top

	switch o.Type {
	case domain.ObjectRect:
		canvas.Rect(px(x), px(y), px(o.Width*sx), px(o.Height*sy), shapeStyle(o))
	case domain.ObjectCircle:
		r := o.Radius * sx
		canvas.Circle(px(x+r), px(y+r), px(r), shapeStyle(o))
	case domain.ObjectLine:
		canvas.Line(px(x+o.X1*sx), px(y+o.Y1*sy), px(x+o.X2*sx), px(y+o.Y2*sy), shapeStyle(o))
	case domain.ObjectTextbox:
		drawSVGText(canvas, o, x, y)
	case domain.ObjectImage:
		if o.Src != "" {
			canvas.Image(px(x), px(y), px(o.Width*sx), px(o.Height*sy), o.Src, opacityStyle(o))
		}
	case domain.ObjectGroup:
		canvas.Gid(o.ID)
		for _, ch := range o.Children {
			drawSVG(canvas, ch, x, y)
		}
		canvas.Gend()
	}
}

func drawSVGText(canvas *svg.SVG, o *domain.Object, x, y float64) {
	size := o.FontSize
	if size <= 0 {
		size = 16
	}
	sx, _ := o.Scale()
	width := o.Width * sx

	anchor, tx := "start", x
	switch o.TextAlign {
	case "center":
		anchor, tx = "middle", x+width/2
	case "right":
		anchor, tx = "end", x+width
	}

	var st strings.Builder
	fmt.Fprintf(&st, "font-size:%spx;text-anchor:%s;", num(size), anchor)
	if ff := sanitizeFontFamily(o.FontFamily); ff != "" {
		fmt.Fprintf(&st, "font-family:'%s';", ff)
	}
	if c := sanitizeColor(o.Fill); c != "" {
		fmt.Fprintf(&st, "fill:%s;", c)
	}
	if o.FontWeight == "bold" {
		st.WriteString("font-weight:bold;")
	}
	if o.FontStyle == "italic" {
		st.WriteString("font-style:italic;")
	}
	if o.Underline {
		st.WriteString("text-decoration:underline;")
	}
	if o.Opacity < 1 {
		fmt.Fprintf(&st, "opacity:%s;", num(o.Opacity))
	}
	style := strings.TrimSuffix(st.String(), ";")

	for i, line := range o.DisplayLines() {
		if line == "" {
			continue
		}
		baseline := y + size + float64(i)*size*lineHeight
		canvas.Text(px(tx), px(baseline), line, style)
	}
}

func shapeStyle(o *domain.Object) string {
	var st strings.Builder
	fill := sanitizeColor(o.Fill)
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(&st, "fill:%s;", fill)
	if c := sanitizeColor(o.Stroke); c != "" && o.StrokeWidth > 0 {
		fmt.Fprintf(&st, "stroke:%s;stroke-width:%s;", c, num(o.StrokeWidth))
		if len(o.StrokeDashArray) > 0 {
			parts := make([]string, len(o.StrokeDashArray))
			for i, d := range o.StrokeDashArray {
				parts[i] = num(d)
			}
			fmt.Fprintf(&st, "stroke-dasharray:%s;", strings.Join(parts, ","))
		}
	}
	if o.Opacity < 1 {
		fmt.Fprintf(&st, "opacity:%s;", num(o.Opacity))
	}
	return strings.TrimSuffix(st.String(), ";")
}

func opacityStyle(o *domain.Object) string {
	if o.Opacity < 1 {
		return "opacity:" + num(o.Opacity)
	}
	return ""
}

func px(v float64) int {
	return int(math.Round(v))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
