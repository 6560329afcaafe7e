package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"canvasdoc/internal/domain"
)

// RenderPNG rasterizes a serialized scene.
func RenderPNG(snapshot json.RawMessage) ([]byte, error) {
	s, err := decodeSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		w, h = domain.PageWidth, domain.PageHeight
	}
	return renderPNG(s.Objects, w, h, s.Background)
}

func renderPNG(objects []*domain.Object, w, h float64, background string) ([]byte, error) {
	dc := gg.NewContext(int(math.Ceil(w)), int(math.Ceil(h)))
	dc.SetColor(color.White)
	dc.Clear()
	if bg, ok := parseColor(background, 1); ok {
		dc.SetColor(bg)
		dc.Clear()
	}

	for _, o := range objects {
		if err := drawPNG(dc, o, 0, 0); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawPNG(dc *gg.Context, o *domain.Object, ox, oy float64) error {
	if o.ExcludeFromExport || o.Opacity <= 0 {
		return nil
	}
	sx, sy := o.Scale()
	x, y := ox+o.Left, oy+o.Top

	switch o.Type {
	case domain.ObjectRect:
		dc.DrawRectangle(x, y, o.Width*sx, o.Height*sy)
		paintPath(dc, o)
	case domain.ObjectCircle:
		rx, ry := o.Radius*sx, o.Radius*sy
		dc.DrawEllipse(x+rx, y+ry, rx, ry)
		paintPath(dc, o)
	case domain.ObjectLine:
		dc.DrawLine(x+o.X1*sx, y+o.Y1*sy, x+o.X2*sx, y+o.Y2*sy)
		paintPath(dc, o)
	case domain.ObjectTextbox:
		drawPNGText(dc, o, x, y)
	case domain.ObjectImage:
		return drawPNGImage(dc, o, x, y)
	case domain.ObjectGroup:
		for _, ch := range o.Children {
			if err := drawPNG(dc, ch, x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// paintPath fills and strokes the current path according to the object style.
func paintPath(dc *gg.Context, o *domain.Object) {
	if fill, ok := parseColor(o.Fill, o.Opacity); ok && o.Type != domain.ObjectLine {
		dc.SetColor(fill)
		dc.FillPreserve()
	}
	if stroke, ok := parseColor(o.Stroke, o.Opacity); ok && o.StrokeWidth > 0 {
		dc.SetColor(stroke)
		dc.SetLineWidth(o.StrokeWidth)
		dc.SetDash(o.StrokeDashArray...)
		dc.StrokePreserve()
		dc.SetDash()
	}
	dc.ClearPath()
}

func drawPNGText(dc *gg.Context, o *domain.Object, x, y float64) {
	size := o.FontSize
	if size <= 0 {
		size = 16
	}
	c, ok := parseColor(o.Fill, o.Opacity)
	if !ok {
		c = color.Black
	}
	dc.SetFontFace(faces.get(o.FontWeight == "bold", o.FontStyle == "italic", size))
	dc.SetColor(c)

	sx, _ := o.Scale()
	width := o.Width * sx
	for i, line := range o.DisplayLines() {
		if line == "" {
			continue
		}
		top := y + float64(i)*size*lineHeight
		tx, ax := x, 0.0
		switch o.TextAlign {
		case "center":
			tx, ax = x+width/2, 0.5
		case "right":
			tx, ax = x+width, 1
		}
		dc.DrawStringAnchored(line, tx, top, ax, 1)
		if o.Underline {
			lw, _ := dc.MeasureString(line)
			ux := tx - ax*lw
			dc.SetLineWidth(math.Max(1, size/16))
			dc.DrawLine(ux, top+size+2, ux+lw, top+size+2)
			dc.Stroke()
		}
	}
}

func drawPNGImage(dc *gg.Context, o *domain.Object, x, y float64) error {
	img, err := decodeDataURL(o.Src)
	if err != nil {
		return fmt.Errorf("image %s: %w", o.ID, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	sx, sy := o.Scale()
	w, h := o.Width*sx, o.Height*sy
	if w == 0 || h == 0 {
		w, h = float64(b.Dx())*sx, float64(b.Dy())*sy
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
	return nil
}

// dataURLBytes returns the payload of a base64 "data:image/...;base64," URL.
func dataURLBytes(src string) ([]byte, error) {
	_, payload, ok := strings.Cut(src, ";base64,")
	if !ok {
		return nil, fmt.Errorf("unsupported image source")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

func decodeDataURL(src string) (image.Image, error) {
	raw, err := dataURLBytes(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

var namedColors = map[string]string{
	"black": "#000000",
	"white": "#ffffff",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
	"gray":  "#808080",
	"grey":  "#808080",
}

// parseColor converts a CSS colour into an RGBA colour with the given opacity
// applied. ok is false for empty, transparent or unparseable values.
func parseColor(s string, opacity float64) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" {
		return nil, false
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	alpha := 1.0
	var c colorful.Color
	switch {
	case strings.HasPrefix(s, "#"):
		parsed, err := colorful.Hex(s)
		if err != nil {
			return nil, false
		}
		c = parsed
	case strings.HasPrefix(s, "rgb"):
		var r, g, b float64
		open, end := strings.Index(s, "("), strings.LastIndex(s, ")")
		if open < 0 || end < open {
			return nil, false
		}
		parts := strings.Split(s[open+1:end], ",")
		if len(parts) < 3 {
			return nil, false
		}
		if _, err := fmt.Sscanf(strings.Join(parts[:3], " "), "%g %g %g", &r, &g, &b); err != nil {
			return nil, false
		}
		if len(parts) == 4 {
			if _, err := fmt.Sscanf(strings.TrimSpace(parts[3]), "%g", &alpha); err != nil {
				return nil, false
			}
		}
		c = colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	default:
		return nil, false
	}
	r, g, b := c.Clamped().RGB255()
	a := alpha * opacity
	if a <= 0 {
		return nil, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Min(a, 1) * 255))}, true
}

// ── Fonts ──────────────────────────────────────────────────

type faceKey struct {
	bold, italic bool
	size         float64
}

type faceCache struct {
	mu    sync.Mutex
	fonts map[[2]bool]*truetype.Font
	faces map[faceKey]font.Face
}

var faces = &faceCache{
	fonts: map[[2]bool]*truetype.Font{},
	faces: map[faceKey]font.Face{},
}

func (fc *faceCache) get(bold, italic bool, size float64) font.Face {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	k := faceKey{bold, italic, size}
	if f, ok := fc.faces[k]; ok {
		return f
	}
	ttf, ok := fc.fonts[[2]bool{bold, italic}]
	if !ok {
		src := goregular.TTF
		switch {
		case bold && italic:
			src = gobolditalic.TTF
		case bold:
			src = gobold.TTF
		case italic:
			src = goitalic.TTF
		}
		// Embedded Go fonts always parse.
		ttf, _ = truetype.Parse(src)
		fc.fonts[[2]bool{bold, italic}] = ttf
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	fc.faces[k] = f
	return f
}

// ImageSize returns the pixel size of an image data URL.
func ImageSize(src string) (int, int, error) {
	raw, err := dataURLBytes(src)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
