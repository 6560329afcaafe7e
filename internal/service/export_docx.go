package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"canvasdoc/internal/domain"
)

// buildDocx converts every page into Word paragraphs and tables. Text boxes
// and tables are emitted top-to-bottom; shapes and images are skipped.
func buildDocx(p domain.Project) ([]byte, error) {
	doc := document.New()

	for i, page := range p.Pages {
		if i > 0 {
			doc.AddParagraph().AddRun().AddPageBreak()
		}

		var snap domain.SceneSnapshot
		if err := json.Unmarshal(page.Scene, &snap); err != nil {
			return nil, fmt.Errorf("decode page %d: %w", i+1, err)
		}

		objs := make([]*domain.Object, 0, len(snap.Objects))
		for _, o := range snap.Objects {
			if !o.ExcludeFromExport && o.Name != domain.NamePageBorder {
				objs = append(objs, o)
			}
		}
		sort.SliceStable(objs, func(a, b int) bool {
			if objs[a].Top != objs[b].Top {
				return objs[a].Top < objs[b].Top
			}
			return objs[a].Left < objs[b].Left
		})

		for _, o := range objs {
			switch {
			case o.Table != nil:
				addDocxTable(doc, o)
			case o.Type == domain.ObjectTextbox:
				addDocxText(doc, o)
			case o.Type == domain.ObjectGroup:
				o.Walk(func(n *domain.Object) {
					if n.Type == domain.ObjectTextbox {
						addDocxText(doc, n)
					}
				})
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addDocxText(doc *document.Document, o *domain.Object) {
	for _, line := range o.DisplayLines() {
		para := doc.AddParagraph()
		switch o.TextAlign {
		case "center":
			para.Properties().SetAlignment(wml.ST_JcCenter)
		case "right":
			para.Properties().SetAlignment(wml.ST_JcRight)
		}
		run := para.AddRun()
		styleRun(run, o)
		run.AddText(line)
	}
}

func styleRun(run document.Run, o *domain.Object) {
	props := run.Properties()
	if o.FontWeight == "bold" {
		props.SetBold(true)
	}
	if o.FontStyle == "italic" {
		props.SetItalic(true)
	}
	if o.Underline {
		props.SetUnderline(wml.ST_UnderlineSingle, color.Auto)
	}
	if o.FontSize > 0 {
		// Scene sizes are CSS pixels; Word sizes are points.
		props.SetSize(measurement.Distance(o.FontSize*0.75) * measurement.Point)
	}
	if o.FontFamily != "" {
		props.SetFontFamily(o.FontFamily)
	}
	if c := sanitizeHex(o.Fill); c != "" {
		props.SetColor(color.FromHex(c))
	}
}

func addDocxTable(doc *document.Document, o *domain.Object) {
	t := &Table{Container: o}
	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	table.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, measurement.Point)

	widths := t.ColumnWidths()
	for r := 0; r < t.Rows(); r++ {
		row := table.AddRow()
		for c := 0; c < t.Cols(); c++ {
			cell := row.AddCell()
			if c < len(widths) {
				cell.Properties().SetWidth(measurement.Distance(widths[c]*0.75) * measurement.Point)
			}
			para := cell.AddParagraph()
			group := t.Cell(r, c)
			if group == nil {
				continue
			}
			if _, text := cellParts(group); text != nil && text.Text != "" {
				run := para.AddRun()
				styleRun(run, text)
				run.AddText(text.DisplayText())
			}
		}
	}
}

// sanitizeHex returns a 6-digit hex colour with leading '#', or "".
func sanitizeHex(s string) string {
	if len(s) != 7 || s[0] != '#' {
		return ""
	}
	for _, r := range s[1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return ""
		}
	}
	return s
}
