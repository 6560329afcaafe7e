package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Export Service: svg, png, json, html and docx outputs
// ─────────────────────────────────────────────────────────────

const (
	mimeSVG  = "image/svg+xml"
	mimePNG  = "image/png"
	mimeJSON = "application/json"
	mimeHTML = "text/html"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type ExportService struct {
	scene  Scene
	doc    *DocumentService
	logger *zap.Logger
}

func NewExportService(scene Scene, doc *DocumentService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{scene: scene, doc: doc, logger: logger}
}

// Export saves the current page and renders the job's format.
func (s *ExportService) Export(ctx context.Context, job domain.ExportJob) (*domain.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	project := s.doc.Project()
	page := project.CurrentPageIndex + 1

	var res *domain.ExportResult
	var err error
	switch job.Format {
	case domain.FormatVector:
		var out string
		out, err = s.scene.SVG()
		res = &domain.ExportResult{
			Filename: fmt.Sprintf("canvas-export-page%d.svg", page),
			MIMEType: mimeSVG,
			Data:     []byte(out),
		}
	case domain.FormatRaster:
		var out []byte
		out, err = s.scene.PNG()
		res = &domain.ExportResult{
			Filename: fmt.Sprintf("canvas-export-page%d.png", page),
			MIMEType: mimePNG,
			Data:     out,
		}
	case domain.FormatSnapshot:
		var out []byte
		out, err = json.Marshal(project)
		res = &domain.ExportResult{
			Filename: "canvas-project-all-pages.json",
			MIMEType: mimeJSON,
			Data:     out,
		}
	case domain.FormatMarkup:
		var out string
		out, err = s.markup(project)
		res = &domain.ExportResult{
			Filename: "canvas-export-all-pages.html",
			MIMEType: mimeHTML,
			Data:     []byte(out),
		}
	case domain.FormatDocument:
		var out []byte
		out, err = buildDocx(project)
		res = &domain.ExportResult{
			Filename: "canvas-export-all-pages.docx",
			MIMEType: mimeDOCX,
			Data:     out,
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, job.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", job.Format, err)
	}

	s.logger.Info("exported",
		zap.String("format", string(job.Format)),
		zap.String("file", res.Filename),
		zap.Int("bytes", len(res.Data)),
	)
	return res, nil
}

// ── Markup ─────────────────────────────────────────────────

var markupTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Canvas Export - All Pages</title>
  <style>
    @media print {
      @page {
        size: A4;
        margin: 0;
      }
      .page-break {
        page-break-after: always;
      }
    }
    body {
      margin: 0;
      padding: 0;
      background-color: #f0f0f0;
    }
    .page-container {
      display: flex;
      flex-direction: column;
      align-items: center;
      padding: 20px;
    }
    .page {
      width: 794px;
      height: 1123px;
      background-color: white;
      box-shadow: 0 4px 8px rgba(0, 0, 0, 0.1);
      margin-bottom: 20px;
      overflow: hidden;
    }
    .page:last-child {
      margin-bottom: 0;
    }
    .page-number {
      text-align: center;
      font-family: Arial, sans-serif;
      color: #777;
      margin-bottom: 5px;
    }
  </style>
</head>
<body>
<div class="page-container">
{{- range $i, $p := .Pages}}
{{- if $i}}
  <div class="page-break"></div>
{{- end}}
  <div class="page-number">Page {{$p.Number}} of {{$.Total}}</div>
  <div class="page">
    {{$p.SVG}}
  </div>
{{- end}}
</div>
</body>
</html>
`))

type markupPage struct {
	Number int
	SVG    template.HTML
}

// markup renders every page from its stored snapshot: the current page first,
// then the others in document order. The live scene is not touched.
func (s *ExportService) markup(p domain.Project) (string, error) {
	order := make([]int, 0, len(p.Pages))
	order = append(order, p.CurrentPageIndex)
	for i := range p.Pages {
		if i != p.CurrentPageIndex {
			order = append(order, i)
		}
	}

	data := struct {
		Pages []markupPage
		Total int
	}{Total: len(p.Pages)}

	for _, i := range order {
		out, err := s.scene.RenderSVG(p.Pages[i].Scene)
		if err != nil {
			return "", fmt.Errorf("render page %d: %w", i+1, err)
		}
		data.Pages = append(data.Pages, markupPage{
			Number: i + 1,
			SVG:    template.HTML(stripXMLDecl(out)),
		})
	}

	var b strings.Builder
	if err := markupTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute markup template: %w", err)
	}
	return b.String(), nil
}

// stripXMLDecl drops anything before the <svg element so it can be inlined.
func stripXMLDecl(svg string) string {
	if i := strings.Index(svg, "<svg"); i > 0 {
		return svg[i:]
	}
	return svg
}
