package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasdoc/internal/domain"
)

func (s *Server) registerExportTools() {
	// ── export ─────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export",
		mcp.WithDescription("Export the document. svg and png cover the current page; json, html and docx cover all pages."),
		mcp.WithString("format",
			mcp.Description("Export format"),
			mcp.Enum("svg", "png", "json", "html", "docx"),
			mcp.Required(),
		),
		mcp.WithString("dir", mcp.Description("Directory to write the file to (optional; content is returned inline if omitted)")),
	), s.handleExport)
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "format")
	if err != nil {
		return nil, err
	}
	format, err := domain.ParseExportFormat(name)
	if err != nil {
		return nil, err
	}
	res, err := s.editor.Export(ctx, format)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	if dir, ok := args["dir"].(string); ok && dir != "" {
		path := filepath.Join(dir, res.Filename)
		if err := os.WriteFile(path, res.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write export: %w", err)
		}
		return textResult(fmt.Sprintf("Exported %s (%d bytes)", path, len(res.Data))), nil
	}

	switch format {
	case domain.FormatRaster:
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.ImageContent{Type: "image", Data: base64.StdEncoding.EncodeToString(res.Data), MIMEType: res.MIMEType},
			},
		}, nil
	case domain.FormatDocument:
		return textResult(base64.StdEncoding.EncodeToString(res.Data)), nil
	default:
		return textResult(string(res.Data)), nil
	}
}
