package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
)

func (s *Server) registerFormatTools() {
	// ── format_text ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("format_text",
		mcp.WithDescription("Format a text box. Only the given options change."),
		mcp.WithString("objectId", mcp.Description("ID of the text box"), mcp.Required()),
		mcp.WithString("toggle", mcp.Description("Comma-separated styles to toggle: bold, italic, underline")),
		mcp.WithString("color", mcp.Description("Text colour, e.g. #1976d2")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in px")),
		mcp.WithString("fontFamily", mcp.Description("Font family")),
		mcp.WithString("align", mcp.Description("left, center or right")),
		mcp.WithString("list", mcp.Description("Toggle a list on every line: bullet or numbered")),
	), s.handleFormatText)

	// ── apply_border / remove_border ───────────────────
	s.mcp.AddTool(mcp.NewTool("apply_border",
		mcp.WithDescription("Draw a border around the current page, inset by per-side padding"),
		mcp.WithNumber("width", mcp.Description("Stroke width (default 1)")),
		mcp.WithString("style", mcp.Description("solid, dashed, dotted or double")),
		mcp.WithString("color", mcp.Description("Stroke colour (default #000000)")),
		mcp.WithNumber("top", mcp.Description("Top padding (default 10)")),
		mcp.WithNumber("right", mcp.Description("Right padding (default 10)")),
		mcp.WithNumber("bottom", mcp.Description("Bottom padding (default 10)")),
		mcp.WithNumber("left", mcp.Description("Left padding (default 10)")),
	), s.handleApplyBorder)
	s.mcp.AddTool(mcp.NewTool("remove_border",
		mcp.WithDescription("Remove the border from the current page"),
	), s.handleRemoveBorder)
}

func (s *Server) handleFormatText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "objectId")
	if err != nil {
		return nil, err
	}
	o, err := s.editor.Select(id)
	if err != nil {
		return nil, err
	}
	if !o.IsText() {
		return nil, fmt.Errorf("object %s is a %s, not a text box", id, o.Type)
	}

	if toggle, ok := args["toggle"].(string); ok {
		for _, f := range strings.Split(toggle, ",") {
			if f = strings.TrimSpace(f); f == "" {
				continue
			}
			if err := s.editor.ToggleFormat(ctx, f); err != nil {
				return nil, err
			}
		}
	}
	if color, ok := args["color"].(string); ok && color != "" {
		s.editor.SetTextColor(ctx, color)
	}
	if size := getFloat(args, "fontSize", 0); size > 0 {
		s.editor.SetFontSize(ctx, size)
	}
	if family, ok := args["fontFamily"].(string); ok && family != "" {
		s.editor.SetFontFamily(ctx, family)
	}
	if align, ok := args["align"].(string); ok && align != "" {
		if err := s.editor.AlignText(ctx, align); err != nil {
			return nil, err
		}
	}
	if list, ok := args["list"].(string); ok && list != "" {
		if err := s.editor.ToggleList(ctx, domain.ListKind(list)); err != nil {
			return nil, err
		}
	}
	return jsonResult(o)
}

func (s *Server) handleApplyBorder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	def := domain.DefaultBorder()
	num := func(key string, fallback int) string {
		return strconv.Itoa(getInt(args, key, fallback))
	}
	in := service.BorderInput{
		Width:  num("width", def.Width),
		Style:  req.GetString("style", string(def.Style)),
		Color:  req.GetString("color", def.Color),
		Top:    num("top", def.Padding.Top),
		Right:  num("right", def.Padding.Right),
		Bottom: num("bottom", def.Padding.Bottom),
		Left:   num("left", def.Padding.Left),
	}
	return jsonResult(s.editor.ApplyPageBorder(ctx, in))
}

func (s *Server) handleRemoveBorder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.editor.RemovePageBorder(ctx)
	return textResult("Page border removed"), nil
}
