package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of the document and the current page index"),
	), s.handleListPages)

	// ── add_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Append a blank page and make it current"),
	), s.handleAddPage)

	// ── navigate_page ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("navigate_page",
		mcp.WithDescription("Move to another page by a relative offset (-1 previous, 1 next)"),
		mcp.WithNumber("direction",
			mcp.Description("Relative page offset"),
			mcp.Required(),
		),
	), s.handleNavigatePage)

	// ── save_project / load_project ────────────────────
	s.mcp.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Persist every page of the document"),
	), s.handleSaveProject)
	s.mcp.AddTool(mcp.NewTool("load_project",
		mcp.WithDescription("Reload the document from storage, discarding unsaved changes"),
	), s.handleLoadProject)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change on the current page"),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the most recently undone change on the current page"),
	), s.handleRedo)

	// ── change_zoom ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("change_zoom",
		mcp.WithDescription("Change the zoom level by a delta in percent; the result is clamped to 10..200"),
		mcp.WithNumber("delta",
			mcp.Description("Percent to add, e.g. 10 or -10"),
			mcp.Required(),
		),
	), s.handleChangeZoom)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.PageInfo())
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.editor.AddNewPage(ctx)
	return jsonResult(s.editor.PageInfo())
}

func (s *Server) handleNavigatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	direction := getInt(req.GetArguments(), "direction", 0)
	if !s.editor.NavigatePage(ctx, direction) {
		info := s.editor.PageInfo()
		return nil, fmt.Errorf("cannot move %d from page %d of %d", direction, info.Index+1, info.Count)
	}
	return jsonResult(s.editor.PageInfo())
}

func (s *Server) handleSaveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.editor.SaveProject(ctx); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return textResult("Project saved"), nil
}

func (s *Server) handleLoadProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.editor.LoadProject(ctx); err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return jsonResult(s.editor.PageInfo())
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.editor.Undo(ctx)
	if err != nil {
		return nil, fmt.Errorf("undo: %w", err)
	}
	if !ok {
		return textResult("Nothing to undo"), nil
	}
	return textResult("Undone"), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.editor.Redo(ctx)
	if err != nil {
		return nil, fmt.Errorf("redo: %w", err)
	}
	if !ok {
		return textResult("Nothing to redo"), nil
	}
	return textResult("Redone"), nil
}

func (s *Server) handleChangeZoom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	z := s.editor.ChangeZoom(ctx, getInt(req.GetArguments(), "delta", 0))
	return textResult(fmt.Sprintf("Zoom: %d%%", z)), nil
}
