package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasdoc/internal/service"
)

func (s *Server) registerTableTools() {
	// ── insert_table ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_table",
		mcp.WithDescription("Insert a 400-unit wide table of 30-unit rows; columns get draggable resize boundaries"),
		mcp.WithNumber("rows", mcp.Description("Rows (1-10)"), mcp.Required()),
		mcp.WithNumber("cols", mcp.Description("Columns (1-10)"), mcp.Required()),
		mcp.WithBoolean("editable", mcp.Description("Put an editable text box in every cell (default true)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
	), s.handleInsertTable)

	// ── list_tables ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List tables on the current page with their column widths"),
	), s.handleListTables)

	// ── resize_table_column ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_table_column",
		mcp.WithDescription("Move the boundary on the left of a column; the neighbouring columns trade width and no column gets narrower than 10"),
		mcp.WithString("tableId", mcp.Description("ID of the table"), mcp.Required()),
		mcp.WithNumber("column", mcp.Description("Boundary index, 1..cols-1"), mcp.Required()),
		mcp.WithNumber("delta", mcp.Description("Horizontal shift in page units"), mcp.Required()),
	), s.handleResizeColumn)
}

type tableSummary struct {
	ID           string    `json:"id"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	ColumnWidths []float64 `json:"columnWidths"`
}

func summarizeTable(t *service.Table) tableSummary {
	return tableSummary{
		ID:           t.Container.ID,
		Rows:         t.Rows(),
		Cols:         t.Cols(),
		X:            t.Container.Left,
		Y:            t.Container.Top,
		ColumnWidths: t.ColumnWidths(),
	}
}

func (s *Server) handleInsertTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	rows, cols := getInt(args, "rows", 0), getInt(args, "cols", 0)
	t, err := s.editor.InsertTable(ctx, rows, cols, getBool(args, "editable", true))
	if err != nil {
		return nil, fmt.Errorf("insert table: %w", err)
	}
	id := t.Container.ID
	if _, err := s.place(ctx, id, args); err != nil {
		return nil, err
	}
	t, ok := s.editor.Table(id)
	if !ok {
		return nil, fmt.Errorf("%w: table %s", service.ErrNotFound, id)
	}
	return jsonResult(summarizeTable(t))
}

func (s *Server) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables := s.editor.Tables()
	out := make([]tableSummary, len(tables))
	for i, t := range tables {
		out[i] = summarizeTable(t)
	}
	return jsonResult(out)
}

func (s *Server) handleResizeColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "tableId")
	if err != nil {
		return nil, err
	}
	applied, err := s.editor.ResizeColumn(ctx, id, getInt(args, "column", 0), getFloat(args, "delta", 0))
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"applied": applied})
}
