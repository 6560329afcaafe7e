package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
	"canvasdoc/internal/service"
	"canvasdoc/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *service.Editor) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := scene.New(domain.PageWidth, domain.PageHeight)
	c.MarkReady()
	ed := service.NewEditor(service.EditorDeps{Scene: c, Store: store, Emitter: &service.MockEmitter{}})
	require.NoError(t, ed.Start(context.Background()))
	t.Cleanup(ed.Close)

	return New(Deps{Editor: ed}), ed
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestTools_PageFlow(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)

	_, err := s.handleAddPage(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, ed.PageInfo().Count)

	_, err = s.handleNavigatePage(ctx, call(map[string]any{"direction": float64(1)}))
	assert.Error(t, err, "no page after the last")

	res, err := s.handleNavigatePage(ctx, call(map[string]any{"direction": float64(-1)}))
	require.NoError(t, err)
	var info service.PageInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &info))
	assert.Equal(t, 0, info.Index)
	assert.Len(t, info.PageIDs, 2)
}

func TestTools_AddTextboxAutoPlaces(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)

	res, err := s.handleAddTextbox(ctx, call(map[string]any{"text": "Hello"}))
	require.NoError(t, err)
	var got objectSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "Hello", got.Text)

	// The starter text box sits in the middle; the new one lands top-left.
	assert.Equal(t, Margin, got.X)
	assert.Equal(t, Margin, got.Y)
	assert.Len(t, ed.Objects(), 2)
}

func TestTools_AddShapeAtPosition(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)

	res, err := s.handleAddShape(ctx, call(map[string]any{"kind": "circle", "x": float64(100), "y": float64(200)}))
	require.NoError(t, err)
	var got objectSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "circle", got.Type)
	assert.Equal(t, 100.0, got.X)
	assert.Equal(t, 200.0, got.Y)

	_, err = s.handleAddShape(ctx, call(map[string]any{"kind": "star"}))
	assert.Error(t, err)
}

func TestTools_TableResizeAndMove(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)

	res, err := s.handleInsertTable(ctx, call(map[string]any{
		"rows": float64(2), "cols": float64(3), "x": float64(50), "y": float64(60),
	}))
	require.NoError(t, err)
	var tbl tableSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &tbl))
	assert.Equal(t, 50.0, tbl.X)
	assert.Equal(t, 60.0, tbl.Y)

	tables := ed.Tables()
	require.Len(t, tables, 1)
	handle := tables[0].Handles[0]
	assert.InDelta(t, 50+400.0/3-2, handle.Left, 1e-9, "handles follow the moved table")

	res, err = s.handleResizeColumn(ctx, call(map[string]any{
		"tableId": tbl.ID, "column": float64(1), "delta": float64(20),
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"applied": 20}`, resultText(t, res))
	assert.InDelta(t, 400.0/3+20, ed.Tables()[0].ColumnWidths()[0], 1e-9)

	_, err = s.handleResizeColumn(ctx, call(map[string]any{
		"tableId": tbl.ID, "column": float64(3), "delta": float64(20),
	}))
	assert.Error(t, err)
}

func TestTools_FormatText(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)
	id := ed.Objects()[0].ID

	_, err := s.handleFormatText(ctx, call(map[string]any{
		"objectId": id,
		"toggle":   "bold, underline",
		"fontSize": float64(32),
		"align":    "center",
		"list":     "bullet",
	}))
	require.NoError(t, err)

	tb := ed.Objects()[0]
	assert.Equal(t, "bold", tb.FontWeight)
	assert.True(t, tb.Underline)
	assert.Equal(t, 32.0, tb.FontSize)
	assert.Equal(t, "center", tb.TextAlign)
	assert.Equal(t, domain.ListBullet, tb.LineList(0))

	_, err = s.handleFormatText(ctx, call(map[string]any{"objectId": id, "align": "justify"}))
	assert.Error(t, err)
}

func TestTools_Border(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)

	_, err := s.handleApplyBorder(ctx, call(map[string]any{"width": float64(3), "style": "dashed"}))
	require.NoError(t, err)
	b := ed.Border()
	assert.True(t, b.Enabled)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, domain.BorderDashed, b.Style)
	assert.Equal(t, domain.DefaultBorder().Padding, b.Padding)

	_, err = s.handleRemoveBorder(ctx, call(nil))
	require.NoError(t, err)
	assert.False(t, ed.Border().Enabled)
}

func TestTools_ExportInlineAndToDir(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)

	res, err := s.handleExport(ctx, call(map[string]any{"format": "svg"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "<svg")

	res, err = s.handleExport(ctx, call(map[string]any{"format": "png"}))
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	img, ok := res.Content[0].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)

	dir := t.TempDir()
	_, err = s.handleExport(ctx, call(map[string]any{"format": "html", "dir": dir}))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "canvas-export-all-pages.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Page 1 of 1")

	_, err = s.handleExport(ctx, call(map[string]any{"format": "pdf"}))
	assert.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestTools_ArrangeObjects(t *testing.T) {
	ctx := context.Background()
	s, ed := newTestServer(t)
	for range 3 {
		_, err := s.handleAddShape(ctx, call(map[string]any{"kind": "square", "x": float64(300), "y": float64(300)}))
		require.NoError(t, err)
	}

	_, err := s.handleArrangeObjects(ctx, call(nil))
	require.NoError(t, err)

	objs := ed.Objects()
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			assert.False(t, bounds(objs[i]).intersects(bounds(objs[j])), "objects %d and %d overlap", i, j)
		}
	}
}

func TestPageSVGResource(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = "canvasdoc://page/0/svg"
	contents, err := s.handlePageSVGResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "Type here...")

	req.Params.URI = "canvasdoc://page/4/svg"
	_, err = s.handlePageSVGResource(ctx, req)
	assert.Error(t, err)
}

func TestPageIndexFromURI(t *testing.T) {
	n, err := pageIndexFromURI("canvasdoc://page/12/svg")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"canvasdoc://page/x/svg", "other://page/1/svg", "canvasdoc://page/1"} {
		_, err := pageIndexFromURI(bad)
		assert.Error(t, err, bad)
	}
}
