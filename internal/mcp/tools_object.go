package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
)

func (s *Server) registerObjectTools() {
	// ── list_objects ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List the objects on the current page (id, type, position, size, text preview)"),
	), s.handleListObjects)

	// ── add_textbox ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_textbox",
		mcp.WithDescription("Add a text box to the current page"),
		mcp.WithString("text", mcp.Description("Initial text (default: placeholder)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
	), s.handleAddTextbox)

	// ── add_shape ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a preset shape to the current page"),
		mcp.WithString("kind",
			mcp.Description("Shape kind"),
			mcp.Enum(service.ShapeSquare, service.ShapeCircle, service.ShapeVLine, service.ShapeHLine),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
	), s.handleAddShape)

	// ── add_image ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_image",
		mcp.WithDescription("Add an image from a data URL (data:image/png;base64,...); large images are scaled to fit 300x300"),
		mcp.WithString("dataUrl", mcp.Description("Image data URL"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position (optional, centred if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, centred if omitted)")),
	), s.handleAddImage)

	// ── insert_field ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_field",
		mcp.WithDescription("Insert a {{field}} placeholder into the selected text box, or as a new text box"),
		mcp.WithString("name", mcp.Description("Field name"), mcp.Required()),
	), s.handleInsertField)

	// ── set_text ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_text",
		mcp.WithDescription("Replace the text of a text box or table cell text"),
		mcp.WithString("objectId", mcp.Description("ID of the text object"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text"), mcp.Required()),
	), s.handleSetText)

	// ── select_object ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_object",
		mcp.WithDescription("Make an object the active selection; formatting tools act on it"),
		mcp.WithString("objectId", mcp.Description("ID of the object"), mcp.Required()),
	), s.handleSelectObject)

	// ── move_object ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_object",
		mcp.WithDescription("Move a top-level object to a new position"),
		mcp.WithString("objectId", mcp.Description("ID of the object"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveObject)

	// ── duplicate_object / delete_object ───────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_object",
		mcp.WithDescription("Duplicate an object, offset by 20 units"),
		mcp.WithString("objectId", mcp.Description("ID of the object"), mcp.Required()),
	), s.handleDuplicateObject)
	s.mcp.AddTool(mcp.NewTool("delete_object",
		mcp.WithDescription("Delete an object from the current page"),
		mcp.WithString("objectId", mcp.Description("ID of the object"), mcp.Required()),
	), s.handleDeleteObject)

	// ── arrange_objects ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_objects",
		mcp.WithDescription("Lay out all objects on the current page in rows inside the page margins"),
	), s.handleArrangeObjects)
}

func (s *Server) handleListObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(visibleObjects(s.editor.Objects()))
}

func (s *Server) handleAddTextbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := s.editor.AddTextbox(ctx).ID
	if text, ok := args["text"].(string); ok && text != "" {
		if err := s.editor.SetText(ctx, id, text); err != nil {
			return nil, err
		}
	}
	tb, err := s.place(ctx, id, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(tb))
}

func (s *Server) handleAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := requireString(args, "kind")
	if err != nil {
		return nil, err
	}
	o, err := s.editor.AddShape(ctx, kind)
	if err != nil {
		return nil, err
	}
	if o, err = s.place(ctx, o.ID, args); err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(o))
}

func (s *Server) handleAddImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	src, err := requireString(args, "dataUrl")
	if err != nil {
		return nil, err
	}
	img, err := s.editor.AddImage(ctx, src)
	if err != nil {
		return nil, err
	}
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		if err := s.editor.MoveObject(ctx, img.ID, x, y); err != nil {
			return nil, err
		}
	}
	if img, err = s.object(img.ID); err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(img))
}

func (s *Server) handleInsertField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "name")
	if err != nil {
		return nil, err
	}
	o, err := s.object(s.editor.InsertField(ctx, name).ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(o))
}

func (s *Server) handleSetText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "objectId")
	if err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)
	if err := s.editor.SetText(ctx, id, text); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Text of %s updated", id)), nil
}

func (s *Server) handleSelectObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "objectId")
	if err != nil {
		return nil, err
	}
	if _, err := s.editor.Select(id); err != nil {
		return nil, err
	}
	o, err := s.object(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(o))
}

func (s *Server) handleMoveObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "objectId")
	if err != nil {
		return nil, err
	}
	x, y := getFloat(args, "x", 0), getFloat(args, "y", 0)
	if err := s.editor.MoveObject(ctx, id, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %s to (%.0f, %.0f)", id, x, y)), nil
}

func (s *Server) handleDuplicateObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "objectId")
	if err != nil {
		return nil, err
	}
	c, err := s.editor.DuplicateObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if c, err = s.object(c.ID); err != nil {
		return nil, err
	}
	return jsonResult(summarizeObject(c))
}

func (s *Server) handleDeleteObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "objectId")
	if err != nil {
		return nil, err
	}
	if err := s.editor.DeleteObject(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %s", id)), nil
}

func (s *Server) handleArrangeObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var objects []*domain.Object
	for _, o := range s.editor.Objects() {
		if o.Handle == nil && o.Name != domain.NamePageBorder {
			objects = append(objects, o)
		}
	}
	for i, pos := range s.layout.Arrange(objects) {
		if err := s.editor.MoveObject(ctx, objects[i].ID, pos[0], pos[1]); err != nil {
			return nil, err
		}
	}
	return jsonResult(visibleObjects(s.editor.Objects()))
}
