package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
)

// Server is the MCP server for the document editor.
// It exposes tools, resources, and prompts so AI agents can build pages.
type Server struct {
	mcp    *server.MCPServer
	editor *service.Editor
	layout *LayoutEngine
	logger *zap.Logger
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Editor    *service.Editor
	PageWidth float64
	Logger    *zap.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageWidth := deps.PageWidth
	if pageWidth <= 0 {
		pageWidth = domain.PageWidth
	}
	s := &Server{
		editor: deps.Editor,
		layout: NewLayoutEngine(pageWidth),
		logger: logger,
	}

	s.mcp = server.NewMCPServer(
		"canvasdoc-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerObjectTools()
	s.registerTableTools()
	s.registerFormatTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// Listen serves MCP over in/out until ctx is done or in reaches EOF.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP stdio server")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer exposes the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// place moves a freshly created object to (x, y) when both are given, or to
// the next free slot on the page otherwise, and returns a copy of it.
func (s *Server) place(ctx context.Context, id string, args map[string]any) (*domain.Object, error) {
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		obj, err := s.object(id)
		if err != nil {
			return nil, err
		}
		var others []*domain.Object
		for _, o := range s.editor.Objects() {
			if o.ID != id && o.Handle == nil && o.Name != domain.NamePageBorder {
				others = append(others, o)
			}
		}
		_, _, w, h := obj.Bounds()
		x, y = s.layout.NextPosition(others, w, h)
	}
	if err := s.editor.MoveObject(ctx, id, x, y); err != nil {
		return nil, err
	}
	return s.object(id)
}

// object returns a copy of the object with the given ID.
func (s *Server) object(id string) (*domain.Object, error) {
	o, ok := s.editor.Object(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return o, nil
}
