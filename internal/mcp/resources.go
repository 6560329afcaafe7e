package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasdoc/internal/scene"
)

const (
	projectURI = "canvasdoc://project"
	pagePrefix = "canvasdoc://page/"
	pageSuffix = "/svg"
)

func (s *Server) registerResources() {
	// ── canvasdoc://project ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		projectURI,
		"Project",
		mcp.WithResourceDescription("All pages with their scene snapshots and borders"),
		mcp.WithMIMEType("application/json"),
	), s.handleProjectResource)

	// ── canvasdoc://page/{index}/svg ───────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pagePrefix+"{index}"+pageSuffix,
			"Page as SVG",
			mcp.WithTemplateMIMEType("image/svg+xml"),
		),
		s.handlePageSVGResource,
	)
}

func (s *Server) handleProjectResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.editor.Project(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      projectURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageSVGResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	index, err := pageIndexFromURI(uri)
	if err != nil {
		return nil, err
	}

	// Stored snapshots lag the live page until it is saved.
	s.editor.SaveCurrentPage()
	pages := s.editor.Project().Pages
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", index, len(pages))
	}
	svg, err := scene.RenderSVG(pages[index].Scene)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "image/svg+xml",
			Text:     svg,
		},
	}, nil
}

// pageIndexFromURI extracts the zero-based index from "canvasdoc://page/{index}/svg".
func pageIndexFromURI(uri string) (int, error) {
	rest, ok := strings.CutPrefix(uri, pagePrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected resource URI: %s", uri)
	}
	rest, ok = strings.CutSuffix(rest, pageSuffix)
	if !ok {
		return 0, fmt.Errorf("unexpected resource URI: %s", uri)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid page index in %s: %w", uri, err)
	}
	return n, nil
}
