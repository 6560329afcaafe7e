package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("create_report",
		mcp.WithPromptDescription("Lay out a multi-page report with a title, body text and a data table"),
		mcp.WithArgument("title",
			mcp.ArgumentDescription("Report title"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("pages",
			mcp.ArgumentDescription("Number of pages (default 2)"),
		),
	), s.handleReportPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("create_template",
		mcp.WithPromptDescription("Build a fill-in template (letter, invoice, certificate) using {{field}} placeholders"),
		mcp.WithArgument("kind",
			mcp.ArgumentDescription("Kind of template, e.g. invoice"),
			mcp.RequiredArgument(),
		),
	), s.handleTemplatePrompt)
}

func (s *Server) handleReportPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := req.Params.Arguments["title"]
	pages := req.Params.Arguments["pages"]
	if pages == "" {
		pages = "2"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Create a report: %s", title),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a %s-page report titled "%s". Follow these steps:

1. Use list_pages to see where you are; add pages with add_page until there are %s.
2. Go back to the first page with navigate_page and add a title with add_textbox, then make it bold and 32px with format_text.
3. Add body text boxes below the title. Omit x/y so they are auto-placed inside the margins.
4. On the second page insert a table with insert_table and fill cells with set_text; widen the first column with resize_table_column.
5. Apply a thin solid border to every page with apply_border.
6. Save with save_project, then export html to review all pages.`, pages, title, pages),
				},
			},
		},
	}, nil
}

func (s *Server) handleTemplatePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	kind := req.Params.Arguments["kind"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Create a %s template", kind),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a %s template on the current page.

- Put fixed wording in text boxes (add_textbox).
- Where a value will be filled in later, select the text box and use insert_field with a short camelCase name, e.g. customerName.
- Use add_shape hline for separators.
- Finish with arrange_objects if the layout got crowded, then save_project.`, kind),
				},
			},
		},
	}, nil
}
