package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"canvasdoc/internal/app"
	"canvasdoc/internal/domain"
)

var currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4361ee"))

type pageRow struct {
	Number  int                 `json:"number"`
	ID      string              `json:"id"`
	Current bool                `json:"current"`
	Objects int                 `json:"objects"`
	Border  domain.BorderConfig `json:"border"`
}

func pageRows(p domain.Project) []pageRow {
	rows := make([]pageRow, len(p.Pages))
	for i, page := range p.Pages {
		var snap domain.SceneSnapshot
		_ = json.Unmarshal(page.Scene, &snap)
		n := 0
		for _, o := range snap.Objects {
			if o.Handle == nil && o.Name != domain.NamePageBorder {
				n++
			}
		}
		rows[i] = pageRow{
			Number:  i + 1,
			ID:      page.ID,
			Current: i == p.CurrentPageIndex,
			Objects: n,
			Border:  page.Border,
		}
	}
	return rows
}

func pagesCmd() *cobra.Command {
	var format string

	cmd := cobra.Command{
		Use:     "pages",
		Aliases: []string{"ls"},
		Short:   "List the pages of the stored project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), true, func(a *app.App) error {
				rows := pageRows(a.Editor().Project())
				switch format {
				case "json":
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(rows)
				case "table":
					return renderPagesTable(cmd, rows)
				default:
					return fmt.Errorf("invalid format: %s", format)
				}
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json)")

	return &cmd
}

func renderPagesTable(cmd *cobra.Command, rows []pageRow) error {
	t := term.FromEnv()
	isTTY := t.IsTerminalOutput()
	width, _, err := t.Size()
	if err != nil {
		width = 80
	}

	table := tableprinter.New(cmd.OutOrStdout(), isTTY, width)
	table.AddField("PAGE")
	table.AddField("ID")
	table.AddField("OBJECTS")
	table.AddField("BORDER")
	table.EndRow()

	for _, r := range rows {
		page := strconv.Itoa(r.Number)
		if r.Current {
			page += "*"
			if isTTY {
				page = currentStyle.Render(page)
			}
		}
		table.AddField(page)
		table.AddField(r.ID)
		table.AddField(strconv.Itoa(r.Objects))
		table.AddField(describeBorder(r.Border))
		table.EndRow()
	}
	return table.Render()
}

func describeBorder(b domain.BorderConfig) string {
	if !b.Enabled {
		return "-"
	}
	p := b.Padding
	return strings.Join([]string{
		fmt.Sprintf("%dpx %s %s", b.Width, b.Style, b.Color),
		fmt.Sprintf("padding %d/%d/%d/%d", p.Top, p.Right, p.Bottom, p.Left),
	}, ", ")
}
