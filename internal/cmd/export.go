package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"canvasdoc/internal/app"
	"canvasdoc/internal/domain"
	"canvasdoc/internal/log"
)

// withApp opens the configured project, runs fn and shuts the app down. A
// read-only run never writes the project back.
func withApp(ctx context.Context, readOnly bool, fn func(*app.App) error) (err error) {
	a, err := app.New(ctx, cfg, log.Get(), app.Options{ReadOnly: readOnly})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Shutdown(context.WithoutCancel(ctx)))
	}()
	return fn(a)
}

func exportCmd() *cobra.Command {
	var (
		formats []string
		outDir  string
	)

	cmd := cobra.Command{
		Use:   "export",
		Short: "Export the stored project",
		Long: `Export the stored project to files.

svg and png render the current page; json, html and docx cover all pages.`,
		Example: `  canvasdoc export --format html --format png --out ./out`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]domain.ExportFormat, 0, len(formats))
			for _, f := range formats {
				format, err := domain.ParseExportFormat(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, format)
			}
			return withApp(cmd.Context(), true, func(a *app.App) error {
				for _, format := range parsed {
					path, err := a.ExportTo(cmd.Context(), format, outDir)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"html"}, "Export format (svg, png, json, html, docx). Repeatable.")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory.")

	return &cmd
}

func importCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored project with a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), false, func(a *app.App) error {
				if err := a.Import(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d pages\n", a.Editor().PageInfo().Count)
				return nil
			})
		},
	}
	return &cmd
}
