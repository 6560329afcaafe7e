package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// ExportTo writes the export for format into dir and returns the file path.
func (a *App) ExportTo(ctx context.Context, format domain.ExportFormat, dir string) (string, error) {
	res, err := a.editor.Export(ctx, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, res.Filename)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("exported", zap.String("format", string(format)), zap.String("path", path), zap.Int("bytes", len(res.Data)))
	return path, nil
}

// Import replaces the project with a JSON snapshot (as written by the json
// export) and saves it.
func (a *App) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !a.editor.ApplyExternal(ctx, string(data)) {
		return errors.New("file is not a project snapshot")
	}
	return a.editor.SaveProject(ctx)
}
