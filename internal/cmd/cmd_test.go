package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "data_dir: " + filepath.Join(dir, "data") + "\nstore:\n  driver: file\nautosave: \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExportAndPages(t *testing.T) {
	conf := writeConfig(t)
	outDir := t.TempDir()

	out, err := run(t, "--config", conf, "export", "-f", "json", "-f", "svg", "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(outDir, "canvas-project-all-pages.json"))
	assert.FileExists(t, filepath.Join(outDir, "canvas-export-page1.svg"))

	out, err = run(t, "--config", conf, "pages", "--format", "json")
	require.NoError(t, err)
	var rows []pageRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Current)
	assert.Equal(t, 1, rows[0].Objects)

	stored := filepath.Join(filepath.Dir(conf), "data", "projects", domain.DefaultProjectKey+".json")
	assert.NoFileExists(t, stored, "read-only commands do not write the project")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "export", "-f", "pdf")
	assert.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestImport(t *testing.T) {
	conf := writeConfig(t)
	snapshot := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(snapshot,
		[]byte(`{"pages":[{"id":"a","scene":{"objects":[]}},{"id":"b","scene":{"objects":[]}}],"currentPageIndex":1}`), 0o644))

	out, err := run(t, "--config", conf, "import", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 pages")

	out, err = run(t, "--config", conf, "pages", "--format", "table")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "2*")
	assert.Contains(t, lines[2], "b")

	_, err = run(t, "--config", conf, "import")
	assert.Error(t, err)
}

func TestDescribeBorder(t *testing.T) {
	assert.Equal(t, "-", describeBorder(domain.DefaultBorder()))

	b := domain.DefaultBorder()
	b.Enabled = true
	b.Width = 2
	b.Style = domain.BorderDashed
	assert.Equal(t, "2px dashed #000000, padding 10/10/10/10", describeBorder(b))
}

func TestPageRowsCountsContentOnly(t *testing.T) {
	scene := `{"objects":[{"id":"1","type":"rect"},{"id":"2","type":"rect","name":"pageBorder"},{"id":"3","type":"rect","handle":{"tableId":"t","columnIndex":1}}]}`
	rows := pageRows(domain.Project{Pages: []domain.Page{{ID: "p", Scene: json.RawMessage(scene)}}})
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Objects)
	assert.True(t, rows[0].Current)
}
