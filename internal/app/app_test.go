package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/config"
	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
	"canvasdoc/internal/storage"
)

// noSecrets holds nothing.
type noSecrets struct{}

func (noSecrets) Set(string, []byte) error   { return nil }
func (noSecrets) Get(string) ([]byte, error) { return nil, nil }
func (noSecrets) Delete(string) error        { return nil }

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Store.Driver = driver
	cfg.Autosave = ""
	return cfg
}

func newApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, nil, Options{Secrets: noSecrets{}, Emitter: &service.MockEmitter{}})
	require.NoError(t, err)
	return a
}

func TestApp_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite")

	a := newApp(t, cfg)
	a.Editor().AddNewPage(ctx)
	a.Editor().AddNewPage(ctx)
	require.NoError(t, a.Shutdown(ctx))

	b := newApp(t, cfg)
	defer b.Shutdown(ctx)
	assert.Equal(t, 3, b.Editor().PageInfo().Count)
	assert.Equal(t, 2, b.Editor().PageInfo().Index)
}

func TestApp_MissingKeychainSecret(t *testing.T) {
	cfg := testConfig(t, "redis")
	cfg.Store.PasswordKeychainKey = "redis-password"
	_, err := New(context.Background(), cfg, nil, Options{Secrets: noSecrets{}})
	assert.ErrorContains(t, err, `secret "redis-password" not found`)
}

func TestApp_ExportTo(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(t, "file"))
	defer a.Shutdown(ctx)

	out := filepath.Join(t.TempDir(), "out")
	path, err := a.ExportTo(ctx, domain.FormatSnapshot, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "canvas-project-all-pages.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var p domain.Project
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Len(t, p.Pages, 1)
}

func TestApp_Import(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(t, "file"))
	defer a.Shutdown(ctx)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"pages":[{"id":"p1","scene":{"objects":[]}},{"id":"p2","scene":{"objects":[]}}],"currentPageIndex":0}`), 0o644))
	require.NoError(t, a.Import(ctx, good))
	assert.Equal(t, []string{"p1", "p2"}, a.Editor().PageInfo().PageIDs)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	assert.Error(t, a.Import(ctx, bad))
	assert.Equal(t, 2, a.Editor().PageInfo().Count)

	badScene := filepath.Join(dir, "bad-scene.json")
	require.NoError(t, os.WriteFile(badScene, []byte(`{"pages":[{"scene":5},{"scene":5}]}`), 0o644))
	assert.Error(t, a.Import(ctx, badScene))
	assert.Equal(t, []string{"p1", "p2"}, a.Editor().PageInfo().PageIDs)

	assert.Error(t, a.Import(ctx, filepath.Join(dir, "missing.json")))
}

func TestApp_ReadOnlyDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "file")

	a, err := New(ctx, cfg, nil, Options{Secrets: noSecrets{}, ReadOnly: true})
	require.NoError(t, err)
	a.Editor().AddNewPage(ctx)
	require.NoError(t, a.Shutdown(ctx))

	store, err := storage.NewFileStore(filepath.Join(cfg.DataDir, "projects"), nil)
	require.NoError(t, err)
	defer store.Close()
	_, found, err := store.Load(ctx, cfg.ProjectKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestApp_InvalidAutosaveSchedule(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite")
	cfg.Autosave = "every now and then"
	a := newApp(t, cfg)
	defer a.Shutdown(ctx)

	assert.Error(t, a.StartBackground(ctx))
}

func TestApp_WatchExternalReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig(t, "file")
	cfg.WatchExternal = true
	a := newApp(t, cfg)
	defer a.Shutdown(context.Background())
	require.NoError(t, a.StartBackground(ctx))

	path := filepath.Join(cfg.DataDir, "projects", cfg.ProjectKey+".json")
	data := `{"pages":[{"id":"x","scene":{"objects":[]}},{"id":"y","scene":{"objects":[]}},{"id":"z","scene":{"objects":[]}}],"currentPageIndex":2}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	assert.Eventually(t, func() bool {
		return a.Editor().PageInfo().Count == 3
	}, 5*time.Second, 50*time.Millisecond)
}
