package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "canvasEditorProject", cfg.ProjectKey)
	assert.Equal(t, "@every 30s", cfg.Autosave)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /tmp/canvas
store:
  driver: redis
  addr: localhost:6379
  password_keychain_key: canvas-redis
  db: 2
watch_external: true
log:
  verbose: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/canvas", cfg.DataDir)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "canvas-redis", cfg.Store.PasswordKeychainKey)
	assert.Equal(t, 2, cfg.Store.DB)
	assert.True(t, cfg.WatchExternal)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, 794.0, cfg.Page.Width, "unset keys keep defaults")
	assert.True(t, cfg.History)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"syntax": "store: [",
		"driver": "store:\n  driver: oracle\n",
		"page":   "page:\n  width: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
