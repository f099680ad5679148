package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigDirName, ConfigFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoader_OverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
chrome:
  binary: /usr/bin/chromium
  debug_port: 9333
driver:
  backend: cdp
monitor:
  poll_interval: 2s
  title_selector: ".now-playing .title"
`)

	l := NewLoader(dir, path)
	l.lookupEnv = noEnv

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/chromium", cfg.Chrome.Binary)
	assert.Equal(t, 9333, cfg.Chrome.DebugPort)
	assert.Equal(t, BackendCDP, cfg.Driver.Backend)
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollInterval)
	assert.Equal(t, ".now-playing .title", cfg.Monitor.TitleSelector)
	// untouched keys keep defaults
	assert.Equal(t, "ytmusic-player-bar .byline a", cfg.Monitor.ArtistSelector)
	assert.Equal(t, 9515, cfg.Driver.Port)
	assert.Equal(t, "https://music.youtube.com", cfg.Chrome.StartURL)
}

func TestLoader_DiscoversUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "log_file: tracks.txt\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	l := NewLoader(nested, "")
	l.lookupEnv = noEnv

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "tracks.txt", cfg.LogFile)
	assert.Equal(t, filepath.Join(root, ConfigDirName, ConfigFileName), l.ConfigPath())
}

func TestLoader_ExplicitMissingFile(t *testing.T) {
	l := NewLoader(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := l.Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "chrome:\n  debug_port: 9333\n")

	env := map[string]string{
		"YTMON_DEBUG_PORT":    "9444",
		"YTMON_CHROMEDRIVER":  "/opt/chromedriver",
		"YTMON_BACKEND":       "cdp",
		"YTMON_USER_DATA_DIR": "/tmp/profile",
	}
	l := NewLoader(dir, path)
	l.lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 9444, cfg.Chrome.DebugPort)
	assert.Equal(t, "/opt/chromedriver", cfg.Driver.Path)
	assert.Equal(t, BackendCDP, cfg.Driver.Backend)
	assert.Equal(t, "/tmp/profile", cfg.Chrome.UserDataDir)
}

func TestLoader_EnvOverrideRejectsBadInt(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "{}\n")

	l := NewLoader(dir, path)
	l.lookupEnv = func(k string) (string, bool) {
		if k == "YTMON_WAIT_TIME" {
			return "soon", true
		}
		return "", false
	}

	_, err := l.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YTMON_WAIT_TIME")
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Chrome.Binary = "/opt/chrome"
	cfg.Monitor.RetryInterval = 7 * time.Second

	l := NewLoader(dir, path)
	l.lookupEnv = noEnv
	require.NoError(t, l.Save(cfg, path))

	loaded, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
