package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FEEDTERM_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.Server.URL)
	require.Equal(t, 60*time.Second, cfg.Server.Timeout)
	require.Equal(t, "sse", cfg.Stream.Transport)
	require.Equal(t, 3*time.Second, cfg.Stream.ReconnectDelay)
	require.Equal(t, 10, cfg.Timeline.PageSize)
	require.Equal(t, "/", cfg.UI.StartPath)
	require.Contains(t, cfg.Database.Path, filepath.Join(".local", "share", "feedterm"))
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "feedterm.toml")
	data := `
[server]
url = "https://nakama.example"
timeout = "5s"

[stream]
transport = "websocket"
reconnect_delay = "250ms"

[timeline]
page_size = 20
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("FEEDTERM_TIMELINE_PAGE_SIZE", "15")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://nakama.example", cfg.Server.URL)
	require.Equal(t, 5*time.Second, cfg.Server.Timeout)
	require.Equal(t, "websocket", cfg.Stream.Transport)
	require.Equal(t, 250*time.Millisecond, cfg.Stream.ReconnectDelay)
	require.Equal(t, 15, cfg.Timeline.PageSize)
}

func TestLoadFileMissingExplicit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:   ServerConfig{URL: "http://x"},
		Stream:   StreamConfig{Transport: "sse"},
		Timeline: TimelineConfig{PageSize: 10},
		UI:       UIConfig{StartPath: "/"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Stream.Transport = "carrier-pigeon"
	require.Error(t, bad.Validate())

	bad = base
	bad.Timeline.PageSize = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.UI.StartPath = "home"
	require.Error(t, bad.Validate())

	bad = base
	bad.Server.URL = " "
	require.Error(t, bad.Validate())
}
