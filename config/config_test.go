package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.API.URL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Push.ReconnectGraceSeconds)
	assert.Empty(t, cfg.Auth.Token)
	assert.False(t, cfg.Log.JSON)
}

func TestWebSocketURLDerivedFromAPIURL(t *testing.T) {
	cfg := Config{API: APIConfig{URL: "https://gen.example.com"}}
	assert.Equal(t, "wss://gen.example.com/ws/generation", cfg.WebSocketURL())

	cfg.API.URL = "http://localhost:3000"
	assert.Equal(t, "ws://localhost:3000/ws/generation", cfg.WebSocketURL())

	cfg.Push.URL = "wss://push.example.com/ws"
	assert.Equal(t, "wss://push.example.com/ws", cfg.WebSocketURL())
}

func TestTokenFromEnvironment(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GENSYNC_TOKEN", "sekrit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Auth.Token)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gensync.toml")
	body := []byte("[api]\nurl = \"https://gen.example.com\"\ntimeout_seconds = 10\n\n[push]\nreconnect_grace_seconds = 2\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gen.example.com", cfg.API.URL)
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Push.ReconnectGraceSeconds)
	// Values absent from the file keep their defaults.
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
