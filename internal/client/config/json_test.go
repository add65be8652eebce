package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	isolateEnv(t)

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":      "http://www.example:9000",
		"auth_url":          "https://project.supabase.co",
		"link_reload_delay": "5s",
		"request_timeout":   int64(3 * time.Second),
		"log_format":        "json",
	})

	t.Run("loads from flags", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "http://www.example:9000", cfg.APIBaseURL)
		assert.Equal(t, "https://project.supabase.co", cfg.AuthURL)
		assert.Equal(t, 5*time.Second, cfg.LinkReloadDelay)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "http://localhost:5173", cfg.RedirectURL, "absent fields keep their value")
	})

	t.Run("loads from CATALOG_CONFIG", func(t *testing.T) {
		t.Setenv("CATALOG_CONFIG", pathFlag)

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "http://www.example:9000", cfg.APIBaseURL)
	})

	t.Run("no config and no flags → no changes", func(t *testing.T) {
		cfg := &Config{
			APIBaseURL:      "http://defaults:1234",
			LinkReloadDelay: 42 * time.Second,
		}
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "http://defaults:1234", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.LinkReloadDelay)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Error(t, parseJson(cfg, []string{"-config", bad}))
	})

	t.Run("invalid duration → error", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"link_reload_delay": "soon"})

		cfg := &Config{}
		require.Error(t, parseJson(cfg, []string{"-c", bad}))
	})
}
