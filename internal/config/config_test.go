package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Collections, 4)
	assert.Equal(t, "1", cfg.Collections[0].ID)
	assert.Equal(t, "pranabgoyal", cfg.Collections[0].Owner)
	assert.Equal(t, "4th_year_resources_2022_scheme_RVCE", cfg.Collections[3].Repo)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 300, cfg.Cache.DirectoryTTLSeconds)
	assert.Equal(t, 20000, cfg.LLM.MaxContentChars)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[app]
port = 9000

[cache]
backend = "redis"
directory_ttl_seconds = 60

[[collections]]
id = "math"
owner = "acme"
repo = "math-notes"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	require.Len(t, cfg.Collections, 1)
	assert.Equal(t, "main", cfg.Collections[0].Branch)
	assert.Equal(t, "math-notes", cfg.Collections[0].Name)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	newCfg := func() *Config {
		cfg := defaultConfig()
		cfg.Collections = DefaultCollections()
		return cfg
	}

	cfg := newCfg()
	assert.NoError(t, cfg.Validate())

	cfg = newCfg()
	cfg.Collections = nil
	assert.Error(t, cfg.Validate())

	cfg = newCfg()
	cfg.Collections = append(cfg.Collections, cfg.Collections[0])
	assert.Error(t, cfg.Validate())

	cfg = newCfg()
	cfg.Collections[1].Owner = ""
	assert.Error(t, cfg.Validate())

	cfg = newCfg()
	cfg.Cache.Backend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = newCfg()
	cfg.LLM.Provider = "claude"
	assert.Error(t, cfg.Validate())
}
