package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxCodeLength, cfg.MaxCodeLength)
	assert.Equal(t, "none", cfg.FailOn)
	assert.Equal(t, DefaultPEP8.URL, cfg.PEP8.URL)
	assert.Equal(t, 79, cfg.PEP8.MaxLineLength)
	assert.Equal(t, DefaultEngines, cfg.Engines)
	assert.Equal(t, DefaultServer.Addr, cfg.Server.Addr)
	assert.Equal(t, DefaultServer.CORSOrigins, cfg.Server.CORSOrigins)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `max_code_length: 500
fail_on: warning
pep8:
  max_line_length: 99
  ignore: [E501, W2]
engines:
  security: false
  style: false
server:
  addr: ":9000"
  rate_limit: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxCodeLength)
	assert.Equal(t, "warning", cfg.FailOn)
	assert.Equal(t, 99, cfg.PEP8.MaxLineLength)
	assert.Equal(t, []string{"E501", "W2"}, cfg.PEP8.Ignore)
	assert.False(t, cfg.Engines.Security)
	assert.False(t, cfg.Engines.Style)
	assert.True(t, cfg.Engines.Types)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 1e-9)

	opts := cfg.ReviewOptions()
	assert.False(t, opts.Security)
	assert.True(t, opts.Metrics)
	assert.Equal(t, 99, opts.StyleOptions.MaxLineLength)
	assert.Equal(t, 500, opts.MaxCodeLength)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PSPEC_MAX_CODE_LENGTH", "2048")
	t.Setenv("PSPEC_ENGINES_METRICS", "false")
	t.Setenv("PSPEC_SERVER_ADDR", "0.0.0.0:8080")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxCodeLength)
	assert.False(t, cfg.Engines.Metrics)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engines: [oops\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandPath("~/x"))
	assert.Equal(t, "/abs", expandPath("/abs"))
	assert.Equal(t, filepath.Join(ConfigDir(), DefaultDBName), DBPath())
}
