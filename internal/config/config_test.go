package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "fatura.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 2.0, cfg.Extract.LineTolerance)
	assert.Equal(t, 400.0, cfg.Extract.MaxRightGap)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentFiles)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FATURA_STORE_DRIVER", "postgres")
	t.Setenv("FATURA_SERVER_PORT", "9090")
	t.Setenv("FATURA_EXTRACT_LINE_TOLERANCE", "3.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3.5, cfg.Extract.LineTolerance)
}

func TestLoad_ConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "config.yaml", "server:\n  port: 7070\nlog:\n  level: debug\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
