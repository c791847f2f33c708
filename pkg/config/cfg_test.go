package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcss/pkg/pixelate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixelcss.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 4, cfg.Render.PixelUnit)
	assert.False(t, cfg.Render.Smooth)
	assert.Equal(t, "medium", cfg.Render.Quality)
	assert.Equal(t, 10*time.Second, cfg.Render.LoadTimeout)
	assert.Equal(t, 128, cfg.Cache.Results)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
	assert.Equal(t, "none", cfg.Logging.FileLogger.Level)
}

func TestLoadConfiguration_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
render:
  pixel_unit: 8
  quality: high
  load_timeout: 2s
`)
	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Render.PixelUnit)
	assert.Equal(t, "high", cfg.Render.Quality)
	assert.Equal(t, 2*time.Second, cfg.Render.LoadTimeout)
	// untouched values keep their defaults
	assert.Equal(t, 16.0, cfg.Render.RootFontSize)
	assert.Equal(t, 128, cfg.Cache.Images)
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "version: 1\nrender:\n  pixel_size: 3\n"},
		{"invalid pixel unit", "version: 1\nrender:\n  pixel_unit: 0\n"},
		{"invalid quality", "version: 1\nrender:\n  quality: ultra\n"},
		{"wrong version", "version: 2\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestDump_RoundTrips(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	cfg.Render.PixelUnit = 6

	data, err := Dump(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pixel_unit: 6")

	loaded, err := LoadConfiguration(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "version: 1"))
}

func TestRenderConfig_Options(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	cfg.Render.Quality = "low"

	opts, err := cfg.Render.Options(320, 200)
	require.NoError(t, err)
	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, 200, opts.Height)
	assert.Equal(t, 4, opts.PixelUnit)
	assert.Equal(t, pixelate.QualityLow, opts.Quality)
	assert.Len(t, cfg.Render.EngineOptions(), 3)
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "logs", "pixelcss.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Debug("hello from test")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}
