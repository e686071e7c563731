package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 120, cfg.LineLengthLimit)
	assert.Equal(t, 400, cfg.LargeFileLimit)
	assert.Equal(t, 3.0, cfg.DeletionRatio)
	assert.Equal(t, 20, cfg.DeletionMinRemoved)
	assert.Equal(t, Penalties{Info: 1, Warning: 5, Error: 15}, cfg.Penalties)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "none", cfg.FailOn)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero line length", func(c *Config) { c.LineLengthLimit = 0 }},
		{"negative large file", func(c *Config) { c.LargeFileLimit = -1 }},
		{"zero deletion ratio", func(c *Config) { c.DeletionRatio = 0 }},
		{"negative min removed", func(c *Config) { c.DeletionMinRemoved = -5 }},
		{"penalty over 100", func(c *Config) { c.Penalties.Error = 101 }},
		{"negative penalty", func(c *Config) { c.Penalties.Info = -1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"bad failOn", func(c *Config) { c.FailOn = "critical" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRuleEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.RuleEnabled("line-length"))

	cfg.DisabledRules = []string{"line-length", "secret"}
	assert.False(t, cfg.RuleEnabled("line-length"))
	assert.False(t, cfg.RuleEnabled("secret"))
	assert.True(t, cfg.RuleEnabled("todo-marker"))
}

func TestDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "diffscope"), dir)
}

func TestLoadFile_MissingDefaultIsNotAnError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, found, err := LoadFile("")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadFile_MissingExplicitPathFails(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lineLengthLimit: [not an int"), 0o644))

	_, _, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "lineLengthLimit: 100\nformat: json\ndisabledRules:\n  - todo-marker\npenalties:\n  warning: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.LineLengthLimit)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"todo-marker"}, cfg.DisabledRules)
	assert.Equal(t, 8, cfg.Penalties.Warning)
	// Untouched fields keep their defaults.
	assert.Equal(t, 400, cfg.LargeFileLimit)
	assert.Equal(t, 15, cfg.Penalties.Error)
}

func TestLoad_ExplicitZeroInFileIsHonored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "deletionMinRemoved: 0\npenalties:\n  info: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DeletionMinRemoved, "explicit zero must not fall back to the default")
	assert.Equal(t, 0, cfg.Penalties.Info)
	// Keys the file leaves out still default.
	assert.Equal(t, 5, cfg.Penalties.Warning)
	assert.Equal(t, 15, cfg.Penalties.Error)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\nworkers: 2\n"), 0o644))

	t.Setenv("DIFFSCOPE_FORMAT", "markdown")
	t.Setenv("DIFFSCOPE_LINE_LENGTH", "80")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, 80, cfg.LineLengthLimit)
	assert.Equal(t, 2, cfg.Workers, "file setting survives when env leaves it alone")
}

func TestLoad_FlagOverridesWinOverEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	t.Setenv("DIFFSCOPE_FORMAT", "markdown")

	cfg, err := Load(path, map[string]string{
		"format":        "text",
		"failOn":        "warning",
		"deletionRatio": "2.5",
		"workers":       "4",
	})
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "warning", cfg.FailOn)
	assert.Equal(t, 2.5, cfg.DeletionRatio)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_InvalidMergeResultRejected(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("", map[string]string{"failOn": "fatal"})
	require.Error(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.LineLengthLimit = 99
	want.DisabledRules = []string{"secret"}
	require.NoError(t, Save(want))

	got, found, err := LoadFile("")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}
