package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "summary", cfg.Output.Format)
	assert.Empty(t, cfg.Output.Path)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, 10, cfg.Report.MaxIssues)
	assert.False(t, cfg.Log.Verbose)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FAULTLINE_OUTPUT_FORMAT", "json")
	t.Setenv("FAULTLINE_REPORT_MAX_ISSUES", "3")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Report.MaxIssues)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faultline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\nlog:\n  verbose: true\n"), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, 10, cfg.Report.MaxIssues, "file without the key keeps the default")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "config: read")
}
