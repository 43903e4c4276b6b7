package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SURVEY_API_BASE_URL", "")
	t.Setenv("SURVEY_APPLIED_BY", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSecs)
	assert.Equal(t, "dashboard_reviewer", cfg.Reviewer.AppliedBy)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("SURVEY_API_BASE_URL", "")
	t.Setenv("SURVEY_APPLIED_BY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"api": {"baseUrl": "http://10.0.0.5:5000", "timeoutSecs": 30}, "reviewer": {"appliedBy": "jordan"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSecs)
	assert.Equal(t, "jordan", cfg.Reviewer.AppliedBy)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"api": {"baseUrl": "http://10.0.0.5:5000"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("SURVEY_API_BASE_URL", "http://192.168.1.20:5000")
	t.Setenv("SURVEY_APPLIED_BY", "night_shift")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:5000", cfg.API.BaseURL)
	assert.Equal(t, "night_shift", cfg.Reviewer.AppliedBy)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
