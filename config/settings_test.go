package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge/pattern"
)

func TestLoadSettings_Defaults(t *testing.T) {
	withUserConfigDir(t, t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, pattern.DefaultExternalTimeout, s.RuleOptions().ExternalTimeout)
}

func TestLoadSettings_Layers(t *testing.T) {
	dir := t.TempDir()
	withUserConfigDir(t, dir)

	writeFile(t, filepath.Join(dir, SettingsFile), `
log_level = "debug"
external_timeout = "3s"
concurrency = 2
`)
	t.Setenv(EnvSettingsTOML, `regex_engine = "re2"`)
	t.Setenv("NUDGE_CONCURRENCY", "5")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 3*time.Second, s.ExternalTimeout)
	assert.Equal(t, "re2", s.RegexEngine)
	assert.Equal(t, 5, s.Concurrency)
}

func TestLoadSettings_ExplicitPathMustExist(t *testing.T) {
	withUserConfigDir(t, t.TempDir())

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestSettings_Check(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"zero timeout", func(s *Settings) { s.ExternalTimeout = 0 }, "external_timeout must be positive"},
		{"no workers", func(s *Settings) { s.Concurrency = 0 }, "concurrency must be at least 1"},
		{"bad level", func(s *Settings) { s.LogLevel = "loud" }, `unknown log_level "loud"`},
		{"bad engine", func(s *Settings) { s.RegexEngine = "pcre" }, `unknown regex_engine "pcre"`},
		{"valid", func(s *Settings) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Check()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
