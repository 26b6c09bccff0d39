package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/pattern"
)

const (
	// SettingsFile is the TOML settings file under UserConfigDir.
	SettingsFile = "config.toml"

	// EnvPrefix prefixes every environment override, e.g.
	// NUDGE_EXTERNAL_TIMEOUT=3s.
	EnvPrefix = "NUDGE_"

	// EnvSettingsTOML carries a whole settings document inline.
	EnvSettingsTOML = "NUDGE_CONFIG_TOML"
)

// Settings are the process-wide knobs that are not rules.
type Settings struct {
	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`

	// ExternalTimeout bounds each external matcher run.
	ExternalTimeout time.Duration `koanf:"external_timeout"`

	// Concurrency caps the number of rules (or files, for check) evaluated
	// at once.
	Concurrency int `koanf:"concurrency"`

	// RegexEngine selects the regexp implementation: stdlib or re2.
	RegexEngine string `koanf:"regex_engine"`

	// MaxFileSize skips larger files during check, in bytes. Zero disables
	// the limit.
	MaxFileSize int64 `koanf:"max_file_size"`
}

// DefaultSettings are used for anything not set elsewhere.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:        "warn",
		ExternalTimeout: pattern.DefaultExternalTimeout,
		Concurrency:     8,
		RegexEngine:     "stdlib",
		MaxFileSize:     1000 * 1000,
	}
}

// UserConfigDir is where the user rules and settings live. It is a
// variable so tests can point it elsewhere.
var UserConfigDir = func() string {
	return filepath.Join(xdg.ConfigHome, "nudge")
}

// LoadSettings layers, lowest precedence first: defaults, the settings
// file at path (or UserConfigDir/config.toml when path is empty), the
// NUDGE_CONFIG_TOML document, and NUDGE_* environment variables.
func LoadSettings(path string) (Settings, error) {
	k := koanf.New(".")

	defaults := DefaultSettings()
	if err := k.Load(confmap.Provider(map[string]any{
		"log_level":        defaults.LogLevel,
		"external_timeout": defaults.ExternalTimeout.String(),
		"concurrency":      defaults.Concurrency,
		"regex_engine":     defaults.RegexEngine,
		"max_file_size":    defaults.MaxFileSize,
	}, "."), nil); err != nil {
		return Settings{}, err
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(UserConfigDir(), SettingsFile)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("settings %s: %w", path, err)
		}
	} else {
		logging.Debug().Str("path", path).Msg("loaded settings file")
	}

	if inline := os.Getenv(EnvSettingsTOML); inline != "" {
		if err := k.Load(rawbytes.Provider([]byte(inline)), toml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvSettingsTOML, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvSettingsTOML {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, err
	}
	if err := s.Check(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Check rejects settings that cannot work.
func (s Settings) Check() error {
	if s.ExternalTimeout <= 0 {
		return fmt.Errorf("external_timeout must be positive, got %s", s.ExternalTimeout)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if _, ok := logging.ParseLevel(s.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	switch s.RegexEngine {
	case "stdlib", "re2":
	default:
		return fmt.Errorf("unknown regex_engine %q (expected stdlib or re2)", s.RegexEngine)
	}
	return nil
}

// RuleOptions derives rule compilation options from the settings.
func (s Settings) RuleOptions() Options {
	return Options{ExternalTimeout: s.ExternalTimeout}
}
