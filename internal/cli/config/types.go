// Package config provides settings management for the leuko CLI.
//
// Settings come from leuko.yaml, LEUKO_* environment variables and
// command-line flags. They configure the tool itself; the RuboCop
// configuration being analyzed is handled by internal/config.
package config

import (
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/watch"
)

// Config holds all CLI settings.
type Config struct {
	// ConfigPath replaces RuboCop configuration discovery with one file.
	ConfigPath string `koanf:"config"`
	// ProjectDir anchors relative paths and the sidecar directory.
	ProjectDir       string      `koanf:"project_dir"`
	Workers          int         `koanf:"workers"`
	OutputFormat     string      `koanf:"output"`
	Verbose          bool        `koanf:"verbose"`
	UseSidecar       bool        `koanf:"use_sidecar"`
	InheritCacheSize int         `koanf:"inherit_cache_size"`
	Patterns         []string    `koanf:"patterns"`
	Watch            WatchConfig `koanf:"watch"`

	// SettingsFile is the leuko.yaml that was loaded, if any.
	SettingsFile string `koanf:"-"`
}

// WatchConfig configures check --watch.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Defaults.
const (
	DefaultOutput = "auto"
	// DefaultInheritCacheSize bounds parsed inherit_from files kept in memory.
	DefaultInheritCacheSize = 256
	DefaultDebounce         = watch.DefaultDebounce
)

// SettingsFileNames are searched in order in the project directory.
var SettingsFileNames = []string{"leuko.yaml", "leuko.yml"}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		OutputFormat:     DefaultOutput,
		InheritCacheSize: DefaultInheritCacheSize,
		Watch:            WatchConfig{Debounce: DefaultDebounce},
	}
}
