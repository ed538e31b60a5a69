package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "LEUKO_"

// maxUpwardSearchLevels limits how far up the directory tree to search for leuko.yaml.
const maxUpwardSearchLevels = 10

type (
	configKey struct{}
	loggerKey struct{}
)

// settingsExistsIn returns the leuko settings file in dir, or "".
func settingsExistsIn(dir string) string {
	for _, name := range SettingsFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a settings file.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if settingsExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot picks the project root.
// Priority: --project-dir, the explicit settings file's directory, the
// nearest directory above the working directory holding leuko.yaml, then
// the working directory itself.
func inferProjectRoot(settingsFile string, flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("project-dir") {
		if dir, _ := flags.GetString("project-dir"); dir != "" {
			return absOrClean(dir)
		}
	}
	if settingsFile != "" {
		return filepath.Dir(absOrClean(settingsFile))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePath makes p absolute: against the working directory when it came
// from the named flag, against base otherwise.
func resolvePath(p, base string, flags *pflag.FlagSet, flag string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if flags != nil && flags.Changed(flag) {
		return absOrClean(p)
	}
	return filepath.Join(base, p)
}

func absOrClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Load reads settings with precedence flags > env vars > settings file > defaults.
// settingsFile is optional; when empty, leuko.yaml is searched for in the
// project root.
func Load(settingsFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	root := inferProjectRoot(settingsFile, flags)

	// 1. Defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"output":             def.OutputFormat,
		"inherit_cache_size": def.InheritCacheSize,
		"watch.debounce":     def.Watch.Debounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Settings file
	if settingsFile == "" {
		settingsFile = settingsExistsIn(root)
	}
	if settingsFile != "" {
		if err := k.Load(file.Provider(settingsFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", settingsFile, err)
		}
	}

	// 3. Environment: LEUKO_USE_SIDECAR -> use_sidecar, LEUKO_WATCH__DEBOUNCE -> watch.debounce
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "settings" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	cfg := Config{}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	// 6. Resolve paths. Flag values are relative to the working directory,
	// file and env values to the project root.
	cfg.SettingsFile = settingsFile
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = root
	} else {
		cfg.ProjectDir = resolvePath(cfg.ProjectDir, root, flags, "project-dir")
	}
	if cfg.ConfigPath != "" {
		cfg.ConfigPath = resolvePath(cfg.ConfigPath, cfg.ProjectDir, flags, "config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &cfg, nil
}

// NewLogger returns the CLI logger: text on w at warn level, debug when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the settings stored in ctx, or the defaults.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}
