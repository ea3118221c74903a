// Package config loads application settings from file and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"image-compositor/internal/image"

	"github.com/cockroachdb/errors"
	"github.com/kpango/glg"
	"github.com/spf13/viper"
)

const (
	appDir    = "image-compositor"
	envPrefix = "COMPOSITOR"
)

// Config holds application configuration.
type Config struct {
	Window    WindowConfig
	Export    ExportConfig
	Render    RenderConfig
	Transform TransformConfig
	Cache     CacheConfig
	Log       LogConfig
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title string
}

// ExportConfig holds download settings.
type ExportConfig struct {
	Dir string
}

// RenderConfig holds compositing settings.
type RenderConfig struct {
	Interpolation string
}

// TransformConfig holds transform overlay settings.
type TransformConfig struct {
	KeepRatio bool `mapstructure:"keep_ratio"`
}

// CacheConfig holds decode cache settings.
type CacheConfig struct {
	TTL time.Duration // Zero disables the cache
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix
// COMPOSITOR_, e.g. COMPOSITOR_EXPORT_DIR.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("window.title", "Image Editor")
	v.SetDefault("export.dir", defaultExportDir())
	v.SetDefault("render.interpolation", image.InterpolationBiLinear.String())
	v.SetDefault("transform.keep_ratio", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv(envPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, appDir))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that cannot be defaulted silently.
func (c Config) Validate() error {
	if _, err := image.ParseInterpolation(c.Render.Interpolation); err != nil {
		return errors.Wrap(err, "render.interpolation")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Cache.TTL < 0 {
		return errors.Newf("cache.ttl: negative duration %s", c.Cache.TTL)
	}
	return nil
}

// Interpolation returns the parsed render interpolation.
func (c Config) Interpolation() image.Interpolation {
	interp, _ := image.ParseInterpolation(c.Render.Interpolation)
	return interp
}

// ParseLevel maps a level name onto the glg levels it silences.
func ParseLevel(s string) ([]glg.LEVEL, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return nil, nil
	case "", "info":
		return []glg.LEVEL{glg.DEBG}, nil
	case "warn", "warning":
		return []glg.LEVEL{glg.DEBG, glg.INFO}, nil
	case "error":
		return []glg.LEVEL{glg.DEBG, glg.INFO, glg.WARN}, nil
	default:
		return nil, errors.Newf("unknown log level %q", s)
	}
}

// ApplyLogLevel silences glg levels below the configured one.
func (c Config) ApplyLogLevel() {
	l := glg.Get()
	for _, lv := range []glg.LEVEL{glg.DEBG, glg.INFO, glg.WARN} {
		l.SetLevelMode(lv, glg.STD)
	}
	muted, _ := ParseLevel(c.Log.Level)
	for _, lv := range muted {
		l.SetLevelMode(lv, glg.NONE)
	}
}

// defaultExportDir prefers ~/Downloads, falling back to the working directory.
func defaultExportDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dl := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dl); err == nil && info.IsDir() {
			return dl
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
