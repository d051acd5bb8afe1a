package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid configuration")

// RotationConfig configures log rotation. MaxSize is a human size like 10MB.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// RenderConfig configures image output.
type RenderConfig struct {
	Colorer string `mapstructure:"colorer" yaml:"colorer"`
	Size    int    `mapstructure:"size" yaml:"size"`
}

// Config is the full application configuration.
type Config struct {
	DefaultPath  string         `mapstructure:"default_path" yaml:"default_path"`
	Exclude      []string       `mapstructure:"exclude" yaml:"exclude"`
	CrossMounts  bool           `mapstructure:"cross_mounts" yaml:"cross_mounts"`
	Estimate     string         `mapstructure:"estimate" yaml:"estimate"`
	ProgressStep float64        `mapstructure:"progress_step" yaml:"progress_step"`
	Layout       radial.Painter `mapstructure:"layout" yaml:"layout"`
	Render       RenderConfig   `mapstructure:"render" yaml:"render"`
	Logging      LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// Load reads configuration from the default locations and SUNBURST_
// environment variables.
//
// Config file locations, first match wins:
//   - $XDG_CONFIG_HOME/sunburst/config.yaml
//   - $HOME/.config/sunburst/config.yaml
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom is Load on a caller-supplied viper instance, so flags bound to v
// take precedence. A non-empty file replaces the search path and must exist.
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	path, err := ExpandPath(cfg.DefaultPath)
	if err != nil {
		return nil, err
	}
	cfg.DefaultPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	layout := defaultLayout()
	rot := logging.DefaultRotationConfig()

	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("cross_mounts", false)
	v.SetDefault("estimate", DefaultEstimate)
	v.SetDefault("progress_step", DefaultProgressStep)

	v.SetDefault("layout.max_levels", layout.MaxLevels)
	v.SetDefault("layout.min_paint_angle", layout.MinPaintAngle)
	v.SetDefault("layout.min_radius_fraction", layout.MinRadiusFraction)
	v.SetDefault("layout.max_radius_fraction", layout.MaxRadiusFraction)

	v.SetDefault("render.colorer", DefaultColorer)
	v.SetDefault("render.size", DefaultRenderSize)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", humanize.IBytes(uint64(rot.MaxSize)))
	v.SetDefault("logging.rotation.max_age", rot.MaxAge)
	v.SetDefault("logging.rotation.max_backups", rot.MaxBackups)
	v.SetDefault("logging.rotation.daily", rot.Daily)
	v.SetDefault("logging.components", DefaultLogComponents)
}

// Validate checks values that the scanner, layout or renderer would reject.
func (c *Config) Validate() error {
	if !slices.Contains(Estimates, c.Estimate) {
		return fmt.Errorf("%w: estimate %q (want one of %s)", ErrInvalid, c.Estimate, strings.Join(Estimates, ", "))
	}
	if c.ProgressStep <= 0 || c.ProgressStep > 1 {
		return fmt.Errorf("%w: progress_step %v must be in (0, 1]", ErrInvalid, c.ProgressStep)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: layout: %w", ErrInvalid, err)
	}
	if !slices.Contains(Colorers, c.Render.Colorer) {
		return fmt.Errorf("%w: render.colorer %q (want one of %s)", ErrInvalid, c.Render.Colorer, strings.Join(Colorers, ", "))
	}
	if c.Render.Size <= 0 {
		return fmt.Errorf("%w: render.size %d must be positive", ErrInvalid, c.Render.Size)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalid, err)
	}
	if _, err := c.Logging.Rotation.maxBytes(); err != nil {
		return fmt.Errorf("%w: logging.rotation.max_size: %w", ErrInvalid, err)
	}
	return nil
}

func (r RotationConfig) maxBytes() (int64, error) {
	if r.MaxSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(r.MaxSize)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig() (logging.Config, error) {
	maxSize, err := c.Logging.Rotation.maxBytes()
	if err != nil {
		return logging.Config{}, fmt.Errorf("parsing logging.rotation.max_size: %w", err)
	}

	path := c.Logging.Path
	if path != "" {
		if path, err = ExpandPath(path); err != nil {
			return logging.Config{}, err
		}
	}

	return logging.Config{
		Level: c.Logging.Level,
		Path:  path,
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     c.Logging.Rotation.MaxAge,
			MaxBackups: c.Logging.Rotation.MaxBackups,
			Daily:      c.Logging.Rotation.Daily,
		},
		Components: c.Logging.Components,
	}, nil
}

func searchDirs() []string {
	var dirs []string
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		dirs = append(dirs, filepath.Join(x, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}
	return dirs
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() (string, error) {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path of the config file written by WriteDefault.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/sunburst, where logs live.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// WriteDefault writes a commented default config file and returns its path.
// An existing file is left untouched and created is false.
func WriteDefault() (path string, created bool, err error) {
	path, err = ConfigPath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultFile()), 0o644); err != nil {
		return "", false, fmt.Errorf("writing default config: %w", err)
	}
	return path, true, nil
}

func defaultFile() string {
	layout := defaultLayout()
	return fmt.Sprintf(`# sunburst configuration

# Path scanned when none is given
default_path: %s

# Paths skipped while scanning (glob or prefix)
exclude:
  - /proc
  - /sys
  - /dev

# Descend into directories on other devices
cross_mounts: false

# Progress estimate: statfs (inodes in use), count (pre-walk), none
estimate: %s
progress_step: %v

layout:
  max_levels: %d
  # Arcs narrower than this many degrees are not expanded
  min_paint_angle: %v
  min_radius_fraction: %v
  max_radius_fraction: %v

render:
  # angle, type or name
  colorer: %s
  size: %d

logging:
  # debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/sunburst/sunburst.log
  path: ""
  rotation:
    max_size: 10MiB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    scanner: info
    layout: info
    tui: info
`, DefaultPath, DefaultEstimate, DefaultProgressStep,
		layout.MaxLevels, layout.MinPaintAngle, layout.MinRadiusFraction, layout.MaxRadiusFraction,
		DefaultColorer, DefaultRenderSize)
}
