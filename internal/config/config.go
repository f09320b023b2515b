package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// ConfigFileName is looked up in the workspace root when no --config is given.
const ConfigFileName = ".ftt.yaml"

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration for ftt.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Log       LogConfig       `mapstructure:"log"`
	User      UserConfig      `mapstructure:"user"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Status    StatusConfig    `mapstructure:"status"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`

	// Path is the config file that was read, empty when none existed.
	Path string `mapstructure:"-"`
}

type WorkspaceConfig struct {
	Roots   []string `mapstructure:"roots" validate:"required"`
	Project string   `mapstructure:"project"`
}

type LogConfig struct {
	// Dir is the tool directory under the first root.
	Dir  string `mapstructure:"dir" validate:"required"`
	File string `mapstructure:"file" validate:"required"`
}

// UserConfig pins the recorded identity. When either field is empty the
// identity comes from git config.
type UserConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email" validate:"email"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error"`
	File  string `mapstructure:"file"`
}

type StatusConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"required"`
}

type CacheConfig struct {
	// Size in megabytes; 0 disables the report cache.
	Size int `mapstructure:"size" validate:"min:0"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Options selects where configuration comes from.
type Options struct {
	// Root is the workspace root; defaults to the working directory.
	Root string
	// File is an explicit config file. It must exist when set.
	File string
	// LogLevel overrides logger.level from every other source.
	LogLevel string
}

// Root returns the primary workspace root.
func (c *Config) Root() string {
	return c.Workspace.Roots[0]
}

// LogPath is the location of the persisted time log.
func (c *Config) LogPath() string {
	dir := c.Log.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Root(), dir)
	}
	return filepath.Join(dir, c.Log.File)
}

// Load reads defaults, the optional config file and FTT_* environment
// variables, in increasing priority, and validates the result.
func Load(opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}

	v := viper.New()
	v.SetDefault("workspace.roots", []string{root})
	v.SetDefault("workspace.project", filepath.Base(root))
	v.SetDefault("log.dir", ".vscode")
	v.SetDefault("log.file", "time_log.json")
	v.SetDefault("user.name", "")
	v.SetDefault("user.email", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
	v.SetDefault("status.interval", time.Second)
	v.SetDefault("cache.size", 8)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:9464")

	v.SetEnvPrefix("FTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.File
	if path == "" {
		path = filepath.Join(root, ConfigFileName)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	var conf Config
	if err := v.ReadInConfig(); err != nil {
		if opts.File != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		conf.Path = path
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if opts.LogLevel != "" {
		conf.Logger.Level = opts.LogLevel
	}

	base := root
	if conf.Path != "" {
		base = filepath.Dir(conf.Path)
	}
	for i, r := range conf.Workspace.Roots {
		if !filepath.IsAbs(r) {
			conf.Workspace.Roots[i] = filepath.Join(base, r)
		}
	}
	if conf.Logger.File != "" && !filepath.IsAbs(conf.Logger.File) {
		conf.Logger.File = filepath.Join(base, conf.Logger.File)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalid, v.Errors.One())
	}
	return nil
}

// configTemplate is the annotated config written by `ftt init`.
const configTemplate = `# ftt configuration
#
# Every setting is optional; the values below are the built-in defaults.
# Environment variables override this file: FTT_LOGGER_LEVEL=debug,
# FTT_METRICS_ENABLED=true, ...

workspace:
  # Directories whose files are timed. Relative paths are resolved against
  # the directory holding this file. Files outside every root are ignored.
  roots:
    - .
  # Project name recorded for files opened without one.
  # project: my-project

log:
  # Tool directory, relative to the first root, holding the time log.
  dir: .vscode
  file: time_log.json

# Identity recorded on entries. Leave empty to use git config user.name and
# user.email.
user:
  name: ""
  email: ""

logger:
  # trace, debug, info, warn or error
  level: info
  # JSON lines log file; empty logs to stderr.
  file: ""

status:
  # Refresh interval of the live status readout in ` + "`ftt watch`" + `.
  interval: 1s

cache:
  # Report cache size in MB; 0 disables it.
  size: 8

metrics:
  # Serve Prometheus metrics from ` + "`ftt watch`" + `.
  enabled: false
  addr: 127.0.0.1:9464
`

// WriteTemplate writes the annotated default config to path. An existing
// file is never overwritten.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	if _, err := f.WriteString(configTemplate); err != nil {
		f.Close()
		return fmt.Errorf("writing default config: %w", err)
	}
	return f.Close()
}
