// Package config loads application settings from defaults, an optional
// config file, BOXJOINT_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chazu/boxjoint/pkg/engine"
	"github.com/chazu/boxjoint/pkg/kernel/sdfx"
)

// EnvPrefix is prepended to every environment variable, so log.level is
// read from BOXJOINT_LOG_LEVEL.
const EnvPrefix = "BOXJOINT"

// Config is the resolved configuration.
type Config struct {
	Log    Log    `mapstructure:"log"`
	Mesh   Mesh   `mapstructure:"mesh"`
	Output Output `mapstructure:"output"`
	Eval   Eval   `mapstructure:"eval"`
}

// Log selects the zap level and encoder.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Mesh tunes tessellation for previews and STL export.
type Mesh struct {
	// Cells is the marching-cubes resolution along the longest axis.
	Cells int `mapstructure:"cells"`
}

// Output is where the CLI writes STL files.
type Output struct {
	Dir string `mapstructure:"dir"`
}

// Eval bounds design script evaluation.
type Eval struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("mesh.cells", sdfx.DefaultMeshCells)
	v.SetDefault("output.dir", ".")
	v.SetDefault("eval.timeout", engine.DefaultTimeout)
}

// BindFlags registers the persistent flags shared by every command and
// binds them to their keys on v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("log-development", false, "human readable log output")
	fs.Int("mesh-cells", sdfx.DefaultMeshCells, "meshing resolution along the longest axis")
	fs.StringP("output-dir", "o", ".", "directory for exported files")
	fs.Duration("eval-timeout", engine.DefaultTimeout, "limit for evaluating a design script")

	for key, flag := range map[string]string{
		"log.level":       "log-level",
		"log.development": "log-development",
		"mesh.cells":      "mesh-cells",
		"output.dir":      "output-dir",
		"eval.timeout":    "eval-timeout",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment binding in
// place.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v and decodes the
// result. An empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that decoding cannot.
func (c Config) Validate() error {
	var errs []error
	if c.Mesh.Cells < 8 {
		errs = append(errs, fmt.Errorf("mesh.cells is %d, must be at least 8", c.Mesh.Cells))
	}
	if c.Eval.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("eval.timeout is %s, must be positive", c.Eval.Timeout))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is empty"))
	}
	return errors.Join(errs...)
}
