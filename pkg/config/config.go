// Package config loads runtime settings for the bitter CLI.
//
// Settings come from a TOML file and BITTER_* environment variables, in that
// order of precedence reversed: the environment wins. The file is read from
// $BITTER_CONFIG, or ~/.config/bitter/config.toml when unset. A missing file
// is not an error.
package config

import (
	stderrors "errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/partition"
)

// Config holds application configuration.
type Config struct {
	Background string       `mapstructure:"background"`
	Root       string       `mapstructure:"root"`
	Output     OutputConfig `mapstructure:"output"`
	IPC        IPCConfig    `mapstructure:"ipc"`
	Log        LogConfig    `mapstructure:"log"`
}

// OutputConfig describes the virtual display created by `bitter serve`.
type OutputConfig struct {
	Name    string  `mapstructure:"name"`
	Width   int     `mapstructure:"width"`
	Height  int     `mapstructure:"height"`
	Scale   float64 `mapstructure:"scale"`
	Refresh int     `mapstructure:"refresh"`
}

// IPCConfig holds the control socket settings.
type IPCConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix BITTER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("background", "#008080")
	v.SetDefault("root", "vertical")
	v.SetDefault("output.name", "HEADLESS-1")
	v.SetDefault("output.width", 1920)
	v.SetDefault("output.height", 1080)
	v.SetDefault("output.scale", 1.0)
	v.SetDefault("output.refresh", 60)
	v.SetDefault("ipc.addr", "127.0.0.1:7878")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("BITTER_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "bitter"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BITTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.RootOrientation(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "root")
	}
	if err := errors.ValidateName("output", c.Output.Name); err != nil {
		return err
	}
	if err := errors.ValidateDimensions("output", c.Output.Width, c.Output.Height); err != nil {
		return err
	}
	if c.Output.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "output.scale must be positive, got %v", c.Output.Scale)
	}
	if c.Output.Refresh <= 0 || c.Output.Refresh > 1000 {
		return errors.New(errors.ErrCodeInvalidConfig, "output.refresh must be between 1 and 1000 Hz, got %d", c.Output.Refresh)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// BackgroundColor parses Background, a #rrggbb hex colour.
func (c Config) BackgroundColor() (color.RGBA, error) {
	return ParseColor(c.Background)
}

// RootOrientation parses Root into the orientation of each output's root.
func (c Config) RootOrientation() (partition.Orientation, error) {
	return partition.ParseOrientation(c.Root)
}

// FrameInterval returns the time between frames at the configured refresh rate.
func (c Config) FrameInterval() time.Duration {
	if c.Output.Refresh <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Output.Refresh)
}

// ParseColor parses "#rrggbb" or "rrggbb" into an opaque colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := "#" + strings.TrimPrefix(s, "#")
	if len(hex) != 7 {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidConfig, "colour %q must be #rrggbb", s)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "colour %q", s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
