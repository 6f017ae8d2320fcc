// Package config loads phroxygen settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"
)

// EnvPrefix is the prefix of environment overrides, e.g. PHROXYGEN_OUTPUT
const EnvPrefix = "PHROXYGEN_"

// Config holds generator settings
type Config struct {
	// Package is the import path or relative pattern of the source package
	Package string `koanf:"package"`

	// Types lists the struct types to wrap
	Types []string `koanf:"types"`

	// Output is the generated file. Empty derives it from the first type.
	Output string `koanf:"output"`

	// Suffix is appended to each type name to name its wrapper
	Suffix string `koanf:"suffix"`

	LogLevel string `koanf:"log_level"`
}

// Load reads configPath when it is not empty and applies environment
// overrides. The result is not validated; call Validate.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Suffix:   "Proxy",
		LogLevel: "info",
	}
}

// Validate checks that the configuration can drive a generation run
func (c *Config) Validate() error {
	var err error
	if c.Package == "" {
		err = multierr.Append(err, errors.New("package is required"))
	}
	if len(c.Types) == 0 {
		err = multierr.Append(err, errors.New("at least one type is required"))
	}
	for _, t := range c.Types {
		if strings.TrimSpace(t) == "" {
			err = multierr.Append(err, errors.New("type names must not be empty"))
			break
		}
	}
	if _, levelErr := c.Level(); levelErr != nil {
		err = multierr.Append(err, levelErr)
	}
	return err
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// OutputFile returns Output, or a name derived from the first type
func (c *Config) OutputFile() string {
	if c.Output != "" {
		return c.Output
	}
	if len(c.Types) == 0 {
		return ""
	}
	return toSnake(c.Types[0]+c.Suffix) + ".go"
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
