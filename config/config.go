// Package config loads runtime settings for a container.
//
// Settings come from Default, then an optional YAML file, then environment
// overrides. Load and Parse validate the result.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Mode is the deployment mode. It gates test-only operations such as Clear.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
	ModeTest        Mode = "test"
)

// Environment variables read by Load and Parse.
const (
	EnvMode      = "IOCAOP_MODE"
	EnvLogLevel  = "IOCAOP_LOG_LEVEL"
	EnvLogFormat = "IOCAOP_LOG_FORMAT"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var ErrEmptyPointcut = errors.New("config: empty pointcut")

type Config struct {
	Mode     Mode     `yaml:"mode"`
	Logging  Logging  `yaml:"logging"`
	Pointcut Pointcut `yaml:"pointcut"`
	Metrics  Metrics  `yaml:"metrics"`
	Tracing  Tracing  `yaml:"tracing"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// Invocations registers the logging aspect on every woven method.
	Invocations bool `yaml:"invocations"`
}

type Pointcut struct {
	LegacyThreeSegment bool `yaml:"legacy_three_segment"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Pointcut  string `yaml:"pointcut"`
	Order     int    `yaml:"order"`
}

type Tracing struct {
	Enabled    bool   `yaml:"enabled"`
	TracerName string `yaml:"tracer_name"`
	Pointcut   string `yaml:"pointcut"`
	Order      int    `yaml:"order"`
}

// Default returns the settings used when nothing else is configured.
// The mode is production; Clear has to be enabled explicitly.
func Default() Config {
	return Config{
		Mode: ModeProduction,
		Logging: Logging{
			Level:  "info",
			Format: FormatConsole,
		},
		Metrics: Metrics{
			Namespace: "iocaop",
			Pointcut:  "*",
			Order:     -1000,
		},
		Tracing: Tracing{
			TracerName: "iocaop",
			Pointcut:   "*",
			Order:      -999,
		},
	}
}

// Load reads the YAML file at path over Default. An empty path skips the file.
func Load(path string) (Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes data over Default, applies environment overrides and validates.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.Mode = Mode(strings.ToLower(v))
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeProduction, ModeDevelopment, ModeTest:
	default:
		return InvalidValueError{Field: "mode", Value: string(c.Mode)}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return InvalidValueError{Field: "logging.level", Value: c.Logging.Level}
	}
	switch c.Logging.Format {
	case FormatJSON, FormatConsole:
	default:
		return InvalidValueError{Field: "logging.format", Value: c.Logging.Format}
	}
	if c.Metrics.Enabled {
		if c.Metrics.Namespace == "" {
			return InvalidValueError{Field: "metrics.namespace", Value: ""}
		}
		if c.Metrics.Pointcut == "" {
			return ErrEmptyPointcut
		}
	}
	if c.Tracing.Enabled {
		if c.Tracing.TracerName == "" {
			return InvalidValueError{Field: "tracing.tracer_name", Value: ""}
		}
		if c.Tracing.Pointcut == "" {
			return ErrEmptyPointcut
		}
	}
	return nil
}

// AllowsClear reports whether registries may be cleared in this mode.
func (c Config) AllowsClear() bool {
	return c.Mode == ModeTest || c.Mode == ModeDevelopment
}

// InvalidValueError reports a setting outside its allowed values.
type InvalidValueError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (e InvalidValueError) Error() string {
	return "config: invalid " + e.Field + " " + strconv.Quote(e.Value)
}
