// Package config provides Viper-based hierarchical configuration for the
// extractor CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/writer"
)

// EnvPrefix prefixes every environment override, e.g. UBEXTRACT_LOG_LEVEL.
const EnvPrefix = "UBEXTRACT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Parser struct {
		Resync       bool     `mapstructure:"resync" yaml:"resync"`
		ExtraHeaders []string `mapstructure:"extra_headers" yaml:"extra_headers"`
	} `mapstructure:"parser" yaml:"parser"`

	Extractor struct {
		PdftotextFallback bool    `mapstructure:"pdftotext_fallback" yaml:"pdftotext_fallback"`
		CharWidth         float64 `mapstructure:"char_width" yaml:"char_width"`
	} `mapstructure:"extractor" yaml:"extractor"`

	Convert struct {
		Workers   int      `mapstructure:"workers" yaml:"workers"`
		OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
		Formats   []string `mapstructure:"formats" yaml:"formats"`
	} `mapstructure:"convert" yaml:"convert"`

	Server struct {
		Host         string `mapstructure:"host" yaml:"host"`
		Port         int    `mapstructure:"port" yaml:"port"`
		MaxUploadMB  int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		CacheEntries int    `mapstructure:"cache_entries" yaml:"cache_entries"`
	} `mapstructure:"server" yaml:"server"`
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// OutputFormats returns the configured export formats.
func (c *Config) OutputFormats() ([]writer.Format, error) {
	formats := make([]writer.Format, 0, len(c.Convert.Formats))
	for _, name := range c.Convert.Formats {
		f, err := writer.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"format":     "convert.formats",
	"output-dir": "convert.output_dir",
	"workers":    "convert.workers",
	"resync":     "parser.resync",
	"host":       "server.host",
	"port":       "server.port",
}

// Load builds the configuration from defaults, then the config file, then
// UBEXTRACT_* environment variables, then any of flags that were set.
// An empty path searches for config.yaml in the working directory and
// $HOME/.ubextract; a missing file there is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ubextract")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// defaults always decode
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("parser.resync", false)
	v.SetDefault("parser.extra_headers", []string{})

	v.SetDefault("extractor.pdftotext_fallback", true)
	v.SetDefault("extractor.char_width", 4.8)

	v.SetDefault("convert.workers", 4)
	v.SetDefault("convert.output_dir", "")
	v.SetDefault("convert.formats", []string{"csv", "txt"})

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.cache_entries", 64)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Extractor.CharWidth <= 0 {
		return fmt.Errorf("extractor.char_width must be positive, got: %g", config.Extractor.CharWidth)
	}

	if config.Convert.Workers < 1 || config.Convert.Workers > 64 {
		return fmt.Errorf("convert.workers must be between 1 and 64, got: %d", config.Convert.Workers)
	}
	if len(config.Convert.Formats) == 0 {
		return fmt.Errorf("convert.formats must name at least one format")
	}
	if _, err := config.OutputFormats(); err != nil {
		return err
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}
	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got: %d", config.Server.MaxUploadMB)
	}
	if config.Server.CacheEntries < 0 {
		return fmt.Errorf("server.cache_entries must not be negative, got: %d", config.Server.CacheEntries)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var envOnce sync.Once

// LoadEnv loads variables from a .env file in the working directory, if
// there is one. Variables already set in the environment win.
func LoadEnv(log logrus.FieldLogger) {
	envOnce.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		if err := godotenv.Load(".env"); err != nil {
			log.Warnf("Error loading .env file: %v", err)
			return
		}
		log.Debug("Loaded environment variables from .env")
	})
}
