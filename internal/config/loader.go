package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the YAML configuration.
var ErrLoadConfig = errors.New("config load failed")

// ErrValidateConfig indicates that the loaded configuration is invalid.
var ErrValidateConfig = errors.New("configuration validation failed")

// Config represents the top-level YAML configuration file. Every field has a
// working default, so running without a config file is fine.
type Config struct {
	Backup  BackupConfig  `mapstructure:"backup"  yaml:"backup"`
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
}

// BackupConfig contains global backup options.
type BackupConfig struct {
	// Workers is the size of the per-file worker pool. 1 processes files
	// strictly sequentially.
	Workers int `mapstructure:"workers" yaml:"workers,omitempty"`
	// Exclude lists shell-style patterns applied to every run, merged with
	// any patterns given on the command line.
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

// ArchiveConfig contains snapshot archive export options.
type ArchiveConfig struct {
	// Level is the zstd encoder level: fastest, default, better or best.
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backup:  BackupConfig{Workers: 4},
		Archive: ArchiveConfig{Level: "default"},
	}
}

// Load reads the configuration from the given YAML file using Viper and
// unmarshals it into the Config struct. An empty path keeps the defaults.
func (c *Config) Load(path string) error {
	*c = Default()
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: read config %s: %v", ErrLoadConfig, path, err)
	}
	if err := v.UnmarshalExact(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}
	return c.validate()
}

func (c *Config) validate() error {
	if c.Backup.Workers < 1 {
		return fmt.Errorf("%w: backup.workers must be at least 1, got %d",
			ErrValidateConfig, c.Backup.Workers)
	}
	return nil
}
