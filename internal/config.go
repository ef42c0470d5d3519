package internal

import (
	"fmt"

	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/executable"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/ilyakaznacheev/cleanenv"
)

// SiphonConfig is the struct used to contain the
// various user config supplied by file, or
// by environment variables.
type SiphonConfig struct {
	Executables executable.Config `yaml:"executables"`
	Pipeline    pipeline.Config   `yaml:"pipeline"`
	Metadata    ytdlp.Config      `yaml:"metadata"`
	RestConfig  api.RestConfig    `yaml:"api"`
	LogLevel    string            `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
}

// LoadConfig reads the YAML configuration file at the path provided,
// with environment variables taking precedence. When no path is given,
// only the environment (and defaults) are consulted.
func LoadConfig(configPath string) (*SiphonConfig, error) {
	config := &SiphonConfig{}
	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
		}

		return config, nil
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return config, nil
}

// ApplyLogLevel sets the minimum logging level to the one configured.
func (config *SiphonConfig) ApplyLogLevel() error {
	level, err := logger.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}

	logger.SetMinLoggingLevel(level.Level())
	return nil
}
