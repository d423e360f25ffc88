package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all docufy configuration.
type Config struct {
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Template  TemplateConfig  `mapstructure:"template"`
	Output    OutputConfig    `mapstructure:"output"`
	History   HistoryConfig   `mapstructure:"history"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PricingConfig points at the pricing table. An empty path means the
// packaged default table.
type PricingConfig struct {
	Path string `mapstructure:"path"`
}

// TemplateConfig points at the prompt templates. An empty path means
// the packaged defaults.
type TemplateConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig defines where generated files are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// HistoryConfig defines the run ledger location.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// ProvidersConfig defines provider endpoints.
type ProvidersConfig struct {
	OllamaBaseURL string `mapstructure:"ollama_base_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".docufy"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("pricing.path", "")
	v.SetDefault("template.path", "")
	v.SetDefault("output.dir", "ai_output")
	v.SetDefault("history.path", filepath.Join(home, ".docufy", "history.db"))
	v.SetDefault("providers.ollama_base_url", "http://localhost:11434/v1")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Environment variables
	v.SetEnvPrefix("DOCUFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
