package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docufy-ai/docufy/internal/config"
	"github.com/docufy-ai/docufy/pkg/pricing"
	"github.com/docufy-ai/docufy/pkg/prompt"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docufy",
	Short: "docufy - AI documentation generation with cost accounting",
	Long: `docufy sends a source file to an LLM provider to generate documentation.
Before the call it estimates the input cost from the exact prompt it will
send; after the call it reconciles the provider's reported usage into the
final cost. Unknown provider/model pairs are rejected before any network
call.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.docufy/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// loadRegistry loads the pricing table once per invocation. Every
// component that prices tokens gets this same registry value.
func loadRegistry(cfg *config.Config) (*pricing.Registry, error) {
	if cfg.Pricing.Path != "" {
		return pricing.Load(cfg.Pricing.Path)
	}
	return pricing.Default()
}

// loadTemplates loads the prompt templates once per invocation. The
// estimator and the generation client both build from this same set.
func loadTemplates(cfg *config.Config) (prompt.Set, error) {
	if cfg.Template.Path != "" {
		return prompt.LoadSet(cfg.Template.Path)
	}
	return prompt.Default()
}
