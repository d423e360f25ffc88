package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docufy-ai/docufy/pkg/billing"
	"github.com/docufy-ai/docufy/pkg/prompt"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate FILE",
	Short: "Estimate the input cost of documenting a file",
	Long:  `Estimate token count and input cost for a file without calling the provider.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().StringP("provider", "p", "", "LLM provider (must be in the pricing table)")
	estimateCmd.Flags().StringP("model", "m", "", "Model name (must be in the pricing table)")
	_ = estimateCmd.MarkFlagRequired("provider")
	_ = estimateCmd.MarkFlagRequired("model")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	provider, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	templates, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	if !billing.ValidateModel(provider, modelName, registry) {
		return fmt.Errorf("model %q is not configured for provider %q in the pricing table", modelName, provider)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file %s: %w", args[0], err)
	}

	tpl, ok := templates.Mode(prompt.ModeRewrite)
	if !ok {
		return fmt.Errorf("prompt template has no %q mode", prompt.ModeRewrite)
	}

	estimate := billing.Estimate(string(data), provider, modelName, registry, tpl)
	printEstimate(cmd.OutOrStdout(), estimate)
	return nil
}
