package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docufy-ai/docufy/pkg/billing"
	"github.com/docufy-ai/docufy/pkg/generate"
	"github.com/docufy-ai/docufy/pkg/history"
	"github.com/docufy-ai/docufy/pkg/pricing"
	"github.com/docufy-ai/docufy/pkg/prompt"
)

var generateCmd = &cobra.Command{
	Use:   "generate FILE",
	Short: "Generate documentation for a source file",
	Long: `Generate documentation for a source file via an LLM provider.
The estimated input cost is shown and confirmed before any paid call is
made; the provider's reported usage is reconciled into the final cost
afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("provider", "p", "", "LLM provider (must be in the pricing table)")
	generateCmd.Flags().StringP("model", "m", "", "Model name (must be in the pricing table)")
	generateCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
	generateCmd.Flags().String("output-dir", "", "Directory for generated files (default from config)")
	_ = generateCmd.MarkFlagRequired("provider")
	_ = generateCmd.MarkFlagRequired("model")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	provider, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	// Pricing table and templates are loaded exactly once; the
	// estimator and the generation call both work from these values.
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	templates, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	model, ok := registry.Resolve(provider, modelName)
	if !ok {
		return fmt.Errorf("model %q is not configured for provider %q in the pricing table", modelName, provider)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", filePath, err)
	}
	content := string(data)

	tpl, ok := templates.Mode(prompt.ModeRewrite)
	if !ok {
		return fmt.Errorf("prompt template has no %q mode", prompt.ModeRewrite)
	}

	estimate := billing.Estimate(content, provider, modelName, registry, tpl)
	printEstimate(cmd.OutOrStdout(), estimate)

	if !skipConfirm && !confirm(cmd.InOrStdin(), cmd.OutOrStdout()) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	opts := generate.Options{}
	if model.Kind == pricing.KindLocal {
		opts.BaseURL = cfg.Providers.OllamaBaseURL
	} else {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
		if opts.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
	}

	client, err := generate.NewClient(model, opts)
	if err != nil {
		return err
	}

	logger.Info("generating documentation", "file", filePath, "provider", model.Provider, "model", model.Name)

	messages := tpl.Build(content)
	result, usage, err := client.Generate(cmd.Context(), messages)
	if err != nil {
		return fmt.Errorf("generate documentation: %w", err)
	}

	outputPath, err := writeOutput(outputDir, filePath, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nOutput saved to %s\n", outputPath)

	report := billing.Reconcile(usage, provider, modelName, registry)
	printReport(cmd.OutOrStdout(), report)

	recordRun(cmd.Context(), cfg.History.Path, filePath, model, report, logger)
	return nil
}

// writeOutput writes the generated content to <dir>/<stem>.doc<ext>.
func writeOutput(dir, sourcePath, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}

	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	outputPath := filepath.Join(dir, stem+".doc"+ext)

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write output file %s: %w", outputPath, err)
	}
	return outputPath, nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "\nProceed? [y/N]: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printEstimate(out io.Writer, est billing.CostEstimate) {
	fmt.Fprintf(out, "\nEstimation (input only):\n")
	fmt.Fprintf(out, "  Tokens:    %d\n", est.TokenCount)
	if est.Currency == billing.CurrencyUSD {
		fmt.Fprintf(out, "  Est. cost: $%.5f\n", est.EstimatedCostUSD)
	} else {
		fmt.Fprintf(out, "  Est. cost: free (local)\n")
	}
}

func printReport(out io.Writer, report billing.UsageReport) {
	fmt.Fprintf(out, "\nFinal usage report:\n")
	if report.Currency == billing.CurrencyUSD {
		fmt.Fprintf(out, "  Input tokens:  %d\n", report.InputTokens)
		fmt.Fprintf(out, "  Output tokens: %d\n", report.OutputTokens)
		if report.ReasoningTokens > 0 {
			fmt.Fprintf(out, "  (includes %d reasoning tokens)\n", report.ReasoningTokens)
		}
		fmt.Fprintf(out, "  Total cost:    $%.5f\n", report.TotalCostUSD)
	} else {
		fmt.Fprintf(out, "  Output tokens: %d\n", report.OutputTokens)
		fmt.Fprintf(out, "  Total cost:    free\n")
	}
}

// recordRun appends the reconciled run to the local ledger. Ledger
// failures do not fail the command; the generated file is already
// written.
func recordRun(ctx context.Context, historyPath, filePath string, model pricing.Model, report billing.UsageReport, logger *slog.Logger) {
	store, err := history.NewStore(historyPath)
	if err != nil {
		logger.Warn("open history ledger", "error", err)
		return
	}
	defer store.Close()

	err = store.Record(ctx, &history.RunRecord{
		File:            filePath,
		Provider:        model.Provider,
		Model:           model.Name,
		InputTokens:     report.InputTokens,
		OutputTokens:    report.OutputTokens,
		ReasoningTokens: report.ReasoningTokens,
		CostUSD:         report.TotalCostUSD,
	})
	if err != nil {
		logger.Warn("record run", "error", err)
	}
}
