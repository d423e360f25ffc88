package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docufy-ai/docufy/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation runs and their reconciled costs",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history ledger: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIME\tFILE\tPROVIDER\tMODEL\tIN\tOUT\tREASONING\tCOST\n")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t$%.5f\n",
			run.Timestamp.Format("2006-01-02 15:04"),
			run.File, run.Provider, run.Model,
			run.InputTokens, run.OutputTokens, run.ReasoningTokens,
			run.CostUSD,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	summary, err := store.Summarize(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d runs, $%.5f\n", summary.RunCount, summary.TotalCostUSD)
	return nil
}
