package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured providers and their model pricing",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	providers := registry.Providers()
	sort.Strings(providers)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PROVIDER\tMODEL\tINPUT ($/1M)\tOUTPUT ($/1M)\tKIND\n")

	for _, provider := range providers {
		models := registry.Models(provider)
		sort.Strings(models)
		for _, name := range models {
			m, ok := registry.Resolve(provider, name)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t$%.2f\t$%.2f\t%s\n",
				provider, name,
				m.Pricing.InputCostPerMillion, m.Pricing.OutputCostPerMillion,
				m.Kind,
			)
		}
	}
	return w.Flush()
}
