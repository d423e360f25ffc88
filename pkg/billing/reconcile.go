package billing

import "github.com/docufy-ai/docufy/pkg/pricing"

// Reconcile prices the provider's reported usage with the same registry
// the estimator used. Reasoning tokens are already counted inside
// OutputTokens by the provider and are never priced separately. A zero
// input price marks the whole call free regardless of counts.
func Reconcile(stats UsageStats, provider, model string, reg *pricing.Registry) UsageReport {
	entry, ok := reg.Lookup(provider, model)
	if !ok || entry.Free() {
		return UsageReport{UsageStats: stats, Currency: CurrencyFree}
	}

	total := tokenCost(stats.InputTokens, entry.InputCostPerMillion) +
		tokenCost(stats.OutputTokens, entry.OutputCostPerMillion)

	return UsageReport{
		UsageStats:   stats,
		TotalCostUSD: total,
		Currency:     CurrencyUSD,
	}
}

// ValidateModel reports whether the pair is priced. Callers must gate
// on this before building prompts or touching the network.
func ValidateModel(provider, model string, reg *pricing.Registry) bool {
	return reg.IsKnown(provider, model)
}
