// Package billing prices prompts before a generation call and
// reconciles provider-reported usage after it. Both computations read
// the same pricing registry, so estimate and actual cannot drift apart.
package billing

// Currency tags a cost as billable USD or free (local provider).
type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyFree Currency = "FREE"
)

// CostEstimate is the pre-flight input cost for a prompt. Output cost
// is never estimated; output length is unknowable before generation.
type CostEstimate struct {
	TokenCount       int64
	EstimatedCostUSD float64
	Currency         Currency
}

// UsageStats holds the raw token counts a provider reports after
// generation. ReasoningTokens is a subset of OutputTokens; providers
// that do not report it leave it at zero.
type UsageStats struct {
	InputTokens     int64
	OutputTokens    int64
	ReasoningTokens int64
}

// UsageReport is the reconciled, authoritative cost of a finished call.
type UsageReport struct {
	UsageStats
	TotalCostUSD float64
	Currency     Currency
}
