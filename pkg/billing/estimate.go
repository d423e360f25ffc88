package billing

import (
	"strings"

	"github.com/docufy-ai/docufy/pkg/pricing"
	"github.com/docufy-ai/docufy/pkg/prompt"
	"github.com/docufy-ai/docufy/pkg/tokenizer"
)

// messageOverheadTokens approximates the per-message framing tokens
// (role, delimiters) that raw content tokenization does not see. It is
// a documented approximation, not an exact protocol value.
const messageOverheadTokens = 4

// tokenCost converts a token count to a cost at a per-million price.
func tokenCost(tokens int64, pricePerMillion float64) float64 {
	if pricePerMillion <= 0 {
		return 0
	}
	return float64(tokens) / 1_000_000 * pricePerMillion
}

// Estimate tokenizes the exact message sequence that Build produces for
// fileContent and prices the input side. Unpriced or zero-priced pairs
// yield a FREE estimate; the token count is still reported.
func Estimate(fileContent, provider, model string, reg *pricing.Registry, tpl prompt.Template) CostEstimate {
	messages := tpl.Build(fileContent)

	var text strings.Builder
	for _, msg := range messages {
		text.WriteString(msg.Content)
	}

	tokens := tokenizer.Count(text.String(), provider, model)
	tokens += int64(len(messages)) * messageOverheadTokens

	entry, ok := reg.Lookup(provider, model)
	if !ok || entry.Free() {
		return CostEstimate{TokenCount: tokens, Currency: CurrencyFree}
	}

	return CostEstimate{
		TokenCount:       tokens,
		EstimatedCostUSD: tokenCost(tokens, entry.InputCostPerMillion),
		Currency:         CurrencyUSD,
	}
}
