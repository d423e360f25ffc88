// Package tokenizer counts billing tokens for prompt text. OpenAI
// models use the matching tiktoken encoding; everything else uses a
// character-based estimate. Counting never fails: exact tokenization
// for unlisted models is unknowable, and an approximate count beats
// blocking the caller.
package tokenizer

import (
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// encodingForModel maps OpenAI model names to tiktoken encoding names.
var encodingForModel = map[string]string{
	"gpt-5":         "o200k_base",
	"gpt-5-mini":    "o200k_base",
	"gpt-5-nano":    "o200k_base",
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"o1":            "o200k_base",
	"o1-mini":       "o200k_base",
	"o3-mini":       "o200k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// Count returns the token count for the given text and model.
func Count(text, provider, model string) int64 {
	if strings.ToLower(provider) == "openai" {
		return countOpenAI(text, model)
	}
	return estimateTokens(text)
}

// countOpenAI uses tiktoken. Unknown models fall back to cl100k_base;
// any tokenizer failure falls back to character estimation.
func countOpenAI(text, model string) int64 {
	encName, ok := encodingForModel[model]
	if !ok {
		encName = "cl100k_base"
	}

	var enc tokenizer.Codec
	var err error
	switch encName {
	case "o200k_base":
		enc, err = tokenizer.Get(tokenizer.O200kBase)
	default:
		enc, err = tokenizer.Get(tokenizer.Cl100kBase)
	}
	if err != nil {
		return estimateTokens(text)
	}

	ids, _, err := enc.Encode(text)
	if err != nil {
		return estimateTokens(text)
	}
	return int64(len(ids))
}

// estimateTokens approximates 4 characters per token.
func estimateTokens(text string) int64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}
	return int64((len(text) + 3) / 4)
}
