package pricing

import "errors"

// Sentinel errors for pricing configuration failures.
var (
	// ErrConfigMissing indicates the pricing file does not exist.
	ErrConfigMissing = errors.New("pricing config missing")
	// ErrConfigMalformed indicates the pricing file could not be parsed
	// into the expected provider -> model -> entry shape.
	ErrConfigMalformed = errors.New("pricing config malformed")
)

// Entry holds per-million-token prices for a single model.
// A zero input price marks a free/local model.
type Entry struct {
	InputCostPerMillion  float64 `yaml:"input_cost_per_million"`
	OutputCostPerMillion float64 `yaml:"output_cost_per_million"`
}

// Free reports whether the model bills nothing for input tokens.
func (e Entry) Free() bool {
	return e.InputCostPerMillion == 0
}

// Kind classifies a provider as remote (priced, hosted) or local (free).
type Kind int

const (
	KindRemote Kind = iota
	KindLocal
)

func (k Kind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "remote"
}

// Model is a resolved (provider, model) pair with its pricing and kind.
// Resolving once at validation time keeps the local/remote decision as
// data instead of repeated provider string checks.
type Model struct {
	Provider string
	Name     string
	Pricing  Entry
	Kind     Kind
}
