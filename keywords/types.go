// Package keywords turns a seed phrase into a ranked list of related
// keywords annotated with estimated demand, difficulty, cost-per-click
// and intent. Data comes from a chain of external providers with a
// deterministic estimator as the backstop.
package keywords

import (
	"context"
	"fmt"
)

// Intent labels for the inferred purpose behind a query.
const (
	IntentInformational = "informational"
	IntentCommercial    = "commercial"
	IntentNavigational  = "navigational"
	IntentMixed         = "mixed"
)

// Source identifiers for records not produced by a named API provider.
const (
	SourceEstimate = "estimate"
	SourceSuggest  = "suggest"
)

// Record is one normalized keyword.
type Record struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int     `json:"searchVolume"`
	Difficulty   int     `json:"difficulty"`
	CPC          float64 `json:"cpc"`
	Intent       string  `json:"intent"`
	Source       string  `json:"source"`
}

// Provider is one keyword-data source in the fallback chain. Higher
// quality providers are consulted first and their records win merges.
type Provider interface {
	Name() string
	Quality() int
	Query(ctx context.Context, keywords []string) ([]Record, error)
}

// InputError rejects malformed research input before any provider call.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AggregationError kinds.
const (
	AggregationRateLimited        = "rate_limited"
	AggregationAllProvidersFailed = "all_providers_failed"
)

// AggregationError is the terminal failure of a research call. The
// deterministic estimator backstops the provider chain, so this is a
// defensive state rather than an expected outcome.
type AggregationError struct {
	Kind string
	Err  error
}

func (e *AggregationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keyword aggregation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("keyword aggregation failed (%s)", e.Kind)
}

func (e *AggregationError) Unwrap() error { return e.Err }
