package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/seo-insights/backend/cache"
	"github.com/seo-insights/backend/config"
	"github.com/seo-insights/backend/metrics"
	"github.com/seo-insights/backend/stats"
)

// Candidate expansion templates applied to the seed phrase.
var (
	questionTemplates = []string{"how to %s", "best %s", "%s guide"}
	longTailTemplates = []string{"%s tips", "%s tutorial", "%s examples", "%s for beginners"}
)

// availabler is implemented by providers that may be left unconfigured.
type availabler interface {
	Available() bool
}

// Aggregator expands a seed into candidates, walks the provider chain
// from highest to lowest quality and backfills whatever the providers
// could not cover with deterministic estimates. Results are cached per
// seed and limit.
type Aggregator struct {
	providers []Provider
	quality   map[string]int
	budget    *RateBudget
	suggest   *SuggestClient
	cache     *cache.Cache[[]Record]
	stats     *stats.Storage
	metrics   *metrics.Metrics

	defaultLimit int
	maxLimit     int
}

// NewAggregator wires the research pipeline. Providers that report
// themselves unavailable are dropped; the rest are ordered by quality
// so better data always wins the merge. suggest may be nil, stats and
// metrics may be nil.
func NewAggregator(cfg *config.Config, budget *RateBudget, suggest *SuggestClient, store *stats.Storage, m *metrics.Metrics, providers ...Provider) *Aggregator {
	kept := make([]Provider, 0, len(providers))
	quality := map[string]int{SourceEstimate: 0}
	for _, p := range providers {
		if gated, ok := p.(availabler); ok && !gated.Available() {
			continue
		}
		kept = append(kept, p)
		quality[p.Name()] = p.Quality()
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Quality() > kept[j].Quality()
	})

	return &Aggregator{
		providers:    kept,
		quality:      quality,
		budget:       budget,
		suggest:      suggest,
		cache:        cache.New[[]Record](cfg.ResearchCacheSize, cfg.ResearchCacheTTL),
		stats:        store,
		metrics:      m,
		defaultLimit: cfg.KeywordDefaultLimit,
		maxLimit:     cfg.KeywordMaxLimit,
	}
}

// Research returns up to limit keyword records for the seed phrase,
// ordered by data quality and then by generation order. A limit of
// zero or below selects the configured default.
func (a *Aggregator) Research(ctx context.Context, seed string, limit int) ([]Record, error) {
	seed = strings.ToLower(strings.TrimSpace(seed))
	if seed == "" {
		return nil, &InputError{Field: "keyword", Reason: "must not be empty"}
	}
	if limit <= 0 {
		limit = a.defaultLimit
	}
	if limit > a.maxLimit {
		limit = a.maxLimit
	}

	key := cache.Fingerprint("research", seed, strconv.Itoa(limit))
	if cached, ok := a.cache.Get(key); ok {
		a.metrics.IncCacheEvent("research", "hit")
		a.stats.RecordResearch(true)
		return cached, nil
	}
	a.metrics.IncCacheEvent("research", "miss")

	candidates := a.generateCandidates(ctx, seed)
	enriched := make(map[string]Record, len(candidates))

	var firstErr error
	for _, p := range a.providers {
		name := p.Name()
		if a.budget.Remaining(name) <= 0 {
			a.metrics.IncProviderCall(name, "skipped")
			continue
		}

		pending := pendingCandidates(candidates, enriched, limit)
		if len(pending) == 0 {
			break
		}

		records, err := p.Query(ctx, pending)
		if err != nil {
			slog.Warn("keyword provider failed", "provider", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, rec := range records {
			kw := strings.ToLower(strings.TrimSpace(rec.Keyword))
			if _, wanted := indexOf(candidates, kw); !wanted {
				continue
			}
			if _, done := enriched[kw]; done {
				continue
			}
			rec.Keyword = kw
			enriched[kw] = rec
		}
	}

	results := make([]Record, 0, len(candidates))
	for _, kw := range candidates {
		rec, ok := enriched[kw]
		if !ok {
			rec = Estimate(kw)
		}
		results = append(results, rec)
	}

	// Stable sort keeps generation order within each quality tier.
	sort.SliceStable(results, func(i, j int) bool {
		return a.quality[results[i].Source] > a.quality[results[j].Source]
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if len(results) == 0 {
		return nil, &AggregationError{Kind: AggregationAllProvidersFailed, Err: firstErr}
	}

	estimated := 0
	for _, rec := range results {
		if rec.Source == SourceEstimate {
			estimated++
		}
	}
	a.stats.RecordEstimates(estimated)
	a.stats.RecordResearch(false)

	a.cache.Set(key, results)
	return results, nil
}

// generateCandidates builds the expansion list: the seed itself, one
// budgeted round of autocomplete suggestions, then the question and
// long-tail templates. Duplicates keep their first position.
func (a *Aggregator) generateCandidates(ctx context.Context, seed string) []string {
	candidates := []string{seed}

	if a.suggest != nil && a.budget.Allow(SourceSuggest) {
		suggestions, err := a.suggest.Suggestions(ctx, seed)
		if err != nil {
			a.metrics.IncProviderCall(SourceSuggest, "error")
			slog.Debug("suggestion expansion failed", "seed", seed, "error", err)
		} else {
			a.metrics.IncProviderCall(SourceSuggest, "success")
			candidates = append(candidates, suggestions...)
		}
	}

	for _, tmpl := range questionTemplates {
		candidates = append(candidates, fmt.Sprintf(tmpl, seed))
	}
	for _, tmpl := range longTailTemplates {
		candidates = append(candidates, fmt.Sprintf(tmpl, seed))
	}

	return dedupe(candidates)
}

// pendingCandidates returns up to limit candidates that still lack a
// provider record, in generation order.
func pendingCandidates(candidates []string, enriched map[string]Record, limit int) []string {
	var out []string
	for _, kw := range candidates {
		if _, ok := enriched[kw]; ok {
			continue
		}
		out = append(out, kw)
		if len(out) == limit {
			break
		}
	}
	return out
}

// dedupe normalizes to lowercase and keeps first occurrences.
func dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func indexOf(keywords []string, kw string) (int, bool) {
	for i, candidate := range keywords {
		if candidate == kw {
			return i, true
		}
	}
	return 0, false
}
