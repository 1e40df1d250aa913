// Package analyzer runs the page analysis pipeline: fetch, parse,
// per-factor signal extraction, and weighted scoring with prioritized
// recommendations.
package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/seo-insights/backend/cache"
	"github.com/seo-insights/backend/config"
	"github.com/seo-insights/backend/fetcher"
	"github.com/seo-insights/backend/metrics"
	"github.com/seo-insights/backend/parser"
	"github.com/seo-insights/backend/stats"
)

// Analyzer owns the fetch cache and coordinates the extractors.
// Safe for concurrent use.
type Analyzer struct {
	fetcher *fetcher.Fetcher
	cache   *cache.Cache[*fetcher.Result]
	stats   *stats.Storage
	metrics *metrics.Metrics
}

// New builds an Analyzer. stats and metrics may be nil.
func New(f *fetcher.Fetcher, cfg *config.Config, storage *stats.Storage, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		fetcher: f,
		cache:   cache.New[*fetcher.Result](cfg.FetchCacheSize, cfg.FetchCacheTTL),
		stats:   storage,
		metrics: m,
	}
}

// Analyze fetches rawURL (or reuses a cached fetch), parses it and
// scores every factor. The returned report is fully built; callers
// decide whether to persist it.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Report, error) {
	start := time.Now()

	key := cache.Fingerprint("fetch", rawURL)
	result, hit := a.cache.Get(key)
	if hit {
		a.metrics.IncCacheEvent("fetch", "hit")
	} else {
		a.metrics.IncCacheEvent("fetch", "miss")
		fetched, err := a.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		result = fetched
		a.cache.Set(key, result)
	}

	doc := parser.Parse(result.FinalURL, result.Body, result.ContentType)
	report := buildReport(rawURL, result, doc)

	a.stats.RecordAnalysis(hit)
	a.metrics.ObserveAnalyzeDuration(time.Since(start).Seconds())
	return report, nil
}

// buildReport evaluates all factors. The extractors are pure and
// mutually independent, so they run concurrently into distinct
// variables.
func buildReport(rawURL string, result *fetcher.Result, doc *parser.Document) *Report {
	var (
		title, meta, headers, content FactorResult
		images, address, technical    FactorResult
		wg                            sync.WaitGroup
	)

	wg.Add(7)
	go func() { defer wg.Done(); title = AnalyzeTitle(doc) }()
	go func() { defer wg.Done(); meta = AnalyzeMeta(doc) }()
	go func() { defer wg.Done(); headers = AnalyzeHeaders(doc) }()
	go func() { defer wg.Done(); content = AnalyzeContent(doc) }()
	go func() { defer wg.Done(); images = AnalyzeImages(doc) }()
	go func() { defer wg.Done(); address = AnalyzeURL(result.FinalURL) }()
	go func() { defer wg.Done(); technical = AnalyzeTechnical(doc, len(result.Body)) }()
	wg.Wait()

	factors := map[string]FactorResult{
		FactorTitle:     title,
		FactorMeta:      meta,
		FactorHeaders:   headers,
		FactorContent:   content,
		FactorImages:    images,
		FactorURL:       address,
		FactorTechnical: technical,
	}

	overall, recommendations := Score(factors)

	internal, external := 0, 0
	for _, link := range doc.Links {
		if link.External {
			external++
		} else {
			internal++
		}
	}

	return &Report{
		URL:             rawURL,
		FetchedAt:       time.Now().UTC(),
		Factors:         factors,
		OverallScore:    overall,
		Recommendations: recommendations,
		Page: PageDetails{
			Title:           doc.Title,
			MetaDescription: doc.MetaDescription,
			WordCount:       doc.WordCount,
			ParagraphCount:  doc.ParagraphCount,
			HeaderCount:     len(doc.Headers),
			ImageCount:      len(doc.Images),
			InternalLinks:   internal,
			ExternalLinks:   external,
			PageSizeBytes:   len(result.Body),
			FetchAttempts:   result.Attempts,
			FetchMs:         result.Elapsed.Milliseconds(),
		},
	}
}
