package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/seo-insights/backend/metrics"
)

// DataAPIProvider queries a commercial keyword-data HTTP API. The
// premium and freemium tiers share this shape and differ only in base
// URL, credentials, quality rank and budget.
type DataAPIProvider struct {
	name    string
	quality int
	baseURL string
	apiKey  string
	budget  *RateBudget
	client  *http.Client
	metrics *metrics.Metrics
}

// NewDataAPIProvider builds a provider for one API tier. An empty
// baseURL or key leaves the provider unavailable, which drops it from
// the chain.
func NewDataAPIProvider(name string, quality int, baseURL, apiKey string, budget *RateBudget, timeout time.Duration, m *metrics.Metrics) *DataAPIProvider {
	return &DataAPIProvider{
		name:    name,
		quality: quality,
		baseURL: baseURL,
		apiKey:  apiKey,
		budget:  budget,
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// SetTransport replaces the HTTP transport. Tests use it to stub
// network responses.
func (p *DataAPIProvider) SetTransport(rt http.RoundTripper) {
	p.client.Transport = rt
}

// Available reports whether the tier is configured with credentials.
func (p *DataAPIProvider) Available() bool {
	return p.baseURL != "" && p.apiKey != ""
}

func (p *DataAPIProvider) Name() string { return p.name }

func (p *DataAPIProvider) Quality() int { return p.quality }

type dataAPIRequest struct {
	Keywords []string `json:"keywords"`
}

type dataAPIResponse struct {
	Results []struct {
		Keyword      string  `json:"keyword"`
		SearchVolume int     `json:"search_volume"`
		Difficulty   int     `json:"difficulty"`
		CPC          float64 `json:"cpc"`
	} `json:"results"`
}

// Query posts the whole candidate batch in one budgeted call and maps
// the response onto records. Intent is computed locally; the APIs do
// not return it.
func (p *DataAPIProvider) Query(ctx context.Context, candidates []string) ([]Record, error) {
	if !p.Available() {
		return nil, fmt.Errorf("%s provider not configured", p.name)
	}
	if !p.budget.Allow(p.name) {
		p.metrics.IncProviderCall(p.name, "skipped")
		return nil, fmt.Errorf("%s provider over rate budget", p.name)
	}

	body, err := json.Marshal(dataAPIRequest{Keywords: candidates})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/keywords", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.IncProviderCall(p.name, "error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.metrics.IncProviderCall(p.name, "error")
		return nil, fmt.Errorf("%s provider returned status %d", p.name, resp.StatusCode)
	}

	var payload dataAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.metrics.IncProviderCall(p.name, "error")
		return nil, fmt.Errorf("failed to decode %s response: %w", p.name, err)
	}
	p.metrics.IncProviderCall(p.name, "success")

	records := make([]Record, 0, len(payload.Results))
	for _, result := range payload.Results {
		records = append(records, Record{
			Keyword:      result.Keyword,
			SearchVolume: result.SearchVolume,
			Difficulty:   result.Difficulty,
			CPC:          result.CPC,
			Intent:       ClassifyIntent(result.Keyword),
			Source:       p.name,
		})
	}
	return records, nil
}
