package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seo-insights/backend/metrics"
)

// SuggestClient talks to an autocomplete endpoint answering in the
// OpenSearch suggestions format: ["query", ["suggestion", ...]].
type SuggestClient struct {
	baseURL string
	client  *http.Client
}

// NewSuggestClient builds a client for the given endpoint, typically
// {host}/complete/search.
func NewSuggestClient(baseURL string, timeout time.Duration) *SuggestClient {
	return &SuggestClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetTransport replaces the HTTP transport. Tests use it to stub
// network responses.
func (c *SuggestClient) SetTransport(rt http.RoundTripper) {
	c.client.Transport = rt
}

// Suggestions returns autocomplete expansions for q.
func (c *SuggestClient) Suggestions(ctx context.Context, q string) ([]string, error) {
	endpoint := fmt.Sprintf("%s?client=firefox&q=%s", c.baseURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest endpoint returned status %d", resp.StatusCode)
	}

	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("unexpected suggestions payload shape")
	}

	var suggestions []string
	if err := json.Unmarshal(payload[1], &suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion list: %w", err)
	}
	return suggestions, nil
}

// SuggestProvider enriches candidates using only the free suggestion
// service. A keyword ranking high among its own expansions gets a
// higher volume estimate; difficulty, cpc and intent come from the
// deterministic estimator.
type SuggestProvider struct {
	client  *SuggestClient
	budget  *RateBudget
	metrics *metrics.Metrics
}

// NewSuggestProvider wires the suggestion client into the provider
// chain. budget is shared with the candidate-generation call.
func NewSuggestProvider(client *SuggestClient, budget *RateBudget, m *metrics.Metrics) *SuggestProvider {
	return &SuggestProvider{client: client, budget: budget, metrics: m}
}

func (p *SuggestProvider) Name() string { return SourceSuggest }

func (p *SuggestProvider) Quality() int { return 1 }

// Query enriches each candidate with one budgeted suggestion call.
// Running out of budget mid-list stops early with the records
// collected so far.
func (p *SuggestProvider) Query(ctx context.Context, candidates []string) ([]Record, error) {
	var records []Record
	var firstErr error

	for _, keyword := range candidates {
		if !p.budget.Allow(SourceSuggest) {
			break
		}

		suggestions, err := p.client.Suggestions(ctx, keyword)
		if err != nil {
			p.metrics.IncProviderCall(SourceSuggest, "error")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.metrics.IncProviderCall(SourceSuggest, "success")

		rank := len(suggestions)
		for i, s := range suggestions {
			if strings.EqualFold(strings.TrimSpace(s), keyword) {
				rank = i
				break
			}
		}

		volume := 1200 / (rank + 1)
		if volume < 150 {
			volume = 150
		}

		record := Estimate(keyword)
		record.SearchVolume = volume
		record.Source = SourceSuggest
		records = append(records, record)
	}

	if len(records) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}
