package keywords

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/seo-insights/backend/config"
)

// stubProvider records the batches it was asked about and answers from
// a canned list.
type stubProvider struct {
	name    string
	quality int
	records []Record
	err     error
	calls   [][]string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Quality() int { return s.quality }
func (s *stubProvider) Query(ctx context.Context, keywords []string) ([]Record, error) {
	s.calls = append(s.calls, keywords)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type gatedProvider struct {
	stubProvider
	available bool
}

func (g *gatedProvider) Available() bool { return g.available }

func testResearchConfig() *config.Config {
	cfg := config.Default()
	cfg.ResearchCacheSize = 16
	cfg.ResearchCacheTTL = time.Minute
	return cfg
}

func TestResearchFallsBackToEstimates(t *testing.T) {
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil)

	records, err := agg.Research(context.Background(), "Digital Marketing", 5)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if records[0].Keyword != "digital marketing" {
		t.Errorf("first record = %q, want the normalized seed", records[0].Keyword)
	}
	for _, rec := range records {
		if rec.Source != SourceEstimate {
			t.Errorf("record %q source = %q, want %q", rec.Keyword, rec.Source, SourceEstimate)
		}
		if rec.SearchVolume <= 0 || rec.Difficulty <= 0 || rec.CPC <= 0 || rec.Intent == "" {
			t.Errorf("record %q has empty fields: %+v", rec.Keyword, rec)
		}
	}
}

func TestResearchMergesProviderRecords(t *testing.T) {
	premium := &stubProvider{
		name:    "premium-api",
		quality: 3,
		records: []Record{
			{Keyword: "digital marketing", SearchVolume: 50000, Difficulty: 70, CPC: 4.5, Intent: IntentMixed, Source: "premium-api"},
			{Keyword: "unrelated noise", SearchVolume: 1, Difficulty: 1, CPC: 0.1, Intent: IntentMixed, Source: "premium-api"},
		},
	}
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil, premium)

	records, err := agg.Research(context.Background(), "digital marketing", 4)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	if records[0].Keyword != "digital marketing" || records[0].Source != "premium-api" {
		t.Errorf("first record = %+v, want the provider-backed seed", records[0])
	}
	if records[0].SearchVolume != 50000 {
		t.Errorf("provider volume = %d, want 50000", records[0].SearchVolume)
	}
	for _, rec := range records[1:] {
		if rec.Source != SourceEstimate {
			t.Errorf("record %q source = %q, want estimate backfill", rec.Keyword, rec.Source)
		}
	}
	for _, rec := range records {
		if rec.Keyword == "unrelated noise" {
			t.Error("record outside the candidate set was merged")
		}
	}

	// Only the candidates still missing data go out, capped at the limit.
	if len(premium.calls) != 1 {
		t.Fatalf("provider queried %d times, want 1", len(premium.calls))
	}
	wantBatch := []string{
		"digital marketing",
		"how to digital marketing",
		"best digital marketing",
		"digital marketing guide",
	}
	if !reflect.DeepEqual(premium.calls[0], wantBatch) {
		t.Errorf("provider batch = %v, want %v", premium.calls[0], wantBatch)
	}
}

func TestResearchOrdersByQualityThenGeneration(t *testing.T) {
	premium := &stubProvider{
		name:    "premium-api",
		quality: 3,
		records: []Record{
			{Keyword: "digital marketing guide", SearchVolume: 8000, Difficulty: 55, CPC: 2.4, Intent: IntentInformational, Source: "premium-api"},
		},
	}
	freemium := &stubProvider{
		name:    "freemium-api",
		quality: 2,
		records: []Record{
			// Loses the merge: premium already answered for this keyword.
			{Keyword: "digital marketing guide", SearchVolume: 100, Difficulty: 10, CPC: 0.2, Intent: IntentInformational, Source: "freemium-api"},
			{Keyword: "how to digital marketing", SearchVolume: 700, Difficulty: 40, CPC: 1.1, Intent: IntentInformational, Source: "freemium-api"},
		},
	}

	// Registration order must not matter, quality does.
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil, freemium, premium)

	records, err := agg.Research(context.Background(), "digital marketing", 8)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) != 8 {
		t.Fatalf("got %d records, want 8", len(records))
	}

	if records[0].Keyword != "digital marketing guide" || records[0].Source != "premium-api" {
		t.Errorf("first record = %+v, want the premium result", records[0])
	}
	if records[0].SearchVolume != 8000 {
		t.Errorf("merged volume = %d, want the premium value 8000", records[0].SearchVolume)
	}
	if records[1].Keyword != "how to digital marketing" || records[1].Source != "freemium-api" {
		t.Errorf("second record = %+v, want the freemium result", records[1])
	}
	if records[2].Keyword != "digital marketing" || records[2].Source != SourceEstimate {
		t.Errorf("third record = %+v, want the estimated seed", records[2])
	}

	// The freemium batch must not re-ask what premium already answered.
	if len(freemium.calls) != 1 {
		t.Fatalf("freemium queried %d times, want 1", len(freemium.calls))
	}
	for _, kw := range freemium.calls[0] {
		if kw == "digital marketing guide" {
			t.Error("already-enriched keyword was sent to a lower-quality provider")
		}
	}
}

func TestResearchSkipsUnavailableProviders(t *testing.T) {
	gated := &gatedProvider{
		stubProvider: stubProvider{name: "premium-api", quality: 3},
		available:    false,
	}
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil, gated)

	if _, err := agg.Research(context.Background(), "seo", 3); err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(gated.calls) != 0 {
		t.Fatal("unavailable provider was queried")
	}
}

func TestResearchSkipsProvidersOverBudget(t *testing.T) {
	budget := NewRateBudget()
	budget.Configure("premium-api", 1, time.Minute)
	budget.Allow("premium-api")

	premium := &stubProvider{name: "premium-api", quality: 3}
	agg := NewAggregator(testResearchConfig(), budget, nil, nil, nil, premium)

	records, err := agg.Research(context.Background(), "seo", 3)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(premium.calls) != 0 {
		t.Fatal("provider with an exhausted budget was queried")
	}
	for _, rec := range records {
		if rec.Source != SourceEstimate {
			t.Errorf("record %q source = %q, want estimate", rec.Keyword, rec.Source)
		}
	}
}

func TestResearchSurvivesProviderErrors(t *testing.T) {
	failing := &stubProvider{name: "premium-api", quality: 3, err: errors.New("upstream down")}
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil, failing)

	records, err := agg.Research(context.Background(), "seo basics", 4)
	if err != nil {
		t.Fatalf("Research should fall back to estimates, got error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	for _, rec := range records {
		if rec.Source != SourceEstimate {
			t.Errorf("record %q source = %q, want estimate", rec.Keyword, rec.Source)
		}
	}
}

func TestResearchCachesResults(t *testing.T) {
	premium := &stubProvider{
		name:    "premium-api",
		quality: 3,
		records: []Record{{Keyword: "seo", SearchVolume: 12000, Difficulty: 80, CPC: 5.0, Intent: IntentMixed, Source: "premium-api"}},
	}
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil, premium)

	first, err := agg.Research(context.Background(), "seo", 5)
	if err != nil {
		t.Fatalf("first Research returned error: %v", err)
	}
	second, err := agg.Research(context.Background(), "seo", 5)
	if err != nil {
		t.Fatalf("second Research returned error: %v", err)
	}

	if len(premium.calls) != 1 {
		t.Fatalf("provider queried %d times, want 1 (second call should be cached)", len(premium.calls))
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result differs from the first result")
	}

	// A different limit is a different cache entry.
	if _, err := agg.Research(context.Background(), "seo", 3); err != nil {
		t.Fatalf("Research with new limit returned error: %v", err)
	}
	if len(premium.calls) != 2 {
		t.Errorf("provider queried %d times, want 2 after a new limit", len(premium.calls))
	}
}

func TestResearchRejectsEmptySeed(t *testing.T) {
	agg := NewAggregator(testResearchConfig(), NewRateBudget(), nil, nil, nil)

	for _, seed := range []string{"", "   ", "\t\n"} {
		_, err := agg.Research(context.Background(), seed, 5)
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("Research(%q) error = %v, want InputError", seed, err)
		}
		if inputErr.Field != "keyword" {
			t.Errorf("InputError field = %q, want keyword", inputErr.Field)
		}
	}
}

func TestResearchClampsLimit(t *testing.T) {
	cfg := testResearchConfig()
	cfg.KeywordDefaultLimit = 3
	cfg.KeywordMaxLimit = 6
	agg := NewAggregator(cfg, NewRateBudget(), nil, nil, nil)

	records, err := agg.Research(context.Background(), "content marketing", 0)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("limit 0 returned %d records, want the default 3", len(records))
	}

	records, err = agg.Research(context.Background(), "content marketing", 100)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) != 6 {
		t.Errorf("limit 100 returned %d records, want the max 6", len(records))
	}
}

func TestResearchExpandsWithSuggestions(t *testing.T) {
	client := NewSuggestClient(suggestTestURL, time.Second)
	mock := httpmock.NewMockTransport()
	client.SetTransport(mock)
	mock.RegisterResponderWithQuery("GET", suggestTestURL,
		url.Values{"client": {"firefox"}, "q": {"coffee"}},
		httpmock.NewStringResponder(200, `["coffee",["coffee near me","coffee beans"]]`))

	agg := NewAggregator(testResearchConfig(), NewRateBudget(), client, nil, nil)

	records, err := agg.Research(context.Background(), "coffee", 10)
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if len(records) < 3 {
		t.Fatalf("got %d records, want the seed plus both suggestions", len(records))
	}
	if records[0].Keyword != "coffee" {
		t.Errorf("first record = %q, want the seed", records[0].Keyword)
	}
	if records[1].Keyword != "coffee near me" || records[2].Keyword != "coffee beans" {
		t.Errorf("suggestions not in generation order: %q, %q", records[1].Keyword, records[2].Keyword)
	}
}
