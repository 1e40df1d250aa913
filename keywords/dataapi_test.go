package keywords

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func newTestDataAPIProvider(name string, quality int, budget *RateBudget) (*DataAPIProvider, *httpmock.MockTransport) {
	provider := NewDataAPIProvider(name, quality, "https://api.test", "secret-key", budget, time.Second, nil)
	mock := httpmock.NewMockTransport()
	provider.SetTransport(mock)
	return provider, mock
}

func TestDataAPIProviderMapsResults(t *testing.T) {
	provider, mock := newTestDataAPIProvider("premium-api", 3, NewRateBudget())

	var gotAuth, gotContentType string
	var gotRequest dataAPIRequest
	mock.RegisterResponder("POST", "https://api.test/v1/keywords",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotContentType = req.Header.Get("Content-Type")
			if err := json.NewDecoder(req.Body).Decode(&gotRequest); err != nil {
				return httpmock.NewStringResponse(400, "bad body"), nil
			}
			return httpmock.NewStringResponse(200, `{
				"results": [
					{"keyword": "coffee beans", "search_volume": 9000, "difficulty": 45, "cpc": 2.75},
					{"keyword": "buy coffee online", "search_volume": 4200, "difficulty": 61, "cpc": 3.1}
				]
			}`), nil
		})

	records, err := provider.Query(context.Background(), []string{"coffee beans", "buy coffee online"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret-key")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if want := []string{"coffee beans", "buy coffee online"}; !reflect.DeepEqual(gotRequest.Keywords, want) {
		t.Errorf("request keywords = %v, want %v", gotRequest.Keywords, want)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if first.Keyword != "coffee beans" || first.SearchVolume != 9000 || first.Difficulty != 45 || first.CPC != 2.75 {
		t.Errorf("unexpected record: %+v", first)
	}
	if first.Source != "premium-api" {
		t.Errorf("source = %q, want premium-api", first.Source)
	}
	if first.Intent != IntentMixed {
		t.Errorf("intent = %q, want %q", first.Intent, IntentMixed)
	}
	if records[1].Intent != IntentCommercial {
		t.Errorf("intent = %q, want %q for a purchase keyword", records[1].Intent, IntentCommercial)
	}
}

func TestDataAPIProviderUnavailableWithoutCredentials(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
	}{
		{"no key", "https://api.test", ""},
		{"no url", "", "secret"},
		{"nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewDataAPIProvider("freemium-api", 2, tt.baseURL, tt.apiKey, NewRateBudget(), time.Second, nil)
			if provider.Available() {
				t.Fatal("provider without credentials reported available")
			}
			if _, err := provider.Query(context.Background(), []string{"x"}); err == nil {
				t.Fatal("Query on an unconfigured provider succeeded")
			}
		})
	}
}

func TestDataAPIProviderRespectsBudget(t *testing.T) {
	budget := NewRateBudget()
	budget.Configure("premium-api", 1, time.Minute)
	budget.Allow("premium-api")

	provider, mock := newTestDataAPIProvider("premium-api", 3, budget)
	mock.RegisterResponder("POST", "https://api.test/v1/keywords",
		httpmock.NewStringResponder(200, `{"results": []}`))

	if _, err := provider.Query(context.Background(), []string{"coffee"}); err == nil {
		t.Fatal("Query over budget succeeded")
	}
	if calls := mock.GetTotalCallCount(); calls != 0 {
		t.Errorf("made %d HTTP calls, want 0", calls)
	}
}

func TestDataAPIProviderRejectsErrorStatus(t *testing.T) {
	provider, mock := newTestDataAPIProvider("premium-api", 3, NewRateBudget())
	mock.RegisterResponder("POST", "https://api.test/v1/keywords",
		httpmock.NewStringResponder(429, `{"error": "quota exceeded"}`))

	if _, err := provider.Query(context.Background(), []string{"coffee"}); err == nil {
		t.Fatal("expected error for status 429, got nil")
	}
}
