package logging

import (
	"path/filepath"
	"testing"
)

func TestStatisticsTracking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.json")
	stats := NewStatistics(path)

	if total := stats.TrackRequest("203.0.113.7"); total != 1 {
		t.Errorf("request total = %d, want 1", total)
	}
	stats.TrackAnalysis("https://example.com/pricing?ref=x", 120, false)
	stats.TrackAnalysis("https://example.com/pricing", 80, false)
	stats.TrackAnalysis("https://other.net/", 100, true)
	stats.TrackResearch("Running Shoes", false)

	if got := stats.GetUniqueVisitorsCount(); got != 1 {
		t.Errorf("unique visitors = %d, want 1", got)
	}
	if stats.AnalysisRequests != 3 {
		t.Errorf("analysis requests = %d, want 3", stats.AnalysisRequests)
	}
	if stats.ResearchRequests != 1 {
		t.Errorf("research requests = %d, want 1", stats.ResearchRequests)
	}
	if got := stats.PopularURLs["https://example.com/pricing"]; got != 2 {
		t.Errorf("pricing count = %d, want 2 (query string should be dropped)", got)
	}
	if got := stats.PopularKeywords["running shoes"]; got != 1 {
		t.Errorf("keyword count = %d, want 1 (seeds should be lowercased)", got)
	}
	if got := stats.GetErrorRate(); got != 25 {
		t.Errorf("error rate = %g, want 25", got)
	}
	if stats.AverageAnalyzeMs != 100 {
		t.Errorf("average analyze ms = %g, want 100", stats.AverageAnalyzeMs)
	}
}

func TestStatisticsSnapshotHidesDetailsInProduction(t *testing.T) {
	stats := NewStatistics(filepath.Join(t.TempDir(), "statistics.json"))
	stats.TrackAnalysis("https://example.com/", 50, false)

	prod := stats.Snapshot(false)
	if _, ok := prod["popularUrls"]; ok {
		t.Error("production snapshot should not expose popular URLs")
	}

	dev := stats.Snapshot(true)
	if _, ok := dev["popularUrls"]; !ok {
		t.Error("development snapshot should expose popular URLs")
	}
	if _, ok := dev["popularKeywords"]; !ok {
		t.Error("development snapshot should expose popular keywords")
	}
}

func TestStatisticsSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.json")

	stats := NewStatistics(path)
	stats.TrackAnalysis("https://example.com/docs", 42, false)
	stats.TrackResearch("seo basics", false)
	if err := stats.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded := NewStatistics(path)
	if reloaded.AnalysisRequests != 1 {
		t.Errorf("reloaded analysis requests = %d, want 1", reloaded.AnalysisRequests)
	}
	if count := reloaded.PopularKeywords["seo basics"]; count != 1 {
		t.Errorf("reloaded keyword count = %d, want 1", count)
	}
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/pricing?utm=1", "https://example.com/pricing"},
		{"https://example.com/", "https://example.com"},
		{"http://localhost:8082/api/analyze", ""},
		{"https://site.io/api/v2/thing", ""},
	}
	for _, tt := range tests {
		if got := cleanURL(tt.in); got != tt.want {
			t.Errorf("cleanURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
