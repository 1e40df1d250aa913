package keywords

import (
	"reflect"
	"testing"
)

func TestEstimateIsDeterministic(t *testing.T) {
	keywords := []string{"seo", "digital marketing", "how to learn golang", "buy cheap shoes online"}

	for _, kw := range keywords {
		first := Estimate(kw)
		for i := 0; i < 5; i++ {
			if got := Estimate(kw); !reflect.DeepEqual(got, first) {
				t.Fatalf("Estimate(%q) changed between calls: %+v vs %+v", kw, got, first)
			}
		}
	}
}

func TestEstimateStaysInRange(t *testing.T) {
	keywords := []string{
		"seo",
		"digital marketing",
		"how to learn digital marketing from scratch",
		"buy cheap shoes",
		"x",
	}

	for _, kw := range keywords {
		rec := Estimate(kw)
		if rec.Keyword != kw {
			t.Errorf("Estimate(%q) keyword = %q", kw, rec.Keyword)
		}
		if rec.SearchVolume < 50 || rec.SearchVolume > 5000 {
			t.Errorf("Estimate(%q) volume = %d, want within [50, 5000]", kw, rec.SearchVolume)
		}
		if rec.Difficulty < 20 || rec.Difficulty > 90 {
			t.Errorf("Estimate(%q) difficulty = %d, want within [20, 90]", kw, rec.Difficulty)
		}
		if rec.CPC < 0.3 || rec.CPC > 8.0 {
			t.Errorf("Estimate(%q) cpc = %.2f, want within [0.30, 8.00]", kw, rec.CPC)
		}
		if rec.Source != SourceEstimate {
			t.Errorf("Estimate(%q) source = %q, want %q", kw, rec.Source, SourceEstimate)
		}
	}
}

func TestEstimateCommercialKeywordsCostMore(t *testing.T) {
	rec := Estimate("buy cheap shoes")
	if rec.Intent != IntentCommercial {
		t.Fatalf("intent = %q, want %q", rec.Intent, IntentCommercial)
	}
	if rec.CPC < 1.5 {
		t.Errorf("commercial cpc = %.2f, want at least 1.50", rec.CPC)
	}

	rec = Estimate("how to tie a tie")
	if rec.Intent != IntentInformational {
		t.Fatalf("intent = %q, want %q", rec.Intent, IntentInformational)
	}
	if rec.CPC >= 2.0 {
		t.Errorf("informational cpc = %.2f, want below 2.00", rec.CPC)
	}
}

func TestEstimateLongerPhrasesGetLessVolume(t *testing.T) {
	// Volume divides by word count, so a five-word phrase stays at or
	// below 1000 even on the maximum base draw.
	long := Estimate("how to learn digital marketing")
	if long.SearchVolume > 1000 {
		t.Errorf("five-word volume = %d, want at most 1000", long.SearchVolume)
	}
}
