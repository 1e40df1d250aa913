package keywords

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// Estimate fills a keyword record without any provider call. The RNG
// is seeded from the keyword text, so repeated calls for the same
// keyword always return the same values: volume shrinks with word
// count, difficulty grows with it, and commercial terms carry a higher
// cost-per-click.
func Estimate(keyword string) Record {
	h := fnv.New64a()
	h.Write([]byte(keyword))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	words := len(strings.Fields(keyword))
	if words == 0 {
		words = 1
	}

	base := 500 + rng.Intn(4501)
	volume := base / words
	if volume < 50 {
		volume = 50
	}

	difficulty := 20 + words*10 + rng.Intn(31)
	if difficulty > 90 {
		difficulty = 90
	}

	intent := ClassifyIntent(keyword)
	var cpc float64
	if intent == IntentCommercial {
		cpc = 1.5 + rng.Float64()*6.5
	} else {
		cpc = 0.3 + rng.Float64()*1.7
	}

	return Record{
		Keyword:      keyword,
		SearchVolume: volume,
		Difficulty:   difficulty,
		CPC:          math.Round(cpc*100) / 100,
		Intent:       intent,
		Source:       SourceEstimate,
	}
}
