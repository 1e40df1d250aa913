package keywords

import "strings"

// Intent term lists, checked in precedence order: a keyword matching a
// commercial term is commercial even if it also matches the others.
var (
	commercialTerms = []string{
		"buy", "price", "cost", "cheap", "best", "review", "deal", "discount", "coupon",
	}
	navigationalTerms = []string{
		"login", "sign in", "signin", "website", "official", "portal", "download",
	}
	informationalTerms = []string{
		"how to", "what is", "why", "when", "where", "guide", "tutorial",
		"learn", "examples", "tips", "meaning", "definition",
	}
)

// ClassifyIntent infers search intent from the keyword text alone,
// by case-insensitive substring match.
func ClassifyIntent(keyword string) string {
	lower := strings.ToLower(keyword)

	for _, term := range commercialTerms {
		if strings.Contains(lower, term) {
			return IntentCommercial
		}
	}
	for _, term := range navigationalTerms {
		if strings.Contains(lower, term) {
			return IntentNavigational
		}
	}
	for _, term := range informationalTerms {
		if strings.Contains(lower, term) {
			return IntentInformational
		}
	}
	return IntentMixed
}
