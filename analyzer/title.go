package analyzer

import (
	"unicode"
	"unicode/utf8"

	"github.com/seo-insights/backend/parser"
)

const (
	titleMinLength = 30
	titleMaxLength = 60
)

const (
	issueMissingTitle = "missing title tag"
	issueTitleShort   = "title too short"
	issueTitleLong    = "title too long"
	issueTitleNoAlpha = "title has no alphabetic characters"
)

// AnalyzeTitle scores the page title against length and content rules.
func AnalyzeTitle(doc *parser.Document) FactorResult {
	result := FactorResult{Factor: FactorTitle, Score: 100}

	if !doc.HasTitle {
		result.Score = 0
		result.addIssue(issueMissingTitle, "Add a title tag to your page")
		return result
	}

	length := utf8.RuneCountInString(doc.Title)
	if length < titleMinLength {
		result.Score -= 20
		result.addIssue(issueTitleShort, "Title tag is too short (should be 30-60 characters)")
	} else if length > titleMaxLength {
		result.Score -= 10
		result.addIssue(issueTitleLong, "Title tag is too long (should be 30-60 characters)")
	}

	if !containsAlphabetic(doc.Title) {
		result.Score -= 30
		result.addIssue(issueTitleNoAlpha, "Use descriptive words in the title instead of numbers or symbols")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	return result
}

func containsAlphabetic(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
