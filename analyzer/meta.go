package analyzer

import (
	"unicode/utf8"

	"github.com/seo-insights/backend/parser"
)

const (
	metaMinLength = 120
	metaMaxLength = 160
)

const (
	issueMissingMeta = "missing meta description"
	issueMetaShort   = "meta description too short"
	issueMetaLong    = "meta description too long"
)

// AnalyzeMeta scores the meta description against length rules.
func AnalyzeMeta(doc *parser.Document) FactorResult {
	result := FactorResult{Factor: FactorMeta, Score: 100}

	if !doc.HasMetaDescription {
		result.Score = 0
		result.addIssue(issueMissingMeta, "Add a meta description")
		return result
	}

	length := utf8.RuneCountInString(doc.MetaDescription)
	if length < metaMinLength {
		result.Score -= 15
		result.addIssue(issueMetaShort, "Meta description is too short (should be 120-160 characters)")
	} else if length > metaMaxLength {
		result.Score -= 10
		result.addIssue(issueMetaLong, "Meta description is too long (should be 120-160 characters)")
	}

	return result
}
