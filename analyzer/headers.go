package analyzer

import "github.com/seo-insights/backend/parser"

const (
	issueMissingH1   = "missing H1 heading"
	issueMultipleH1  = "multiple H1 headings"
	issueHeaderSkips = "heading levels skipped"
)

// AnalyzeHeaders scores the heading hierarchy. Zero H1s and multiple
// H1s are equally serious violations; every skipped level (an H1
// followed directly by an H3) costs a further 15 points.
func AnalyzeHeaders(doc *parser.Document) FactorResult {
	result := FactorResult{Factor: FactorHeaders, Score: 100}

	h1Count := 0
	for _, h := range doc.Headers {
		if h.Level == 1 {
			h1Count++
		}
	}

	if h1Count == 0 {
		result.Score -= 30
		result.addIssue(issueMissingH1, "Add an H1 heading")
	} else if h1Count > 1 {
		result.Score -= 30
		result.addIssue(issueMultipleH1, "Multiple H1 headings found - consider using only one")
	}

	skips := 0
	for i := 1; i < len(doc.Headers); i++ {
		if doc.Headers[i].Level > doc.Headers[i-1].Level+1 {
			skips++
		}
	}
	if skips > 0 {
		result.Score -= 15 * skips
		result.addIssue(issueHeaderSkips, "Keep heading levels sequential instead of skipping levels")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
