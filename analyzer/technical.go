package analyzer

import (
	"strings"

	"github.com/seo-insights/backend/parser"
)

const (
	issuePageSizeCritical = "page size over 5MB"
	issuePageSizeMajor    = "page size over 2MB"
	issuePageSizeModerate = "page size over 1MB"
	issuePageSizeMinor    = "page size over 500KB"
	issueNoViewport       = "missing viewport meta tag"
	issueNoindex          = "page blocked by noindex"
	issueNoCanonical      = "missing canonical link"
)

// AnalyzeTechnical scores technical health signals: transfer size,
// mobile viewport, index directives and canonicalization. Unlike a
// live performance probe it depends only on the fetched bytes, so the
// result is reproducible for identical input.
func AnalyzeTechnical(doc *parser.Document, pageSize int) FactorResult {
	result := FactorResult{Factor: FactorTechnical, Score: 100}

	pageSizeKB := float64(pageSize) / 1024.0
	switch {
	case pageSizeKB > 5120: // > 5MB
		result.Score -= 40
		result.addIssue(issuePageSizeCritical,
			"Critical: Page size is extremely large (>5MB). Consider optimizing images, minifying CSS/JS, and removing unnecessary resources")
	case pageSizeKB > 2048: // > 2MB
		result.Score -= 30
		result.addIssue(issuePageSizeMajor,
			"Major: Page size is very large (>2MB). Optimize images and consider lazy loading for non-critical resources")
	case pageSizeKB > 1024: // > 1MB
		result.Score -= 20
		result.addIssue(issuePageSizeModerate,
			"Moderate: Page size is large (>1MB). Look for opportunities to optimize images and resources")
	case pageSizeKB > 500: // > 500KB
		result.Score -= 10
		result.addIssue(issuePageSizeMinor,
			"Minor: Page size is above optimal (>500KB). Consider basic optimization techniques")
	}

	if !strings.Contains(strings.ToLower(doc.Viewport), "width=device-width") {
		result.Score -= 20
		result.addIssue(issueNoViewport,
			"Add a proper viewport meta tag for mobile optimization (e.g., <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">)")
	}

	if strings.Contains(strings.ToLower(doc.MetaRobots), "noindex") {
		result.Score -= 30
		result.addIssue(issueNoindex,
			"Remove the noindex directive if this page should appear in search results")
	}

	if strings.TrimSpace(doc.Canonical) == "" {
		result.Score -= 10
		result.addIssue(issueNoCanonical,
			"Add a canonical link tag to avoid duplicate content issues")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
