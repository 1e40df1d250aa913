package analyzer

import (
	"net/url"
	"strings"
)

const maxPathDepth = 4

const (
	issueURLUnparseable = "unparseable URL"
	issueURLDeep        = "URL path too deep"
	issueURLUnderscores = "underscores in URL path"
	issueURLUppercase   = "uppercase characters in URL path"
	issueURLQueryHeavy  = "too many query parameters"
	issueURLSessionID   = "session identifier in URL"
	issueURLEncoded     = "percent-encoded characters in URL"
)

var sessionParams = map[string]bool{
	"sessionid":  true,
	"session_id": true,
	"sid":        true,
	"phpsessid":  true,
	"jsessionid": true,
}

// AnalyzeURL scores the address itself: shallow, lowercase,
// hyphen-separated paths with few query parameters rank best.
func AnalyzeURL(rawURL string) FactorResult {
	result := FactorResult{Factor: FactorURL, Score: 100}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		result.Score = 0
		result.addIssue(issueURLUnparseable, "Use a simple, readable URL")
		return result
	}

	depth := 0
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			depth++
		}
	}
	if depth > maxPathDepth {
		penalty := 10 * (depth - maxPathDepth)
		if penalty > 30 {
			penalty = 30
		}
		result.Score -= penalty
		result.addIssue(issueURLDeep, "Flatten the URL structure to 4 path levels or fewer")
	}

	if strings.Contains(parsed.Path, "_") {
		result.Score -= 15
		result.addIssue(issueURLUnderscores, "Use hyphens instead of underscores to separate words in URLs")
	}

	if parsed.Path != strings.ToLower(parsed.Path) {
		result.Score -= 10
		result.addIssue(issueURLUppercase, "Use lowercase letters in URL paths")
	}

	query := parsed.Query()
	if len(query) > 2 {
		result.Score -= 15
		result.addIssue(issueURLQueryHeavy, "Reduce the number of query parameters (2 or fewer)")
	}

	for key := range query {
		if sessionParams[strings.ToLower(key)] {
			result.Score -= 10
			result.addIssue(issueURLSessionID, "Remove session identifiers from URLs")
			break
		}
	}

	if strings.Contains(parsed.EscapedPath(), "%") || strings.Contains(parsed.RawQuery, "%") {
		result.Score -= 10
		result.addIssue(issueURLEncoded, "Avoid percent-encoded characters in URLs")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
