package analyzer

import (
	"math"
	"sort"
)

// factorWeights must sum to 1.0.
var factorWeights = map[string]float64{
	FactorTitle:     0.20,
	FactorMeta:      0.15,
	FactorHeaders:   0.15,
	FactorContent:   0.25,
	FactorImages:    0.10,
	FactorURL:       0.10,
	FactorTechnical: 0.05,
}

// FactorOrder is the canonical presentation order of factors. It also
// fixes the tie-break for recommendations with equal priority.
var FactorOrder = []string{
	FactorTitle,
	FactorMeta,
	FactorHeaders,
	FactorContent,
	FactorImages,
	FactorURL,
	FactorTechnical,
}

var priorityRank = map[string]int{"high": 3, "medium": 2, "low": 1}

// issuePriorities pins priority and impact for issues whose severity
// does not follow from the factor score alone.
var issuePriorities = map[string]struct{ priority, impact string }{
	issueMissingTitle:     {"high", "Very High"},
	issueMissingMeta:      {"high", "High"},
	issueMissingH1:        {"high", "High"},
	issueMultipleH1:       {"medium", "Medium"},
	issueContentShort:     {"medium", "High"},
	issueImagesMissingAlt: {"medium", "Medium"},
	issueNoindex:          {"high", "Very High"},
	issuePageSizeCritical: {"high", "High"},
}

// Score combines factor results into the weighted overall score and a
// prioritized recommendation list. Factors absent from the map count
// as a neutral 100. Identical input always produces an identical score
// and recommendation order.
func Score(factors map[string]FactorResult) (int, []Recommendation) {
	var weighted float64
	for name, weight := range factorWeights {
		if factor, ok := factors[name]; ok {
			weighted += float64(factor.Score) * weight
		} else {
			weighted += 100 * weight
		}
	}
	overall := int(math.Round(weighted))

	return overall, collectRecommendations(factors)
}

func collectRecommendations(factors map[string]FactorResult) []Recommendation {
	var recs []Recommendation
	for _, name := range FactorOrder {
		factor, ok := factors[name]
		if !ok {
			continue
		}
		for i, issue := range factor.Issues {
			priority, impact := classifyIssue(issue, factor.Score)
			rec := Recommendation{
				Priority: priority,
				Category: name,
				Issue:    issue,
				Impact:   impact,
			}
			if i < len(factor.Recommendations) {
				rec.Recommendation = factor.Recommendations[i]
			}
			recs = append(recs, rec)
		}
	}

	// Stable sort keeps factor evaluation order within each priority.
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] > priorityRank[recs[j].Priority]
	})
	return recs
}

func classifyIssue(issue string, score int) (string, string) {
	if p, ok := issuePriorities[issue]; ok {
		return p.priority, p.impact
	}
	switch {
	case score < 50:
		return "high", "High"
	case score < 80:
		return "medium", "Medium"
	}
	return "low", "Low"
}
