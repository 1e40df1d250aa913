package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/seo-insights/backend/parser"
)

const (
	altMinLength = 10
	altMaxLength = 125

	penaltyMissingAlt    = 100
	penaltyGenericAlt    = 60
	penaltyAltLength     = 30
	penaltyAltRepetition = 40
)

const (
	issueImagesMissingAlt = "images missing alt text"
	issueGenericAlt       = "generic image alt text"
	issueAltLength        = "image alt text length out of range"
	issueRepetitiveAlt    = "repetitive image alt text"
)

// genericAltText is alt text that describes nothing.
var genericAltText = map[string]bool{
	"image":   true,
	"photo":   true,
	"picture": true,
	"img":     true,
}

// AnalyzeImages scores image accessibility. Each image accrues a
// penalty (missing alt is worst, then generic text, bad length and
// word repetition, capped at 100 per image); the factor score is 100
// minus the average penalty. Pages without images score 100.
func AnalyzeImages(doc *parser.Document) FactorResult {
	result := FactorResult{Factor: FactorImages, Score: 100}
	if len(doc.Images) == 0 {
		return result
	}

	totalPenalty := 0
	missing, generic, badLength, repetitive := 0, 0, 0, 0

	for _, img := range doc.Images {
		penalty := 0
		alt := strings.TrimSpace(img.Alt)

		if !img.HasAlt || alt == "" {
			penalty = penaltyMissingAlt
			missing++
		} else {
			if genericAltText[strings.ToLower(alt)] {
				penalty += penaltyGenericAlt
				generic++
			}
			if n := utf8.RuneCountInString(alt); n < altMinLength || n > altMaxLength {
				penalty += penaltyAltLength
				badLength++
			}
			if repeatedWordRatio(alt) > 0.3 {
				penalty += penaltyAltRepetition
				repetitive++
			}
			if penalty > 100 {
				penalty = 100
			}
		}
		totalPenalty += penalty
	}

	result.Score = 100 - totalPenalty/len(doc.Images)
	if result.Score < 0 {
		result.Score = 0
	}

	if missing > 0 {
		result.addIssue(issueImagesMissingAlt, "Add alt text to all images")
	}
	if generic > 0 {
		result.addIssue(issueGenericAlt, "Replace generic alt text like \"image\" with a description of the picture")
	}
	if badLength > 0 {
		result.addIssue(issueAltLength, "Keep alt text between 10 and 125 characters")
	}
	if repetitive > 0 {
		result.addIssue(issueRepetitiveAlt, "Avoid repeating the same words within alt text")
	}
	return result
}

func repeatedWordRatio(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(words)-len(unique)) / float64(len(words))
}
