package analyzer

import (
	"strings"
	"unicode"

	"github.com/seo-insights/backend/parser"
)

const (
	contentMinWords  = 300
	contentGoodWords = 500
	readabilityGood  = 60
)

const (
	issueContentShort   = "content too short"
	issueLowReadability = "low readability score"
)

// AnalyzeContent scores content depth and readability: 40 points for
// reaching 300 words, 20 more for 500, and 40 for a Flesch Reading
// Ease of 60 or better.
func AnalyzeContent(doc *parser.Document) FactorResult {
	result := FactorResult{Factor: FactorContent}

	score := 0
	if doc.WordCount >= contentMinWords {
		score += 40
		if doc.WordCount >= contentGoodWords {
			score += 20
		}
	} else {
		result.addIssue(issueContentShort, "Add more content (aim for at least 300 words)")
	}

	if fleschReadingEase(doc.BodyText) >= readabilityGood {
		score += 40
	} else if doc.WordCount > 0 {
		result.addIssue(issueLowReadability, "Use shorter sentences and simpler words to improve readability")
	}

	if score > 100 {
		score = 100
	}
	result.Score = score
	return result
}

// fleschReadingEase computes the standard formula
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words)
// using a vowel-cluster syllable heuristic. Higher is easier to read.
func fleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	wordCount := float64(len(words))
	return 206.835 - 1.015*(wordCount/float64(sentences)) - 84.6*(float64(syllables)/wordCount)
}

func countSentences(text string) int {
	count := 0
	inTerminator := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminator {
				count++
				inTerminator = true
			}
		default:
			inTerminator = false
		}
	}
	return count
}

// countSyllables counts vowel clusters, dropping a silent trailing "e"
// (but not "le"). Every word counts as at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
