package usecase

import "unicode/utf8"

// Keyword weights for similarity scoring
const (
	weightColor    = 3.0 // Color names
	weightMaterial = 2.0 // Materials
	weightSize     = 2.0 // Size descriptors
	weightFeature  = 4.0 // Long words, a stand-in for brands and distinctive features
	weightGeneral  = 1.0 // Everything else

	featureMinLength = 5 // exclusive
)

var colorTerms = map[string]bool{
	"red": true, "blue": true, "green": true, "yellow": true, "black": true,
	"white": true, "silver": true, "gold": true, "brown": true, "pink": true,
	"purple": true, "gray": true, "orange": true,
}

var materialTerms = map[string]bool{
	"leather": true, "fabric": true, "metal": true, "plastic": true,
	"wood": true, "glass": true, "rubber": true, "synthetic": true,
}

var sizeTerms = map[string]bool{
	"small": true, "medium": true, "large": true, "tiny": true,
	"huge": true, "compact": true, "oversized": true,
}

// keywordWeight classifies a keyword. The first matching class wins.
func keywordWeight(keyword string) float64 {
	switch {
	case colorTerms[keyword]:
		return weightColor
	case materialTerms[keyword]:
		return weightMaterial
	case sizeTerms[keyword]:
		return weightSize
	case utf8.RuneCountInString(keyword) > featureMinLength:
		return weightFeature
	default:
		return weightGeneral
	}
}

// Similarity scores how much of a's weighted keywords appear in b, from 0 to 100.
// The weight basis comes from a alone, so Similarity(a, b) and Similarity(b, a)
// generally differ. Callers pass the query first and the candidate second.
func Similarity(a, b string) float64 {
	keywordsA := ExtractKeywords(a)
	if len(keywordsA) == 0 {
		return 0
	}

	inB := make(map[string]bool)
	for _, k := range ExtractKeywords(b) {
		inB[k] = true
	}

	var totalScore, maxScore float64
	for _, k := range keywordsA {
		weight := keywordWeight(k)
		maxScore += weight
		if inB[k] {
			totalScore += weight
		}
	}

	if maxScore == 0 {
		return 0
	}
	return min(totalScore/maxScore*100, 100)
}
