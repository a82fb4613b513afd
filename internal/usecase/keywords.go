package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Anything that is not a letter, digit or whitespace becomes a separator
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// minKeywordLength is exclusive: keywords must be longer than this
const minKeywordLength = 2

// stopWords are common English function words that carry no identifying detail
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"was": true, "are": true, "were": true, "have": true, "has": true,
	"had": true,
}

// ExtractKeywords normalizes free text into unique keywords in first-seen order.
// Empty or punctuation-only input yields an empty slice.
func ExtractKeywords(text string) []string {
	cleaned := nonWordRegex.ReplaceAllString(strings.ToLower(text), " ")
	words := strings.Fields(cleaned)

	keywords := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) <= minKeywordLength {
			continue
		}
		if stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	return keywords
}
