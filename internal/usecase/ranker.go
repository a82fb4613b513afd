package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lostfound/backend/internal/domain"
)

// DefaultThreshold is the minimum combined score a candidate must exceed
const DefaultThreshold = 40.0

// Attribute agreement bonuses, applied cumulatively on top of the text score
const (
	categoryMatchBonus    = 20.0
	subcategoryMatchBonus = 15.0
	colorMatchBonus       = 10.0
	brandMatchBonus       = 15.0
	locationMatchBonus    = 10.0

	locationSimilarityMin    = 30.0 // exclusive
	descriptionSimilarityMin = 50.0 // exclusive, for the "Similar description" reason
)

// RankCandidates scores every candidate against query, keeps those whose
// combined score is strictly above threshold and returns them best first.
// Candidates with equal scores keep their input order.
func RankCandidates(query domain.Item, candidates []domain.Item, threshold float64) []domain.MatchCandidate {
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = combinedScore(query, candidate)
	}
	return selectMatches(query, candidates, scores, threshold)
}

// selectMatches filters by threshold, sorts stably by score and attaches reasons.
// scores[i] must belong to candidates[i].
func selectMatches(query domain.Item, candidates []domain.Item, scores []float64, threshold float64) []domain.MatchCandidate {
	matches := make([]domain.MatchCandidate, 0, len(candidates))
	for i, candidate := range candidates {
		if scores[i] <= threshold {
			continue
		}
		matches = append(matches, domain.MatchCandidate{
			Item:         candidate,
			MatchScore:   scores[i],
			MatchReasons: matchReasons(query, candidate),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches
}

// combinedScore is the description score plus attribute bonuses, capped at 100
func combinedScore(query, candidate domain.Item) float64 {
	score := Similarity(searchText(query), searchText(candidate))

	if sameCategory(query, candidate) {
		score += categoryMatchBonus
	}
	if sameSubcategory(query, candidate) {
		score += subcategoryMatchBonus
	}
	if colorsOverlap(query.Color, candidate.Color) {
		score += colorMatchBonus
	}
	if sameBrand(query.Brand, candidate.Brand) {
		score += brandMatchBonus
	}
	if query.Location != "" && candidate.Location != "" &&
		Similarity(query.Location, candidate.Location) > locationSimilarityMin {
		score += locationMatchBonus
	}

	return min(score, 100)
}

// matchReasons explains, in a fixed order, which signals held for a candidate
func matchReasons(query, candidate domain.Item) []string {
	reasons := []string{}

	if sameCategory(query, candidate) {
		reasons = append(reasons, fmt.Sprintf("Same category: %s", query.Category))
	}
	if sameSubcategory(query, candidate) {
		reasons = append(reasons, fmt.Sprintf("Same type: %s", query.Subcategory))
	}
	if colorsOverlap(query.Color, candidate.Color) {
		reasons = append(reasons, fmt.Sprintf("Similar color: %s", candidate.Color))
	}
	if sameBrand(query.Brand, candidate.Brand) {
		reasons = append(reasons, fmt.Sprintf("Same brand: %s", candidate.Brand))
	}
	// Main descriptions only; distinctive features are left out here
	if Similarity(query.Description, candidate.Description) > descriptionSimilarityMin {
		reasons = append(reasons, "Similar description")
	}

	return reasons
}

// searchText joins the description with the distinctive features, if any
func searchText(item domain.Item) string {
	if item.DistinctiveFeatures == "" {
		return item.Description
	}
	return item.Description + " " + item.DistinctiveFeatures
}

func sameCategory(a, b domain.Item) bool {
	return a.Category != "" && a.Category == b.Category
}

func sameSubcategory(a, b domain.Item) bool {
	return a.Subcategory != "" && a.Subcategory == b.Subcategory
}

// colorsOverlap reports whether either color field contains the other, ignoring case
func colorsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func sameBrand(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}
