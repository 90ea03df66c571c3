package search

import (
	"strings"

	"github.com/threadline/threadline/internal/catalog"
)

// Field weights for the additive relevance model. Fuzzy weights apply when a
// token misses the substring check but lands within the edit-distance
// threshold; fuzzy matching is limited to category and color.
const (
	weightTitle         = 10.0
	weightBrand         = 8.0
	weightCategory      = 7.0
	weightCategoryFuzzy = 5.0
	weightColor         = 6.0
	weightColorFuzzy    = 4.0
	weightStyle         = 5.0
	weightOccasion      = 4.0
	weightDescription   = 2.0

	// bonusExactToken rewards tokens that appear verbatim in the raw query,
	// so literal matches outrank synonym-only matches.
	bonusExactToken = 2.0

	// bonusScenario applies when a scenario keyword appears in the token set
	// and the product belongs to that scenario.
	bonusScenario = 15.0

	// Alignment bonuses reward products whose own fields equal the extracted
	// constraint values, beyond raw token overlap.
	bonusAlignCategory = 5.0
	bonusAlignColor    = 4.0
	bonusAlignOccasion = 3.0
	bonusAlignStyle    = 3.0

	// budgetProximityCap bounds the comfortably-under-budget bonus.
	budgetProximityCap = 5.0
)

// Score computes the relevance of a prefiltered product against the expanded
// token set, the extracted constraints, and the original unexpanded query.
// The result is always non-negative.
func Score(p catalog.Product, tokens []string, c Constraints, originalQuery string) float64 {
	score := 0.0

	title := strings.ToLower(p.Title)
	brand := strings.ToLower(p.Brand)
	category := strings.ToLower(p.Category)
	color := strings.ToLower(p.Color)
	style := strings.ToLower(p.Style)
	desc := strings.ToLower(p.Description)
	rawQuery := strings.ToLower(originalQuery)

	for _, tok := range tokens {
		matched := false

		if strings.Contains(title, tok) {
			score += weightTitle
			matched = true
		}
		if strings.Contains(brand, tok) {
			score += weightBrand
			matched = true
		}
		if strings.Contains(category, tok) {
			score += weightCategory
			matched = true
		} else if fuzzyMatch(tok, category) {
			score += weightCategoryFuzzy
			matched = true
		}
		if strings.Contains(color, tok) {
			score += weightColor
			matched = true
		} else if fuzzyMatch(tok, color) {
			score += weightColorFuzzy
			matched = true
		}
		if strings.Contains(style, tok) {
			score += weightStyle
			matched = true
		}
		for _, occ := range p.Occasions {
			if strings.Contains(strings.ToLower(occ), tok) {
				score += weightOccasion
				matched = true
				break
			}
		}
		if strings.Contains(desc, tok) {
			score += weightDescription
			matched = true
		}

		if matched && (strings.Contains(rawQuery, tok) || strings.Contains(tok, rawQuery)) {
			score += bonusExactToken
		}
	}

	if sc, ok := catalog.ScenarioByID(p.ScenarioID); ok {
		for _, kw := range sc.Keywords {
			if containsToken(tokens, kw) {
				score += bonusScenario
				break
			}
		}
	}

	if c.Category != "" && p.Category == c.Category {
		score += bonusAlignCategory
	}
	if c.Color != "" && p.Color == c.Color {
		score += bonusAlignColor
	}
	if c.Occasion != "" {
		for _, occ := range p.Occasions {
			if occ == c.Occasion {
				score += bonusAlignOccasion
				break
			}
		}
	}
	if c.Style != "" && p.Style == c.Style {
		score += bonusAlignStyle
	}

	if c.BudgetMax != nil {
		if proximity := float64(*c.BudgetMax-p.Price) / 100.0; proximity > 0 {
			if proximity > budgetProximityCap {
				proximity = budgetProximityCap
			}
			score += proximity
		}
	}

	return score
}

func containsToken(tokens []string, want string) bool {
	for _, tok := range tokens {
		if tok == want {
			return true
		}
	}
	return false
}
