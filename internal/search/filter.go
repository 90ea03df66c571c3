package search

import (
	"strings"

	"github.com/threadline/threadline/internal/catalog"
)

// MatchesConstraints applies every hard constraint to a single product,
// short-circuiting on the first failure. This is the sole enforcement point
// for hard correctness constraints; the scorer assumes its inputs already
// passed here.
func MatchesConstraints(p catalog.Product, c Constraints, audience catalog.Audience) bool {
	if audience != "" {
		if p.Audience != audience && p.Audience != catalog.AudienceUnisex {
			return false
		}
		if !catalog.CategoryAllowed(audience, p.Category) && !catalog.CategoryAllowed(catalog.AudienceUnisex, p.Category) {
			return false
		}
	}

	if c.BudgetMax != nil && p.Price > *c.BudgetMax {
		return false
	}

	if c.Category != "" && p.Category != c.Category {
		return false
	}

	if c.Color != "" && p.Color != c.Color {
		return false
	}
	if c.ColorExclude != "" && p.Color == c.ColorExclude {
		return false
	}

	// Include keywords act as a hard OR-filter over categories (the generic
	// "shoe" case), re-checked against the audience whitelist.
	if len(c.IncludeKeywords) > 0 {
		hit := false
		for _, kw := range c.IncludeKeywords {
			if p.Category == kw && (audience == "" || catalog.CategoryAllowed(audience, kw) || catalog.CategoryAllowed(catalog.AudienceUnisex, kw)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if len(c.ExcludeKeywords) > 0 {
		haystack := strings.ToLower(p.Title + " " + p.Brand + " " + p.Category + " " + p.Color + " " + p.Style + " " + p.Description)
		for _, kw := range c.ExcludeKeywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				return false
			}
		}
	}

	for _, cat := range c.ExcludeCategories {
		if p.Category == cat {
			return false
		}
	}

	if c.Occasion != "" {
		found := false
		for _, occ := range p.Occasions {
			if occ == c.Occasion {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.Style != "" && p.Style != c.Style {
		return false
	}

	return true
}
