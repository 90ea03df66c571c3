package search

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/threadline/threadline/internal/catalog"
)

// Constraints is the structured shopping brief inferred from a free-text
// query. Color and ColorExclude are mutually exclusive within a single
// extraction pass; exclusion wins when both patterns match.
type Constraints struct {
	BudgetMax         *int     `json:"budget_max,omitempty"`
	Category          string   `json:"category,omitempty"`
	Color             string   `json:"color,omitempty"`
	ColorExclude      string   `json:"color_exclude,omitempty"`
	Occasion          string   `json:"occasion,omitempty"`
	Style             string   `json:"style,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	IncludeKeywords   []string `json:"include_keywords,omitempty"`
	ExcludeKeywords   []string `json:"exclude_keywords,omitempty"`
	ExcludeCategories []string `json:"exclude_categories,omitempty"`
	SortBy            string   `json:"sort_by,omitempty"`
}

// budgetPatterns are tried in order; the first numeric match wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:under|below|less than|max|up to)\s*\$?\s*(\d+)`),
	regexp.MustCompile(`\$\s*(\d+)`),
}

var colorExcludePattern = regexp.MustCompile(`\b(?:no|exclude|without|not)\s+([a-z]+)\b`)

// Extract derives Constraints from a raw query. Pure and deterministic:
// identical input always yields identical output, with no external calls.
// An already-known audience narrows the category vocabulary and the footwear
// fallback list.
func Extract(query string, audience catalog.Audience) Constraints {
	var c Constraints

	q := strings.ToLower(CorrectTypos(query))
	words := wordSet(q)

	// Budget
	for _, re := range budgetPatterns {
		if m := re.FindStringSubmatch(q); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				c.BudgetMax = &v
				break
			}
		}
	}

	// Category: whole-word scan of the closed vocabulary, singular or plural.
	for _, cat := range categoryVocab(audience) {
		lower := strings.ToLower(cat)
		if words[lower] || words[singularize(lower)] {
			c.Category = cat
			break
		}
	}
	// Generic footwear term without a concrete category: soft OR-filter over
	// the audience's footwear list rather than a hard category equality.
	if c.Category == "" && (words["shoe"] || words["shoes"]) {
		if audience != "" {
			c.IncludeKeywords = append([]string(nil), catalog.FootwearCategories[audience]...)
		} else {
			c.IncludeKeywords = append([]string(nil), catalog.AllFootwearCategories...)
		}
	}

	// Color: exclusion patterns win over bare inclusion.
	for _, m := range colorExcludePattern.FindAllStringSubmatch(q, -1) {
		if color, ok := normalizeColor(m[1]); ok {
			c.ColorExclude = color
			break
		}
	}
	if c.ColorExclude == "" {
		for _, color := range catalog.Colors {
			lower := strings.ToLower(color)
			if words[lower] || (color == "Gray" && words["grey"]) {
				c.Color = color
				break
			}
		}
	}

	// Occasion, style, gender: membership in closed vocabularies.
	for _, occ := range catalog.Occasions {
		if words[occ] {
			c.Occasion = occ
			break
		}
	}
	for _, style := range catalog.Styles {
		if words[style] {
			c.Style = style
			break
		}
	}
	if words["women"] || words["woman"] || words["ladies"] || words["female"] || words["her"] {
		c.Gender = "women"
	} else if words["men"] || words["man"] || words["male"] || words["guys"] || words["him"] {
		c.Gender = "men"
	}

	return c
}

// Merge overlays a delta onto base constraints for follow-up refinement.
// Non-zero delta fields replace base fields; keyword lists append and dedupe.
// Within the color pair, a delta exclusion clears a base inclusion and vice
// versa, preserving the mutual-exclusion invariant.
func Merge(base, delta Constraints) Constraints {
	out := base
	if delta.BudgetMax != nil {
		out.BudgetMax = delta.BudgetMax
	}
	if delta.Category != "" {
		out.Category = delta.Category
	}
	if delta.Color != "" {
		out.Color = delta.Color
		out.ColorExclude = ""
	}
	if delta.ColorExclude != "" {
		out.ColorExclude = delta.ColorExclude
		out.Color = ""
	}
	if delta.Occasion != "" {
		out.Occasion = delta.Occasion
	}
	if delta.Style != "" {
		out.Style = delta.Style
	}
	if delta.Gender != "" {
		out.Gender = delta.Gender
	}
	if delta.SortBy != "" {
		out.SortBy = delta.SortBy
	}
	out.IncludeKeywords = mergeUnique(base.IncludeKeywords, delta.IncludeKeywords)
	out.ExcludeKeywords = mergeUnique(base.ExcludeKeywords, delta.ExcludeKeywords)
	out.ExcludeCategories = mergeUnique(base.ExcludeCategories, delta.ExcludeCategories)
	return out
}

func mergeUnique(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string(nil), base...), extra...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// categoryVocab returns the category scan order for an audience. With no
// audience, audiences are scanned in a fixed order so extraction stays
// deterministic.
func categoryVocab(audience catalog.Audience) []string {
	if audience != "" {
		return catalog.AudienceCategories[audience]
	}
	var out []string
	seen := map[string]bool{}
	for _, a := range []catalog.Audience{catalog.AudienceMen, catalog.AudienceWomen, catalog.AudienceUnisex} {
		for _, cat := range catalog.AudienceCategories[a] {
			if !seen[cat] {
				seen[cat] = true
				out = append(out, cat)
			}
		}
	}
	return out
}

// normalizeColor maps a lowercase word to its canonical color name.
// "grey" normalizes to "Gray".
func normalizeColor(word string) (string, bool) {
	if word == "grey" {
		return "Gray", true
	}
	for _, color := range catalog.Colors {
		if strings.ToLower(color) == word {
			return color, true
		}
	}
	return "", false
}

func wordSet(q string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return words
}
