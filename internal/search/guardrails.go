package search

import (
	"strings"

	"github.com/threadline/threadline/internal/catalog"
)

// Guardrails are query-derived hard exclusion gates layered on top of
// ordinary constraint filtering. They are computed per request and hold no
// state, and they apply to plain searches and bundle pools alike.
type Guardrails struct {
	ExcludeCategories []string
	ExcludeColors     []string
}

var (
	smartWords   = []string{"smart", "dressy", "elegant", "polished", "formal", "tailored"}
	eveningWords = []string{"evening", "dinner", "party", "night", "wedding", "gala"}
	casualWords  = []string{"casual", "relaxed", "laidback", "chill"}
	pinkWords    = []string{"pink", "rose", "blush", "fuchsia", "magenta"}
)

// DeriveGuardrails inspects the raw query (and audience) and returns the
// hard gates for this request:
//
//   - a smart + evening context with no casual counter-signal excludes tees;
//   - the men audience excludes pink items unless the query asks for pink.
func DeriveGuardrails(query string, audience catalog.Audience) Guardrails {
	q := strings.ToLower(query)
	var g Guardrails

	if containsAnyWord(q, smartWords) && containsAnyWord(q, eveningWords) && !containsAnyWord(q, casualWords) {
		g.ExcludeCategories = append(g.ExcludeCategories, "T-Shirts", "Tees")
	}

	if audience == catalog.AudienceMen && !containsAnyWord(q, pinkWords) {
		g.ExcludeColors = append(g.ExcludeColors, "Pink")
	}

	return g
}

// Allows reports whether a product passes every guardrail gate.
func (g Guardrails) Allows(p catalog.Product) bool {
	for _, cat := range g.ExcludeCategories {
		if p.Category == cat {
			return false
		}
	}
	for _, color := range g.ExcludeColors {
		if p.Color == color {
			return false
		}
	}
	return true
}

// QuerySignals are the soft style preferences read off the raw query. The
// bundle assembler feeds them into per-role scoring.
type QuerySignals struct {
	Evening bool
	Smart   bool
	Casual  bool
}

// SignalsFor extracts the soft signals from a query.
func SignalsFor(query string) QuerySignals {
	q := strings.ToLower(query)
	return QuerySignals{
		Evening: containsAnyWord(q, eveningWords),
		Smart:   containsAnyWord(q, smartWords),
		Casual:  containsAnyWord(q, casualWords),
	}
}

func containsAnyWord(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
