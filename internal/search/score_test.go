package search

import (
	"testing"

	"github.com/threadline/threadline/internal/catalog"
)

// --- Fuzzy matching ---

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"sneakers", "sneakers", 0},
		{"snakers", "sneakers", 1},
		{"kitten", "sitting", 3},
		{"", "gray", 4},
		{"grey", "gray", 1},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFuzzyMatch(t *testing.T) {
	if !fuzzyMatch("snakers", "sneakers") {
		t.Error("one edit within ratio should match")
	}
	if !fuzzyMatch("grey", "gray") {
		t.Error("grey/gray should match")
	}
	if fuzzyMatch("red", "blazers") {
		t.Error("distant strings should not match")
	}
	if fuzzyMatch("tee", "top") {
		// distance 2 but ratio 2/3 is over the 0.3 cutoff
		t.Error("short strings with high relative distance should not match")
	}
}

// --- Scoring ---

func TestScoreTitleMatchOutweighsDescription(t *testing.T) {
	inTitle := fixtureProduct("s-1", "Shirts", "Black", 1500, catalog.AudienceMen)
	inTitle.Title = "Black Oxford Shirt"
	inTitle.Description = "Plain weave."

	inDesc := fixtureProduct("s-2", "Trousers", "Navy", 1500, catalog.AudienceMen)
	inDesc.Title = "Navy Trousers"
	inDesc.Description = "Pairs well with an oxford shirt."

	tokens := []string{"oxford"}
	if Score(inTitle, tokens, Constraints{}, "oxford") <= Score(inDesc, tokens, Constraints{}, "oxford") {
		t.Error("title match should outscore description match")
	}
}

func TestScoreFuzzyCategoryFallback(t *testing.T) {
	p := fixtureProduct("s-3", "Sneakers", "White", 2000, catalog.AudienceMen)
	p.Title = "Court Shoe"
	p.Description = "Everyday pair."

	exact := Score(p, []string{"sneakers"}, Constraints{}, "sneakers")
	fuzzy := Score(p, []string{"snakers"}, Constraints{}, "snakers")
	if fuzzy <= 0 {
		t.Error("fuzzy category match should contribute a positive score")
	}
	if fuzzy >= exact {
		t.Errorf("fuzzy match (%f) should score below exact match (%f)", fuzzy, exact)
	}
}

func TestScoreExactTokenBonus(t *testing.T) {
	p := fixtureProduct("s-4", "Loafers", "Brown", 2600, catalog.AudienceMen)
	p.Title = "Brown Penny Loafers"

	tokens := []string{"loafers"}
	literal := Score(p, tokens, Constraints{}, "brown loafers")
	synonymOnly := Score(p, tokens, Constraints{}, "smart shoes")
	if literal <= synonymOnly {
		t.Errorf("literal query token should add a bonus: literal=%f synonym=%f", literal, synonymOnly)
	}
}

func TestScoreScenarioBoost(t *testing.T) {
	p := fixtureProduct("s-5", "Blazers", "Navy", 4000, catalog.AudienceMen)
	p.ScenarioID = "summer_wedding"
	p.Title = "Navy Blazer"
	p.Occasions = []string{"formalwear"}
	p.Description = "Structured shoulder."

	with := Score(p, []string{"wedding"}, Constraints{}, "wedding")
	without := Score(p, []string{"meeting"}, Constraints{}, "meeting")
	if with-without < bonusScenario {
		t.Errorf("scenario keyword should add the boost: with=%f without=%f", with, without)
	}
}

func TestScoreConstraintAlignment(t *testing.T) {
	p := fixtureProduct("s-6", "Sneakers", "Black", 2200, catalog.AudienceMen)
	tokens := []string{"comfortable"}

	aligned := Score(p, tokens, Constraints{Category: "Sneakers", Color: "Black"}, "comfortable")
	bare := Score(p, tokens, Constraints{}, "comfortable")
	if aligned-bare != bonusAlignCategory+bonusAlignColor {
		t.Errorf("alignment bonus = %f, want %f", aligned-bare, bonusAlignCategory+bonusAlignColor)
	}
}

func TestScoreBudgetProximityCapped(t *testing.T) {
	cheap := fixtureProduct("s-7", "T-Shirts", "White", 500, catalog.AudienceMen)
	nearBudget := fixtureProduct("s-8", "T-Shirts", "White", 2900, catalog.AudienceMen)
	over := fixtureProduct("s-9", "T-Shirts", "White", 3500, catalog.AudienceMen)

	budget := 3000
	c := Constraints{BudgetMax: &budget}
	tokens := []string{}

	if got := Score(cheap, tokens, c, ""); got != budgetProximityCap {
		t.Errorf("far-under-budget bonus = %f, want capped %f", got, budgetProximityCap)
	}
	if got := Score(nearBudget, tokens, c, ""); got != 1.0 {
		t.Errorf("near-budget bonus = %f, want 1.0", got)
	}
	if got := Score(over, tokens, c, ""); got != 0 {
		t.Errorf("over-budget bonus = %f, want 0", got)
	}
}

func TestScoreNonNegative(t *testing.T) {
	p := fixtureProduct("s-10", "Scarves", "Red", 800, catalog.AudienceWomen)
	if got := Score(p, []string{"zzz"}, Constraints{}, "zzz"); got < 0 {
		t.Errorf("score should be non-negative, got %f", got)
	}
}
