package search

import (
	"context"
	"testing"

	"github.com/threadline/threadline/internal/catalog"
)

// --- Derivation ---

func TestDeriveGuardrailsPinkForMen(t *testing.T) {
	g := DeriveGuardrails("dinner look", catalog.AudienceMen)
	found := false
	for _, c := range g.ExcludeColors {
		if c == "Pink" {
			found = true
		}
	}
	if !found {
		t.Error("men without a pink keyword should exclude Pink")
	}

	g = DeriveGuardrails("pink dinner look", catalog.AudienceMen)
	for _, c := range g.ExcludeColors {
		if c == "Pink" {
			t.Error("asking for pink should disarm the exclusion")
		}
	}

	g = DeriveGuardrails("dinner look", catalog.AudienceWomen)
	if len(g.ExcludeColors) != 0 {
		t.Errorf("women audience should carry no color gate, got %v", g.ExcludeColors)
	}
}

func TestDeriveGuardrailsCasualCounterSignalKeepsTees(t *testing.T) {
	g := DeriveGuardrails("smart but casual dinner", catalog.AudienceMen)
	for _, cat := range g.ExcludeCategories {
		if cat == "T-Shirts" {
			t.Error("casual counter-signal should disarm the tee guardrail")
		}
	}
}

func TestSignalsFor(t *testing.T) {
	sig := SignalsFor("smart dinner tonight")
	if !sig.Smart || !sig.Evening || sig.Casual {
		t.Errorf("unexpected signals %+v for a smart evening query", sig)
	}
}

// --- Search enforcement ---

func TestSearchExcludesPinkForMen(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	resp, err := engine.Search(context.Background(), "smart evening look", Options{
		Audience: catalog.AudienceMen,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results for the men audience")
	}
	for _, r := range resp.Results {
		if r.Product.Color == "Pink" {
			t.Errorf("result %s is Pink despite the men guardrail", r.Product.ID)
		}
	}
}

func TestSearchSmartEveningExcludesTees(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	resp, err := engine.Search(context.Background(), "smart evening look", Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, r := range resp.Results {
		if r.Product.Category == "T-Shirts" {
			t.Errorf("result %s is a tee despite the smart evening guardrail", r.Product.ID)
		}
	}
}
