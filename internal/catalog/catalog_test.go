package catalog

import (
	"testing"
	"time"
)

// --- Generation ---

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(100)
	b := Generate(100)
	if len(a) != len(b) {
		t.Fatalf("catalog sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Price != b[i].Price || a[i].Title != b[i].Title {
			t.Errorf("product %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateIncludesHeroes(t *testing.T) {
	products := Generate(50)
	want := map[string]bool{
		"hero-navy-blazer":    false,
		"hero-white-sneakers": false,
		"hero-black-dress":    false,
		"hero-linen-shirt":    false,
	}
	for _, p := range products {
		if _, ok := want[p.ID]; ok {
			want[p.ID] = true
		}
	}
	for id, seen := range want {
		if !seen {
			t.Errorf("hero product %s missing from catalog", id)
		}
	}
}

func TestGenerateAudienceWhitelist(t *testing.T) {
	for _, p := range Generate(300) {
		if !CategoryAllowed(p.Audience, p.Category) {
			t.Errorf("product %s: category %q not allowed for audience %q", p.ID, p.Category, p.Audience)
		}
	}
}

func TestGenerateFieldsPopulated(t *testing.T) {
	for _, p := range Generate(120) {
		if p.ID == "" || p.Title == "" || p.Brand == "" || p.Category == "" || p.Color == "" {
			t.Fatalf("product has empty core field: %+v", p)
		}
		if p.Price <= 0 {
			t.Errorf("product %s has non-positive price %d", p.ID, p.Price)
		}
		if len(p.Occasions) == 0 {
			t.Errorf("product %s has no occasion tags", p.ID)
		}
		if p.DeliveryDays < 1 {
			t.Errorf("product %s has delivery days %d", p.ID, p.DeliveryDays)
		}
		if _, ok := ScenarioByID(p.ScenarioID); !ok {
			t.Errorf("product %s has unknown scenario %q", p.ID, p.ScenarioID)
		}
	}
}

// --- Store / TTL cache ---

func TestStoreCachesUntilTTL(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	s := NewStore(StoreConfig{Size: 20, TTL: time.Minute, Now: now})

	first := s.Products()
	second := s.Products()
	if &first[0] != &second[0] {
		t.Error("expected cached snapshot within TTL, got a regeneration")
	}

	clock = clock.Add(2 * time.Minute)
	third := s.Products()
	if &first[0] == &third[0] {
		t.Error("expected regeneration after TTL expiry")
	}
	if len(first) != len(third) {
		t.Errorf("regenerated catalog size changed: %d vs %d", len(first), len(third))
	}
}

func TestStoreByID(t *testing.T) {
	s := NewStore(StoreConfig{Size: 20, TTL: time.Minute})

	p, ok := s.ByID("hero-navy-blazer")
	if !ok {
		t.Fatal("expected to find hero-navy-blazer")
	}
	if p.Category != "Blazers" || p.Audience != AudienceMen {
		t.Errorf("unexpected hero product: %+v", p)
	}

	if _, ok := s.ByID("nope-0000"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStoreStats(t *testing.T) {
	s := NewStore(StoreConfig{Size: 60, TTL: time.Minute})
	st := s.Stats()
	if st.Total < 60 {
		t.Errorf("expected at least 60 products, got %d", st.Total)
	}
	if st.HeroCount < 4 {
		t.Errorf("expected at least 4 hero products, got %d", st.HeroCount)
	}
	if st.PriceMin <= 0 || st.PriceMax < st.PriceMin {
		t.Errorf("bad price range: min=%d max=%d", st.PriceMin, st.PriceMax)
	}
	if st.ByAudience["men"] == 0 || st.ByAudience["women"] == 0 {
		t.Errorf("expected products for both men and women: %+v", st.ByAudience)
	}
}

// --- Vocabulary helpers ---

func TestParseAudience(t *testing.T) {
	for _, good := range []string{"", "men", "women", "unisex"} {
		if _, err := ParseAudience(good); err != nil {
			t.Errorf("ParseAudience(%q) unexpected error: %v", good, err)
		}
	}
	if _, err := ParseAudience("kids"); err == nil {
		t.Error("expected error for unknown audience")
	}
}

func TestCategoryAllowed(t *testing.T) {
	if !CategoryAllowed(AudienceMen, "Derbies") {
		t.Error("Derbies should be allowed for men")
	}
	if CategoryAllowed(AudienceMen, "Heels") {
		t.Error("Heels should not be allowed for men")
	}
	if !CategoryAllowed("", "Heels") {
		t.Error("empty audience should allow any known category")
	}
	if CategoryAllowed("", "Spaceships") {
		t.Error("unknown category should not be allowed")
	}
}
