package search

import (
	"reflect"
	"testing"
)

// --- Typo correction ---

func TestCorrectTypos(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"blak snikers", "black sneakers"},
		{"trainers under 2000", "sneakers under 2000"},
		{"derss for dinner", "dress for dinner"},
		{"black shirts", "black shirts"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CorrectTypos(tc.in); got != tc.want {
			t.Errorf("CorrectTypos(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- Tokenization ---

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	got := Tokenize("Show me the best looks for a NYC dinner")
	for _, tok := range got {
		if len(tok) <= 2 {
			t.Errorf("short token %q survived", tok)
		}
		if stopWords[tok] {
			t.Errorf("stop word %q survived", tok)
		}
	}
	if !containsToken(got, "best") || !containsToken(got, "dinner") {
		t.Errorf("expected significant tokens to survive, got %v", got)
	}
}

func TestTokenizeLowercases(t *testing.T) {
	got := Tokenize("BLACK Sneakers")
	want := []string{"black", "sneakers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

// --- Expansion ---

func TestExpandSynonyms(t *testing.T) {
	got := Expand("shoes")
	for _, want := range []string{"shoes", "shoe", "sneaker", "sneakers", "loafer", "heel", "footwear"} {
		if !containsToken(got, want) {
			t.Errorf("Expand(\"shoes\") missing %q: %v", want, got)
		}
	}
}

func TestExpandAppliesTypoCorrection(t *testing.T) {
	got := Expand("snikers")
	if !containsToken(got, "sneakers") {
		t.Errorf("expected typo-corrected 'sneakers' in expansion: %v", got)
	}
	if !containsToken(got, "snikers") {
		t.Errorf("original token should survive expansion: %v", got)
	}
}

func TestExpandPluralFolding(t *testing.T) {
	got := Expand("blazer")
	if !containsToken(got, "blazers") {
		t.Errorf("expected pluralized form: %v", got)
	}
	got = Expand("blazers")
	if !containsToken(got, "blazer") {
		t.Errorf("expected singularized form: %v", got)
	}
}

func TestExpandDeduplicatesAndSorts(t *testing.T) {
	got := Expand("shoe shoes shoe")
	seen := map[string]bool{}
	for i, tok := range got {
		if seen[tok] {
			t.Errorf("duplicate token %q", tok)
		}
		seen[tok] = true
		if i > 0 && got[i-1] > tok {
			t.Errorf("tokens not sorted at %d: %v", i, got)
		}
	}
}

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"sneakers": "sneaker",
		"dresses":  "dress",
		"dress":    "dress",
		"tee":      "tee",
	}
	for in, want := range cases {
		if got := singularize(in); got != want {
			t.Errorf("singularize(%q) = %q, want %q", in, got, want)
		}
	}
}
