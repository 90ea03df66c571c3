// Package search implements the Threadline query pipeline: tokenization with
// synonym and typo expansion, constraint extraction, hard prefiltering, and
// weighted relevance scoring over the catalog.
//
// The pipeline is pure and request-scoped. Expansion only ever widens scoring
// recall; hard exclusion happens in the prefilter alone.
package search

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords are dropped before expansion. Kept small on purpose: budget and
// color phrases are handled by the constraint extractor, not the tokenizer.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "show": true, "find": true, "want": true,
	"need": true, "some": true, "please": true, "looking": true, "me": true,
}

// typoTable maps common misspellings to their corrected form. Applied to the
// whole query before extraction and to individual tokens during expansion.
var typoTable = map[string]string{
	"snikers":  "sneakers",
	"sneekers": "sneakers",
	"trainers": "sneakers",
	"jeens":    "jeans",
	"shrt":     "shirt",
	"derss":    "dress",
	"blazzer":  "blazer",
	"loffers":  "loafers",
	"sandles":  "sandals",
	"blak":     "black",
	"whight":   "white",
	"graey":    "gray",
	"trouser":  "trousers",
}

// synonyms is a bounded synonym graph keyed by normalized singular tokens.
// Kept as plain data so the tables can be extended and tested independently
// of the tokenizer.
var synonyms = map[string][]string{
	"shoe":     {"sneaker", "loafer", "derby", "heel", "flat", "footwear"},
	"sneaker":  {"trainer", "shoe", "kick"},
	"tee":      {"t-shirt", "tshirt", "top"},
	"shirt":    {"top", "button-down"},
	"blouse":   {"top", "shirt"},
	"pant":     {"trouser", "chino", "slack"},
	"trouser":  {"pant", "slack"},
	"jacket":   {"blazer", "coat"},
	"blazer":   {"jacket"},
	"dress":    {"gown"},
	"bag":      {"tote", "handbag", "purse"},
	"smart":    {"tailored", "formal", "dressy"},
	"casual":   {"relaxed", "laidback"},
	"cheap":    {"budget", "affordable"},
	"fancy":    {"formal", "dressy", "elegant"},
	"outfit":   {"look", "ensemble"},
	"sunnies":  {"sunglasses"},
	"necklace": {"jewelry"},
}

// CorrectTypos rewrites known misspellings word-by-word across the whole
// query, preserving the words it does not recognize.
func CorrectTypos(query string) string {
	fields := strings.Fields(query)
	changed := false
	for i, f := range fields {
		lower := strings.ToLower(f)
		if fixed, ok := typoTable[lower]; ok && fixed != lower {
			fields[i] = fixed
			changed = true
		}
	}
	if !changed {
		return query
	}
	return strings.Join(fields, " ")
}

// Tokenize splits a query into significant lowercase tokens, dropping stop
// words and tokens of length <= 2.
func Tokenize(query string) []string {
	raw := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Expand tokenizes a query and widens each token with typo corrections,
// bounded synonyms, and naive plural/singular folding. The result is a
// deduplicated, sorted token set: original tokens, their corrections, their
// synonyms, and the folded forms of all of the above.
func Expand(query string) []string {
	seen := map[string]bool{}
	add := func(tok string) {
		if len(tok) > 2 && !seen[tok] {
			seen[tok] = true
		}
	}
	addFolded := func(tok string) {
		add(tok)
		add(pluralize(tok))
		add(singularize(tok))
	}

	for _, tok := range Tokenize(query) {
		addFolded(tok)
		if fixed, ok := typoTable[tok]; ok {
			addFolded(fixed)
			tok = fixed
		}
		for _, base := range []string{tok, singularize(tok)} {
			for _, syn := range synonyms[base] {
				addFolded(syn)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// singularize strips a trailing plural suffix. Naive on purpose: the closed
// vocabularies it serves never need irregular plurals.
func singularize(tok string) string {
	if strings.HasSuffix(tok, "ses") || strings.HasSuffix(tok, "hes") || strings.HasSuffix(tok, "xes") {
		return tok[:len(tok)-2]
	}
	if strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") && len(tok) > 3 {
		return tok[:len(tok)-1]
	}
	return tok
}

func pluralize(tok string) string {
	if strings.HasSuffix(tok, "s") {
		return tok
	}
	return tok + "s"
}
