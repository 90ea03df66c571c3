package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/threadline/threadline/internal/bundle"
	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
)

// assistTimeout is the maximum time to wait for one LLM call. The
// deterministic fallback takes over on expiry.
const assistTimeout = 5 * time.Second

const whySystemPrompt = `You are a personal stylist writing one-line reasons for outfit picks.

Given a shopper's request and the items of one outfit bundle, write exactly one short line per item explaining why it fits the request.

Rules:
- One line per item, same order as given
- Under 15 words each, plain language, no emoji
- Mention the concrete attribute that earns the item its place (color, formality, occasion, price)
- Return ONLY a JSON array of strings, nothing else`

const deltaSystemPrompt = `You extract shopping constraints from a follow-up message in a product search conversation.

Return ONLY a JSON object. Allowed keys: budgetMax (number), category (string), color (string), colorExclude (string), occasion (string), style (string), sortBy ("relevance", "price_asc" or "price_desc"). Include only keys the message actually expresses. No prose.`

const compareSystemPrompt = `You compare two fashion products for a shopper and deliver a verdict.

Rules:
- 2-3 sentences, plain language
- Weigh price, formality, occasion fit, and delivery time
- End with a clear pick, not "it depends"`

// LinesResult carries per-item why lines plus degradation state.
type LinesResult struct {
	Lines    []string `json:"lines"`
	Degraded bool     `json:"degraded"`
	Reason   string   `json:"reason,omitempty"`
	Provider string   `json:"provider,omitempty"`
}

// DeltaResult carries an extracted constraint delta plus degradation state.
type DeltaResult struct {
	Delta    search.Constraints `json:"delta"`
	Degraded bool               `json:"degraded"`
	Reason   string             `json:"reason,omitempty"`
	Cached   bool               `json:"cached,omitempty"`
}

// CompareResult carries a comparison verdict plus degradation state.
type CompareResult struct {
	Verdict  string `json:"verdict"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Engine wraps a Provider with shopping-specific prompts and deterministic
// fallbacks. A nil provider is valid and always degrades.
type Engine struct {
	provider Provider
	cache    *deltaCache
}

// NewEngine builds an insights engine. Pass nil to run fully degraded.
func NewEngine(provider Provider) *Engine {
	return &Engine{provider: provider, cache: newDeltaCache(deltaCacheSize)}
}

// WhyLines produces one short line per bundle item explaining the pick.
// Degraded results carry the bundle's deterministic why lines unchanged.
func (e *Engine) WhyLines(ctx context.Context, query string, b bundle.Bundle) LinesResult {
	fallback := LinesResult{Lines: fallbackWhyLines(b), Degraded: true}

	if e.provider == nil {
		fallback.Reason = "no_llm_configured"
		return fallback
	}

	var items []string
	for _, item := range b.Items {
		items = append(items, fmt.Sprintf("%s (%s, %s, $%d, %s role)",
			item.Product.Title, item.Product.Brand, item.Product.Color, item.Product.Price, item.Role))
	}
	prompt := fmt.Sprintf("Request: %s\n\nBundle (%s):\n%s", query, b.Name, strings.Join(items, "\n"))

	callCtx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()
	resp, err := e.provider.Complete(callCtx, prompt, CompletionOpts{
		System:      whySystemPrompt,
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		fallback.Reason = "llm_error"
		return fallback
	}

	var lines []string
	if err := json.Unmarshal([]byte(stripFences(resp)), &lines); err != nil {
		fallback.Reason = "invalid_llm_json"
		return fallback
	}
	if len(lines) != len(b.Items) {
		fallback.Reason = "line_count_mismatch"
		return fallback
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
		if lines[i] == "" {
			fallback.Reason = "empty_llm_line"
			return fallback
		}
	}
	return LinesResult{Lines: lines, Provider: e.provider.Name()}
}

// deltaPayload is the wire shape the extraction prompt asks for.
type deltaPayload struct {
	BudgetMax    *int   `json:"budgetMax"`
	Category     string `json:"category"`
	Color        string `json:"color"`
	ColorExclude string `json:"colorExclude"`
	Occasion     string `json:"occasion"`
	Style        string `json:"style"`
	SortBy       string `json:"sortBy"`
}

// ConstraintDelta extracts a partial constraint set from a follow-up
// message. The rule-based extractor is the fallback, so a degraded result
// is still a usable delta.
func (e *Engine) ConstraintDelta(ctx context.Context, text string, audience catalog.Audience) DeltaResult {
	if delta, ok := e.cache.get(text); ok {
		return DeltaResult{Delta: delta, Cached: true}
	}

	fallback := DeltaResult{Delta: search.Extract(text, audience), Degraded: true}

	if e.provider == nil {
		fallback.Reason = "no_llm_configured"
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()
	resp, err := e.provider.Complete(callCtx, text, CompletionOpts{
		System:      deltaSystemPrompt,
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		fallback.Reason = "llm_error"
		return fallback
	}

	var payload deltaPayload
	if err := json.Unmarshal([]byte(stripFences(resp)), &payload); err != nil {
		fallback.Reason = "invalid_llm_json"
		return fallback
	}

	delta := search.Constraints{
		BudgetMax:    payload.BudgetMax,
		Category:     strings.TrimSpace(payload.Category),
		Color:        strings.TrimSpace(payload.Color),
		ColorExclude: strings.TrimSpace(payload.ColorExclude),
		Occasion:     strings.ToLower(strings.TrimSpace(payload.Occasion)),
		Style:        strings.ToLower(strings.TrimSpace(payload.Style)),
		SortBy:       strings.TrimSpace(payload.SortBy),
	}
	if delta.SortBy != "" {
		if _, err := search.ParseSortMode(delta.SortBy); err != nil {
			fallback.Reason = "invalid_sort_mode"
			return fallback
		}
	}

	e.cache.put(text, delta)
	return DeltaResult{Delta: delta}
}

// Compare produces a verdict between two products.
func (e *Engine) Compare(ctx context.Context, a, b catalog.Product) CompareResult {
	fallback := CompareResult{Verdict: fallbackVerdict(a, b), Degraded: true}

	if e.provider == nil {
		fallback.Reason = "no_llm_configured"
		return fallback
	}

	prompt := fmt.Sprintf("Product A: %s\nProduct B: %s", productBrief(a), productBrief(b))

	callCtx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()
	resp, err := e.provider.Complete(callCtx, prompt, CompletionOpts{
		System:      compareSystemPrompt,
		MaxTokens:   250,
		Temperature: 0.2,
	})
	if err != nil {
		fallback.Reason = "llm_error"
		return fallback
	}
	verdict := strings.TrimSpace(resp)
	if verdict == "" {
		fallback.Reason = "empty_llm_response"
		return fallback
	}
	return CompareResult{Verdict: verdict, Provider: e.provider.Name()}
}

// fallbackWhyLines returns the bundle's deterministic why lines, seeding a
// generic line for any item missing one.
func fallbackWhyLines(b bundle.Bundle) []string {
	lines := make([]string, len(b.Items))
	for i, item := range b.Items {
		if item.Why != "" {
			lines[i] = item.Why
			continue
		}
		lines[i] = fmt.Sprintf("Covers the %s role at $%d.", item.Role, item.Product.Price)
	}
	return lines
}

// fallbackVerdict compares deterministically on price, formality, and
// delivery.
func fallbackVerdict(a, b catalog.Product) string {
	pick, other := a, b
	switch {
	case a.Formality == "formal" && b.Formality != "formal":
		// formality outranks price for the pick
	case b.Formality == "formal" && a.Formality != "formal":
		pick, other = b, a
	case b.Price < a.Price:
		pick, other = b, a
	case b.Price == a.Price && b.DeliveryDays < a.DeliveryDays:
		pick, other = b, a
	}
	return fmt.Sprintf("%s ($%d, arrives in %d days) edges out %s ($%d, %d days).",
		pick.Title, pick.Price, pick.DeliveryDays,
		other.Title, other.Price, other.DeliveryDays)
}

func productBrief(p catalog.Product) string {
	return fmt.Sprintf("%s by %s, $%d, %s, %s formality, occasions %s, delivery %d days",
		p.Title, p.Brand, p.Price, p.Color, p.Formality, strings.Join(p.Occasions, "/"), p.DeliveryDays)
}

// stripFences removes markdown code fences around an LLM response so JSON
// parses even when the model wraps its output.
func stripFences(resp string) string {
	resp = strings.TrimSpace(resp)
	if !strings.HasPrefix(resp, "```") {
		return resp
	}
	lines := strings.Split(resp, "\n")
	var cleaned []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
