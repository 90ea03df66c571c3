package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/threadline/threadline/internal/catalog"
)

// SortMode controls result ordering.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ParseSortMode validates a sort mode string. Empty input means relevance.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortPriceAsc, SortPriceDesc:
		return SortMode(s), nil
	default:
		return "", fmt.Errorf("unknown sort mode %q (supported: relevance, price_asc, price_desc)", s)
	}
}

// DefaultScoreTieThreshold is the score gap under which two results count as
// tied for the price sort modes. Price only breaks near-ties; it never
// overrides a clearly more relevant result.
const DefaultScoreTieThreshold = 5.0

// InputError marks a client-input failure, rejected before any scoring.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Options configures a single search request.
type Options struct {
	Audience   catalog.Audience
	ScenarioID string
	SortBy     SortMode
	Limit      int

	// Constraints, when set, skips extraction and uses the supplied brief
	// (follow-up refinement via merged deltas).
	Constraints *Constraints
}

// Result pairs a product with its relevance score.
type Result struct {
	Product catalog.Product `json:"product"`
	Score   float64         `json:"score"`
}

// Response is a ranked result list plus the normalized constraints that
// produced it, for UI display and chip removal.
type Response struct {
	Results     []Result    `json:"results"`
	Constraints Constraints `json:"constraints"`
}

// Catalog is the product source the engine searches over. *catalog.Store
// satisfies it; tests can supply fixed pools.
type Catalog interface {
	Products() []catalog.Product
}

// Engine runs the extraction, prefilter, and scoring pipeline over the
// catalog snapshot.
type Engine struct {
	catalog      Catalog
	tieThreshold float64
}

// NewEngine creates a search engine with the default tie threshold.
func NewEngine(c Catalog) *Engine {
	return &Engine{catalog: c, tieThreshold: DefaultScoreTieThreshold}
}

// NewEngineWithTieThreshold creates a search engine with an explicit score
// tie threshold for the price sort modes.
func NewEngineWithTieThreshold(c Catalog, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultScoreTieThreshold
	}
	return &Engine{catalog: c, tieThreshold: threshold}
}

// Search runs the full pipeline for one query. The computation is pure and
// request-scoped; for a fixed catalog snapshot, identical inputs always
// produce an identical ordered list.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &InputError{Msg: "query is required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var constraints Constraints
	if opts.Constraints != nil {
		constraints = *opts.Constraints
	} else {
		constraints = Extract(query, opts.Audience)
	}

	// A gender inferred from the query stands in for a missing audience so
	// "dresses for women" narrows the pool even with no audience supplied.
	if opts.Audience == "" && constraints.Gender != "" {
		if aud, err := catalog.ParseAudience(constraints.Gender); err == nil {
			opts.Audience = aud
		}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		if parsed, err := ParseSortMode(constraints.SortBy); err == nil {
			sortBy = parsed
		} else {
			sortBy = SortRelevance
		}
	}

	guard := DeriveGuardrails(query, opts.Audience)

	tokens := Expand(query)
	rawQuery := strings.ToLower(query)

	results := make([]Result, 0, 32)
	for _, p := range e.catalog.Products() {
		if opts.ScenarioID != "" && p.ScenarioID != opts.ScenarioID {
			continue
		}
		if !MatchesConstraints(p, constraints, opts.Audience) {
			continue
		}
		if !guard.Allows(p) {
			continue
		}
		results = append(results, Result{
			Product: p,
			Score:   Score(p, tokens, constraints, rawQuery),
		})
	}

	e.sortResults(results, sortBy)

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return &Response{Results: results, Constraints: constraints}, nil
}

// sortResults orders by score descending with the product id as a
// deterministic tie-break. For the price modes, scores are banded by the tie
// threshold first so price ordering only applies within a near-tie band;
// banding keeps the comparator transitive.
func (e *Engine) sortResults(results []Result, sortBy SortMode) {
	switch sortBy {
	case SortPriceAsc, SortPriceDesc:
		band := func(score float64) int {
			return int(math.Floor(score / e.tieThreshold))
		}
		sort.Slice(results, func(i, j int) bool {
			bi, bj := band(results[i].Score), band(results[j].Score)
			if bi != bj {
				return bi > bj
			}
			if results[i].Product.Price != results[j].Product.Price {
				if sortBy == SortPriceAsc {
					return results[i].Product.Price < results[j].Product.Price
				}
				return results[i].Product.Price > results[j].Product.Price
			}
			return results[i].Product.ID < results[j].Product.ID
		})
	default:
		sort.Slice(results, func(i, j int) bool {
			if results[i].Score != results[j].Score {
				return results[i].Score > results[j].Score
			}
			return results[i].Product.ID < results[j].Product.ID
		})
	}
}
