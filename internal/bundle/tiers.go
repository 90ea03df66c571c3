package bundle

import (
	"sort"

	"github.com/threadline/threadline/internal/search"
)

// minPriceSpread is the price range under which quantile tiering would
// degenerate (near-uniform pricing); below it the pool is tiered by rank
// thirds instead.
const minPriceSpread = 300

// tierBounds holds the price band of one tier. A zero max means unbounded.
type tierBounds struct {
	min, max int
}

func (b tierBounds) contains(price int) bool {
	if price < b.min {
		return false
	}
	return b.max == 0 || price <= b.max
}

// tiering is the partition of a candidate pool into the three tiers.
type tiering struct {
	pools  map[string][]search.Result
	bounds map[string]tierBounds
	// byRank is true when the pool was near-uniform in price and was split
	// by rank thirds rather than price quantiles.
	byRank bool
}

// partitionTiers splits a scored pool into Budget/Balanced/Premium. With a
// healthy price spread the range is cut at the 33%/67% points; a
// near-uniform pool is cut into rank thirds of the relevance ordering so no
// tier comes out structurally empty.
func partitionTiers(pool []search.Result) tiering {
	t := tiering{
		pools:  map[string][]search.Result{},
		bounds: map[string]tierBounds{},
	}
	if len(pool) == 0 {
		return t
	}

	minP, maxP := pool[0].Product.Price, pool[0].Product.Price
	for _, r := range pool {
		if r.Product.Price < minP {
			minP = r.Product.Price
		}
		if r.Product.Price > maxP {
			maxP = r.Product.Price
		}
	}

	if maxP-minP < minPriceSpread {
		t.byRank = true
		ranked := make([]search.Result, len(pool))
		copy(ranked, pool)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			return ranked[i].Product.ID < ranked[j].Product.ID
		})
		third := (len(ranked) + 2) / 3
		for i, r := range ranked {
			switch {
			case i < third:
				t.pools[TierBudget] = append(t.pools[TierBudget], r)
			case i < 2*third:
				t.pools[TierBalanced] = append(t.pools[TierBalanced], r)
			default:
				t.pools[TierPremium] = append(t.pools[TierPremium], r)
			}
		}
		all := tierBounds{min: minP, max: maxP}
		for _, name := range TierNames {
			t.bounds[name] = all
		}
		return t
	}

	span := maxP - minP
	lo := minP + span/3
	hi := minP + 2*span/3
	t.bounds[TierBudget] = tierBounds{min: minP, max: lo}
	t.bounds[TierBalanced] = tierBounds{min: lo + 1, max: hi}
	t.bounds[TierPremium] = tierBounds{min: hi + 1, max: 0}

	for _, r := range pool {
		switch {
		case r.Product.Price <= lo:
			t.pools[TierBudget] = append(t.pools[TierBudget], r)
		case r.Product.Price <= hi:
			t.pools[TierBalanced] = append(t.pools[TierBalanced], r)
		default:
			t.pools[TierPremium] = append(t.pools[TierPremium], r)
		}
	}
	return t
}
