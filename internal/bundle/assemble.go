package bundle

import (
	"fmt"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
)

// Per-role candidate scoring weights. Role filling picks the highest scorer
// instead of the first match so item choice adapts to occasion, formality,
// and delivery signals.
const (
	roleScoreTier      = 10.0
	roleScoreOccasion  = 5.0
	roleScoreFormality = 5.0
	roleScoreDelivery  = 3.0

	// deliveryCohesionDays is the window around the running delivery average
	// that counts as cohesive.
	deliveryCohesionDays = 2.0
)

// Request holds one bundle-assembly request over a ranked candidate pool.
type Request struct {
	Query           string
	ScenarioID      string
	Audience        catalog.Audience
	AnchorProductID string
	Pool            []search.Result
}

// Assemble builds exactly three bundles (Budget, Balanced, Premium) of
// BundleSize role-tagged items each, or fails with a typed, descriptive
// error. The anchor product, when given, appears in every bundle and never
// participates in tier boundary computation.
func Assemble(req Request) ([]Bundle, error) {
	guard := search.DeriveGuardrails(req.Query, req.Audience)

	filtered := make([]search.Result, 0, len(req.Pool))
	for _, r := range req.Pool {
		p := r.Product
		if req.ScenarioID != "" && p.ScenarioID != req.ScenarioID {
			continue
		}
		if req.Audience != "" {
			if p.Audience != req.Audience && p.Audience != catalog.AudienceUnisex {
				continue
			}
			if !catalog.CategoryAllowed(req.Audience, p.Category) && !catalog.CategoryAllowed(catalog.AudienceUnisex, p.Category) {
				continue
			}
		}
		if !p.InStock {
			continue
		}
		if !guard.Allows(p) {
			continue
		}
		filtered = append(filtered, r)
	}

	var anchor *search.Result
	if req.AnchorProductID != "" {
		anchor = findByID(filtered, req.AnchorProductID)
		if anchor == nil {
			// The caller pinned it explicitly; honor it even when scenario
			// scoping or guardrails would have dropped it.
			anchor = findByID(req.Pool, req.AnchorProductID)
		}
		if anchor == nil {
			return nil, &InputError{Msg: fmt.Sprintf("anchor product %q not found in candidate pool", req.AnchorProductID)}
		}
		filtered = removeByID(filtered, req.AnchorProductID)
	}

	needed := BundleSize
	if anchor != nil {
		needed--
	}
	if len(filtered) < needed {
		return nil, &InsufficientCandidatesError{
			MissingTiers: append([]string(nil), TierNames...),
			ScenarioID:   req.ScenarioID,
			Audience:     req.Audience,
			Available:    len(filtered),
			Categories:   observedCategories(products(filtered)),
		}
	}

	tiers := partitionTiers(filtered)

	var missing []string
	for _, name := range TierNames {
		if len(tiers.pools[name]) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &InsufficientCandidatesError{
			MissingTiers: missing,
			ScenarioID:   req.ScenarioID,
			Audience:     req.Audience,
			Available:    len(filtered),
			Categories:   observedCategories(products(filtered)),
		}
	}

	sig := search.SignalsFor(req.Query)
	templates := TemplatesFor(req.ScenarioID, req.Audience)

	bundles := make([]Bundle, 0, len(TierNames))
	for _, name := range TierNames {
		b, ok := buildTier(name, tiers, filtered, templates, anchor, sig)
		if !ok {
			return nil, &InsufficientCandidatesError{
				MissingTiers: []string{name},
				ScenarioID:   req.ScenarioID,
				Audience:     req.Audience,
				Available:    len(filtered),
				Categories:   observedCategories(products(filtered)),
			}
		}
		annotate(&b, req.ScenarioID)
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// buildTier assembles one tier: templates in order, then the generic
// classifier strategy.
func buildTier(name string, tiers tiering, fullPool []search.Result, templates []Template, anchor *search.Result, sig search.QuerySignals) (Bundle, bool) {
	tierPool := tiers.pools[name]
	bounds := tiers.bounds[name]

	for _, tpl := range templates {
		if items, ok := fillTemplate(tpl, bounds, tierPool, fullPool, anchor, sig); ok {
			return Bundle{Name: name, Items: items}, true
		}
	}
	if items, ok := fillGeneric(bounds, tierPool, fullPool, anchor, sig); ok {
		return Bundle{Name: name, Items: items}, true
	}
	return Bundle{}, false
}

// fillTemplate tries to fill every role of one template. It succeeds only
// when all roles fill; a template with an unplaceable anchor fails
// immediately so the next strategy can take over.
func fillTemplate(tpl Template, bounds tierBounds, tierPool, fullPool []search.Result, anchor *search.Result, sig search.QuerySignals) ([]CartItem, bool) {
	used := map[string]bool{}
	items := make([]CartItem, 0, BundleSize)

	roles := tpl.Roles
	if anchor != nil {
		role, ok := tpl.roleFor(anchor.Product.Category)
		if !ok {
			return nil, false
		}
		items = append(items, CartItem{Product: anchor.Product, Role: role})
		used[anchor.Product.ID] = true
		roles = rolesWithout(tpl.Roles, role)
	}

	for _, spec := range roles {
		if len(items) >= BundleSize {
			break
		}
		pick, ok := pickBest(spec.Categories, bounds, tierPool, fullPool, used, sig, items)
		if !ok {
			return nil, false
		}
		items = append(items, CartItem{Product: pick.Product, Role: spec.Role})
		used[pick.Product.ID] = true
	}

	if len(items) != BundleSize {
		return nil, false
	}
	return items, true
}

// fillGeneric is the final strategy: classify candidates into generic roles
// and fill them in priority order, padding with one leftover item when fewer
// than three roles are fillable.
func fillGeneric(bounds tierBounds, tierPool, fullPool []search.Result, anchor *search.Result, sig search.QuerySignals) ([]CartItem, bool) {
	used := map[string]bool{}
	taken := map[Role]bool{}
	items := make([]CartItem, 0, BundleSize)

	if anchor != nil {
		role := ClassifyRole(anchor.Product.Category)
		items = append(items, CartItem{Product: anchor.Product, Role: role})
		used[anchor.Product.ID] = true
		taken[role] = true
	}

	for _, role := range rolePriority {
		if len(items) >= BundleSize {
			break
		}
		if taken[role] {
			continue
		}
		pick, ok := pickBestByRole(role, bounds, tierPool, fullPool, used, sig, items)
		if !ok {
			continue
		}
		items = append(items, CartItem{Product: pick.Product, Role: role})
		used[pick.Product.ID] = true
		taken[role] = true
	}

	// Pad with one leftover so a sparse tier still produces a complete
	// bundle. Role uniqueness caps padding at a single RoleItem entry.
	if len(items) == BundleSize-1 && !taken[RoleItem] {
		if pick, ok := pickBest(nil, bounds, tierPool, fullPool, used, sig, items); ok {
			items = append(items, CartItem{Product: pick.Product, Role: RoleItem})
		}
	}

	if len(items) != BundleSize {
		return nil, false
	}
	return items, true
}

// pickBest returns the highest-scoring unused candidate whose category is in
// the allowed list (nil allows everything). The tier pool is preferred; the
// full pool is a widening fallback so thin tiers still produce complete
// outfits, with the tier-alignment bonus reserved for in-band prices.
func pickBest(categories []string, bounds tierBounds, tierPool, fullPool []search.Result, used map[string]bool, sig search.QuerySignals, chosen []CartItem) (search.Result, bool) {
	for _, pool := range [][]search.Result{tierPool, fullPool} {
		best, found := search.Result{}, false
		bestScore := 0.0
		for _, r := range pool {
			if used[r.Product.ID] || !categoryIn(r.Product.Category, categories) {
				continue
			}
			s := roleScore(r.Product, bounds, sig, chosen)
			if !found || s > bestScore ||
				(s == bestScore && (r.Score > best.Score || (r.Score == best.Score && r.Product.ID < best.Product.ID))) {
				best, bestScore, found = r, s, true
			}
		}
		if found {
			return best, true
		}
	}
	return search.Result{}, false
}

func pickBestByRole(role Role, bounds tierBounds, tierPool, fullPool []search.Result, used map[string]bool, sig search.QuerySignals, chosen []CartItem) (search.Result, bool) {
	for _, pool := range [][]search.Result{tierPool, fullPool} {
		best, found := search.Result{}, false
		bestScore := 0.0
		for _, r := range pool {
			if used[r.Product.ID] || ClassifyRole(r.Product.Category) != role {
				continue
			}
			s := roleScore(r.Product, bounds, sig, chosen)
			if !found || s > bestScore ||
				(s == bestScore && (r.Score > best.Score || (r.Score == best.Score && r.Product.ID < best.Product.ID))) {
				best, bestScore, found = r, s, true
			}
		}
		if found {
			return best, true
		}
	}
	return search.Result{}, false
}

// roleScore rates one candidate for a role slot: tier alignment, occasion
// and formality alignment with the query signals, and delivery cohesion with
// the items already chosen.
func roleScore(p catalog.Product, bounds tierBounds, sig search.QuerySignals, chosen []CartItem) float64 {
	score := 0.0
	if bounds.contains(p.Price) {
		score += roleScoreTier
	}
	if sig.Evening && occasionsIntersect(p.Occasions, eveningOccasions) {
		score += roleScoreOccasion
	}
	if sig.Smart && (p.Formality == "smart" || p.Formality == "formal") {
		score += roleScoreFormality
	} else if sig.Casual && p.Formality == "casual" {
		score += roleScoreFormality
	}
	if len(chosen) > 0 {
		sum := 0
		for _, item := range chosen {
			sum += item.Product.DeliveryDays
		}
		avg := float64(sum) / float64(len(chosen))
		diff := float64(p.DeliveryDays) - avg
		if diff < 0 {
			diff = -diff
		}
		if diff <= deliveryCohesionDays {
			score += roleScoreDelivery
		}
	}
	return score
}

// annotate seeds deterministic notes and per-item fallback "why" lines; the
// assistant collaborator overwrites the lines when it is available.
func annotate(b *Bundle, scenarioID string) {
	scenarioName := scenarioID
	if sc, ok := catalog.ScenarioByID(scenarioID); ok {
		scenarioName = sc.Name
	}
	total := 0
	for i := range b.Items {
		total += b.Items[i].Product.Price
		if b.Items[i].Why == "" {
			b.Items[i].Why = fmt.Sprintf("Fills the %s slot of your %s look.", b.Items[i].Role, scenarioName)
		}
	}
	b.Notes = fmt.Sprintf("%s tier: %d pieces, %d total.", b.Name, len(b.Items), total)
}

func rolesWithout(roles []RoleSpec, drop Role) []RoleSpec {
	out := make([]RoleSpec, 0, len(roles))
	dropped := false
	for _, spec := range roles {
		if !dropped && spec.Role == drop {
			dropped = true
			continue
		}
		out = append(out, spec)
	}
	return out
}

func categoryIn(category string, allowed []string) bool {
	if allowed == nil {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// eveningOccasions are the product occasion tags that count as evening wear
// for the role-scoring bonus.
var eveningOccasions = []string{"evening", "dinner", "party", "night", "wedding", "gala"}

func occasionsIntersect(occasions, words []string) bool {
	for _, occ := range occasions {
		for _, w := range words {
			if occ == w {
				return true
			}
		}
	}
	return false
}

func findByID(pool []search.Result, id string) *search.Result {
	for i := range pool {
		if pool[i].Product.ID == id {
			r := pool[i]
			return &r
		}
	}
	return nil
}

func removeByID(pool []search.Result, id string) []search.Result {
	out := pool[:0]
	for _, r := range pool {
		if r.Product.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func products(pool []search.Result) []catalog.Product {
	out := make([]catalog.Product, 0, len(pool))
	for _, r := range pool {
		out = append(out, r.Product)
	}
	return out
}
