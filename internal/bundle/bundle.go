// Package bundle assembles complete, role-tagged outfits from a ranked
// candidate pool at three price tiers.
//
// Assembly is template-driven: an ordered list of role templates per
// (scenario, audience) is tried in sequence, specific looks first, with a
// generic role classifier as the final strategy. A degenerate pool still
// yields complete, valid outfits or one explicit, diagnosable error, never
// partially filled bundles.
package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/threadline/threadline/internal/catalog"
)

// Role is the functional slot an item fills in a bundle.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleTop      Role = "top"
	RoleBottom   Role = "bottom"
	RoleFootwear Role = "footwear"
	RoleAddOn    Role = "addOn"
	RoleItem     Role = "item"
)

// BundleSize is the fixed number of items in every bundle.
const BundleSize = 3

// Tier names, in ascending price order.
const (
	TierBudget   = "Budget"
	TierBalanced = "Balanced"
	TierPremium  = "Premium"
)

// TierNames lists the three tiers in build order.
var TierNames = []string{TierBudget, TierBalanced, TierPremium}

// CartItem is a product placed into a bundle with its assigned role. Why is
// filled by the assistant collaborator; the assembler seeds it with a
// deterministic fallback line.
type CartItem struct {
	Product catalog.Product `json:"product"`
	Role    Role            `json:"role"`
	Why     string          `json:"why"`
}

// Bundle is a complete outfit at one price tier.
type Bundle struct {
	Name  string     `json:"name"` // Budget | Balanced | Premium
	Items []CartItem `json:"items"`
	Notes string     `json:"notes"`
}

// InsufficientCandidatesError reports that too few products survived
// filtering to build all three tiers. It carries enough diagnostics to see
// why: the requested scenario and audience, pool size, and observed categories.
type InsufficientCandidatesError struct {
	MissingTiers []string
	ScenarioID   string
	Audience     catalog.Audience
	Available    int
	Categories   []string
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf(
		"cannot fill tier(s) %s for scenario=%q audience=%q: %d products available across categories [%s]",
		strings.Join(e.MissingTiers, ", "), e.ScenarioID, e.Audience,
		e.Available, strings.Join(e.Categories, ", "),
	)
}

// InputError marks a client-input failure (missing anchor product, bad
// audience), rejected before any assembly work.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// observedCategories returns the sorted distinct category set of a pool,
// for diagnostics.
func observedCategories(pool []catalog.Product) []string {
	seen := map[string]bool{}
	for _, p := range pool {
		seen[p.Category] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
