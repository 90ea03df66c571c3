// Package catalog provides the in-memory product catalog for Threadline.
//
// Products are generated deterministically (product i is a pure function of i)
// and cached behind a TTL so the surrounding system sees a stable snapshot per
// process lifetime. There is no persistence layer; the catalog is the single
// source of truth for search and bundle assembly.
package catalog

import "fmt"

// Audience is the target shopper segment. It gates which categories are
// visible: a product's category must always belong to its audience's
// whitelist.
type Audience string

const (
	AudienceMen    Audience = "men"
	AudienceWomen  Audience = "women"
	AudienceUnisex Audience = "unisex"
)

// ParseAudience validates an audience string. Empty input is allowed and
// returns the zero Audience (meaning "no audience filter").
func ParseAudience(s string) (Audience, error) {
	switch Audience(s) {
	case "", AudienceMen, AudienceWomen, AudienceUnisex:
		return Audience(s), nil
	default:
		return "", fmt.Errorf("unknown audience %q (supported: men, women, unisex)", s)
	}
}

// Product is an immutable catalog record.
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Brand        string   `json:"brand"`
	Price        int      `json:"price"` // integer currency units
	Category     string   `json:"category"`
	Color        string   `json:"color"`
	Size         string   `json:"size,omitempty"`
	Fit          string   `json:"fit,omitempty"`
	Occasions    []string `json:"occasions"`
	Style        string   `json:"style"`
	Description  string   `json:"description"`
	ScenarioID   string   `json:"scenario_id"`
	Audience     Audience `json:"audience"`
	Formality    string   `json:"formality"`
	Palette      string   `json:"palette"`
	RoleHint     string   `json:"role_hint,omitempty"`
	InStock      bool     `json:"in_stock"`
	StockCount   int      `json:"stock_count"`
	DeliveryDays int      `json:"delivery_days"`
	Season       string   `json:"season"`
	ImageURL     string   `json:"image_url"`
}

// Scenario is a named shopping occasion that scopes the catalog subset and
// the bundle templates.
type Scenario struct {
	ID       string
	Name     string
	Keywords []string
}

// Scenarios is the fixed scenario set, in catalog generation order.
var Scenarios = []Scenario{
	{ID: "summer_wedding", Name: "Summer Wedding", Keywords: []string{"summer", "wedding", "outdoor", "festive"}},
	{ID: "nyc_dinner", Name: "NYC Dinner", Keywords: []string{"dinner", "evening", "smart", "night"}},
	{ID: "office_layers", Name: "Office Layers", Keywords: []string{"office", "work", "meeting", "layered"}},
	{ID: "weekend_brunch", Name: "Weekend Brunch", Keywords: []string{"brunch", "weekend", "casual", "relaxed"}},
	{ID: "beach_holiday", Name: "Beach Holiday", Keywords: []string{"beach", "holiday", "vacation", "resort"}},
}

// ScenarioByID returns the scenario for an id, if known.
func ScenarioByID(id string) (Scenario, bool) {
	for _, sc := range Scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// AudienceCategories is the closed category vocabulary per audience. Search
// and bundle assembly both enforce membership as a hard constraint.
var AudienceCategories = map[Audience][]string{
	AudienceMen: {
		"Shirts", "T-Shirts", "Polos", "Chinos", "Jeans", "Trousers", "Shorts",
		"Blazers", "Jackets", "Sweaters",
		"Sneakers", "Loafers", "Derbies", "Boots",
		"Belts", "Watches", "Sunglasses",
	},
	AudienceWomen: {
		"Dresses", "Tops", "Blouses", "T-Shirts", "Skirts", "Jeans", "Trousers", "Shorts",
		"Blazers", "Jackets", "Sweaters",
		"Sneakers", "Heels", "Flats", "Sandals", "Boots",
		"Bags", "Jewelry", "Scarves", "Sunglasses",
	},
	AudienceUnisex: {
		"T-Shirts", "Hoodies", "Sweaters", "Jeans", "Sneakers",
		"Caps", "Bags", "Watches", "Sunglasses",
	},
}

// FootwearCategories lists the footwear subset of each audience's
// vocabulary. Used when a query contains a generic footwear term ("shoes")
// that is not itself a category.
var FootwearCategories = map[Audience][]string{
	AudienceMen:    {"Sneakers", "Loafers", "Derbies", "Boots"},
	AudienceWomen:  {"Sneakers", "Heels", "Flats", "Sandals", "Boots"},
	AudienceUnisex: {"Sneakers"},
}

// AllFootwearCategories is the audience-agnostic union, used when no
// audience is known at extraction time.
var AllFootwearCategories = []string{"Sneakers", "Loafers", "Derbies", "Heels", "Flats", "Sandals", "Boots"}

// CategoryAllowed reports whether a category is visible to an audience.
// An empty audience allows every known category.
func CategoryAllowed(audience Audience, category string) bool {
	if audience == "" {
		for _, cats := range AudienceCategories {
			for _, c := range cats {
				if c == category {
					return true
				}
			}
		}
		return false
	}
	for _, c := range AudienceCategories[audience] {
		if c == category {
			return true
		}
	}
	return false
}

// Colors is the closed color vocabulary.
var Colors = []string{
	"Black", "White", "Navy", "Gray", "Beige", "Brown",
	"Green", "Blue", "Red", "Pink", "Olive", "Cream", "Burgundy",
}

// Styles is the closed style vocabulary.
var Styles = []string{"classic", "minimal", "relaxed", "tailored", "sporty", "bohemian"}

// Occasions is the closed occasion vocabulary used by extraction.
var Occasions = []string{"wedding", "dinner", "party", "office", "work", "brunch", "weekend", "beach", "vacation", "evening"}
