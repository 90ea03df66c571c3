package catalog

import (
	"fmt"
	"strings"
)

// Brands is the fixed brand rotation for generated products.
var Brands = []string{
	"Northwick", "Velour & Co", "Atelier Mira", "Harbor Lane",
	"Stitch Theory", "Calder", "Mono Supply", "Ferrand",
}

var sizes = []string{"XS", "S", "M", "L", "XL"}

var fits = []string{"slim", "regular", "relaxed"}

// categorySingular maps category names to the singular form used in titles.
var categorySingular = map[string]string{
	"Shirts": "Shirt", "T-Shirts": "Tee", "Polos": "Polo", "Chinos": "Chino",
	"Jeans": "Jeans", "Trousers": "Trousers", "Shorts": "Shorts",
	"Blazers": "Blazer", "Jackets": "Jacket", "Sweaters": "Sweater",
	"Sneakers": "Sneakers", "Loafers": "Loafers", "Derbies": "Derbies",
	"Boots": "Boots", "Heels": "Heels", "Flats": "Flats", "Sandals": "Sandals",
	"Belts": "Belt", "Watches": "Watch", "Sunglasses": "Sunglasses",
	"Dresses": "Dress", "Tops": "Top", "Blouses": "Blouse", "Skirts": "Skirt",
	"Bags": "Bag", "Jewelry": "Necklace", "Scarves": "Scarf",
	"Hoodies": "Hoodie", "Caps": "Cap",
}

// basePrice holds the floor price per category, in whole currency units.
var basePrice = map[string]int{
	"Shirts": 1200, "T-Shirts": 600, "Polos": 900, "Chinos": 1400,
	"Jeans": 1600, "Trousers": 1800, "Shorts": 800,
	"Blazers": 3500, "Jackets": 3000, "Sweaters": 1600,
	"Sneakers": 2200, "Loafers": 2600, "Derbies": 2800, "Boots": 3200,
	"Heels": 2400, "Flats": 1800, "Sandals": 1200,
	"Belts": 700, "Watches": 3800, "Sunglasses": 1100,
	"Dresses": 2800, "Tops": 900, "Blouses": 1300, "Skirts": 1500,
	"Bags": 2600, "Jewelry": 1400, "Scarves": 800,
	"Hoodies": 1400, "Caps": 500,
}

var scenarioOccasions = map[string][]string{
	"summer_wedding": {"wedding", "party", "evening"},
	"nyc_dinner":     {"dinner", "evening", "party"},
	"office_layers":  {"office", "work"},
	"weekend_brunch": {"brunch", "weekend"},
	"beach_holiday":  {"beach", "vacation", "weekend"},
}

var scenarioSeason = map[string]string{
	"summer_wedding": "summer",
	"nyc_dinner":     "all-season",
	"office_layers":  "all-season",
	"weekend_brunch": "spring",
	"beach_holiday":  "summer",
}

var audienceCycle = []Audience{AudienceMen, AudienceWomen, AudienceUnisex}

// FormalityFor returns the formality level for a category.
func FormalityFor(category string) string {
	switch category {
	case "Blazers", "Derbies", "Heels", "Dresses", "Trousers", "Watches":
		return "formal"
	case "Shirts", "Chinos", "Loafers", "Blouses", "Skirts", "Sweaters", "Jackets", "Flats", "Tops", "Jewelry", "Scarves", "Bags", "Belts":
		return "smart"
	default:
		return "casual"
	}
}

// RoleHintFor returns the bundle role a category most naturally fills.
func RoleHintFor(category string) string {
	switch category {
	case "Dresses", "Blazers", "Jackets":
		return "primary"
	case "Shirts", "T-Shirts", "Polos", "Sweaters", "Tops", "Blouses", "Hoodies":
		return "top"
	case "Chinos", "Jeans", "Trousers", "Shorts", "Skirts":
		return "bottom"
	case "Sneakers", "Loafers", "Derbies", "Boots", "Heels", "Flats", "Sandals":
		return "footwear"
	case "Belts", "Watches", "Sunglasses", "Bags", "Jewelry", "Scarves", "Caps":
		return "addOn"
	default:
		return "item"
	}
}

// PaletteFor classifies a color into a palette family.
func PaletteFor(color string) string {
	switch color {
	case "Black", "White", "Gray", "Beige", "Cream", "Navy":
		return "neutral"
	case "Red", "Pink", "Burgundy", "Brown":
		return "warm"
	default:
		return "cool"
	}
}

// heroProducts are always present with fixed, deterministic ids.
var heroProducts = []Product{
	{
		ID: "hero-navy-blazer", Title: "Navy Tailored Blazer", Brand: "Ferrand",
		Price: 5200, Category: "Blazers", Color: "Navy", Size: "M", Fit: "slim",
		Occasions: []string{"dinner", "evening", "wedding"}, Style: "tailored",
		Description: "A sharply cut navy blazer that anchors evening and wedding looks alike.",
		ScenarioID:  "nyc_dinner", Audience: AudienceMen, Formality: "formal",
		Palette: "neutral", RoleHint: "primary", InStock: true, StockCount: 14,
		DeliveryDays: 2, Season: "all-season",
	},
	{
		ID: "hero-white-sneakers", Title: "White Court Sneakers", Brand: "Mono Supply",
		Price: 2400, Category: "Sneakers", Color: "White", Size: "M", Fit: "regular",
		Occasions: []string{"weekend", "brunch"}, Style: "minimal",
		Description: "Clean white leather sneakers that dress down tailoring or anchor a casual look.",
		ScenarioID:  "weekend_brunch", Audience: AudienceUnisex, Formality: "casual",
		Palette: "neutral", RoleHint: "footwear", InStock: true, StockCount: 40,
		DeliveryDays: 1, Season: "all-season",
	},
	{
		ID: "hero-black-dress", Title: "Black Slip Dress", Brand: "Atelier Mira",
		Price: 3400, Category: "Dresses", Color: "Black", Size: "S", Fit: "slim",
		Occasions: []string{"dinner", "evening", "party"}, Style: "minimal",
		Description: "A bias-cut black slip dress built for dinner reservations and gallery nights.",
		ScenarioID:  "nyc_dinner", Audience: AudienceWomen, Formality: "formal",
		Palette: "neutral", RoleHint: "primary", InStock: true, StockCount: 9,
		DeliveryDays: 3, Season: "all-season",
	},
	{
		ID: "hero-linen-shirt", Title: "Cream Linen Shirt", Brand: "Harbor Lane",
		Price: 1600, Category: "Shirts", Color: "Cream", Size: "L", Fit: "relaxed",
		Occasions: []string{"wedding", "beach", "vacation"}, Style: "relaxed",
		Description: "Breathable cream linen for outdoor weddings and long beach afternoons.",
		ScenarioID:  "summer_wedding", Audience: AudienceMen, Formality: "smart",
		Palette: "neutral", RoleHint: "top", InStock: true, StockCount: 22,
		DeliveryDays: 2, Season: "summer",
	},
}

// Generate builds a deterministic synthetic catalog of at least n products.
// Hero products are always included first; product i of the generated tail is
// a pure function of i, so repeated calls yield identical catalogs.
func Generate(n int) []Product {
	out := make([]Product, 0, n+len(heroProducts))
	for _, h := range heroProducts {
		h.ImageURL = imageURL(h.ID)
		out = append(out, h)
	}

	for i := 0; len(out) < n+len(heroProducts); i++ {
		out = append(out, generateAt(i))
	}
	return out
}

// generateAt derives product i from index arithmetic alone.
func generateAt(i int) Product {
	scenario := Scenarios[i%len(Scenarios)]
	audience := audienceCycle[i%len(audienceCycle)]
	cats := AudienceCategories[audience]
	category := cats[(i/len(audienceCycle))%len(cats)]
	color := Colors[(i*7)%len(Colors)]
	style := Styles[(i*5)%len(Styles)]
	brand := Brands[(i*3)%len(Brands)]

	price := basePrice[category] + ((i*13)%40)*25

	id := fmt.Sprintf("p-%04d", i)
	title := fmt.Sprintf("%s %s %s", color, titleCase(style), categorySingular[category])

	occ := scenarioOccasions[scenario.ID]

	return Product{
		ID:       id,
		Title:    title,
		Brand:    brand,
		Price:    price,
		Category: category,
		Color:    color,
		Size:     sizes[(i*2)%len(sizes)],
		Fit:      fits[i%len(fits)],
		// Copy so callers mutating occasion slices cannot corrupt the table.
		Occasions: append([]string(nil), occ...),
		Style:     style,
		Description: fmt.Sprintf("%s %s in %s, made for %s. Pairs well with the rest of the %s edit.",
			titleCase(style), strings.ToLower(categorySingular[category]), strings.ToLower(color),
			strings.Join(occ, " and "), scenario.Name),
		ScenarioID:   scenario.ID,
		Audience:     audience,
		Formality:    FormalityFor(category),
		Palette:      PaletteFor(color),
		RoleHint:     RoleHintFor(category),
		InStock:      i%17 != 0,
		StockCount:   3 + (i*3)%25,
		DeliveryDays: 1 + (i*11)%7,
		Season:       scenarioSeason[scenario.ID],
		ImageURL:     imageURL(id),
	}
}

func imageURL(id string) string {
	return "https://img.threadline.dev/products/" + id + ".jpg"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
