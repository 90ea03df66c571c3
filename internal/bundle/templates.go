package bundle

import "github.com/threadline/threadline/internal/catalog"

// RoleSpec maps one template role to its acceptable categories.
type RoleSpec struct {
	Role       Role
	Categories []string
}

// Template is a named, ordered role layout for a complete outfit.
type Template struct {
	Name  string
	Roles []RoleSpec
}

var (
	menFootwear      = []string{"Derbies", "Loafers", "Boots", "Sneakers"}
	womenFootwear    = []string{"Heels", "Flats", "Boots", "Sandals", "Sneakers"}
	womenAddOns      = []string{"Bags", "Jewelry", "Scarves", "Sunglasses"}
	menAddOns        = []string{"Belts", "Watches", "Sunglasses"}
	menTops          = []string{"Shirts", "Polos", "Sweaters", "T-Shirts"}
	menBottoms       = []string{"Trousers", "Chinos", "Jeans", "Shorts"}
	womenTops        = []string{"Tops", "Blouses", "Sweaters", "T-Shirts"}
	womenBottoms     = []string{"Skirts", "Trousers", "Jeans", "Shorts"}
	womenEveningShoe = []string{"Heels", "Flats", "Boots"}
)

// scenarioTemplates is the ordered template list per (scenarioID, audience),
// richest look first. The assembler tries each in order and falls back to
// the generic classifier when none resolves.
var scenarioTemplates = map[string]map[catalog.Audience][]Template{
	"nyc_dinner": {
		catalog.AudienceWomen: {
			{
				Name: "evening primary",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Dresses"}},
					{Role: RoleFootwear, Categories: womenEveningShoe},
					{Role: RoleAddOn, Categories: womenAddOns},
				},
			},
			{
				Name: "evening separates",
				Roles: []RoleSpec{
					{Role: RoleTop, Categories: []string{"Tops", "Blouses", "Sweaters"}},
					{Role: RoleBottom, Categories: []string{"Skirts", "Trousers", "Jeans"}},
					{Role: RoleFootwear, Categories: womenEveningShoe},
				},
			},
		},
		catalog.AudienceMen: {
			{
				Name: "tailored evening",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Blazers", "Jackets"}},
					{Role: RoleTop, Categories: []string{"Shirts"}},
					{Role: RoleFootwear, Categories: []string{"Derbies", "Loafers", "Boots"}},
				},
			},
			{
				Name: "smart separates",
				Roles: []RoleSpec{
					{Role: RoleTop, Categories: []string{"Shirts", "Polos", "Sweaters"}},
					{Role: RoleBottom, Categories: []string{"Trousers", "Chinos", "Jeans"}},
					{Role: RoleFootwear, Categories: menFootwear},
				},
			},
		},
	},
	"summer_wedding": {
		catalog.AudienceMen: {
			{
				Name: "wedding tailored",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Blazers"}},
					{Role: RoleTop, Categories: []string{"Shirts"}},
					{Role: RoleFootwear, Categories: []string{"Loafers", "Derbies"}},
				},
			},
			{
				Name: "wedding light",
				Roles: []RoleSpec{
					{Role: RoleTop, Categories: []string{"Shirts", "Polos"}},
					{Role: RoleBottom, Categories: []string{"Chinos", "Trousers"}},
					{Role: RoleFootwear, Categories: []string{"Loafers", "Derbies", "Sneakers"}},
				},
			},
		},
		catalog.AudienceWomen: {
			{
				Name: "wedding dress",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Dresses"}},
					{Role: RoleFootwear, Categories: []string{"Heels", "Flats", "Sandals"}},
					{Role: RoleAddOn, Categories: womenAddOns},
				},
			},
			{
				Name: "wedding separates",
				Roles: []RoleSpec{
					{Role: RoleTop, Categories: []string{"Blouses", "Tops"}},
					{Role: RoleBottom, Categories: []string{"Skirts", "Trousers"}},
					{Role: RoleFootwear, Categories: []string{"Heels", "Flats", "Sandals"}},
				},
			},
		},
	},
	"office_layers": {
		catalog.AudienceMen: {
			{
				Name: "office layered",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Blazers", "Jackets", "Sweaters"}},
					{Role: RoleTop, Categories: []string{"Shirts", "Polos"}},
					{Role: RoleFootwear, Categories: []string{"Derbies", "Loafers", "Boots", "Sneakers"}},
				},
			},
		},
		catalog.AudienceWomen: {
			{
				Name: "office layered",
				Roles: []RoleSpec{
					{Role: RolePrimary, Categories: []string{"Blazers", "Jackets", "Sweaters"}},
					{Role: RoleTop, Categories: []string{"Blouses", "Tops"}},
					{Role: RoleFootwear, Categories: []string{"Heels", "Flats", "Boots"}},
				},
			},
		},
	},
}

// defaultTemplates covers scenarios without a bespoke layout.
var defaultTemplates = map[catalog.Audience][]Template{
	catalog.AudienceMen: {
		{
			Name: "standard look",
			Roles: []RoleSpec{
				{Role: RoleTop, Categories: menTops},
				{Role: RoleBottom, Categories: menBottoms},
				{Role: RoleFootwear, Categories: menFootwear},
			},
		},
		{
			Name: "top and finish",
			Roles: []RoleSpec{
				{Role: RoleTop, Categories: menTops},
				{Role: RoleFootwear, Categories: menFootwear},
				{Role: RoleAddOn, Categories: menAddOns},
			},
		},
	},
	catalog.AudienceWomen: {
		{
			Name: "dress look",
			Roles: []RoleSpec{
				{Role: RolePrimary, Categories: []string{"Dresses"}},
				{Role: RoleFootwear, Categories: womenFootwear},
				{Role: RoleAddOn, Categories: womenAddOns},
			},
		},
		{
			Name: "standard look",
			Roles: []RoleSpec{
				{Role: RoleTop, Categories: womenTops},
				{Role: RoleBottom, Categories: womenBottoms},
				{Role: RoleFootwear, Categories: womenFootwear},
			},
		},
	},
	catalog.AudienceUnisex: {
		{
			Name: "standard look",
			Roles: []RoleSpec{
				{Role: RoleTop, Categories: []string{"T-Shirts", "Hoodies", "Sweaters"}},
				{Role: RoleBottom, Categories: []string{"Jeans"}},
				{Role: RoleFootwear, Categories: []string{"Sneakers"}},
			},
		},
	},
}

// TemplatesFor returns the ordered template list for a scenario/audience
// pair: the scenario-specific list when one exists, then the audience
// defaults. An empty audience yields nil, routing assembly straight to the
// generic classifier strategy.
func TemplatesFor(scenarioID string, audience catalog.Audience) []Template {
	if audience == "" {
		return nil
	}
	var out []Template
	if byAudience, ok := scenarioTemplates[scenarioID]; ok {
		out = append(out, byAudience[audience]...)
	}
	out = append(out, defaultTemplates[audience]...)
	return out
}

// roleFor finds the template role whose category list contains the given
// category.
func (t Template) roleFor(category string) (Role, bool) {
	for _, spec := range t.Roles {
		for _, cat := range spec.Categories {
			if cat == category {
				return spec.Role, true
			}
		}
	}
	return "", false
}
