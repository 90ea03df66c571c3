package bundle

import "github.com/threadline/threadline/internal/catalog"

// rolePriority is the fill order for the generic classifier strategy.
var rolePriority = []Role{RolePrimary, RoleTop, RoleBottom, RoleFootwear, RoleAddOn}

// ClassifyRole maps a category to its generic bundle role by fixed
// category-set membership. Unknown categories land on RoleItem.
func ClassifyRole(category string) Role {
	switch catalog.RoleHintFor(category) {
	case "primary":
		return RolePrimary
	case "top":
		return RoleTop
	case "bottom":
		return RoleBottom
	case "footwear":
		return RoleFootwear
	case "addOn":
		return RoleAddOn
	default:
		return RoleItem
	}
}
