package model

// RoleMap maps macOS AXRole values to compact role codes.
var RoleMap = map[string]string{
	"AXApplication": "app",
	"AXWindow":      "window",
	"AXSheet":       "sheet",
	"AXDrawer":      "drawer",
	"AXButton":      "btn",
	"AXStaticText":  "txt",
	"AXGroup":       "group",
	"AXToolbar":     "toolbar",
}

// MapRole converts a raw accessibility role to a compact code.
func MapRole(axRole string) string {
	if short, ok := RoleMap[axRole]; ok {
		return short
	}
	return "other"
}
