package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID         int    `yaml:"i"             json:"i"`
	Role       string `yaml:"r"             json:"r"`
	Subrole    string `yaml:"sr,omitempty"  json:"sr,omitempty"`
	Title      string `yaml:"t,omitempty"   json:"t,omitempty"`
	PID        int    `yaml:"pid,omitempty" json:"pid,omitempty"`
	Bounds     [4]int `yaml:"b"             json:"b"`
	Focused    bool   `yaml:"f,omitempty"   json:"f,omitempty"`
	Main       bool   `yaml:"m,omitempty"   json:"m,omitempty"`
	Minimized  bool   `yaml:"min,omitempty" json:"min,omitempty"`
	FullScreen bool   `yaml:"fs,omitempty"  json:"fs,omitempty"`
	Hidden     bool   `yaml:"h,omitempty"   json:"h,omitempty"`
	Path       string `yaml:"p,omitempty"   json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list.
// Each element gets a path string showing its location in the tree
// using abbreviated role names joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	currentPath := el.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role
	}

	flat := FlatElement{
		ID:         el.ID,
		Role:       el.Role,
		Subrole:    el.Subrole,
		Title:      el.Title,
		PID:        el.PID,
		Bounds:     el.Bounds,
		Focused:    el.Focused,
		Main:       el.Main,
		Minimized:  el.Minimized,
		FullScreen: el.FullScreen,
		Hidden:     el.Hidden,
		Path:       currentPath,
	}
	*result = append(*result, flat)

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}
