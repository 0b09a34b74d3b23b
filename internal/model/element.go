package model

// Element is one node of a read of the simulated accessibility tree.
type Element struct {
	ID         int       `yaml:"i"             json:"i"`             // Element ID in the tree
	Role       string    `yaml:"r"             json:"r"`             // Abbreviated role code
	Subrole    string    `yaml:"sr,omitempty"  json:"sr,omitempty"`  // Raw AXSubrole
	Title      string    `yaml:"t,omitempty"   json:"t,omitempty"`   // AXTitle
	PID        int       `yaml:"pid,omitempty" json:"pid,omitempty"` // Owning process
	Bounds     [4]int    `yaml:"b"             json:"b"`             // [x, y, width, height]
	Focused    bool      `yaml:"f,omitempty"   json:"f,omitempty"`   // AXFocused or focused window
	Main       bool      `yaml:"m,omitempty"   json:"m,omitempty"`   // AXMain
	Minimized  bool      `yaml:"min,omitempty" json:"min,omitempty"` // AXMinimized
	FullScreen bool      `yaml:"fs,omitempty"  json:"fs,omitempty"`  // AXFullScreen
	Hidden     bool      `yaml:"h,omitempty"   json:"h,omitempty"`   // AXHidden (applications)
	Children   []Element `yaml:"c,omitempty"   json:"c,omitempty"`   // Child elements
}
