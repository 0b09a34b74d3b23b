package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	vals, err := parseInts(s, 4)
	if err != nil {
		return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ParsePair parses an "a,b" string such as a position or size.
func ParsePair(s string) (int, int, error) {
	vals, err := parseInts(s, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pair %q: %w", s, err)
	}
	return vals[0], vals[1], nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated integers", n)
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// Target selects an application or one of its windows. The zero value
// selects nothing.
type Target struct {
	App      string // Application name, case-insensitive
	Window   string // Window title substring, case-insensitive
	WindowID int    // Window element ID (0 = unset)
	PID      int    // Process ID (0 = unset)
}

// IsZero reports whether no field is set.
func (t Target) IsZero() bool {
	return t.App == "" && t.Window == "" && t.WindowID == 0 && t.PID == 0
}

// ReadOptions controls what elements to read.
type ReadOptions struct {
	Target
	Depth int // Max traversal depth (0 = unlimited)
}

// ListOptions controls window/app listing.
type ListOptions struct {
	Apps bool   // List applications instead of windows
	PID  int    // Filter by PID
	App  string // Filter by app name
}

// FocusOptions specifies what to focus.
type FocusOptions struct {
	Target
}

// MoveOptions specifies a window and its new position and/or size.
type MoveOptions struct {
	Target
	X, Y          int
	Width, Height int
	SetPosition   bool
	SetSize       bool
}

// SetAttributeOptions writes one attribute of the element named by Element,
// which is "App" or "App/Window". Value is interpreted by the attribute's
// kind.
type SetAttributeOptions struct {
	Element   string
	Attribute string
	Value     any
}
