package platform

import "github.com/mj1618/axsim/internal/model"

// Reader reads the UI element tree from the accessibility layer.
type Reader interface {
	// ReadElements returns the element tree for the specified target.
	ReadElements(opts ReadOptions) ([]model.Element, error)

	// ListWindows returns all windows, optionally filtered.
	ListWindows(opts ListOptions) ([]model.Window, error)

	// ListApps returns running applications, optionally filtered.
	ListApps(opts ListOptions) ([]model.App, error)
}

// WindowManager manages window focus.
type WindowManager interface {
	FocusWindow(opts FocusOptions) error
	GetFrontmostApp() (string, int, error)
}

// WindowMover repositions and resizes windows.
type WindowMover interface {
	MoveWindow(opts MoveOptions) error
}

// AttributeWriter writes raw accessibility attributes.
type AttributeWriter interface {
	SetAttribute(opts SetAttributeOptions) error
}
