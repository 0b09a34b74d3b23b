package ax

import "fmt"

// WindowElement is implemented by *Window and *EmittingWindow.
type WindowElement interface {
	UIElement
	window() *Window
}

// Window is a window element owned by one application for its whole life.
type Window struct {
	*Element
	app ApplicationElement
}

func (w *Window) window() *Window { return w }

// Application returns the owning application.
func (w *Window) Application() ApplicationElement { return w.app }

// SetAttribute stores v under attr. Setting AXMain to true makes the window
// its application's main window; setting it to false does nothing.
func (w *Window) SetAttribute(attr Attribute, v Value) error {
	if attr != AttrMain {
		return w.Element.SetAttribute(attr, v)
	}
	if err := w.check(); err != nil {
		return err
	}
	main, err := v.AsBool()
	if err != nil {
		return Wrap(err, "set AXMain")
	}
	if !main {
		return nil
	}
	return w.app.SetAttribute(AttrMainWindow, ElementValue(w.self))
}

func (w *Window) String() string {
	title := "<none>"
	if v, ok := w.attrs.Get(AttrTitle); ok {
		if s, err := v.AsString(); err == nil {
			title = fmt.Sprintf("%q", s)
		}
	}
	return fmt.Sprintf("Window(%s)", title)
}

// EmittingWindow is a Window that notifies its observers of attribute
// changes and destruction.
type EmittingWindow struct {
	*Window
}

func (w *EmittingWindow) SetAttribute(attr Attribute, v Value) error {
	if err := w.Window.SetAttribute(attr, v); err != nil {
		return err
	}
	w.notify(windowNotifications(attr, v), w)
	return nil
}

// Destroy removes the window from its application's AXWindows and emits
// AXUIElementDestroyed to the window's observers.
func (w *EmittingWindow) Destroy() {
	w.app.application().removeWindow(w)
	w.notify([]Notification{UIElementDestroyed}, w)
}

func windowNotifications(attr Attribute, v Value) []Notification {
	switch attr {
	case AttrPosition:
		return []Notification{Moved}
	case AttrSize:
		return []Notification{Resized}
	case AttrFrame:
		return []Notification{Moved, Resized}
	case AttrFullScreen:
		return []Notification{Resized}
	case AttrTitle:
		return []Notification{TitleChanged}
	case AttrMinimized:
		// Reproduces the mapping clients were tested against, which pairs
		// minimized=true with AXWindowDeminiaturized.
		if b, err := v.AsBool(); err == nil && b {
			return []Notification{WindowDeminiaturized}
		}
		return []Notification{WindowMiniaturized}
	default:
		return nil
	}
}
