package ax

// ApplicationElement is implemented by *Application and *EmittingApplication.
type ApplicationElement interface {
	UIElement
	application() *Application
}

// Application is an application element. Setting AXMainWindow keeps the
// windows' AXMain flags and the application's AXFocusedWindow in step.
type Application struct {
	*Element
}

func (a *Application) application() *Application { return a }

// SetAttribute stores v under attr. For AXMainWindow the previous main window
// loses AXMain, the new one gains it, and AXFocusedWindow follows, all in one
// transaction across the three stores.
func (a *Application) SetAttribute(attr Attribute, v Value) error {
	if attr != AttrMainWindow {
		return a.Element.SetAttribute(attr, v)
	}
	if err := a.check(); err != nil {
		return err
	}
	el, err := v.AsElement()
	if err != nil {
		return Wrap(err, "set AXMainWindow")
	}
	win, ok := el.(WindowElement)
	if !ok {
		return Wrapf(ErrTypeMismatch, "set AXMainWindow: element %d is not a window", el.ID())
	}
	a.setMainWindow(win)
	return nil
}

func (a *Application) setMainWindow(newWin WindowElement) {
	for {
		old := a.currentMainWindow()
		if old == nil {
			old = newWin
		}

		applied := false
		stores := []*SyncAttributes{a.attrs, newWin.element().attrs, old.element().attrs}
		withAll(stores, func() {
			// Another writer may have moved the main window between the
			// unlocked read and taking the locks.
			cur := mainWindowLocked(a.attrs.attrs)
			if cur == nil {
				cur = newWin
			}
			if !SameElement(cur, old) {
				return
			}
			_ = old.element().attrs.attrs.Set(AttrMain, BoolValue(false))
			_ = newWin.element().attrs.attrs.Set(AttrMain, BoolValue(true))
			_ = a.attrs.attrs.Set(AttrMainWindow, ElementValue(newWin))
			// A main window change also moves focus. AXFocusedWindow can
			// still be written on its own.
			_ = a.attrs.attrs.Set(AttrFocusedWindow, ElementValue(newWin))
			applied = true
		})
		if applied {
			return
		}
	}
}

func (a *Application) currentMainWindow() WindowElement {
	var w WindowElement
	a.attrs.With(func(attrs *Attributes) { w = mainWindowLocked(attrs) })
	return w
}

func mainWindowLocked(attrs *Attributes) WindowElement {
	v, ok := attrs.Get(AttrMainWindow)
	if !ok {
		return nil
	}
	el, err := v.AsElement()
	if err != nil {
		return nil
	}
	w, _ := el.(WindowElement)
	return w
}

// Windows returns the application's AXWindows list.
func (a *Application) Windows() ([]UIElement, error) {
	wins, _, err := ElementsAttribute(a, AttrWindows)
	return wins, err
}

// AddWindow appends w to AXWindows.
func (a *Application) AddWindow(w WindowElement) error {
	if err := a.check(); err != nil {
		return err
	}
	var err error
	a.attrs.With(func(attrs *Attributes) {
		var wins []UIElement
		if v, ok := attrs.Get(AttrWindows); ok {
			if wins, err = v.AsElements(); err != nil {
				return
			}
		}
		err = attrs.Set(AttrWindows, ElementsValue(append(wins, w)))
	})
	return err
}

// removeWindow drops w from AXWindows regardless of validity; it is
// bookkeeping for window destruction, not a client operation.
func (a *Application) removeWindow(w UIElement) {
	a.attrs.With(func(attrs *Attributes) {
		v, ok := attrs.Get(AttrWindows)
		if !ok {
			return
		}
		wins, err := v.AsElements()
		if err != nil {
			return
		}
		kept := wins[:0]
		for _, el := range wins {
			if !SameElement(el, w) {
				kept = append(kept, el)
			}
		}
		_ = attrs.Set(AttrWindows, ElementsValue(kept))
	})
}

// EmittingApplication is an Application that notifies its observers of
// attribute changes and window creation.
type EmittingApplication struct {
	*Application
}

func (a *EmittingApplication) SetAttribute(attr Attribute, v Value) error {
	if err := a.Application.SetAttribute(attr, v); err != nil {
		return err
	}
	a.notify(applicationNotifications(attr, v), a)
	return nil
}

// AddWindow registers w with the application and emits AXWindowCreated for
// it to the application's observers.
func (a *EmittingApplication) AddWindow(w WindowElement) error {
	if err := a.Application.AddWindow(w); err != nil {
		return err
	}
	a.notify([]Notification{WindowCreated}, w)
	return nil
}

func applicationNotifications(attr Attribute, v Value) []Notification {
	switch attr {
	case AttrMainWindow:
		return []Notification{MainWindowChanged, FocusedWindowChanged}
	case AttrFocusedWindow:
		return []Notification{FocusedWindowChanged}
	case AttrHidden:
		if b, err := v.AsBool(); err == nil && b {
			return []Notification{ApplicationHidden}
		}
		return []Notification{ApplicationShown}
	default:
		return nil
	}
}
