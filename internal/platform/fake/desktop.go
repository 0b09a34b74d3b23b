// Package fake is the accessibility backend over the simulated tree in
// internal/ax. A Desktop names applications and windows so scenarios, the
// CLI and the MCP server can address them; Provider implements the
// internal/platform interfaces on top of it.
package fake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mj1618/axsim/internal/ax"
)

// ErrNotFound is returned when a reference names no application or window.
var ErrNotFound = errors.New("not found")

// App is a named application on the desktop.
type App struct {
	Name    string
	Element *ax.EmittingApplication

	// pid is fixed at creation so it stays readable after invalidation.
	pid int32
}

// PID returns the application's process ID.
func (a *App) PID() int32 { return a.pid }

// Window is a named window of an App.
type Window struct {
	Name    string
	Element *ax.EmittingWindow
	App     *App
}

// Ref returns the "App/Window" reference naming w.
func (w *Window) Ref() string { return w.App.Name + "/" + w.Name }

// Desktop is the set of named applications and windows in one tree.
type Desktop struct {
	tree *ax.Tree
	apps *ax.ApplicationObserver
	log  zerolog.Logger

	mu      sync.RWMutex
	order   []*App
	windows map[*App][]*Window
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithLogger sets the logger for desktop-level events.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Desktop) { d.log = l.With().Str("component", "desktop").Logger() }
}

// NewDesktop returns an empty desktop over tree.
func NewDesktop(tree *ax.Tree, opts ...Option) *Desktop {
	d := &Desktop{
		tree:    tree,
		apps:    tree.NewApplicationObserver(),
		log:     zerolog.Nop(),
		windows: make(map[*App][]*Window),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tree returns the underlying tree.
func (d *Desktop) Tree() *ax.Tree { return d.tree }

// Registry returns the process-level application registry.
func (d *Desktop) Registry() *ax.ApplicationObserver { return d.apps }

// AddApplication launches a named application. A zero pid takes the next
// value of the tree's pid counter.
func (d *Desktop) AddApplication(name string, pid int32) (*App, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.findAppLocked(name) != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("application %q already exists", name)
	}
	for _, a := range d.order {
		if pid != 0 && a.pid == pid {
			d.mu.Unlock()
			return nil, fmt.Errorf("pid %d already belongs to %q", pid, a.Name)
		}
	}
	var opts []ax.ElementOption
	if pid != 0 {
		opts = append(opts, ax.WithPID(pid))
	}
	el := d.tree.NewEmittingApplication(opts...)
	pid, _ = el.PID()
	app := &App{Name: name, Element: el, pid: pid}
	d.order = append(d.order, app)
	d.mu.Unlock()

	d.apps.AddApplication(el)
	d.log.Debug().Str("app", name).Int32("pid", pid).Msg("application launched")
	d.apps.Launch(pid)
	return app, nil
}

// RemoveApplication terminates app: its windows and the application element
// become invalid and it leaves the registry.
func (d *Desktop) RemoveApplication(app *App) {
	d.mu.Lock()
	wins := d.windows[app]
	delete(d.windows, app)
	kept := d.order[:0]
	for _, a := range d.order {
		if a != app {
			kept = append(kept, a)
		}
	}
	clear(d.order[len(kept):])
	d.order = kept
	d.mu.Unlock()

	for _, w := range wins {
		w.Element.Invalidate()
	}
	app.Element.Invalidate()
	d.apps.RemoveApplication(app.pid)
	if front, ok := d.apps.FrontmostApplicationPID(); ok && front == app.pid {
		d.apps.ClearFrontmost()
	}
	d.log.Debug().Str("app", app.Name).Int32("pid", app.pid).Msg("application terminated")
	d.apps.Terminate(app.pid)
}

// AddWindow creates a window of app, registers it in AXWindows and emits
// AXWindowCreated. An empty name keeps the default title and uses it as the
// name. A nil frame keeps the default frame.
func (d *Desktop) AddWindow(app *App, name string, frame *ax.Rect) (*Window, error) {
	if name != "" {
		if err := checkName(name); err != nil {
			return nil, err
		}
		if _, err := d.Window(app, name); err == nil {
			return nil, fmt.Errorf("window %q already exists in %q", name, app.Name)
		}
	}
	if !app.Element.IsValid() {
		return nil, fmt.Errorf("add window to %q: %w", app.Name, ax.ErrInvalidElement)
	}

	el := d.tree.NewEmittingWindow(app.Element)
	if name != "" {
		if err := el.SetAttribute(ax.AttrTitle, ax.StringValue(name)); err != nil {
			return nil, err
		}
	} else {
		name, _, _ = ax.StringAttribute(el, ax.AttrTitle)
	}
	if frame != nil {
		if err := el.SetAttribute(ax.AttrFrame, ax.RectValue(*frame)); err != nil {
			return nil, err
		}
	}

	w := &Window{Name: name, Element: el, App: app}
	d.mu.Lock()
	d.windows[app] = append(d.windows[app], w)
	d.mu.Unlock()

	// Registered before AXWindowCreated goes out so events can name it.
	if err := app.Element.AddWindow(el); err != nil {
		d.unregister(w)
		el.Invalidate()
		return nil, fmt.Errorf("add window %q to %q: %w", name, app.Name, err)
	}
	d.log.Debug().Str("window", w.Ref()).Int64("element", int64(el.ID())).Msg("window created")
	return w, nil
}

// DestroyWindow removes w from its application, emits AXUIElementDestroyed
// and invalidates it.
func (d *Desktop) DestroyWindow(w *Window) {
	d.unregister(w)
	w.Element.Destroy()
	w.Element.Invalidate()
	d.log.Debug().Str("window", w.Ref()).Msg("window destroyed")
}

func (d *Desktop) unregister(w *Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	wins := d.windows[w.App]
	kept := wins[:0]
	for _, o := range wins {
		if o != w {
			kept = append(kept, o)
		}
	}
	clear(wins[len(kept):])
	d.windows[w.App] = kept
}

// Apps returns the applications in launch order.
func (d *Desktop) Apps() []*App {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*App(nil), d.order...)
}

// App returns the application with the given name, case-insensitively.
func (d *Desktop) App(name string) (*App, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if a := d.findAppLocked(name); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("application %q: %w", name, ErrNotFound)
}

// AppByPID returns the application with the given pid.
func (d *Desktop) AppByPID(pid int32) (*App, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.order {
		if a.pid == pid {
			return a, nil
		}
	}
	return nil, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
}

func (d *Desktop) findAppLocked(name string) *App {
	for _, a := range d.order {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// Windows returns app's windows in creation order.
func (d *Desktop) Windows(app *App) []*Window {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Window(nil), d.windows[app]...)
}

// Window returns app's window with the given name, case-insensitively.
func (d *Desktop) Window(app *App, name string) (*Window, error) {
	for _, w := range d.Windows(app) {
		if strings.EqualFold(w.Name, name) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("window %q in %q: %w", name, app.Name, ErrNotFound)
}

// WindowByID returns the window with the given element ID.
func (d *Desktop) WindowByID(id ax.ElementID) (*Window, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.order {
		for _, w := range d.windows[a] {
			if w.Element.ID() == id {
				return w, nil
			}
		}
	}
	return nil, fmt.Errorf("window id %d: %w", id, ErrNotFound)
}

// Resolve returns the element named by ref: "App", "App/Window" or "#id"
// for a window element ID.
func (d *Desktop) Resolve(ref string) (ax.UIElement, error) {
	app, win, err := d.Lookup(ref)
	if err != nil {
		return nil, err
	}
	if win != nil {
		return win.Element, nil
	}
	return app.Element, nil
}

// ResolveWindow is Resolve restricted to windows.
func (d *Desktop) ResolveWindow(ref string) (*Window, error) {
	_, win, err := d.Lookup(ref)
	if err != nil {
		return nil, err
	}
	if win == nil {
		return nil, fmt.Errorf("%q is an application, not a window", ref)
	}
	return win, nil
}

// Lookup returns the application named by ref and, for window references,
// the window.
func (d *Desktop) Lookup(ref string) (*App, *Window, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil, errors.New("empty element reference")
	}
	if idStr, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid element reference %q: %w", ref, err)
		}
		w, err := d.WindowByID(ax.ElementID(id))
		if err != nil {
			return nil, nil, err
		}
		return w.App, w, nil
	}

	appName, winName, hasWindow := strings.Cut(ref, "/")
	app, err := d.App(appName)
	if err != nil {
		return nil, nil, err
	}
	if !hasWindow {
		return app, nil, nil
	}
	w, err := d.Window(app, winName)
	if err != nil {
		return nil, nil, err
	}
	return app, w, nil
}

// Describe names the element with the given ID for reports. Unknown IDs
// yield "#id".
func (d *Desktop) Describe(id ax.ElementID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.order {
		if a.Element.ID() == id {
			return a.Name
		}
		for _, w := range d.windows[a] {
			if w.Element.ID() == id {
				return w.Ref()
			}
		}
	}
	return "#" + strconv.FormatInt(int64(id), 10)
}

func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("name must not be empty")
	case strings.Contains(name, "/"):
		return fmt.Errorf("name %q must not contain '/'", name)
	case strings.HasPrefix(name, "#"):
		return fmt.Errorf("name %q must not start with '#'", name)
	}
	return nil
}
