package fake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/platform"
)

// Provider implements the platform interfaces over a Desktop.
type Provider struct {
	desktop *Desktop
}

var (
	_ platform.Reader          = (*Provider)(nil)
	_ platform.WindowManager   = (*Provider)(nil)
	_ platform.WindowMover     = (*Provider)(nil)
	_ platform.AttributeWriter = (*Provider)(nil)
)

// NewProvider returns a provider over d.
func NewProvider(d *Desktop) *Provider {
	return &Provider{desktop: d}
}

// Platform bundles p as a platform.Provider.
func (p *Provider) Platform() *platform.Provider {
	return &platform.Provider{
		Reader:          p,
		WindowManager:   p,
		WindowMover:     p,
		AttributeWriter: p,
	}
}

// Register installs d as the backend returned by platform.NewProvider.
func Register(d *Desktop) {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return NewProvider(d).Platform(), nil
	}
}

var windowAttrs = []ax.Attribute{
	ax.AttrRole, ax.AttrSubrole, ax.AttrTitle, ax.AttrFrame,
	ax.AttrMain, ax.AttrMinimized, ax.AttrFullScreen,
}

// appState is a consistent read of the application attributes listings need.
type appState struct {
	focused   ax.UIElement
	frontmost bool
	hidden    bool
}

func readApp(a *App) (appState, error) {
	snap, err := a.Element.Attributes(ax.AttrFocusedWindow, ax.AttrFrontmost, ax.AttrHidden)
	if err != nil {
		return appState{}, err
	}
	var st appState
	if v, ok := snap[ax.AttrFocusedWindow]; ok {
		st.focused, _ = v.AsElement()
	}
	if v, ok := snap[ax.AttrFrontmost]; ok {
		st.frontmost, _ = v.AsBool()
	}
	if v, ok := snap[ax.AttrHidden]; ok {
		st.hidden, _ = v.AsBool()
	}
	return st, nil
}

func windowElement(w *Window, st appState) (model.Element, error) {
	snap, err := w.Element.Attributes(windowAttrs...)
	if err != nil {
		return model.Element{}, err
	}
	el := model.Element{
		ID:      int(w.Element.ID()),
		Role:    model.MapRole(stringOf(snap[ax.AttrRole])),
		Subrole: stringOf(snap[ax.AttrSubrole]),
		Title:   stringOf(snap[ax.AttrTitle]),
		PID:     int(w.App.PID()),
		Focused: st.frontmost && ax.SameElement(st.focused, w.Element),
	}
	if r, err := snap[ax.AttrFrame].AsRect(); err == nil {
		el.Bounds = r.Bounds()
	}
	el.Main = boolOf(snap[ax.AttrMain])
	el.Minimized = boolOf(snap[ax.AttrMinimized])
	el.FullScreen = boolOf(snap[ax.AttrFullScreen])
	return el, nil
}

func stringOf(v ax.Value) string {
	s, _ := v.AsString()
	return s
}

func boolOf(v ax.Value) bool {
	b, _ := v.AsBool()
	return b
}

// ListWindows lists the valid windows of the valid applications matching
// opts, in launch and creation order.
func (p *Provider) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	var out []model.Window
	for _, a := range p.matchingApps(opts) {
		st, err := readApp(a)
		if err != nil {
			continue
		}
		for _, w := range p.desktop.Windows(a) {
			el, err := windowElement(w, st)
			if err != nil {
				continue
			}
			out = append(out, model.Window{
				App:       a.Name,
				PID:       el.PID,
				Title:     el.Title,
				ID:        el.ID,
				Bounds:    el.Bounds,
				Focused:   el.Focused,
				Main:      el.Main,
				Minimized: el.Minimized,
			})
		}
	}
	return out, nil
}

// ListApps summarizes the valid applications matching opts.
func (p *Provider) ListApps(opts platform.ListOptions) ([]model.App, error) {
	var out []model.App
	for _, a := range p.matchingApps(opts) {
		st, err := readApp(a)
		if err != nil {
			continue
		}
		n := 0
		for _, w := range p.desktop.Windows(a) {
			if w.Element.IsValid() {
				n++
			}
		}
		out = append(out, model.App{
			Name:      a.Name,
			PID:       int(a.PID()),
			Windows:   n,
			Frontmost: st.frontmost,
			Hidden:    st.hidden,
		})
	}
	return out, nil
}

func (p *Provider) matchingApps(opts platform.ListOptions) []*App {
	var out []*App
	for _, a := range p.desktop.Apps() {
		if opts.App != "" && !strings.EqualFold(a.Name, opts.App) {
			continue
		}
		if opts.PID != 0 && int(a.PID()) != opts.PID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ReadElements returns the element tree of the target: one window, one
// application with its windows, or every application when the target is
// empty.
func (p *Provider) ReadElements(opts platform.ReadOptions) ([]model.Element, error) {
	if opts.Target.IsZero() {
		var out []model.Element
		for _, a := range p.desktop.Apps() {
			el, err := p.appElement(a, opts.Depth)
			if err != nil {
				continue
			}
			out = append(out, el)
		}
		return out, nil
	}

	app, win, err := p.resolveTarget(opts.Target)
	if err != nil {
		return nil, err
	}
	if win != nil {
		st, err := readApp(app)
		if err != nil {
			return nil, err
		}
		el, err := windowElement(win, st)
		if err != nil {
			return nil, err
		}
		return []model.Element{el}, nil
	}
	el, err := p.appElement(app, opts.Depth)
	if err != nil {
		return nil, err
	}
	return []model.Element{el}, nil
}

func (p *Provider) appElement(a *App, depth int) (model.Element, error) {
	st, err := readApp(a)
	if err != nil {
		return model.Element{}, err
	}
	el := model.Element{
		ID:     int(a.Element.ID()),
		Role:   model.MapRole("AXApplication"),
		Title:  a.Name,
		PID:    int(a.PID()),
		Hidden: st.hidden,
	}
	if depth == 1 {
		return el, nil
	}
	for _, w := range p.desktop.Windows(a) {
		child, err := windowElement(w, st)
		if err != nil {
			continue
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}

// FocusWindow makes the target window its application's main window, then
// makes the application frontmost on the main queue.
func (p *Provider) FocusWindow(opts platform.FocusOptions) error {
	app, win, err := p.resolveTarget(opts.Target)
	if err != nil {
		return err
	}
	if win != nil {
		if !win.Element.IsValid() {
			return fmt.Errorf("failed to raise window %q: %w", win.Ref(), ax.ErrInvalidElement)
		}
		if err := app.Element.SetAttribute(ax.AttrMainWindow, ax.ElementValue(win.Element)); err != nil {
			return fmt.Errorf("failed to raise window %q: %w", win.Ref(), err)
		}
	}
	if err := p.desktop.apps.MakeApplicationFrontmost(app.PID()); err != nil {
		return fmt.Errorf("failed to activate app %q: %w", app.Name, err)
	}
	return nil
}

// GetFrontmostApp returns the frontmost application's name and pid.
func (p *Provider) GetFrontmostApp() (string, int, error) {
	pid, ok := p.desktop.apps.FrontmostApplicationPID()
	if !ok {
		return "", 0, errors.New("no frontmost application")
	}
	app, err := p.desktop.AppByPID(pid)
	if err != nil {
		return "", int(pid), nil
	}
	return app.Name, int(pid), nil
}

// MoveWindow sets the target window's position and/or size. When both are
// given a single AXFrame write emits Moved then Resized. Without a window
// in the target, the application's main window moves.
func (p *Provider) MoveWindow(opts platform.MoveOptions) error {
	if !opts.SetPosition && !opts.SetSize {
		return errors.New("nothing to change: specify a position and/or a size")
	}
	app, win, err := p.resolveTarget(opts.Target)
	if err != nil {
		return err
	}
	if win == nil {
		if win, err = p.mainWindow(app); err != nil {
			return err
		}
	}

	el := win.Element
	switch {
	case opts.SetPosition && opts.SetSize:
		err = el.SetAttribute(ax.AttrFrame, ax.RectValue(ax.R(
			float64(opts.X), float64(opts.Y), float64(opts.Width), float64(opts.Height))))
	case opts.SetPosition:
		err = el.SetAttribute(ax.AttrPosition, ax.PointValue(ax.Point{X: float64(opts.X), Y: float64(opts.Y)}))
	default:
		err = el.SetAttribute(ax.AttrSize, ax.SizeValue(ax.Size{Width: float64(opts.Width), Height: float64(opts.Height)}))
	}
	if err != nil {
		return fmt.Errorf("failed to move window %q: %w", win.Ref(), err)
	}
	return nil
}

func (p *Provider) mainWindow(app *App) (*Window, error) {
	main, ok, err := ax.ElementAttribute(app.Element, ax.AttrMainWindow)
	if err != nil {
		return nil, err
	}
	if ok {
		if w, err := p.desktop.WindowByID(main.ID()); err == nil {
			return w, nil
		}
	}
	for _, w := range p.desktop.Windows(app) {
		if w.Element.IsValid() {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no windows found for app %q", app.Name)
}

// SetAttribute writes one attribute of the referenced element.
func (p *Provider) SetAttribute(opts platform.SetAttributeOptions) error {
	attr, ok := ax.ParseAttribute(opts.Attribute)
	if !ok {
		return fmt.Errorf("unknown attribute %q", opts.Attribute)
	}
	el, err := p.desktop.Resolve(opts.Element)
	if err != nil {
		return err
	}
	v, err := p.desktop.ParseValue(attr, opts.Value)
	if err != nil {
		return err
	}
	return el.SetAttribute(attr, v)
}

// resolveTarget finds the application and, if the target names one, the
// window it selects.
func (p *Provider) resolveTarget(t platform.Target) (*App, *Window, error) {
	if t.IsZero() {
		return nil, nil, errors.New("could not resolve target: specify --app, --pid, --window, or --window-id")
	}
	apps := p.matchingApps(platform.ListOptions{App: t.App, PID: t.PID})
	if len(apps) == 0 {
		switch {
		case t.App != "":
			return nil, nil, fmt.Errorf("no app found matching %q: %w", t.App, ErrNotFound)
		case t.PID != 0:
			return nil, nil, fmt.Errorf("no app found with PID %d: %w", t.PID, ErrNotFound)
		}
	}

	switch {
	case t.WindowID > 0:
		for _, a := range apps {
			for _, w := range p.desktop.Windows(a) {
				if int(w.Element.ID()) == t.WindowID {
					return a, w, nil
				}
			}
		}
		return nil, nil, fmt.Errorf("no window found with ID %d: %w", t.WindowID, ErrNotFound)
	case t.Window != "":
		needle := strings.ToLower(t.Window)
		for _, a := range apps {
			for _, w := range p.desktop.Windows(a) {
				title, _, err := ax.StringAttribute(w.Element, ax.AttrTitle)
				if err != nil {
					continue
				}
				if strings.Contains(strings.ToLower(title), needle) {
					return a, w, nil
				}
			}
		}
		return nil, nil, fmt.Errorf("no window found matching title %q: %w", t.Window, ErrNotFound)
	default:
		return apps[0], nil, nil
	}
}
