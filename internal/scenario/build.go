package scenario

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/platform/fake"
)

// Env is a built scenario: the seeded desktop, its named observers and the
// events they have received.
type Env struct {
	Desktop  *fake.Desktop
	Provider *fake.Provider

	log       zerolog.Logger
	observers map[string]*ax.Observer
	names     []string

	mu     sync.Mutex
	seq    int
	events []model.Event
	sinks  []func(model.Event)
}

// BuildOption configures Build.
type BuildOption func(*Env)

// WithLogger sets the logger for build and run events.
func WithLogger(l zerolog.Logger) BuildOption {
	return func(e *Env) { e.log = l.With().Str("component", "scenario").Logger() }
}

// Build seeds tree with the scenario's applications, windows and observers.
// Seeding happens before observers subscribe, so it records no events.
func Build(tree *ax.Tree, sc *Scenario, opts ...BuildOption) (*Env, error) {
	env := &Env{
		log:       zerolog.Nop(),
		observers: make(map[string]*ax.Observer),
	}
	for _, opt := range opts {
		opt(env)
	}
	if sc.MessagingTimeout > 0 {
		tree.SetMessagingTimeout(sc.MessagingTimeout)
	}
	env.Desktop = fake.NewDesktop(tree, fake.WithLogger(env.log))
	env.Provider = fake.NewProvider(env.Desktop)

	var front *fake.App
	for _, spec := range sc.Applications {
		app, err := env.seedApp(spec)
		if err != nil {
			return nil, err
		}
		if spec.Frontmost {
			front = app
		}
	}
	if front != nil {
		env.Desktop.Registry().SetFrontmost(front.PID())
	}

	for _, spec := range sc.Observers {
		if err := env.addObserver(spec); err != nil {
			return nil, err
		}
	}
	env.log.Debug().
		Int("applications", len(sc.Applications)).
		Int("observers", len(sc.Observers)).
		Msg("scenario built")
	return env, nil
}

func (e *Env) seedApp(spec AppSpec) (*fake.App, error) {
	app, err := e.Desktop.AddApplication(spec.Name, spec.PID)
	if err != nil {
		return nil, fmt.Errorf("seed application: %w", err)
	}
	if spec.Hidden {
		if err := app.Element.SetAttribute(ax.AttrHidden, ax.BoolValue(true)); err != nil {
			return nil, err
		}
	}
	for _, ws := range spec.Windows {
		var frame *ax.Rect
		if ws.Frame != nil {
			r := ax.R(ws.Frame[0], ws.Frame[1], ws.Frame[2], ws.Frame[3])
			frame = &r
		}
		w, err := e.Desktop.AddWindow(app, ws.ref(), frame)
		if err != nil {
			return nil, fmt.Errorf("seed window: %w", err)
		}
		if ws.Title != "" && ws.Title != ws.ref() {
			if err := w.Element.SetAttribute(ax.AttrTitle, ax.StringValue(ws.Title)); err != nil {
				return nil, err
			}
		}
		if ws.Minimized {
			if err := w.Element.SetAttribute(ax.AttrMinimized, ax.BoolValue(true)); err != nil {
				return nil, err
			}
		}
		if ws.Main {
			if err := app.Element.SetAttribute(ax.AttrMainWindow, ax.ElementValue(w.Element)); err != nil {
				return nil, err
			}
		}
	}
	return app, nil
}

func (e *Env) addObserver(spec ObserverSpec) error {
	name := spec.Name
	o, err := e.Desktop.Tree().NewObserver(spec.PID, func(_ *ax.Observer, el ax.UIElement, n ax.Notification) {
		e.record(e.Desktop.Event(name, el, n))
	})
	if err != nil {
		return err
	}
	e.observers[name] = o
	e.names = append(e.names, name)
	for _, w := range spec.Watch {
		if err := e.Subscribe(name, w.Element, w.Notifications...); err != nil {
			return err
		}
	}
	return nil
}

// Observer returns the observer with the given name.
func (e *Env) Observer(name string) (*ax.Observer, bool) {
	o, ok := e.observers[name]
	return o, ok
}

// ObserverNames returns observer names in declaration order.
func (e *Env) ObserverNames() []string {
	return append([]string(nil), e.names...)
}

// Subscribe adds the named notifications on the element ref to observer.
func (e *Env) Subscribe(observer, ref string, notifications ...string) error {
	return e.subscription(observer, ref, notifications, (*ax.Observer).AddNotification)
}

// Unsubscribe removes the named notifications on the element ref from
// observer.
func (e *Env) Unsubscribe(observer, ref string, notifications ...string) error {
	return e.subscription(observer, ref, notifications, (*ax.Observer).RemoveNotification)
}

func (e *Env) subscription(observer, ref string, names []string, apply func(*ax.Observer, ax.Notification, ax.UIElement) error) error {
	o, ok := e.observers[observer]
	if !ok {
		return fmt.Errorf("unknown observer %q", observer)
	}
	el, err := e.Desktop.Resolve(ref)
	if err != nil {
		return err
	}
	kinds, err := parseNotifications(names)
	if err != nil {
		return err
	}
	for _, n := range kinds {
		if err := apply(o, n, el); err != nil {
			return fmt.Errorf("%s %s on %s: %w", observer, n, ref, err)
		}
	}
	return nil
}

// OnEvent registers fn to receive every event as it is recorded. fn runs on
// the tree's main queue.
func (e *Env) OnEvent(fn func(model.Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, fn)
}

func (e *Env) record(ev model.Event) {
	e.mu.Lock()
	e.seq++
	ev.Seq = e.seq
	e.events = append(e.events, ev)
	sinks := append([]func(model.Event){}, e.sinks...)
	e.mu.Unlock()

	e.log.Debug().
		Str("observer", ev.Observer).
		Str("notification", ev.Notification).
		Str("element", ev.Ref).
		Msg("event recorded")
	for _, fn := range sinks {
		fn(ev)
	}
}

// Events returns the recorded events with Seq greater than after.
func (e *Env) Events(after int) []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, _ := slices.BinarySearchFunc(e.events, after+1, func(ev model.Event, seq int) int {
		return ev.Seq - seq
	})
	return append([]model.Event(nil), e.events[i:]...)
}

// LastSeq returns the Seq of the newest event, or 0.
func (e *Env) LastSeq() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
