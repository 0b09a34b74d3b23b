// Package scenario loads YAML descriptions of a simulated desktop, builds
// them on an ax.Tree and runs their steps while recording every delivered
// notification.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/axsim/internal/ax"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is a parsed scenario document.
type Scenario struct {
	MessagingTimeout time.Duration  `yaml:"messaging_timeout"`
	StopOnError      *bool          `yaml:"stop_on_error"`
	Applications     []AppSpec      `yaml:"applications"`
	Observers        []ObserverSpec `yaml:"observers"`
	Steps            []Step         `yaml:"steps"`
}

// AppSpec seeds one application.
type AppSpec struct {
	Name      string       `yaml:"name"`
	PID       int32        `yaml:"pid"`
	Frontmost bool         `yaml:"frontmost"`
	Hidden    bool         `yaml:"hidden"`
	Windows   []WindowSpec `yaml:"windows"`
}

// WindowSpec seeds one window. Name defaults to Title and is what element
// references use.
type WindowSpec struct {
	Name      string    `yaml:"name"`
	Title     string    `yaml:"title"`
	Frame     []float64 `yaml:"frame"`
	Main      bool      `yaml:"main"`
	Minimized bool      `yaml:"minimized"`
}

// ref returns the name the window is addressed by.
func (w WindowSpec) ref() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Title
}

// ObserverSpec creates a named observer and its initial subscriptions.
type ObserverSpec struct {
	Name  string      `yaml:"name"`
	PID   int32       `yaml:"pid"`
	Watch []WatchSpec `yaml:"watch"`
}

// WatchSpec subscribes to notifications on one element reference.
type WatchSpec struct {
	Element       string   `yaml:"element"`
	Notifications []string `yaml:"notifications"`
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// StopsOnError reports whether a failing step ends the run. It defaults to
// true.
func (sc *Scenario) StopsOnError() bool {
	return sc.StopOnError == nil || *sc.StopOnError
}

// Validate checks names, references to seeded elements, notification names
// and the shape of every step.
func (sc *Scenario) Validate() error {
	if sc.MessagingTimeout < 0 {
		return invalidf("messaging_timeout must not be negative")
	}

	refs := make(map[string]bool)
	pids := make(map[int32]string)
	for i, app := range sc.Applications {
		if app.Name == "" {
			return invalidf("applications[%d]: name is required", i)
		}
		key := strings.ToLower(app.Name)
		if refs[key] {
			return invalidf("applications[%d]: duplicate application %q", i, app.Name)
		}
		refs[key] = true
		if app.PID < 0 {
			return invalidf("application %q: pid must not be negative", app.Name)
		}
		if other, ok := pids[app.PID]; ok && app.PID != 0 {
			return invalidf("application %q: pid %d already belongs to %q", app.Name, app.PID, other)
		}
		pids[app.PID] = app.Name

		mains := 0
		for j, w := range app.Windows {
			if w.ref() == "" {
				return invalidf("application %q: windows[%d] needs a name or title", app.Name, j)
			}
			wkey := key + "/" + strings.ToLower(w.ref())
			if refs[wkey] {
				return invalidf("application %q: duplicate window %q", app.Name, w.ref())
			}
			refs[wkey] = true
			if w.Frame != nil && len(w.Frame) != 4 {
				return invalidf("window %s/%s: frame needs 4 numbers, got %d", app.Name, w.ref(), len(w.Frame))
			}
			if w.Main {
				mains++
			}
		}
		if mains > 1 {
			return invalidf("application %q: more than one main window", app.Name)
		}
	}

	observers := make(map[string]bool)
	for i, o := range sc.Observers {
		if o.Name == "" {
			return invalidf("observers[%d]: name is required", i)
		}
		if observers[o.Name] {
			return invalidf("observers[%d]: duplicate observer %q", i, o.Name)
		}
		observers[o.Name] = true
		for _, w := range o.Watch {
			if !refs[strings.ToLower(w.Element)] {
				return invalidf("observer %q: unknown element %q", o.Name, w.Element)
			}
			if _, err := parseNotifications(w.Notifications); err != nil {
				return invalidf("observer %q: %v", o.Name, err)
			}
		}
	}

	for i, step := range sc.Steps {
		if err := step.validate(observers); err != nil {
			return invalidf("step %d: %v", i+1, err)
		}
	}
	return nil
}

func parseNotifications(names []string) ([]ax.Notification, error) {
	if len(names) == 0 {
		return nil, errors.New("no notifications listed")
	}
	out := make([]ax.Notification, 0, len(names))
	for _, name := range names {
		n, ok := ax.ParseNotification(name)
		if !ok {
			return nil, fmt.Errorf("unknown notification %q", name)
		}
		out = append(out, n)
	}
	return out, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ReplaceSteps returns a copy of sc whose steps are the YAML list in data.
// The steps are validated against sc's applications and observers.
func (sc *Scenario) ReplaceSteps(data []byte) (*Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: no steps provided", ErrInvalid)
	}
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: expected a YAML list of steps", ErrInvalid)
	}
	out := *sc
	out.Steps = steps
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
