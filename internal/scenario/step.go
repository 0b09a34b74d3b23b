package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/params"
)

// Step is one action: a single key naming the kind, mapped to its
// parameters. A parallel step maps to a list of steps instead.
//
//	- set: { element: App/Window 1, attribute: AXSize, value: [200, 200] }
//	- parallel:
//	    - focus: { app: App, window: Window 1 }
//	    - focus: { app: App, window: Window 2 }
type Step struct {
	Kind   string
	Params map[string]any
	Steps  []Step
}

// Step kinds.
const (
	KindSet          = "set"
	KindFocus        = "focus"
	KindMove         = "move"
	KindCreateWindow = "create_window"
	KindDestroy      = "destroy"
	KindInvalidate   = "invalidate"
	KindRevalidate   = "revalidate"
	KindLaunch       = "launch"
	KindTerminate    = "terminate"
	KindFrontmost    = "frontmost"
	KindSpace        = "space"
	KindSubscribe    = "subscribe"
	KindUnsubscribe  = "unsubscribe"
	KindSleep        = "sleep"
	KindParallel     = "parallel"
)

// stepParams lists the parameters each kind requires.
var stepParams = map[string][]string{
	KindSet:          {"element", "attribute", "value"},
	KindFocus:        nil,
	KindMove:         nil,
	KindCreateWindow: {"app"},
	KindDestroy:      {"element"},
	KindInvalidate:   {"element"},
	KindRevalidate:   {"element"},
	KindLaunch:       {"name"},
	KindTerminate:    {"app"},
	KindFrontmost:    nil,
	KindSpace:        {"id"},
	KindSubscribe:    {"observer", "element", "notifications"},
	KindUnsubscribe:  {"observer", "element", "notifications"},
	KindSleep:        {"ms"},
	KindParallel:     nil,
}

// StepKinds returns the supported step kinds, sorted.
func StepKinds() []string {
	kinds := make([]string, 0, len(stepParams))
	for k := range stepParams {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// UnmarshalYAML decodes the single-key step form.
func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: expected exactly one action key", n.Line)
	}
	s.Kind = n.Content[0].Value
	body := n.Content[1]
	if s.Kind == KindParallel {
		return body.Decode(&s.Steps)
	}
	if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
		s.Params = map[string]any{}
		return nil
	}
	if err := body.Decode(&s.Params); err != nil {
		return fmt.Errorf("line %d: %s parameters: %w", body.Line, s.Kind, err)
	}
	return nil
}

// MarshalYAML writes the single-key step form.
func (s Step) MarshalYAML() (any, error) {
	if s.Kind == KindParallel {
		return map[string][]Step{s.Kind: s.Steps}, nil
	}
	return map[string]map[string]any{s.Kind: s.Params}, nil
}

func (s Step) validate(observers map[string]bool) error {
	required, ok := stepParams[s.Kind]
	if !ok {
		return fmt.Errorf("unknown step type %q; supported: %s", s.Kind, strings.Join(StepKinds(), ", "))
	}
	for _, key := range required {
		if _, ok := s.Params[key]; !ok {
			return fmt.Errorf("%s: missing %q", s.Kind, key)
		}
	}

	switch s.Kind {
	case KindParallel:
		if len(s.Steps) == 0 {
			return errors.New("parallel: no steps")
		}
		for i, nested := range s.Steps {
			if err := nested.validate(observers); err != nil {
				return fmt.Errorf("parallel[%d]: %w", i, err)
			}
		}
	case KindSet:
		attr := params.String(s.Params, "attribute", "")
		if _, ok := ax.ParseAttribute(attr); !ok {
			return fmt.Errorf("set: unknown attribute %q", attr)
		}
	case KindFocus:
		if targetParam(s.Params).IsZero() {
			return errors.New("focus: specify app, window, window-id, or pid")
		}
	case KindMove:
		if targetParam(s.Params).IsZero() {
			return errors.New("move: specify app, window, window-id, or pid")
		}
		if !params.Has(s.Params, "x", "y") && !params.Has(s.Params, "width", "height") {
			return errors.New("move: specify x/y and/or width/height")
		}
	case KindFrontmost:
		if params.String(s.Params, "app", "") == "" && !params.Bool(s.Params, "clear", false) {
			return errors.New("frontmost: specify app, or clear: true")
		}
	case KindSubscribe, KindUnsubscribe:
		name := params.String(s.Params, "observer", "")
		if !observers[name] {
			return fmt.Errorf("%s: unknown observer %q", s.Kind, name)
		}
		if _, err := parseNotifications(params.Strings(s.Params, "notifications")); err != nil {
			return fmt.Errorf("%s: %w", s.Kind, err)
		}
	case KindSleep:
		if params.Int(s.Params, "ms", 0) <= 0 {
			return errors.New("sleep: ms must be > 0")
		}
	}
	return nil
}
