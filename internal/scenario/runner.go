package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/params"
	"github.com/mj1618/axsim/internal/platform"
	"github.com/mj1618/axsim/internal/platform/fake"
)

// Report is the result of running a scenario's steps.
type Report struct {
	OK        bool          `yaml:"ok"              json:"ok"`
	Action    string        `yaml:"action"          json:"action"`
	Steps     int           `yaml:"steps"           json:"steps"`
	Completed int           `yaml:"completed"       json:"completed"`
	Error     string        `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult  `yaml:"results"         json:"results"`
	Events    []model.Event `yaml:"events"          json:"events"`
}

// StepResult is the output for a single step.
type StepResult struct {
	Step    int              `yaml:"step"              json:"step"`
	OK      bool             `yaml:"ok"                json:"ok"`
	Action  string           `yaml:"action"            json:"action"`
	Error   string           `yaml:"error,omitempty"   json:"error,omitempty"`
	Events  []model.Event    `yaml:"events,omitempty"  json:"events,omitempty"`
	Changes []model.UIChange `yaml:"changes,omitempty" json:"changes,omitempty"`
	Elapsed string           `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

// Runner executes steps against a built Env.
type Runner struct {
	env         *Env
	steps       []Step
	stopOnError bool
	diff        bool
	onStep      func(StepResult)
	log         zerolog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDiff records, per step, the element tree changes the step caused.
func WithDiff(on bool) RunnerOption {
	return func(r *Runner) { r.diff = on }
}

// WithStopOnError overrides the scenario's stop_on_error setting.
func WithStopOnError(on bool) RunnerOption {
	return func(r *Runner) { r.stopOnError = on }
}

// WithStepHook calls fn with each step's result as soon as the step ends.
func WithStepHook(fn func(StepResult)) RunnerOption {
	return func(r *Runner) { r.onStep = fn }
}

// WithRunLogger sets the runner's logger.
func WithRunLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l.With().Str("component", "runner").Logger() }
}

// NewRunner returns a runner for the scenario's steps on env.
func NewRunner(env *Env, sc *Scenario, opts ...RunnerOption) *Runner {
	r := &Runner{
		env:         env,
		steps:       sc.Steps,
		stopOnError: sc.StopsOnError(),
		log:         env.log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order. A step error is reported in its
// StepResult; Run itself fails only when ctx ends.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		OK:      true,
		Action:  "run",
		Steps:   len(r.steps),
		Results: make([]StepResult, 0, len(r.steps)),
	}
	startSeq := r.env.LastSeq()

	for i, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := r.runStep(ctx, i+1, step)
		report.Results = append(report.Results, result)
		if r.onStep != nil {
			r.onStep(result)
		}
		if result.OK {
			report.Completed++
			continue
		}
		report.OK = false
		if report.Error == "" {
			report.Error = fmt.Sprintf("step %d: %s", result.Step, result.Error)
		}
		if r.stopOnError {
			break
		}
	}

	report.Events = r.env.Events(startSeq)
	if report.Events == nil {
		report.Events = []model.Event{}
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, n int, step Step) StepResult {
	result := StepResult{Step: n, Action: step.Kind}
	seq := r.env.LastSeq()

	var before []model.FlatElement
	if r.diff {
		before = r.snapshot()
	}

	start := time.Now()
	err := r.execute(ctx, step)
	result.Elapsed = time.Since(start).Round(time.Microsecond).String()
	if err != nil {
		result.Error = err.Error()
		r.log.Debug().Int("step", n).Str("action", step.Kind).Err(err).Msg("step failed")
	} else {
		result.OK = true
	}
	result.Events = r.env.Events(seq)
	if r.diff {
		result.Changes = model.DiffElements(before, r.snapshot())
	}
	return result
}

func (r *Runner) snapshot() []model.FlatElement {
	elements, err := r.env.Provider.ReadElements(platform.ReadOptions{})
	if err != nil {
		return nil
	}
	return model.FlattenElements(elements)
}

func (r *Runner) execute(ctx context.Context, step Step) error {
	d := r.env.Desktop
	p := r.env.Provider
	args := step.Params

	switch step.Kind {
	case KindSet:
		return p.SetAttribute(platform.SetAttributeOptions{
			Element:   params.String(args, "element", ""),
			Attribute: params.String(args, "attribute", ""),
			Value:     args["value"],
		})
	case KindFocus:
		return p.FocusWindow(platform.FocusOptions{Target: targetParam(args)})
	case KindMove:
		return p.MoveWindow(moveParams(args))
	case KindCreateWindow:
		return r.createWindow(args)
	case KindDestroy:
		w, err := d.ResolveWindow(params.String(args, "element", ""))
		if err != nil {
			return err
		}
		d.DestroyWindow(w)
		return nil
	case KindInvalidate, KindRevalidate:
		el, err := lookupElement(d, params.String(args, "element", ""))
		if err != nil {
			return err
		}
		if step.Kind == KindInvalidate {
			el.Invalidate()
		} else {
			el.Revalidate()
		}
		return nil
	case KindLaunch:
		pid, err := params.PID(args, "pid")
		if err != nil {
			return err
		}
		_, err = d.AddApplication(params.String(args, "name", ""), pid)
		return err
	case KindTerminate:
		app, err := d.App(params.String(args, "app", ""))
		if err != nil {
			return err
		}
		d.RemoveApplication(app)
		return nil
	case KindFrontmost:
		if params.Bool(args, "clear", false) {
			d.Registry().ClearFrontmost()
			return nil
		}
		app, err := d.App(params.String(args, "app", ""))
		if err != nil {
			return err
		}
		return d.Registry().MakeApplicationFrontmost(app.PID())
	case KindSpace:
		d.Registry().ChangeSpace(params.Int(args, "id", 0))
		return nil
	case KindSubscribe:
		return r.env.Subscribe(params.String(args, "observer", ""), params.String(args, "element", ""),
			params.Strings(args, "notifications")...)
	case KindUnsubscribe:
		return r.env.Unsubscribe(params.String(args, "observer", ""), params.String(args, "element", ""),
			params.Strings(args, "notifications")...)
	case KindSleep:
		t := time.NewTimer(time.Duration(params.Int(args, "ms", 0)) * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case KindParallel:
		g, gctx := errgroup.WithContext(ctx)
		for _, nested := range step.Steps {
			g.Go(func() error {
				if err := r.execute(gctx, nested); err != nil {
					return fmt.Errorf("%s: %w", nested.Kind, err)
				}
				return nil
			})
		}
		return g.Wait()
	default:
		return fmt.Errorf("unknown step type %q", step.Kind)
	}
}

func (r *Runner) createWindow(args map[string]any) error {
	d := r.env.Desktop
	app, err := d.App(params.String(args, "app", ""))
	if err != nil {
		return err
	}
	var frame *ax.Rect
	if raw, ok := args["frame"]; ok {
		v, err := d.ParseValue(ax.AttrFrame, raw)
		if err != nil {
			return err
		}
		rect, _ := v.AsRect()
		frame = &rect
	}
	name := params.String(args, "name", params.String(args, "title", ""))
	_, err = d.AddWindow(app, name, frame)
	return err
}

// invalidatable is the part of an element that can be invalidated.
type invalidatable interface {
	Invalidate()
	Revalidate()
}

func lookupElement(d *fake.Desktop, ref string) (invalidatable, error) {
	app, win, err := d.Lookup(ref)
	if err != nil {
		return nil, err
	}
	if win != nil {
		return win.Element, nil
	}
	return app.Element, nil
}

func targetParam(args map[string]any) platform.Target {
	return platform.Target{
		App:      params.String(args, "app", ""),
		Window:   params.String(args, "window", ""),
		WindowID: params.Int(args, "window-id", 0),
		PID:      params.Int(args, "pid", 0),
	}
}

func moveParams(args map[string]any) platform.MoveOptions {
	return platform.MoveOptions{
		Target:      targetParam(args),
		X:           params.Int(args, "x", 0),
		Y:           params.Int(args, "y", 0),
		Width:       params.Int(args, "width", 0),
		Height:      params.Int(args, "height", 0),
		SetPosition: params.Has(args, "x", "y"),
		SetSize:     params.Has(args, "width", "height"),
	}
}
