package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
)

func build(t *testing.T, doc string) (*Env, *Scenario) {
	t.Helper()
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)
	tree := ax.NewTree()
	t.Cleanup(tree.Close)
	env, err := Build(tree, sc)
	require.NoError(t, err)
	return env, sc
}

func run(t *testing.T, doc string, opts ...RunnerOption) (*Env, *Report) {
	t.Helper()
	env, sc := build(t, doc)
	report, err := NewRunner(env, sc, opts...).Run(context.Background())
	require.NoError(t, err)
	return env, report
}

type note struct {
	ref  string
	kind string
}

func notes(events []model.Event) []note {
	out := make([]note, 0, len(events))
	for _, ev := range events {
		out = append(out, note{ev.Ref, ev.Notification})
	}
	return out
}

func TestBuild_SeedsDesktop(t *testing.T) {
	env, _ := build(t, `
applications:
  - name: App
    pid: 100
    frontmost: true
    windows:
      - name: main
        title: Inbox
        frame: [10, 20, 300, 200]
        main: true
      - title: Drafts
        minimized: true
  - name: Hidden
    hidden: true
`)
	d := env.Desktop
	app, err := d.App("App")
	require.NoError(t, err)
	assert.Equal(t, int32(100), app.PID())

	pid, ok := d.Registry().FrontmostApplicationPID()
	require.True(t, ok)
	assert.Equal(t, int32(100), pid)

	w, err := d.Window(app, "main")
	require.NoError(t, err)
	title, _, _ := ax.StringAttribute(w.Element, ax.AttrTitle)
	assert.Equal(t, "Inbox", title)
	frame, _, _ := ax.RectAttribute(w.Element, ax.AttrFrame)
	assert.Equal(t, ax.R(10, 20, 300, 200), frame)
	mw, _, _ := ax.ElementAttribute(app.Element, ax.AttrMainWindow)
	assert.True(t, ax.SameElement(w.Element, mw))

	drafts, err := d.Window(app, "Drafts")
	require.NoError(t, err)
	minimized, _, _ := ax.BoolAttribute(drafts.Element, ax.AttrMinimized)
	assert.True(t, minimized)

	hidden, err := d.App("Hidden")
	require.NoError(t, err)
	h, _, _ := ax.BoolAttribute(hidden.Element, ax.AttrHidden)
	assert.True(t, h)
	assert.NotEqual(t, int32(100), hidden.PID())

	assert.Zero(t, env.LastSeq())
}

func TestRun_MainWindowThenResize(t *testing.T) {
	env, report := run(t, `
applications:
  - name: App
    pid: 100
    windows:
      - title: Window 1
observers:
  - name: O
    pid: 100
    watch:
      - element: App
        notifications: [AXMainWindowChanged]
      - element: App/Window 1
        notifications: [AXResized]
steps:
  - set: { element: App, attribute: AXMainWindow, value: App/Window 1 }
  - set: { element: App/Window 1, attribute: AXSize, value: [200, 200] }
`)
	require.True(t, report.OK, report.Error)
	assert.Equal(t, 2, report.Completed)

	assert.Equal(t, []note{{"App", "AXMainWindowChanged"}}, notes(report.Results[0].Events))
	assert.Equal(t, []note{{"App/Window 1", "AXResized"}}, notes(report.Results[1].Events))
	require.Len(t, report.Events, 2)
	assert.Equal(t, 1, report.Events[0].Seq)
	assert.Equal(t, "O", report.Events[0].Observer)
	assert.Equal(t, "app", report.Events[0].Role)
	assert.Equal(t, "window", report.Events[1].Role)
	assert.Equal(t, "Window 1", report.Events[1].Title)
	assert.Equal(t, 100, report.Events[1].PID)

	app, _ := env.Desktop.App("App")
	w, _ := env.Desktop.Window(app, "Window 1")
	frame, _, _ := ax.RectAttribute(w.Element, ax.AttrFrame)
	assert.Equal(t, ax.R(0, 0, 200, 200), frame)
}

func TestRun_Demo(t *testing.T) {
	tree := ax.NewTree()
	t.Cleanup(tree.Close)
	sc := Demo()
	env, err := Build(tree, sc)
	require.NoError(t, err)

	var streamed []model.Event
	env.OnEvent(func(ev model.Event) { streamed = append(streamed, ev) })

	report, err := NewRunner(env, sc).Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.OK, report.Error)

	assert.Equal(t, []note{
		{"App", "AXMainWindowChanged"},
		{"App", "AXFocusedWindowChanged"},
		{"App/Window 1", "AXResized"},
		{"App/Window 1", "AXMoved"},
		{"App", "AXMainWindowChanged"},
		{"App", "AXFocusedWindowChanged"},
	}, notes(report.Events))
	assert.Equal(t, report.Events, streamed)
}

func TestRun_StopOnError(t *testing.T) {
	doc := `
applications:
  - name: App
    windows: [{title: W}]
steps:
  - set: { element: App/W, attribute: AXTitle, value: X }
  - set: { element: App/Missing, attribute: AXTitle, value: Y }
  - set: { element: App/W, attribute: AXMinimized, value: true }
`
	_, report := run(t, doc)
	assert.False(t, report.OK)
	assert.Equal(t, 3, report.Steps)
	assert.Equal(t, 1, report.Completed)
	require.Len(t, report.Results, 2)
	assert.Contains(t, report.Error, "step 2:")

	_, report = run(t, doc, WithStopOnError(false))
	assert.False(t, report.OK)
	assert.Equal(t, 2, report.Completed)
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[2].OK)
}

func TestRun_InvalidElementSteps(t *testing.T) {
	_, report := run(t, `
stop_on_error: false
applications:
  - name: App
    windows: [{title: W}]
steps:
  - invalidate: { element: App/W }
  - set: { element: App/W, attribute: AXTitle, value: X }
  - revalidate: { element: App/W }
  - set: { element: App/W, attribute: AXTitle, value: X }
`)
	require.Len(t, report.Results, 4)
	assert.True(t, report.Results[0].OK)
	assert.False(t, report.Results[1].OK)
	assert.Contains(t, report.Results[1].Error, ax.ErrInvalidElement.Error())
	assert.True(t, report.Results[3].OK)
}

func TestRun_WindowLifecycle(t *testing.T) {
	env, report := run(t, `
applications:
  - name: App
    pid: 100
observers:
  - name: O
    pid: 100
    watch:
      - element: App
        notifications: [AXWindowCreated]
steps:
  - create_window: { app: App, name: Editor, frame: [0, 0, 640, 480] }
  - subscribe: { observer: O, element: App/Editor, notifications: AXUIElementDestroyed }
  - destroy: { element: App/Editor }
`)
	require.True(t, report.OK, report.Error)
	assert.Equal(t, []note{
		{"App/Editor", "AXWindowCreated"},
		{"#2", "AXUIElementDestroyed"},
	}, notes(report.Events))

	app, _ := env.Desktop.App("App")
	assert.Empty(t, env.Desktop.Windows(app))
	wins, err := app.Element.Windows()
	require.NoError(t, err)
	assert.Empty(t, wins)
}

func TestRun_Unsubscribe(t *testing.T) {
	_, report := run(t, `
applications:
  - name: App
    pid: 7
    windows: [{title: W}]
observers:
  - name: O
    pid: 7
    watch:
      - element: App/W
        notifications: [AXMoved]
steps:
  - move: { app: App, x: 5, y: 5 }
  - unsubscribe: { observer: O, element: App/W, notifications: [AXMoved] }
  - move: { app: App, x: 9, y: 9 }
`)
	require.True(t, report.OK, report.Error)
	assert.Len(t, report.Results[0].Events, 1)
	assert.Empty(t, report.Results[2].Events)
}

func TestRun_ApplicationLifecycle(t *testing.T) {
	env, sc := build(t, `
applications:
  - name: App
    pid: 100
steps:
  - launch: { name: Mail, pid: 300 }
  - frontmost: { app: Mail }
  - space: { id: 3 }
  - terminate: { app: Mail }
`)
	var launched, terminated []int32
	var spaces []int
	reg := env.Desktop.Registry()
	reg.OnApplicationLaunched(func(pid int32) { launched = append(launched, pid) })
	reg.OnApplicationTerminated(func(pid int32) { terminated = append(terminated, pid) })
	reg.OnSpaceChanged(func(id int) { spaces = append(spaces, id) })

	report, err := NewRunner(env, sc).Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.OK, report.Error)

	assert.Equal(t, []int32{300}, launched)
	assert.Equal(t, []int32{300}, terminated)
	assert.Equal(t, []int{3}, spaces)
	_, ok := reg.FrontmostApplicationPID()
	assert.False(t, ok)
	_, err = env.Desktop.App("Mail")
	require.Error(t, err)
}

func TestRun_LaunchRejectsOutOfRangePID(t *testing.T) {
	env, report := run(t, `
applications:
  - name: App
    pid: 100
steps:
  - launch: { name: Mail, pid: 4294967396 }
`)
	assert.False(t, report.OK)
	assert.Contains(t, report.Error, "not a valid pid")
	_, err := env.Desktop.App("Mail")
	require.Error(t, err)
}

func TestRun_Parallel(t *testing.T) {
	env, report := run(t, `
applications:
  - name: App
    pid: 100
    windows: [{title: A}, {title: B}, {title: C}]
observers:
  - name: O
    pid: 100
    watch:
      - element: App
        notifications: [AXMainWindowChanged]
steps:
  - parallel:
      - focus: { app: App, window: A }
      - focus: { app: App, window: B }
      - focus: { app: App, window: C }
`)
	require.True(t, report.OK, report.Error)
	assert.Len(t, report.Events, 3)

	app, _ := env.Desktop.App("App")
	mains := 0
	for _, w := range env.Desktop.Windows(app) {
		if m, _, _ := ax.BoolAttribute(w.Element, ax.AttrMain); m {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
}

func TestRun_Diff(t *testing.T) {
	_, report := run(t, `
applications:
  - name: App
    windows: [{title: W, frame: [0, 0, 100, 100]}]
steps:
  - move: { app: App, window: W, width: 300, height: 200 }
  - create_window: { app: App, title: New }
`, WithDiff(true))
	require.True(t, report.OK, report.Error)

	changes := report.Results[0].Changes
	require.Len(t, changes, 1)
	assert.Equal(t, model.ChangeChanged, changes[0].Type)
	assert.Contains(t, changes[0].Changes, "b")

	added := report.Results[1].Changes
	require.NotEmpty(t, added)
	assert.Equal(t, model.ChangeAdded, added[0].Type)
}

func TestRun_ContextCancelled(t *testing.T) {
	env, sc := build(t, minimal)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(env, sc).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_StepHook(t *testing.T) {
	var seen []int
	_, report := run(t, string(DemoSource()), WithStepHook(func(r StepResult) {
		seen = append(seen, r.Step)
	}))
	require.True(t, report.OK, report.Error)
	assert.Equal(t, []int{1, 2, 3, 4}, seen)
}
