package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/scenario"
)

func TestList(t *testing.T) {
	f := newFixture(t, 0)

	var windows []model.Window
	f.mustCall(t, "list", nil, &windows)
	require.Len(t, windows, 3)
	assert.Equal(t, "Window 1", windows[0].Title)
	assert.Equal(t, [4]int{50, 50, 300, 200}, windows[1].Bounds)

	f.mustCall(t, "list", map[string]any{"pid": float64(200)}, &windows)
	require.Len(t, windows, 1)
	assert.Equal(t, "Notes", windows[0].Title)

	var apps []model.App
	f.mustCall(t, "list", map[string]any{"apps": true}, &apps)
	require.Len(t, apps, 2)
	assert.Equal(t, "App", apps[0].Name)
	assert.Equal(t, 2, apps[0].Windows)
}

func TestRead(t *testing.T) {
	f := newFixture(t, 0)

	var tree output.ReadResult
	f.mustCall(t, "read", map[string]any{"app": "App"}, &tree)
	require.Len(t, tree.Elements, 1)
	assert.Equal(t, "app", tree.Elements[0].Role)
	require.Len(t, tree.Elements[0].Children, 2)
	assert.Equal(t, "Window 2", tree.Elements[0].Children[1].Title)

	var flat output.ReadFlatResult
	f.mustCall(t, "read", map[string]any{"flat": true}, &flat)
	assert.Len(t, flat.Elements, 5)

	f.mustCall(t, "read", map[string]any{"app": "App", "depth": float64(1)}, &tree)
	require.Len(t, tree.Elements, 1)
	assert.Empty(t, tree.Elements[0].Children)

	text, isErr := f.call(t, "read", map[string]any{"app": "Nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "no app found")
}

func TestFocusAndFrontmost(t *testing.T) {
	f := newFixture(t, 0)

	text, isErr := f.call(t, "frontmost", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "no frontmost")

	var result scenario.StepResult
	f.mustCall(t, "focus", map[string]any{"app": "App", "window": "Window 2"}, &result)
	assert.True(t, result.OK)
	assert.Equal(t, "focus", result.Action)

	var front model.App
	f.mustCall(t, "frontmost", nil, &front)
	assert.Equal(t, "App", front.Name)
	assert.Equal(t, 100, front.PID)

	var windows []model.Window
	f.mustCall(t, "list", map[string]any{"app": "App"}, &windows)
	require.Len(t, windows, 2)
	assert.False(t, windows[0].Focused)
	assert.True(t, windows[1].Focused)

	text, isErr = f.call(t, "focus", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "ok: false")
}

func TestMoveAndSetAttribute(t *testing.T) {
	f := newFixture(t, 0)

	f.mustCall(t, "move", map[string]any{"app": "App", "window": "Window 1", "x": float64(10), "y": float64(20)}, nil)
	f.mustCall(t, "set_attribute", map[string]any{
		"element": "App/Window 1", "attribute": "AXSize", "value": "200,200",
	}, nil)

	w, err := f.desktop.Window(f.app, "Window 1")
	require.NoError(t, err)
	frame, _, err := ax.RectAttribute(w.Element, ax.AttrFrame)
	require.NoError(t, err)
	assert.Equal(t, ax.R(10, 20, 200, 200), frame)

	f.mustCall(t, "set_attribute", map[string]any{
		"element": "App/Window 2", "attribute": "AXPosition", "value": []any{float64(1), float64(2)},
	}, nil)

	text, isErr := f.call(t, "set_attribute", map[string]any{
		"element": "App/Window 1", "attribute": "AXMinimized", "value": "sometimes",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, ax.ErrTypeMismatch.Error())

	_, isErr = f.call(t, "move", map[string]any{"app": "App"})
	assert.True(t, isErr)
}

func TestSubscribeEventsUnsubscribe(t *testing.T) {
	f := newFixture(t, 0)

	var sub subscribeResult
	f.mustCall(t, "subscribe", map[string]any{
		"element": "App", "notifications": []any{"AXMainWindowChanged"},
	}, &sub)
	_, err := uuid.Parse(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "App", sub.Element)
	assert.Equal(t, []string{"AXMainWindowChanged"}, sub.Notifications)

	f.mustCall(t, "focus", map[string]any{"app": "App", "window": "Window 1"}, nil)

	var got eventsResult
	f.mustCall(t, "events", map[string]any{"id": sub.ID}, &got)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "AXMainWindowChanged", got.Events[0].Notification)
	assert.Equal(t, "App", got.Events[0].Ref)
	assert.Equal(t, sub.ID, got.Events[0].Observer)
	assert.Equal(t, 1, got.Events[0].Seq)

	f.mustCall(t, "events", map[string]any{"id": sub.ID}, &got)
	assert.Empty(t, got.Events)

	// Extend the same subscription to a window.
	f.mustCall(t, "subscribe", map[string]any{
		"id": sub.ID, "element": "App/Window 1", "notifications": "moved",
	}, &sub)
	f.mustCall(t, "move", map[string]any{"app": "App", "window": "Window 1", "x": float64(5), "y": float64(5)}, nil)
	f.mustCall(t, "events", map[string]any{"id": sub.ID}, &got)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "AXMoved", got.Events[0].Notification)
	assert.Equal(t, "App/Window 1", got.Events[0].Ref)
	assert.Equal(t, 2, got.Events[0].Seq)

	f.mustCall(t, "unsubscribe", map[string]any{
		"id": sub.ID, "element": "App/Window 1", "notifications": []any{"AXMoved"},
	}, nil)
	f.mustCall(t, "move", map[string]any{"app": "App", "window": "Window 1", "x": float64(6), "y": float64(6)}, nil)
	f.mustCall(t, "events", map[string]any{"id": sub.ID}, &got)
	assert.Empty(t, got.Events)

	f.mustCall(t, "unsubscribe", map[string]any{"id": sub.ID}, &sub)
	assert.True(t, sub.Removed)
	assert.Zero(t, f.server.sessions.count())

	_, isErr := f.call(t, "events", map[string]any{"id": sub.ID})
	assert.True(t, isErr)
}

func TestSubscribeErrors(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no notifications", map[string]any{"element": "App"}, "notifications are required"},
		{"unknown notification", map[string]any{"element": "App", "notifications": "AXExploded"}, "unknown notification"},
		{"unknown element", map[string]any{"element": "Nope", "notifications": "AXMoved"}, "not found"},
		{"unknown id", map[string]any{"id": "x", "element": "App", "notifications": "AXMoved"}, "no subscription"},
		{"pid out of range", map[string]any{"element": "App", "notifications": "AXMoved", "pid": float64(1 << 40)}, "not a valid pid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := f.call(t, "subscribe", tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
	assert.Zero(t, f.server.sessions.count())
}

func TestReadCacheInvalidatedByWrites(t *testing.T) {
	f := newFixture(t, time.Hour)

	var tree output.ReadResult
	f.mustCall(t, "read", map[string]any{"app": "App"}, &tree)
	assert.Equal(t, 1, f.server.cache.Len())

	// Writes that bypass the server are not seen until the entry expires.
	w, err := f.desktop.Window(f.app, "Window 1")
	require.NoError(t, err)
	require.NoError(t, w.Element.SetAttribute(ax.AttrTitle, ax.StringValue("Renamed")))
	f.mustCall(t, "read", map[string]any{"app": "app"}, &tree)
	assert.Equal(t, "Window 1", tree.Elements[0].Children[0].Title)

	f.mustCall(t, "move", map[string]any{"app": "App", "width": float64(400), "height": float64(300)}, nil)
	assert.Zero(t, f.server.cache.Len())

	f.mustCall(t, "read", map[string]any{"app": "App"}, &tree)
	assert.Equal(t, "Renamed", tree.Elements[0].Children[0].Title)
	assert.Equal(t, [4]int{0, 0, 400, 300}, tree.Elements[0].Children[0].Bounds)
}

func TestMetricsCountToolCalls(t *testing.T) {
	f := newFixture(t, 0)

	f.mustCall(t, "list", nil, nil)
	f.mustCall(t, "list", nil, nil)
	_, _ = f.call(t, "read", map[string]any{"app": "Nope"})
	f.mustCall(t, "subscribe", map[string]any{"element": "App", "notifications": "AXMainWindowChanged"}, nil)
	f.mustCall(t, "focus", map[string]any{"window": "Window 2"}, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("read", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("AXMainWindowChanged", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("AXFocusedWindowChanged", "dropped")))
}

func TestSessionQueueOverflow(t *testing.T) {
	s := &session{id: "s"}
	for i := 0; i < maxPendingEvents+5; i++ {
		s.push(model.Event{Notification: "AXMoved"})
	}
	events, dropped := s.drain(10)
	require.Len(t, events, 10)
	assert.Equal(t, 5, dropped)
	assert.Equal(t, 6, events[0].Seq)

	events, dropped = s.drain(0)
	assert.Len(t, events, maxPendingEvents-10)
	assert.Zero(t, dropped)
}

func TestCallUnknownTool(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.server.Call(context.Background(), "click", nil)
	require.Error(t, err)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	f := newFixture(t, 0)
	f.server.cfg.Transport = "carrier-pigeon"
	err := f.server.Serve(context.Background())
	require.ErrorContains(t, err, "unsupported transport")
}
