package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/params"
	"github.com/mj1618/axsim/internal/platform"
	"github.com/mj1618/axsim/internal/scenario"
)

// resultToText serializes a StepResult to YAML for MCP response.
func resultToText(result scenario.StepResult) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprintf("ok: %v\naction: %s\nerror: %s", result.OK, result.Action, result.Error)
	}
	return string(b)
}

func yamlResult(v any) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

func targetArgs(args map[string]any) platform.Target {
	return platform.Target{
		App:      params.String(args, "app", ""),
		Window:   params.String(args, "window", ""),
		WindowID: params.Int(args, "window-id", 0),
		PID:      params.Int(args, "pid", 0),
	}
}

// writeActionHandler locks the provider, runs fn and invalidates the cache
// entries the write may have changed.
func (s *Server) writeActionHandler(
	request mcp.CallToolRequest,
	action string,
	fn func(args map[string]any) error,
) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	result := scenario.StepResult{Action: action}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	start := time.Now()
	err := fn(args)
	result.Elapsed = time.Since(start).Round(time.Microsecond).String()
	if err != nil {
		result.Error = err.Error()
		return mcp.NewToolResultError(resultToText(result)), nil
	}
	result.OK = true

	// Focus changes AXFrontmost on every application.
	if app := params.String(args, "app", ""); app != "" && action != "focus" {
		s.cache.InvalidateApp(app)
	} else {
		s.cache.InvalidateAll()
	}

	return mcp.NewToolResultText(resultToText(result)), nil
}

func (s *Server) handleList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	opts := platform.ListOptions{
		Apps: params.Bool(args, "apps", false),
		PID:  params.Int(args, "pid", 0),
		App:  params.String(args, "app", ""),
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Reader == nil {
		return mcp.NewToolResultError("reader not available on this platform"), nil
	}

	if opts.Apps {
		apps, err := s.provider.Reader.ListApps(opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return yamlResult(apps), nil
	}

	windows, err := s.provider.Reader.ListWindows(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(windows), nil
}

func (s *Server) handleRead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	opts := platform.ReadOptions{
		Target: targetArgs(args),
		Depth:  params.Int(args, "depth", 0),
	}
	flat := params.Bool(args, "flat", false)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Reader == nil {
		return mcp.NewToolResultError("reader not available on this platform"), nil
	}

	elements, err := s.cache.ReadElements(s.provider.Reader, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ts := time.Now().Unix()
	if flat {
		return yamlResult(output.ReadFlatResult{
			App:      opts.App,
			PID:      opts.PID,
			Window:   opts.Window,
			TS:       ts,
			Elements: model.FlattenElements(elements),
		}), nil
	}
	return yamlResult(output.ReadResult{
		App:      opts.App,
		PID:      opts.PID,
		Window:   opts.Window,
		TS:       ts,
		Elements: elements,
	}), nil
}

func (s *Server) handleFocus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.writeActionHandler(request, "focus", func(args map[string]any) error {
		if s.provider.WindowManager == nil {
			return fmt.Errorf("window management not available on this platform")
		}
		return s.provider.WindowManager.FocusWindow(platform.FocusOptions{Target: targetArgs(args)})
	})
}

func (s *Server) handleMove(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.writeActionHandler(request, "move", func(args map[string]any) error {
		if s.provider.WindowMover == nil {
			return fmt.Errorf("window moving not available on this platform")
		}
		return s.provider.WindowMover.MoveWindow(platform.MoveOptions{
			Target:      targetArgs(args),
			X:           params.Int(args, "x", 0),
			Y:           params.Int(args, "y", 0),
			Width:       params.Int(args, "width", 0),
			Height:      params.Int(args, "height", 0),
			SetPosition: params.Has(args, "x", "y"),
			SetSize:     params.Has(args, "width", "height"),
		})
	})
}

func (s *Server) handleSetAttribute(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.writeActionHandler(request, "set_attribute", func(args map[string]any) error {
		if s.provider.AttributeWriter == nil {
			return fmt.Errorf("attribute writes not available on this platform")
		}
		value, ok := args["value"]
		if !ok {
			return fmt.Errorf("value is required")
		}
		return s.provider.AttributeWriter.SetAttribute(platform.SetAttributeOptions{
			Element:   params.String(args, "element", ""),
			Attribute: params.String(args, "attribute", ""),
			Value:     value,
		})
	})
}

func (s *Server) handleFrontmost(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.WindowManager == nil {
		return mcp.NewToolResultError("window management not available on this platform"), nil
	}
	name, pid, err := s.provider.WindowManager.GetFrontmostApp()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(model.App{Name: name, PID: pid, Frontmost: true}), nil
}

// subscribeResult is the output of subscribe and unsubscribe.
type subscribeResult struct {
	ID            string   `yaml:"id"                      json:"id"`
	Element       string   `yaml:"element,omitempty"       json:"element,omitempty"`
	Notifications []string `yaml:"notifications,omitempty" json:"notifications,omitempty"`
	Removed       bool     `yaml:"removed,omitempty"       json:"removed,omitempty"`
}

// eventsResult is the output of events.
type eventsResult struct {
	ID      string        `yaml:"id"                json:"id"`
	Dropped int           `yaml:"dropped,omitempty" json:"dropped,omitempty"`
	Events  []model.Event `yaml:"events"            json:"events"`
}

func parseNotificationArgs(names []string) ([]ax.Notification, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("notifications are required")
	}
	out := make([]ax.Notification, 0, len(names))
	for _, name := range names {
		n, ok := ax.ParseNotification(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown notification %q", name)
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Server) handleSubscribe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref := params.String(args, "element", "")
	kinds, err := parseNotificationArgs(params.Strings(args, "notifications"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	el, err := s.desktop.Resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sess *session
	if id := params.String(args, "id", ""); id != "" {
		if sess, err = s.sessions.get(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		pid, err := params.PID(args, "pid")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if pid == 0 {
			if pid, err = el.PID(); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		if sess, err = s.sessions.create(s.desktop, pid); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.log.Info().Str("id", sess.id).Int32("pid", pid).Msg("subscription created")
	}

	names := make([]string, 0, len(kinds))
	for _, n := range kinds {
		if err := sess.add(n, el); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		names = append(names, string(n))
	}
	return yamlResult(subscribeResult{
		ID:            sess.id,
		Element:       s.desktop.Describe(el.ID()),
		Notifications: names,
	}), nil
}

func (s *Server) handleEvents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sess, err := s.sessions.get(params.String(args, "id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, dropped := sess.drain(params.Int(args, "max", 0))
	return yamlResult(eventsResult{ID: sess.id, Dropped: dropped, Events: events}), nil
}

func (s *Server) handleUnsubscribe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id := params.String(args, "id", "")
	ref := params.String(args, "element", "")

	if ref == "" {
		if err := s.sessions.remove(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.log.Info().Str("id", id).Msg("subscription removed")
		return yamlResult(subscribeResult{ID: id, Removed: true}), nil
	}

	sess, err := s.sessions.get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kinds, err := parseNotificationArgs(params.Strings(args, "notifications"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	el, err := s.desktop.Resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names := make([]string, 0, len(kinds))
	for _, n := range kinds {
		if err := sess.drop(n, el); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		names = append(names, string(n))
	}
	return yamlResult(subscribeResult{ID: id, Element: s.desktop.Describe(el.ID()), Notifications: names}), nil
}
