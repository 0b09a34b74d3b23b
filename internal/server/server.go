// Package server exposes the simulated desktop to agents over MCP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/axsim/internal/config"
	"github.com/mj1618/axsim/internal/metrics"
	"github.com/mj1618/axsim/internal/platform"
	"github.com/mj1618/axsim/internal/platform/fake"
)

// Server wraps the MCP server with the platform provider and cache.
type Server struct {
	cfg      config.ServerConfig
	desktop  *fake.Desktop
	provider *platform.Provider
	cache    *TreeCache
	sessions *sessions
	metrics  *metrics.Metrics
	log      zerolog.Logger

	// providerMu serializes tool calls against the provider.
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
	tools      map[string]mcpserver.ToolHandlerFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l.With().Str("component", "mcp").Logger() }
}

// WithMetrics counts tool calls in m and serves m on the metrics address.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithProvider overrides the provider from platform.NewProvider.
func WithProvider(p *platform.Provider) Option {
	return func(s *Server) { s.provider = p }
}

// New creates an MCP server over desktop with all axsim tools registered.
func New(cfg config.ServerConfig, desktop *fake.Desktop, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		desktop:  desktop,
		cache:    NewTreeCache(cfg.CacheTTL),
		sessions: newSessions(),
		log:      zerolog.Nop(),
		tools:    make(map[string]mcpserver.ToolHandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.provider == nil {
		provider, err := platform.NewProvider()
		if err != nil {
			return nil, err
		}
		s.provider = provider
	}

	s.mcp = mcpserver.NewMCPServer(
		"axsim",
		"1.0.0",
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	s.registerTools()
	return s, nil
}

// Serve runs the configured transport, and the metrics endpoint when an
// address is set, until ctx ends or the transport stops.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if s.cfg.MetricsAddr != "" && s.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		ms := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			s.log.Info().Str("addr", s.cfg.MetricsAddr).Msg("serving metrics")
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return ms.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return s.serveMCP(gctx)
	})
	return g.Wait()
}

func (s *Server) serveMCP(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		s.log.Info().Msg("serving MCP on stdio")
		stdio := mcpserver.NewStdioServer(s.mcp)
		stdio.SetErrorLogger(log.New(s.log, "", 0))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case config.TransportStreamableHTTP:
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errc := make(chan error, 1)
		go func() { errc <- httpServer.Start(addr) }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

var errToolResult = errors.New("tool returned an error result")

// instrument counts every call of tool and logs its outcome.
func (s *Server) instrument(tool string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := h(ctx, request)
		failure := err
		if failure == nil && res != nil && res.IsError {
			failure = errToolResult
		}
		if s.metrics != nil {
			s.metrics.ToolCall(tool, failure)
		}
		s.log.Debug().Str("tool", tool).Bool("failed", failure != nil).Msg("tool call")
		return res, err
	}
}

func (s *Server) addTool(tool mcp.Tool, h mcpserver.ToolHandlerFunc) {
	h = s.instrument(tool.Name, h)
	s.tools[tool.Name] = h
	s.mcp.AddTool(tool, h)
}

// Call invokes the named tool directly, bypassing the transport.
func (s *Server) Call(ctx context.Context, tool string, args map[string]any) (*mcp.CallToolResult, error) {
	h, ok := s.tools[tool]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	var request mcp.CallToolRequest
	request.Params.Name = tool
	request.Params.Arguments = args
	return h(ctx, request)
}

func (s *Server) registerTools() {
	targetOpts := []mcp.ToolOption{
		mcp.WithString("app", mcp.Description("Application name")),
		mcp.WithString("window", mcp.Description("Window title substring")),
		mcp.WithNumber("window-id", mcp.Description("Window element ID")),
		mcp.WithNumber("pid", mcp.Description("Process ID")),
	}
	withTarget := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append(append([]mcp.ToolOption(nil), targetOpts...), opts...)
	}

	// list
	s.addTool(
		mcp.NewTool("list",
			mcp.WithDescription("List windows, or applications when apps is true, on the simulated desktop"),
			mcp.WithBoolean("apps", mcp.Description("List applications instead of windows")),
			mcp.WithString("app", mcp.Description("Filter by application name")),
			mcp.WithNumber("pid", mcp.Description("Filter by process ID")),
		),
		s.handleList,
	)

	// read
	s.addTool(
		mcp.NewTool("read", withTarget(
			mcp.WithDescription("Read the element tree: every application, one application with its windows, or one window"),
			mcp.WithNumber("depth", mcp.Description("1 returns applications without their windows")),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list with paths instead of a tree")),
		)...),
		s.handleRead,
	)

	// focus
	s.addTool(
		mcp.NewTool("focus", withTarget(
			mcp.WithDescription("Make a window its application's main window and bring the application to the front"),
		)...),
		s.handleFocus,
	)

	// move
	s.addTool(
		mcp.NewTool("move", withTarget(
			mcp.WithDescription("Move and/or resize a window. Without a window the application's main window moves."),
			mcp.WithNumber("x", mcp.Description("New left edge")),
			mcp.WithNumber("y", mcp.Description("New top edge")),
			mcp.WithNumber("width", mcp.Description("New width")),
			mcp.WithNumber("height", mcp.Description("New height")),
		)...),
		s.handleMove,
	)

	// set_attribute
	s.addTool(
		mcp.NewTool("set_attribute",
			mcp.WithDescription("Write one accessibility attribute, e.g. AXSize on App/Window 1"),
			mcp.WithString("element", mcp.Required(), mcp.Description("Element reference: App, App/Window or #id")),
			mcp.WithString("attribute", mcp.Required(), mcp.Description("Attribute name, e.g. AXPosition, AXMinimized, AXMainWindow")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value: true/false, text, \"x,y\", \"w,h\", \"x,y,w,h\" or an element reference")),
		),
		s.handleSetAttribute,
	)

	// frontmost
	s.addTool(
		mcp.NewTool("frontmost",
			mcp.WithDescription("Report the frontmost application"),
		),
		s.handleFrontmost,
	)

	// subscribe
	s.addTool(
		mcp.NewTool("subscribe",
			mcp.WithDescription("Subscribe to notifications on an element. Returns a subscription id for events and unsubscribe."),
			mcp.WithString("element", mcp.Required(), mcp.Description("Element reference: App, App/Window or #id")),
			mcp.WithArray("notifications", mcp.Required(),
				mcp.Description("Notification names, e.g. AXMoved, AXMainWindowChanged"),
				mcp.Items(map[string]any{"type": "string"})),
			mcp.WithString("id", mcp.Description("Add to an existing subscription instead of creating one")),
			mcp.WithNumber("pid", mcp.Description("Observer process ID (defaults to the element's)")),
		),
		s.handleSubscribe,
	)

	// events
	s.addTool(
		mcp.NewTool("events",
			mcp.WithDescription("Drain the notifications queued for a subscription, oldest first"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Subscription id")),
			mcp.WithNumber("max", mcp.Description("Max events to return (0 = all)")),
		),
		s.handleEvents,
	)

	// unsubscribe
	s.addTool(
		mcp.NewTool("unsubscribe",
			mcp.WithDescription("Remove notifications from a subscription, or the whole subscription when no element is given"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Subscription id")),
			mcp.WithString("element", mcp.Description("Element reference")),
			mcp.WithArray("notifications",
				mcp.Description("Notification names to remove from the element"),
				mcp.Items(map[string]any{"type": "string"})),
		),
		s.handleUnsubscribe,
	)
}
