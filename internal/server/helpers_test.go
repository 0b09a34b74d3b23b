package server

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/config"
	"github.com/mj1618/axsim/internal/metrics"
	"github.com/mj1618/axsim/internal/platform/fake"
)

type fixture struct {
	server  *Server
	desktop *fake.Desktop
	metrics *metrics.Metrics
	app     *fake.App
}

// newFixture serves App (pid 100) with "Window 1" and "Window 2", and
// Other (pid 200) with "Notes".
func newFixture(t *testing.T, cacheTTL time.Duration) *fixture {
	t.Helper()
	m := metrics.New()
	tree := ax.NewTree(ax.WithRecorder(m))
	t.Cleanup(tree.Close)
	d := fake.NewDesktop(tree)

	app, err := d.AddApplication("App", 100)
	require.NoError(t, err)
	r1 := ax.R(0, 0, 100, 100)
	_, err = d.AddWindow(app, "Window 1", &r1)
	require.NoError(t, err)
	r2 := ax.R(50, 50, 300, 200)
	_, err = d.AddWindow(app, "Window 2", &r2)
	require.NoError(t, err)
	other, err := d.AddApplication("Other", 200)
	require.NoError(t, err)
	_, err = d.AddWindow(other, "Notes", nil)
	require.NoError(t, err)

	cfg := config.ServerConfig{Transport: config.TransportStdio, CacheTTL: cacheTTL}
	s, err := New(cfg, d, WithProvider(fake.NewProvider(d).Platform()), WithMetrics(m))
	require.NoError(t, err)
	return &fixture{server: s, desktop: d, metrics: m, app: app}
}

func (f *fixture) call(t *testing.T, tool string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := f.server.Call(context.Background(), tool, args)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

// mustCall calls tool, requires success and decodes the YAML result into out.
func (f *fixture) mustCall(t *testing.T, tool string, args map[string]any, out any) {
	t.Helper()
	text, isErr := f.call(t, tool, args)
	require.False(t, isErr, text)
	if out != nil {
		require.NoError(t, yaml.Unmarshal([]byte(text), out))
	}
}
