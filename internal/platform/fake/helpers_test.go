package fake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mj1618/axsim/internal/ax"
)

// newTestDesktop seeds App (pid 100) with "Window 1" and "Window 2", and
// Other (pid 200) with "Notes".
func newTestDesktop(t *testing.T) (*Desktop, *App, *App) {
	t.Helper()
	tree := ax.NewTree()
	t.Cleanup(tree.Close)
	d := NewDesktop(tree)

	app, err := d.AddApplication("App", 100)
	require.NoError(t, err)
	_, err = d.AddWindow(app, "Window 1", &ax.Rect{Size: ax.Size{Width: 100, Height: 100}})
	require.NoError(t, err)
	r := ax.R(50, 50, 300, 200)
	_, err = d.AddWindow(app, "Window 2", &r)
	require.NoError(t, err)

	other, err := d.AddApplication("Other", 200)
	require.NoError(t, err)
	_, err = d.AddWindow(other, "Notes", nil)
	require.NoError(t, err)
	return d, app, other
}
