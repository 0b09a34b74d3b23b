package ax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func mainFlag(t *testing.T, w UIElement) bool {
	t.Helper()
	b, ok, err := BoolAttribute(w, AttrMain)
	require.NoError(t, err)
	require.True(t, ok)
	return b
}

func focusedWindow(t *testing.T, app UIElement) UIElement {
	t.Helper()
	el, ok, err := ElementAttribute(app, AttrFocusedWindow)
	require.NoError(t, err)
	require.True(t, ok)
	return el
}

func TestApplication_MainWindowMovesMainFlag(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w1 := tree.NewWindow(app)
	w2 := tree.NewWindow(app)

	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w1)))
	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w2)))

	assert.False(t, mainFlag(t, w1))
	assert.True(t, mainFlag(t, w2))
	assert.True(t, SameElement(w2, focusedWindow(t, app)))

	mw, _, err := ElementAttribute(app, AttrMainWindow)
	require.NoError(t, err)
	assert.True(t, SameElement(w2, mw))
}

func TestApplication_SameMainWindowTwiceKeepsFlag(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w := tree.NewWindow(app)

	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w)))
	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w)))
	assert.True(t, mainFlag(t, w))
}

func TestApplication_FocusedWindowIsIndependent(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w1 := tree.NewWindow(app)
	w2 := tree.NewWindow(app)

	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w1)))
	require.NoError(t, app.SetAttribute(AttrFocusedWindow, ElementValue(w2)))

	assert.True(t, SameElement(w2, focusedWindow(t, app)))
	mw, _, _ := ElementAttribute(app, AttrMainWindow)
	assert.True(t, SameElement(w1, mw))
	assert.True(t, mainFlag(t, w1))
}

func TestApplication_MainWindowRequiresWindow(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()

	err := app.SetAttribute(AttrMainWindow, ElementValue(tree.NewElement()))
	require.ErrorIs(t, err, ErrTypeMismatch)
	err = app.SetAttribute(AttrMainWindow, StringValue("Window 1"))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, ok, err := app.Attribute(AttrMainWindow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWindow_MainFalseIsNoop(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w := tree.NewWindow(app)

	require.NoError(t, w.SetAttribute(AttrMain, BoolValue(false)))
	assert.True(t, mainFlag(t, w))

	require.NoError(t, app.SetAttribute(AttrMainWindow, ElementValue(w)))
	require.NoError(t, w.SetAttribute(AttrMain, BoolValue(false)))
	assert.True(t, mainFlag(t, w))
}

func TestWindow_MainTrueDelegatesToApplication(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w1 := tree.NewWindow(app)
	w2 := tree.NewWindow(app)

	require.NoError(t, w1.SetAttribute(AttrMain, BoolValue(true)))
	require.NoError(t, w2.SetAttribute(AttrMain, BoolValue(true)))

	assert.False(t, mainFlag(t, w1))
	assert.True(t, mainFlag(t, w2))
	assert.True(t, SameElement(w2, focusedWindow(t, app)))

	require.ErrorIs(t, w1.SetAttribute(AttrMain, StringValue("yes")), ErrTypeMismatch)
}

func TestApplication_AddWindow(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	w1 := tree.NewWindow(app)
	w2 := tree.NewWindow(app)

	require.NoError(t, app.AddWindow(w1))
	require.NoError(t, app.AddWindow(w2))

	wins, err := app.Windows()
	require.NoError(t, err)
	require.Len(t, wins, 2)
	assert.True(t, SameElement(w1, wins[0]))
	assert.True(t, SameElement(w2, wins[1]))

	app.Invalidate()
	require.ErrorIs(t, app.AddWindow(tree.NewWindow(app)), ErrInvalidElement)
}

func TestApplication_ConcurrentMainWindowChangesStayConsistent(t *testing.T) {
	tree := newTestTree(t)
	app := tree.NewApplication()
	wins := make([]*Window, 4)
	for i := range wins {
		wins[i] = tree.NewWindow(app)
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := range 8 {
		g.Go(func() error {
			for j := range 200 {
				w := wins[(i+j)%len(wins)]
				if j%2 == 0 {
					if err := app.SetAttribute(AttrMainWindow, ElementValue(w)); err != nil {
						return err
					}
				} else if err := w.SetAttribute(AttrMain, BoolValue(true)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	mw, ok, err := ElementAttribute(app, AttrMainWindow)
	require.NoError(t, err)
	require.True(t, ok)

	mains := 0
	for _, w := range wins {
		if mainFlag(t, w) {
			mains++
			assert.True(t, SameElement(w, mw))
		}
	}
	// Every window has been main at least once, so all but the last lost
	// their initial AXMain=true.
	assert.Equal(t, 1, mains)
	assert.True(t, SameElement(mw, focusedWindow(t, app)))
}
