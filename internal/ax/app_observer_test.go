package ax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationObserver_Frontmost(t *testing.T) {
	tree := newTestTree(t)
	apps := tree.NewApplicationObserver()

	_, ok := apps.FrontmostApplicationPID()
	assert.False(t, ok)

	a := tree.NewEmittingApplication(WithPID(100))
	b := tree.NewEmittingApplication(WithPID(200))
	apps.AddApplication(a)
	apps.AddApplication(b)

	var changes int
	var handlerOnQueue bool
	apps.OnFrontmostApplicationChanged(func() {
		changes++
		handlerOnQueue = tree.Queue().IsCurrent()
	})

	require.NoError(t, apps.MakeApplicationFrontmost(200))
	pid, ok := apps.FrontmostApplicationPID()
	require.True(t, ok)
	assert.Equal(t, int32(200), pid)
	assert.Equal(t, 1, changes)
	assert.True(t, handlerOnQueue)

	front, _, err := BoolAttribute(b, AttrFrontmost)
	require.NoError(t, err)
	assert.True(t, front)
	front, _, _ = BoolAttribute(a, AttrFrontmost)
	assert.False(t, front)

	apps.ClearFrontmost()
	_, ok = apps.FrontmostApplicationPID()
	assert.False(t, ok)
	front, _, _ = BoolAttribute(b, AttrFrontmost)
	assert.False(t, front)
	assert.Equal(t, 2, changes)
}

func TestApplicationObserver_FrontmostAfterClose(t *testing.T) {
	tree := NewTree()
	apps := tree.NewApplicationObserver()
	tree.Close()

	require.ErrorIs(t, apps.MakeApplicationFrontmost(1), ErrQueueClosed)
}

func TestApplicationObserver_LifecycleHandlers(t *testing.T) {
	tree := newTestTree(t)
	apps := tree.NewApplicationObserver()

	var launched, terminated []int32
	var spaces []int
	apps.OnApplicationLaunched(func(pid int32) { launched = append(launched, pid) })
	apps.OnApplicationTerminated(func(pid int32) { terminated = append(terminated, pid) })
	apps.OnSpaceChanged(func(id int) { spaces = append(spaces, id) })

	apps.Launch(7)
	apps.Launch(8)
	apps.Terminate(7)
	apps.ChangeSpace(2)

	assert.Equal(t, []int32{7, 8}, launched)
	assert.Equal(t, []int32{7}, terminated)
	assert.Equal(t, []int{2}, spaces)
}

func TestApplicationObserver_Registry(t *testing.T) {
	tree := newTestTree(t)
	apps := tree.NewApplicationObserver()
	a := tree.NewEmittingApplication(WithPID(10))
	b := tree.NewEmittingApplication(WithPID(20))
	apps.AddApplication(a)
	apps.AddApplication(b)

	got, ok := apps.AppElement(20)
	require.True(t, ok)
	assert.Same(t, b, got)

	apps.RemoveApplication(10)
	_, ok = apps.AppElement(10)
	assert.False(t, ok)
	assert.Equal(t, []*EmittingApplication{b}, apps.AllApplications())
}
