package ax

import (
	"runtime"
	"sync"
	"testing"
)

func newTestTree(t *testing.T, opts ...TreeOption) *Tree {
	t.Helper()
	tree := NewTree(opts...)
	t.Cleanup(tree.Close)
	return tree
}

type delivery struct {
	Element      ElementID
	Notification Notification
}

// inbox collects callbacks. Callbacks run on the main queue, so the lock only
// orders them against reads from the test goroutine.
type inbox struct {
	mu  sync.Mutex
	got []delivery
}

func (b *inbox) callback(_ *Observer, el UIElement, n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, delivery{Element: el.ID(), Notification: n})
}

func (b *inbox) all() []delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]delivery(nil), b.got...)
}

func (b *inbox) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = nil
}

func newTestObserver(t *testing.T, tree *Tree, pid int32) (*Observer, *inbox) {
	t.Helper()
	box := &inbox{}
	o, err := tree.NewObserver(pid, box.callback)
	if err != nil {
		t.Fatalf("new observer: %v", err)
	}
	t.Cleanup(func() { runtime.KeepAlive(o) })
	return o, box
}

type countingRecorder struct {
	mu        sync.Mutex
	delivered map[Notification]int
	dropped   map[Notification]int
	failed    map[Notification]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		delivered: map[Notification]int{},
		dropped:   map[Notification]int{},
		failed:    map[Notification]int{},
	}
}

func (r *countingRecorder) Delivered(n Notification) { r.inc(r.delivered, n) }
func (r *countingRecorder) Dropped(n Notification)   { r.inc(r.dropped, n) }
func (r *countingRecorder) Failed(n Notification)    { r.inc(r.failed, n) }

func (r *countingRecorder) inc(m map[Notification]int, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m[n]++
}

func (r *countingRecorder) snapshot() (delivered, dropped, failed map[Notification]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := func(m map[Notification]int) map[Notification]int {
		out := make(map[Notification]int, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return cp(r.delivered), cp(r.dropped), cp(r.failed)
}
