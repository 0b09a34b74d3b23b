package ax

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DispatchRecorder is told the outcome of every notification an observer
// considers.
type DispatchRecorder interface {
	Delivered(n Notification)
	Dropped(n Notification)
	Failed(n Notification)
}

type nopRecorder struct{}

func (nopRecorder) Delivered(Notification) {}
func (nopRecorder) Dropped(Notification)   {}
func (nopRecorder) Failed(Notification)    {}

// Tree creates elements and observers and owns the state they share: the
// element ID and pid counters, the main queue and the messaging timeout.
type Tree struct {
	mu      sync.Mutex
	lastID  ElementID
	nextPID int32

	lockSeq  atomic.Uint64
	timeout  atomic.Int64
	queue    *MainQueue
	ownQueue bool
	log      zerolog.Logger
	recorder DispatchRecorder
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for element and dispatch events.
func WithLogger(l zerolog.Logger) TreeOption {
	return func(t *Tree) { t.log = l.With().Str("component", "ax").Logger() }
}

// WithMainQueue makes the tree deliver callbacks on q instead of starting its
// own queue. The caller keeps ownership of q.
func WithMainQueue(q *MainQueue) TreeOption {
	return func(t *Tree) { t.queue = q }
}

// WithRecorder sets the recorder told about each dispatch outcome.
func WithRecorder(r DispatchRecorder) TreeOption {
	return func(t *Tree) { t.recorder = r }
}

// WithMessagingTimeout sets the initial messaging timeout.
func WithMessagingTimeout(d time.Duration) TreeOption {
	return func(t *Tree) { t.timeout.Store(int64(d)) }
}

// NewTree returns an empty tree. Close it to stop its main queue.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		nextPID:  1,
		log:      zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.queue == nil {
		t.queue = NewMainQueue()
		t.ownQueue = true
	}
	return t
}

// Close stops the main queue if the tree started it.
func (t *Tree) Close() {
	if t.ownQueue {
		t.queue.Close()
	}
}

// Queue returns the main queue callbacks are delivered on.
func (t *Tree) Queue() *MainQueue { return t.queue }

// Reset rewinds the element ID and pid counters. Only call it between
// independent runs; elements created before and after may share IDs.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastID = 0
	t.nextPID = 1
}

// SetMessagingTimeout bounds how long an emitter waits for the main queue to
// run a callback. Zero waits indefinitely.
func (t *Tree) SetMessagingTimeout(d time.Duration) { t.timeout.Store(int64(d)) }

// MessagingTimeout returns the current messaging timeout.
func (t *Tree) MessagingTimeout() time.Duration { return time.Duration(t.timeout.Load()) }

func (t *Tree) allocID(fixed ElementID) ElementID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastID++
	if fixed != 0 {
		return fixed
	}
	return t.lastID
}

func (t *Tree) allocPID() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	pid := t.nextPID
	t.nextPID++
	return pid
}

func (t *Tree) newElement(fixed ElementID, self UIElement) *Element {
	e := &Element{
		tree:  t,
		id:    t.allocID(fixed),
		attrs: newSyncAttributes(t.lockSeq.Add(1)),
		self:  self,
	}
	return e
}

// NewElement returns a bare element with no attributes.
func (t *Tree) NewElement() *Element {
	e := t.newElement(0, nil)
	e.self = e
	t.log.Debug().Int64("element", int64(e.id)).Msg("element created")
	return e
}

type elementConfig struct {
	pid int32
	id  ElementID
}

// ElementOption fixes part of an application's identity.
type ElementOption func(*elementConfig)

// WithPID fixes the application's process ID.
func WithPID(pid int32) ElementOption {
	return func(c *elementConfig) { c.pid = pid }
}

// WithID fixes the application's element ID. The tree's counter still
// advances, so later elements keep unique IDs unless they collide with id.
func WithID(id ElementID) ElementOption {
	return func(c *elementConfig) { c.id = id }
}

// NewApplication returns an application whose pid defaults to its ID.
func (t *Tree) NewApplication(opts ...ElementOption) *Application {
	var cfg elementConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	a := &Application{}
	a.Element = t.newElement(cfg.id, a)
	t.initApplication(a, cfg.pid, int32(a.id))
	return a
}

// NewEmittingApplication returns an emitting application whose pid defaults
// to the next value of the tree's pid counter.
func (t *Tree) NewEmittingApplication(opts ...ElementOption) *EmittingApplication {
	var cfg elementConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	a := &EmittingApplication{Application: &Application{}}
	a.Element = t.newElement(cfg.id, a)
	fallback := int32(0)
	if cfg.pid == 0 {
		fallback = t.allocPID()
	}
	t.initApplication(a.Application, cfg.pid, fallback)
	return a
}

func (t *Tree) initApplication(a *Application, pid, fallback int32) {
	if pid == 0 {
		pid = fallback
	}
	a.pid = pid
	a.attrs.With(func(attrs *Attributes) {
		_ = attrs.Set(AttrRole, StringValue("AXApplication"))
		_ = attrs.Set(AttrWindows, ElementsValue(nil))
		_ = attrs.Set(AttrFrontmost, BoolValue(false))
		_ = attrs.Set(AttrHidden, BoolValue(false))
	})
	t.log.Debug().Int64("element", int64(a.id)).Int32("pid", pid).Msg("application created")
}

// NewWindow returns a window owned by app. The window is not added to the
// application's AXWindows.
func (t *Tree) NewWindow(app ApplicationElement) *Window {
	w := &Window{app: app}
	w.Element = t.newElement(0, w)
	t.initWindow(w)
	return w
}

// NewEmittingWindow returns an emitting window owned by app. Use
// EmittingApplication.AddWindow to register it and announce its creation.
func (t *Tree) NewEmittingWindow(app ApplicationElement) *EmittingWindow {
	w := &EmittingWindow{Window: &Window{app: app}}
	w.Element = t.newElement(0, w)
	t.initWindow(w.Window)
	return w
}

func (t *Tree) initWindow(w *Window) {
	w.pid = w.app.element().pid
	w.attrs.With(func(attrs *Attributes) {
		_ = attrs.Set(AttrRole, StringValue("AXWindow"))
		_ = attrs.Set(AttrFrame, RectValue(R(0, 0, 100, 100)))
		_ = attrs.Set(AttrTitle, StringValue(fmt.Sprintf("Window %d", w.id)))
		_ = attrs.Set(AttrMinimized, BoolValue(false))
		_ = attrs.Set(AttrMain, BoolValue(true))
		_ = attrs.Set(AttrFocused, BoolValue(true))
		_ = attrs.Set(AttrFullScreen, BoolValue(false))
	})
	t.log.Debug().
		Int64("element", int64(w.id)).
		Int64("application", int64(w.app.ID())).
		Msg("window created")
}

// NewObserver returns an observer for pid delivering to cb.
//
// Elements hold their observers weakly. The caller must keep the returned
// observer reachable for as long as it should receive notifications; once
// it is collected its registrations are skipped.
func (t *Tree) NewObserver(pid int32, cb Callback) (*Observer, error) {
	if cb == nil {
		return nil, errors.New("new observer: nil callback")
	}
	return &Observer{
		tree:     t,
		pid:      pid,
		callback: cb,
		watched:  make(map[ElementID]map[Notification]struct{}),
	}, nil
}
