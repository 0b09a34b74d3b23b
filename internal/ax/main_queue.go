package ax

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MainQueue is the single execution context observer callbacks run on. A
// dedicated goroutine drains submitted tasks in order.
//
// Perform blocks until the task has run. A task that itself calls Perform runs
// the nested work in place, so callbacks may mutate elements freely. Callers
// must not block the worker goroutine on anything that needs the worker to
// make progress.
type MainQueue struct {
	tasks  chan *queueTask
	quit   chan struct{}
	done   chan struct{}
	worker atomic.Uint64
	closed atomic.Bool
	once   sync.Once
}

type queueTask struct {
	fn       func()
	finished chan struct{}
	panicked any
}

// NewMainQueue starts a queue and its worker goroutine.
func NewMainQueue() *MainQueue {
	q := &MainQueue{
		tasks: make(chan *queueTask),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	started := make(chan struct{})
	go q.run(started)
	<-started
	return q
}

func (q *MainQueue) run(started chan<- struct{}) {
	defer close(q.done)
	q.worker.Store(goroutineID())
	close(started)
	for {
		select {
		case t := <-q.tasks:
			q.exec(t)
		case <-q.quit:
			return
		}
	}
}

func (q *MainQueue) exec(t *queueTask) {
	defer close(t.finished)
	defer func() {
		if r := recover(); r != nil {
			t.panicked = r
		}
	}()
	t.fn()
}

// IsCurrent reports whether the caller is running on the queue's worker.
func (q *MainQueue) IsCurrent() bool {
	return goroutineID() == q.worker.Load()
}

// Perform runs fn on the queue and waits for it to finish. A positive timeout
// bounds the wait; when it expires Perform returns ErrMessagingTimeout and fn
// may still run later. A panic in fn is re-raised in the caller.
func (q *MainQueue) Perform(timeout time.Duration, fn func()) error {
	if q.IsCurrent() {
		fn()
		return nil
	}
	if q.closed.Load() {
		return ErrQueueClosed
	}

	t := &queueTask{fn: fn, finished: make(chan struct{})}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case q.tasks <- t:
	case <-q.quit:
		return ErrQueueClosed
	case <-expired:
		return ErrMessagingTimeout
	}

	select {
	case <-t.finished:
	case <-expired:
		return ErrMessagingTimeout
	}
	if t.panicked != nil {
		panic(t.panicked)
	}
	return nil
}

// Close stops the worker after the task in flight, if any, completes.
func (q *MainQueue) Close() {
	q.once.Do(func() {
		q.closed.Store(true)
		close(q.quit)
	})
	if !q.IsCurrent() {
		<-q.done
	}
}

// goroutineID parses the current goroutine's ID from its stack header,
// which has the form "goroutine 123 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseUint(string(s), 10, 64)
	return id
}
