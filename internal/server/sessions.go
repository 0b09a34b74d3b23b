package server

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/platform/fake"
)

// maxPendingEvents bounds each subscription's queue; the oldest events are
// dropped first.
const maxPendingEvents = 1024

type subscription struct {
	notification ax.Notification
	element      ax.UIElement
}

// session is one agent subscription: an observer and the events it has
// received but not yet handed out.
type session struct {
	id       string
	observer *ax.Observer

	mu      sync.Mutex
	seq     int
	dropped int
	pending []model.Event
	subs    []subscription
}

type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[string]*session)}
}

// create registers a new session whose observer records into it.
func (ss *sessions) create(d *fake.Desktop, pid int32) (*session, error) {
	sess := &session{id: uuid.NewString()}
	o, err := d.Tree().NewObserver(pid, func(_ *ax.Observer, el ax.UIElement, n ax.Notification) {
		sess.push(d.Event(sess.id, el, n))
	})
	if err != nil {
		return nil, err
	}
	sess.observer = o

	ss.mu.Lock()
	ss.byID[sess.id] = sess
	ss.mu.Unlock()
	return sess, nil
}

func (ss *sessions) get(id string) (*session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.byID[id]
	if !ok {
		return nil, fmt.Errorf("no subscription with id %q", id)
	}
	return sess, nil
}

// remove drops the session and all of its subscriptions.
func (ss *sessions) remove(id string) error {
	ss.mu.Lock()
	sess, ok := ss.byID[id]
	delete(ss.byID, id)
	ss.mu.Unlock()
	if !ok {
		return fmt.Errorf("no subscription with id %q", id)
	}

	sess.mu.Lock()
	subs := sess.subs
	sess.subs = nil
	sess.mu.Unlock()
	for _, sub := range subs {
		// The element may be gone; the subscription dies with the session.
		_ = sess.observer.RemoveNotification(sub.notification, sub.element)
	}
	return nil
}

func (ss *sessions) count() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}

func (s *session) add(n ax.Notification, el ax.UIElement) error {
	if err := s.observer.AddNotification(n, el); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := subscription{notification: n, element: el}
	if !slices.ContainsFunc(s.subs, func(o subscription) bool {
		return o.notification == n && ax.SameElement(o.element, el)
	}) {
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *session) drop(n ax.Notification, el ax.UIElement) error {
	if err := s.observer.RemoveNotification(n, el); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(o subscription) bool {
		return o.notification == n && ax.SameElement(o.element, el)
	})
	return nil
}

func (s *session) push(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ev.Seq = s.seq
	if len(s.pending) == maxPendingEvents {
		s.pending = slices.Delete(s.pending, 0, 1)
		s.dropped++
	}
	s.pending = append(s.pending, ev)
}

// drain returns up to limit queued events (all when limit <= 0) and the
// count of events lost to overflow since the last drain.
func (s *session) drain(limit int) ([]model.Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if limit > 0 && limit < n {
		n = limit
	}
	out := append([]model.Event{}, s.pending[:n]...)
	s.pending = slices.Delete(s.pending, 0, n)
	dropped := s.dropped
	s.dropped = 0
	return out, dropped
}
