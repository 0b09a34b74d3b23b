package ax

import (
	"errors"
	"sync"
)

// Callback receives one notification. It always runs on the tree's main
// queue.
type Callback func(o *Observer, el UIElement, n Notification)

// Observer holds one client's subscriptions and delivers matching
// notifications to its callback.
type Observer struct {
	tree     *Tree
	pid      int32
	callback Callback

	mu      sync.Mutex
	watched map[ElementID]map[Notification]struct{}
}

// PID returns the process the observer was created for.
func (o *Observer) PID() int32 { return o.pid }

// AddNotification subscribes to n on el. The first subscription on an
// element registers the observer with it; adding a present subscription
// changes nothing.
func (o *Observer) AddNotification(n Notification, el UIElement) error {
	if el == nil {
		return errors.New("add notification: nil element")
	}

	o.mu.Lock()
	set, seen := o.watched[el.ID()]
	if !seen {
		set = make(map[Notification]struct{})
		o.watched[el.ID()] = set
	}
	set[n] = struct{}{}
	o.mu.Unlock()

	if !seen {
		el.AddObserver(o)
	}
	o.tree.log.Debug().
		Int64("element", int64(el.ID())).
		Str("notification", string(n)).
		Msg("notification added")
	return nil
}

// RemoveNotification unsubscribes from n on el. Removing an absent
// subscription changes nothing.
func (o *Observer) RemoveNotification(n Notification, el UIElement) error {
	if el == nil {
		return errors.New("remove notification: nil element")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if set, ok := o.watched[el.ID()]; ok {
		delete(set, n)
	}
	return nil
}

// Watching reports whether the observer is subscribed to n on el.
func (o *Observer) Watching(n Notification, el UIElement) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.watched[el.ID()][n]
	return ok
}

func (o *Observer) emit(n Notification, el UIElement) {
	watched := el
	if n.routesToApplication() {
		if w, ok := el.(WindowElement); ok {
			watched = w.window().app
		}
	}

	o.mu.Lock()
	_, subscribed := o.watched[watched.ID()][n]
	o.mu.Unlock()

	log := o.tree.log.With().
		Str("notification", string(n)).
		Int64("element", int64(el.ID())).
		Logger()

	if !subscribed {
		o.tree.recorder.Dropped(n)
		log.Trace().Msg("notification dropped")
		return
	}

	err := o.tree.queue.Perform(o.tree.MessagingTimeout(), func() {
		o.callback(o, el, n)
	})
	if err != nil {
		o.tree.recorder.Failed(n)
		log.Warn().Err(err).Msg("notification not delivered")
		return
	}
	o.tree.recorder.Delivered(n)
	log.Debug().Msg("notification delivered")
}

// notify emits each kind, in order, to every live observer of e, in
// registration order. target is the element passed to callbacks.
func (e *Element) notify(kinds []Notification, target UIElement) {
	if len(kinds) == 0 {
		return
	}
	observers := e.liveObservers()
	for _, n := range kinds {
		for _, o := range observers {
			o.emit(n, target)
		}
	}
}
