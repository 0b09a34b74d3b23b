package ax

import "sync"

// ApplicationObserver simulates the system-wide application events that are
// not tied to any element: frontmost changes, launches, terminations and
// space changes.
type ApplicationObserver struct {
	tree *Tree

	mu           sync.Mutex
	frontmost    int32
	hasFrontmost bool
	apps         []*EmittingApplication

	frontmostHandlers []func()
	launchHandlers    []func(pid int32)
	terminateHandlers []func(pid int32)
	spaceHandlers     []func(id int)
}

// NewApplicationObserver returns an empty registry bound to the tree's main
// queue.
func (t *Tree) NewApplicationObserver() *ApplicationObserver {
	return &ApplicationObserver{tree: t}
}

// FrontmostApplicationPID returns the frontmost pid, if any.
func (r *ApplicationObserver) FrontmostApplicationPID() (int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frontmost, r.hasFrontmost
}

func (r *ApplicationObserver) OnFrontmostApplicationChanged(h func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frontmostHandlers = append(r.frontmostHandlers, h)
}

func (r *ApplicationObserver) OnApplicationLaunched(h func(pid int32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launchHandlers = append(r.launchHandlers, h)
}

func (r *ApplicationObserver) OnApplicationTerminated(h func(pid int32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminateHandlers = append(r.terminateHandlers, h)
}

func (r *ApplicationObserver) OnSpaceChanged(h func(id int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spaceHandlers = append(r.spaceHandlers, h)
}

// MakeApplicationFrontmost may be called from any goroutine. The change and
// its handlers run on the main queue.
func (r *ApplicationObserver) MakeApplicationFrontmost(pid int32) error {
	err := r.tree.queue.Perform(r.tree.MessagingTimeout(), func() {
		r.SetFrontmost(pid)
	})
	return Wrapf(err, "make %d frontmost", pid)
}

// SetFrontmost records pid as frontmost, updates AXFrontmost on registered
// applications and runs the frontmost handlers.
func (r *ApplicationObserver) SetFrontmost(pid int32) {
	r.mu.Lock()
	r.frontmost, r.hasFrontmost = pid, true
	apps := append([]*EmittingApplication(nil), r.apps...)
	handlers := append([]func(){}, r.frontmostHandlers...)
	r.mu.Unlock()

	for _, app := range apps {
		_ = app.attrs.Set(AttrFrontmost, BoolValue(app.pid == pid))
	}
	r.tree.log.Debug().Int32("pid", pid).Msg("frontmost application changed")
	for _, h := range handlers {
		h()
	}
}

// ClearFrontmost records that no application is frontmost and runs the
// frontmost handlers.
func (r *ApplicationObserver) ClearFrontmost() {
	r.mu.Lock()
	r.frontmost, r.hasFrontmost = 0, false
	apps := append([]*EmittingApplication(nil), r.apps...)
	handlers := append([]func(){}, r.frontmostHandlers...)
	r.mu.Unlock()

	for _, app := range apps {
		_ = app.attrs.Set(AttrFrontmost, BoolValue(false))
	}
	for _, h := range handlers {
		h()
	}
}

// Launch runs the launch handlers for pid.
func (r *ApplicationObserver) Launch(pid int32) {
	r.mu.Lock()
	handlers := append([]func(int32){}, r.launchHandlers...)
	r.mu.Unlock()
	r.tree.log.Debug().Int32("pid", pid).Msg("application launched")
	for _, h := range handlers {
		h(pid)
	}
}

// Terminate runs the termination handlers for pid.
func (r *ApplicationObserver) Terminate(pid int32) {
	r.mu.Lock()
	handlers := append([]func(int32){}, r.terminateHandlers...)
	r.mu.Unlock()
	r.tree.log.Debug().Int32("pid", pid).Msg("application terminated")
	for _, h := range handlers {
		h(pid)
	}
}

// ChangeSpace runs the space handlers with the new space id.
func (r *ApplicationObserver) ChangeSpace(id int) {
	r.mu.Lock()
	handlers := append([]func(int){}, r.spaceHandlers...)
	r.mu.Unlock()
	for _, h := range handlers {
		h(id)
	}
}

// AddApplication registers app so it is listed and found by pid.
func (r *ApplicationObserver) AddApplication(app *EmittingApplication) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = append(r.apps, app)
}

// RemoveApplication unregisters the application with the given pid.
func (r *ApplicationObserver) RemoveApplication(pid int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.apps[:0]
	for _, app := range r.apps {
		if app.pid != pid {
			kept = append(kept, app)
		}
	}
	clear(r.apps[len(kept):])
	r.apps = kept
}

// AllApplications returns the registered applications in registration order.
func (r *ApplicationObserver) AllApplications() []*EmittingApplication {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*EmittingApplication(nil), r.apps...)
}

// AppElement returns the registered application with the given pid.
func (r *ApplicationObserver) AppElement(pid int32) (*EmittingApplication, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.pid == pid {
			return app, true
		}
	}
	return nil, false
}
