package ax

import (
	"fmt"
	"sync"
	"sync/atomic"
	"weak"
)

// ElementID identifies an element within its Tree. IDs are assigned in
// creation order.
type ElementID int64

// UIElement is the interface every simulated element satisfies.
type UIElement interface {
	ID() ElementID
	PID() (int32, error)
	Attribute(attr Attribute) (Value, bool, error)
	// Attributes reads several attributes as one consistent snapshot.
	// Absent attributes are omitted.
	Attributes(attrs ...Attribute) (map[Attribute]Value, error)
	SetAttribute(attr Attribute, v Value) error
	// AddObserver registers o as a target for notifications emitted by
	// this element. Registering the same observer twice delivers twice.
	AddObserver(o *Observer)
	Inspect() string

	element() *Element
}

// Element is a generic UI element and the base of applications and windows.
type Element struct {
	tree    *Tree
	id      ElementID
	pid     int32
	attrs   *SyncAttributes
	invalid atomic.Bool

	// self is the outermost value wrapping this Element.
	self UIElement

	mu        sync.Mutex
	observers []weak.Pointer[Observer]
}

func (e *Element) ID() ElementID { return e.id }

func (e *Element) element() *Element { return e }

// PID returns the owning process ID.
func (e *Element) PID() (int32, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	return e.pid, nil
}

func (e *Element) Attribute(attr Attribute) (Value, bool, error) {
	if err := e.check(); err != nil {
		return Value{}, false, err
	}
	v, ok := e.attrs.Get(attr)
	return v, ok, nil
}

func (e *Element) Attributes(attrs ...Attribute) (map[Attribute]Value, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.attrs.GetMany(attrs), nil
}

func (e *Element) SetAttribute(attr Attribute, v Value) error {
	if err := e.check(); err != nil {
		return err
	}
	if !v.IsValid() {
		return Wrapf(ErrTypeMismatch, "set %s", attr)
	}
	return e.attrs.Set(attr, v)
}

func (e *Element) AddObserver(o *Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, weak.Make(o))
}

// liveObservers returns the registered observers that have not been
// collected, in registration order.
func (e *Element) liveObservers() []*Observer {
	e.mu.Lock()
	defer e.mu.Unlock()
	live := make([]*Observer, 0, len(e.observers))
	kept := e.observers[:0]
	for _, wp := range e.observers {
		if o := wp.Value(); o != nil {
			live = append(live, o)
			kept = append(kept, wp)
		}
	}
	clear(e.observers[len(kept):])
	e.observers = kept
	return live
}

// Invalidate makes every later operation on the element fail with
// ErrInvalidElement.
func (e *Element) Invalidate() {
	if !e.invalid.Swap(true) {
		e.tree.log.Debug().Int64("element", int64(e.id)).Msg("element invalidated")
	}
}

// Revalidate clears a previous Invalidate.
func (e *Element) Revalidate() { e.invalid.Store(false) }

// IsValid reports whether the element has not been invalidated.
func (e *Element) IsValid() bool { return !e.invalid.Load() }

func (e *Element) check() error {
	if e.invalid.Load() {
		return fmt.Errorf("element %d: %w", e.id, ErrInvalidElement)
	}
	return nil
}

// Inspect returns a short description such as "AXWindow (id 3)".
func (e *Element) Inspect() string {
	role := "UIElement"
	if v, ok := e.attrs.Get(AttrRole); ok {
		if s, err := v.AsString(); err == nil {
			role = s
		}
	}
	return fmt.Sprintf("%s (id %d)", role, e.id)
}

func (e *Element) String() string {
	return fmt.Sprintf("Element(id %d, pid %d, %s)", e.id, e.pid, e.attrs)
}

// SameElement reports whether a and b are the same element. Identity is the
// element ID; attribute contents are not compared.
func SameElement(a, b UIElement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func BoolAttribute(el UIElement, attr Attribute) (bool, bool, error) {
	return typedAttribute(el, attr, Value.AsBool)
}

func StringAttribute(el UIElement, attr Attribute) (string, bool, error) {
	return typedAttribute(el, attr, Value.AsString)
}

func PointAttribute(el UIElement, attr Attribute) (Point, bool, error) {
	return typedAttribute(el, attr, Value.AsPoint)
}

func SizeAttribute(el UIElement, attr Attribute) (Size, bool, error) {
	return typedAttribute(el, attr, Value.AsSize)
}

func RectAttribute(el UIElement, attr Attribute) (Rect, bool, error) {
	return typedAttribute(el, attr, Value.AsRect)
}

func ElementAttribute(el UIElement, attr Attribute) (UIElement, bool, error) {
	return typedAttribute(el, attr, Value.AsElement)
}

func ElementsAttribute(el UIElement, attr Attribute) ([]UIElement, bool, error) {
	return typedAttribute(el, attr, Value.AsElements)
}

func typedAttribute[T any](el UIElement, attr Attribute, as func(Value) (T, error)) (T, bool, error) {
	var zero T
	v, ok, err := el.Attribute(attr)
	if err != nil || !ok {
		return zero, false, err
	}
	t, err := as(v)
	if err != nil {
		return zero, false, Wrapf(err, "%s of element %d", attr, el.ID())
	}
	return t, true, nil
}
