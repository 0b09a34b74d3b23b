package ax

import (
	"sort"
	"strings"
)

// Attributes is an unsynchronized attribute map. AXPosition and AXSize are
// never stored: they are read from and written into AXFrame.
type Attributes struct {
	values map[Attribute]Value
}

func newAttributes() *Attributes {
	return &Attributes{values: make(map[Attribute]Value)}
}

// Get returns the value of attr and whether it is present.
func (a *Attributes) Get(attr Attribute) (Value, bool) {
	switch attr {
	case AttrPosition:
		frame, ok := a.frame()
		if !ok {
			return Value{}, false
		}
		return PointValue(frame.Origin), true
	case AttrSize:
		frame, ok := a.frame()
		if !ok {
			return Value{}, false
		}
		return SizeValue(frame.Size), true
	}
	v, ok := a.values[attr]
	return v, ok
}

// Set stores v under attr. Writing AXPosition or AXSize replaces that half of
// the frame, starting from a zero frame if none is stored.
func (a *Attributes) Set(attr Attribute, v Value) error {
	switch attr {
	case AttrPosition:
		p, err := v.AsPoint()
		if err != nil {
			return err
		}
		frame, _ := a.frame()
		frame.Origin = p
		a.values[AttrFrame] = RectValue(frame)
		return nil
	case AttrSize:
		s, err := v.AsSize()
		if err != nil {
			return err
		}
		frame, _ := a.frame()
		frame.Size = s
		a.values[AttrFrame] = RectValue(frame)
		return nil
	}
	a.values[attr] = v
	return nil
}

// Remove deletes attr. Removing a derived attribute is a no-op.
func (a *Attributes) Remove(attr Attribute) {
	delete(a.values, attr)
}

func (a *Attributes) frame() (Rect, bool) {
	v, ok := a.values[AttrFrame]
	if !ok || v.kind != KindRect {
		return Rect{}, false
	}
	return v.r, true
}

func (a *Attributes) String() string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(a.values[Attribute(k)].String())
	}
	b.WriteByte(']')
	return b.String()
}
