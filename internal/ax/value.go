package ax

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindBool
	KindString
	KindPoint
	KindSize
	KindRect
	KindElement
	KindElements
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindBool:     "bool",
	KindString:   "string",
	KindPoint:    "point",
	KindSize:     "size",
	KindRect:     "rect",
	KindElement:  "element",
	KindElements: "elements",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an attribute value. The zero Value is KindInvalid.
type Value struct {
	kind ValueKind
	b    bool
	s    string
	p    Point
	sz   Size
	r    Rect
	el   UIElement
	els  []UIElement
}

func BoolValue(b bool) Value     { return Value{kind: KindBool, b: b} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func PointValue(p Point) Value   { return Value{kind: KindPoint, p: p} }
func SizeValue(s Size) Value     { return Value{kind: KindSize, sz: s} }
func RectValue(r Rect) Value     { return Value{kind: KindRect, r: r} }

// ElementValue wraps an element reference. A nil element yields the zero
// Value.
func ElementValue(el UIElement) Value {
	if el == nil {
		return Value{}
	}
	return Value{kind: KindElement, el: el}
}

// ElementsValue wraps a list of element references. The slice is copied.
func ElementsValue(els []UIElement) Value {
	cp := make([]UIElement, len(els))
	copy(cp, els)
	return Value{kind: KindElements, els: cp}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether v holds anything.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, mismatch(KindBool, v.kind)
	}
	return v.b, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", mismatch(KindString, v.kind)
	}
	return v.s, nil
}

func (v Value) AsPoint() (Point, error) {
	if v.kind != KindPoint {
		return Point{}, mismatch(KindPoint, v.kind)
	}
	return v.p, nil
}

func (v Value) AsSize() (Size, error) {
	if v.kind != KindSize {
		return Size{}, mismatch(KindSize, v.kind)
	}
	return v.sz, nil
}

func (v Value) AsRect() (Rect, error) {
	if v.kind != KindRect {
		return Rect{}, mismatch(KindRect, v.kind)
	}
	return v.r, nil
}

func (v Value) AsElement() (UIElement, error) {
	if v.kind != KindElement {
		return nil, mismatch(KindElement, v.kind)
	}
	return v.el, nil
}

// AsElements returns a copy of the element list.
func (v Value) AsElements() ([]UIElement, error) {
	if v.kind != KindElements {
		return nil, mismatch(KindElements, v.kind)
	}
	cp := make([]UIElement, len(v.els))
	copy(cp, v.els)
	return cp, nil
}

// Equal compares two values. Elements compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindPoint:
		return v.p == o.p
	case KindSize:
		return v.sz == o.sz
	case KindRect:
		return v.r == o.r
	case KindElement:
		return SameElement(v.el, o.el)
	case KindElements:
		if len(v.els) != len(o.els) {
			return false
		}
		for i := range v.els {
			if !SameElement(v.els[i], o.els[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return strconv.Quote(v.s)
	case KindPoint:
		return v.p.String()
	case KindSize:
		return v.sz.String()
	case KindRect:
		return v.r.String()
	case KindElement:
		return describe(v.el)
	case KindElements:
		parts := make([]string, len(v.els))
		for i, el := range v.els {
			parts[i] = describe(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<invalid>"
	}
}

func describe(el UIElement) string {
	if el == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d", el.ID())
}
