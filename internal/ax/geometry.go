package ax

import "fmt"

// Point is a screen coordinate in points.
type Point struct {
	X, Y float64
}

// Size is a width/height extent in points.
type Size struct {
	Width, Height float64
}

// Rect is an origin plus a size, matching CGRect.
type Rect struct {
	Origin Point
	Size   Size
}

// R builds a Rect from x, y, width and height.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// Bounds returns the rect as rounded [x, y, w, h] integers.
func (r Rect) Bounds() [4]int {
	return [4]int{round(r.Origin.X), round(r.Origin.Y), round(r.Size.Width), round(r.Size.Height)}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

func (s Size) String() string { return fmt.Sprintf("(%g, %g)", s.Width, s.Height) }

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
