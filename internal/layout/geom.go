package layout

// Geometry primitives. All coordinates are integers in database units
// (nanometers). Rectangles are axis-aligned with X0 <= X1 and Y0 <= Y1
// after Normalize.

// Point is a coordinate in database units.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Rect is an axis-aligned rectangle in database units.
type Rect struct {
	X0 int64 `json:"x0"`
	Y0 int64 `json:"y0"`
	X1 int64 `json:"x1"`
	Y1 int64 `json:"y1"`
}

// NewRect returns a normalized rectangle.
func NewRect(x0, y0, x1, y1 int64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}.Normalize()
}

// Normalize orders the corners so X0 <= X1 and Y0 <= Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() int64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() int64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Translate shifts the rectangle by the given point.
func (r Rect) Translate(p Point) Rect {
	return Rect{X0: r.X0 + p.X, Y0: r.Y0 + p.Y, X1: r.X1 + p.X, Y1: r.Y1 + p.Y}
}

// Union returns the bounding box of both rectangles.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X0: min64(r.X0, o.X0),
		Y0: min64(r.Y0, o.Y0),
		X1: max64(r.X1, o.X1),
		Y1: max64(r.Y1, o.Y1),
	}
}

// Overlaps reports whether the rectangles share area (touching edges do
// not count; electrical connection requires metal overlap).
func (r Rect) Overlaps(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Center returns the center point, rounded toward negative infinity.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Orient is a rectangular placement orientation: identity, a mirror
// across the x axis (MX flips Y), a mirror across the y axis (MY flips
// X), or both.
type Orient string

const (
	R0   Orient = "R0"
	MX   Orient = "MX"
	MY   Orient = "MY"
	R180 Orient = "R180"
)

func (o Orient) flips() (x, y bool) {
	switch o {
	case MX:
		return false, true
	case MY:
		return true, false
	case R180:
		return true, true
	}
	return false, false
}

// Apply maps p through the orientation about the origin.
func (o Orient) Apply(p Point) Point {
	fx, fy := o.flips()
	if fx {
		p.X = -p.X
	}
	if fy {
		p.Y = -p.Y
	}
	return p
}

// ApplyIn maps r through the orientation about box, so a shape inside
// box stays inside box. Mirrors are computed against the box edges,
// which keeps coordinates exact for odd extents.
func (o Orient) ApplyIn(r, box Rect) Rect {
	fx, fy := o.flips()
	if fx {
		r.X0, r.X1 = box.X0+(box.X1-r.X1), box.X0+(box.X1-r.X0)
	}
	if fy {
		r.Y0, r.Y1 = box.Y0+(box.Y1-r.Y1), box.Y0+(box.Y1-r.Y0)
	}
	return r
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
