// Package geom provides the integer geometry shared by the tiling tree,
// the render pass and the output layout.
//
// All coordinates are in layout units (pixels before output scaling).
// Division always truncates toward zero; callers that subdivide a box may
// observe a trailing gap of up to n-1 units, which is left uncorrected.
package geom

import "fmt"

// Point is an integer offset.
type Point struct {
	X, Y int
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Box is an axis-aligned rectangle with its origin at the top-left corner.
type Box struct {
	X, Y          int
	Width, Height int
}

// Area returns Width*Height, or 0 for an empty box.
func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.Width * b.Height
}

// Empty reports whether the box covers no area.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Origin returns the top-left corner.
func (b Box) Origin() Point { return Point{X: b.X, Y: b.Y} }

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	b.X += dx
	b.Y += dy
	return b
}

// Contains reports whether p lies inside b.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.Width && p.Y >= b.Y && p.Y < b.Y+b.Height
}

// HalveHorizontal splits b into two horizontally adjacent halves.
// The left half is Width/2 wide; the right half takes the remainder.
func (b Box) HalveHorizontal() (left, right Box) {
	left = Box{X: b.X, Y: b.Y, Width: b.Width / 2, Height: b.Height}
	right = Box{X: b.X + left.Width, Y: b.Y, Width: b.Width - left.Width, Height: b.Height}
	return left, right
}

// HalveVertical splits b into a top and a bottom half.
// The top half is Height/2 tall; the bottom half takes the remainder.
func (b Box) HalveVertical() (top, bottom Box) {
	top = Box{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height / 2}
	bottom = Box{X: b.X, Y: b.Y + top.Height, Width: b.Width, Height: b.Height - top.Height}
	return top, bottom
}

// SliceHorizontal divides b into n columns of Width/n each, left to right.
// Returns nil when n <= 0.
func (b Box) SliceHorizontal(n int) []Box {
	if n <= 0 {
		return nil
	}
	out := make([]Box, n)
	w := b.Width / n
	for i := range out {
		out[i] = Box{X: b.X + i*w, Y: b.Y, Width: w, Height: b.Height}
	}
	return out
}

// SliceVertical divides b into n rows of Height/n each, top to bottom.
// Returns nil when n <= 0.
func (b Box) SliceVertical(n int) []Box {
	if n <= 0 {
		return nil
	}
	out := make([]Box, n)
	h := b.Height / n
	for i := range out {
		out[i] = Box{X: b.X, Y: b.Y + i*h, Width: b.Width, Height: h}
	}
	return out
}

// String formats the box as "(x,y wxh)".
func (b Box) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.Width, b.Height)
}
