package game

import "math"

type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct{ X, Y, W, H float64 }

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampCash(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > MaxCash {
		return MaxCash
	}
	return v
}

// CircleOverlapsRect reports whether a circle at c with the given radius
// intersects r. Closest-point test: clamp the center into the box and
// compare the remaining distance against the radius.
func CircleOverlapsRect(c Vec2, radius float64, r Rect) bool {
	nx := Clamp(c.X, r.X, r.X+r.W)
	ny := Clamp(c.Y, r.Y, r.Y+r.H)
	dx := c.X - nx
	dy := c.Y - ny
	return dx*dx+dy*dy <= radius*radius
}
