// Package core provides the cell buffer, geometry helpers and input
// actions shared by the game and its front ends. It has no external
// dependencies so game logic stays pure and testable.
package core

// Rect is an axis-aligned area of the screen grid.
type Rect struct {
	X, Y int // Top-left corner
	W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Inner returns r shrunk by one cell on every side, the area inside a
// frame drawn on r.
func (r Rect) Inner() Rect {
	return Rect{X: r.X + 1, Y: r.Y + 1, W: max(r.W-2, 0), H: max(r.H-2, 0)}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
