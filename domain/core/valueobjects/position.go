package valueobjects

import (
	"math"

	pkgerrors "lineage-backend/pkg/errors"
)

// Position is a value object representing node coordinates in 2D layout space
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isFinite(x) || !isFinite(y) {
		return Position{}, pkgerrors.NewValidation("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal within a fixed epsilon
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon && math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Midpoint calculates the midpoint between two positions
func (p Position) Midpoint(other Position) Position {
	return Position{
		x: (p.x + other.x) / 2,
		y: (p.y + other.y) / 2,
	}
}

// Velocity is a value object representing a node's simulation velocity
type Velocity struct {
	dx float64
	dy float64
}

// NewVelocity creates a velocity with validation
func NewVelocity(dx, dy float64) (Velocity, error) {
	if !isFinite(dx) || !isFinite(dy) {
		return Velocity{}, pkgerrors.NewValidation("invalid velocity: must be finite numbers")
	}
	return Velocity{dx: dx, dy: dy}, nil
}

// DX returns the X component
func (v Velocity) DX() float64 {
	return v.dx
}

// DY returns the Y component
func (v Velocity) DY() float64 {
	return v.dy
}

// Scale returns the velocity scaled by a factor
func (v Velocity) Scale(factor float64) Velocity {
	return Velocity{dx: v.dx * factor, dy: v.dy * factor}
}

// Magnitude returns the speed
func (v Velocity) Magnitude() float64 {
	return math.Sqrt(v.dx*v.dx + v.dy*v.dy)
}

// isFinite checks if a coordinate is a valid finite number
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
