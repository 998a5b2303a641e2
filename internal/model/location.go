package model

import "math"

// Location represents a point in the level.
// Value type, passed by value (immutable).
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y, z float64) Location {
	return Location{X: x, Y: y, Z: z}
}

// WithCoordinates returns a new Location with updated coordinates (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared returns the squared Euclidean distance to another point.
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the Euclidean distance to another point.
func (l Location) Distance(other Location) float64 {
	return math.Sqrt(l.DistanceSquared(other))
}

// Positioned is anything that has a location and a route progress value.
type Positioned interface {
	Location() Location
	Progress() float64
}

// MaxD returns the hybrid director distance between two actors: the larger of
// their Euclidean distance and their route progress difference.
func MaxD(a, b Positioned) float64 {
	return math.Max(a.Location().Distance(b.Location()), math.Abs(a.Progress()-b.Progress()))
}
