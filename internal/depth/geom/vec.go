package geom

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is a 3D vector in meters (positions) or unitless (directions).
type Vec3 = r3.Vec

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Common axes.
var (
	Right   = V(1, 0, 0)
	Up      = V(0, 1, 0)
	Forward = V(0, 0, 1)
)

// Ray is a half-line starting at Origin. Direction is not required to be
// normalized; callers that need unit length should call Normalized.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point Origin + t*Direction.
func (r Ray) At(t float64) Vec3 {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// Normalized returns r with a unit-length direction. A zero direction is
// returned unchanged.
func (r Ray) Normalized() Ray {
	if r3.Norm(r.Direction) == 0 {
		return r
	}
	return Ray{Origin: r.Origin, Direction: r3.Unit(r.Direction)}
}
