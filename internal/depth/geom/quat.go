package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quat is a rotation quaternion stored in engine component order.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quat{W: 1}

func (q Quat) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quat {
	return Quat{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Mul returns the Hamilton product q*r: r is applied first, then q.
func (q Quat) Mul(r Quat) Quat {
	return fromNumber(quat.Mul(q.number(), r.number()))
}

// Inverse returns the multiplicative inverse of q.
func (q Quat) Inverse() Quat {
	return fromNumber(quat.Inv(q.number()))
}

// Norm returns the quaternion magnitude.
func (q Quat) Norm() float64 {
	return quat.Abs(q.number())
}

// Normalized returns q scaled to unit length. The zero quaternion maps to
// the identity rotation.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n == 0 {
		return IdentityQuat
	}
	return fromNumber(quat.Scale(1/n, q.number()))
}

// Dot returns the 4D dot product of q and r.
func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return r3.Rotation(q.Normalized().number()).Rotate(v)
}

// FromTracking converts a right-handed tracking-space rotation (OpenXR) into
// the engine's left-handed convention by negating X and Y.
func (q Quat) FromTracking() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: q.Z, W: q.W}
}

// AngleTo returns the angle in degrees of the rotation taking q to r.
func (q Quat) AngleTo(r Quat) float64 {
	d := math.Abs(q.Normalized().Dot(r.Normalized()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d) * 180 / math.Pi
}

// AxisAngle returns the rotation of deg degrees about axis.
func AxisAngle(axis Vec3, deg float64) Quat {
	if deg == 0 {
		return IdentityQuat
	}
	return fromNumber(quat.Number(r3.NewRotation(deg*math.Pi/180, axis)))
}

// Euler builds a rotation from engine Euler angles in degrees. The Z
// rotation is applied first, then X, then Y.
func Euler(x, y, z float64) Quat {
	qx := AxisAngle(Right, x)
	qy := AxisAngle(Up, y)
	qz := AxisAngle(Forward, z)
	return qy.Mul(qx).Mul(qz)
}

// EulerVec is Euler taking its angles from a vector.
func EulerVec(v Vec3) Quat { return Euler(v.X, v.Y, v.Z) }

// EulerAngles decomposes q into engine Euler angles in degrees, each in
// [0, 360). It is the inverse of Euler up to angle wrapping and the gimbal
// singularity at X = ±90°, where Z is reported as 0.
func (q Quat) EulerAngles() Vec3 {
	m := Rotate(q)
	sx := -m.At(1, 2)
	if sx > 1 {
		sx = 1
	} else if sx < -1 {
		sx = -1
	}
	x := math.Asin(sx)

	var y, z float64
	if math.Abs(sx) < 1-1e-9 {
		y = math.Atan2(m.At(0, 2), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(1, 1))
	} else {
		y = math.Atan2(-m.At(2, 0), m.At(0, 0))
		z = 0
	}
	return V(wrapDegrees(x*180/math.Pi), wrapDegrees(y*180/math.Pi), wrapDegrees(z*180/math.Pi))
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}
