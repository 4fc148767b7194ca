package passthrough

import "math"

// LensDistortion holds radial-tangential (radtan) coefficients. The
// headset reports LENS_DISTORTION as [k1, k2, p1, p2, k3].
type LensDistortion struct {
	K1, K2 float64
	P1, P2 float64
	K3     float64
}

// DistortionFromCoefficients builds a LensDistortion from a raw coefficient
// array in [k1, k2, p1, p2, k3] order. Fewer than four values means no
// distortion; K3 is optional.
func DistortionFromCoefficients(c []float64) LensDistortion {
	switch {
	case len(c) >= 5:
		return LensDistortion{K1: c[0], K2: c[1], P1: c[2], P2: c[3], K3: c[4]}
	case len(c) == 4:
		return LensDistortion{K1: c[0], K2: c[1], P1: c[2], P2: c[3]}
	}
	return LensDistortion{}
}

// IsZero reports whether d leaves every point unchanged.
func (d LensDistortion) IsZero() bool { return d == LensDistortion{} }

// Distort applies the lens model to a point on the normalized image plane.
func (d LensDistortion) Distort(x, y float64) (float64, float64) {
	r2 := x*x + y*y
	radial := 1 + r2*(d.K1+r2*(d.K2+r2*d.K3))
	xd := x*radial + 2*d.P1*x*y + d.P2*(r2+2*x*x)
	yd := y*radial + d.P1*(r2+2*y*y) + 2*d.P2*x*y
	return xd, yd
}

// undistortTolerance stops the fixed-point iteration early once the
// correction falls below it.
const undistortTolerance = 1e-12

// Undistort inverts Distort by fixed-point iteration, running at most
// iterations steps.
func (d LensDistortion) Undistort(xd, yd float64, iterations int) (float64, float64) {
	if d.IsZero() {
		return xd, yd
	}
	x, y := xd, yd
	for i := 0; i < iterations; i++ {
		r2 := x*x + y*y
		radial := 1 + r2*(d.K1+r2*(d.K2+r2*d.K3))
		if radial == 0 {
			break
		}
		dx := 2*d.P1*x*y + d.P2*(r2+2*x*x)
		dy := d.P1*(r2+2*y*y) + 2*d.P2*x*y
		nx := (xd - dx) / radial
		ny := (yd - dy) / radial
		done := math.Abs(nx-x) < undistortTolerance && math.Abs(ny-y) < undistortTolerance
		x, y = nx, ny
		if done {
			break
		}
	}
	return x, y
}

// UndistortPixel maps a pixel of the raw camera image to where it would
// fall under an ideal pinhole camera with the same intrinsics.
func UndistortPixel(intr CameraIntrinsics, d LensDistortion, px, py float64, iterations int) (float64, float64) {
	x, y := intr.normalize(px, py)
	x, y = d.Undistort(x, y, iterations)
	return intr.denormalize(x, y)
}

// DistortPixel is the inverse of UndistortPixel.
func DistortPixel(intr CameraIntrinsics, d LensDistortion, px, py float64) (float64, float64) {
	x, y := intr.normalize(px, py)
	x, y = d.Distort(x, y)
	return intr.denormalize(x, y)
}
