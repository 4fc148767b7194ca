package passthrough

import (
	"math"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

// Corner indexes FrustumSlice corner arrays.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// FrustumSlice is the part of a camera frustum between two distances
// along the optical axis, in world space.
type FrustumSlice struct {
	Near       [4]geom.Vec3
	Far        [4]geom.Vec3
	CenterNear geom.Vec3
	CenterFar  geom.Vec3
}

// ComputeFrustumSlice returns the slice of the frustum of a camera at pose
// between nearMeters and farMeters. Distances are clamped so that
// 0 <= near <= far. It reports false when the intrinsics are unusable.
func ComputeFrustumSlice(intr CameraIntrinsics, pose geom.Pose, nearMeters, farMeters float64) (FrustumSlice, bool) {
	if !intr.Valid() {
		return FrustumSlice{}, false
	}
	near := math.Max(0, nearMeters)
	far := math.Max(near, farMeters)

	w, h := float64(intr.Resolution.X), float64(intr.Resolution.Y)
	pixels := [4][2]float64{
		TopLeft:     {0, h},
		TopRight:    {w, h},
		BottomRight: {w, 0},
		BottomLeft:  {0, 0},
	}
	var s FrustumSlice
	for i, p := range pixels {
		ray := CameraRayToWorldRay(pose, PixelToCameraRay(intr, p[0], p[1]))
		// Camera rays have unit Z, so t is distance along the optical axis.
		s.Near[i] = ray.At(near)
		s.Far[i] = ray.At(far)
	}
	axis := geom.Ray{Origin: pose.Position, Direction: pose.Forward()}
	s.CenterNear = axis.At(near)
	s.CenterFar = axis.At(far)
	return s, true
}
