package passthrough

import (
	"image"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

// CameraIntrinsics describes the physical characteristics of a passthrough
// camera. All values are in pixels at Resolution.
type CameraIntrinsics struct {
	FocalLength    [2]float64  `json:"focal_length"`    // fx, fy
	PrincipalPoint [2]float64  `json:"principal_point"` // cx, cy from the top-left corner
	Skew           float64     `json:"skew"`
	Resolution     image.Point `json:"resolution"`
}

// ScreenPointToCameraRay returns the camera-space ray through pixel p. The
// origin is the camera origin and the direction has Z = 1.
func ScreenPointToCameraRay(intr CameraIntrinsics, p image.Point) geom.Ray {
	return PixelToCameraRay(intr, float64(p.X), float64(p.Y))
}

// PixelToCameraRay is ScreenPointToCameraRay for sub-pixel coordinates.
// fx and fy must be non-zero.
func PixelToCameraRay(intr CameraIntrinsics, x, y float64) geom.Ray {
	return geom.Ray{
		Direction: geom.V(
			(x-intr.PrincipalPoint[0])/intr.FocalLength[0],
			(y-intr.PrincipalPoint[1])/intr.FocalLength[1],
			1,
		),
	}
}

// CameraRayToWorldRay moves a camera-space ray into world space using the
// camera's world pose.
func CameraRayToWorldRay(pose geom.Pose, ray geom.Ray) geom.Ray {
	return geom.Ray{
		Origin:    pose.Position,
		Direction: pose.Rotation.Rotate(ray.Direction),
	}
}

// normalize maps a pixel to the camera's normalized image plane.
func (intr CameraIntrinsics) normalize(x, y float64) (float64, float64) {
	return (x - intr.PrincipalPoint[0]) / intr.FocalLength[0],
		(y - intr.PrincipalPoint[1]) / intr.FocalLength[1]
}

// denormalize is the inverse of normalize.
func (intr CameraIntrinsics) denormalize(x, y float64) (float64, float64) {
	return x*intr.FocalLength[0] + intr.PrincipalPoint[0],
		y*intr.FocalLength[1] + intr.PrincipalPoint[1]
}

// Valid reports whether the intrinsics can be used for ray casting.
func (intr CameraIntrinsics) Valid() bool {
	return intr.FocalLength[0] != 0 && intr.FocalLength[1] != 0 &&
		intr.Resolution.X > 0 && intr.Resolution.Y > 0
}
