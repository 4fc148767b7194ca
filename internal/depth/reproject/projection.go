package reproject

import (
	"math"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

var flipZ = geom.V(1, 1, -1)

// BuildProjection returns the off-axis perspective projection for fov with the
// given clip planes. An infinite far plane uses the limit form of the depth
// row (c = -1, d = -2·near).
func BuildProjection(fov FovTangents, near, far float64) geom.Mat4 {
	x := 2.0 / (fov.Right + fov.Left)
	y := 2.0 / (fov.Up + fov.Down)
	a := (fov.Right - fov.Left) / (fov.Right + fov.Left)
	b := (fov.Up - fov.Down) / (fov.Up + fov.Down)

	var c, d float64
	if math.IsInf(far, 1) {
		c = -1.0
		d = -2.0 * near
	} else {
		c = -(far + near) / (far - near)
		d = -(2.0 * far * near) / (far - near)
	}

	return geom.Mat4{
		x, 0, a, 0,
		0, y, b, 0,
		0, 0, c, d,
		0, 0, -1, 0,
	}
}

// BuildView returns the world-to-camera matrix for a camera at position with
// the given rotation. The (1,1,-1) scale converts the engine's +Z-forward
// camera frame into the -Z-forward frame BuildProjection expects.
func BuildView(position geom.Vec3, rotation geom.Quat) geom.Mat4 {
	return geom.TRS(position, rotation, flipZ).Inverse()
}

// BuildDepthCameraMatrices returns the projection and view matrices of the
// depth camera that captured desc.
func BuildDepthCameraMatrices(desc FrameDescriptor) (proj, view geom.Mat4) {
	proj = BuildProjection(desc.Fov, desc.NearZ, desc.FarZ)
	view = BuildView(desc.CreatePose.Position, desc.CreatePose.Rotation)
	return proj, view
}

// InverseProjection returns the inverse of the depth camera projection, used
// by shaders that turn depth samples back into view-space positions.
func InverseProjection(desc FrameDescriptor) geom.Mat4 {
	return BuildProjection(desc.Fov, desc.NearZ, desc.FarZ).Inverse()
}

// UnprojectDepthSample maps a depth texture sample back to a world position.
// u and v are texture coordinates in [0,1]; depth is the raw texture value in
// [0,1].
func UnprojectDepthSample(desc FrameDescriptor, u, v, depth float64) geom.Vec3 {
	inv := Compute6DOFReprojection(desc).Inverse()
	return inv.MulPoint(geom.V(2*u-1, 2*v-1, TextureDepthToNDC(depth)))
}

// ViewDistance returns how far in front of the depth camera that captured
// desc the world point lies, measured along the camera's forward axis.
func ViewDistance(desc FrameDescriptor, world geom.Vec3) float64 {
	return -BuildView(desc.CreatePose.Position, desc.CreatePose.Rotation).MulPoint3x4(world).Z
}

// ProjectToDepthTexture maps a world point into depth texture space. It
// returns texture coordinates u, v, the raw depth value the texture would hold
// for that point, and whether the point lies in front of the depth camera.
func ProjectToDepthTexture(desc FrameDescriptor, world geom.Vec3) (u, v, depth float64, ok bool) {
	clip := Compute6DOFReprojection(desc).MulVec4([4]float64{world.X, world.Y, world.Z, 1})
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	return (nx + 1) / 2, (ny + 1) / 2, (nz + 1) / 2, true
}
