package reproject

import "github.com/banshee-data/depth.report/internal/depth/geom"

// Compute6DOFReprojection maps world positions into the depth camera's clip
// space at capture time. Per-object occlusion shaders use it.
func Compute6DOFReprojection(desc FrameDescriptor) geom.Mat4 {
	proj, view := BuildDepthCameraMatrices(desc)
	return proj.Mul(view)
}

// Compute6DOFReprojectionAt is Compute6DOFReprojection with the capture
// position replaced, for simulated runtimes that report orientation only and
// take the position from an eye anchor.
func Compute6DOFReprojectionAt(desc FrameDescriptor, position geom.Vec3) geom.Mat4 {
	proj := BuildProjection(desc.Fov, desc.NearZ, desc.FarZ)
	return proj.Mul(BuildView(position, desc.CreatePose.Rotation))
}

// BuildUnprojection maps normalized render-screen coordinates onto the render
// camera's tangent plane.
func BuildUnprojection(fov FovTangents) geom.Mat4 {
	m := geom.Identity()
	m[0] = fov.Right + fov.Left
	m[5] = fov.Up + fov.Down
	m[3] = -fov.Left
	m[7] = -fov.Down
	m[11] = 1
	return m
}

// BuildUVProjection maps the depth camera's tangent plane onto normalized
// depth texture coordinates. It is the inverse of BuildUnprojection for the
// same tangents.
func BuildUVProjection(fov FovTangents) geom.Mat4 {
	w := fov.Right + fov.Left
	h := fov.Up + fov.Down
	m := geom.Identity()
	m[0] = 1 / w
	m[5] = 1 / h
	m[3] = fov.Left / w
	m[7] = fov.Down / h
	m[11] = -1
	return m
}

// ScreenToDepthRotation returns the rotation compensating for head movement
// between depth capture and render. Both orientations are in tracking
// convention. Only rotation is corrected; translation since capture is not.
//
// The Z Euler component of the relative rotation is negated before the
// matrix is rebuilt; the two spaces differ in handedness about that axis.
func ScreenToDepthRotation(depthOrientation, renderOrientation geom.Quat) geom.Mat4 {
	screen := renderOrientation.FromTracking()
	depth := depthOrientation.FromTracking()

	euler := screen.Inverse().Mul(depth).EulerAngles()
	euler.Z = -euler.Z

	return geom.Rotate(geom.EulerVec(euler))
}

// ComputeReprojection returns the 3DOF screen-to-depth matrix: render screen
// UV → render tangent plane → rotation since capture → depth texture UV.
// Screen-space shaders use it. It must be rebuilt every frame from the current
// render orientation.
func ComputeReprojection(desc FrameDescriptor, renderFov FovTangents, renderOrientation geom.Quat) geom.Mat4 {
	screenToTangent := BuildUnprojection(renderFov)
	tangentToDepthUV := BuildUVProjection(desc.Fov)
	rotation := ScreenToDepthRotation(desc.CreatePose.Rotation, renderOrientation)

	return tangentToDepthUV.Mul(rotation).Mul(screenToTangent)
}

// ApplyTrackingSpace post-multiplies a custom tracking-space world-to-local
// transform. The identity leaves m untouched.
func ApplyTrackingSpace(m, worldToLocal geom.Mat4) geom.Mat4 {
	if worldToLocal.IsIdentity() {
		return m
	}
	return m.Mul(worldToLocal)
}

// SymmetrizeEyeFovs adjusts per-eye render tangents for runtimes rendering
// with a symmetric projection: the left eye takes the right eye's right
// tangent and the right eye takes the left eye's left tangent.
func SymmetrizeEyeFovs(left, right FovTangents) (FovTangents, FovTangents) {
	l, r := left, right
	l.Right = right.Right
	r.Left = left.Left
	return l, r
}
