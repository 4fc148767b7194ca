// Package reproject builds the matrices and constants that let shaders sample
// the environment depth texture from the render camera.
//
// Responsibilities: off-axis projection from FOV tangents, depth-camera view
// matrices, 6DOF reprojection (world → depth clip space), 3DOF reprojection
// (render screen UV → depth texture UV, compensating for head rotation since
// capture), and the NDC-to-linear-depth parameters.
//
// Everything here is pure. Degenerate input (for example Left+Right == 0)
// produces Inf or NaN rather than an error; callers supply frustum values
// queried from the runtime.
package reproject
