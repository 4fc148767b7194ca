// Package geom holds the small linear-algebra vocabulary shared by the depth
// and passthrough packages: vectors, quaternions, row-major 4×4 matrices,
// poses and rays.
//
// Conventions follow the host engine: left-handed, Y up, camera looking down
// +Z. Euler angles are degrees applied Z, then X, then Y. Matrices are stored
// row-major ([16]float64, m[row*4+col]).
//
// Tracking poses reported by the depth sensor are right-handed (OpenXR);
// FromTracking converts them.
package geom
