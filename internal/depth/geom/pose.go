package geom

import "gonum.org/v1/gonum/spatial/r3"

// Pose is a rigid transform: rotate by Rotation, then translate by Position.
type Pose struct {
	Position Vec3
	Rotation Quat
}

// IdentityPose leaves points unchanged.
var IdentityPose = Pose{Rotation: IdentityQuat}

// Mul composes p and q so that (p.Mul(q)).TransformPoint(x) equals
// p.TransformPoint(q.TransformPoint(x)).
func (p Pose) Mul(q Pose) Pose {
	return Pose{
		Position: r3.Add(p.Position, p.Rotation.Rotate(q.Position)),
		Rotation: p.Rotation.Mul(q.Rotation),
	}
}

// Inverse returns the pose undoing p.
func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(r3.Scale(-1, p.Position)),
		Rotation: inv,
	}
}

// TransformPoint maps x from the pose's local frame into its parent frame.
func (p Pose) TransformPoint(x Vec3) Vec3 {
	return r3.Add(p.Position, p.Rotation.Rotate(x))
}

// Forward returns the pose's +Z axis in the parent frame.
func (p Pose) Forward() Vec3 { return p.Rotation.Rotate(Forward) }

// Matrix returns the pose as a 4×4 transform.
func (p Pose) Matrix() Mat4 {
	return TRS(p.Position, p.Rotation, V(1, 1, 1))
}
