package reproject

import (
	"math"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

// FovTangents holds the tangents of the four half-angles of a frustum, each
// measured from the view axis. All four are positive for a frustum that
// contains its own axis.
type FovTangents struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Up    float64 `json:"up"`
	Down  float64 `json:"down"`
}

// FovFromAngles builds FovTangents from half-angles in radians.
func FovFromAngles(left, right, up, down float64) FovTangents {
	return FovTangents{
		Left:  math.Tan(left),
		Right: math.Tan(right),
		Up:    math.Tan(up),
		Down:  math.Tan(down),
	}
}

// Width returns Left+Right, the frustum width at unit distance.
func (f FovTangents) Width() float64 { return f.Right + f.Left }

// Height returns Up+Down, the frustum height at unit distance.
func (f FovTangents) Height() float64 { return f.Up + f.Down }

// IsSymmetric reports whether the frustum is centred on its axis.
func (f FovTangents) IsSymmetric() bool {
	return f.Left == f.Right && f.Up == f.Down
}

// Eye indexes the two views of a stereo frame.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

// NumEyes is the number of stereo views.
const NumEyes = 2

func (e Eye) String() string {
	switch e {
	case LeftEye:
		return "left"
	case RightEye:
		return "right"
	default:
		return "unknown"
	}
}

// FrameDescriptor is the per-eye depth camera metadata captured alongside a
// depth frame. It is immutable once captured.
//
// CreatePose is the depth camera pose at capture time exactly as the depth
// runtime reports it. FarZ may be +Inf.
type FrameDescriptor struct {
	Fov            FovTangents
	NearZ          float64
	FarZ           float64
	CreatePose     geom.Pose
	TimestampNanos int64
}

// HasInfiniteFar reports whether the descriptor uses an infinite far plane.
func (d FrameDescriptor) HasInfiniteFar() bool { return math.IsInf(d.FarZ, 1) }
