package report

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
)

// ReplaySummary compares recorded matrices with ones recomputed from the
// recorded descriptors.
type ReplaySummary struct {
	Frames int `json:"frames"`
	// MaxDeviation6DOF and MaxDeviation3DOF are the largest element-wise
	// differences seen. A custom tracking space shows up as 6DOF deviation.
	MaxDeviation6DOF float64 `json:"max_deviation_6dof"`
	MaxDeviation3DOF float64 `json:"max_deviation_3dof"`
	MeanRotationDeg  float64 `json:"mean_rotation_deg"`
	MaxRotationDeg   float64 `json:"max_rotation_deg"`
}

func maxAbsDiff(a, b geom.Mat4) float64 {
	var d float64
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return d
}

// Replay recomputes every recorded frame's matrices.
func Replay(frames []db.FrameRecord) ReplaySummary {
	var s ReplaySummary
	seen := make(map[uint64]bool)
	for _, f := range frames {
		seen[f.Frame] = true
		if f.Reprojection != nil {
			m := reproject.Compute6DOFReprojection(f.Descriptor)
			s.MaxDeviation6DOF = math.Max(s.MaxDeviation6DOF, maxAbsDiff(m, *f.Reprojection))
		}
		if f.Reprojection3DOF != nil {
			m := reproject.ComputeReprojection(f.Descriptor, f.RenderFov, f.RenderOrientation)
			s.MaxDeviation3DOF = math.Max(s.MaxDeviation3DOF, maxAbsDiff(m, *f.Reprojection3DOF))
		}
	}
	s.Frames = len(seen)

	deltas := RotationDeltas(frames)
	if len(deltas) > 0 {
		degs := make([]float64, len(deltas))
		for i, d := range deltas {
			degs[i] = d.Degrees
			s.MaxRotationDeg = math.Max(s.MaxRotationDeg, d.Degrees)
		}
		s.MeanRotationDeg = stat.Mean(degs, nil)
	}
	return s
}
