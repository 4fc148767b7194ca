package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
)

// RotationDelta is the head rotation between depth capture and render for
// one frame.
type RotationDelta struct {
	Frame   uint64
	Degrees float64
}

// RotationDeltas returns one delta per frame, taken from the left eye.
// Frames recorded without 3DOF matrices carry no render orientation and are
// skipped.
func RotationDeltas(frames []db.FrameRecord) []RotationDelta {
	var out []RotationDelta
	for _, f := range frames {
		if f.Eye != reproject.LeftEye || f.Reprojection3DOF == nil {
			continue
		}
		out = append(out, RotationDelta{
			Frame:   f.Frame,
			Degrees: f.Descriptor.CreatePose.Rotation.AngleTo(f.RenderOrientation),
		})
	}
	return out
}

var deltaColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}

// RotationPlot plots deltas against frame number.
func RotationPlot(title string, deltas []RotationDelta) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Rotation since capture (deg)"
	p.Y.Min = 0

	if len(deltas) == 0 {
		return p, nil
	}
	pts := make(plotter.XYs, len(deltas))
	for i, d := range deltas {
		pts[i] = plotter.XY{X: float64(d.Frame), Y: d.Degrees}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = deltaColor
	line.Width = vg.Points(1)
	p.Add(line, plotter.NewGrid())
	p.Legend.Add("left eye", line)
	return p, nil
}

// WriteRotationPNG renders RotationPlot as a PNG to w.
func WriteRotationPNG(w io.Writer, title string, deltas []RotationDelta) error {
	p, err := RotationPlot(title, deltas)
	if err != nil {
		return fmt.Errorf("build rotation plot: %w", err)
	}
	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render rotation plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write rotation plot: %w", err)
	}
	return nil
}
