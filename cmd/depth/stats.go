package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/depth.report/internal/depthstats"
	"github.com/banshee-data/depth.report/internal/units"
)

// readDepthImage reads a little-endian float32 image of w x h meters.
func readDepthImage(path string, w, h int) (depthstats.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return depthstats.Image{}, err
	}
	defer f.Close()
	img := depthstats.NewImage(w, h)
	if err := binary.Read(f, binary.LittleEndian, img.Pix); err != nil {
		return depthstats.Image{}, fmt.Errorf("read %s as %dx%d float32: %w", path, w, h, err)
	}
	return img, nil
}

type statsOutput struct {
	depthstats.Stats
	Units    string   `json:"units"`
	InRange  bool     `json:"in_range"`
	Feedback []string `json:"feedback"`
}

func handleStats(args []string, stdout io.Writer) error {
	fs := newFlagSet("stats", stdout)
	path := fs.String("depth", "", "Raw little-endian float32 depth image in meters (required)")
	width := fs.Int("width", 0, "Image width in pixels")
	height := fs.Int("height", 0, "Image height in pixels")
	unit := fs.String("units", units.Meters, "Units for mean and deviation: "+units.GetValidUnitsString())
	configPath := fs.String("config", "", "Depth tuning JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !units.IsValid(*unit) {
		return fmt.Errorf("invalid units %q, want one of %s", *unit, units.GetValidUnitsString())
	}
	if *path == "" || *width <= 0 || *height <= 0 {
		fmt.Fprintln(stdout, "Error: -depth, -width and -height are required")
		fs.Usage()
		return errUsage
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		return err
	}
	img, err := readDepthImage(*path, *width, *height)
	if err != nil {
		return err
	}
	r := depthstats.NewRunner(depthstats.RunnerConfig{Settings: settings})
	res, _ := r.Update(img)

	// Thresholds are evaluated in meters; only the printed values convert.
	st := res.Stats
	st.Mean = units.ConvertLength(st.Mean, *unit)
	st.StdPop = units.ConvertLength(st.StdPop, *unit)
	st.StdSample = units.ConvertLength(st.StdSample, *unit)
	return writeJSON(stdout, statsOutput{Stats: st, Units: *unit, InRange: res.InRange, Feedback: res.Feedback})
}
