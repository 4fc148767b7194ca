package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/banshee-data/depth.report/internal/config"
	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/provider"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
	"github.com/banshee-data/depth.report/internal/depthstats"
	"github.com/banshee-data/depth.report/internal/passthrough"
	"github.com/banshee-data/depth.report/internal/timeutil"
)

const (
	framePeriod = time.Second / 72
	ipd         = 0.064
)

// synthHead is a head turning in place at a constant rate. Depth frames are
// captured one display frame before they are rendered. Eye anchors report
// the render-time eye positions.
type synthHead struct {
	frame   int
	yawRate float64 // degrees per frame
	fov     reproject.FovTangents
	near    float64
	far     float64
	dropped map[int]bool
}

var _ provider.EyeAnchorSource = (*synthHead)(nil)

func (h *synthHead) yaw(frame int) geom.Quat {
	return geom.Euler(0, h.yawRate*float64(frame), 0)
}

func (h *synthHead) Supported() bool                { return true }
func (h *synthHead) PermissionGranted() bool        { return true }
func (h *synthHead) Setup(bool) error               { return nil }
func (h *synthHead) Shutdown() error                { return nil }
func (h *synthHead) SetRendering(bool) error        { return nil }
func (h *synthHead) SetHandRemoval(bool) error      { return nil }
func (h *synthHead) TextureAvailable() bool         { return !h.dropped[h.frame] }
func (h *synthHead) SymmetricProjection() bool      { return false }
func (h *synthHead) TrackingSpace() geom.Mat4       { return geom.Identity() }
func (h *synthHead) RenderOrientation() geom.Quat   { return h.yaw(h.frame) }
func (h *synthHead) EyeFov(reproject.Eye) (reproject.FovTangents, bool) {
	return h.fov, true
}

func eyePosition(eye reproject.Eye) geom.Vec3 {
	x := -ipd / 2
	if eye == reproject.RightEye {
		x = ipd / 2
	}
	return geom.V(x, 1.6, 0)
}

func (h *synthHead) EyeAnchor(eye reproject.Eye) (geom.Vec3, bool) {
	return eyePosition(eye), true
}

func (h *synthHead) FrameDescriptor(eye reproject.Eye) (reproject.FrameDescriptor, error) {
	return reproject.FrameDescriptor{
		Fov:            h.fov,
		NearZ:          h.near,
		FarZ:           h.far,
		CreatePose:     geom.Pose{Position: eyePosition(eye), Rotation: h.yaw(h.frame - 1)},
		TimestampNanos: int64(h.frame-1) * int64(framePeriod),
	}, nil
}

// handImage is a flat hand at distance d filling the centre of a 64x64
// depth image, tilted by tilt meters across its width.
func handImage(d, tilt float64) depthstats.Image {
	img := depthstats.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := float32(math.NaN())
			if x >= 16 && x < 48 && y >= 16 && y < 48 {
				v = float32(d + tilt*(float64(x-32)/32))
			}
			img.Set(x, y, v)
		}
	}
	return img
}

func grayFrame(level uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 0xff})
		}
	}
	return img
}

type simulateOutput struct {
	Session       string  `json:"session"`
	Published     int     `json:"published_frames"`
	Dropped       int     `json:"dropped_frames"`
	ThresholdsMet int     `json:"thresholds_met"`
	Brightness    float64 `json:"brightness"`
}

func handleSimulate(args []string, stdout io.Writer) error {
	fs := newFlagSet("simulate", stdout)
	dbPath := fs.String("db", "depth.db", "Session database path")
	frames := fs.Int("frames", 144, "Number of display frames")
	yawRate := fs.Float64("yaw-rate", 0.5, "Head yaw in degrees per frame")
	fovFlag := fs.String("fov", "45,45,45,45", "Depth and render FOV half-angles in degrees as left,right,up,down")
	near := fs.Float64("near", 0.1, "Depth near plane in meters")
	far := fs.Float64("far", math.Inf(1), "Depth far plane in meters")
	dropEvery := fs.Int("drop-every", 0, "Drop the depth texture every N frames (0 keeps all)")
	charsPath := fs.String("characteristics", "", "Camera characteristics JSON whose intrinsics are stored with the session")
	threeDoF := fs.Bool("3dof", true, "Also compute the 3DOF screen-space matrices")
	name := fs.String("name", "simulation", "Session name")
	configPath := fs.String("config", "", "Depth tuning JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		return err
	}
	settings.Enable3DoF = config.PtrBool(*threeDoF)
	fov, err := parseFov(*fovFlag, true)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	clock := timeutil.NewMockClock(time.Unix(0, 0).UTC())
	session := &db.Session{Name: *name, Device: "synthetic", StartedAt: clock.Now()}
	if err := database.CreateSession(ctx, session); err != nil {
		return err
	}
	if *charsPath != "" {
		chars, err := loadCharacteristics(*charsPath)
		if err != nil {
			return err
		}
		cam := passthrough.NewCamera(chars)
		for _, eye := range []passthrough.Eye{passthrough.Left, passthrough.Right} {
			intr, err := cam.Intrinsics(eye)
			if err != nil {
				return err
			}
			if err := database.SaveIntrinsics(ctx, session.ID, eye, intr); err != nil {
				return err
			}
		}
	}
	recorder, err := database.NewSessionRecorder(ctx, session.ID)
	if err != nil {
		return err
	}

	head := &synthHead{yawRate: *yawRate, fov: fov, near: *near, far: *far, dropped: map[int]bool{}}
	if *dropEvery > 0 {
		for f := *dropEvery; f <= *frames; f += *dropEvery {
			head.dropped[f] = true
		}
	}
	p := provider.New(provider.Config{Depth: head, Render: head, Settings: settings, Recorder: recorder})
	if err := p.Enable(); err != nil {
		return err
	}

	out := simulateOutput{Session: session.ID}
	runner := depthstats.NewRunner(depthstats.RunnerConfig{
		Settings:       settings,
		Clock:          clock,
		OnThresholdMet: func(depthstats.Stats) { out.ThresholdsMet++ },
	})
	brightness := passthrough.NewBrightnessEstimator(clock, settings.GetBrightnessRefresh(), settings.GetBrightnessBuffer())

	for f := 1; f <= *frames; f++ {
		head.frame = f
		clock.Advance(framePeriod)

		_, published, err := p.Update(ctx)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}
		if published {
			out.Published++
		} else if head.dropped[f] {
			out.Dropped++
		}

		// The hand approaches from 35cm to 15cm and flattens on the way.
		progress := float64(f) / float64(*frames)
		hand := handImage(0.35-0.2*progress, 0.03*(1-progress))
		if res, ok := runner.Update(hand); ok {
			if err := database.RecordStats(ctx, session.ID, clock.Now(), res); err != nil {
				return err
			}
		}
		brightness.Sample(grayFrame(uint8(64 + f%128)))
	}
	if err := p.Disable(); err != nil {
		return err
	}
	if err := database.EndSession(ctx, session.ID, clock.Now()); err != nil {
		return err
	}
	out.Brightness = brightness.Level()
	return writeJSON(stdout, out)
}
