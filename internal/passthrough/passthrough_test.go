package passthrough

import (
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/timeutil"
)

const tol = 1e-9

func testIntrinsics() CameraIntrinsics {
	return CameraIntrinsics{
		FocalLength:    [2]float64{100, 100},
		PrincipalPoint: [2]float64{50, 50},
		Resolution:     image.Pt(100, 100),
	}
}

func fixture() StaticCharacteristics {
	cam := func(position int8, tx float64) StaticCamera {
		return StaticCamera{
			Floats: map[Key][]float64{
				KeyLensIntrinsicCalibration: {434.5, 434.5, 640, 480, 0},
				KeyLensPoseTranslation:      {tx, 0.01, 0.05},
				KeyLensPoseRotation:         {0, 0, 0, 1},
				KeyLensDistortion:           {0.1, -0.05, 0.001, -0.002, 0.01},
			},
			Bytes: map[Key][]int8{
				KeyCameraSource:   {cameraSourcePassthrough},
				KeyCameraPosition: {position},
			},
			Rects: map[Key]image.Rectangle{
				KeyPreCorrectionActiveArray: image.Rect(0, 0, 1280, 960),
			},
			OutputSizes: []image.Point{{1280, 960}, {640, 480}},
		}
	}
	return StaticCharacteristics{
		"0":  {Bytes: map[Key][]int8{KeyCameraSource: {1}}},
		"50": cam(cameraPositionLeft, -0.032),
		"51": cam(cameraPositionRight, 0.032),
	}
}

type countingSource struct {
	StaticCharacteristics
	floats int
}

func (c *countingSource) Floats(id string, key Key) ([]float64, error) {
	c.floats++
	return c.StaticCharacteristics.Floats(id, key)
}

func vecNear(t *testing.T, want, got geom.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func TestScreenPointToCameraRay(t *testing.T) {
	t.Parallel()
	intr := testIntrinsics()
	tests := []struct {
		name  string
		pixel image.Point
		want  geom.Vec3
	}{
		{"principal point", image.Pt(50, 50), geom.V(0, 0, 1)},
		{"one focal length right", image.Pt(150, 50), geom.V(1, 0, 1)},
		{"origin pixel", image.Pt(0, 0), geom.V(-0.5, -0.5, 1)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ray := ScreenPointToCameraRay(intr, tt.pixel)
			assert.Equal(t, geom.Vec3{}, ray.Origin)
			vecNear(t, tt.want, ray.Direction)
		})
	}
}

func TestCameraRayToWorldRay(t *testing.T) {
	t.Parallel()
	pose := geom.Pose{Position: geom.V(1, 2, 3), Rotation: geom.Euler(0, 90, 0)}
	ray := CameraRayToWorldRay(pose, geom.Ray{Direction: geom.Forward})
	assert.Equal(t, geom.V(1, 2, 3), ray.Origin)
	vecNear(t, geom.V(1, 0, 0), ray.Direction)
}

func TestCameraDiscovery(t *testing.T) {
	t.Parallel()

	t.Run("both eyes", func(t *testing.T) {
		t.Parallel()
		c := NewCamera(fixture())
		require.NoError(t, c.Init())
		id, err := c.CameraID(Left)
		require.NoError(t, err)
		assert.Equal(t, "50", id)
		id, err = c.CameraID(Right)
		require.NoError(t, err)
		assert.Equal(t, "51", id)
	})

	t.Run("missing right", func(t *testing.T) {
		t.Parallel()
		src := fixture()
		delete(src, "51")
		_, err := NewCamera(src).Intrinsics(Left)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCameraNotFound))
	})

	t.Run("unknown position", func(t *testing.T) {
		t.Parallel()
		src := fixture()
		src["52"] = StaticCamera{Bytes: map[Key][]int8{
			KeyCameraSource:   {cameraSourcePassthrough},
			KeyCameraPosition: {7},
		}}
		err := NewCamera(src).Init()
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCameraNotFound))
	})

	t.Run("multi-byte vendor key skipped", func(t *testing.T) {
		t.Parallel()
		src := fixture()
		src["52"] = StaticCamera{Bytes: map[Key][]int8{
			KeyCameraSource:   {cameraSourcePassthrough, 0},
			KeyCameraPosition: {7},
		}}
		assert.NoError(t, NewCamera(src).Init())
	})
}

func TestParseEye(t *testing.T) {
	t.Parallel()
	e, err := ParseEye(" Right ")
	require.NoError(t, err)
	assert.Equal(t, Right, e)
	assert.Equal(t, "right", e.String())
	_, err = ParseEye("centre")
	assert.Error(t, err)
}

func TestIntrinsicsCached(t *testing.T) {
	t.Parallel()
	src := &countingSource{StaticCharacteristics: fixture()}
	c := NewCamera(src)

	intr, err := c.Intrinsics(Left)
	require.NoError(t, err)
	assert.Equal(t, CameraIntrinsics{
		FocalLength:    [2]float64{434.5, 434.5},
		PrincipalPoint: [2]float64{640, 480},
		Resolution:     image.Pt(1280, 960),
	}, intr)

	again, err := c.Intrinsics(Left)
	require.NoError(t, err)
	assert.Equal(t, intr, again)
	assert.Equal(t, 1, src.floats)

	sizes, err := c.OutputSizes(Right)
	require.NoError(t, err)
	assert.Len(t, sizes, 2)
}

func TestIntrinsicsShortCalibration(t *testing.T) {
	t.Parallel()
	src := fixture()
	src["50"].Floats[KeyLensIntrinsicCalibration] = []float64{1, 2, 3}
	_, err := NewCamera(src).Intrinsics(Left)
	assert.Error(t, err)
}

func TestHeadFromCamera(t *testing.T) {
	t.Parallel()
	src := fixture()
	s, c := math.Sin(math.Pi/8), math.Cos(math.Pi/8)
	src["51"].Floats[KeyLensPoseRotation] = []float64{0, 0, s, c}
	cam := NewCamera(src)

	left, err := cam.HeadFromCamera(Left)
	require.NoError(t, err)
	vecNear(t, geom.V(-0.032, 0.01, -0.05), left.Position)
	assert.InDelta(t, 0, left.Rotation.AngleTo(geom.IdentityQuat), 1e-4)

	right, err := cam.HeadFromCamera(Right)
	require.NoError(t, err)
	want := geom.Quat{Z: -s, W: c}
	assert.InDelta(t, 0, right.Rotation.AngleTo(want), 1e-4)
}

func TestWorldPoseAndRay(t *testing.T) {
	t.Parallel()
	cam := NewCamera(fixture())

	pose, err := cam.WorldPose(Left, geom.IdentityPose)
	require.NoError(t, err)
	vecNear(t, geom.V(-0.032, 0.01, -0.05), pose.Position)
	vecNear(t, geom.V(0, 0, -1), pose.Forward())

	head := geom.Pose{Position: geom.V(0, 1.6, 0), Rotation: geom.IdentityQuat}
	ray, err := cam.ScreenPointToWorldRay(Left, image.Pt(640, 480), head)
	require.NoError(t, err)
	vecNear(t, geom.V(-0.032, 1.61, -0.05), ray.Origin)
	vecNear(t, geom.V(0, 0, -1), ray.Direction)
}

func TestDistortion(t *testing.T) {
	t.Parallel()

	assert.True(t, DistortionFromCoefficients(nil).IsZero())
	assert.Equal(t, LensDistortion{K1: 1, K2: 2, P1: 3, P2: 4}, DistortionFromCoefficients([]float64{1, 2, 3, 4}))
	assert.Equal(t, LensDistortion{K1: 1, K2: 2, P1: 3, P2: 4, K3: 5}, DistortionFromCoefficients([]float64{1, 2, 3, 4, 5}))

	// Headset metadata order is k1, k2, p1, p2, k3.
	d := DistortionFromCoefficients([]float64{0.1, -0.05, 0.001, -0.002, 0.01})
	assert.Equal(t, LensDistortion{K1: 0.1, K2: -0.05, P1: 0.001, P2: -0.002, K3: 0.01}, d)
	for _, p := range [][2]float64{{0, 0}, {0.2, -0.1}, {-0.3, 0.25}, {0.4, 0.4}} {
		xd, yd := d.Distort(p[0], p[1])
		x, y := d.Undistort(xd, yd, 50)
		assert.InDelta(t, p[0], x, 1e-9)
		assert.InDelta(t, p[1], y, 1e-9)
	}

	var none LensDistortion
	x, y := none.Undistort(0.3, 0.4, 20)
	assert.Equal(t, 0.3, x)
	assert.Equal(t, 0.4, y)

	cam := NewCamera(fixture())
	got, err := cam.Distortion(Left)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestUndistortPixelRoundTrip(t *testing.T) {
	t.Parallel()
	intr := testIntrinsics()
	d := LensDistortion{K1: 0.05, P2: 0.001}
	px, py := DistortPixel(intr, d, 80, 20)
	x, y := UndistortPixel(intr, d, px, py, 50)
	assert.InDelta(t, 80, x, 1e-6)
	assert.InDelta(t, 20, y, 1e-6)

	cx, cy := UndistortPixel(intr, d, 50, 50, 20)
	assert.InDelta(t, 50, cx, tol)
	assert.InDelta(t, 50, cy, tol)
}

func TestComputeFrustumSlice(t *testing.T) {
	t.Parallel()
	intr := testIntrinsics()

	s, ok := ComputeFrustumSlice(intr, geom.IdentityPose, 1, 2)
	require.True(t, ok)
	vecNear(t, geom.V(-0.5, 0.5, 1), s.Near[TopLeft])
	vecNear(t, geom.V(0.5, 0.5, 1), s.Near[TopRight])
	vecNear(t, geom.V(0.5, -0.5, 1), s.Near[BottomRight])
	vecNear(t, geom.V(-0.5, -0.5, 1), s.Near[BottomLeft])
	vecNear(t, geom.V(-1, 1, 2), s.Far[TopLeft])
	vecNear(t, geom.V(0, 0, 1), s.CenterNear)
	vecNear(t, geom.V(0, 0, 2), s.CenterFar)

	clamped, ok := ComputeFrustumSlice(intr, geom.IdentityPose, -1, -2)
	require.True(t, ok)
	for i := range clamped.Near {
		vecNear(t, geom.Vec3{}, clamped.Near[i])
		vecNear(t, geom.Vec3{}, clamped.Far[i])
	}

	inverted, ok := ComputeFrustumSlice(intr, geom.IdentityPose, 0.3, 0.1)
	require.True(t, ok)
	assert.Equal(t, inverted.CenterNear, inverted.CenterFar)

	intr.Resolution = image.Point{}
	_, ok = ComputeFrustumSlice(intr, geom.IdentityPose, 1, 2)
	assert.False(t, ok)
}

func TestDetectionMapping(t *testing.T) {
	t.Parallel()
	res := image.Pt(1280, 960)
	assert.Equal(t, image.Pt(640, 720), NormalizedToPixel(0.5, 0.25, res))
	assert.Equal(t, image.Pt(640, 720), DetectionToPixel(320, 160, 640, 640, res))
	assert.Equal(t, image.Pt(0, 960), NormalizedToPixel(0, 0, res))
	assert.Equal(t, image.Pt(1280, 0), NormalizedToPixel(1, 1, res))

	cam := NewCamera(fixture())
	ray, err := cam.DetectionToWorldRay(Right, 320, 320, 640, 640, geom.IdentityPose)
	require.NoError(t, err)
	vecNear(t, geom.V(0, 0, -1), ray.Direction)
}

func TestIsSupported(t *testing.T) {
	t.Parallel()
	tests := []struct {
		headset Headset
		version int
		want    bool
	}{
		{HeadsetQuest3, 74, true},
		{HeadsetQuest3, 73, false},
		{HeadsetQuest3S, 80, true},
		{HeadsetQuest3, unreleasedOSVersion, true},
		{HeadsetQuest3, 0, true},
		{HeadsetUnknown, 80, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupported(tt.headset, tt.version), "%v/%d", tt.headset, tt.version)
	}
}

func TestLuminance(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(img.Pix, []uint8{100, 0, 0, 255, 0, 100, 0, 255})
	assert.Equal(t, 46.0, Luminance(img))
	assert.Equal(t, 0.0, Luminance(image.NewRGBA(image.Rectangle{})))
}

func TestBrightnessEstimator(t *testing.T) {
	t.Parallel()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	b := NewBrightnessEstimator(clock, 50*time.Millisecond, 2)
	assert.Equal(t, -1.0, b.Level())

	frame := func(g uint8) *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		copy(img.Pix, []uint8{0, g, 0, 255})
		return img
	}

	l, ok := b.Sample(frame(100))
	require.True(t, ok)
	assert.Equal(t, 71.0, l)

	_, ok = b.Sample(frame(200))
	assert.False(t, ok, "throttled")

	clock.Advance(50 * time.Millisecond)
	_, ok = b.Sample(frame(200))
	require.True(t, ok)
	assert.InDelta(t, (71.0+143.0)/2, b.Level(), tol)

	clock.Advance(50 * time.Millisecond)
	_, ok = b.Sample(frame(0))
	require.True(t, ok)
	assert.InDelta(t, 143.0/2, b.Level(), tol)

	b.Reset()
	assert.Equal(t, -1.0, b.Level())
}
