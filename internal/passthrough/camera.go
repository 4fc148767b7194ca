package passthrough

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/monitoring"
)

// Eye identifies one of the two passthrough cameras.
type Eye int

const (
	Left Eye = iota
	Right
)

func (e Eye) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Eye(%d)", int(e))
}

// ParseEye accepts "left" or "right" in any case.
func ParseEye(s string) (Eye, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown camera eye %q", s)
}

// Vendor metadata values identifying passthrough cameras.
const (
	cameraSourcePassthrough = 0
	cameraPositionLeft      = 0
	cameraPositionRight     = 1
)

// ErrCameraNotFound is returned when a requested eye has no passthrough
// camera in the metadata store.
var ErrCameraNotFound = errors.New("passthrough camera not found")

// Camera reads and caches the per-eye characteristics of the passthrough
// cameras. It is safe for concurrent use.
type Camera struct {
	src Characteristics

	mu             sync.Mutex
	initialized    bool
	ids            map[Eye]string
	intrinsics     map[Eye]CameraIntrinsics
	outputSizes    map[Eye][]image.Point
	headFromCamera map[Eye]geom.Pose
	distortion     map[Eye]LensDistortion
}

// NewCamera returns a Camera backed by src. No metadata is read until the
// first query.
func NewCamera(src Characteristics) *Camera {
	return &Camera{
		src:            src,
		ids:            make(map[Eye]string),
		intrinsics:     make(map[Eye]CameraIntrinsics),
		outputSizes:    make(map[Eye][]image.Point),
		headFromCamera: make(map[Eye]geom.Pose),
		distortion:     make(map[Eye]LensDistortion),
	}
}

// Init discovers the left and right passthrough cameras. It succeeds only
// when both are found; later calls are no-ops once it has.
func (c *Camera) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked()
}

func (c *Camera) initLocked() error {
	if c.initialized {
		return nil
	}
	monitoring.Logf("[passthrough] discovering cameras")
	ids, err := c.src.CameraIDs()
	if err != nil {
		return fmt.Errorf("list camera ids: %w", err)
	}
	found := make(map[Eye]string)
	for _, id := range ids {
		eye, ok, err := c.classify(id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		found[eye] = id
		monitoring.Logf("[passthrough] found %s passthrough camera id=%s", eye, id)
	}
	if _, ok := found[Left]; !ok {
		return fmt.Errorf("%w: left", ErrCameraNotFound)
	}
	if _, ok := found[Right]; !ok {
		return fmt.Errorf("%w: right", ErrCameraNotFound)
	}
	c.ids = found
	c.initialized = true
	return nil
}

// classify reports which eye camera id serves, if it is a passthrough
// camera at all. Vendor keys must be single-byte arrays.
func (c *Camera) classify(id string) (Eye, bool, error) {
	source, err := c.src.Bytes(id, KeyCameraSource)
	if err != nil {
		return 0, false, fmt.Errorf("camera %s source: %w", id, err)
	}
	if len(source) != 1 || source[0] != cameraSourcePassthrough {
		return 0, false, nil
	}
	position, err := c.src.Bytes(id, KeyCameraPosition)
	if err != nil {
		return 0, false, fmt.Errorf("camera %s position: %w", id, err)
	}
	if len(position) != 1 {
		return 0, false, nil
	}
	switch position[0] {
	case cameraPositionLeft:
		return Left, true, nil
	case cameraPositionRight:
		return Right, true, nil
	}
	return 0, false, fmt.Errorf("camera %s: unknown position value %d", id, position[0])
}

// CameraID returns the metadata id of the camera serving eye.
func (c *Camera) CameraID(eye Eye) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idLocked(eye)
}

func (c *Camera) idLocked(eye Eye) (string, error) {
	if err := c.initLocked(); err != nil {
		return "", err
	}
	id, ok := c.ids[eye]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCameraNotFound, eye)
	}
	return id, nil
}

// Intrinsics returns the cached intrinsics of eye, reading them on first use.
func (c *Camera) Intrinsics(eye Eye) (CameraIntrinsics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if intr, ok := c.intrinsics[eye]; ok {
		return intr, nil
	}
	id, err := c.idLocked(eye)
	if err != nil {
		return CameraIntrinsics{}, err
	}
	cal, err := c.src.Floats(id, KeyLensIntrinsicCalibration)
	if err != nil {
		return CameraIntrinsics{}, fmt.Errorf("camera %s calibration: %w", id, err)
	}
	if len(cal) < 5 {
		return CameraIntrinsics{}, fmt.Errorf("camera %s: calibration has %d values, want 5", id, len(cal))
	}
	// Active array is reported as [left, top, right, bottom]; the usable
	// resolution is its right and bottom edges.
	rect, err := c.src.Rect(id, KeyPreCorrectionActiveArray)
	if err != nil {
		return CameraIntrinsics{}, fmt.Errorf("camera %s active array: %w", id, err)
	}
	intr := CameraIntrinsics{
		FocalLength:    [2]float64{cal[0], cal[1]},
		PrincipalPoint: [2]float64{cal[2], cal[3]},
		Skew:           cal[4],
		Resolution:     image.Pt(rect.Max.X, rect.Max.Y),
	}
	c.intrinsics[eye] = intr
	return intr, nil
}

// OutputSizes returns the cached list of supported output resolutions.
func (c *Camera) OutputSizes(eye Eye) ([]image.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sizes, ok := c.outputSizes[eye]; ok {
		return sizes, nil
	}
	id, err := c.idLocked(eye)
	if err != nil {
		return nil, err
	}
	sizes, err := c.src.OutputSizes(id)
	if err != nil {
		return nil, fmt.Errorf("camera %s output sizes: %w", id, err)
	}
	c.outputSizes[eye] = sizes
	return sizes, nil
}

// HeadFromCamera returns the cached pose of the camera relative to the
// head. The lens pose is stored camera-from-head in the tracking convention.
func (c *Camera) HeadFromCamera(eye Eye) (geom.Pose, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.headFromCamera[eye]; ok {
		return p, nil
	}
	id, err := c.idLocked(eye)
	if err != nil {
		return geom.Pose{}, err
	}
	t, err := c.src.Floats(id, KeyLensPoseTranslation)
	if err != nil {
		return geom.Pose{}, fmt.Errorf("camera %s lens translation: %w", id, err)
	}
	r, err := c.src.Floats(id, KeyLensPoseRotation)
	if err != nil {
		return geom.Pose{}, fmt.Errorf("camera %s lens rotation: %w", id, err)
	}
	if len(t) < 3 || len(r) < 4 {
		return geom.Pose{}, fmt.Errorf("camera %s: malformed lens pose", id)
	}
	cameraFromHead := geom.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.FromTracking()
	p := geom.Pose{
		Position: geom.V(t[0], t[1], -t[2]),
		Rotation: cameraFromHead.Inverse(),
	}
	c.headFromCamera[eye] = p
	return p, nil
}

// Distortion returns the cached lens distortion coefficients of eye.
func (c *Camera) Distortion(eye Eye) (LensDistortion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.distortion[eye]; ok {
		return d, nil
	}
	id, err := c.idLocked(eye)
	if err != nil {
		return LensDistortion{}, err
	}
	coeffs, err := c.src.Floats(id, KeyLensDistortion)
	if err != nil {
		return LensDistortion{}, fmt.Errorf("camera %s distortion: %w", id, err)
	}
	d := DistortionFromCoefficients(coeffs)
	c.distortion[eye] = d
	return d, nil
}

// flipCamera turns the camera so that it looks down +Z with Y up.
var flipCamera = geom.Euler(180, 0, 0)

// WorldPose returns the camera's pose in world space given the head pose.
func (c *Camera) WorldPose(eye Eye, worldFromHead geom.Pose) (geom.Pose, error) {
	headFromCamera, err := c.HeadFromCamera(eye)
	if err != nil {
		return geom.Pose{}, err
	}
	p := worldFromHead.Mul(headFromCamera)
	p.Rotation = p.Rotation.Mul(flipCamera)
	return p, nil
}

// ScreenPointToWorldRay casts a world-space ray through pixel p of eye's
// camera.
func (c *Camera) ScreenPointToWorldRay(eye Eye, p image.Point, worldFromHead geom.Pose) (geom.Ray, error) {
	intr, err := c.Intrinsics(eye)
	if err != nil {
		return geom.Ray{}, err
	}
	pose, err := c.WorldPose(eye, worldFromHead)
	if err != nil {
		return geom.Ray{}, err
	}
	return CameraRayToWorldRay(pose, ScreenPointToCameraRay(intr, p)), nil
}
