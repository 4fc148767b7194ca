package passthrough

import (
	"fmt"
	"image"
	"sort"
)

// Key names a camera characteristic.
type Key string

// Characteristic keys read from the camera metadata store.
const (
	KeyLensIntrinsicCalibration Key = "LENS_INTRINSIC_CALIBRATION"
	KeyPreCorrectionActiveArray Key = "SENSOR_INFO_PRE_CORRECTION_ACTIVE_ARRAY_SIZE"
	KeyLensPoseTranslation      Key = "LENS_POSE_TRANSLATION"
	KeyLensPoseRotation         Key = "LENS_POSE_ROTATION"
	KeyLensDistortion           Key = "LENS_DISTORTION"
	KeyCameraSource             Key = "com.meta.extra_metadata.camera_source"
	KeyCameraPosition           Key = "com.meta.extra_metadata.position"
)

// Characteristics is a read-only camera metadata store. Missing keys return
// a nil slice and no error.
type Characteristics interface {
	CameraIDs() ([]string, error)
	Keys(cameraID string) ([]Key, error)
	Floats(cameraID string, key Key) ([]float64, error)
	Bytes(cameraID string, key Key) ([]int8, error)
	Rect(cameraID string, key Key) (image.Rectangle, error)
	OutputSizes(cameraID string) ([]image.Point, error)
}

// StaticCamera is the metadata of one camera held by StaticCharacteristics.
type StaticCamera struct {
	Floats      map[Key][]float64       `json:"floats,omitempty"`
	Bytes       map[Key][]int8          `json:"bytes,omitempty"`
	Rects       map[Key]image.Rectangle `json:"rects,omitempty"`
	OutputSizes []image.Point           `json:"output_sizes,omitempty"`
}

// StaticCharacteristics is an in-memory Characteristics, used for replaying
// recorded sessions and in tests. Camera IDs are reported in sorted order.
type StaticCharacteristics map[string]StaticCamera

// CameraIDs implements Characteristics.
func (s StaticCharacteristics) CameraIDs() ([]string, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s StaticCharacteristics) camera(id string) (StaticCamera, error) {
	c, ok := s[id]
	if !ok {
		return StaticCamera{}, fmt.Errorf("unknown camera id %q", id)
	}
	return c, nil
}

// Keys implements Characteristics.
func (s StaticCharacteristics) Keys(id string) ([]Key, error) {
	c, err := s.camera(id)
	if err != nil {
		return nil, err
	}
	var keys []Key
	for k := range c.Floats {
		keys = append(keys, k)
	}
	for k := range c.Bytes {
		keys = append(keys, k)
	}
	for k := range c.Rects {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

// Floats implements Characteristics.
func (s StaticCharacteristics) Floats(id string, key Key) ([]float64, error) {
	c, err := s.camera(id)
	if err != nil {
		return nil, err
	}
	return c.Floats[key], nil
}

// Bytes implements Characteristics.
func (s StaticCharacteristics) Bytes(id string, key Key) ([]int8, error) {
	c, err := s.camera(id)
	if err != nil {
		return nil, err
	}
	return c.Bytes[key], nil
}

// Rect implements Characteristics.
func (s StaticCharacteristics) Rect(id string, key Key) (image.Rectangle, error) {
	c, err := s.camera(id)
	if err != nil {
		return image.Rectangle{}, err
	}
	return c.Rects[key], nil
}

// OutputSizes implements Characteristics.
func (s StaticCharacteristics) OutputSizes(id string) ([]image.Point, error) {
	c, err := s.camera(id)
	if err != nil {
		return nil, err
	}
	return c.OutputSizes, nil
}
