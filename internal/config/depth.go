package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical depth defaults file.
const DefaultConfigPath = "config/depth.defaults.json"

// DepthConfig is the root tuning configuration for the depth provider, the
// depth-band statistics runner and the passthrough camera helpers.
// Every field is optional; Get* accessors fall back to built-in defaults.
type DepthConfig struct {
	// Provider
	Enable6DoF          *bool `json:"enable_6dof,omitempty"`
	Enable3DoF          *bool `json:"enable_3dof,omitempty"`
	ColdStartFrames     *int  `json:"cold_start_frames,omitempty"`
	RemoveHands         *bool `json:"remove_hands,omitempty"`
	SymmetricProjection *bool `json:"symmetric_projection,omitempty"`

	// Depth band statistics
	BandMin             *float64 `json:"band_min,omitempty"`
	BandMax             *float64 `json:"band_max,omitempty"`
	StatsUpdateInterval *string  `json:"stats_update_interval,omitempty"` // duration string like "250ms"
	MeanThresholdMin    *float64 `json:"mean_threshold_min,omitempty"`
	MeanThresholdMax    *float64 `json:"mean_threshold_max,omitempty"`
	StdThresholdMin     *float64 `json:"std_threshold_min,omitempty"`
	StdThresholdMax     *float64 `json:"std_threshold_max,omitempty"`

	// Capture slice drawn in front of the passthrough camera
	SliceMinMeters *float64 `json:"slice_min_meters,omitempty"`
	SliceMaxMeters *float64 `json:"slice_max_meters,omitempty"`
	CameraEye      *string  `json:"camera_eye,omitempty"` // "left" or "right"

	// Passthrough image
	UndistortIterations *int    `json:"undistort_iterations,omitempty"`
	BrightnessRefresh   *string `json:"brightness_refresh,omitempty"`
	BrightnessBuffer    *int    `json:"brightness_buffer,omitempty"`
}

// Helper functions to create pointers
func PtrFloat64(v float64) *float64 { return &v }
func PtrBool(v bool) *bool          { return &v }
func PtrString(v string) *string    { return &v }
func PtrInt(v int) *int             { return &v }

// EmptyDepthConfig returns a DepthConfig with all fields set to nil.
func EmptyDepthConfig() *DepthConfig {
	return &DepthConfig{}
}

// DefaultDepthConfig returns a DepthConfig with every field populated from
// the built-in defaults.
func DefaultDepthConfig() *DepthConfig {
	c := EmptyDepthConfig()
	return &DepthConfig{
		Enable6DoF:          PtrBool(c.GetEnable6DoF()),
		Enable3DoF:          PtrBool(c.GetEnable3DoF()),
		ColdStartFrames:     PtrInt(c.GetColdStartFrames()),
		RemoveHands:         PtrBool(c.GetRemoveHands()),
		SymmetricProjection: PtrBool(c.GetSymmetricProjection()),
		BandMin:             PtrFloat64(c.GetBandMin()),
		BandMax:             PtrFloat64(c.GetBandMax()),
		StatsUpdateInterval: PtrString(c.GetStatsUpdateInterval().String()),
		MeanThresholdMin:    PtrFloat64(c.GetMeanThresholdMin()),
		MeanThresholdMax:    PtrFloat64(c.GetMeanThresholdMax()),
		StdThresholdMin:     PtrFloat64(c.GetStdThresholdMin()),
		StdThresholdMax:     PtrFloat64(c.GetStdThresholdMax()),
		SliceMinMeters:      PtrFloat64(c.GetSliceMinMeters()),
		SliceMaxMeters:      PtrFloat64(c.GetSliceMaxMeters()),
		CameraEye:           PtrString(c.GetCameraEye()),
		UndistortIterations: PtrInt(c.GetUndistortIterations()),
		BrightnessRefresh:   PtrString(c.GetBrightnessRefresh().String()),
		BrightnessBuffer:    PtrInt(c.GetBrightnessBuffer()),
	}
}

// LoadDepthConfig loads a DepthConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their defaults, so partial configs are safe.
func LoadDepthConfig(path string) (*DepthConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDepthConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *DepthConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/depth/provider/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadDepthConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *DepthConfig) Validate() error {
	if c.ColdStartFrames != nil && *c.ColdStartFrames < 0 {
		return fmt.Errorf("cold_start_frames must be non-negative, got %d", *c.ColdStartFrames)
	}

	if c.BandMin != nil && *c.BandMin < 0 {
		return fmt.Errorf("band_min must be non-negative, got %f", *c.BandMin)
	}
	if c.GetBandMax() < c.GetBandMin() {
		return fmt.Errorf("band_max (%f) must not be below band_min (%f)", c.GetBandMax(), c.GetBandMin())
	}

	if c.GetMeanThresholdMax() < c.GetMeanThresholdMin() {
		return fmt.Errorf("mean_threshold_max (%f) must not be below mean_threshold_min (%f)",
			c.GetMeanThresholdMax(), c.GetMeanThresholdMin())
	}
	if c.GetStdThresholdMax() < c.GetStdThresholdMin() {
		return fmt.Errorf("std_threshold_max (%f) must not be below std_threshold_min (%f)",
			c.GetStdThresholdMax(), c.GetStdThresholdMin())
	}

	if c.SliceMinMeters != nil && *c.SliceMinMeters < 0 {
		return fmt.Errorf("slice_min_meters must be non-negative, got %f", *c.SliceMinMeters)
	}

	if c.CameraEye != nil && *c.CameraEye != "left" && *c.CameraEye != "right" {
		return fmt.Errorf("camera_eye must be \"left\" or \"right\", got %q", *c.CameraEye)
	}

	if c.StatsUpdateInterval != nil && *c.StatsUpdateInterval != "" {
		if _, err := time.ParseDuration(*c.StatsUpdateInterval); err != nil {
			return fmt.Errorf("invalid stats_update_interval '%s': %w", *c.StatsUpdateInterval, err)
		}
	}
	if c.BrightnessRefresh != nil && *c.BrightnessRefresh != "" {
		if _, err := time.ParseDuration(*c.BrightnessRefresh); err != nil {
			return fmt.Errorf("invalid brightness_refresh '%s': %w", *c.BrightnessRefresh, err)
		}
	}

	if c.BrightnessBuffer != nil && (*c.BrightnessBuffer < 1 || *c.BrightnessBuffer > 100) {
		return fmt.Errorf("brightness_buffer must be between 1 and 100, got %d", *c.BrightnessBuffer)
	}
	if c.UndistortIterations != nil && *c.UndistortIterations < 1 {
		return fmt.Errorf("undistort_iterations must be positive, got %d", *c.UndistortIterations)
	}

	return nil
}

// GetEnable6DoF returns the enable_6dof value or the default.
func (c *DepthConfig) GetEnable6DoF() bool {
	if c.Enable6DoF == nil {
		return true // per-object occlusion shaders
	}
	return *c.Enable6DoF
}

// GetEnable3DoF returns the enable_3dof value or the default.
func (c *DepthConfig) GetEnable3DoF() bool {
	if c.Enable3DoF == nil {
		return false
	}
	return *c.Enable3DoF
}

// GetColdStartFrames returns the cold_start_frames value or the default.
func (c *DepthConfig) GetColdStartFrames() int {
	if c.ColdStartFrames == nil {
		return 1
	}
	return *c.ColdStartFrames
}

// GetRemoveHands returns the remove_hands value or the default.
func (c *DepthConfig) GetRemoveHands() bool {
	if c.RemoveHands == nil {
		return false
	}
	return *c.RemoveHands
}

// GetSymmetricProjection returns the symmetric_projection value or the default.
func (c *DepthConfig) GetSymmetricProjection() bool {
	if c.SymmetricProjection == nil {
		return false
	}
	return *c.SymmetricProjection
}

// GetBandMin returns the band_min value or the default.
func (c *DepthConfig) GetBandMin() float64 {
	if c.BandMin == nil {
		return 0.13
	}
	return *c.BandMin
}

// GetBandMax returns the band_max value or the default.
func (c *DepthConfig) GetBandMax() float64 {
	if c.BandMax == nil {
		return 0.27
	}
	return *c.BandMax
}

// GetStatsUpdateInterval parses and returns the stats update interval.
func (c *DepthConfig) GetStatsUpdateInterval() time.Duration {
	if c.StatsUpdateInterval == nil || *c.StatsUpdateInterval == "" {
		return 250 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.StatsUpdateInterval)
	if err != nil {
		return 250 * time.Millisecond // default on parse error
	}
	return d
}

// GetMeanThresholdMin returns the mean_threshold_min value or the default.
func (c *DepthConfig) GetMeanThresholdMin() float64 {
	if c.MeanThresholdMin == nil {
		return 0.17
	}
	return *c.MeanThresholdMin
}

// GetMeanThresholdMax returns the mean_threshold_max value or the default.
func (c *DepthConfig) GetMeanThresholdMax() float64 {
	if c.MeanThresholdMax == nil {
		return 0.25
	}
	return *c.MeanThresholdMax
}

// GetStdThresholdMin returns the std_threshold_min value or the default.
func (c *DepthConfig) GetStdThresholdMin() float64 {
	if c.StdThresholdMin == nil {
		return 0
	}
	return *c.StdThresholdMin
}

// GetStdThresholdMax returns the std_threshold_max value or the default.
func (c *DepthConfig) GetStdThresholdMax() float64 {
	if c.StdThresholdMax == nil {
		return 0.02
	}
	return *c.StdThresholdMax
}

// GetSliceMinMeters returns the slice_min_meters value or the default.
func (c *DepthConfig) GetSliceMinMeters() float64 {
	if c.SliceMinMeters == nil {
		return 0.17
	}
	return *c.SliceMinMeters
}

// GetSliceMaxMeters returns the slice_max_meters value or the default.
// A max below the min is raised to the min.
func (c *DepthConfig) GetSliceMaxMeters() float64 {
	v := 0.30
	if c.SliceMaxMeters != nil {
		v = *c.SliceMaxMeters
	}
	if lo := c.GetSliceMinMeters(); v < lo {
		return lo
	}
	return v
}

// GetCameraEye returns the camera_eye value or the default.
func (c *DepthConfig) GetCameraEye() string {
	if c.CameraEye == nil || *c.CameraEye == "" {
		return "left"
	}
	return *c.CameraEye
}

// GetUndistortIterations returns the undistort_iterations value or the default.
func (c *DepthConfig) GetUndistortIterations() int {
	if c.UndistortIterations == nil {
		return 20
	}
	return *c.UndistortIterations
}

// GetBrightnessRefresh parses and returns the brightness refresh interval.
func (c *DepthConfig) GetBrightnessRefresh() time.Duration {
	if c.BrightnessRefresh == nil || *c.BrightnessRefresh == "" {
		return 50 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.BrightnessRefresh)
	if err != nil {
		return 50 * time.Millisecond
	}
	return d
}

// GetBrightnessBuffer returns the brightness_buffer value or the default.
func (c *DepthConfig) GetBrightnessBuffer() int {
	if c.BrightnessBuffer == nil {
		return 10
	}
	return *c.BrightnessBuffer
}
