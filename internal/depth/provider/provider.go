// Package provider runs the per-frame depth update: it fetches the
// environment depth texture, derives depth linearization parameters and
// reprojection matrices for both eyes, and publishes them as an immutable
// Uniforms snapshot for the shading stage.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/banshee-data/depth.report/internal/config"
	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
	"github.com/banshee-data/depth.report/internal/monitoring"
)

// ErrUnsupported is returned by Enable when the device has no depth sensor.
var ErrUnsupported = errors.New("environment depth not supported")

// DepthSource is the runtime that produces environment depth frames.
type DepthSource interface {
	Supported() bool
	PermissionGranted() bool
	Setup(removeHands bool) error
	Shutdown() error
	SetRendering(enabled bool) error
	SetHandRemoval(removed bool) error
	// TextureAvailable reports whether a depth texture can be fetched for
	// the current frame.
	TextureAvailable() bool
	FrameDescriptor(eye reproject.Eye) (reproject.FrameDescriptor, error)
}

// RenderSource describes the frame currently being rendered.
type RenderSource interface {
	// EyeFov returns the render tangents of eye, or false when the
	// compositor has not reported them yet.
	EyeFov(eye reproject.Eye) (reproject.FovTangents, bool)
	// RenderOrientation is the predicted render-time head orientation in
	// tracking convention. Both eyes share it.
	RenderOrientation() geom.Quat
	SymmetricProjection() bool
	// TrackingSpace is the world-to-local transform of a custom tracking
	// space, or the identity.
	TrackingSpace() geom.Mat4
}

// EyeAnchorSource is an optional RenderSource capability. Runtimes that
// report orientation only, such as editor simulation, supply the eye
// positions here and the 6DOF matrices use them in place of the capture
// position.
type EyeAnchorSource interface {
	EyeAnchor(eye reproject.Eye) (geom.Vec3, bool)
}

// Recorder persists published snapshots.
type Recorder interface {
	RecordFrame(ctx context.Context, u Uniforms) error
}

// Uniforms is everything the shading stage reads for one frame. A
// published Uniforms is never mutated.
type Uniforms struct {
	Frame            uint64
	TextureAvailable bool
	DepthParams      reproject.DepthParams

	Has6DOF      bool
	Reprojection [reproject.NumEyes]geom.Mat4

	Has3DOF           bool
	Reprojection3DOF  [reproject.NumEyes]geom.Mat4
	RenderFov         [reproject.NumEyes]reproject.FovTangents
	RenderOrientation geom.Quat

	InverseProjection [reproject.NumEyes]geom.Mat4
	Descriptors       [reproject.NumEyes]reproject.FrameDescriptor
}

// Config wires a Provider.
type Config struct {
	Depth    DepthSource
	Render   RenderSource
	Settings *config.DepthConfig

	// OnAvailabilityChanged is called on every change of texture
	// availability, from the goroutine calling Update or Disable.
	OnAvailabilityChanged func(available bool)
	Recorder              Recorder
}

// Provider owns the depth update loop. Enable, Disable, SetHandsRemoved and
// Update must be called from one goroutine; Latest may be called from any.
type Provider struct {
	depth    DepthSource
	render   RenderSource
	settings *config.DepthConfig
	onAvail  func(bool)
	recorder Recorder

	enabled           bool
	permissionPending bool
	handsRemoved      bool
	coldStart         int
	available         bool
	frame             uint64

	mu     sync.RWMutex
	latest Uniforms
}

// New returns a disabled Provider. A nil Settings uses the defaults.
func New(cfg Config) *Provider {
	settings := cfg.Settings
	if settings == nil {
		settings = config.EmptyDepthConfig()
	}
	return &Provider{
		depth:        cfg.Depth,
		render:       cfg.Render,
		settings:     settings,
		onAvail:      cfg.OnAvailabilityChanged,
		recorder:     cfg.Recorder,
		handsRemoved: settings.GetRemoveHands(),
		latest:       Uniforms{Reprojection: identities(), Reprojection3DOF: identities()},
	}
}

func identities() [reproject.NumEyes]geom.Mat4 {
	return [reproject.NumEyes]geom.Mat4{geom.Identity(), geom.Identity()}
}

// Enabled reports whether depth rendering has been requested.
func (p *Provider) Enabled() bool { return p.enabled }

// Enable requests depth rendering. When scene permission has not been
// granted yet, rendering starts on the first Update after it is.
func (p *Provider) Enable() error {
	if !p.depth.Supported() {
		return ErrUnsupported
	}
	if p.enabled {
		return nil
	}
	p.enabled = true
	if !p.depth.PermissionGranted() {
		monitoring.Warnf("[depth] scene permission not granted, waiting for permission")
		p.permissionPending = true
		return nil
	}
	return p.start()
}

func (p *Provider) start() error {
	if err := p.depth.Setup(p.handsRemoved); err != nil {
		return fmt.Errorf("setup depth: %w", err)
	}
	if err := p.depth.SetRendering(true); err != nil {
		return fmt.Errorf("start depth rendering: %w", err)
	}
	p.permissionPending = false
	p.coldStart = p.settings.GetColdStartFrames()
	monitoring.Logf("[depth] rendering started, cold start %d frames", p.coldStart)
	return nil
}

// Disable stops depth rendering and reports the texture as unavailable.
func (p *Provider) Disable() error {
	if !p.enabled {
		return nil
	}
	p.enabled = false
	p.permissionPending = false
	var errs []error
	if err := p.depth.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("shutdown depth: %w", err))
	}
	if err := p.depth.SetRendering(false); err != nil {
		errs = append(errs, fmt.Errorf("stop depth rendering: %w", err))
	}
	p.available = false
	p.notify(false)

	p.mu.Lock()
	p.latest.TextureAvailable = false
	p.mu.Unlock()
	return errors.Join(errs...)
}

// SetHandsRemoved toggles masking of the user's hands out of the depth
// texture. It is remembered for the next Enable.
func (p *Provider) SetHandsRemoved(removed bool) error {
	p.handsRemoved = removed
	if err := p.depth.SetHandRemoval(removed); err != nil {
		return fmt.Errorf("set hand removal: %w", err)
	}
	return nil
}

func (p *Provider) notify(available bool) {
	if p.onAvail != nil {
		p.onAvail(available)
	}
}

// fetchTexture updates texture availability for this frame.
func (p *Provider) fetchTexture() {
	if !p.enabled || p.permissionPending {
		return
	}
	if p.coldStart > 0 {
		p.coldStart--
		return
	}
	if p.depth.TextureAvailable() {
		if !p.available {
			p.available = true
			p.notify(true)
		}
		return
	}
	monitoring.Warnf("[depth] no environment depth texture")
	if p.available {
		p.available = false
		p.notify(false)
	}
}

// Update runs one frame. It returns the published snapshot and whether a
// new one was published; frames without a texture or render FOV publish
// nothing and readers keep the previous snapshot.
func (p *Provider) Update(ctx context.Context) (Uniforms, bool, error) {
	if err := ctx.Err(); err != nil {
		return Uniforms{}, false, err
	}
	if p.permissionPending && p.depth.PermissionGranted() {
		if err := p.start(); err != nil {
			return Uniforms{}, false, err
		}
	}

	// Step 1: texture availability
	p.fetchTexture()
	if !p.available {
		return Uniforms{}, false, nil
	}

	// Step 2: render FOVs
	leftFov, okL := p.render.EyeFov(reproject.LeftEye)
	rightFov, okR := p.render.EyeFov(reproject.RightEye)
	if !okL || !okR {
		return Uniforms{}, false, nil
	}
	if p.settings.GetSymmetricProjection() || p.render.SymmetricProjection() {
		leftFov, rightFov = reproject.SymmetrizeEyeFovs(leftFov, rightFov)
	}

	// Step 3: depth frame descriptors
	var descs [reproject.NumEyes]reproject.FrameDescriptor
	for eye := reproject.LeftEye; eye < reproject.NumEyes; eye++ {
		d, err := p.depth.FrameDescriptor(eye)
		if err != nil {
			return Uniforms{}, false, fmt.Errorf("%s eye frame descriptor: %w", eye, err)
		}
		descs[eye] = d
	}

	p.frame++
	u := Uniforms{
		Frame:            p.frame,
		TextureAvailable: true,
		// Near and far are assumed equal for both eyes.
		DepthParams:      reproject.ComputeDepthParams(descs[reproject.LeftEye].NearZ, descs[reproject.LeftEye].FarZ),
		Reprojection:     identities(),
		Reprojection3DOF: identities(),
		RenderFov:        [reproject.NumEyes]reproject.FovTangents{leftFov, rightFov},
		Descriptors:      descs,
	}
	for eye := range descs {
		u.InverseProjection[eye] = reproject.InverseProjection(descs[eye])
	}

	// Step 4: 6DOF matrices for per-object shaders
	if p.settings.GetEnable6DoF() {
		trackingSpace := p.render.TrackingSpace()
		anchors, _ := p.render.(EyeAnchorSource)
		for eye := range descs {
			m := reproject.Compute6DOFReprojection(descs[eye])
			if anchors != nil {
				if pos, ok := anchors.EyeAnchor(reproject.Eye(eye)); ok {
					m = reproject.Compute6DOFReprojectionAt(descs[eye], pos)
				}
			}
			u.Reprojection[eye] = reproject.ApplyTrackingSpace(m, trackingSpace)
		}
		u.Has6DOF = true
	}

	// Step 5: 3DOF matrices for screen-space shaders
	if p.settings.GetEnable3DoF() {
		u.RenderOrientation = p.render.RenderOrientation()
		for eye := range descs {
			u.Reprojection3DOF[eye] = reproject.ComputeReprojection(descs[eye], u.RenderFov[eye], u.RenderOrientation)
		}
		u.Has3DOF = true
	}

	p.mu.Lock()
	p.latest = u
	p.mu.Unlock()

	if p.recorder != nil {
		if err := p.recorder.RecordFrame(ctx, u); err != nil {
			monitoring.LogOnce("[depth] record frame: %v", err)
		}
	}
	return u, true, nil
}

// Latest returns the most recently published snapshot. Readers may see the
// previous frame while Update is running.
func (p *Provider) Latest() Uniforms {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}
