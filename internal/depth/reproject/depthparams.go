package reproject

import "math"

// DepthParams converts NDC depth to linear eye-space distance:
// linear = Scale / (ndc + Offset).
type DepthParams struct {
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// ComputeDepthParams returns the linearization constants for the given clip
// planes. An infinite far plane, or far < near, uses the infinite form.
func ComputeDepthParams(near, far float64) DepthParams {
	if far < near || math.IsInf(far, 1) {
		return DepthParams{Scale: -2.0 * near, Offset: -1.0}
	}
	return DepthParams{
		Scale:  -2.0 * far * near / (far - near),
		Offset: -(far + near) / (far - near),
	}
}

// ComputeDepthParams32 is ComputeDepthParams evaluated in single precision,
// packed as the four-component shader vector (scale, offset, 0, 0).
func ComputeDepthParams32(near, far float32) [4]float32 {
	if far < near || math.IsInf(float64(far), 1) {
		return [4]float32{-2.0 * near, -1.0, 0, 0}
	}
	return [4]float32{
		-2.0 * far * near / (far - near),
		-(far + near) / (far - near),
		0, 0,
	}
}

// Vec4 packs p as the shader vector (scale, offset, 0, 0).
func (p DepthParams) Vec4() [4]float64 {
	return [4]float64{p.Scale, p.Offset, 0, 0}
}

// Linearize converts an NDC depth in [-1,1] to a distance in meters.
func (p DepthParams) Linearize(ndc float64) float64 {
	return p.Scale / (ndc + p.Offset)
}

// LinearizeTexture converts a raw depth texture value in [0,1] to meters.
func (p DepthParams) LinearizeTexture(depth float64) float64 {
	return p.Linearize(TextureDepthToNDC(depth))
}

// NDC returns the NDC depth that Linearize maps to meters.
func (p DepthParams) NDC(meters float64) float64 {
	return p.Scale/meters - p.Offset
}

// TextureDepthToNDC maps a [0,1] texture depth to [-1,1].
func TextureDepthToNDC(depth float64) float64 { return 2*depth - 1 }
