package reproject

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDepthParams(t *testing.T) {
	tests := []struct {
		name       string
		near, far  float64
		wantScale  float64
		wantOffset float64
	}{
		{"infinite far", 0.1, math.Inf(1), -0.2, -1},
		{"far below near treated as infinite", 0.5, 0.1, -1.0, -1},
		{"finite", 0.1, 10, -2 * 10 * 0.1 / 9.9, -10.1 / 9.9},
		{"unit range", 1, 3, -3, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDepthParams(tt.near, tt.far)
			assert.InDelta(t, tt.wantScale, got.Scale, 1e-15)
			assert.InDelta(t, tt.wantOffset, got.Offset, 1e-15)
		})
	}
}

func TestComputeDepthParams_ConvergesToInfiniteForm(t *testing.T) {
	inf := ComputeDepthParams(0.1, math.Inf(1))
	big := ComputeDepthParams(0.1, 1e12)
	assert.InDelta(t, inf.Scale, big.Scale, 1e-9)
	assert.InDelta(t, inf.Offset, big.Offset, 1e-9)
}

func TestComputeDepthParams32(t *testing.T) {
	got := ComputeDepthParams32(0.1, float32(math.Inf(1)))
	assert.Equal(t, [4]float32{-0.2, -1, 0, 0}, got)

	fin := ComputeDepthParams32(1, 3)
	assert.Equal(t, [4]float32{-3, -2, 0, 0}, fin)
}

func TestDepthParams_LinearizeRoundTrip(t *testing.T) {
	for _, far := range []float64{5, math.Inf(1)} {
		p := ComputeDepthParams(0.1, far)
		for _, meters := range []float64{0.15, 0.5, 1, 3.7} {
			ndc := p.NDC(meters)
			assert.InDelta(t, meters, p.Linearize(ndc), 1e-12, "far=%v meters=%v", far, meters)
			assert.InDelta(t, meters, p.LinearizeTexture((ndc+1)/2), 1e-9)
		}
	}
}

func TestDepthParams_NearPlaneIsNDCMinusOne(t *testing.T) {
	p := ComputeDepthParams(0.1, 10)
	assert.InDelta(t, -1, p.NDC(0.1), 1e-12)
	assert.InDelta(t, 1, p.NDC(10), 1e-12)
}

func TestDepthParams_Vec4(t *testing.T) {
	p := DepthParams{Scale: -0.2, Offset: -1}
	assert.Equal(t, [4]float64{-0.2, -1, 0, 0}, p.Vec4())
}
