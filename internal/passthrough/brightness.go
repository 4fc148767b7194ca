package passthrough

import (
	"image"
	"math"
	"time"

	"github.com/banshee-data/depth.report/internal/timeutil"
)

// Rec. 709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Luminance returns the mean Rec. 709 luma of img in 0..255, floored.
// An empty image yields 0.
func Luminance(img *image.RGBA) float64 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n <= 0 {
		return 0
	}
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+2 < len(row); i += 4 {
			sum += lumaR*float64(row[i]) + lumaG*float64(row[i+1]) + lumaB*float64(row[i+2])
		}
	}
	return math.Floor(sum / float64(n))
}

// BrightnessEstimator keeps a rolling average of camera frame luminance.
// It is not safe for concurrent use.
type BrightnessEstimator struct {
	throttle *timeutil.Throttle
	size     int
	values   []float64
}

// NewBrightnessEstimator samples at most once per refresh and averages the
// last size samples. A nil clock uses the real clock.
func NewBrightnessEstimator(clock timeutil.Clock, refresh time.Duration, size int) *BrightnessEstimator {
	if size < 1 {
		size = 1
	}
	return &BrightnessEstimator{
		throttle: timeutil.NewThrottle(clock, refresh),
		size:     size,
	}
}

// Sample measures img unless the refresh interval has not yet elapsed. It
// returns the frame luminance and whether a sample was taken.
func (b *BrightnessEstimator) Sample(img *image.RGBA) (float64, bool) {
	if !b.throttle.Ready() {
		return 0, false
	}
	l := Luminance(img)
	b.values = append(b.values, l)
	if len(b.values) > b.size {
		b.values = b.values[len(b.values)-b.size:]
	}
	return l, true
}

// Level returns the mean of the buffered samples, or -1 before the first.
func (b *BrightnessEstimator) Level() float64 {
	if len(b.values) == 0 {
		return -1
	}
	var sum float64
	for _, v := range b.values {
		sum += v
	}
	return sum / float64(len(b.values))
}

// Reset drops all samples.
func (b *BrightnessEstimator) Reset() {
	b.values = b.values[:0]
	b.throttle.Reset()
}
