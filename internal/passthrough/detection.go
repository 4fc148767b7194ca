package passthrough

import (
	"image"
	"math"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

// DetectionToPixel maps the centre of a detection box, given in pixels of
// a model input image of imageW x imageH with Y down, to a camera pixel at
// resolution res with Y up.
func DetectionToPixel(centerX, centerY, imageW, imageH float64, res image.Point) image.Point {
	return NormalizedToPixel(centerX/imageW, centerY/imageH, res)
}

// NormalizedToPixel maps normalized image coordinates in [0,1] to a camera
// pixel. perY is flipped because camera pixels count up from the bottom.
func NormalizedToPixel(perX, perY float64, res image.Point) image.Point {
	return image.Pt(
		int(math.RoundToEven(perX*float64(res.X))),
		int(math.RoundToEven((1-perY)*float64(res.Y))),
	)
}

// DetectionToWorldRay casts a world ray through the centre of a detection
// seen by eye's camera.
func (c *Camera) DetectionToWorldRay(eye Eye, centerX, centerY, imageW, imageH float64, worldFromHead geom.Pose) (geom.Ray, error) {
	intr, err := c.Intrinsics(eye)
	if err != nil {
		return geom.Ray{}, err
	}
	p := DetectionToPixel(centerX, centerY, imageW, imageH, intr.Resolution)
	return c.ScreenPointToWorldRay(eye, p, worldFromHead)
}
