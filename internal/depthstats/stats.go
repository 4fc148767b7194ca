// Package depthstats measures how much of a linear depth image falls inside
// a distance band, and how flat it is there. It drives the hand placement
// guidance shown during capture.
package depthstats

import (
	"fmt"
	"math"
	"sync"
)

// TileSize is the edge length of the square tiles Reduce works on.
const TileSize = 16

// Image is a row-major linear depth image in meters.
type Image struct {
	Width, Height int
	Pix           []float32
}

// NewImage allocates a zeroed w x h image.
func NewImage(w, h int) Image {
	return Image{Width: w, Height: h, Pix: make([]float32, w*h)}
}

// At returns the depth at (x, y).
func (im Image) At(x, y int) float32 { return im.Pix[y*im.Width+x] }

// Set writes the depth at (x, y).
func (im Image) Set(x, y int, v float32) { im.Pix[y*im.Width+x] = v }

// Band is an inclusive depth range in meters.
type Band struct {
	Min, Max float64
}

// Contains reports whether d lies in the band. NaN never does.
func (b Band) Contains(d float64) bool { return d >= b.Min && d <= b.Max }

// Partial is one tile's contribution.
type Partial struct {
	Sum, Count, SumSq float64
}

// Stats summarizes the samples inside a band.
type Stats struct {
	Count     int64   `json:"count"`
	Mean      float64 `json:"mean"`
	StdPop    float64 `json:"std_pop"`
	StdSample float64 `json:"std_sample"`
}

func (s Stats) String() string {
	return fmt.Sprintf("count=%d mean=%.3fm std(pop)=%.3f std(n-1)=%.3f", s.Count, s.Mean, s.StdPop, s.StdSample)
}

// Reduce splits img into TileSize tiles and returns one partial per tile in
// row-major tile order. Edge tiles are clipped to the image. Tile rows are
// reduced concurrently.
func Reduce(img Image, band Band) []Partial {
	if img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	gx := (img.Width + TileSize - 1) / TileSize
	gy := (img.Height + TileSize - 1) / TileSize
	out := make([]Partial, gx*gy)

	var wg sync.WaitGroup
	for ty := 0; ty < gy; ty++ {
		wg.Add(1)
		go func(ty int) {
			defer wg.Done()
			for tx := 0; tx < gx; tx++ {
				out[ty*gx+tx] = reduceTile(img, band, tx, ty)
			}
		}(ty)
	}
	wg.Wait()
	return out
}

func reduceTile(img Image, band Band, tx, ty int) Partial {
	var p Partial
	x1 := min((tx+1)*TileSize, img.Width)
	y1 := min((ty+1)*TileSize, img.Height)
	for y := ty * TileSize; y < y1; y++ {
		for x := tx * TileSize; x < x1; x++ {
			d := float64(img.At(x, y))
			if !band.Contains(d) {
				continue
			}
			p.Sum += d
			p.Count++
			p.SumSq += d * d
		}
	}
	return p
}

// Combine folds tile partials into summary statistics. Population variance
// is E[x²]-E[x]², clamped at zero against rounding; the sample variance
// applies Bessel's correction when there is more than one sample.
func Combine(parts []Partial) Stats {
	var sum, sumSq, cnt float64
	for _, p := range parts {
		sum += p.Sum
		cnt += p.Count
		sumSq += p.SumSq
	}
	n := int64(math.Round(cnt))
	if n <= 0 {
		return Stats{}
	}
	mean := sum / cnt
	varPop := sumSq/cnt - mean*mean
	if varPop < 0 {
		varPop = 0
	}
	var varSample float64
	if n > 1 {
		varSample = varPop * cnt / (cnt - 1)
	}
	return Stats{
		Count:     n,
		Mean:      mean,
		StdPop:    math.Sqrt(varPop),
		StdSample: math.Sqrt(varSample),
	}
}

// Compute is Combine(Reduce(img, band)).
func Compute(img Image, band Band) Stats {
	return Combine(Reduce(img, band))
}
