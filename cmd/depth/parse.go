package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
)

// parseFloats parses a comma separated list of exactly n numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseFov parses "left,right,up,down" tangents, or half-angles in degrees
// when degrees is set.
func parseFov(s string, degrees bool) (reproject.FovTangents, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return reproject.FovTangents{}, err
	}
	if degrees {
		rad := math.Pi / 180
		return reproject.FovFromAngles(v[0]*rad, v[1]*rad, v[2]*rad, v[3]*rad), nil
	}
	return reproject.FovTangents{Left: v[0], Right: v[1], Up: v[2], Down: v[3]}, nil
}

// parsePose parses "px,py,pz,qx,qy,qz,qw".
func parsePose(s string) (geom.Pose, error) {
	if s == "" {
		return geom.IdentityPose, nil
	}
	v, err := parseFloats(s, 7)
	if err != nil {
		return geom.Pose{}, err
	}
	return geom.Pose{
		Position: geom.V(v[0], v[1], v[2]),
		Rotation: geom.Quat{X: v[3], Y: v[4], Z: v[5], W: v[6]}.Normalized(),
	}, nil
}

// frameFile is the JSON form of a captured frame. A missing or null far_z
// means an infinite far plane.
type frameFile struct {
	Fov               reproject.FovTangents  `json:"fov"`
	RenderFov         *reproject.FovTangents `json:"render_fov,omitempty"`
	NearZ             float64                `json:"near_z"`
	FarZ              *float64               `json:"far_z"`
	Position          [3]float64             `json:"position"`
	Rotation          [4]float64             `json:"rotation"`
	RenderOrientation *[4]float64            `json:"render_orientation,omitempty"`
	TimestampNanos    int64                  `json:"timestamp_nanos"`
}

func quatFrom(v [4]float64) geom.Quat {
	return geom.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}

func (f frameFile) descriptor() reproject.FrameDescriptor {
	far := math.Inf(1)
	if f.FarZ != nil {
		far = *f.FarZ
	}
	return reproject.FrameDescriptor{
		Fov:   f.Fov,
		NearZ: f.NearZ,
		FarZ:  far,
		CreatePose: geom.Pose{
			Position: geom.V(f.Position[0], f.Position[1], f.Position[2]),
			Rotation: quatFrom(f.Rotation),
		},
		TimestampNanos: f.TimestampNanos,
	}
}

func loadFrameFile(path string) (frameFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return frameFile{}, err
	}
	var f frameFile
	if err := json.Unmarshal(b, &f); err != nil {
		return frameFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Rotation == [4]float64{} {
		f.Rotation[3] = 1
	}
	if f.NearZ <= 0 {
		return frameFile{}, fmt.Errorf("%s: near_z must be positive", path)
	}
	return f, nil
}
