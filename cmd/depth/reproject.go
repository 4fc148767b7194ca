package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
)

type reprojectOutput struct {
	DepthParams       [4]float64  `json:"depth_params"`
	InfiniteFar       bool        `json:"infinite_far"`
	Reprojection6DOF  [16]float64 `json:"reprojection_6dof"`
	Reprojection3DOF  [16]float64 `json:"reprojection_3dof"`
	InverseProjection [16]float64 `json:"inverse_projection"`
	RotationDeg       float64     `json:"rotation_since_capture_deg"`
	Shader            shaderBlock `json:"shader"`
	Point             *pointDepth `json:"point,omitempty"`
}

// shaderBlock is the uniform data as uploaded: float32, matrices column-major.
type shaderBlock struct {
	DepthParams      [4]float32  `json:"depth_params"`
	Reprojection6DOF [16]float32 `json:"reprojection_6dof"`
	Reprojection3DOF [16]float32 `json:"reprojection_3dof"`
}

// pointDepth is what the depth texture holds for a world point.
type pointDepth struct {
	DistanceM    float64 `json:"distance_m"`
	NDC          float64 `json:"ndc"`
	U            float64 `json:"u"`
	V            float64 `json:"v"`
	TextureDepth float64 `json:"texture_depth"`
	Visible      bool    `json:"visible"`
}

func handleReproject(args []string, stdout io.Writer) error {
	fs := newFlagSet("reproject", stdout)
	descPath := fs.String("desc", "", "Frame descriptor JSON file (required)")
	fovFlag := fs.String("fov", "", "Render FOV as left,right,up,down (defaults to render_fov, then the depth FOV)")
	degrees := fs.Bool("degrees", false, "Interpret -fov as half-angles in degrees instead of tangents")
	pointFlag := fs.String("point", "", "World point x,y,z to locate in the depth texture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *descPath == "" {
		fmt.Fprintln(stdout, "Error: -desc is required")
		fs.Usage()
		return errUsage
	}

	f, err := loadFrameFile(*descPath)
	if err != nil {
		return err
	}
	desc := f.descriptor()

	renderFov := desc.Fov
	if f.RenderFov != nil {
		renderFov = *f.RenderFov
	}
	if *fovFlag != "" {
		if renderFov, err = parseFov(*fovFlag, *degrees); err != nil {
			return err
		}
	}
	renderOrientation := desc.CreatePose.Rotation
	if f.RenderOrientation != nil {
		renderOrientation = quatFrom(*f.RenderOrientation)
	}

	params := reproject.ComputeDepthParams(desc.NearZ, desc.FarZ)
	m6 := reproject.Compute6DOFReprojection(desc)
	m3 := reproject.ComputeReprojection(desc, renderFov, renderOrientation)
	out := reprojectOutput{
		DepthParams:       params.Vec4(),
		InfiniteFar:       desc.HasInfiniteFar(),
		Reprojection6DOF:  m6,
		Reprojection3DOF:  m3,
		InverseProjection: reproject.InverseProjection(desc),
		RotationDeg:       desc.CreatePose.Rotation.AngleTo(renderOrientation),
		Shader: shaderBlock{
			DepthParams:      reproject.ComputeDepthParams32(float32(desc.NearZ), float32(desc.FarZ)),
			Reprojection6DOF: m6.ColumnMajor32(),
			Reprojection3DOF: m3.ColumnMajor32(),
		},
	}

	if *pointFlag != "" {
		v, err := parseFloats(*pointFlag, 3)
		if err != nil {
			return err
		}
		world := geom.V(v[0], v[1], v[2])
		pd := &pointDepth{DistanceM: reproject.ViewDistance(desc, world)}
		pd.U, pd.V, pd.TextureDepth, pd.Visible = reproject.ProjectToDepthTexture(desc, world)
		if pd.Visible && pd.DistanceM > 0 {
			pd.NDC = params.NDC(pd.DistanceM)
		}
		out.Point = pd
	}
	return writeJSON(stdout, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
