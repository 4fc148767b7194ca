package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/passthrough"
)

type vecJSON [3]float64

func toJSON(v geom.Vec3) vecJSON { return vecJSON{v.X, v.Y, v.Z} }

type sliceJSON struct {
	Near       [4]vecJSON `json:"near"`
	Far        [4]vecJSON `json:"far"`
	CenterNear vecJSON    `json:"center_near"`
	CenterFar  vecJSON    `json:"center_far"`
}

type rayOutput struct {
	Eye             string     `json:"eye,omitempty"`
	Pixel           [2]float64 `json:"pixel"`
	Undistorted     [2]float64 `json:"undistorted_pixel"`
	CameraDirection vecJSON    `json:"camera_direction"`
	Origin          vecJSON    `json:"origin"`
	Direction       vecJSON    `json:"direction"`
	Slice           *sliceJSON `json:"frustum_slice,omitempty"`
}

func loadCharacteristics(path string) (passthrough.StaticCharacteristics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c passthrough.StaticCharacteristics
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func handleRay(args []string, stdout io.Writer) error {
	fs := newFlagSet("ray", stdout)
	intrFlag := fs.String("intrinsics", "", "Camera intrinsics as fx,fy,cx,cy")
	resFlag := fs.String("resolution", "1280,960", "Camera resolution as width,height")
	pixelFlag := fs.String("pixel", "", "Pixel as x,y (required)")
	poseFlag := fs.String("pose", "", "Camera world pose as px,py,pz,qx,qy,qz,qw")
	distFlag := fs.String("distortion", "", "Lens distortion as k1,k2,p1,p2,k3")
	charsPath := fs.String("characteristics", "", "Camera characteristics JSON; replaces -intrinsics, -pose and -distortion")
	eyeFlag := fs.String("eye", "", "Camera eye when using -characteristics (defaults to the configured eye)")
	headFlag := fs.String("head", "", "Head world pose as px,py,pz,qx,qy,qz,qw when using -characteristics")
	slice := fs.Bool("slice", false, "Also print the frustum slice between the configured distances")
	configPath := fs.String("config", "", "Depth tuning JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pixelFlag == "" || (*intrFlag == "" && *charsPath == "") {
		fmt.Fprintln(stdout, "Error: -pixel and one of -intrinsics or -characteristics are required")
		fs.Usage()
		return errUsage
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		return err
	}
	px, err := parseFloats(*pixelFlag, 2)
	if err != nil {
		return err
	}

	var (
		out  rayOutput
		intr passthrough.CameraIntrinsics
		pose geom.Pose
		dist passthrough.LensDistortion
	)
	if *charsPath != "" {
		chars, err := loadCharacteristics(*charsPath)
		if err != nil {
			return err
		}
		name := *eyeFlag
		if name == "" {
			name = settings.GetCameraEye()
		}
		eye, err := passthrough.ParseEye(name)
		if err != nil {
			return err
		}
		head, err := parsePose(*headFlag)
		if err != nil {
			return err
		}
		cam := passthrough.NewCamera(chars)
		if intr, err = cam.Intrinsics(eye); err != nil {
			return err
		}
		if pose, err = cam.WorldPose(eye, head); err != nil {
			return err
		}
		if dist, err = cam.Distortion(eye); err != nil {
			return err
		}
		out.Eye = eye.String()
	} else {
		v, err := parseFloats(*intrFlag, 4)
		if err != nil {
			return err
		}
		res, err := parseFloats(*resFlag, 2)
		if err != nil {
			return err
		}
		intr = passthrough.CameraIntrinsics{
			FocalLength:    [2]float64{v[0], v[1]},
			PrincipalPoint: [2]float64{v[2], v[3]},
			Resolution:     image.Pt(int(res[0]), int(res[1])),
		}
		if pose, err = parsePose(*poseFlag); err != nil {
			return err
		}
		if *distFlag != "" {
			k, err := parseFloats(*distFlag, 5)
			if err != nil {
				return err
			}
			dist = passthrough.DistortionFromCoefficients(k)
		}
	}
	if !intr.Valid() {
		return fmt.Errorf("invalid intrinsics %+v", intr)
	}

	ux, uy := passthrough.UndistortPixel(intr, dist, px[0], px[1], settings.GetUndistortIterations())
	camRay := passthrough.PixelToCameraRay(intr, ux, uy)
	world := passthrough.CameraRayToWorldRay(pose, camRay).Normalized()

	out.Pixel = [2]float64{px[0], px[1]}
	out.Undistorted = [2]float64{round6(ux), round6(uy)}
	out.CameraDirection = toJSON(camRay.Direction)
	out.Origin = toJSON(world.Origin)
	out.Direction = toJSON(world.Direction)

	if *slice {
		s, ok := passthrough.ComputeFrustumSlice(intr, pose, settings.GetSliceMinMeters(), settings.GetSliceMaxMeters())
		if ok {
			sj := &sliceJSON{CenterNear: toJSON(s.CenterNear), CenterFar: toJSON(s.CenterFar)}
			for i := range s.Near {
				sj.Near[i] = toJSON(s.Near[i])
				sj.Far[i] = toJSON(s.Far[i])
			}
			out.Slice = sj
		}
	}
	return writeJSON(stdout, out)
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
