package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/depth.report/internal/depth/geom"
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: depth <command>")

	code, stdout, _ := runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "reproject")
	assert.Contains(t, stdout, "migrate")

	code, _, stderr = runCmd(t, "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command: bogus")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCmd(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "depth ")
}

func TestParsePose(t *testing.T) {
	p, err := parsePose("")
	require.NoError(t, err)
	assert.Equal(t, geom.IdentityPose, p)

	p, err = parsePose("1,2,3,0,0,0,2")
	require.NoError(t, err)
	assert.Equal(t, geom.V(1, 2, 3), p.Position)
	assert.InDelta(t, 1, p.Rotation.W, 1e-12)

	_, err = parsePose("1,2,3")
	assert.Error(t, err)
}

func TestParseFov_Degrees(t *testing.T) {
	f, err := parseFov("45,45,45,45", true)
	require.NoError(t, err)
	assert.InDelta(t, 1, f.Left, 1e-12)
	assert.InDelta(t, 1, f.Down, 1e-12)

	_, err = parseFov("1,1,x,1", false)
	assert.Error(t, err)
}

func TestReproject(t *testing.T) {
	desc := writeTemp(t, "frame.json", []byte(`{
		"fov": {"left": 1, "right": 1, "up": 1, "down": 1},
		"near_z": 0.1,
		"position": [0, 0, 0],
		"rotation": [0, 0, 0, 1]
	}`))

	code, stdout, stderr := runCmd(t, "reproject", "-desc", desc)
	require.Equal(t, 0, code, stderr)

	var out reprojectOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.InfiniteFar)
	assert.InDelta(t, -0.2, out.DepthParams[0], 1e-12)
	assert.InDelta(t, -1, out.DepthParams[1], 1e-12)
	assert.True(t, geom.Mat4(out.Reprojection3DOF).ApproxEqual(geom.Identity(), 1e-9), "%v", out.Reprojection3DOF)
	assert.Zero(t, out.RotationDeg)
}

func TestReproject_ShaderLayoutAndPoint(t *testing.T) {
	desc := writeTemp(t, "frame.json", []byte(`{
		"fov": {"left": 1, "right": 1, "up": 1, "down": 1},
		"near_z": 0.1,
		"position": [0, 0, 0],
		"rotation": [0, 0, 0, 1]
	}`))

	code, stdout, stderr := runCmd(t, "reproject", "-desc", desc, "-point", "0,0,2")
	require.Equal(t, 0, code, stderr)

	var out reprojectOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, [4]float32{-0.2, -1, 0, 0}, out.Shader.DepthParams)
	// Row-major (2,3) and (3,2) swap places in column-major order.
	assert.InDelta(t, -0.2, out.Reprojection6DOF[11], 1e-12)
	assert.InDelta(t, -0.2, out.Shader.Reprojection6DOF[14], 1e-6)
	assert.Equal(t, float32(1), out.Shader.Reprojection6DOF[11])
	assert.Equal(t, float32(out.Reprojection3DOF[1]), out.Shader.Reprojection3DOF[4])

	require.NotNil(t, out.Point)
	assert.True(t, out.Point.Visible)
	assert.InDelta(t, 2, out.Point.DistanceM, 1e-9)
	assert.InDelta(t, 0.9, out.Point.NDC, 1e-9)
	assert.InDelta(t, 0.5, out.Point.U, 1e-9)
	assert.InDelta(t, 0.5, out.Point.V, 1e-9)
	assert.InDelta(t, 0.95, out.Point.TextureDepth, 1e-9)

	code, stdout, stderr = runCmd(t, "reproject", "-desc", desc, "-point", "0,0,-2")
	require.Equal(t, 0, code, stderr)
	out = reprojectOutput{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.NotNil(t, out.Point)
	assert.False(t, out.Point.Visible)
	assert.InDelta(t, -2, out.Point.DistanceM, 1e-9)

	code, _, _ = runCmd(t, "reproject", "-desc", desc, "-point", "1,2")
	assert.NotEqual(t, 0, code)
}

func TestReproject_RequiresDescriptor(t *testing.T) {
	code, stdout, _ := runCmd(t, "reproject")
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, "-desc is required")
}

func TestRay_Intrinsics(t *testing.T) {
	code, stdout, stderr := runCmd(t, "ray",
		"-intrinsics", "100,100,50,50",
		"-resolution", "100,100",
		"-pixel", "50,50",
		"-slice",
	)
	require.Equal(t, 0, code, stderr)

	var out rayOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, vecJSON{0, 0, 1}, out.CameraDirection)
	assert.Equal(t, vecJSON{0, 0, 1}, out.Direction)
	assert.Equal(t, [2]float64{50, 50}, out.Undistorted)
	require.NotNil(t, out.Slice)
	assert.Greater(t, out.Slice.CenterFar[2], out.Slice.CenterNear[2])
}

func characteristicsCamera(position int, tx float64) string {
	return fmt.Sprintf(`{
		"floats": {
			"LENS_INTRINSIC_CALIBRATION": [434.5, 434.5, 640, 480, 0],
			"LENS_POSE_TRANSLATION": [%g, 0.01, 0.05],
			"LENS_POSE_ROTATION": [0, 0, 0, 1]
		},
		"bytes": {
			"com.meta.extra_metadata.camera_source": [0],
			"com.meta.extra_metadata.position": [%d]
		},
		"rects": {
			"SENSOR_INFO_PRE_CORRECTION_ACTIVE_ARRAY_SIZE": {"Min": {"X": 0, "Y": 0}, "Max": {"X": 1280, "Y": 960}}
		}
	}`, tx, position)
}

func TestRay_Characteristics(t *testing.T) {
	chars := fmt.Sprintf(`{
		"0": {"bytes": {"com.meta.extra_metadata.camera_source": [1]}},
		"50": %s,
		"51": %s
	}`, characteristicsCamera(0, -0.032), characteristicsCamera(1, 0.032))
	path := writeTemp(t, "chars.json", []byte(chars))

	code, stdout, stderr := runCmd(t, "ray", "-characteristics", path, "-eye", "left", "-pixel", "640,480")
	require.Equal(t, 0, code, stderr)

	var left rayOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &left))
	assert.Equal(t, "left", left.Eye)
	assert.InDelta(t, 1, r3.Norm(geom.V(left.Direction[0], left.Direction[1], left.Direction[2])), 1e-9)

	code, stdout, stderr = runCmd(t, "ray", "-characteristics", path, "-eye", "right", "-pixel", "640,480")
	require.Equal(t, 0, code, stderr)
	var right rayOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &right))
	assert.Equal(t, left.Direction, right.Direction)
	assert.Greater(t, right.Origin[0], left.Origin[0])

	code, _, stderr = runCmd(t, "ray", "-characteristics", path, "-eye", "middle", "-pixel", "640,480")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown camera eye")
}

func TestStats(t *testing.T) {
	const w, h = 32, 32
	pix := make([]float32, w*h)
	for i := range pix {
		pix[i] = 0.2
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, pix))
	path := writeTemp(t, "depth.raw", buf.Bytes())

	code, stdout, stderr := runCmd(t, "stats", "-depth", path, "-width", "32", "-height", "32")
	require.Equal(t, 0, code, stderr)

	var out struct {
		Count   int     `json:"count"`
		Mean    float64 `json:"mean"`
		StdPop  float64 `json:"std_pop"`
		InRange bool    `json:"in_range"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, w*h, out.Count)
	assert.InDelta(t, 0.2, out.Mean, 1e-6)
	assert.InDelta(t, 0, out.StdPop, 1e-6)
	assert.True(t, out.InRange)
}

func TestStats_Units(t *testing.T) {
	pix := make([]float32, 16*16)
	for i := range pix {
		pix[i] = 0.2
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, pix))
	path := writeTemp(t, "depth.raw", buf.Bytes())

	code, stdout, stderr := runCmd(t, "stats", "-depth", path, "-width", "16", "-height", "16", "-units", "cm")
	require.Equal(t, 0, code, stderr)
	var out statsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "cm", out.Units)
	assert.InDelta(t, 20, out.Mean, 1e-4)
	assert.True(t, out.InRange)

	code, _, stderr = runCmd(t, "stats", "-depth", path, "-width", "16", "-height", "16", "-units", "furlong")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid units")
}

func TestStats_ShortFile(t *testing.T) {
	path := writeTemp(t, "short.raw", make([]byte, 16))
	code, _, stderr := runCmd(t, "stats", "-depth", path, "-width", "32", "-height", "32")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "32x32 float32")
}

func TestSimulateAndReplay(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sessions.db")

	code, stdout, stderr := runCmd(t, "simulate", "-db", dbPath, "-frames", "40", "-drop-every", "10", "-name", "bench")
	require.Equal(t, 0, code, stderr)

	var sim simulateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &sim))
	require.NotEmpty(t, sim.Session)
	assert.Equal(t, 4, sim.Dropped)
	assert.Positive(t, sim.Published)
	assert.LessOrEqual(t, sim.Published+sim.Dropped, 40)
	assert.GreaterOrEqual(t, sim.Brightness, 0.0)

	code, stdout, stderr = runCmd(t, "replay", "-db", dbPath)
	require.Equal(t, 0, code, stderr)
	var list []sessionListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &list))
	require.Len(t, list, 1)
	assert.Equal(t, sim.Session, list[0].ID)
	assert.Equal(t, "bench", list[0].Name)
	assert.Equal(t, "1970-01-01 00:00:00 UTC", list[0].Started)

	code, _, stderr = runCmd(t, "replay", "-db", dbPath, "-tz", "Mars/Olympus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid timezone")

	outDir := filepath.Join(dir, "report")
	code, stdout, stderr = runCmd(t, "replay", "-db", dbPath, "-session", sim.Session, "-out", outDir)
	require.Equal(t, 0, code, stderr)

	var rep replayOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, sim.Published, rep.Frames)
	assert.Less(t, rep.MaxDeviation6DOF, 1e-9)
	assert.Less(t, rep.MaxDeviation3DOF, 1e-9)
	// Capture lags render by one frame at 0.5 degrees per frame.
	assert.InDelta(t, 0.5, rep.MaxRotationDeg, 1e-3)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, filepath.Join(outDir, "bench-stats.html"), rep.Files[0])
	assert.Equal(t, filepath.Join(outDir, "bench-rotation.png"), rep.Files[1])
	for _, f := range rep.Files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	code, _, stderr = runCmd(t, "replay", "-db", dbPath, "-session", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "depth replay:")
}

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "m.db")

	code, stdout, stderr := runCmd(t, "migrate", "-db", dbPath, "up")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Current version: 4")
	assert.Contains(t, stdout, "Dirty: false")

	code, stdout, _ = runCmd(t, "migrate", "-db", dbPath, "down")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Current version: 3")

	code, _, stderr = runCmd(t, "migrate", "-db", dbPath, "sideways")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown migrate action")
}
