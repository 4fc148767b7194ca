package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat4 is a 4×4 matrix stored row-major: m[row*4+col].
type Mat4 [16]float64

// Identity returns the 4×4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float64 { return m[r*4+c] }

// Set returns a copy of m with element (r, c) replaced.
func (m Mat4) Set(r, c int, v float64) Mat4 {
	m[r*4+c] = v
	return m
}

// Mul returns the product m×n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += m[r*4+k] * n[k*4+c]
			}
			out[r*4+c] = s
		}
	}
	return out
}

// MulVec4 returns m×v for a homogeneous column vector.
func (m Mat4) MulVec4(v [4]float64) [4]float64 {
	var out [4]float64
	for r := 0; r < 4; r++ {
		out[r] = m[r*4]*v[0] + m[r*4+1]*v[1] + m[r*4+2]*v[2] + m[r*4+3]*v[3]
	}
	return out
}

// MulPoint transforms p as a point (w=1) and applies the perspective divide.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	h := m.MulVec4([4]float64{p.X, p.Y, p.Z, 1})
	w := h[3]
	return V(h[0]/w, h[1]/w, h[2]/w)
}

// MulPoint3x4 transforms p by the affine part of m, ignoring the bottom row.
func (m Mat4) MulPoint3x4(p Vec3) Vec3 {
	return V(
		m[0]*p.X+m[1]*p.Y+m[2]*p.Z+m[3],
		m[4]*p.X+m[5]*p.Y+m[6]*p.Z+m[7],
		m[8]*p.X+m[9]*p.Y+m[10]*p.Z+m[11],
	)
}

// MulDirection rotates and scales d by the upper 3×3 block of m.
func (m Mat4) MulDirection(d Vec3) Vec3 {
	return V(
		m[0]*d.X+m[1]*d.Y+m[2]*d.Z,
		m[4]*d.X+m[5]*d.Y+m[6]*d.Z,
		m[8]*d.X+m[9]*d.Y+m[10]*d.Z,
	)
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// Dense returns m as a gonum matrix. The backing slice is a copy.
func (m Mat4) Dense() *mat.Dense {
	data := make([]float64, 16)
	copy(data, m[:])
	return mat.NewDense(4, 4, data)
}

// Inverse returns the inverse of m. A singular matrix yields the zero matrix;
// an ill-conditioned one yields gonum's best effort.
func (m Mat4) Inverse() Mat4 {
	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		if c, ok := err.(mat.Condition); !ok || math.IsInf(float64(c), 1) {
			return Mat4{}
		}
	}
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = inv.At(r, c)
		}
	}
	return out
}

// IsIdentity reports whether m is exactly the identity.
func (m Mat4) IsIdentity() bool { return m == Identity() }

// ApproxEqual reports whether every element of m and n differs by at most tol.
func (m Mat4) ApproxEqual(n Mat4, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-n[i]) > tol {
			return false
		}
	}
	return true
}

// ColumnMajor32 returns m as float32 in column-major order, the layout shader
// uniform buffers expect.
func (m Mat4) ColumnMajor32() [16]float32 {
	var out [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = float32(m[r*4+c])
		}
	}
	return out
}

// Translate returns a translation matrix.
func Translate(t Vec3) Mat4 {
	m := Identity()
	m[3], m[7], m[11] = t.X, t.Y, t.Z
	return m
}

// Scale returns a non-uniform scale matrix.
func Scale(s Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s.X, s.Y, s.Z
	return m
}

// Rotate returns the rotation matrix for q. q is normalized first.
func Rotate(q Quat) Mat4 {
	q = q.Normalized()
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0,
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0,
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// TRS returns Translate(t) × Rotate(q) × Scale(s).
func TRS(t Vec3, q Quat, s Vec3) Mat4 {
	return Translate(t).Mul(Rotate(q)).Mul(Scale(s))
}
