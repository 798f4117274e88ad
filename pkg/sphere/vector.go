package sphere

import "math"

// Vector is a point or direction in 3-space.
type Vector struct {
	X, Y, Z float64
}

func (v Vector) Add(w Vector) Vector { return Vector{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }
func (v Vector) Sub(w Vector) Vector { return Vector{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }
func (v Vector) Mul(s float64) Vector {
	return Vector{s * v.X, s * v.Y, s * v.Z}
}

func (v Vector) Dot(w Vector) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

func (v Vector) Cross(w Vector) Vector {
	return Vector{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

func (v Vector) Norm() float64  { return math.Sqrt(v.Dot(v)) }
func (v Vector) Norm2() float64 { return v.Dot(v) }

func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return Vector{}
	}
	return v.Mul(1 / n)
}

// IsUnit reports whether the vector has norm 1 within a small tolerance.
func (v Vector) IsUnit() bool {
	const epsilon = 5e-14
	return math.Abs(v.Norm2()-1) <= epsilon
}

// Ortho returns a unit vector orthogonal to v. It is deterministic: the
// same input always yields the same output.
func (v Vector) Ortho() Vector {
	ov := Vector{0.012, 0.0053, 0.00457}
	switch {
	case math.Abs(v.X) > math.Abs(v.Y) && math.Abs(v.X) > math.Abs(v.Z):
		ov.X = 1
	case math.Abs(v.Y) > math.Abs(v.Z):
		ov.Y = 1
	default:
		ov.Z = 1
	}
	return v.Cross(ov).Normalize()
}

// Angle returns the angle between v and w in radians. This is numerically
// stable for both nearly parallel and nearly antipodal vectors, unlike
// acos of the dot product.
func (v Vector) Angle(w Vector) float64 {
	return math.Atan2(v.Cross(w).Norm(), v.Dot(w))
}

func (v Vector) ApproxEqual(w Vector) bool {
	const epsilon = 1e-16
	return math.Abs(v.X-w.X) < epsilon &&
		math.Abs(v.Y-w.Y) < epsilon &&
		math.Abs(v.Z-w.Z) < epsilon
}

// Cmp orders vectors lexicographically by (X, Y, Z). It returns -1, 0 or +1.
func (v Vector) Cmp(w Vector) int {
	switch {
	case v.X < w.X:
		return -1
	case v.X > w.X:
		return 1
	case v.Y < w.Y:
		return -1
	case v.Y > w.Y:
		return 1
	case v.Z < w.Z:
		return -1
	case v.Z > w.Z:
		return 1
	}
	return 0
}

func (v Vector) LessThan(w Vector) bool { return v.Cmp(w) < 0 }
