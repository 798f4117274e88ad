// Package sphere implements geometry primitives on the unit sphere:
// points, great-circle and constant-latitude arcs, bounding caps, robust
// orientation predicates, and spherical polygon areas.
package sphere

import (
	"fmt"
	"math"
)

// Point represents a point on the unit sphere as a normalized 3D vector.
//
// Fields should be treated as read-only. Use one of the factory methods
// for creation.
type Point struct {
	Vector
}

// PointFromCoords creates a new normalized point from coordinates.
//
// This always returns a valid point. If the given coordinates cannot be
// normalized the reference point is returned.
func PointFromCoords(x, y, z float64) Point {
	if x == 0 && y == 0 && z == 0 {
		return ReferencePoint()
	}
	return Point{Vector{x, y, z}.Normalize()}
}

// PointFromLatLng returns the point at the given latitude and longitude,
// both in radians.
func PointFromLatLng(lat, lng float64) Point {
	cosLat := math.Cos(lat)
	return Point{Vector{
		cosLat * math.Cos(lng),
		cosLat * math.Sin(lng),
		math.Sin(lat),
	}}
}

// ReferencePoint returns a fixed point chosen away from the poles and
// from any coordinate plane, so that it does not trigger degenerate-case
// handling in edge tests.
func ReferencePoint() Point {
	return Point{Vector{0.00456762077230, 0.99947476613078, 0.03208315302933}}
}

// Latitude returns the latitude of the point in radians, in [-π/2, π/2].
func (p Point) Latitude() float64 {
	return math.Atan2(p.Z, math.Sqrt(p.X*p.X+p.Y*p.Y))
}

// Longitude returns the longitude of the point in radians, in [-π, π].
func (p Point) Longitude() float64 {
	return math.Atan2(p.Y, p.X)
}

// PointCross returns a unit point orthogonal to both p and op. This is
// similar to p.Cross(op) except that it does a better job of ensuring
// orthogonality when p is nearly parallel to op, and it returns a
// non-zero result even when p == op or p == -op.
func (p Point) PointCross(op Point) Point {
	x := p.Add(op.Vector).Cross(op.Sub(p.Vector))
	if x.ApproxEqual(Vector{}) {
		// The only result that makes sense mathematically is to return
		// zero, but it is more convenient to return an arbitrary
		// orthogonal vector.
		return Point{p.Ortho()}
	}
	return Point{x.Normalize()}
}

// Distance returns the angle between two points in radians.
func (p Point) Distance(op Point) float64 {
	return p.Vector.Angle(op.Vector)
}

// ApproxEqualWithin reports whether the angular separation of the two
// points is at most maxError radians.
func (p Point) ApproxEqualWithin(op Point, maxError float64) bool {
	return p.Vector.Angle(op.Vector) <= maxError
}

// Antipode returns the point diametrically opposite p.
func (p Point) Antipode() Point {
	return Point{p.Mul(-1)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.16g, %.16g, %.16g)", p.X, p.Y, p.Z)
}

// Interpolate returns the point at parameter t in [0, 1] along the
// great-circle arc from a to b.
func Interpolate(t float64, a, b Point) Point {
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	ab := a.Angle(b.Vector)
	ax := t * ab
	f := math.Sin(ax) / math.Sin(ab)
	e := math.Cos(ax) - f*math.Cos(ab)
	return Point{a.Mul(e).Add(b.Mul(f)).Normalize()}
}
