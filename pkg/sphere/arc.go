package sphere

import (
	"fmt"
	"math"
)

// ArcKind distinguishes the two supported edge geometries. The kind is a
// run-time variant so that great-circle and constant-latitude arcs share
// one code path everywhere.
type ArcKind int

const (
	// GreatCircle is the shortest-path curve between two points, lying
	// in a plane through the sphere's center.
	GreatCircle ArcKind = iota
	// ConstantLatitude is a curve of fixed latitude. It is not a great
	// circle except at the equator.
	ConstantLatitude
)

func (k ArcKind) String() string {
	switch k {
	case GreatCircle:
		return "great-circle"
	case ConstantLatitude:
		return "constant-latitude"
	}
	return fmt.Sprintf("ArcKind(%d)", int(k))
}

// Arc is a directed arc from A to B on the unit sphere. A great-circle
// arc follows the shorter great-circle path; a constant-latitude arc
// follows the latitude circle through A and B in the direction that
// subtends at most π of longitude. Both endpoints must be unit vectors,
// and a constant-latitude arc requires A and B to share a latitude.
type Arc struct {
	A, B Point
	Kind ArcKind
}

// Reversed returns the arc traversed in the opposite direction.
func (a Arc) Reversed() Arc {
	return Arc{A: a.B, B: a.A, Kind: a.Kind}
}

// supportNormal returns a unit normal of the arc's supporting great
// circle. The result is independent of the arc's direction: the
// lexicographically smaller endpoint is always taken first, so both
// orientations of the same edge produce bit-identical normals. Only
// meaningful for great-circle arcs.
func (a Arc) supportNormal() Point {
	lo, hi := a.A, a.B
	if hi.Vector.LessThan(lo.Vector) {
		lo, hi = hi, lo
	}
	return lo.PointCross(hi)
}

// Midpoint returns the point halfway along the arc.
func (a Arc) Midpoint() Point {
	if a.Kind == GreatCircle {
		m := a.A.Add(a.B.Vector)
		if m.Norm2() < 1e-30 {
			// Antipodal endpoints: any midpoint is as good as another.
			return Point{a.A.Ortho()}
		}
		return Point{m.Normalize()}
	}
	return a.Interpolate(0.5)
}

// Interpolate returns the point at parameter t along the arc, with t=0 at
// A and t=1 at B. Great-circle arcs interpolate by angle, constant-latitude
// arcs by longitude.
func (a Arc) Interpolate(t float64) Point {
	if a.Kind == ConstantLatitude {
		lngA := a.A.Longitude()
		return PointFromLatLng(a.A.Latitude(), lngA+t*lonDelta(lngA, a.B.Longitude()))
	}
	return Interpolate(t, a.A, a.B)
}

// Length returns the arc length in radians.
func (a Arc) Length() float64 {
	if a.Kind == ConstantLatitude {
		return math.Abs(lonDelta(a.A.Longitude(), a.B.Longitude())) * math.Cos(a.A.Latitude())
	}
	return a.A.Distance(a.B)
}

// ContainsPoint reports whether p, assumed to lie on the arc's supporting
// circle, falls within the arc's span. Points within tol radians of an
// endpoint are considered contained.
func (a Arc) ContainsPoint(p Point, tol float64) bool {
	if p.ApproxEqualWithin(a.A, tol) || p.ApproxEqualWithin(a.B, tol) {
		return true
	}
	if a.Kind == ConstantLatitude {
		return a.lonSpanContains(p.Longitude())
	}
	n := a.A.PointCross(a.B)
	return OrderedCCW(a.A, p, a.B, n)
}

// lonSpanContains reports whether the longitude lng lies within the arc's
// longitude span. Only meaningful for constant-latitude arcs.
func (a Arc) lonSpanContains(lng float64) bool {
	lngA := a.A.Longitude()
	d := lonDelta(lngA, a.B.Longitude())
	t := lonDelta(lngA, lng)
	if d >= 0 {
		return t >= 0 && t <= d
	}
	return t <= 0 && t >= d
}

// DistanceTo returns the angular distance from p to the nearest point of
// the arc.
func (a Arc) DistanceTo(p Point) float64 {
	if a.Kind == ConstantLatitude {
		if a.lonSpanContains(p.Longitude()) {
			return math.Abs(p.Latitude() - a.A.Latitude())
		}
		return math.Min(p.Distance(a.A), p.Distance(a.B))
	}
	// If p is located in the spherical wedge defined by A, B and the
	// axis A ⨯ B, the closest point is on the segment; otherwise it is
	// the nearer endpoint.
	n := a.A.PointCross(a.B)
	if Sign(n, a.A, p) && Sign(p, a.B, n) {
		sinDist := math.Abs(p.Dot(n.Vector))
		return math.Asin(math.Min(1.0, sinDist))
	}
	pa := p.Sub(a.A.Vector).Norm2()
	pb := p.Sub(a.B.Vector).Norm2()
	return 2 * math.Asin(math.Min(1.0, 0.5*math.Sqrt(math.Min(pa, pb))))
}

// CrossingsWithPlane returns the points where the arc crosses the great
// circle with unit normal n, restricted to the arc's span. The result is
// deterministic in the arc's endpoints as an unordered pair, so the two
// directions of a shared edge produce identical crossing points.
func (a Arc) CrossingsWithPlane(n Point, tol float64) []Point {
	if a.Kind == ConstantLatitude {
		return a.latArcPlaneCrossings(n, tol)
	}
	an := a.supportNormal()
	x := an.Cross(n.Vector)
	if x.Norm2() < 1e-60 {
		// The arc lies (anti)parallel to the clip circle; coincident
		// overlap is resolved by the caller.
		return nil
	}
	cand := Point{x.Normalize()}
	var out []Point
	for _, p := range [2]Point{cand, cand.Antipode()} {
		if a.ContainsPoint(p, tol) {
			out = append(out, p)
		}
	}
	return out
}

// latArcPlaneCrossings solves n·p = 0 on the arc's latitude circle.
func (a Arc) latArcPlaneCrossings(n Point, tol float64) []Point {
	lat := a.A.Latitude()
	sinLat, cosLat := math.Sincos(lat)
	r := cosLat * math.Hypot(n.X, n.Y)
	c := -n.Z * sinLat
	if math.Abs(c) > r {
		return nil
	}
	alpha := math.Atan2(n.Y, n.X)
	delta := math.Acos(clamp(c/r, -1, 1))
	var out []Point
	for _, lng := range [2]float64{alpha + delta, alpha - delta} {
		p := PointFromLatLng(lat, lng)
		if a.ContainsPoint(p, tol) {
			out = append(out, p)
		}
	}
	return out
}

// CrossingsWithLatitude returns the points where the arc crosses the
// latitude circle at the given latitude, restricted to the arc's span.
func (a Arc) CrossingsWithLatitude(lat float64, tol float64) []Point {
	if a.Kind == ConstantLatitude {
		// Parallel circles; coincidence is resolved by the caller.
		return nil
	}
	// Canonicalize the endpoints so shared edges produce bit-identical
	// crossing points regardless of traversal direction.
	u := a.A
	if a.B.Vector.LessThan(u.Vector) {
		u = a.B
	}
	n := a.supportNormal()
	w := Point{n.Cross(u.Vector).Normalize()}

	// Points on the great circle are u·cosθ + w·sinθ; solve for z = sin(lat).
	sinLat := math.Sin(lat)
	r := math.Hypot(u.Z, w.Z)
	if math.Abs(sinLat) > r {
		return nil
	}
	alpha := math.Atan2(w.Z, u.Z)
	delta := math.Acos(clamp(sinLat/r, -1, 1))
	var out []Point
	for _, theta := range [2]float64{alpha + delta, alpha - delta} {
		sinT, cosT := math.Sincos(theta)
		p := Point{u.Mul(cosT).Add(w.Mul(sinT)).Normalize()}
		if a.ContainsPoint(p, tol) {
			out = append(out, p)
		}
	}
	return out
}

// Intersect computes the transversal intersection points of two arcs.
// Two points within tol radians of each other are considered identical.
// The coincident result reports that the arcs lie on the same supporting
// circle with overlapping spans; no transversal points are returned in
// that case.
func Intersect(x, y Arc, tol float64) (pts []Point, coincident bool) {
	switch {
	case x.Kind == GreatCircle && y.Kind == GreatCircle:
		nx, ny := x.supportNormal(), y.supportNormal()
		if nx.Cross(ny.Vector).Norm2() < 1e-60 {
			return nil, arcsOverlap(x, y, tol)
		}
		pts = dedupePoints(y.filterOn(x.CrossingsWithPlane(ny, tol), tol), tol)
		return pts, false

	case x.Kind == GreatCircle && y.Kind == ConstantLatitude:
		lat := y.A.Latitude()
		pts = dedupePoints(y.filterOn(x.CrossingsWithLatitude(lat, tol), tol), tol)
		return pts, false

	case x.Kind == ConstantLatitude && y.Kind == GreatCircle:
		return Intersect(y, x, tol)

	default: // both constant latitude
		if math.Abs(x.A.Latitude()-y.A.Latitude()) <= tol {
			return nil, arcsOverlap(x, y, tol)
		}
		return nil, false
	}
}

// filterOn keeps the points that also fall within arc a's span.
func (a Arc) filterOn(pts []Point, tol float64) []Point {
	var out []Point
	for _, p := range pts {
		if a.ContainsPoint(p, tol) {
			out = append(out, p)
		}
	}
	return out
}

// arcsOverlap reports whether two arcs on the same supporting circle have
// overlapping spans.
func arcsOverlap(x, y Arc, tol float64) bool {
	return x.ContainsPoint(y.A, tol) || x.ContainsPoint(y.B, tol) ||
		y.ContainsPoint(x.A, tol) || y.ContainsPoint(x.B, tol)
}

func dedupePoints(pts []Point, tol float64) []Point {
	var out []Point
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if p.ApproxEqualWithin(q, tol) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// lonDelta returns the signed longitude difference b-a wrapped to (-π, π].
func lonDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
