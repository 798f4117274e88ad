package sphere

import "math"

// TriangleArea returns the area on the unit sphere of the triangle with
// the given vertices.
//
// This method is based on l'Huilier's theorem,
//
//	tan(E/4) = sqrt(tan(s/2) tan((s-a)/2) tan((s-b)/2) tan((s-c)/2))
//
// where E is the spherical excess of the triangle (i.e. its area), a, b,
// c are the side lengths, and s is the semiperimeter (a + b + c) / 2.
//
// The only significant source of error in l'Huilier's method is the
// cancellation of the terms (s-a), (s-b), (s-c), which becomes severe for
// long skinny triangles; those fall back to Girard's formula.
func TriangleArea(a, b, c Point) float64 {
	sa := b.Angle(c.Vector)
	sb := c.Angle(a.Vector)
	sc := a.Angle(b.Vector)
	s := 0.5 * (sa + sb + sc)
	if s >= 3e-4 {
		// Consider whether Girard's formula might be more accurate.
		dmin := s - math.Max(sa, math.Max(sb, sc))
		if dmin < 1e-2*s*s*s*s*s {
			// This triangle is skinny enough to use Girard's formula.
			ab := a.PointCross(b)
			bc := b.PointCross(c)
			ac := a.PointCross(c)
			area := math.Max(0.0, ab.Angle(ac.Vector)-ab.Angle(bc.Vector)+bc.Angle(ac.Vector))
			if dmin < s*0.1*area {
				return area
			}
		}
	}
	// Use l'Huilier's formula.
	return 4 * math.Atan(math.Sqrt(math.Max(0.0, math.Tan(0.5*s)*math.Tan(0.5*(s-sa))*
		math.Tan(0.5*(s-sb))*math.Tan(0.5*(s-sc)))))
}

// SignedTriangleArea returns the triangle area with positive sign for
// counterclockwise vertices and negative sign for clockwise.
func SignedTriangleArea(a, b, c Point) float64 {
	return TriangleArea(a, b, c) * float64(RobustSign(a, b, c))
}

// LoopArea returns the area enclosed by the closed vertex loop, treating
// all edges as great-circle arcs. Counterclockwise loops (interior on the
// left) yield their enclosed area; clockwise loops are interpreted as
// enclosing the rest of the sphere. The result is in [0, 4π].
//
// The area is accumulated as a fan of signed triangles from an origin
// vertex. Spherical edges become numerically unstable as their length
// approaches π, so whenever extending the fan would create such an edge
// the origin is relocated to a point well-separated from the vertices
// involved, with compensating triangles keeping the total exact.
func LoopArea(vertices []Point) float64 {
	area := signedLoopArea(vertices)
	if area < 0 {
		area += 4 * math.Pi
	}
	return math.Max(0.0, math.Min(4*math.Pi, area))
}

// SignedLoopArea is LoopArea without the winding normalization: it is
// positive for counterclockwise loops and negative for clockwise ones.
func SignedLoopArea(vertices []Point) float64 {
	return signedLoopArea(vertices)
}

func signedLoopArea(vertices []Point) float64 {
	if len(vertices) < 3 {
		return 0
	}
	// The maximum length of a fan edge for it to be considered
	// numerically stable.
	const maxLength = math.Pi - 1e-5

	var sum float64
	origin := vertices[0]
	n := len(vertices)
	for i := 1; i+1 < n; i++ {
		if vertices[i+1].Angle(origin.Vector) > maxLength {
			// Extending the fan would create an unstable edge; pick a
			// new origin.
			oldOrigin := origin
			switch {
			case origin == vertices[0]:
				// A point well-separated from v0 and vi (and
				// therefore vi+1 as well).
				origin = Point{vertices[0].PointCross(vertices[i]).Normalize()}
			case vertices[i].Angle(vertices[0].Vector) < maxLength:
				// All edges of triangle (origin, v0, vi) are stable,
				// so revert to v0 as the origin.
				origin = vertices[0]
			default:
				// (origin, vi+1) and (v0, vi) are antipodal pairs and
				// origin is perpendicular to v0, so v0 ⨯ origin is
				// well-separated from all four points.
				origin = Point{vertices[0].Cross(oldOrigin.Vector)}
				sum += SignedTriangleArea(vertices[0], oldOrigin, origin)
			}
			sum += SignedTriangleArea(oldOrigin, vertices[i], origin)
		}
		sum += SignedTriangleArea(origin, vertices[i], vertices[i+1])
	}
	if origin != vertices[0] {
		sum += SignedTriangleArea(origin, vertices[n-1], vertices[0])
	}
	return sum
}

// LatitudeArcArea returns the signed area swept when the great-circle arc
// from a to b is replaced by the constant-latitude arc from a to b. It is
// the correction term added per constant-latitude edge when computing the
// area of a face whose boundary mixes both arc kinds; at the equator the
// two arcs coincide and the correction is zero.
//
// Derivation: the spherical Green's identity area = ∮ (1 - sin φ) dλ
// gives (1 - sin φ)·Δλ for the latitude arc, while the great-circle term
// equals the signed area of the triangle (north pole, a, b) since
// meridian segments contribute nothing to the integral.
func LatitudeArcArea(a, b Point) float64 {
	dLon := lonDelta(a.Longitude(), b.Longitude())
	if dLon == 0 {
		return 0
	}
	sinLat := a.Z
	pole := Point{Vector{0, 0, 1}}
	return (1-sinLat)*dLon - SignedTriangleArea(pole, a, b)
}
