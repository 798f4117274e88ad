package overlap

import (
	"math"

	"go.uber.org/zap"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/sphere"
)

// ValidateOverlap checks the assembled overlap mesh for well-formedness
// and area conservation: every overlap face must have positive area and
// a simple boundary, and for each source and each target face the areas
// of its overlap fragments must sum back to the face's own area within
// the relative Conservation tolerance. Findings are logged; with strict
// set, any finding is also returned as a *ConservationError.
func ValidateOverlap(src, tgt *mesh.Mesh, ov *Overlap, tol Tolerances, strict bool, log *zap.Logger) error {
	var violations []Violation

	srcSum := make([]float64, len(src.Faces))
	tgtSum := make([]float64, len(tgt.Faces))
	for i := range ov.Mesh.Faces {
		area := ov.Mesh.FaceArea(i)
		srcSum[ov.SourceFace[i]] += area
		tgtSum[ov.TargetFace[i]] += area

		if area <= 0 {
			violations = append(violations, Violation{
				Role: "overlap", Face: i, Got: area,
				Reason: "non-positive area",
			})
		}
		if reason := selfIntersection(ov.Mesh, i, tol.Coincident); reason != "" {
			violations = append(violations, Violation{
				Role: "overlap", Face: i, Reason: reason,
			})
		}
	}

	violations = append(violations, conservation("source", src, srcSum, tol.Conservation)...)
	violations = append(violations, conservation("target", tgt, tgtSum, tol.Conservation)...)

	if len(violations) == 0 {
		log.Info("overlap mesh validated",
			zap.Float64("total_area", ov.Mesh.TotalArea()))
		return nil
	}
	for _, v := range violations {
		log.Warn("validation violation", zap.Stringer("violation", v))
	}
	log.Warn("overlap mesh validation finished with violations",
		zap.Int("violations", len(violations)))
	if strict {
		return &ConservationError{Violations: violations}
	}
	return nil
}

// conservation compares each face's area against the summed areas of its
// overlap fragments. Faces not covered by the other mesh at all are a
// coverage gap rather than a clipping defect, but on full-sphere inputs
// they show up the same way and are reported too.
func conservation(role string, m *mesh.Mesh, sums []float64, relTol float64) []Violation {
	var out []Violation
	for i := range m.Faces {
		want := m.FaceArea(i)
		got := sums[i]
		if math.Abs(got-want) > relTol*math.Max(want, 1e-300) {
			out = append(out, Violation{Role: role, Face: i, Got: got, Want: want})
		}
	}
	return out
}

// selfIntersection reports a transversal crossing between non-adjacent
// boundary edges of face i, or "" if the boundary is simple.
func selfIntersection(m *mesh.Mesh, i int, tol float64) string {
	f := m.Faces[i]
	n := f.NumEdges()
	for a := 0; a < n; a++ {
		for b := a + 2; b < n; b++ {
			if a == 0 && b == n-1 {
				continue
			}
			pts, _ := sphere.Intersect(m.Arc(f, a), m.Arc(f, b), tol)
			for _, p := range pts {
				// Shared endpoints of adjacent fragments are fine; a
				// crossing away from all four endpoints is not.
				if nearEndpoint(p, m.Arc(f, a), tol) || nearEndpoint(p, m.Arc(f, b), tol) {
					continue
				}
				return "self-intersecting boundary"
			}
		}
	}
	return ""
}

func nearEndpoint(p sphere.Point, a sphere.Arc, tol float64) bool {
	return p.ApproxEqualWithin(a.A, tol) || p.ApproxEqualWithin(a.B, tol)
}
