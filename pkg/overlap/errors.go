package overlap

import (
	"fmt"
	"strings"
)

// GeometryError reports a numerically ill-conditioned configuration: the
// clipper could not close an intersection polygon for a candidate pair.
// Under the mixed method this is recovered by falling back to the fuzzy
// path for that pair only; otherwise it is fatal.
type GeometryError struct {
	SourceFace int
	TargetFace int
	Reason     string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometric failure clipping source face %d against target face %d: %s",
		e.SourceFace, e.TargetFace, e.Reason)
}

// Violation is a single validation finding: either an area-conservation
// discrepancy on a source or target face, or a malformed overlap face.
type Violation struct {
	// Role is "source", "target" or "overlap".
	Role string
	// Face is the face index within the named mesh.
	Face int
	// Got and Want are the summed and expected areas for conservation
	// violations; Got is the face area for malformed overlap faces.
	Got  float64
	Want float64
	// Reason describes malformed-face findings.
	Reason string
}

func (v Violation) String() string {
	if v.Reason != "" {
		return fmt.Sprintf("%s face %d: %s", v.Role, v.Face, v.Reason)
	}
	return fmt.Sprintf("%s face %d: overlap area sum %.17g, face area %.17g (discrepancy %.3g)",
		v.Role, v.Face, v.Got, v.Want, v.Got-v.Want)
}

// ConservationError aggregates validation violations. It is returned only
// under strict validation; otherwise violations are reported as warnings.
type ConservationError struct {
	Violations []Violation
}

func (e *ConservationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d violation(s)", len(e.Violations))
	n := len(e.Violations)
	if n > 3 {
		n = 3
	}
	for _, v := range e.Violations[:n] {
		b.WriteString("; ")
		b.WriteString(v.String())
	}
	return b.String()
}
