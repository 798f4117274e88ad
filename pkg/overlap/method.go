// Package overlap constructs the overlap mesh of two meshes covering the
// unit sphere: the mesh whose faces are the exact geometric intersections
// of source-face/target-face pairs, annotated with back-references to the
// originating faces. The overlap mesh is the foundation for conservative
// remapping of fields between the two meshes.
package overlap

import (
	"fmt"

	"go.uber.org/zap"
)

// Method selects the degenerate-case resolution strategy. The methods
// differ only in tolerance policy: fuzzy uses a wide coincidence
// tolerance that aggressively snaps near-duplicate vertices, trading a
// small area error for robustness against ill-conditioned inputs; exact
// keeps the tolerance at the numerical noise floor and relies on exact
// sign predicates; mixed runs the exact path and falls back to the fuzzy
// path only for face pairs where the exact path fails to close a polygon.
type Method int

const (
	Fuzzy Method = iota
	Exact
	Mixed
)

func (m Method) String() string {
	switch m {
	case Fuzzy:
		return "fuzzy"
	case Exact:
		return "exact"
	case Mixed:
		return "mixed"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod parses one of "fuzzy", "exact" or "mixed".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "fuzzy":
		return Fuzzy, nil
	case "exact":
		return Exact, nil
	case "mixed":
		return Mixed, nil
	}
	return 0, fmt.Errorf("unknown overlap method %q (want fuzzy|exact|mixed)", s)
}

// Tolerances is the numerical policy of a clipping pass. All values were
// chosen empirically against the area-conservation property and can be
// overridden through configuration.
type Tolerances struct {
	// Coincident is the angular separation in radians below which two
	// points are considered identical.
	Coincident float64
	// Area is the minimum area of an emitted overlap face; smaller
	// intersection polygons are discarded as degenerate.
	Area float64
	// Conservation is the relative area discrepancy above which the
	// validator reports a face.
	Conservation float64
}

// ExactTolerances are the defaults for the exact method: coincidence at
// the numerical noise floor.
func ExactTolerances() Tolerances {
	return Tolerances{
		Coincident:   1e-14,
		Area:         1e-16,
		Conservation: 1e-10,
	}
}

// FuzzyTolerances are the defaults for the fuzzy method.
func FuzzyTolerances() Tolerances {
	return Tolerances{
		Coincident:   1e-10,
		Area:         1e-12,
		Conservation: 1e-6,
	}
}

// Options configures overlap-mesh assembly.
type Options struct {
	Method Method

	// Exact and Fuzzy are the tolerance sets used by the corresponding
	// paths. The mixed method uses Exact first and Fuzzy on fallback.
	Exact Tolerances
	Fuzzy Tolerances

	// SkipValidation disables the conservation/well-formedness pass.
	SkipValidation bool
	// StrictValidation turns validation reports into an error.
	StrictValidation bool

	// FullScanThreshold is the target-mesh face count below which the
	// spatial index degrades to a full scan.
	FullScanThreshold int

	Logger *zap.Logger
}

// DefaultOptions returns options for the given method with default
// tolerances.
func DefaultOptions(m Method) Options {
	return Options{
		Method:            m,
		Exact:             ExactTolerances(),
		Fuzzy:             FuzzyTolerances(),
		FullScanThreshold: 32,
	}
}

// primary returns the tolerance set the method starts with.
func (o Options) primary() Tolerances {
	if o.Method == Fuzzy {
		return o.Fuzzy
	}
	return o.Exact
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
