package overlap

import (
	"errors"
	"math"
	"testing"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/sphere"
)

func TestAssembleIdenticalMeshes(t *testing.T) {
	m := rllMesh(t, 4, 2)
	ov, err := Assemble(m, m, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got, want := len(ov.Mesh.Faces), len(m.Faces); got != want {
		t.Fatalf("overlap has %d faces, want %d", got, want)
	}
	for i := range ov.Mesh.Faces {
		if ov.SourceFace[i] != ov.TargetFace[i] {
			t.Errorf("overlap face %d: source %d != target %d for identical meshes",
				i, ov.SourceFace[i], ov.TargetFace[i])
		}
		want := m.FaceArea(ov.SourceFace[i])
		if a := ov.Mesh.FaceArea(i); !float64Near(a, want, 1e-12) {
			t.Errorf("overlap face %d area = %v, want %v", i, a, want)
		}
	}
	if a := ov.Mesh.TotalArea(); !float64Near(a, 4*math.Pi, 1e-10) {
		t.Errorf("overlap TotalArea = %v, want %v", a, 4*math.Pi)
	}
}

func TestAssembleNestedMeshes(t *testing.T) {
	// Every face of the finer mesh lies within exactly one face of the
	// coarser one, so the overlap mesh reproduces the finer mesh.
	src := rllMesh(t, 4, 2)
	tgt := rllMesh(t, 4, 4)
	ov, err := Assemble(src, tgt, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got, want := len(ov.Mesh.Faces), len(tgt.Faces); got != want {
		t.Fatalf("overlap has %d faces, want %d", got, want)
	}

	seen := make(map[int]bool)
	for i := range ov.Mesh.Faces {
		tf := ov.TargetFace[i]
		if seen[tf] {
			t.Errorf("target face %d appears in more than one overlap face", tf)
		}
		seen[tf] = true
		if a, want := ov.Mesh.FaceArea(i), tgt.FaceArea(tf); !float64Near(a, want, 1e-12) {
			t.Errorf("overlap face %d area = %v, want target face area %v", i, a, want)
		}
	}

	// Fragment areas must sum back to each source face.
	sums := make([]float64, len(src.Faces))
	for i := range ov.Mesh.Faces {
		sums[ov.SourceFace[i]] += ov.Mesh.FaceArea(i)
	}
	for sf, sum := range sums {
		if want := src.FaceArea(sf); !float64Near(sum, want, 1e-11) {
			t.Errorf("source face %d fragment sum = %v, want %v", sf, sum, want)
		}
	}
}

func TestAssembleStraddlingMeshes(t *testing.T) {
	// Offset grids: fragments must still jointly cover the sphere.
	src := rllMesh(t, 4, 4)
	tgt, err := mesh.NewRLLMesh(mesh.RLLOptions{
		Longitudes: 4, Latitudes: 4,
		LonBegin: 45, LonEnd: 405, LatBegin: -90, LatEnd: 90,
	})
	if err != nil {
		t.Fatalf("NewRLLMesh() error: %v", err)
	}
	ov, err := Assemble(src, tgt, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if a := ov.Mesh.TotalArea(); !float64Near(a, 4*math.Pi, 1e-10) {
		t.Errorf("overlap TotalArea = %v, want %v", a, 4*math.Pi)
	}

	// Provenance: every fragment lies within both parent faces.
	for i, f := range ov.Mesh.Faces {
		c := ov.Mesh.Centroid(f)
		if loc := src.PointInFace(c, ov.SourceFace[i], 1e-10); loc == mesh.Outside {
			t.Errorf("overlap face %d centroid outside source face %d", i, ov.SourceFace[i])
		}
		if loc := tgt.PointInFace(c, ov.TargetFace[i], 1e-10); loc == mesh.Outside {
			t.Errorf("overlap face %d centroid outside target face %d", i, ov.TargetFace[i])
		}
	}
}

func TestAssembleExactConservesArea(t *testing.T) {
	// Misaligned grids: the target triangulation cuts cross the source
	// faces' constant-latitude edges, so the merge step has to weld the
	// pieces back without leaving extra vertices or slivers. The exact
	// method must conserve to its own tolerance under strict validation.
	src := rllMesh(t, 4, 4)
	tgt := rllMesh(t, 3, 3)
	opts := DefaultOptions(Exact)
	opts.StrictValidation = true
	ov, err := Assemble(src, tgt, opts)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	sums := make([]float64, len(src.Faces))
	for i := range ov.Mesh.Faces {
		sums[ov.SourceFace[i]] += ov.Mesh.FaceArea(i)
	}
	for sf, sum := range sums {
		want := src.FaceArea(sf)
		if math.Abs(sum-want) > 1e-10*want {
			t.Errorf("source face %d fragment sum = %.12f, want %.12f", sf, sum, want)
		}
	}
	if a := ov.Mesh.TotalArea(); !float64Near(a, 4*math.Pi, 1e-9) {
		t.Errorf("overlap TotalArea = %v, want %v", a, 4*math.Pi)
	}
}

func TestAssembleFullSphereSource(t *testing.T) {
	// A single source face covering the whole sphere: every overlap face
	// is a target face, whole.
	src := &mesh.Mesh{Faces: []mesh.Face{mesh.FullSphereFace()}}
	tgt := rllMesh(t, 4, 4)

	opts := DefaultOptions(Exact)
	opts.StrictValidation = true
	ov, err := Assemble(src, tgt, opts)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if got := len(ov.Mesh.Faces); got != 16 {
		t.Fatalf("overlap has %d faces, want 16", got)
	}
	var sum float64
	for i := range ov.Mesh.Faces {
		if ov.SourceFace[i] != 0 {
			t.Errorf("overlap face %d source = %d, want 0", i, ov.SourceFace[i])
		}
		if ov.TargetFace[i] != i {
			t.Errorf("overlap face %d target = %d, want %d", i, ov.TargetFace[i], i)
		}
		if a, want := ov.Mesh.FaceArea(i), tgt.FaceArea(i); !float64Near(a, want, 1e-12) {
			t.Errorf("overlap face %d area = %v, want %v", i, a, want)
		}
		sum += ov.Mesh.FaceArea(i)
	}
	if !float64Near(sum, 4*math.Pi, 1e-10) {
		t.Errorf("overlap area sum = %v, want %v", sum, 4*math.Pi)
	}
}

func TestAssemblePartition(t *testing.T) {
	// Within one source face the fragments partition it: a fragment's
	// interior point lies in that fragment and no other fragment of the
	// same source face.
	src := rllMesh(t, 4, 4)
	tgt := rllMesh(t, 3, 3)
	ov, err := Assemble(src, tgt, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	bySource := make(map[int][]int)
	for i := range ov.Mesh.Faces {
		bySource[ov.SourceFace[i]] = append(bySource[ov.SourceFace[i]], i)
	}
	for i, f := range ov.Mesh.Faces {
		c := ov.Mesh.Centroid(f)
		hits := 0
		for _, j := range bySource[ov.SourceFace[i]] {
			if ov.Mesh.PointInFace(c, j, 1e-12) != mesh.Outside {
				hits++
			}
		}
		if hits != 1 {
			t.Errorf("overlap face %d centroid lies in %d fragments of source face %d, want 1",
				i, hits, ov.SourceFace[i])
		}
	}
}

func TestAssembleSwapSymmetry(t *testing.T) {
	a := rllMesh(t, 4, 2)
	b := rllMesh(t, 4, 4)
	ab, err := Assemble(a, b, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble(a, b) error: %v", err)
	}
	ba, err := Assemble(b, a, DefaultOptions(Exact))
	if err != nil {
		t.Fatalf("Assemble(b, a) error: %v", err)
	}
	if len(ab.Mesh.Faces) != len(ba.Mesh.Faces) {
		t.Errorf("swap changed face count: %d vs %d", len(ab.Mesh.Faces), len(ba.Mesh.Faces))
	}
	if x, y := ab.Mesh.TotalArea(), ba.Mesh.TotalArea(); !float64Near(x, y, 1e-11) {
		t.Errorf("swap changed total area: %v vs %v", x, y)
	}
}

func TestAssemblePerturbedMeshFuzzy(t *testing.T) {
	// The target mesh is the source with nodes nudged by 1e-13; fuzzy
	// coincidence absorbs the perturbation.
	src := rllMesh(t, 4, 2)
	tgt := rllMesh(t, 4, 2)
	for i, n := range tgt.Nodes {
		lat, lon := n.Latitude(), n.Longitude()
		if math.Abs(lat) < 1.5 { // keep the poles exact
			tgt.Nodes[i] = sphere.PointFromLatLng(lat+1e-13, lon+1e-13)
		}
	}
	tgt.InvalidateAreas()
	if err := tgt.Validate(); err != nil {
		t.Fatalf("perturbed mesh invalid: %v", err)
	}

	for _, method := range []Method{Fuzzy, Mixed} {
		ov, err := Assemble(src, tgt, DefaultOptions(method))
		if err != nil {
			t.Fatalf("Assemble(%v) error: %v", method, err)
		}
		if a := ov.Mesh.TotalArea(); !float64Near(a, 4*math.Pi, 1e-6) {
			t.Errorf("%v: overlap TotalArea = %v, want %v", method, a, 4*math.Pi)
		}
	}
}

func TestAssemblePerturbedMeshExact(t *testing.T) {
	// Under exact tolerances the perturbation is either resolved as
	// genuine geometry or rejected as a geometry failure, never absorbed
	// into a non-conserving mesh.
	src := rllMesh(t, 4, 2)
	tgt := rllMesh(t, 4, 2)
	for i, n := range tgt.Nodes {
		lat, lon := n.Latitude(), n.Longitude()
		if math.Abs(lat) < 1.5 {
			tgt.Nodes[i] = sphere.PointFromLatLng(lat+1e-13, lon+1e-13)
		}
	}
	tgt.InvalidateAreas()

	ov, err := Assemble(src, tgt, DefaultOptions(Exact))
	if err != nil {
		var gerr *GeometryError
		if !errors.As(err, &gerr) {
			t.Fatalf("Assemble(exact) error = %v, want nil or *GeometryError", err)
		}
		return
	}
	if a := ov.Mesh.TotalArea(); !float64Near(a, 4*math.Pi, 1e-9) {
		t.Errorf("overlap TotalArea = %v, want %v", a, 4*math.Pi)
	}
}

func TestAssembleValidatesInputs(t *testing.T) {
	good := rllMesh(t, 4, 2)
	bad := rllMesh(t, 4, 2)
	bad.Faces[0] = mesh.NewFace(bad.Faces[0].Nodes[2], bad.Faces[0].Nodes[1], bad.Faces[0].Nodes[0])

	var inputErr *mesh.InputError
	if _, err := Assemble(bad, good, DefaultOptions(Exact)); !errors.As(err, &inputErr) {
		t.Errorf("Assemble(bad source) error = %v, want *mesh.InputError", err)
	}
	if _, err := Assemble(good, bad, DefaultOptions(Exact)); !errors.As(err, &inputErr) {
		t.Errorf("Assemble(bad target) error = %v, want *mesh.InputError", err)
	}
}

func TestAssembleStrictValidation(t *testing.T) {
	// Disjoint regional meshes: no overlap faces, so under strict
	// validation every face is a conservation violation.
	regional := func(lonLo, lonHi float64) *mesh.Mesh {
		m, err := mesh.NewRLLMesh(mesh.RLLOptions{
			Longitudes: 2, Latitudes: 2,
			LonBegin: lonLo, LonEnd: lonHi, LatBegin: 0, LatEnd: 45,
		})
		if err != nil {
			t.Fatalf("NewRLLMesh() error: %v", err)
		}
		return m
	}
	src := regional(0, 40)
	tgt := regional(180, 220)

	opts := DefaultOptions(Exact)
	opts.StrictValidation = true
	_, err := Assemble(src, tgt, opts)
	var consvErr *ConservationError
	if !errors.As(err, &consvErr) {
		t.Fatalf("Assemble(disjoint, strict) error = %v, want *ConservationError", err)
	}
	if len(consvErr.Violations) == 0 {
		t.Errorf("ConservationError carries no violations")
	}

	// Without strict validation the violations are only logged.
	opts.StrictValidation = false
	if _, err := Assemble(src, tgt, opts); err != nil {
		t.Errorf("Assemble(disjoint) error = %v, want nil", err)
	}

	// With validation skipped there is nothing to report at all.
	opts.SkipValidation = true
	if _, err := Assemble(src, tgt, opts); err != nil {
		t.Errorf("Assemble(disjoint, novalidate) error = %v, want nil", err)
	}
}
