package remap

import (
	"math"
	"testing"

	"github.com/sarich/tempestremap/pkg/field"
	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/overlap"
)

func float64Near(x, y, ε float64) bool {
	return math.Abs(x-y) <= ε
}

func rllMesh(t *testing.T, nLon, nLat int) *mesh.Mesh {
	t.Helper()
	opts := mesh.DefaultRLLOptions()
	opts.Longitudes = nLon
	opts.Latitudes = nLat
	m, err := mesh.NewRLLMesh(opts)
	if err != nil {
		t.Fatalf("NewRLLMesh(%d, %d) error: %v", nLon, nLat, err)
	}
	return m
}

func buildMap(t *testing.T, src, tgt *mesh.Mesh) *Map {
	t.Helper()
	ov, err := overlap.Assemble(src, tgt, overlap.DefaultOptions(overlap.Exact))
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return NewMap(ov, tgt.FaceArea, len(src.Faces), len(tgt.Faces))
}

func TestMapRowSums(t *testing.T) {
	// With full coverage the fragments of each target face tile it, so
	// every row of the operator sums to one.
	src := rllMesh(t, 4, 4)
	tgt := rllMesh(t, 3, 3)
	m := buildMap(t, src, tgt)

	rows := make([]float64, m.NumTarget)
	for _, w := range m.Weights {
		if w.Value <= 0 {
			t.Errorf("weight (%d, %d) = %v, want positive", w.Source, w.Target, w.Value)
		}
		rows[w.Target] += w.Value
	}
	for tf, sum := range rows {
		if !float64Near(sum, 1, 1e-11) {
			t.Errorf("target face %d row sum = %v, want 1", tf, sum)
		}
	}
}

func TestMapConstantField(t *testing.T) {
	src := rllMesh(t, 8, 4)
	tgt := rllMesh(t, 6, 3)
	m := buildMap(t, src, tgt)

	vals := make([]float64, m.NumSource)
	for i := range vals {
		vals[i] = 1
	}
	out, err := m.Apply(vals)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	for tf, v := range out {
		if !float64Near(v, 1, 1e-11) {
			t.Errorf("remapped constant at target face %d = %v, want 1", tf, v)
		}
	}
}

func TestMapConservesIntegral(t *testing.T) {
	src := rllMesh(t, 8, 4)
	tgt := rllMesh(t, 5, 3)
	m := buildMap(t, src, tgt)

	vals := field.Y2b2.Sample(src)
	out, err := m.Apply(vals)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	var srcInt, tgtInt float64
	for i, v := range vals {
		srcInt += v * src.FaceArea(i)
	}
	for i, v := range out {
		tgtInt += v * tgt.FaceArea(i)
	}
	if !float64Near(tgtInt, srcInt, 1e-10*math.Abs(srcInt)) {
		t.Errorf("target integral = %v, want source integral %v", tgtInt, srcInt)
	}
}

func TestMapIdentity(t *testing.T) {
	m0 := rllMesh(t, 4, 2)
	m := buildMap(t, m0, m0)

	if len(m.Weights) != len(m0.Faces) {
		t.Fatalf("identity map has %d weights, want %d", len(m.Weights), len(m0.Faces))
	}
	for _, w := range m.Weights {
		if w.Source != w.Target {
			t.Errorf("identity weight couples source %d to target %d", w.Source, w.Target)
		}
		if !float64Near(w.Value, 1, 1e-11) {
			t.Errorf("identity weight (%d, %d) = %v, want 1", w.Source, w.Target, w.Value)
		}
	}

	vals := field.Y16b32.Sample(m0)
	out, err := m.Apply(vals)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	for i := range vals {
		if !float64Near(out[i], vals[i], 1e-11) {
			t.Errorf("identity remap changed face %d: %v -> %v", i, vals[i], out[i])
		}
	}
}

func TestMapWeightsSorted(t *testing.T) {
	src := rllMesh(t, 4, 4)
	tgt := rllMesh(t, 3, 3)
	m := buildMap(t, src, tgt)

	for i := 1; i < len(m.Weights); i++ {
		a, b := m.Weights[i-1], m.Weights[i]
		if a.Target > b.Target || (a.Target == b.Target && a.Source >= b.Source) {
			t.Fatalf("weights out of order at %d: (%d,%d) before (%d,%d)",
				i, a.Source, a.Target, b.Source, b.Target)
		}
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	m := &Map{NumSource: 4, NumTarget: 2}
	if _, err := m.Apply(make([]float64, 3)); err == nil {
		t.Errorf("Apply() with short field succeeded, want error")
	}
}
