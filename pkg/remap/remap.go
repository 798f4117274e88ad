// Package remap computes first-order conservative remapping weights from
// an overlap mesh. A field given as per-face constants on the source mesh
// is transferred to the target mesh by area-weighted averaging of the
// overlap fragments, which conserves the global integral exactly up to
// the accuracy of the overlap areas.
package remap

import (
	"fmt"
	"sort"

	"github.com/sarich/tempestremap/pkg/overlap"
)

// Weight is a single sparse matrix entry: the fraction of target face
// Target covered by source face Source.
type Weight struct {
	Source int
	Target int
	Value  float64
}

// Map is a first-order conservative remapping operator.
type Map struct {
	NumSource int
	NumTarget int
	Weights   []Weight
}

// NewMap builds the remapping operator from an overlap mesh. The weight
// of (source s, target t) is the overlap area of the pair divided by the
// area of t, summed over all fragments of the pair.
func NewMap(ov *overlap.Overlap, targetArea func(int) float64, numSource, numTarget int) *Map {
	type pair struct{ s, t int }
	acc := make(map[pair]float64)
	for i := range ov.Mesh.Faces {
		acc[pair{ov.SourceFace[i], ov.TargetFace[i]}] += ov.Mesh.FaceArea(i)
	}
	m := &Map{NumSource: numSource, NumTarget: numTarget}
	for p, area := range acc {
		m.Weights = append(m.Weights, Weight{
			Source: p.s,
			Target: p.t,
			Value:  area / targetArea(p.t),
		})
	}
	sort.Slice(m.Weights, func(i, j int) bool {
		a, b := m.Weights[i], m.Weights[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Source < b.Source
	})
	return m
}

// Apply remaps per-face source values onto the target mesh.
func (m *Map) Apply(src []float64) ([]float64, error) {
	if len(src) != m.NumSource {
		return nil, fmt.Errorf("source field has %d values, mesh has %d faces", len(src), m.NumSource)
	}
	out := make([]float64, m.NumTarget)
	for _, w := range m.Weights {
		out[w.Target] += w.Value * src[w.Source]
	}
	return out, nil
}
