// Package mesh represents unstructured meshes on the unit sphere: nodes,
// faces with typed edges, adjacency queries and per-face areas.
package mesh

import (
	"fmt"
	"math"

	"github.com/sarich/tempestremap/pkg/sphere"
)

// NodeEpsilon is the tolerance within which a node vector must be unit
// length.
const NodeEpsilon = 1e-10

// Face is an ordered, closed loop of node indices with one edge kind per
// consecutive pair, implicitly closing last to first. Faces must have
// consistent counterclockwise (outward-normal) orientation; they may be
// concave or convex. A face with no nodes is the explicit full-sphere
// face, the only way to represent a region of more than a hemisphere.
type Face struct {
	Nodes []int
	Edges []sphere.ArcKind
}

// NewFace returns a face over the given node indices with all edges
// great circles.
func NewFace(nodes ...int) Face {
	return Face{
		Nodes: nodes,
		Edges: make([]sphere.ArcKind, len(nodes)),
	}
}

// FullSphereFace returns the face covering the entire sphere. It has no
// boundary: no nodes and no edges.
func FullSphereFace() Face { return Face{} }

// FullSphere reports whether the face is the explicit full-sphere face.
func (f Face) FullSphere() bool { return len(f.Nodes) == 0 }

// NumEdges returns the number of edges, which equals the number of nodes.
func (f Face) NumEdges() int { return len(f.Nodes) }

// Node returns the i-th node index with wraparound, so f.Node(len) is
// f.Node(0).
func (f Face) Node(i int) int { return f.Nodes[i%len(f.Nodes)] }

// Mesh owns a sequence of nodes (insertion order = index) and a sequence
// of faces referencing node indices. Faces never own nodes; all
// relationships are index references into the node sequence.
type Mesh struct {
	Nodes []sphere.Point
	Faces []Face

	areas []float64 // per-face cache, NaN = not yet computed
}

// Arc returns the i-th boundary arc of the face.
func (m *Mesh) Arc(f Face, i int) sphere.Arc {
	return sphere.Arc{
		A:    m.Nodes[f.Node(i)],
		B:    m.Nodes[f.Node(i+1)],
		Kind: f.Edges[i],
	}
}

// FaceVertices returns the face's vertex loop as points.
func (m *Mesh) FaceVertices(f Face) []sphere.Point {
	pts := make([]sphere.Point, len(f.Nodes))
	for i, n := range f.Nodes {
		pts[i] = m.Nodes[n]
	}
	return pts
}

// FaceArea returns the spherical area of face i, computing and caching it
// on first use. Constant-latitude edges contribute their exact correction
// relative to the great-circle chord, so the area of a face equals the
// sum of the areas of any exact partition of that face.
func (m *Mesh) FaceArea(i int) float64 {
	if m.areas == nil {
		m.areas = make([]float64, len(m.Faces))
		for j := range m.areas {
			m.areas[j] = math.NaN()
		}
	}
	if !math.IsNaN(m.areas[i]) {
		return m.areas[i]
	}
	a := m.signedFaceArea(m.Faces[i])
	if a < 0 {
		a += 4 * math.Pi
	}
	m.areas[i] = a
	return a
}

// signedFaceArea is positive for counterclockwise faces and negative for
// clockwise ones.
func (m *Mesh) signedFaceArea(f Face) float64 {
	if f.FullSphere() {
		return 4 * math.Pi
	}
	area := sphere.SignedLoopArea(m.FaceVertices(f))
	for i, kind := range f.Edges {
		if kind == sphere.ConstantLatitude {
			area += sphere.LatitudeArcArea(m.Nodes[f.Node(i)], m.Nodes[f.Node(i+1)])
		}
	}
	return area
}

// InvalidateAreas drops the per-face area cache. Callers must invoke it
// after changing mesh topology.
func (m *Mesh) InvalidateAreas() { m.areas = nil }

// TotalArea returns the sum of all face areas.
func (m *Mesh) TotalArea() float64 {
	var sum float64
	for i := range m.Faces {
		sum += m.FaceArea(i)
	}
	return sum
}

// Centroid returns the normalized vertex centroid of the face. For faces
// spanning less than a hemisphere this is an interior point. The
// full-sphere face has no distinguished interior point; a fixed
// reference point is returned.
func (m *Mesh) Centroid(f Face) sphere.Point {
	if f.FullSphere() {
		return sphere.ReferencePoint()
	}
	var v sphere.Vector
	for _, n := range f.Nodes {
		v = v.Add(m.Nodes[n].Vector)
	}
	if v.Norm2() == 0 {
		return m.Nodes[f.Nodes[0]]
	}
	return sphere.Point{Vector: v.Normalize()}
}

// NodeFaces returns, for every node index, the list of faces referencing
// it, in face order.
func (m *Mesh) NodeFaces() [][]int {
	out := make([][]int, len(m.Nodes))
	for fi, f := range m.Faces {
		for _, n := range f.Nodes {
			out[n] = append(out[n], fi)
		}
	}
	return out
}

// Neighbors returns the indices of faces sharing at least one edge with
// face fi.
func (m *Mesh) Neighbors(fi int) []int {
	type edgeKey struct{ lo, hi int }
	edges := make(map[edgeKey]bool)
	f := m.Faces[fi]
	for i := range f.Nodes {
		a, b := f.Node(i), f.Node(i+1)
		if a > b {
			a, b = b, a
		}
		edges[edgeKey{a, b}] = true
	}
	var out []int
	for fj, g := range m.Faces {
		if fj == fi {
			continue
		}
		for i := range g.Nodes {
			a, b := g.Node(i), g.Node(i+1)
			if a > b {
				a, b = b, a
			}
			if edges[edgeKey{a, b}] {
				out = append(out, fj)
				break
			}
		}
	}
	return out
}

// InputError reports a malformed input mesh. It is fatal: the offending
// face index is reported and the run aborts.
type InputError struct {
	Face   int
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("malformed input mesh: face %d: %s", e.Face, e.Reason)
}

// Validate checks mesh well-formedness: every node is a unit vector
// within NodeEpsilon, and every face is a loop of at least 3 distinct
// consecutive in-range node indices with one edge kind per node and
// counterclockwise orientation. Constant-latitude edges must connect
// nodes of equal latitude. Malformed input is a precondition violation,
// not something the caller should try to repair.
//
// Winding alone cannot tell a clockwise loop from a counterclockwise
// loop enclosing more than a hemisphere, so loops whose signed area
// comes out negative are rejected as clockwise. The full sphere is the
// one region larger than a hemisphere with a representation: the
// explicit boundaryless face from FullSphereFace.
func (m *Mesh) Validate() error {
	for i, n := range m.Nodes {
		if math.Abs(n.Norm()-1) > NodeEpsilon {
			return &InputError{Face: -1, Reason: fmt.Sprintf("node %d is not a unit vector (norm %.17g)", i, n.Norm())}
		}
	}
	for fi, f := range m.Faces {
		if f.FullSphere() {
			if len(f.Edges) != 0 {
				return &InputError{Face: fi, Reason: "full-sphere face must not have edge kinds"}
			}
			continue
		}
		if len(f.Nodes) < 3 {
			return &InputError{Face: fi, Reason: fmt.Sprintf("face has %d nodes, need at least 3", len(f.Nodes))}
		}
		if len(f.Edges) != len(f.Nodes) {
			return &InputError{Face: fi, Reason: fmt.Sprintf("face has %d edge kinds for %d nodes", len(f.Edges), len(f.Nodes))}
		}
		for i, n := range f.Nodes {
			if n < 0 || n >= len(m.Nodes) {
				return &InputError{Face: fi, Reason: fmt.Sprintf("node index %d out of range", n)}
			}
			if n == f.Node(i+1) {
				return &InputError{Face: fi, Reason: fmt.Sprintf("consecutive duplicate node %d", n)}
			}
		}
		for i, kind := range f.Edges {
			if kind == sphere.ConstantLatitude {
				a := m.Nodes[f.Node(i)]
				b := m.Nodes[f.Node(i+1)]
				if math.Abs(a.Latitude()-b.Latitude()) > NodeEpsilon {
					return &InputError{Face: fi, Reason: fmt.Sprintf("constant-latitude edge %d connects different latitudes", i)}
				}
			}
		}
		if m.signedFaceArea(f) < -1e-12 {
			return &InputError{Face: fi, Reason: "face has clockwise orientation"}
		}
	}
	return nil
}

// Location classifies a point against a face.
type Location int

const (
	Outside Location = iota
	Inside
	OnBoundary
)

func (l Location) String() string {
	switch l {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case OnBoundary:
		return "on-boundary"
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// PointInFace classifies p against face fi. A point within tol radians of
// the face boundary is OnBoundary; this is checked before the interior
// test so that boundary classification here is consistent with arc
// intersection at the same tolerance. The interior test counts crossings
// of the great-circle arc from a reference point outside the face, so it
// assumes the face spans less than a hemisphere around its vertex
// centroid.
func (m *Mesh) PointInFace(p sphere.Point, fi int, tol float64) Location {
	f := m.Faces[fi]
	if f.FullSphere() {
		return Inside
	}
	for i := range f.Nodes {
		if m.Arc(f, i).DistanceTo(p) <= tol {
			return OnBoundary
		}
	}
	ref := m.Centroid(f).Antipode()
	seg := sphere.Arc{A: ref, B: p, Kind: sphere.GreatCircle}
	// A tiny membership tolerance here keeps a crossing that lands
	// exactly on a shared vertex counted once per adjacent edge, which
	// preserves parity.
	const crossTol = 1e-15
	crossings := 0
	for i := range f.Nodes {
		pts, _ := sphere.Intersect(seg, m.Arc(f, i), crossTol)
		crossings += len(pts)
	}
	if crossings%2 == 1 {
		return Inside
	}
	return Outside
}
