package overlap

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/sphere"
)

// FaceIndex is a coarse spatial index over a mesh's faces. Each face is
// assigned a bounding cap; the caps' axis-aligned bounding boxes are kept
// in an R-tree. Query returns a conservative superset of the faces whose
// bounding region intersects a given cap: false positives are filtered by
// the clipper returning an empty polygon, false negatives never occur.
type FaceIndex struct {
	caps []sphere.Cap

	tree *rtreego.Rtree
	// Faces whose bounding cap covers a hemisphere or more are scanned
	// on every query; boxing them would cover the whole cube anyway.
	oversized []int

	// fullScan lists every face when the index would be ineffective
	// (small meshes); nil otherwise.
	fullScan []int
}

type faceEntry struct {
	rect rtreego.Rect
	face int
}

func (e *faceEntry) Bounds() rtreego.Rect { return e.rect }

// NewFaceIndex builds an index over all faces of m. Meshes with fewer
// than fullScanThreshold faces degrade to a full scan.
func NewFaceIndex(m *mesh.Mesh, fullScanThreshold int) *FaceIndex {
	idx := &FaceIndex{caps: make([]sphere.Cap, len(m.Faces))}
	for i, f := range m.Faces {
		idx.caps[i] = BoundingCap(m, f)
	}

	if len(m.Faces) < fullScanThreshold {
		idx.fullScan = make([]int, len(m.Faces))
		for i := range idx.fullScan {
			idx.fullScan[i] = i
		}
		return idx
	}

	idx.tree = rtreego.NewTree(3, 8, 32)
	for i, c := range idx.caps {
		if c.Radius() >= math.Pi/2 {
			idx.oversized = append(idx.oversized, i)
			continue
		}
		idx.tree.Insert(&faceEntry{rect: capRect(c), face: i})
	}
	return idx
}

// Cap returns the bounding cap of face i.
func (idx *FaceIndex) Cap(i int) sphere.Cap { return idx.caps[i] }

// Query returns the indices of all faces whose bounding cap intersects
// the given cap, in ascending order.
func (idx *FaceIndex) Query(c sphere.Cap) []int {
	if idx.fullScan != nil {
		return idx.refine(c, idx.fullScan)
	}
	var cand []int
	for _, sp := range idx.tree.SearchIntersect(capRect(c)) {
		cand = append(cand, sp.(*faceEntry).face)
	}
	cand = append(cand, idx.oversized...)
	sort.Ints(cand)
	return idx.refine(c, cand)
}

func (idx *FaceIndex) refine(c sphere.Cap, cand []int) []int {
	out := make([]int, 0, len(cand))
	for _, i := range cand {
		if c.Intersects(idx.caps[i]) {
			out = append(out, i)
		}
	}
	return out
}

// BoundingCap returns a cap covering the whole face, edges included. The
// cap is grown around the face's vertices and arc midpoints and then
// expanded by a sagitta bound on how far an arc can bulge beyond its
// sampled points, so the result is conservative.
func BoundingCap(m *mesh.Mesh, f mesh.Face) sphere.Cap {
	if f.FullSphere() {
		return sphere.FullCap()
	}
	c := sphere.EmptyCap()
	var maxLen float64
	for i := range f.Nodes {
		a := m.Arc(f, i)
		c.AddPoint(a.A)
		c.AddPoint(a.Midpoint())
		if l := a.Length(); l > maxLen {
			maxLen = l
		}
	}
	return c.Expanded(maxLen * maxLen / 8)
}

// capRect returns the axis-aligned box containing the cap, clipped to
// the cube enclosing the unit sphere. Every point of the cap lies within
// the cap's chord radius of its center, so the box is conservative.
func capRect(c sphere.Cap) rtreego.Rect {
	r := c.ChordRadius()
	center := c.Center()
	lo := rtreego.Point{
		math.Max(center.X-r, -1),
		math.Max(center.Y-r, -1),
		math.Max(center.Z-r, -1),
	}
	lengths := make([]float64, 3)
	hi := [3]float64{
		math.Min(center.X+r, 1),
		math.Min(center.Y+r, 1),
		math.Min(center.Z+r, 1),
	}
	for i := 0; i < 3; i++ {
		lengths[i] = math.Max(hi[i]-lo[i], 1e-12)
	}
	rect, err := rtreego.NewRect(lo, lengths)
	if err != nil {
		// Lengths are always positive; this cannot happen.
		panic(err)
	}
	return rect
}
