package overlap

import (
	"math"
	"sort"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/sphere"
)

// Polygon is a closed counterclockwise region on the sphere produced by
// clipping. Kinds[i] is the kind of the edge from Verts[i] to Verts[i+1],
// indices wrapping around.
type Polygon struct {
	Verts []sphere.Point
	Kinds []sphere.ArcKind
}

// Area returns the polygon's signed area, positive for counterclockwise
// boundaries. Constant-latitude edges contribute their correction over
// the great-circle chord.
func (p Polygon) Area() float64 {
	area := sphere.SignedLoopArea(p.Verts)
	for i, k := range p.Kinds {
		if k == sphere.ConstantLatitude {
			area += sphere.LatitudeArcArea(p.Verts[i], p.Verts[(i+1)%len(p.Verts)])
		}
	}
	return area
}

// Clip intersects source face sf with target face tf and returns the
// resulting polygons. The target face is triangulated and the source
// face boundary is clipped against each triangle's three half-spaces in
// turn; the per-triangle pieces are then merged back together, with the
// triangulation cuts cancelling out. A coincidence tolerance of tol
// radians governs when points and arcs are considered identical.
//
// A non-nil error is always a *GeometryError and indicates the pieces
// could not be reassembled into counterclockwise loops, typically from
// tolerance mismatch on nearly coincident edges.
func Clip(src *mesh.Mesh, sf int, tgt *mesh.Mesh, tf int, tol Tolerances) ([]Polygon, error) {
	source := Polygon{
		Verts: src.FaceVertices(src.Faces[sf]),
		Kinds: append([]sphere.ArcKind(nil), src.Faces[sf].Edges...),
	}
	target := Polygon{
		Verts: tgt.FaceVertices(tgt.Faces[tf]),
		Kinds: append([]sphere.ArcKind(nil), tgt.Faces[tf].Edges...),
	}

	// A full-sphere face intersects the other face in that face, whole.
	switch {
	case src.Faces[sf].FullSphere() && tgt.Faces[tf].FullSphere():
		return nil, &GeometryError{
			SourceFace: sf,
			TargetFace: tf,
			Reason:     "cannot intersect two full-sphere faces",
		}
	case src.Faces[sf].FullSphere():
		return []Polygon{target}, nil
	case tgt.Faces[tf].FullSphere():
		return []Polygon{source}, nil
	}

	var pieces []Polygon
	for _, tri := range triangulate(target) {
		piece := source
		for i := range tri.Verts {
			b := boundaryOf(sphere.Arc{
				A:    tri.Verts[i],
				B:    tri.Verts[(i+1)%len(tri.Verts)],
				Kind: tri.Kinds[i],
			})
			piece = b.clip(piece, tol.Coincident)
			if len(piece.Verts) == 0 {
				break
			}
		}
		if len(piece.Verts) >= 3 {
			pieces = append(pieces, piece)
		}
	}
	if len(pieces) == 0 {
		return nil, nil
	}
	return mergePieces(pieces, sf, tf, tol)
}

// triangulate splits a polygon into triangles by ear clipping. Boundary
// edges keep their kinds; the cut diagonals are great circles.
func triangulate(p Polygon) []Polygon {
	if len(p.Verts) == 3 {
		return []Polygon{p}
	}
	verts := append([]sphere.Point(nil), p.Verts...)
	kinds := append([]sphere.ArcKind(nil), p.Kinds...)
	out := make([]Polygon, 0, len(verts)-2)
	for len(verts) > 3 {
		i := findEar(verts)
		n := len(verts)
		prev, next := (i+n-1)%n, (i+1)%n
		out = append(out, Polygon{
			Verts: []sphere.Point{verts[prev], verts[i], verts[next]},
			Kinds: []sphere.ArcKind{kinds[prev], kinds[i], sphere.GreatCircle},
		})
		verts = append(verts[:i], verts[i+1:]...)
		kinds = append(kinds[:i], kinds[i+1:]...)
		// The edge that ran from prev to the removed vertex now runs
		// along the cut diagonal instead.
		if i == 0 {
			kinds[len(kinds)-1] = sphere.GreatCircle
		} else {
			kinds[i-1] = sphere.GreatCircle
		}
	}
	return append(out, Polygon{Verts: verts, Kinds: kinds})
}

// findEar returns the index of a vertex whose neighbor triangle is
// counterclockwise and contains no other polygon vertex.
func findEar(verts []sphere.Point) int {
	n := len(verts)
	for i := 0; i < n; i++ {
		a, b, c := verts[(i+n-1)%n], verts[i], verts[(i+1)%n]
		if sphere.RobustSign(a, b, c) < 0 {
			continue
		}
		ear := true
		for j := 0; j < n; j++ {
			if j == i || j == (i+n-1)%n || j == (i+1)%n {
				continue
			}
			if inTriangle(verts[j], a, b, c) {
				ear = false
				break
			}
		}
		if ear {
			return i
		}
	}
	// A simple counterclockwise polygon always has an ear; reaching here
	// means the input was degenerate. Trim the first vertex anyway.
	return 0
}

func inTriangle(p, a, b, c sphere.Point) bool {
	return sphere.RobustSign(a, b, p) > 0 &&
		sphere.RobustSign(b, c, p) > 0 &&
		sphere.RobustSign(c, a, p) > 0
}

// clipBoundary is the half-space to one side of an arc's supporting
// circle. For a great-circle arc of a counterclockwise face the interior
// lies where normal·p >= 0; for a constant-latitude arc it lies north or
// south of the latitude depending on the arc's travel direction.
type clipBoundary struct {
	kind sphere.ArcKind

	normal sphere.Point // great circle

	lat         float64 // constant latitude
	northInside bool
}

func boundaryOf(a sphere.Arc) clipBoundary {
	if a.Kind == sphere.ConstantLatitude {
		return clipBoundary{
			kind:        sphere.ConstantLatitude,
			lat:         a.A.Latitude(),
			northInside: eastward(a),
		}
	}
	return clipBoundary{kind: sphere.GreatCircle, normal: a.A.PointCross(a.B)}
}

// eastward reports whether a constant-latitude arc travels in the
// direction of increasing longitude. On a counterclockwise face the
// interior then lies to the north.
func eastward(a sphere.Arc) bool {
	return lonDiff(a.A.Longitude(), a.B.Longitude()) > 0
}

// lonDiff returns the signed longitude change from a to b, wrapped to
// (-π, π].
func lonDiff(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// inside reports whether p lies in the half-space, treating points
// within tol of the boundary as inside.
func (b clipBoundary) inside(p sphere.Point, tol float64) bool {
	if b.kind == sphere.ConstantLatitude {
		if b.northInside {
			return p.Latitude() >= b.lat-tol
		}
		return p.Latitude() <= b.lat+tol
	}
	return b.normal.Dot(p.Vector) >= -tol
}

// crossings returns the points where the arc crosses the boundary's
// supporting circle, restricted to the arc's span.
func (b clipBoundary) crossings(a sphere.Arc, tol float64) []sphere.Point {
	if b.kind == sphere.ConstantLatitude {
		return a.CrossingsWithLatitude(b.lat, tol)
	}
	return a.CrossingsWithPlane(b.normal, tol)
}

// clip returns the part of the polygon inside the half-space. An edge
// may cross the boundary more than once (latitude zones and full polygon
// edges are not geodesically convex), so each edge is split at every
// crossing and the subsegments classified by their midpoints. Gaps
// between the surviving chains are closed along the boundary circle,
// subdivided at every boundary point seen during the clip so that
// coincident closure segments from adjacent pieces cancel exactly when
// the pieces are merged.
func (b clipBoundary) clip(p Polygon, tol float64) Polygon {
	type edge struct {
		a, b sphere.Point
		kind sphere.ArcKind
	}
	var kept []edge
	var onBoundary []sphere.Point

	n := len(p.Verts)
	for i := 0; i < n; i++ {
		a := sphere.Arc{A: p.Verts[i], B: p.Verts[(i+1)%n], Kind: p.Kinds[i]}
		cross := b.crossings(a, tol)
		onBoundary = append(onBoundary, cross...)
		for _, s := range splitArc(a, cross, tol) {
			if b.inside(s.Midpoint(), tol) {
				kept = append(kept, edge{s.A, s.B, s.Kind})
			}
		}
	}
	if len(kept) == 0 {
		return Polygon{}
	}

	var out Polygon
	emit := func(v sphere.Point, kind sphere.ArcKind) {
		out.Verts = append(out.Verts, v)
		out.Kinds = append(out.Kinds, kind)
	}
	for i, e := range kept {
		emit(e.a, e.kind)
		next := kept[(i+1)%len(kept)]
		if e.b.ApproxEqualWithin(next.a, tol) {
			continue
		}
		// Close the gap along the boundary, splitting at every recorded
		// boundary point in between.
		closure := sphere.Arc{A: e.b, B: next.a, Kind: b.kind}
		var inner []sphere.Point
		for _, q := range onBoundary {
			if q.ApproxEqualWithin(e.b, tol) || q.ApproxEqualWithin(next.a, tol) {
				continue
			}
			if closure.ContainsPoint(q, tol) {
				inner = append(inner, q)
			}
		}
		for _, s := range splitArc(closure, inner, tol) {
			emit(s.A, s.Kind)
		}
	}
	return dropDegenerate(out, tol)
}

// splitArc splits the arc at the given points, returning the subsegments
// in traversal order. Points within tol of an endpoint are ignored.
func splitArc(a sphere.Arc, pts []sphere.Point, tol float64) []sphere.Arc {
	var inner []sphere.Point
	for _, p := range pts {
		if p.ApproxEqualWithin(a.A, tol) || p.ApproxEqualWithin(a.B, tol) {
			continue
		}
		inner = append(inner, p)
	}
	if len(inner) == 0 {
		return []sphere.Arc{a}
	}
	sort.Slice(inner, func(i, j int) bool {
		return paramAlong(a, inner[i]) < paramAlong(a, inner[j])
	})
	out := make([]sphere.Arc, 0, len(inner)+1)
	prev := a.A
	for _, p := range inner {
		out = append(out, sphere.Arc{A: prev, B: p, Kind: a.Kind})
		prev = p
	}
	return append(out, sphere.Arc{A: prev, B: a.B, Kind: a.Kind})
}

// paramAlong returns a monotone position of p along the arc.
func paramAlong(a sphere.Arc, p sphere.Point) float64 {
	if a.Kind == sphere.ConstantLatitude {
		return math.Abs(lonDiff(a.A.Longitude(), p.Longitude()))
	}
	return a.A.Angle(p.Vector)
}

// dropDegenerate removes consecutive near-duplicate vertices. The kind
// of the surviving edge is the kind of the edge leaving the last
// duplicate, which is the one that actually spans distance.
func dropDegenerate(p Polygon, tol float64) Polygon {
	var out Polygon
	n := len(p.Verts)
	for i := 0; i < n; i++ {
		if p.Verts[i].ApproxEqualWithin(p.Verts[(i+1)%n], tol) {
			continue
		}
		out.Verts = append(out.Verts, p.Verts[i])
		out.Kinds = append(out.Kinds, p.Kinds[i])
	}
	if len(out.Verts) < 3 {
		return Polygon{}
	}
	// The loop above keeps the kind of the edge arriving at a collapsed
	// run's survivor; fix up by re-checking the first vertex against the
	// last.
	if out.Verts[0].ApproxEqualWithin(out.Verts[len(out.Verts)-1], tol) {
		out.Verts = out.Verts[:len(out.Verts)-1]
		out.Kinds = out.Kinds[:len(out.Kinds)-1]
	}
	if len(out.Verts) < 3 {
		return Polygon{}
	}
	return out
}

// mergePieces welds the per-triangle clip results back into whole
// polygons. Vertices are interned with a quantized spatial hash, every
// piece contributes its boundary as directed edges, and opposite
// directed edges cancel: the triangulation cuts and any zero-width
// closure bridges vanish, leaving only the true boundary, which is then
// chained into loops.
func mergePieces(pieces []Polygon, sf, tf int, tol Tolerances) ([]Polygon, error) {
	in := newPointInterner(tol.Coincident)

	count := make(map[[2]int]int)
	kindOf := make(map[[2]int]sphere.ArcKind)
	for _, p := range pieces {
		n := len(p.Verts)
		for i := 0; i < n; i++ {
			u := in.intern(p.Verts[i])
			v := in.intern(p.Verts[(i+1)%n])
			if u == v {
				continue
			}
			count[[2]int{u, v}]++
			kindOf[[2]int{u, v}] = p.Kinds[i]
		}
	}

	// Opposite directed edges cancel pairwise; only the net circulation
	// survives.
	next := make(map[int][]dedge)
	for key, c := range count {
		rev := [2]int{key[1], key[0]}
		net := c - count[rev]
		for i := 0; i < net; i++ {
			next[key[0]] = append(next[key[0]], dedge{key[0], key[1], kindOf[key]})
		}
	}

	var loops []Polygon
	for from := 0; from < len(in.pts); from++ {
		for len(next[from]) > 0 {
			outs := next[from]
			e := outs[len(outs)-1]
			next[from] = outs[:len(outs)-1]
			loop, err := chainLoop(e, next, in, sf, tf)
			if err != nil {
				return nil, err
			}
			loops = append(loops, simplifyLoop(loop, tol.Coincident))
		}
	}

	var out []Polygon
	for _, l := range loops {
		if len(l.Verts) < 3 {
			continue
		}
		area := l.Area()
		if area < -tol.Area {
			return nil, &GeometryError{
				SourceFace: sf,
				TargetFace: tf,
				Reason:     "clip produced a clockwise loop",
			}
		}
		if area <= tol.Area {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// simplifyLoop removes vertices that join two edges of the same kind
// lying on one supporting circle. Triangulation cuts leave such vertices
// behind wherever a cut lands on a surviving boundary edge, and the
// near-degenerate fan triangles they create cost the area computation
// several digits.
func simplifyLoop(p Polygon, tol float64) Polygon {
	for removed := true; removed; {
		removed = false
		for i := 0; i < len(p.Verts) && len(p.Verts) > 3; i++ {
			n := len(p.Verts)
			prev := (i + n - 1) % n
			if p.Kinds[prev] != p.Kinds[i] {
				continue
			}
			if !redundantVertex(p.Verts[prev], p.Verts[i], p.Verts[(i+1)%n], p.Kinds[i], tol) {
				continue
			}
			p.Verts = append(p.Verts[:i], p.Verts[i+1:]...)
			p.Kinds = append(p.Kinds[:i], p.Kinds[i+1:]...)
			removed = true
			i--
		}
	}
	return p
}

// redundantVertex reports whether v lies on the arc from a to b of the
// given kind, so that the edges on either side of v continue one circle
// and v carries no geometry.
func redundantVertex(a, v, b sphere.Point, kind sphere.ArcKind, tol float64) bool {
	if kind == sphere.ConstantLatitude {
		lat := a.Latitude()
		if math.Abs(v.Latitude()-lat) > tol || math.Abs(b.Latitude()-lat) > tol {
			return false
		}
		d1 := lonDiff(a.Longitude(), v.Longitude())
		d2 := lonDiff(v.Longitude(), b.Longitude())
		return (d1 >= 0) == (d2 >= 0) && math.Abs(d1)+math.Abs(d2) < math.Pi
	}
	if a.Distance(b) > math.Pi-1e-9 {
		return false
	}
	return (sphere.Arc{A: a, B: b, Kind: sphere.GreatCircle}).DistanceTo(v) <= tol
}

type dedge struct {
	from, to int
	kind     sphere.ArcKind
}

// chainLoop follows directed edges from e until the walk returns to its
// starting vertex, consuming the edges it uses.
func chainLoop(e dedge, next map[int][]dedge, in *pointInterner, sf, tf int) (Polygon, error) {
	start := e.from
	var loop Polygon
	for {
		loop.Verts = append(loop.Verts, in.point(e.from))
		loop.Kinds = append(loop.Kinds, e.kind)
		if e.to == start {
			return loop, nil
		}
		outs := next[e.to]
		if len(outs) == 0 {
			return Polygon{}, &GeometryError{
				SourceFace: sf,
				TargetFace: tf,
				Reason:     "open edge chain in clip result",
			}
		}
		e = outs[len(outs)-1]
		next[e.from] = outs[:len(outs)-1]
	}
}

// pointInterner assigns stable integer ids to points, identifying points
// that fall within tol of each other. Candidates are found through a
// quantized coordinate hash with neighbor-bucket probing so that near
// misses across a bucket edge still match.
type pointInterner struct {
	tol     float64
	scale   float64
	buckets map[[3]int64][]int
	pts     []sphere.Point
}

func newPointInterner(tol float64) *pointInterner {
	return &pointInterner{
		tol:     tol,
		scale:   1 / math.Max(tol, 1e-15),
		buckets: make(map[[3]int64][]int),
	}
}

func (in *pointInterner) key(p sphere.Point) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X * in.scale)),
		int64(math.Floor(p.Y * in.scale)),
		int64(math.Floor(p.Z * in.scale)),
	}
}

func (in *pointInterner) intern(p sphere.Point) int {
	k := in.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range in.buckets[[3]int64{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if in.pts[id].ApproxEqualWithin(p, in.tol) {
						return id
					}
				}
			}
		}
	}
	id := len(in.pts)
	in.pts = append(in.pts, p)
	in.buckets[k] = append(in.buckets[k], id)
	return id
}

func (in *pointInterner) point(id int) sphere.Point { return in.pts[id] }
