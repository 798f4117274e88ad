package mesh

import (
	"fmt"
	"math"

	"github.com/sarich/tempestremap/pkg/sphere"
)

// RLLOptions parameterizes a regular latitude-longitude mesh. Angles are
// in degrees.
type RLLOptions struct {
	Longitudes int
	Latitudes  int
	LonBegin   float64
	LonEnd     float64
	LatBegin   float64
	LatEnd     float64

	// FlipLatLon swaps the latitude and longitude dimensions in the
	// face ordering.
	FlipLatLon bool

	// GreatCirclesOnly tags every edge as a great circle. By default
	// the north and south edges of each face are constant-latitude
	// arcs, which is the exact geometry of a lat-lon cell.
	GreatCirclesOnly bool
}

// DefaultRLLOptions returns a global mesh of 128 longitudes by 64
// latitudes.
func DefaultRLLOptions() RLLOptions {
	return RLLOptions{
		Longitudes: 128,
		Latitudes:  64,
		LonBegin:   0,
		LonEnd:     360,
		LatBegin:   -90,
		LatEnd:     90,
	}
}

// NewRLLMesh generates a regular latitude-longitude mesh on the unit
// sphere. When the longitude span covers the full circle the mesh wraps;
// when a pole is included the adjacent faces are triangles meeting at a
// single polar node. Face ordering is latitude-major (all longitudes of
// the southernmost row first) unless FlipLatLon is set.
func NewRLLMesh(opts RLLOptions) (*Mesh, error) {
	if opts.Longitudes < 1 || opts.Latitudes < 1 {
		return nil, fmt.Errorf("rll mesh: resolution [%d, %d] must be positive", opts.Longitudes, opts.Latitudes)
	}
	if opts.LatBegin >= opts.LatEnd {
		return nil, fmt.Errorf("rll mesh: latitude interval [%g, %g] must be positive", opts.LatBegin, opts.LatEnd)
	}
	if opts.LonBegin >= opts.LonEnd {
		return nil, fmt.Errorf("rll mesh: longitude interval [%g, %g] must be positive", opts.LonBegin, opts.LonEnd)
	}
	if opts.LatBegin < -90 || opts.LatEnd > 90 {
		return nil, fmt.Errorf("rll mesh: latitudes [%g, %g] outside [-90, 90]", opts.LatBegin, opts.LatEnd)
	}

	nLon, nLat := opts.Longitudes, opts.Latitudes
	lonBegin := opts.LonBegin * math.Pi / 180
	lonEnd := opts.LonEnd * math.Pi / 180
	latBegin := opts.LatBegin * math.Pi / 180
	latEnd := opts.LatEnd * math.Pi / 180

	lonEdge := make([]float64, nLon+1)
	for i := 0; i <= nLon; i++ {
		lonEdge[i] = lonBegin + (lonEnd-lonBegin)*float64(i)/float64(nLon)
	}
	latEdge := make([]float64, nLat+1)
	for j := 0; j <= nLat; j++ {
		latEdge[j] = latBegin + (latEnd-latBegin)*float64(j)/float64(nLat)
	}

	wrap := math.Mod(lonEnd-lonBegin, 2*math.Pi) < 1e-12
	southPole := math.Abs(latBegin+0.5*math.Pi) < 1e-12
	northPole := math.Abs(latEnd-0.5*math.Pi) < 1e-12
	if southPole && northPole && nLat < 2 {
		return nil, fmt.Errorf("rll mesh: at least 2 latitudes required for a pole-to-pole mesh")
	}

	// Number of distinct nodes per latitude ring.
	ringNodes := nLon
	if !wrap {
		ringNodes++
	}

	m := &Mesh{}

	// Node layout: optional south polar node, then one ring per
	// non-polar latitude edge from south to north, then an optional
	// north polar node.
	southOffset := 0
	if southPole {
		m.Nodes = append(m.Nodes, sphere.PointFromLatLng(-math.Pi/2, 0))
		southOffset = 1
	}
	jLo, jHi := 0, nLat
	if southPole {
		jLo = 1
	}
	if northPole {
		jHi = nLat - 1
	}
	for j := jLo; j <= jHi; j++ {
		for i := 0; i < ringNodes; i++ {
			m.Nodes = append(m.Nodes, sphere.PointFromLatLng(latEdge[j], lonEdge[i]))
		}
	}
	northPolarNode := len(m.Nodes)
	if northPole {
		m.Nodes = append(m.Nodes, sphere.PointFromLatLng(math.Pi/2, 0))
	}

	ring := func(jx, i int) int {
		return southOffset + jx*ringNodes + i%ringNodes
	}
	latKind := sphere.ConstantLatitude
	if opts.GreatCirclesOnly {
		latKind = sphere.GreatCircle
	}

	// South polar triangles.
	if southPole {
		for i := 0; i < nLon; i++ {
			f := NewFace(0, ring(0, i+1), ring(0, i))
			f.Edges[1] = latKind
			m.Faces = append(m.Faces, f)
		}
	}

	// Interior quadrilaterals, counterclockwise viewed from outside:
	// southeast, northeast, northwest, southwest.
	jEnd := jHi
	for j := jLo; j < jEnd; j++ {
		jx := j - jLo
		for i := 0; i < nLon; i++ {
			f := NewFace(ring(jx, i+1), ring(jx+1, i+1), ring(jx+1, i), ring(jx, i))
			f.Edges[1] = latKind // north edge
			f.Edges[3] = latKind // south edge
			m.Faces = append(m.Faces, f)
		}
	}

	// North polar triangles.
	if northPole {
		jx := jHi - jLo
		for i := 0; i < nLon; i++ {
			f := NewFace(northPolarNode, ring(jx, i), ring(jx, i+1))
			f.Edges[1] = latKind
			m.Faces = append(m.Faces, f)
		}
	}

	if opts.FlipLatLon {
		flipped := make([]Face, 0, len(m.Faces))
		for i := 0; i < nLon; i++ {
			for j := 0; j < nLat; j++ {
				flipped = append(flipped, m.Faces[j*nLon+i])
			}
		}
		m.Faces = flipped
	}
	return m, nil
}
