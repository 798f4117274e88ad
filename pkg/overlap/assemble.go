package overlap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/sphere"
)

// Overlap is an overlap mesh together with its provenance: for each
// overlap face i, SourceFace[i] and TargetFace[i] are the indices of the
// faces whose intersection it is. Overlap faces are grouped by source
// face, in ascending target order within each group.
type Overlap struct {
	Mesh       *mesh.Mesh
	SourceFace []int
	TargetFace []int
}

// Assemble constructs the overlap mesh of the source and target meshes.
// Both inputs are validated first; a *mesh.InputError means the inputs
// never reached the clipper. Clipping failures surface as *GeometryError
// (except under the mixed method, where the affected pair is retried on
// the fuzzy path), and strict validation failures as *ConservationError.
func Assemble(src, tgt *mesh.Mesh, opts Options) (*Overlap, error) {
	log := opts.logger()

	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("source mesh: %w", err)
	}
	if err := tgt.Validate(); err != nil {
		return nil, fmt.Errorf("target mesh: %w", err)
	}

	index := NewFaceIndex(tgt, opts.FullScanThreshold)
	b := newBuilder(opts.primary().Coincident)

	log.Info("assembling overlap mesh",
		zap.Int("source_faces", len(src.Faces)),
		zap.Int("target_faces", len(tgt.Faces)),
		zap.Stringer("method", opts.Method))

	for sf := range src.Faces {
		for _, tf := range index.Query(BoundingCap(src, src.Faces[sf])) {
			polys, err := Clip(src, sf, tgt, tf, opts.primary())
			if err != nil {
				var gerr *GeometryError
				if opts.Method != Mixed || !errors.As(err, &gerr) {
					return nil, err
				}
				log.Warn("exact clip failed, retrying with fuzzy tolerances",
					zap.Int("source_face", sf),
					zap.Int("target_face", tf),
					zap.String("reason", gerr.Reason))
				polys, err = Clip(src, sf, tgt, tf, opts.Fuzzy)
				if err != nil {
					return nil, err
				}
			}
			for _, p := range polys {
				b.add(p, sf, tf)
			}
		}
	}

	ov := b.finish()
	log.Info("overlap mesh assembled",
		zap.Int("overlap_faces", len(ov.Mesh.Faces)),
		zap.Int("nodes", len(ov.Mesh.Nodes)))

	if opts.SkipValidation {
		return ov, nil
	}
	if err := ValidateOverlap(src, tgt, ov, opts.primary(), opts.StrictValidation, log); err != nil {
		return ov, err
	}
	return ov, nil
}

// builder accumulates overlap faces, deduplicating nodes across faces so
// that shared boundary points become shared node indices.
type builder struct {
	nodes *pointInterner
	faces []mesh.Face
	ov    Overlap
}

func newBuilder(tol float64) *builder {
	return &builder{nodes: newPointInterner(tol)}
}

func (b *builder) add(p Polygon, sf, tf int) {
	f := mesh.Face{
		Nodes: make([]int, len(p.Verts)),
		Edges: append([]sphere.ArcKind(nil), p.Kinds...),
	}
	for i, v := range p.Verts {
		f.Nodes[i] = b.nodes.intern(v)
	}
	b.faces = append(b.faces, f)
	b.ov.SourceFace = append(b.ov.SourceFace, sf)
	b.ov.TargetFace = append(b.ov.TargetFace, tf)
}

func (b *builder) finish() *Overlap {
	b.ov.Mesh = &mesh.Mesh{
		Nodes: b.nodes.pts,
		Faces: b.faces,
	}
	return &b.ov
}
