// Package meshio reads and writes meshes as JSON documents. A mesh is a
// flat node table plus faces referencing it by index; the overlap variant
// carries two extra per-face arrays with the source and target face each
// overlap face came from.
package meshio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sarich/tempestremap/pkg/mesh"
	"github.com/sarich/tempestremap/pkg/overlap"
	"github.com/sarich/tempestremap/pkg/sphere"
)

type meshDoc struct {
	Nodes [][3]float64 `json:"nodes"`
	Faces []faceDoc    `json:"faces"`

	SourceFace []int `json:"source_face,omitempty"`
	TargetFace []int `json:"target_face,omitempty"`
}

type faceDoc struct {
	Nodes []int    `json:"nodes"`
	Edges []string `json:"edges,omitempty"`
}

const (
	edgeGreatCircle      = "gc"
	edgeConstantLatitude = "cl"
)

// Read decodes and validates a mesh. Omitted edge kinds default to
// great circles.
func Read(r io.Reader) (*mesh.Mesh, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	m, err := docMesh(doc)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadFile reads a mesh from the named file.
func ReadFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write encodes a mesh.
func Write(w io.Writer, m *mesh.Mesh) error {
	return encode(w, docFromMesh(m))
}

// WriteFile writes a mesh to the named file.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// WriteOverlap encodes an overlap mesh with its provenance arrays.
func WriteOverlap(w io.Writer, ov *overlap.Overlap) error {
	doc := docFromMesh(ov.Mesh)
	doc.SourceFace = ov.SourceFace
	doc.TargetFace = ov.TargetFace
	return encode(w, doc)
}

// WriteOverlapFile writes an overlap mesh to the named file.
func WriteOverlapFile(path string, ov *overlap.Overlap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOverlap(f, ov); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ReadOverlap decodes an overlap mesh, requiring the provenance arrays.
func ReadOverlap(r io.Reader) (*overlap.Overlap, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	if len(doc.SourceFace) != len(doc.Faces) || len(doc.TargetFace) != len(doc.Faces) {
		return nil, fmt.Errorf("overlap mesh needs one source_face and target_face entry per face")
	}
	m, err := docMesh(doc)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &overlap.Overlap{
		Mesh:       m,
		SourceFace: doc.SourceFace,
		TargetFace: doc.TargetFace,
	}, nil
}

func decode(r io.Reader) (*meshDoc, error) {
	var doc meshDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding mesh: %w", err)
	}
	return &doc, nil
}

func encode(w io.Writer, doc *meshDoc) error {
	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

func docMesh(doc *meshDoc) (*mesh.Mesh, error) {
	m := &mesh.Mesh{
		Nodes: make([]sphere.Point, len(doc.Nodes)),
		Faces: make([]mesh.Face, len(doc.Faces)),
	}
	for i, n := range doc.Nodes {
		m.Nodes[i] = sphere.Point{Vector: sphere.Vector{X: n[0], Y: n[1], Z: n[2]}}
	}
	for i, f := range doc.Faces {
		face := mesh.NewFace(f.Nodes...)
		if len(f.Edges) > 0 {
			if len(f.Edges) != len(f.Nodes) {
				return nil, fmt.Errorf("face %d: %d edge kinds for %d nodes", i, len(f.Edges), len(f.Nodes))
			}
			for j, e := range f.Edges {
				k, err := parseEdgeKind(e)
				if err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				face.Edges[j] = k
			}
		}
		m.Faces[i] = face
	}
	return m, nil
}

func docFromMesh(m *mesh.Mesh) *meshDoc {
	doc := &meshDoc{
		Nodes: make([][3]float64, len(m.Nodes)),
		Faces: make([]faceDoc, len(m.Faces)),
	}
	for i, n := range m.Nodes {
		doc.Nodes[i] = [3]float64{n.X, n.Y, n.Z}
	}
	for i, f := range m.Faces {
		fd := faceDoc{Nodes: f.Nodes}
		for _, k := range f.Edges {
			fd.Edges = append(fd.Edges, edgeKindName(k))
		}
		doc.Faces[i] = fd
	}
	return doc
}

func parseEdgeKind(s string) (sphere.ArcKind, error) {
	switch s {
	case edgeGreatCircle:
		return sphere.GreatCircle, nil
	case edgeConstantLatitude:
		return sphere.ConstantLatitude, nil
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

func edgeKindName(k sphere.ArcKind) string {
	if k == sphere.ConstantLatitude {
		return edgeConstantLatitude
	}
	return edgeGreatCircle
}
