// Package mesher converts voxel lattices into unstructured grid geometry.
// Hexahedral meshes use one cell per inside voxel; tetrahedral meshes split
// each voxel into six tetrahedra around its main diagonal. Shared faces are
// stored once and nodes are numbered compactly in order of first use.
package mesher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/ugrid/pkg/graph"
	"github.com/chazu/ugrid/pkg/grid"
	"github.com/chazu/ugrid/pkg/kernel"
	"github.com/chazu/ugrid/pkg/offsets"
)

// ErrEmpty is returned when a lattice has no inside voxels.
var ErrEmpty = errors.New("mesher: no cells inside the solid")

// Voxel corners are numbered c = dx + 2*dy + 4*dz.
var (
	hexFaces = [6][4]int{
		{0, 2, 6, 4}, // x-
		{1, 3, 7, 5}, // x+
		{0, 1, 5, 4}, // y-
		{2, 3, 7, 6}, // y+
		{0, 1, 3, 2}, // z-
		{4, 5, 7, 6}, // z+
	}
	kuhnTets = [6][4]int{
		{0, 1, 3, 7},
		{0, 1, 5, 7},
		{0, 2, 3, 7},
		{0, 2, 6, 7},
		{0, 4, 5, 7},
		{0, 4, 6, 7},
	}
	tetFaces = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
)

// Mesh is an unstructured polyhedral mesh in flat list form.
type Mesh struct {
	// Points holds xyz triples, one per node.
	Points []float64
	// FaceNodes concatenates the node indices of every face.
	FaceNodes    []uint64
	NodesPerFace []uint64
	// CellFaces concatenates the face indices of every cell.
	CellFaces    []uint64
	FacesPerCell []uint64
	// RightHanded holds one flag per CellFaces entry, 1 when the stored node
	// order of the face yields a normal pointing out of the cell.
	RightHanded []uint8
	Shape       grid.CellShape
}

func (m *Mesh) CellCount() uint64  { return uint64(len(m.FacesPerCell)) }
func (m *Mesh) FaceCount() uint64  { return uint64(len(m.NodesPerFace)) }
func (m *Mesh) PointCount() uint64 { return uint64(len(m.Points) / 3) }

// Build meshes v into the cells named by kind.
func Build(ctx context.Context, v *kernel.VoxelGrid, kind graph.CellKind) (*Mesh, error) {
	switch kind {
	case graph.CellsHexahedral:
		return Hexahedra(ctx, v)
	case graph.CellsTetrahedral:
		return Tetrahedra(ctx, v)
	}
	return nil, fmt.Errorf("mesher: unsupported cell kind %v", kind)
}

// Hexahedra emits one hexahedron per inside voxel.
func Hexahedra(ctx context.Context, v *kernel.VoxelGrid) (*Mesh, error) {
	b := newBuilder(v, grid.CellShapeHexahedral)
	err := b.each(ctx, func(corners [8]uint64) {
		faces := make([][]uint64, len(hexFaces))
		for f, local := range hexFaces {
			faces[f] = []uint64{corners[local[0]], corners[local[1]], corners[local[2]], corners[local[3]]}
		}
		b.cell(faces, corners[:])
	})
	if err != nil {
		return nil, err
	}
	return b.finish()
}

// Tetrahedra emits six tetrahedra per inside voxel.
func Tetrahedra(ctx context.Context, v *kernel.VoxelGrid) (*Mesh, error) {
	b := newBuilder(v, grid.CellShapeTetrahedral)
	err := b.each(ctx, func(corners [8]uint64) {
		for _, tet := range kuhnTets {
			nodes := []uint64{corners[tet[0]], corners[tet[1]], corners[tet[2]], corners[tet[3]]}
			faces := make([][]uint64, len(tetFaces))
			for f, local := range tetFaces {
				faces[f] = []uint64{nodes[local[0]], nodes[local[1]], nodes[local[2]]}
			}
			b.cell(faces, nodes)
		}
	})
	if err != nil {
		return nil, err
	}
	return b.finish()
}

type faceKey [4]uint64

func keyOf(nodes []uint64) faceKey {
	k := faceKey{math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64}
	copy(k[:], nodes)
	// insertion sort, at most four entries
	for i := 1; i < len(k); i++ {
		for j := i; j > 0 && k[j] < k[j-1]; j-- {
			k[j], k[j-1] = k[j-1], k[j]
		}
	}
	return k
}

type builder struct {
	v          *kernel.VoxelGrid
	mesh       *Mesh
	nodes      map[int]uint64 // lattice corner -> node index
	faces      map[faceKey]uint64
	faceStarts []uint64
}

func newBuilder(v *kernel.VoxelGrid, shape grid.CellShape) *builder {
	return &builder{
		v:     v,
		mesh:  &Mesh{Shape: shape},
		nodes: make(map[int]uint64),
		faces: make(map[faceKey]uint64),
	}
}

// each calls emit with the node indices of the eight corners of every
// inside voxel, i fastest.
func (b *builder) each(ctx context.Context, emit func(corners [8]uint64)) error {
	v := b.v
	for k := 0; k < v.NZ; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := 0; j < v.NY; j++ {
			for i := 0; i < v.NX; i++ {
				if !v.At(i, j, k) {
					continue
				}
				var corners [8]uint64
				for c := range corners {
					corners[c] = b.node(i+(c&1), j+(c>>1&1), k+(c>>2&1))
				}
				emit(corners)
			}
		}
	}
	return nil
}

func (b *builder) node(i, j, k int) uint64 {
	key := i + (b.v.NX+1)*(j+(b.v.NY+1)*k)
	if n, ok := b.nodes[key]; ok {
		return n
	}
	n := uint64(len(b.nodes))
	b.nodes[key] = n
	p := b.v.Corner(i, j, k)
	b.mesh.Points = append(b.mesh.Points, p[0], p[1], p[2])
	return n
}

func (b *builder) point(n uint64) r3.Vec {
	p := b.mesh.Points[3*n:]
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

func (b *builder) centroid(nodes []uint64) r3.Vec {
	var c r3.Vec
	for _, n := range nodes {
		c = r3.Add(c, b.point(n))
	}
	return r3.Scale(1/float64(len(nodes)), c)
}

// newell returns the polygon normal of the nodes in order.
func (b *builder) newell(nodes []uint64) r3.Vec {
	var n r3.Vec
	for i := range nodes {
		p, q := b.point(nodes[i]), b.point(nodes[(i+1)%len(nodes)])
		n = r3.Add(n, r3.Cross(p, q))
	}
	return n
}

// cell appends a cell with the given faces. A face seen before reuses its
// index and stored node order.
func (b *builder) cell(faces [][]uint64, cellNodes []uint64) {
	m := b.mesh
	center := b.centroid(cellNodes)
	for _, nodes := range faces {
		key := keyOf(nodes)
		idx, seen := b.faces[key]
		stored := nodes
		if seen {
			start := b.faceStarts[idx]
			stored = m.FaceNodes[start : start+m.NodesPerFace[idx]]
		} else {
			idx = uint64(len(m.NodesPerFace))
			b.faces[key] = idx
			b.faceStarts = append(b.faceStarts, uint64(len(m.FaceNodes)))
			m.FaceNodes = append(m.FaceNodes, nodes...)
			m.NodesPerFace = append(m.NodesPerFace, uint64(len(nodes)))
		}
		outward := r3.Dot(b.newell(stored), r3.Sub(b.centroid(stored), center)) > 0
		flag := uint8(0)
		if outward {
			flag = 1
		}
		m.CellFaces = append(m.CellFaces, idx)
		m.RightHanded = append(m.RightHanded, flag)
	}
	m.FacesPerCell = append(m.FacesPerCell, uint64(len(faces)))
}

func (b *builder) finish() (*Mesh, error) {
	if len(b.mesh.FacesPerCell) == 0 {
		return nil, ErrEmpty
	}
	return b.mesh, nil
}

// uniform returns the shared value of counts, or false.
func uniform(counts []uint64) (uint64, bool) {
	for _, c := range counts[1:] {
		if c != counts[0] {
			return 0, false
		}
	}
	return counts[0], true
}

// ConstantGeometry returns the mesh as a constant-shape payload. It fails
// when cells or faces differ in valence.
func (m *Mesh) ConstantGeometry() (*grid.ConstantGeometry, error) {
	if m.CellCount() == 0 {
		return nil, ErrEmpty
	}
	fpc, ok := uniform(m.FacesPerCell)
	if !ok {
		return nil, fmt.Errorf("mesher: cells have differing face counts")
	}
	npf, ok := uniform(m.NodesPerFace)
	if !ok {
		return nil, fmt.Errorf("mesher: faces have differing node counts")
	}
	return &grid.ConstantGeometry{
		CellFaceIsRightHanded: m.RightHanded,
		Points:                m.Points,
		PointCount:            m.PointCount(),
		FaceCount:             m.FaceCount(),
		FaceIndicesPerCell:    m.CellFaces,
		FaceCountPerCell:      fpc,
		NodeIndicesPerFace:    m.FaceNodes,
		NodeCountPerFace:      npf,
		CellShape:             m.Shape,
	}, nil
}

// Geometry returns the mesh as a variable-shape payload with inclusive
// cumulative counts.
func (m *Mesh) Geometry() (*grid.Geometry, error) {
	if m.CellCount() == 0 {
		return nil, ErrEmpty
	}
	cells := append([]uint64(nil), m.FacesPerCell...)
	if err := offsets.ToCumulative(cells); err != nil {
		return nil, fmt.Errorf("mesher: faces per cell: %w", err)
	}
	faces := append([]uint64(nil), m.NodesPerFace...)
	if err := offsets.ToCumulative(faces); err != nil {
		return nil, fmt.Errorf("mesher: nodes per face: %w", err)
	}
	return &grid.Geometry{
		CellFaceIsRightHanded:             m.RightHanded,
		Points:                            m.Points,
		PointCount:                        m.PointCount(),
		FaceCount:                         m.FaceCount(),
		FaceIndicesPerCell:                m.CellFaces,
		FaceIndicesCumulativeCountPerCell: cells,
		NodeIndicesPerFace:                m.FaceNodes,
		NodeIndicesCumulativeCountPerFace: faces,
		CellShape:                         m.Shape,
	}, nil
}
