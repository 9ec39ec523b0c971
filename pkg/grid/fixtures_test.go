package grid

import (
	"context"
	"testing"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/chazu/ugrid/pkg/repo"
	"github.com/google/uuid"
)

// twoTets is two disjoint unit tetrahedra, the second shifted two units
// along x. Cell c uses faces 4c..4c+3 and nodes 4c..4c+3.
func twoTets() ConstantGeometry {
	var g ConstantGeometry
	for c := uint64(0); c < 2; c++ {
		x := float64(2 * c)
		g.Points = append(g.Points,
			x, 0, 0,
			x+1, 0, 0,
			x, 1, 0,
			x, 0, 1)
		b := 4 * c
		g.NodeIndicesPerFace = append(g.NodeIndicesPerFace,
			b, b+2, b+1,
			b, b+1, b+3,
			b+1, b+2, b+3,
			b, b+3, b+2)
		g.FaceIndicesPerCell = append(g.FaceIndicesPerCell, b, b+1, b+2, b+3)
		g.CellFaceIsRightHanded = append(g.CellFaceIsRightHanded, 1, 1, 1, 1)
	}
	g.PointCount = 8
	g.FaceCount = 8
	return g
}

// tetFan is four tetrahedra around the z axis. Node 0 and node 1 are the
// ends of the axis and nodes 2..5 lie on the unit circle. Cell i uses the
// walls through ring nodes i and i+1, a bottom face and a top face. Faces
// are numbered out of order and walls are shared between neighbours.
func tetFan() ConstantGeometry {
	return ConstantGeometry{
		PointCount: 6,
		FaceCount:  12,
		Points: []float64{
			0, 0, 0,
			0, 0, 1,
			1, 0, 0,
			0, 1, 0,
			-1, 0, 0,
			0, -1, 0,
		},
		NodeIndicesPerFace: []uint64{
			1, 4, 5, // 0 top of cell 2
			0, 1, 3, // 1 wall between cells 0 and 1
			0, 3, 2, // 2 bottom of cell 0
			0, 1, 5, // 3 wall between cells 2 and 3
			1, 2, 3, // 4 top of cell 0
			0, 1, 2, // 5 wall between cells 3 and 0
			0, 2, 5, // 6 bottom of cell 3
			1, 3, 4, // 7 top of cell 1
			0, 1, 4, // 8 wall between cells 1 and 2
			0, 4, 3, // 9 bottom of cell 1
			1, 5, 2, // 10 top of cell 3
			0, 5, 4, // 11 bottom of cell 2
		},
		FaceIndicesPerCell: []uint64{
			4, 1, 5, 2,
			9, 1, 7, 8,
			8, 0, 11, 3,
			10, 3, 6, 5,
		},
		CellFaceIsRightHanded: []uint8{
			1, 1, 0, 1,
			1, 0, 1, 1,
			0, 1, 1, 1,
			1, 0, 1, 1,
		},
	}
}

// variableGeometry has three cells with 3, 4 and 1 faces and eight faces
// with 3 or 4 nodes. Face lists are the identity.
func variableGeometry() *Geometry {
	nodeCounts := []uint64{3, 4, 3, 3, 3, 4, 3, 3}
	g := &Geometry{
		PointCount:                        6,
		FaceCount:                         8,
		FaceIndicesPerCell:                []uint64{0, 1, 2, 3, 4, 5, 6, 7},
		FaceIndicesCumulativeCountPerCell: []uint64{3, 7, 8},
		CellFaceIsRightHanded:             []uint8{1, 0, 1, 1, 0, 1, 1, 1},
	}
	var total uint64
	for _, n := range nodeCounts {
		total += n
		g.NodeIndicesCumulativeCountPerFace = append(g.NodeIndicesCumulativeCountPerFace, total)
	}
	for i := uint64(0); i < total; i++ {
		g.NodeIndicesPerFace = append(g.NodeIndicesPerFace, i%6)
	}
	for i := 0; i < 6; i++ {
		g.Points = append(g.Points, float64(i), float64(2*i), float64(-i))
	}
	return g
}

func newTetGrid(t *testing.T) (*UnstructuredGrid, *arraystore.MemStore) {
	t.Helper()
	s := arraystore.NewMemStore()
	g := New(repo.New(s), uuid.Nil, "tets", 2)
	if err := g.SetTetrahedraOnlyGeometry(context.Background(), nil, twoTets(), nil); err != nil {
		t.Fatalf("SetTetrahedraOnlyGeometry: %v", err)
	}
	return g, s
}

func newVariableGrid(t *testing.T) (*UnstructuredGrid, *arraystore.MemStore) {
	t.Helper()
	s := arraystore.NewMemStore()
	g := New(nil, uuid.Nil, "mixed", 3)
	if err := g.SetGeometry(context.Background(), s, variableGeometry(), nil); err != nil {
		t.Fatalf("SetGeometry: %v", err)
	}
	return g, s
}

func mustLoad(t *testing.T, g *UnstructuredGrid) {
	t.Helper()
	if err := g.LoadGeometry(context.Background()); err != nil {
		t.Fatalf("LoadGeometry: %v", err)
	}
}
