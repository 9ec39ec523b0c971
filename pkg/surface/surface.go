// Package surface extracts the boundary of a loaded unstructured grid as a
// triangle mesh.
package surface

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/ugrid/pkg/grid"
	"github.com/chazu/ugrid/pkg/kernel"
)

// slot is one (cell, local face) reference.
type slot struct {
	cell, local uint64
	flag        uint8
}

// Extract returns the faces referenced by exactly one cell, wound so their
// normals point out of the grid and fan-triangulated. The grid's geometry
// must be loaded.
func Extract(ctx context.Context, g *grid.UnstructuredGrid) (*kernel.Mesh, error) {
	var slots uint64
	uses := make(map[uint64]int)
	for c := uint64(0); c < g.CellCount(); c++ {
		n, err := g.FaceCountOfCell(c)
		if err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
		for l := uint64(0); l < n; l++ {
			f, err := g.GlobalFaceIndex(c, l)
			if err != nil {
				return nil, fmt.Errorf("surface: %w", err)
			}
			uses[f]++
		}
		slots += n
	}

	flags := make([]uint8, slots)
	if err := g.ReadCellFaceIsRightHanded(ctx, flags); err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	pts, err := g.XYZPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}

	var boundary []slot
	var k uint64
	for c := uint64(0); c < g.CellCount(); c++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, _ := g.FaceCountOfCell(c)
		for l := uint64(0); l < n; l++ {
			f, _ := g.GlobalFaceIndex(c, l)
			if uses[f] == 1 {
				boundary = append(boundary, slot{cell: c, local: l, flag: flags[k]})
			}
			k++
		}
	}

	m := &kernel.Mesh{Name: g.Title()}
	for _, s := range boundary {
		view, err := g.NodeIndicesOfFace(s.cell, s.local)
		if err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
		nodes, err := view.Copy()
		if err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
		if s.flag == 0 {
			reverse(nodes)
		}
		addPolygon(m, pts, nodes)
	}
	return m, nil
}

func reverse(xs []uint64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func point(pts *mat.Dense, n uint64) r3.Vec {
	return r3.Vec{X: pts.At(int(n), 0), Y: pts.At(int(n), 1), Z: pts.At(int(n), 2)}
}

// addPolygon fan-triangulates a convex polygon around its first node.
func addPolygon(m *kernel.Mesh, pts *mat.Dense, nodes []uint64) {
	if len(nodes) < 3 {
		return
	}
	var normal r3.Vec
	for i := range nodes {
		normal = r3.Add(normal, r3.Cross(point(pts, nodes[i]), point(pts, nodes[(i+1)%len(nodes)])))
	}
	if l := r3.Norm(normal); l > 0 {
		normal = r3.Scale(1/l, normal)
	}
	n := [3]float64{normal.X, normal.Y, normal.Z}
	a := point(pts, nodes[0])
	for i := 1; i+1 < len(nodes); i++ {
		b, c := point(pts, nodes[i]), point(pts, nodes[i+1])
		m.AddTriangle([3]float64{a.X, a.Y, a.Z}, [3]float64{b.X, b.Y, b.Z}, [3]float64{c.X, c.Y, c.Z}, n)
	}
}
