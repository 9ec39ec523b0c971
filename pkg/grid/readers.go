package grid

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// The readers below go to the store directly and work whether or not the
// adjacency is loaded.

func (g *UnstructuredGrid) described() (*description, error) {
	if g.desc == nil {
		return nil, errNoGeometry
	}
	return g.desc, nil
}

func checkOut(n int, want uint64, what string) error {
	if uint64(n) != want {
		return fmt.Errorf("%w: output holds %d entries, want %d %s", ErrInvalidArgument, n, want, what)
	}
	return nil
}

// ReadCumulativeFaceCountPerCell reads the stored cumulative face counts into out.
func (g *UnstructuredGrid) ReadCumulativeFaceCountPerCell(ctx context.Context, out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return err
	}
	if d.facesPerCell != 0 {
		return errConstantFaces
	}
	if err := checkOut(len(out), g.cellCount, "cells"); err != nil {
		return err
	}
	return d.store.ReadUint64(ctx, d.datasets.FacesPerCellCumulative, out)
}

// ReadCumulativeNodeCountPerFace reads the stored cumulative node counts into out.
func (g *UnstructuredGrid) ReadCumulativeNodeCountPerFace(ctx context.Context, out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return err
	}
	if d.nodesPerFace != 0 {
		return errConstantNodes
	}
	if err := checkOut(len(out), d.faceCount, "faces"); err != nil {
		return err
	}
	return d.store.ReadUint64(ctx, d.datasets.NodesPerFaceCumulative, out)
}

// ReadFaceIndicesOfCells reads the flat cell→face index array into out.
func (g *UnstructuredGrid) ReadFaceIndicesOfCells(ctx context.Context, out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return err
	}
	return d.store.ReadUint64(ctx, d.datasets.FacesPerCell, out)
}

// ReadNodeIndicesOfFaces reads the flat face→node index array into out.
func (g *UnstructuredGrid) ReadNodeIndicesOfFaces(ctx context.Context, out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return err
	}
	return d.store.ReadUint64(ctx, d.datasets.NodesPerFace, out)
}

// ReadCellFaceIsRightHanded reads one orientation flag per (cell, local face) into out.
func (g *UnstructuredGrid) ReadCellFaceIsRightHanded(ctx context.Context, out []uint8) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return err
	}
	return d.store.ReadUint8(ctx, d.datasets.CellFaceIsRightHanded, out)
}

// PatchCount returns the number of geometry patches. Unstructured grids have one.
func (g *UnstructuredGrid) PatchCount() uint { return 1 }

// XYZPointCountOfPatch returns the number of points of a patch.
func (g *UnstructuredGrid) XYZPointCountOfPatch(patch uint) (uint64, error) {
	if patch >= g.PatchCount() {
		return 0, fmt.Errorf("%w: patch %d, patch count %d", ErrOutOfRange, patch, g.PatchCount())
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return 0, err
	}
	return d.pointCount, nil
}

// XYZPointsOfPatch reads the points of a patch as a PointCount x 3 matrix.
func (g *UnstructuredGrid) XYZPointsOfPatch(ctx context.Context, patch uint) (*mat.Dense, error) {
	if patch >= g.PatchCount() {
		return nil, fmt.Errorf("%w: patch %d, patch count %d", ErrOutOfRange, patch, g.PatchCount())
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, err := g.described()
	if err != nil {
		return nil, err
	}
	if d.pointCount == 0 {
		return nil, fmt.Errorf("%w: grid has no points", ErrLogic)
	}
	buf := make([]float64, 3*d.pointCount)
	if err := d.store.ReadFloat64(ctx, d.datasets.Points, buf); err != nil {
		return nil, err
	}
	return mat.NewDense(int(d.pointCount), 3, buf), nil
}

// XYZPoints reads the points of all patches.
func (g *UnstructuredGrid) XYZPoints(ctx context.Context) (*mat.Dense, error) {
	return g.XYZPointsOfPatch(ctx, 0)
}

// BoundingBox returns the componentwise minimum and maximum of the points.
func (g *UnstructuredGrid) BoundingBox(ctx context.Context) (lo, hi [3]float64, err error) {
	pts, err := g.XYZPoints(ctx)
	if err != nil {
		return lo, hi, err
	}
	col := make([]float64, pts.RawMatrix().Rows)
	for j := 0; j < 3; j++ {
		mat.Col(col, j, pts)
		lo[j], hi[j] = floats.Min(col), floats.Max(col)
	}
	return lo, hi, nil
}
