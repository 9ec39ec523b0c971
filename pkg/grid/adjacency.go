package grid

import (
	"fmt"
	"sync/atomic"

	"github.com/chazu/ugrid/pkg/offsets"
)

// Adjacency is the in-memory cell→face and face→node index of one grid.
//
// The declared counts and constant valences come from the persisted
// description and survive Release. The layouts and index arrays exist only
// between Install and Release. Every Install or Release bumps the
// generation, which invalidates outstanding IndexViews.
type Adjacency struct {
	cellCount    uint64
	faceCount    uint64
	facesPerCell uint64 // 0 when variable
	nodesPerFace uint64 // 0 when variable

	loaded             bool
	cells              Layout
	faces              Layout
	faceIndicesOfCells []uint64
	nodeIndicesOfFaces []uint64

	generation atomic.Uint64
}

// Declare records the persisted description: element counts and constant
// valences (0 meaning variable).
func (a *Adjacency) Declare(cellCount, faceCount, facesPerCell, nodesPerFace uint64) {
	a.cellCount = cellCount
	a.faceCount = faceCount
	a.facesPerCell = facesPerCell
	a.nodesPerFace = nodesPerFace
}

// Install replaces the loaded state in one step.
func (a *Adjacency) Install(cells, faces Layout, faceIndicesOfCells, nodeIndicesOfFaces []uint64) {
	a.cells = cells
	a.faces = faces
	a.faceIndicesOfCells = faceIndicesOfCells
	a.nodeIndicesOfFaces = nodeIndicesOfFaces
	a.loaded = true
	a.generation.Add(1)
}

// Release drops the layouts and index arrays. Safe to call when nothing is loaded.
func (a *Adjacency) Release() {
	a.cells = nil
	a.faces = nil
	a.faceIndicesOfCells = nil
	a.nodeIndicesOfFaces = nil
	a.loaded = false
	a.generation.Add(1)
}

// Loaded reports whether index arrays are present.
func (a *Adjacency) Loaded() bool { return a.loaded }

// Generation returns the current load generation.
func (a *Adjacency) Generation() uint64 { return a.generation.Load() }

// FaceCountOfCell returns the number of faces of a cell. Constant-shape grids
// answer without loaded geometry.
func (a *Adjacency) FaceCountOfCell(cell uint64) (uint64, error) {
	if cell >= a.cellCount {
		return 0, fmt.Errorf("%w: cell %d, cell count %d", ErrOutOfRange, cell, a.cellCount)
	}
	if a.facesPerCell != 0 {
		return a.facesPerCell, nil
	}
	if !a.loaded {
		return 0, ErrInvalidState
	}
	return a.cells.Count(cell), nil
}

// faceSlot returns the flat position in faceIndicesOfCells of a cell's local face.
func (a *Adjacency) faceSlot(cell, localFace uint64) (uint64, error) {
	if !a.loaded {
		return 0, ErrInvalidState
	}
	if cell >= a.cellCount {
		return 0, fmt.Errorf("%w: cell %d, cell count %d", ErrOutOfRange, cell, a.cellCount)
	}
	if n := a.cells.Count(cell); localFace >= n {
		return 0, fmt.Errorf("%w: local face %d, cell %d has %d faces", ErrOutOfRange, localFace, cell, n)
	}
	return a.cells.Start(cell) + localFace, nil
}

// GlobalFaceIndex returns the global index of a cell's local face.
// It needs loaded geometry even when the cell shape is constant.
func (a *Adjacency) GlobalFaceIndex(cell, localFace uint64) (uint64, error) {
	slot, err := a.faceSlot(cell, localFace)
	if err != nil {
		return 0, err
	}
	return a.faceIndicesOfCells[slot], nil
}

// NodeCountOfFace returns the number of nodes of a cell's local face.
// Constant node counts answer without loaded geometry. The local face is
// range checked whenever the cell's face count is known.
func (a *Adjacency) NodeCountOfFace(cell, localFace uint64) (uint64, error) {
	if a.nodesPerFace != 0 {
		if a.facesPerCell == 0 && !a.loaded {
			if cell >= a.cellCount {
				return 0, fmt.Errorf("%w: cell %d, cell count %d", ErrOutOfRange, cell, a.cellCount)
			}
			return a.nodesPerFace, nil
		}
		n, err := a.FaceCountOfCell(cell)
		if err != nil {
			return 0, err
		}
		if localFace >= n {
			return 0, fmt.Errorf("%w: local face %d, cell %d has %d faces", ErrOutOfRange, localFace, cell, n)
		}
		return a.nodesPerFace, nil
	}
	face, err := a.GlobalFaceIndex(cell, localFace)
	if err != nil {
		return 0, err
	}
	return a.faces.Count(face), nil
}

// NodeIndicesOfFace returns a view of the node indices of a cell's local face.
func (a *Adjacency) NodeIndicesOfFace(cell, localFace uint64) (IndexView, error) {
	face, err := a.GlobalFaceIndex(cell, localFace)
	if err != nil {
		return IndexView{}, err
	}
	start := a.faces.Start(face)
	end := start + a.faces.Count(face)
	return a.view(a.nodeIndicesOfFaces[start:end:end]), nil
}

// CumulativeFaceCounts returns a view of the cumulative face count per cell.
func (a *Adjacency) CumulativeFaceCounts() (IndexView, error) {
	if a.facesPerCell != 0 {
		return IndexView{}, errConstantFaces
	}
	if !a.loaded {
		return IndexView{}, errNotLoadedLogic
	}
	c := a.cells.(CumulativeLayout)
	return a.view(c[:len(c):len(c)]), nil
}

// CumulativeNodeCounts returns a view of the cumulative node count per face.
func (a *Adjacency) CumulativeNodeCounts() (IndexView, error) {
	if a.nodesPerFace != 0 {
		return IndexView{}, errConstantNodes
	}
	if !a.loaded {
		return IndexView{}, errNotLoadedLogic
	}
	c := a.faces.(CumulativeLayout)
	return a.view(c[:len(c):len(c)]), nil
}

// PerElementFaceCounts fills out (one entry per cell) with each cell's face count.
func (a *Adjacency) PerElementFaceCounts(out []uint64) error {
	v, err := a.CumulativeFaceCounts()
	if err != nil {
		return err
	}
	return perElement(v, out, "cell")
}

// PerElementNodeCounts fills out (one entry per face) with each face's node count.
func (a *Adjacency) PerElementNodeCounts(out []uint64) error {
	v, err := a.CumulativeNodeCounts()
	if err != nil {
		return err
	}
	return perElement(v, out, "face")
}

func perElement(v IndexView, out []uint64, what string) error {
	if len(out) != v.Len() {
		return fmt.Errorf("%w: output holds %d entries, need one per %s (%d)", ErrInvalidArgument, len(out), what, v.Len())
	}
	if len(out) == 0 {
		return nil
	}
	copy(out, v.data)
	return offsets.ToPerElement(out)
}

func (a *Adjacency) view(data []uint64) IndexView {
	return IndexView{data: data, gen: a.generation.Load(), owner: a}
}

// IndexView is a read-only window into a loaded index array. It stays valid
// until the next load or unload of the owning grid; after that every access
// fails with ErrStaleView.
type IndexView struct {
	data  []uint64
	gen   uint64
	owner *Adjacency
}

// Valid reports whether the view still refers to the current geometry.
func (v IndexView) Valid() bool {
	return v.owner != nil && v.owner.generation.Load() == v.gen
}

// Len returns the number of entries in the view.
func (v IndexView) Len() int { return len(v.data) }

// At returns entry i.
func (v IndexView) At(i int) (uint64, error) {
	if !v.Valid() {
		return 0, ErrStaleView
	}
	if i < 0 || i >= len(v.data) {
		return 0, fmt.Errorf("%w: view entry %d of %d", ErrOutOfRange, i, len(v.data))
	}
	return v.data[i], nil
}

// Copy returns the entries as a new slice.
func (v IndexView) Copy() ([]uint64, error) {
	if !v.Valid() {
		return nil, ErrStaleView
	}
	return append([]uint64(nil), v.data...), nil
}

// AppendTo appends the entries to dst.
func (v IndexView) AppendTo(dst []uint64) ([]uint64, error) {
	if !v.Valid() {
		return dst, ErrStaleView
	}
	return append(dst, v.data...), nil
}
