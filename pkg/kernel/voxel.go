package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// MaxVoxels bounds the sample lattice of a single Voxelize call.
const MaxVoxels = 1 << 24

var (
	// ErrCellSize indicates a cell size that is not positive and finite.
	ErrCellSize = errors.New("kernel: cell size must be positive")

	// ErrTooManyVoxels indicates the lattice would exceed MaxVoxels.
	ErrTooManyVoxels = errors.New("kernel: voxel lattice too large")
)

// VoxelGrid is a regular lattice of cubic voxels with an inside flag per
// voxel. Voxel (i, j, k) spans Origin + Step*[i, i+1] x [j, j+1] x [k, k+1],
// and Inside is indexed i fastest, then j, then k.
type VoxelGrid struct {
	Origin     [3]float64
	Step       float64
	NX, NY, NZ int
	Inside     []bool
}

// Index returns the Inside position of voxel (i, j, k).
func (v *VoxelGrid) Index(i, j, k int) int {
	return i + v.NX*(j+v.NY*k)
}

// At reports whether voxel (i, j, k) is inside; out-of-lattice voxels are not.
func (v *VoxelGrid) At(i, j, k int) bool {
	if i < 0 || j < 0 || k < 0 || i >= v.NX || j >= v.NY || k >= v.NZ {
		return false
	}
	return v.Inside[v.Index(i, j, k)]
}

// Count returns the number of inside voxels.
func (v *VoxelGrid) Count() int {
	n := 0
	for _, in := range v.Inside {
		if in {
			n++
		}
	}
	return n
}

// Corner returns the coordinates of lattice corner (i, j, k).
func (v *VoxelGrid) Corner(i, j, k int) [3]float64 {
	return [3]float64{
		v.Origin[0] + float64(i)*v.Step,
		v.Origin[1] + float64(j)*v.Step,
		v.Origin[2] + float64(k)*v.Step,
	}
}

// Voxelize samples s at the center of every voxel of a lattice with the
// given cell size covering the bounding box of s.
func Voxelize(ctx context.Context, s Solid, cellSize float64) (*VoxelGrid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrCellSize, cellSize)
	}
	lo, hi := s.BoundingBox()
	var n [3]int
	total := 1
	for a := 0; a < 3; a++ {
		extent := hi[a] - lo[a]
		n[a] = int(math.Ceil(extent/cellSize - 1e-9))
		if n[a] < 1 {
			n[a] = 1
		}
		if total > MaxVoxels/n[a] {
			return nil, fmt.Errorf("%w: cell size %g over extent %v", ErrTooManyVoxels, cellSize, [3]float64{hi[0] - lo[0], hi[1] - lo[1], hi[2] - lo[2]})
		}
		total *= n[a]
	}

	v := &VoxelGrid{Origin: lo, Step: cellSize, NX: n[0], NY: n[1], NZ: n[2], Inside: make([]bool, total)}
	for k := 0; k < v.NZ; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		z := lo[2] + (float64(k)+0.5)*cellSize
		for j := 0; j < v.NY; j++ {
			y := lo[1] + (float64(j)+0.5)*cellSize
			for i := 0; i < v.NX; i++ {
				x := lo[0] + (float64(i)+0.5)*cellSize
				v.Inside[v.Index(i, j, k)] = s.Inside(x, y, z)
			}
		}
	}
	return v, nil
}
