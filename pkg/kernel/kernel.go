// Package kernel is the seam between scene graphs and a solid-modeling
// library. Solids are point-membership oracles with a bounding box, which is
// all voxelization needs; meshing is only used for previews.
package kernel

import "errors"

// ErrBadDimension is returned by primitives given a size that is not
// positive and finite.
var ErrBadDimension = errors.New("kernel: dimension must be positive")

// Solid is a closed region of space owned by a kernel.
type Solid interface {
	BoundingBox() (min, max [3]float64)

	// Inside reports whether the point lies strictly inside the solid.
	Inside(x, y, z float64) bool
}

// Primitives build solids in local coordinates. A box has its minimum
// corner at the origin; cylinders and spheres are centered on it.
type Primitives interface {
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
}

// Booleans combine two solids of the same kernel.
type Booleans interface {
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid
}

// Transforms place a solid. Rotate takes Euler angles in degrees, applied
// about X, then Y, then Z.
type Transforms interface {
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid
}

// Kernel is a complete solid-modeling backend.
type Kernel interface {
	Primitives
	Booleans
	Transforms

	// ToMesh triangulates the surface of s on a lattice of about cells
	// samples along its longest side.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
