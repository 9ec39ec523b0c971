// Package sdfx is a kernel.Kernel backed by the signed distance functions of
// github.com/deadsy/sdfx. A point is inside a solid where its distance is
// negative.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/ugrid/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// MinMeshCells and MaxMeshCells clamp the marching cubes resolution.
const (
	MinMeshCells = 16
	MaxMeshCells = 200
)

type solid struct {
	sdf sdf.SDF3
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.sdf.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

func (s *solid) Inside(x, y, z float64) bool {
	return s.sdf.Evaluate(v3.Vec{X: x, Y: y, Z: z}) < 0
}

// Kernel builds sdfx solids. The zero value is ready to use.
type Kernel struct{}

// New returns a Kernel.
func New() *Kernel { return &Kernel{} }

func sdfOf(s kernel.Solid) sdf.SDF3 { return s.(*solid).sdf }

func positive(name string, vs ...float64) error {
	for _, v := range vs {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s %v", kernel.ErrBadDimension, name, vs)
		}
	}
	return nil
}

// Box returns an x by y by z box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box", x, y, z); err != nil {
		return nil, err
	}
	size := v3.Vec{X: x, Y: y, Z: z}
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	// sdf.Box3D is centered on the origin.
	return &solid{sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}))}, nil
}

// Cylinder returns a cylinder along Z centered on the origin.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := positive("cylinder", height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return &solid{s}, nil
}

// Sphere returns a ball centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	if err := positive("sphere", radius); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return &solid{s}, nil
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return &solid{sdf.Union3D(sdfOf(a), sdfOf(b))}
}

// Difference removes b from a.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &solid{sdf.Difference3D(sdfOf(a), sdfOf(b))}
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return &solid{sdf.Intersect3D(sdfOf(a), sdfOf(b))}
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &solid{sdf.Transform3D(sdfOf(s), sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))}
}

func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(radians(z)).Mul(sdf.RotateY(radians(y))).Mul(sdf.RotateX(radians(x)))
	return &solid{sdf.Transform3D(sdfOf(s), m)}
}

// ToMesh runs marching cubes over s. cells is clamped to
// [MinMeshCells, MaxMeshCells].
func (k *Kernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	cells = max(MinMeshCells, min(cells, MaxMeshCells))
	triangles := render.ToTriangles(sdfOf(s), render.NewMarchingCubesUniform(cells))

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		m.AddTriangle(vec(tri[0]), vec(tri[1]), vec(tri[2]), vec(n))
	}
	return m, nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func vec(v v3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
