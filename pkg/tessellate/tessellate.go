// Package tessellate walks a scene graph and turns every grid request into
// a voxel lattice sampled from the request's solid.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/ugrid/pkg/graph"
	"github.com/chazu/ugrid/pkg/kernel"
)

// ErrNoSolid is returned when a grid request has nothing to sample.
var ErrNoSolid = errors.New("tessellate: grid request has no solid")

// Result is the sampled form of one grid request.
type Result struct {
	Name    string
	Request graph.GridData
	Solid   kernel.Solid
	Voxels  *kernel.VoxelGrid
}

// Tessellate builds the solid of every grid request with k and voxelizes it
// at the requested cell size. Results follow root order. The graph is never
// mutated.
func Tessellate(ctx context.Context, g *graph.SceneGraph, k kernel.Kernel) ([]*Result, error) {
	if g == nil {
		return nil, nil
	}

	var results []*Result
	for _, n := range g.GridRequests() {
		gd, ok := n.Data.(graph.GridData)
		if !ok {
			return nil, fmt.Errorf("tessellate: grid node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		solid, err := gridSolid(g, k, n)
		if err != nil {
			return nil, fmt.Errorf("tessellate: grid %q: %w", n.Label(), err)
		}
		vox, err := kernel.Voxelize(ctx, solid, gd.CellSize)
		if err != nil {
			return nil, fmt.Errorf("tessellate: grid %q: %w", n.Label(), err)
		}
		results = append(results, &Result{
			Name:    n.Label(),
			Request: gd,
			Solid:   solid,
			Voxels:  vox,
		})
	}
	return results, nil
}

// Meshes returns one preview triangle mesh per grid request, named after
// the request. The marching cubes lattice is twice as fine as the grid's
// own cell size.
func Meshes(g *graph.SceneGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, n := range g.GridRequests() {
		gd, ok := n.Data.(graph.GridData)
		if !ok {
			return nil, fmt.Errorf("tessellate: grid node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		solid, err := gridSolid(g, k, n)
		if err != nil {
			return nil, fmt.Errorf("tessellate: grid %q: %w", n.Label(), err)
		}
		mesh, err := k.ToMesh(solid, previewCells(solid, gd.CellSize))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for grid %q: %w", n.Label(), err)
		}
		mesh.Name = n.Label()
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func previewCells(s kernel.Solid, cellSize float64) int {
	if !(cellSize > 0) {
		return 0
	}
	lo, hi := s.BoundingBox()
	longest := max(hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])
	return 2 * int(math.Ceil(longest/cellSize))
}

func gridSolid(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	children := g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: %d children", ErrNoSolid, len(children))
	}
	return build(g, k, children[0])
}

// build recursively constructs the solid for n.
func build(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return handlePrimitive(k, n)

	case graph.NodeTransform:
		return handleTransform(g, k, n)

	case graph.NodeBoolean:
		return handleBoolean(g, k, n)

	case graph.NodeGroup:
		return fold(g, k, n, k.Union)

	case graph.NodeGrid:
		return nil, fmt.Errorf("grid request %s used as a solid", n.Label())

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive creates the kernel solid for a primitive node.
func handlePrimitive(k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	data, ok := n.Data.(graph.PrimitiveData)
	if !ok {
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	switch data.Kind {
	case graph.PrimBox:
		return k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.PrimCylinder:
		return k.Cylinder(data.Height, data.Radius)
	case graph.PrimSphere:
		return k.Sphere(data.Radius)
	}
	return nil, fmt.Errorf("primitive node %s has unknown kind %v", n.ID.Short(), data.Kind)
}

// handleTransform builds the union of the children, rotates, then
// translates it.
func handleTransform(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	solid, err := fold(g, k, n, k.Union)
	if err != nil {
		return nil, err
	}
	if rot := td.Rotation; rot != nil && !rot.IsZero() {
		solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
	}
	if tr := td.Translation; tr != nil && !tr.IsZero() {
		solid = k.Translate(solid, tr.X, tr.Y, tr.Z)
	}
	return solid, nil
}

// handleBoolean folds the children left to right with the node's operation.
func handleBoolean(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	switch bd.Op {
	case graph.OpUnion:
		return fold(g, k, n, k.Union)
	case graph.OpDifference:
		return fold(g, k, n, k.Difference)
	case graph.OpIntersection:
		return fold(g, k, n, k.Intersection)
	}
	return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
}

func fold(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, op func(a, b kernel.Solid) kernel.Solid) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, child := range g.Children(n) {
		s, err := build(g, k, child)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
			continue
		}
		acc = op(acc, s)
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s has no children", ErrNoSolid, n.Label())
	}
	return acc, nil
}
