// Package pipeline turns a grid script into unstructured grids registered in
// a repository: evaluate, validate, voxelize, mesh, write.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/config"
	"github.com/chazu/ugrid/pkg/crs"
	"github.com/chazu/ugrid/pkg/engine"
	"github.com/chazu/ugrid/pkg/graph"
	"github.com/chazu/ugrid/pkg/grid"
	"github.com/chazu/ugrid/pkg/kernel"
	"github.com/chazu/ugrid/pkg/mesher"
	"github.com/chazu/ugrid/pkg/repo"
	"github.com/chazu/ugrid/pkg/tessellate"
)

var (
	// ErrScript wraps evaluation errors of the user's script.
	ErrScript = errors.New("pipeline: script failed to evaluate")

	// ErrInvalidScene wraps scene graph validation errors.
	ErrInvalidScene = errors.New("pipeline: scene graph is invalid")
)

// Builder runs scripts against one repository.
type Builder struct {
	repo   *repo.Repository
	kernel kernel.Kernel
	engine *engine.Engine
	mesh   config.MeshConfig
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMeshConfig overrides the cell kind, encoding, or cell size of every
// grid request, and names the CRS grids are placed in.
func WithMeshConfig(m config.MeshConfig) Option {
	return func(b *Builder) { b.mesh = m }
}

// New returns a Builder writing to r's default store.
func New(r *repo.Repository, k kernel.Kernel, opts ...Option) *Builder {
	b := &Builder{
		repo:   r,
		kernel: k,
		mesh:   config.DefaultConfig().Mesh,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.engine = engine.NewEngine(engine.WithLogger(b.logger.Named("engine")))
	return b
}

// Kernel returns the kernel solids are built with.
func (b *Builder) Kernel() kernel.Kernel { return b.kernel }

// Scene evaluates source and validates the resulting graph. Requests are
// rewritten with the configured overrides.
func (b *Builder) Scene(ctx context.Context, source string) (*graph.SceneGraph, error) {
	g, evalErrs, err := b.engine.Evaluate(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, 0, len(evalErrs)+1)
		errs = append(errs, ErrScript)
		for _, e := range evalErrs {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}

	res := graph.ValidateAll(g)
	for _, w := range res.Warnings {
		b.logger.Warn("scene warning", zap.String("node", w.NodeID.Short()), zap.String("message", w.Message))
	}
	if !res.OK() {
		errs := []error{ErrInvalidScene}
		for _, e := range res.Errors {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}

	if err := b.override(g); err != nil {
		return nil, err
	}
	b.logger.Debug("scene ready", zap.Strings("solids", g.Solids()), zap.Int("grids", len(g.GridRequests())))
	return g, nil
}

func (b *Builder) override(g *graph.SceneGraph) error {
	for _, n := range g.GridRequests() {
		gd := n.Data.(graph.GridData)
		switch b.mesh.Cells {
		case "hex":
			gd.Cells = graph.CellsHexahedral
		case "tet":
			gd.Cells = graph.CellsTetrahedral
		case "":
		default:
			return fmt.Errorf("pipeline: unknown cell kind %q", b.mesh.Cells)
		}
		switch b.mesh.Encoding {
		case "constant":
			gd.Encoding = graph.EncodingConstant
		case "variable":
			gd.Encoding = graph.EncodingVariable
		case "":
		default:
			return fmt.Errorf("pipeline: unknown encoding %q", b.mesh.Encoding)
		}
		if b.mesh.CellSize > 0 {
			gd.CellSize = b.mesh.CellSize
		}
		n.Data = gd
	}
	return nil
}

// Build runs source end to end and returns the new grids in request order.
// Each grid is added to the repository with its payload written to the
// repository's default store. A grid is registered only after its datasets
// are written; on failure the grids written before it are returned with the
// error.
func (b *Builder) Build(ctx context.Context, source string) ([]*grid.UnstructuredGrid, error) {
	g, err := b.Scene(ctx, source)
	if err != nil {
		return nil, err
	}
	results, err := tessellate.Tessellate(ctx, g, b.kernel)
	if err != nil {
		return nil, err
	}

	var grids []*grid.UnstructuredGrid
	for _, res := range results {
		ug, err := b.grid(ctx, res)
		if err != nil {
			return grids, fmt.Errorf("pipeline: grid %q: %w", res.Name, err)
		}
		grids = append(grids, ug)
	}
	return grids, nil
}

// localCRS returns the repository CRS with the configured title, adding one
// when absent.
func (b *Builder) localCRS() (repo.DataObject, error) {
	if obj := b.repo.Lookup(b.mesh.CRSTitle); obj != nil && obj.XMLTag() == crs.XMLTag {
		return obj, nil
	}
	c := crs.New(b.mesh.CRSTitle)
	if err := b.repo.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *Builder) grid(ctx context.Context, res *tessellate.Result) (*grid.UnstructuredGrid, error) {
	m, err := mesher.Build(ctx, res.Voxels, res.Request.Cells)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("meshed grid request",
		zap.String("title", res.Request.Title),
		zap.Int("voxels", res.Voxels.Count()),
		zap.Uint64("cells", m.CellCount()),
		zap.Uint64("faces", m.FaceCount()),
		zap.Uint64("points", m.PointCount()))

	local, err := b.localCRS()
	if err != nil {
		return nil, err
	}
	// Registered only once its datasets are written.
	ug := grid.New(b.repo, uuid.New(), res.Request.Title, m.CellCount(), grid.WithLogger(b.logger))
	if err := setGeometry(ctx, ug, m, res.Request.Encoding, local); err != nil {
		return nil, err
	}
	if err := b.repo.Add(ug); err != nil {
		return nil, err
	}

	b.logger.Info("wrote grid",
		zap.String("title", ug.Title()),
		zap.String("uuid", ug.UUID().String()),
		zap.String("shape", ug.CellShape().String()),
		zap.Uint64("cells", ug.CellCount()))
	return ug, nil
}

func setGeometry(ctx context.Context, ug *grid.UnstructuredGrid, m *mesher.Mesh, enc graph.Encoding, local repo.DataObject) error {
	if enc == graph.EncodingVariable {
		geom, err := m.Geometry()
		if err != nil {
			return err
		}
		return ug.SetGeometry(ctx, nil, geom, local)
	}

	geom, err := m.ConstantGeometry()
	if err != nil {
		return err
	}
	switch m.Shape {
	case grid.CellShapeTetrahedral:
		return ug.SetTetrahedraOnlyGeometry(ctx, nil, *geom, local)
	case grid.CellShapeHexahedral:
		return ug.SetHexahedraOnlyGeometry(ctx, nil, *geom, local)
	}
	return ug.SetConstantCellShapeGeometry(ctx, nil, geom, local)
}
