// Package grid implements unstructured polyhedral grid representations:
// writing their topology and points to an array store, lazily loading the
// cell→face and face→node adjacency back, and answering index queries.
//
// A grid is described once (SetGeometry and friends) and may then be
// loaded and unloaded any number of times. Queries that only need the
// description, such as the face count of a cell in a constant-shape grid,
// work in either state; everything else fails with ErrInvalidState until
// LoadGeometry succeeds.
package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/chazu/ugrid/pkg/offsets"
	"github.com/chazu/ugrid/pkg/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// XMLTag is the data-object tag of an unstructured grid representation.
const XMLTag = "UnstructuredGridRepresentation"

// Option configures an UnstructuredGrid.
type Option func(*UnstructuredGrid)

// WithLogger sets the logger used for writes and loads.
func WithLogger(l *zap.Logger) Option {
	return func(g *UnstructuredGrid) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGroup overrides the store group the grid's datasets are written under.
func WithGroup(group string) Option {
	return func(g *UnstructuredGrid) {
		if group != "" {
			g.group = arraystore.Join(group)
		}
	}
}

// description is what is known about a grid once its geometry is set. It is
// persisted in the manifest and never changes afterwards.
type description struct {
	pointCount   uint64
	faceCount    uint64
	facesPerCell uint64 // 0 when variable
	nodesPerFace uint64 // 0 when variable
	shape        CellShape
	datasets     Datasets
	store        arraystore.Store
	crs          repo.DataObject
}

// UnstructuredGrid is a grid of polyhedral cells bounded by polygonal faces.
// It is safe for concurrent queries; LoadGeometry, UnloadGeometry and the
// Set methods take an exclusive lock.
type UnstructuredGrid struct {
	mu        sync.RWMutex
	id        uuid.UUID
	title     string
	cellCount uint64
	repo      *repo.Repository
	group     string
	logger    *zap.Logger

	desc *description
	adj  Adjacency
}

// New returns a grid of cellCount cells without geometry. r supplies the
// default store and may be nil. A nil id is replaced by a random one.
func New(r *repo.Repository, id uuid.UUID, title string, cellCount uint64, opts ...Option) *UnstructuredGrid {
	if id == uuid.Nil {
		id = uuid.New()
	}
	g := &UnstructuredGrid{
		id:        id,
		title:     title,
		cellCount: cellCount,
		repo:      r,
		group:     arraystore.Join(GroupPrefix, id.String()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.adj.Declare(cellCount, 0, 0, 0)
	return g
}

// Create builds a grid with a fresh UUID and registers it in r.
func Create(r *repo.Repository, title string, cellCount uint64, opts ...Option) (*UnstructuredGrid, error) {
	g := New(r, uuid.New(), title, cellCount, opts...)
	if err := r.Add(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *UnstructuredGrid) UUID() uuid.UUID { return g.id }
func (g *UnstructuredGrid) Title() string   { return g.title }
func (g *UnstructuredGrid) XMLTag() string  { return XMLTag }

func (g *UnstructuredGrid) String() string {
	return fmt.Sprintf("%s %q (%s)", XMLTag, g.title, g.id)
}

// Group returns the store group datasets are written under.
func (g *UnstructuredGrid) Group() string { return g.group }

// CellCount returns the number of cells.
func (g *UnstructuredGrid) CellCount() uint64 { return g.cellCount }

// FaceCount returns the number of faces, 0 before geometry is set.
func (g *UnstructuredGrid) FaceCount() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return 0
	}
	return g.desc.faceCount
}

// NodeCount returns the number of nodes (points), 0 before geometry is set.
func (g *UnstructuredGrid) NodeCount() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return 0
	}
	return g.desc.pointCount
}

// CellShape returns the recorded cell shape.
func (g *UnstructuredGrid) CellShape() CellShape {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return CellShapeUnspecified
	}
	return g.desc.shape
}

// HasGeometry reports whether geometry has been set.
func (g *UnstructuredGrid) HasGeometry() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.desc != nil
}

// Datasets returns the store paths of the grid's payload.
func (g *UnstructuredGrid) Datasets() (Datasets, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return Datasets{}, false
	}
	return g.desc.datasets, true
}

// Store returns the array store holding the payload, or nil.
func (g *UnstructuredGrid) Store() arraystore.Store {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return nil
	}
	return g.desc.store
}

// LocalCRS returns the CRS the points are expressed in, or nil.
func (g *UnstructuredGrid) LocalCRS() repo.DataObject {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return nil
	}
	return g.desc.crs
}

func (g *UnstructuredGrid) resolveStore(s arraystore.Store) (arraystore.Store, error) {
	if s != nil {
		return s, nil
	}
	if g.repo != nil {
		if d := g.repo.DefaultStore(); d != nil {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: a destination store must be provided", ErrInvalidArgument)
}

// describe records the description. Callers hold the write lock.
func (g *UnstructuredGrid) describe(d *description) {
	g.desc = d
	g.adj.Declare(g.cellCount, d.faceCount, d.facesPerCell, d.nodesPerFace)
}

var errAlreadySet = fmt.Errorf("%w: geometry is already set", ErrLogic)

// SetGeometry writes a variable-shape payload to s, or to the repository's
// default store when s is nil, and records the description. localCRS may be nil.
func (g *UnstructuredGrid) SetGeometry(ctx context.Context, s arraystore.Store, geom *Geometry, localCRS repo.DataObject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.desc != nil {
		return errAlreadySet
	}
	if err := geom.requireBuffers(); err != nil {
		return err
	}
	store, err := g.resolveStore(s)
	if err != nil {
		return err
	}
	ds, err := NewWriter(g.group, g.logger).Write(ctx, store, g.cellCount, geom)
	if err != nil {
		return err
	}
	shape := geom.CellShape
	if shape == CellShapeUnspecified {
		shape = CellShapePolyhedral
	}
	g.describe(&description{
		pointCount: geom.PointCount,
		faceCount:  geom.FaceCount,
		shape:      shape,
		datasets:   ds,
		store:      store,
		crs:        localCRS,
	})
	return nil
}

// SetConstantCellShapeGeometry writes a constant-shape payload and records
// the description.
func (g *UnstructuredGrid) SetConstantCellShapeGeometry(ctx context.Context, s arraystore.Store, geom *ConstantGeometry, localCRS repo.DataObject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.desc != nil {
		return errAlreadySet
	}
	if err := geom.requireBuffers(); err != nil {
		return err
	}
	store, err := g.resolveStore(s)
	if err != nil {
		return err
	}
	ds, err := NewWriter(g.group, g.logger).WriteConstant(ctx, store, g.cellCount, geom)
	if err != nil {
		return err
	}
	shape := geom.CellShape
	if shape == CellShapeUnspecified {
		shape = shapeOf(geom.FaceCountPerCell, geom.NodeCountPerFace)
	}
	g.describe(&description{
		pointCount:   geom.PointCount,
		faceCount:    geom.FaceCount,
		facesPerCell: geom.FaceCountPerCell,
		nodesPerFace: geom.NodeCountPerFace,
		shape:        shape,
		datasets:     ds,
		store:        store,
		crs:          localCRS,
	})
	return nil
}

// SetTetrahedraOnlyGeometry is SetConstantCellShapeGeometry with four
// triangles per cell. The valences and shape in geom are overridden.
func (g *UnstructuredGrid) SetTetrahedraOnlyGeometry(ctx context.Context, s arraystore.Store, geom ConstantGeometry, localCRS repo.DataObject) error {
	geom.FaceCountPerCell, geom.NodeCountPerFace, geom.CellShape = 4, 3, CellShapeTetrahedral
	return g.SetConstantCellShapeGeometry(ctx, s, &geom, localCRS)
}

// SetHexahedraOnlyGeometry is SetConstantCellShapeGeometry with six
// quadrilaterals per cell. The valences and shape in geom are overridden.
func (g *UnstructuredGrid) SetHexahedraOnlyGeometry(ctx context.Context, s arraystore.Store, geom ConstantGeometry, localCRS repo.DataObject) error {
	geom.FaceCountPerCell, geom.NodeCountPerFace, geom.CellShape = 6, 4, CellShapeHexahedral
	return g.SetConstantCellShapeGeometry(ctx, s, &geom, localCRS)
}

// SetGeometryUsingExistingDatasets records a variable-shape description
// whose payload is already in the store. Every named dataset must exist.
func (g *UnstructuredGrid) SetGeometryUsingExistingDatasets(ctx context.Context, s arraystore.Store, ds Datasets,
	pointCount, faceCount uint64, shape CellShape, localCRS repo.DataObject) error {
	if ds.FacesPerCellCumulative == "" {
		return missing("FacesPerCellCumulative")
	}
	if ds.NodesPerFaceCumulative == "" {
		return missing("NodesPerFaceCumulative")
	}
	if shape == CellShapeUnspecified {
		shape = CellShapePolyhedral
	}
	return g.bindExisting(ctx, s, &description{
		pointCount: pointCount,
		faceCount:  faceCount,
		shape:      shape,
		datasets:   ds,
		crs:        localCRS,
	})
}

// SetConstantCellShapeGeometryUsingExistingDatasets records a constant-shape
// description whose payload is already in the store.
func (g *UnstructuredGrid) SetConstantCellShapeGeometryUsingExistingDatasets(ctx context.Context, s arraystore.Store, ds Datasets,
	pointCount, faceCount, facesPerCell, nodesPerFace uint64, localCRS repo.DataObject) error {
	if facesPerCell == 0 || nodesPerFace == 0 {
		return fmt.Errorf("%w: constant face and node counts must be positive", ErrInvalidArgument)
	}
	ds.FacesPerCellCumulative, ds.NodesPerFaceCumulative = "", ""
	return g.bindExisting(ctx, s, &description{
		pointCount:   pointCount,
		faceCount:    faceCount,
		facesPerCell: facesPerCell,
		nodesPerFace: nodesPerFace,
		shape:        shapeOf(facesPerCell, nodesPerFace),
		datasets:     ds,
		crs:          localCRS,
	})
}

// SetTetrahedraOnlyGeometryUsingExistingDatasets records a tetrahedral
// description whose payload is already in the store.
func (g *UnstructuredGrid) SetTetrahedraOnlyGeometryUsingExistingDatasets(ctx context.Context, s arraystore.Store, ds Datasets,
	pointCount, faceCount uint64, localCRS repo.DataObject) error {
	return g.SetConstantCellShapeGeometryUsingExistingDatasets(ctx, s, ds, pointCount, faceCount, 4, 3, localCRS)
}

// SetHexahedraOnlyGeometryUsingExistingDatasets records a hexahedral
// description whose payload is already in the store.
func (g *UnstructuredGrid) SetHexahedraOnlyGeometryUsingExistingDatasets(ctx context.Context, s arraystore.Store, ds Datasets,
	pointCount, faceCount uint64, localCRS repo.DataObject) error {
	return g.SetConstantCellShapeGeometryUsingExistingDatasets(ctx, s, ds, pointCount, faceCount, 6, 4, localCRS)
}

func (g *UnstructuredGrid) bindExisting(ctx context.Context, s arraystore.Store, d *description) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.desc != nil {
		return errAlreadySet
	}
	for _, p := range []struct{ name, path string }{
		{"CellFaceIsRightHanded", d.datasets.CellFaceIsRightHanded},
		{"Points", d.datasets.Points},
		{"FacesPerCell", d.datasets.FacesPerCell},
		{"NodesPerFace", d.datasets.NodesPerFace},
	} {
		if p.path == "" {
			return missing(p.name)
		}
	}
	store, err := g.resolveStore(s)
	if err != nil {
		return err
	}
	for _, p := range d.datasets.paths() {
		ok, err := store.Exists(ctx, p)
		if err != nil {
			return err
		}
		if !ok {
			return &arraystore.IOError{Op: "bind", Path: p, Err: arraystore.ErrNotFound}
		}
	}
	d.store = store
	g.describe(d)
	g.logger.Debug("bound existing datasets", zap.Stringer("grid", g), zap.Strings("paths", d.datasets.paths()))
	return nil
}

// LoadGeometry reads the adjacency arrays from the store. Any previously
// loaded state is dropped first; on failure the grid stays unloaded.
func (g *UnstructuredGrid) LoadGeometry(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.adj.Release()
	d := g.desc
	if d == nil {
		return errNoGeometry
	}
	cells, faceIdx, err := loadList(ctx, d.store, d.datasets.FacesPerCell, d.datasets.FacesPerCellCumulative, g.cellCount, d.facesPerCell)
	if err != nil {
		return err
	}
	faces, nodeIdx, err := loadList(ctx, d.store, d.datasets.NodesPerFace, d.datasets.NodesPerFaceCumulative, d.faceCount, d.nodesPerFace)
	if err != nil {
		return err
	}
	if i, bad := firstAtLeast(faceIdx, d.faceCount); bad {
		return corrupt(d.datasets.FacesPerCell, fmt.Errorf("%w: entry %d is face %d, face count %d", ErrOutOfRange, i, faceIdx[i], d.faceCount))
	}
	if i, bad := firstAtLeast(nodeIdx, d.pointCount); bad {
		return corrupt(d.datasets.NodesPerFace, fmt.Errorf("%w: entry %d is node %d, node count %d", ErrOutOfRange, i, nodeIdx[i], d.pointCount))
	}
	g.adj.Install(cells, faces, faceIdx, nodeIdx)
	g.logger.Debug("loaded geometry",
		zap.Stringer("grid", g),
		zap.Int("face_slots", len(faceIdx)),
		zap.Int("node_slots", len(nodeIdx)),
		zap.Uint64("generation", g.adj.Generation()))
	return nil
}

// loadList reads one list of lists: a layout for n elements and the flat
// index array it segments.
func loadList(ctx context.Context, s arraystore.Store, elements, cumulative string, n, constant uint64) (Layout, []uint64, error) {
	var l Layout
	if constant != 0 {
		l = ConstantLayout(constant)
	} else {
		cum, err := arraystore.ReadUint64Dataset(ctx, s, cumulative)
		if err != nil {
			return nil, nil, err
		}
		if uint64(len(cum)) != n {
			return nil, nil, corrupt(cumulative, fmt.Errorf("%w: %d counts for %d elements", arraystore.ErrLengthMismatch, len(cum), n))
		}
		if err := offsets.Validate(cum); err != nil {
			return nil, nil, corrupt(cumulative, err)
		}
		l = CumulativeLayout(cum)
	}
	idx := make([]uint64, l.Total(n))
	if err := s.ReadUint64(ctx, elements, idx); err != nil {
		return nil, nil, err
	}
	return l, idx, nil
}

func corrupt(path string, err error) error {
	return &arraystore.IOError{Op: "load", Path: path, Err: err}
}

// UnloadGeometry drops the loaded adjacency. It is a no-op when unloaded.
func (g *UnstructuredGrid) UnloadGeometry() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.adj.Loaded() {
		g.adj.Release()
		g.logger.Debug("unloaded geometry", zap.Stringer("grid", g))
	}
}

// IsLoaded reports whether the adjacency is loaded.
func (g *UnstructuredGrid) IsLoaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.Loaded()
}
