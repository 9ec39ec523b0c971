package grid

import (
	"fmt"

	"github.com/chazu/ugrid/pkg/repo"
	"github.com/google/uuid"
)

// descriptor is the manifest body of a grid.
type descriptor struct {
	CellCount        uint64    `yaml:"cell_count"`
	Group            string    `yaml:"group"`
	PointCount       uint64    `yaml:"point_count,omitempty"`
	FaceCount        uint64    `yaml:"face_count,omitempty"`
	FaceCountPerCell uint64    `yaml:"face_count_per_cell,omitempty"`
	NodeCountPerFace uint64    `yaml:"node_count_per_face,omitempty"`
	CellShape        string    `yaml:"cell_shape,omitempty"`
	CRS              string    `yaml:"crs,omitempty"`
	Datasets         *Datasets `yaml:"datasets,omitempty"`
}

// Describe returns the manifest body of the grid. Only the description is
// recorded; the payload stays in the array store.
func (g *UnstructuredGrid) Describe() (any, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d := descriptor{CellCount: g.cellCount, Group: g.group}
	if g.desc == nil {
		return d, nil
	}
	ds := g.desc.datasets
	d.PointCount = g.desc.pointCount
	d.FaceCount = g.desc.faceCount
	d.FaceCountPerCell = g.desc.facesPerCell
	d.NodeCountPerFace = g.desc.nodesPerFace
	d.CellShape = g.desc.shape.String()
	d.Datasets = &ds
	if g.desc.crs != nil {
		d.CRS = g.desc.crs.UUID().String()
	}
	return d, nil
}

// Decode rebuilds a grid from a manifest entry. Datasets are bound to the
// repository's default store, and the CRS must already be in the repository.
func Decode(r *repo.Repository, e repo.Entry) (repo.DataObject, error) {
	return NewDecoder()(r, e)
}

// NewDecoder returns a manifest decoder that applies opts to every grid.
func NewDecoder(opts ...Option) repo.Decoder {
	return func(r *repo.Repository, e repo.Entry) (repo.DataObject, error) {
		id, err := uuid.Parse(e.UUID)
		if err != nil {
			return nil, err
		}
		var d descriptor
		if err := e.Body.Decode(&d); err != nil {
			return nil, err
		}
		all := append([]Option{WithGroup(d.Group)}, opts...)
		g := New(r, id, e.Title, d.CellCount, all...)
		if d.Datasets == nil {
			return g, nil
		}
		desc, err := decodeDescription(r, d)
		if err != nil {
			return nil, err
		}
		g.describe(desc)
		return g, nil
	}
}

func decodeDescription(r *repo.Repository, d descriptor) (*description, error) {
	ds := *d.Datasets
	if (d.FaceCountPerCell == 0) != (ds.FacesPerCellCumulative != "") {
		return nil, fmt.Errorf("%w: face count per cell and cumulative dataset disagree", ErrInvalidArgument)
	}
	if (d.NodeCountPerFace == 0) != (ds.NodesPerFaceCumulative != "") {
		return nil, fmt.Errorf("%w: node count per face and cumulative dataset disagree", ErrInvalidArgument)
	}
	shape, err := ParseCellShape(d.CellShape)
	if err != nil {
		return nil, err
	}
	store := r.DefaultStore()
	if store == nil {
		return nil, fmt.Errorf("%w: repository has no default store to bind datasets to", ErrInvalidArgument)
	}
	desc := &description{
		pointCount:   d.PointCount,
		faceCount:    d.FaceCount,
		facesPerCell: d.FaceCountPerCell,
		nodesPerFace: d.NodeCountPerFace,
		shape:        shape,
		datasets:     ds,
		store:        store,
	}
	if d.CRS != "" {
		id, err := uuid.Parse(d.CRS)
		if err != nil {
			return nil, fmt.Errorf("crs reference: %w", err)
		}
		if desc.crs = r.Get(id); desc.crs == nil {
			return nil, fmt.Errorf("%w: crs %s is not in the repository", ErrInvalidArgument, id)
		}
	}
	return desc, nil
}
