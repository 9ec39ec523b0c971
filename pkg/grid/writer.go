package grid

import (
	"context"

	"github.com/chazu/ugrid/pkg/arraystore"
	"go.uber.org/zap"
)

// Dataset names inside a grid's group.
const (
	CellFaceIsRightHandedName = "CellFaceIsRightHanded"
	FacesPerCellName          = "FacesPerCell"
	NodesPerFaceName          = "NodesPerFace"
	PointsName                = "Points"
)

// GroupPrefix is the store group grids are written under by default.
const GroupPrefix = "/RESQML"

// Writer validates a geometry payload and persists it under one group in
// the order right-handedness, faces per cell, nodes per face, points. A
// write that fails partway leaves none of its datasets behind.
type Writer struct {
	group  string
	logger *zap.Logger
}

// NewWriter returns a Writer for group. A nil logger discards output.
func NewWriter(group string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{group: arraystore.Join(group), logger: logger}
}

// Group returns the store group the writer targets.
func (w *Writer) Group() string { return w.group }

// Datasets returns the paths the writer uses. Variable dimensions are
// written as itemized lists of lists.
func (w *Writer) Datasets(variableCells, variableFaces bool) Datasets {
	ds := Datasets{
		CellFaceIsRightHanded: arraystore.Join(w.group, CellFaceIsRightHandedName),
		Points:                arraystore.Join(w.group, PointsName),
		FacesPerCell:          arraystore.Join(w.group, FacesPerCellName),
		NodesPerFace:          arraystore.Join(w.group, NodesPerFaceName),
	}
	if variableCells {
		ds.FacesPerCellCumulative = arraystore.Join(ds.FacesPerCell, arraystore.CumulativeLengthName)
		ds.FacesPerCell = arraystore.Join(ds.FacesPerCell, arraystore.ElementsName)
	}
	if variableFaces {
		ds.NodesPerFaceCumulative = arraystore.Join(ds.NodesPerFace, arraystore.CumulativeLengthName)
		ds.NodesPerFace = arraystore.Join(ds.NodesPerFace, arraystore.ElementsName)
	}
	return ds
}

// Write persists a variable-shape payload for cellCount cells.
func (w *Writer) Write(ctx context.Context, s arraystore.Store, cellCount uint64, g *Geometry) (Datasets, error) {
	if err := g.requireBuffers(); err != nil {
		return Datasets{}, err
	}
	if err := w.check(ValidateGeometry(cellCount, g)); err != nil {
		return Datasets{}, err
	}
	ds := w.Datasets(true, true)
	err := w.run(ctx, s,
		writeStep{[]string{ds.CellFaceIsRightHanded}, func() error {
			return s.WriteUint8(ctx, ds.CellFaceIsRightHanded, g.CellFaceIsRightHanded)
		}},
		writeStep{[]string{ds.FacesPerCellCumulative, ds.FacesPerCell}, func() error {
			return arraystore.WriteItemizedListOfList(ctx, s, w.group, FacesPerCellName,
				g.FaceIndicesCumulativeCountPerCell, g.FaceIndicesPerCell)
		}},
		writeStep{[]string{ds.NodesPerFaceCumulative, ds.NodesPerFace}, func() error {
			return arraystore.WriteItemizedListOfList(ctx, s, w.group, NodesPerFaceName,
				g.NodeIndicesCumulativeCountPerFace, g.NodeIndicesPerFace)
		}},
		writeStep{[]string{ds.Points}, func() error {
			return s.WriteFloat64(ctx, ds.Points, g.Points, g.PointCount, 3)
		}},
	)
	if err != nil {
		return Datasets{}, err
	}
	w.logger.Debug("wrote variable geometry",
		zap.String("group", w.group),
		zap.Uint64("cells", cellCount),
		zap.Uint64("faces", g.FaceCount),
		zap.Uint64("points", g.PointCount))
	return ds, nil
}

// WriteConstant persists a constant-shape payload for cellCount cells.
// Index arrays are stored two-dimensional, one row per cell or face.
func (w *Writer) WriteConstant(ctx context.Context, s arraystore.Store, cellCount uint64, g *ConstantGeometry) (Datasets, error) {
	if err := g.requireBuffers(); err != nil {
		return Datasets{}, err
	}
	if err := w.check(ValidateConstantGeometry(cellCount, g)); err != nil {
		return Datasets{}, err
	}
	ds := w.Datasets(false, false)
	err := w.run(ctx, s,
		writeStep{[]string{ds.CellFaceIsRightHanded}, func() error {
			return s.WriteUint8(ctx, ds.CellFaceIsRightHanded, g.CellFaceIsRightHanded)
		}},
		writeStep{[]string{ds.FacesPerCell}, func() error {
			return s.WriteUint64(ctx, ds.FacesPerCell, g.FaceIndicesPerCell, cellCount, g.FaceCountPerCell)
		}},
		writeStep{[]string{ds.NodesPerFace}, func() error {
			return s.WriteUint64(ctx, ds.NodesPerFace, g.NodeIndicesPerFace, g.FaceCount, g.NodeCountPerFace)
		}},
		writeStep{[]string{ds.Points}, func() error {
			return s.WriteFloat64(ctx, ds.Points, g.Points, g.PointCount, 3)
		}},
	)
	if err != nil {
		return Datasets{}, err
	}
	w.logger.Debug("wrote constant geometry",
		zap.String("group", w.group),
		zap.Uint64("cells", cellCount),
		zap.Uint64("faces", g.FaceCount),
		zap.Uint64("faces_per_cell", g.FaceCountPerCell),
		zap.Uint64("nodes_per_face", g.NodeCountPerFace),
		zap.Uint64("points", g.PointCount))
	return ds, nil
}

// writeStep stores the datasets at paths as one unit.
type writeStep struct {
	paths []string
	write func() error
}

// run performs steps in order. When a step fails, the datasets of the steps
// before it are deleted so the group can be written again.
func (w *Writer) run(ctx context.Context, s arraystore.Store, steps ...writeStep) error {
	var written []string
	for _, st := range steps {
		if err := st.write(); err != nil {
			cleanup := context.WithoutCancel(ctx)
			for i := len(written) - 1; i >= 0; i-- {
				if derr := s.Delete(cleanup, written[i]); derr != nil {
					w.logger.Warn("failed to remove partial dataset",
						zap.String("path", written[i]), zap.Error(derr))
				}
			}
			return err
		}
		written = append(written, st.paths...)
	}
	return nil
}

func (w *Writer) check(res ValidationResult) error {
	for _, f := range res.Warnings {
		w.logger.Warn("geometry validation", zap.String("group", w.group), zap.String("finding", f.Error()))
	}
	return res.Err()
}
