package grid

import (
	"fmt"
	"strings"
)

// CellShape is the shape class recorded for a grid's cells.
type CellShape int

const (
	CellShapeUnspecified CellShape = iota
	CellShapeTetrahedral
	CellShapePyramidal
	CellShapePrism
	CellShapeHexahedral
	CellShapePolyhedral
)

var cellShapeNames = [...]string{
	CellShapeUnspecified: "unspecified",
	CellShapeTetrahedral: "tetrahedral",
	CellShapePyramidal:   "pyramidal",
	CellShapePrism:       "prism",
	CellShapeHexahedral:  "hexahedral",
	CellShapePolyhedral:  "polyhedral",
}

func (s CellShape) String() string {
	if s >= 0 && int(s) < len(cellShapeNames) {
		return cellShapeNames[s]
	}
	return fmt.Sprintf("CellShape(%d)", int(s))
}

// ParseCellShape is the inverse of CellShape.String.
func ParseCellShape(name string) (CellShape, error) {
	for i, n := range cellShapeNames {
		if strings.EqualFold(n, name) {
			return CellShape(i), nil
		}
	}
	return CellShapeUnspecified, fmt.Errorf("%w: unknown cell shape %q", ErrInvalidArgument, name)
}

// shapeOf guesses the cell shape from constant valences.
func shapeOf(facesPerCell, nodesPerFace uint64) CellShape {
	switch {
	case facesPerCell == 4 && nodesPerFace == 3:
		return CellShapeTetrahedral
	case facesPerCell == 6 && nodesPerFace == 4:
		return CellShapeHexahedral
	default:
		return CellShapePolyhedral
	}
}

// Geometry is the raw payload of a grid whose face count per cell and node
// count per face vary. Both cumulative arrays are inclusive: entry i counts
// the faces (nodes) of elements 0..i.
type Geometry struct {
	// CellFaceIsRightHanded holds one flag per (cell, local face) slot,
	// 1 when the face's node order is right-handed seen from the cell.
	CellFaceIsRightHanded []uint8
	// Points holds PointCount xyz triples.
	Points     []float64
	PointCount uint64
	FaceCount  uint64

	FaceIndicesPerCell                []uint64
	FaceIndicesCumulativeCountPerCell []uint64
	NodeIndicesPerFace                []uint64
	NodeIndicesCumulativeCountPerFace []uint64

	// CellShape defaults to CellShapePolyhedral.
	CellShape CellShape
}

func (g *Geometry) requireBuffers() error {
	switch {
	case g == nil:
		return missing("geometry")
	case g.CellFaceIsRightHanded == nil:
		return missing("CellFaceIsRightHanded")
	case g.Points == nil:
		return missing("Points")
	case g.FaceIndicesPerCell == nil:
		return missing("FaceIndicesPerCell")
	case g.FaceIndicesCumulativeCountPerCell == nil:
		return missing("FaceIndicesCumulativeCountPerCell")
	case g.NodeIndicesPerFace == nil:
		return missing("NodeIndicesPerFace")
	case g.NodeIndicesCumulativeCountPerFace == nil:
		return missing("NodeIndicesCumulativeCountPerFace")
	}
	return nil
}

// ConstantGeometry is the raw payload of a grid whose cells all have
// FaceCountPerCell faces and whose faces all have NodeCountPerFace nodes.
type ConstantGeometry struct {
	CellFaceIsRightHanded []uint8
	Points                []float64
	PointCount            uint64
	FaceCount             uint64

	// FaceIndicesPerCell is cellCount x FaceCountPerCell, row-major.
	FaceIndicesPerCell []uint64
	FaceCountPerCell   uint64
	// NodeIndicesPerFace is FaceCount x NodeCountPerFace, row-major.
	NodeIndicesPerFace []uint64
	NodeCountPerFace   uint64

	// CellShape defaults to a shape inferred from the valences.
	CellShape CellShape
}

func (g *ConstantGeometry) requireBuffers() error {
	switch {
	case g == nil:
		return missing("geometry")
	case g.CellFaceIsRightHanded == nil:
		return missing("CellFaceIsRightHanded")
	case g.Points == nil:
		return missing("Points")
	case g.FaceIndicesPerCell == nil:
		return missing("FaceIndicesPerCell")
	case g.NodeIndicesPerFace == nil:
		return missing("NodeIndicesPerFace")
	case g.FaceCountPerCell == 0:
		return fmt.Errorf("%w: FaceCountPerCell must be positive", ErrInvalidArgument)
	case g.NodeCountPerFace == 0:
		return fmt.Errorf("%w: NodeCountPerFace must be positive", ErrInvalidArgument)
	}
	return nil
}

// Datasets names the store paths holding a grid's payload. The cumulative
// paths are empty for constant-shape dimensions.
type Datasets struct {
	CellFaceIsRightHanded  string `yaml:"cell_face_is_right_handed"`
	Points                 string `yaml:"points"`
	FacesPerCell           string `yaml:"faces_per_cell"`
	FacesPerCellCumulative string `yaml:"faces_per_cell_cumulative,omitempty"`
	NodesPerFace           string `yaml:"nodes_per_face"`
	NodesPerFaceCumulative string `yaml:"nodes_per_face_cumulative,omitempty"`
}

func (d Datasets) paths() []string {
	out := []string{d.CellFaceIsRightHanded, d.Points, d.FacesPerCell, d.NodesPerFace}
	if d.FacesPerCellCumulative != "" {
		out = append(out, d.FacesPerCellCumulative)
	}
	if d.NodesPerFaceCumulative != "" {
		out = append(out, d.NodesPerFaceCumulative)
	}
	return out
}
