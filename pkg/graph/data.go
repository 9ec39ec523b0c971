package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // axis-aligned box, min corner at origin
	PrimCylinder                      // cylinder along z, centered at origin
	PrimSphere                        // sphere centered at origin
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// PrimitiveData describes a solid primitive. Size is used by boxes;
// Radius and Height by cylinders and spheres.
type PrimitiveData struct {
	Kind   PrimitiveKind `json:"kind"`
	Size   Vec3          `json:"size,omitempty"`
	Radius float64       `json:"radius,omitempty"`
	Height float64       `json:"height,omitempty"`
}

func (PrimitiveData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to the children.
// Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanOp enumerates boolean solid operations.
type BooleanOp int

const (
	OpUnion        BooleanOp = iota
	OpDifference             // first child minus the rest
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the children with Op.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping; as a solid it is the union of its children.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Grid request
// ---------------------------------------------------------------------------

// CellKind selects the cells a grid request is meshed into.
type CellKind int

const (
	CellsHexahedral  CellKind = iota // one hexahedron per voxel
	CellsTetrahedral                 // six tetrahedra per voxel
)

func (k CellKind) String() string {
	switch k {
	case CellsHexahedral:
		return "hex"
	case CellsTetrahedral:
		return "tet"
	default:
		return "unknown"
	}
}

// Encoding selects how a grid's face and node counts are persisted.
type Encoding int

const (
	EncodingConstant Encoding = iota // constant-shape datasets
	EncodingVariable                 // itemized lists with cumulative counts
)

func (e Encoding) String() string {
	switch e {
	case EncodingConstant:
		return "constant"
	case EncodingVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// GridData requests an unstructured grid over the node's single child.
// Created by the (defgrid ...) form.
type GridData struct {
	Title    string   `json:"title"`
	CellSize float64  `json:"cell_size"`
	Cells    CellKind `json:"cells"`
	Encoding Encoding `json:"encoding"`
}

func (GridData) nodeData() {}
