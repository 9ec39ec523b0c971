package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildValidGrid creates a grid request over a block with a spherical hole:
// grid -> difference -> (block, place -> ball).
func buildValidGrid() *SceneGraph {
	g := New()

	blockID := NewNodeID("defsolid/block")
	ballID := NewNodeID("defsolid/ball")
	placeID := NewNodeID("place/ball")
	diffID := NewNodeID("difference/1")
	gridID := NewNodeID("defgrid/mesh")

	g.AddNode(&Node{
		ID: blockID, Kind: NodePrimitive, Name: "block",
		Data: PrimitiveData{Kind: PrimBox, Size: Vec3{4, 2, 2}},
	})
	g.AddNode(&Node{
		ID: ballID, Kind: NodePrimitive, Name: "ball",
		Data: PrimitiveData{Kind: PrimSphere, Radius: 0.75},
	})
	g.AddNode(&Node{
		ID: placeID, Kind: NodeTransform,
		Children: []NodeID{ballID},
		Data:     TransformData{Translation: &Vec3{2, 1, 1}},
	})
	g.AddNode(&Node{
		ID: diffID, Kind: NodeBoolean,
		Children: []NodeID{blockID, placeID},
		Data:     BooleanData{Op: OpDifference},
	})
	g.AddNode(&Node{
		ID: gridID, Kind: NodeGrid, Name: "mesh",
		Children: []NodeID{diffID},
		Data:     GridData{Title: "mesh", CellSize: 0.5},
	})
	g.AddRoot(gridID)
	return g
}

func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 1
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	for _, e := range Validate(buildValidGrid()) {
		t.Errorf("unexpected validation error: %s", e)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	for _, e := range Validate(New()) {
		t.Errorf("unexpected validation error on empty graph: %s", e)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()
	aID, bID, cID := NewNodeID("a"), NewNodeID("b"), NewNodeID("c")

	// a -> b -> c -> a
	g.AddNode(&Node{ID: aID, Kind: NodeGroup, Name: "a", Children: []NodeID{bID}, Data: GroupData{}})
	g.AddNode(&Node{ID: bID, Kind: NodeGroup, Name: "b", Children: []NodeID{cID}, Data: GroupData{}})
	g.AddNode(&Node{ID: cID, Kind: NodeGroup, Name: "c", Children: []NodeID{aID}, Data: GroupData{}})
	g.AddRoot(aID)

	if !hasError(Validate(g), "cycle detected") {
		t.Error("expected cycle detection error")
	}
}

func TestValidate_DanglingReferences(t *testing.T) {
	g := buildValidGrid()
	missing := NewNodeID("nowhere")
	g.Lookup("mesh").Children = []NodeID{missing}
	g.AddRoot(NewNodeID("also-nowhere"))

	errs := Validate(g)
	if !hasError(errs, "child reference") {
		t.Error("expected dangling child error")
	}
	if !hasError(errs, "root reference") {
		t.Error("expected dangling root error")
	}
	if !hasWarning(errs, "orphan") {
		t.Error("expected orphan warning for the detached difference")
	}
}

func TestValidate_RootsAreGridRequests(t *testing.T) {
	g := buildValidGrid()
	spare := NewNodeID("defsolid/spare")
	g.AddNode(&Node{
		ID: spare, Kind: NodePrimitive, Name: "spare",
		Data: PrimitiveData{Kind: PrimSphere, Radius: 1},
	})

	errs := Validate(g)
	if !hasWarning(errs, `solid "spare" is not used`) {
		t.Errorf("expected unused solid warning, got %v", errs)
	}
	if hasError(errs, "") {
		t.Errorf("an unused solid must not be an error: %v", errs)
	}

	g.AddRoot(spare)
	if !hasError(Validate(g), "not a grid request") {
		t.Error("expected error for a solid used as a root")
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	g := buildValidGrid()
	other := NewNodeID("defsolid/block-2")
	g.Nodes[other] = &Node{
		ID: other, Kind: NodePrimitive, Name: "block",
		Data: PrimitiveData{Kind: PrimBox, Size: Vec3{1, 1, 1}},
	}
	g.AddRoot(other)
	if !hasError(Validate(g), `duplicate name "block"`) {
		t.Error("expected duplicate name error")
	}
}

func TestValidate_GridStructure(t *testing.T) {
	g := buildValidGrid()
	grid := g.Lookup("mesh")
	grid.Children = append(grid.Children, NewNodeID("defsolid/ball"))
	if !hasError(Validate(g), "want exactly one solid") {
		t.Error("expected grid arity error")
	}

	g = buildValidGrid()
	wrapID := NewNodeID("group/wrap")
	g.AddNode(&Node{ID: wrapID, Kind: NodeGroup, Children: []NodeID{g.Lookup("mesh").ID}, Data: GroupData{}})
	g.Roots = []NodeID{wrapID}
	if !hasError(Validate(g), "nested under group") {
		t.Error("expected nested grid error")
	}
}

// ---------------------------------------------------------------------------
// Tier 2
// ---------------------------------------------------------------------------

func TestValidateAll_Clean(t *testing.T) {
	r := ValidateAll(buildValidGrid())
	if !r.OK() {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidateAll_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		data PrimitiveData
		want string
	}{
		{"box", PrimitiveData{Kind: PrimBox, Size: Vec3{1, 0, 1}}, "size Y is 0.0000"},
		{"cylinder", PrimitiveData{Kind: PrimCylinder, Radius: 1, Height: -2}, "height is -2.0000"},
		{"sphere", PrimitiveData{Kind: PrimSphere}, "radius is 0.0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildValidGrid()
			g.Lookup("block").Data = tt.data
			if !hasError(ValidateAll(g).Errors, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, ValidateAll(g).Errors)
			}
		})
	}
}

func TestValidateAll_CellSize(t *testing.T) {
	g := buildValidGrid()
	grid := g.Lookup("mesh")
	grid.Data = GridData{Title: "mesh", CellSize: 0}
	if !hasError(ValidateAll(g).Errors, "must be positive") {
		t.Error("expected cell size error")
	}

	grid.Data = GridData{Title: "mesh", CellSize: 1.8}
	r := ValidateAll(g)
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0].Message, "thinnest primitive dimension 1.5000") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestValidateAll_BooleanArity(t *testing.T) {
	g := buildValidGrid()
	for _, n := range g.Nodes {
		if n.Kind == NodeBoolean {
			n.Children = n.Children[:1]
		}
	}
	if !hasError(ValidateAll(g).Errors, "difference needs at least two solids") {
		t.Error("expected boolean arity error")
	}
}
