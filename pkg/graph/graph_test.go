package graph

import "testing"

func TestNewSceneGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("defsolid/block")
	g.AddNode(&Node{
		ID:   id,
		Kind: NodePrimitive,
		Name: "block",
		Data: PrimitiveData{Kind: PrimBox, Size: Vec3{2, 1, 1}},
	})
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("block")
	if found == nil || found.ID != id {
		t.Fatal("Lookup('block') returned the wrong node")
	}
	if g.MustLookup("block").ID != id {
		t.Error("MustLookup returned wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := g.Get(id); got == nil || got.Label() != "block" {
		t.Error("Get by ID failed")
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic for a missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("defgrid/mesh")
	b := NewNodeID("defgrid/mesh")
	c := NewNodeID("defgrid/other")
	if a != b {
		t.Errorf("same path gave %s and %s", a, b)
	}
	if a == c {
		t.Error("different paths gave the same ID")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 characters", a.Short())
	}
	if !ZeroID.IsZero() || a.IsZero() {
		t.Error("IsZero is wrong")
	}
}

func TestGridRequests(t *testing.T) {
	g := buildValidGrid()
	reqs := g.GridRequests()
	if len(reqs) != 1 {
		t.Fatalf("got %d grid requests, want 1", len(reqs))
	}
	gd := reqs[0].Data.(GridData)
	if gd.Title != "mesh" || gd.CellSize != 0.5 || gd.Cells != CellsHexahedral {
		t.Errorf("unexpected grid data %+v", gd)
	}
	children := g.Children(reqs[0])
	if len(children) != 1 || children[0].Kind != NodeBoolean {
		t.Errorf("grid children = %v", children)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NodeGrid.String(), "grid"},
		{NodeKind(99).String(), "unknown"},
		{PrimSphere.String(), "sphere"},
		{OpDifference.String(), "difference"},
		{CellsTetrahedral.String(), "tet"},
		{EncodingVariable.String(), "variable"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestWalkAndSolids(t *testing.T) {
	g := New()
	a := &Node{ID: NewNodeID("a"), Kind: NodePrimitive, Name: "a", Data: PrimitiveData{Kind: PrimSphere, Radius: 1}}
	b := &Node{ID: NewNodeID("b"), Kind: NodePrimitive, Data: PrimitiveData{Kind: PrimSphere, Radius: 2}}
	u := &Node{ID: NewNodeID("u"), Kind: NodeBoolean, Name: "u", Children: []NodeID{a.ID, b.ID, a.ID, "dangling"}, Data: BooleanData{Op: OpUnion}}
	grid := &Node{ID: NewNodeID("g"), Kind: NodeGrid, Name: "g", Children: []NodeID{u.ID}, Data: GridData{CellSize: 1}}
	for _, n := range []*Node{a, b, u, grid} {
		g.AddNode(n)
	}

	var seen []NodeID
	g.Walk(grid, func(n *Node) bool {
		seen = append(seen, n.ID)
		return true
	})
	if len(seen) != 4 || seen[0] != grid.ID || seen[1] != u.ID || seen[2] != a.ID || seen[3] != b.ID {
		t.Errorf("Walk order = %v", seen)
	}

	count := 0
	g.Walk(grid, func(*Node) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Walk should stop after 2 visits, made %d", count)
	}

	if got := g.Solids(); len(got) != 2 || got[0] != "a" || got[1] != "u" {
		t.Errorf("Solids() = %v, want [a u]", got)
	}
}
