package engine

import (
	"context"
	"testing"

	"github.com/chazu/ugrid/pkg/graph"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func evalOK(t *testing.T, source string) *graph.SceneGraph {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("nil graph")
	}
	return g
}

func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	return evalErrs
}

func onlyChild(t *testing.T, g *graph.SceneGraph, n *graph.Node) *graph.Node {
	t.Helper()
	children := g.Children(n)
	if len(children) != 1 {
		t.Fatalf("%s has %d children, want 1", n.Label(), len(children))
	}
	return children[0]
}

// ---------------------------------------------------------------------------
// Primitive tests
// ---------------------------------------------------------------------------

func TestBoxGrid(t *testing.T) {
	g := evalOK(t, `(defgrid "block" (box 4 2 2) :cell-size 0.5)`)

	grids := g.GridRequests()
	if len(grids) != 1 {
		t.Fatalf("got %d grid requests, want 1", len(grids))
	}
	gn := grids[0]
	gd, ok := gn.Data.(graph.GridData)
	if !ok {
		t.Fatalf("grid data is %T", gn.Data)
	}
	if gd.Title != "block" || gd.CellSize != 0.5 {
		t.Errorf("grid data = %+v", gd)
	}
	if gd.Cells != graph.CellsHexahedral || gd.Encoding != graph.EncodingConstant {
		t.Errorf("defaults: cells %s, encoding %s", gd.Cells, gd.Encoding)
	}

	box := onlyChild(t, g, gn)
	pd, ok := box.Data.(graph.PrimitiveData)
	if !ok || pd.Kind != graph.PrimBox {
		t.Fatalf("child data = %#v", box.Data)
	}
	if pd.Size != (graph.Vec3{X: 4, Y: 2, Z: 2}) {
		t.Errorf("box size = %+v", pd.Size)
	}
}

func TestCylinderAndSphere(t *testing.T) {
	g := evalOK(t, `
(defsolid "parts"
  (cylinder :height 3 :radius 0.5)
  (sphere 0.75))
`)
	parts := g.MustLookup("parts")
	if parts.Kind != graph.NodeGroup {
		t.Fatalf("kind = %s, want group", parts.Kind)
	}
	children := g.Children(parts)
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	cyl := children[0].Data.(graph.PrimitiveData)
	if cyl.Kind != graph.PrimCylinder || cyl.Height != 3 || cyl.Radius != 0.5 {
		t.Errorf("cylinder = %+v", cyl)
	}
	ball := children[1].Data.(graph.PrimitiveData)
	if ball.Kind != graph.PrimSphere || ball.Radius != 0.75 {
		t.Errorf("sphere = %+v", ball)
	}
}

func TestBoxArity(t *testing.T) {
	evalFails(t, `(box 1 2)`)
	evalFails(t, `(box 1 2 "three")`)
}

// ---------------------------------------------------------------------------
// Transforms and booleans
// ---------------------------------------------------------------------------

func TestPlace(t *testing.T) {
	g := evalOK(t, `
(defgrid "moved"
  (place (sphere 1) :at (vec3 2 1 -1) :rotate (vec3 0 0 90))
  :cell-size 0.25)
`)
	tn := onlyChild(t, g, g.MustLookup("moved"))
	if tn.Kind != graph.NodeTransform {
		t.Fatalf("kind = %s, want transform", tn.Kind)
	}
	td := tn.Data.(graph.TransformData)
	if td.Translation == nil || *td.Translation != (graph.Vec3{X: 2, Y: 1, Z: -1}) {
		t.Errorf("translation = %v", td.Translation)
	}
	if td.Rotation == nil || td.Rotation.Z != 90 {
		t.Errorf("rotation = %v", td.Rotation)
	}
}

func TestPlaceRequiresOneSolid(t *testing.T) {
	evalFails(t, `(place :at (vec3 0 0 0))`)
	evalFails(t, `(place (box 1 1 1) :at 3)`)
}

func TestBooleans(t *testing.T) {
	tests := []struct {
		form string
		op   graph.BooleanOp
	}{
		{"union", graph.OpUnion},
		{"difference", graph.OpDifference},
		{"intersection", graph.OpIntersection},
	}
	for _, tt := range tests {
		t.Run(tt.form, func(t *testing.T) {
			g := evalOK(t, `(defgrid "g" (`+tt.form+` (box 2 2 2) (sphere 1)) :cell-size 0.5)`)
			bn := onlyChild(t, g, g.MustLookup("g"))
			bd, ok := bn.Data.(graph.BooleanData)
			if !ok || bd.Op != tt.op {
				t.Fatalf("data = %#v, want op %s", bn.Data, tt.op)
			}
			if len(bn.Children) != 2 {
				t.Errorf("got %d operands, want 2", len(bn.Children))
			}
		})
	}
}

func TestBooleanRejectsNonSolid(t *testing.T) {
	evalFails(t, `(union (box 1 1 1) 5)`)
}

// ---------------------------------------------------------------------------
// Named solids and grid requests
// ---------------------------------------------------------------------------

func TestSolidLookup(t *testing.T) {
	g := evalOK(t, `
(defsolid "ball" (sphere 1))
(defgrid "fine" (solid "ball") :cell-size 0.1 :cells :tet :encoding :variable :title "Fine ball")
`)
	gn := g.MustLookup("fine")
	gd := gn.Data.(graph.GridData)
	if gd.Cells != graph.CellsTetrahedral || gd.Encoding != graph.EncodingVariable {
		t.Errorf("grid data = %+v", gd)
	}
	if gd.Title != "Fine ball" {
		t.Errorf("title = %q", gd.Title)
	}
	if child := onlyChild(t, g, gn); child.Name != "ball" {
		t.Errorf("child = %q, want ball", child.Name)
	}
	if len(g.Roots) != 1 || g.Roots[0] != gn.ID {
		t.Errorf("roots = %v", g.Roots)
	}
}

func TestSolidUnknownName(t *testing.T) {
	evalFails(t, `(solid "nope")`)
}

func TestDuplicateNames(t *testing.T) {
	evalFails(t, `(defsolid "a" (box 1 1 1)) (defsolid "a" (box 2 2 2))`)
	evalFails(t, `(defgrid "g" (box 1 1 1) :cell-size 1) (defgrid "g" (box 2 2 2) :cell-size 1)`)
}

func TestDefgridBadKeywords(t *testing.T) {
	evalFails(t, `(defgrid "g" (box 1 1 1) :cell-size 1 :cells :prism)`)
	evalFails(t, `(defgrid "g" (box 1 1 1) :cell-size 1 :encoding :packed)`)
	evalFails(t, `(defgrid "g" (box 1 1 1) :cell-size "big")`)
	evalFails(t, `(defgrid "g" :cell-size 1)`)
}

func TestDeterministicIDs(t *testing.T) {
	src := `(defgrid "g" (difference (box 4 2 2) (place (sphere 0.75) :at (vec3 2 1 1))) :cell-size 0.5)`
	a := evalOK(t, src)
	b := evalOK(t, src)
	if a.NodeCount() != b.NodeCount() {
		t.Fatalf("node counts differ: %d vs %d", a.NodeCount(), b.NodeCount())
	}
	for id := range a.Nodes {
		if b.Get(id) == nil {
			t.Errorf("node %s missing from second evaluation", id.Short())
		}
	}
}

func TestEvaluatedGraphValidates(t *testing.T) {
	g := evalOK(t, `
; block with a spherical void
(defsolid "block" (box 4 2 2))
(defgrid "mesh"
  (difference (solid "block") (place (sphere 0.75) :at (vec3 2 1 1)))
  :cell-size 0.5 :cells :hex)
`)
	res := graph.ValidateAll(g)
	if !res.OK() {
		t.Fatalf("validation errors: %v", res.Errors)
	}
	if g.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", g.NodeCount())
	}
}
