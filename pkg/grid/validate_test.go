package grid

import (
	"errors"
	"strings"
	"testing"
)

func hasFinding(fs []Finding, substr string) bool {
	for _, f := range fs {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateGeometryClean(t *testing.T) {
	r := ValidateGeometry(3, variableGeometry())
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestValidateGeometryErrors(t *testing.T) {
	tests := []struct {
		name   string
		cells  uint64
		mutate func(*Geometry)
		want   string
	}{
		{"cumulative length", 4, func(*Geometry) {}, "want one per cell"},
		{"decreasing", 3, func(g *Geometry) { g.FaceIndicesCumulativeCountPerCell[1] = 2 }, "non-decreasing"},
		{"face slots", 3, func(g *Geometry) { g.FaceIndicesPerCell = g.FaceIndicesPerCell[:7] }, "has 7 entries, want 8"},
		{"flag slots", 3, func(g *Geometry) { g.CellFaceIsRightHanded = append(g.CellFaceIsRightHanded, 1) }, "has 9 entries"},
		{"point coords", 3, func(g *Geometry) { g.Points = g.Points[:17] }, "want 18"},
		{"node index", 3, func(g *Geometry) { g.NodeIndicesPerFace[4] = 6 }, "node index 6 >= point count 6"},
		{"missing buffer", 3, func(g *Geometry) { g.NodeIndicesPerFace = nil }, "NodeIndicesPerFace must be provided"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := variableGeometry()
			tt.mutate(g)
			r := ValidateGeometry(tt.cells, g)
			if r.OK() {
				t.Fatal("expected errors")
			}
			if !hasFinding(r.Errors, tt.want) {
				t.Errorf("no error containing %q in %v", tt.want, r.Errors)
			}
			if !errors.Is(r.Err(), ErrInvalidArgument) {
				t.Errorf("Err() = %v, want ErrInvalidArgument", r.Err())
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	g := twoTets()
	g.FaceCount = 9
	g.NodeIndicesPerFace = append(g.NodeIndicesPerFace, 0, 1, 2)
	g.FaceCountPerCell, g.NodeCountPerFace = 4, 3
	g.FaceIndicesPerCell[1] = 0
	g.CellFaceIsRightHanded[0] = 2
	g.PointCount = 9
	g.Points = append(g.Points, 9, 9, 9)

	r := ValidateConstantGeometry(2, &g)
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	for _, want := range []string{
		"lists face 0 twice",
		"not used by any cell",
		"not used by any face",
		"neither 0 nor 1",
	} {
		if !hasFinding(r.Warnings, want) {
			t.Errorf("no warning containing %q in %v", want, r.Warnings)
		}
	}
}

func TestLayouts(t *testing.T) {
	c := CumulativeLayout{3, 7, 8}
	k := ConstantLayout(4)
	for i, want := range []struct{ count, start uint64 }{{3, 0}, {4, 3}, {1, 7}} {
		if got := c.Count(uint64(i)); got != want.count {
			t.Errorf("cumulative Count(%d) = %d, want %d", i, got, want.count)
		}
		if got := c.Start(uint64(i)); got != want.start {
			t.Errorf("cumulative Start(%d) = %d, want %d", i, got, want.start)
		}
		if got := k.Start(uint64(i)); got != 4*uint64(i) {
			t.Errorf("constant Start(%d) = %d", i, got)
		}
	}
	if c.Total(3) != 8 || c.Total(0) != 0 || k.Total(3) != 12 {
		t.Errorf("Total: cumulative %d/%d constant %d", c.Total(3), c.Total(0), k.Total(3))
	}
}

func TestParseCellShape(t *testing.T) {
	for s := CellShapeUnspecified; s <= CellShapePolyhedral; s++ {
		got, err := ParseCellShape(s.String())
		if err != nil || got != s {
			t.Errorf("ParseCellShape(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseCellShape("blob"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown shape: got %v", err)
	}
}
