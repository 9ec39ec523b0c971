package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/google/go-cmp/cmp"
)

func TestWriterRemovesPartialDatasets(t *testing.T) {
	ctx := context.Background()
	s := arraystore.NewMemStore()
	w := NewWriter("/RESQML/partial", nil)
	ds := w.Datasets(true, true)

	// Occupy the last dataset so the write fails on points.
	if err := s.WriteFloat64(ctx, ds.Points, []float64{0, 0, 0}, 1, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(ctx, s, 3, variableGeometry()); !errors.Is(err, arraystore.ErrExists) {
		t.Fatalf("Write into occupied group: got %v, want ErrExists", err)
	}
	if diff := cmp.Diff([]string{ds.Points}, s.Paths()); diff != "" {
		t.Errorf("datasets left after failed write (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, ds.Points); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(ctx, s, 3, variableGeometry()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n := len(s.Paths()); n != 6 {
		t.Errorf("retry stored %d datasets, want 6", n)
	}
}

func TestWriterConstantRemovesPartialDatasets(t *testing.T) {
	ctx := context.Background()
	s := arraystore.NewMemStore()
	w := NewWriter("/RESQML/tets", nil)
	ds := w.Datasets(false, false)

	if err := s.WriteUint64(ctx, ds.NodesPerFace, []uint64{0}); err != nil {
		t.Fatal(err)
	}
	geom := twoTets()
	geom.FaceCountPerCell = 4
	geom.NodeCountPerFace = 3
	if _, err := w.WriteConstant(ctx, s, 2, &geom); !errors.Is(err, arraystore.ErrExists) {
		t.Fatalf("WriteConstant into occupied group: got %v, want ErrExists", err)
	}
	// The blocking dataset belongs to someone else and stays.
	if diff := cmp.Diff([]string{ds.NodesPerFace}, s.Paths()); diff != "" {
		t.Errorf("datasets left after failed write (-want +got):\n%s", diff)
	}
}
