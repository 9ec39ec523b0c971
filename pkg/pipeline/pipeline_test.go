package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/chazu/ugrid/pkg/config"
	"github.com/chazu/ugrid/pkg/crs"
	"github.com/chazu/ugrid/pkg/grid"
	"github.com/chazu/ugrid/pkg/kernel/sdfx"
	"github.com/chazu/ugrid/pkg/repo"
)

const carvedBlock = `
; a block with a spherical void
(defsolid "block" (box 4 2 2))
(defgrid "carved"
  (difference (solid "block") (place (sphere 0.75) :at (vec3 2 1 1)))
  :cell-size 0.5)
`

func newBuilder(t *testing.T, opts ...Option) (*Builder, *repo.Repository) {
	t.Helper()
	r := repo.New(arraystore.NewMemStore())
	all := append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(r, sdfx.New(), all...), r
}

func TestBuildHexahedra(t *testing.T) {
	b, r := newBuilder(t)
	grids, err := b.Build(context.Background(), carvedBlock)
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.Equal(t, "carved", g.Title())
	assert.EqualValues(t, 120, g.CellCount())
	assert.Equal(t, grid.CellShapeHexahedral, g.CellShape())
	require.NotNil(t, g.LocalCRS())
	assert.Equal(t, crs.XMLTag, g.LocalCRS().XMLTag())
	assert.Same(t, g, r.Lookup("carved"))

	require.NoError(t, g.LoadGeometry(context.Background()))
	n, err := g.FaceCountOfCell(0)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
}

func TestBuildTetrahedraVariable(t *testing.T) {
	b, _ := newBuilder(t, WithMeshConfig(config.MeshConfig{
		Cells:    "tet",
		Encoding: "variable",
		CRSTitle: "site",
	}))
	grids, err := b.Build(context.Background(), carvedBlock)
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.EqualValues(t, 720, g.CellCount())
	constant, err := g.IsFaceCountOfCellsConstant()
	require.NoError(t, err)
	assert.False(t, constant)
	assert.Equal(t, "site", g.LocalCRS().Title())

	require.NoError(t, g.LoadGeometry(context.Background()))
	view, err := g.CumulativeFaceCountPerCell()
	require.NoError(t, err)
	last, err := view.At(view.Len() - 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4*720, last)
}

func TestBuildSharesCRS(t *testing.T) {
	b, r := newBuilder(t)
	_, err := b.Build(context.Background(), `
(defgrid "a" (box 1 1 1) :cell-size 0.5)
(defgrid "b" (box 2 1 1) :cell-size 0.5)
`)
	require.NoError(t, err)
	assert.Len(t, r.ByTag(crs.XMLTag), 1)
	assert.Len(t, r.ByTag(grid.XMLTag), 2)
}

// pointsLimit fails every points write after the first n.
type pointsLimit struct {
	*arraystore.MemStore
	n int
}

func (s *pointsLimit) WriteFloat64(ctx context.Context, p string, data []float64, shape ...uint64) error {
	if s.n == 0 {
		return errors.New("store full")
	}
	s.n--
	return s.MemStore.WriteFloat64(ctx, p, data, shape...)
}

func TestBuildFailureRegistersOnlyWrittenGrids(t *testing.T) {
	store := &pointsLimit{MemStore: arraystore.NewMemStore(), n: 1}
	r := repo.New(store)
	b := New(r, sdfx.New(), WithLogger(zaptest.NewLogger(t)))

	grids, err := b.Build(context.Background(), `
(defgrid "a" (box 1 1 1) :cell-size 0.5)
(defgrid "b" (box 2 1 1) :cell-size 0.5)
`)
	require.Error(t, err)
	require.Len(t, grids, 1)
	assert.Equal(t, "a", grids[0].Title())

	registered := r.ByTag(grid.XMLTag)
	require.Len(t, registered, 1)
	assert.Same(t, grids[0], registered[0])
	assert.Nil(t, r.Lookup("b"))

	// Only the datasets of "a" remain in the store.
	for _, p := range store.Paths() {
		assert.Contains(t, p, grids[0].Group())
	}
	assert.NotEmpty(t, store.Paths())
}

func TestSceneErrors(t *testing.T) {
	b, _ := newBuilder(t)

	_, err := b.Scene(context.Background(), `(box 1 2`)
	assert.ErrorIs(t, err, ErrScript)

	_, err = b.Scene(context.Background(), `(defgrid "g" (box 1 -1 1) :cell-size 0.5)`)
	assert.ErrorIs(t, err, ErrInvalidScene)

	b, _ = newBuilder(t, WithMeshConfig(config.MeshConfig{Cells: "prism"}))
	_, err = b.Scene(context.Background(), `(defgrid "g" (box 1 1 1) :cell-size 0.5)`)
	assert.Error(t, err)
}

func TestBuildPersistsThroughManifest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "grids.db")
	manifest := filepath.Join(dir, "ugrid.yaml")

	store, err := arraystore.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	r := repo.New(store)
	_, err = New(r, sdfx.New()).Build(ctx, carvedBlock)
	require.NoError(t, err)
	require.NoError(t, r.SaveManifest(manifest, dbPath))
	require.NoError(t, store.Close())

	store, err = arraystore.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()
	m, err := repo.ReadManifest(manifest)
	require.NoError(t, err)
	loaded := repo.New(store)
	require.NoError(t, loaded.Load(m, map[string]repo.Decoder{
		crs.XMLTag:  crs.Decode,
		grid.XMLTag: grid.Decode,
	}))

	g, ok := loaded.Lookup("carved").(*grid.UnstructuredGrid)
	require.True(t, ok)
	require.NoError(t, g.LoadGeometry(ctx))
	lo, hi, err := g.BoundingBox(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0, lo[0], 1e-9)
	assert.InDelta(t, 4, hi[0], 1e-9)
}
