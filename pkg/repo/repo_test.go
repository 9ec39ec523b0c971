package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ugrid/pkg/arraystore"
)

type note struct {
	id    uuid.UUID
	title string
	tag   string
	Text  string `yaml:"text"`
}

func (n *note) UUID() uuid.UUID        { return n.id }
func (n *note) Title() string          { return n.title }
func (n *note) XMLTag() string         { return n.tag }
func (n *note) Describe() (any, error) { return n, nil }

// opaque is a data object that never appears in a manifest.
type opaque struct{ note }

func (o *opaque) Describe() {}

func newNote(title, tag string) *note {
	return &note{id: uuid.New(), title: title, tag: tag}
}

func decodeNote(r *Repository, e Entry) (DataObject, error) {
	n := &note{id: uuid.MustParse(e.UUID), title: e.Title, tag: e.Tag}
	if e.Body.IsZero() {
		return n, nil
	}
	if err := e.Body.Decode(n); err != nil {
		return nil, err
	}
	return n, nil
}

func TestAdd(t *testing.T) {
	first := newNote("a", "Note")
	tests := []struct {
		name    string
		obj     DataObject
		wantErr string
	}{
		{"nil uuid", &note{title: "nil", tag: "Note"}, "nil UUID"},
		{"duplicate uuid", &note{id: first.id, title: "copy", tag: "Note"}, "duplicate UUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil)
			require.NoError(t, r.Add(first))
			err := r.Add(tt.obj)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 1, r.Len())
			assert.Same(t, first, r.Lookup("a"))
		})
	}
}

func TestLookupAndByTag(t *testing.T) {
	r := New(nil)
	a := newNote("a", "Note")
	b := newNote("b", "Other")
	again := newNote("a", "Note")
	for _, o := range []DataObject{a, b, again} {
		require.NoError(t, r.Add(o))
	}

	assert.Same(t, again, r.Lookup("a"), "latest object wins the title")
	assert.Nil(t, r.Lookup("missing"))
	assert.Same(t, a, r.Get(a.UUID()))
	assert.Nil(t, r.Get(uuid.New()))
	assert.Equal(t, []string{"a", "b"}, r.Titles())
	assert.Equal(t, []DataObject{a, again}, r.ByTag("Note"))
	assert.Equal(t, []DataObject{a, b, again}, r.Objects())
	assert.Empty(t, r.ByTag("Nothing"))
}

func TestDefaultStore(t *testing.T) {
	r := New(nil)
	assert.Nil(t, r.DefaultStore())
	s := arraystore.NewMemStore()
	r.SetDefaultStore(s)
	assert.Same(t, s, r.DefaultStore())
}

func TestManifestRoundTrip(t *testing.T) {
	r := New(nil)
	n := newNote("hello", "Note")
	n.Text = "world"
	require.NoError(t, r.Add(n))
	require.NoError(t, r.Add(&opaque{*newNote("hidden", "Opaque")}))

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, r.SaveManifest(path, "grids.db"))

	m, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, m.Version)
	assert.Equal(t, "grids.db", m.Store)
	require.Len(t, m.Objects, 1, "objects without Describe are skipped")

	loaded := New(nil)
	require.NoError(t, loaded.Load(m, map[string]Decoder{"Note": decodeNote}))
	got, ok := loaded.Get(n.UUID()).(*note)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Title())
	assert.Equal(t, "world", got.Text)
}

func TestReadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unsupported version", "version: 2\nobjects: []\n", "unsupported manifest version 2"},
		{"missing version", "objects: []\n", "unsupported manifest version 0"},
		{"not yaml", "version: [1\n", "parse manifest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := ReadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := ReadManifest(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadErrors(t *testing.T) {
	id := uuid.New().String()
	failing := func(r *Repository, e Entry) (DataObject, error) { return nil, errors.New("boom") }
	tests := []struct {
		name    string
		entries []Entry
		wantErr string
	}{
		{"unknown tag", []Entry{{UUID: id, Tag: "Mystery", Title: "m"}}, "no decoder for tag Mystery"},
		{"bad uuid", []Entry{{UUID: "not-a-uuid", Tag: "Note", Title: "n"}}, "bad uuid"},
		{"decoder failure", []Entry{{UUID: id, Tag: "Failing", Title: "f"}}, "boom"},
		{"duplicate", []Entry{{UUID: id, Tag: "Note", Title: "a"}, {UUID: id, Tag: "Note", Title: "b"}}, "duplicate UUID"},
	}
	decoders := map[string]Decoder{"Note": decodeNote, "Failing": failing}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Version: ManifestVersion, Objects: tt.entries}
			err := New(nil).Load(m, decoders)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
