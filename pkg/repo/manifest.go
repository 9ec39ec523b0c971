package repo

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = 1

// Manifest is the on-disk description of a repository's data objects.
// Bulk arrays live in the array store; the manifest only records metadata.
type Manifest struct {
	Version int     `yaml:"version"`
	Store   string  `yaml:"store,omitempty"`
	Objects []Entry `yaml:"objects"`
}

// Entry is one data object in a manifest. Body is decoded by the Decoder
// registered for Tag.
type Entry struct {
	UUID  string    `yaml:"uuid"`
	Tag   string    `yaml:"tag"`
	Title string    `yaml:"title"`
	Body  yaml.Node `yaml:"body"`
}

// Decoder rebuilds a data object from a manifest entry. Decoders run in
// manifest order, so an object may refer to objects listed before it.
type Decoder func(r *Repository, e Entry) (DataObject, error)

// Manifest builds the manifest of all objects that implement Describer.
func (r *Repository) Manifest(storePath string) (*Manifest, error) {
	m := &Manifest{Version: ManifestVersion, Store: storePath}
	for _, obj := range r.Objects() {
		d, ok := obj.(Describer)
		if !ok {
			continue
		}
		body, err := d.Describe()
		if err != nil {
			return nil, fmt.Errorf("repo: describe %s %q: %w", obj.XMLTag(), obj.Title(), err)
		}
		e := Entry{UUID: obj.UUID().String(), Tag: obj.XMLTag(), Title: obj.Title()}
		if err := e.Body.Encode(body); err != nil {
			return nil, fmt.Errorf("repo: encode %s %q: %w", obj.XMLTag(), obj.Title(), err)
		}
		m.Objects = append(m.Objects, e)
	}
	return m, nil
}

// SaveManifest writes the repository manifest as YAML to path.
func (r *Repository) SaveManifest(path, storePath string) error {
	m, err := r.Manifest(storePath)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("repo: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("repo: write manifest: %w", err)
	}
	return nil
}

// ReadManifest parses the manifest at path without decoding object bodies.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repo: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("repo: parse manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("repo: unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// Load decodes every manifest entry with the decoder registered for its tag
// and adds the result to r. Entries with an unknown tag fail the load.
func (r *Repository) Load(m *Manifest, decoders map[string]Decoder) error {
	for _, e := range m.Objects {
		if _, err := uuid.Parse(e.UUID); err != nil {
			return fmt.Errorf("repo: entry %q: bad uuid: %w", e.Title, err)
		}
		dec, ok := decoders[e.Tag]
		if !ok {
			return fmt.Errorf("repo: entry %q: no decoder for tag %s", e.Title, e.Tag)
		}
		obj, err := dec(r, e)
		if err != nil {
			return fmt.Errorf("repo: decode %s %q: %w", e.Tag, e.Title, err)
		}
		if err := r.Add(obj); err != nil {
			return err
		}
	}
	return nil
}
