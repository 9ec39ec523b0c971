// Package repo holds the data objects of one working session: grid
// representations, coordinate reference systems, and the default array store
// their bulk payloads go to. Objects are identified by UUID and optionally
// looked up by title.
package repo

import (
	"fmt"
	"sort"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/google/uuid"
)

// DataObject is anything registered in a Repository.
type DataObject interface {
	UUID() uuid.UUID
	Title() string
	XMLTag() string
}

// Describer is implemented by data objects that can be written to a manifest.
// The returned value must be YAML encodable.
type Describer interface {
	Describe() (any, error)
}

// Repository indexes data objects by UUID and by title.
// It is not safe for concurrent mutation.
type Repository struct {
	objects      map[uuid.UUID]DataObject
	titleIndex   map[string]uuid.UUID
	order        []uuid.UUID
	defaultStore arraystore.Store
}

// New creates an empty repository. store becomes the default array store and
// may be nil.
func New(store arraystore.Store) *Repository {
	return &Repository{
		objects:      make(map[uuid.UUID]DataObject),
		titleIndex:   make(map[string]uuid.UUID),
		defaultStore: store,
	}
}

// DefaultStore returns the store used when a write names none, or nil.
func (r *Repository) DefaultStore() arraystore.Store {
	return r.defaultStore
}

// SetDefaultStore replaces the default array store.
func (r *Repository) SetDefaultStore(s arraystore.Store) {
	r.defaultStore = s
}

// Add registers an object. Adding a second object with the same UUID fails.
func (r *Repository) Add(obj DataObject) error {
	id := obj.UUID()
	if id == uuid.Nil {
		return fmt.Errorf("repo: %s %q has a nil UUID", obj.XMLTag(), obj.Title())
	}
	if _, exists := r.objects[id]; exists {
		return fmt.Errorf("repo: duplicate UUID %s", id)
	}
	r.objects[id] = obj
	r.order = append(r.order, id)
	if t := obj.Title(); t != "" {
		r.titleIndex[t] = id
	}
	return nil
}

// Get returns the object with the given UUID, or nil.
func (r *Repository) Get(id uuid.UUID) DataObject {
	return r.objects[id]
}

// Lookup returns the most recently added object with the given title, or nil.
func (r *Repository) Lookup(title string) DataObject {
	id, ok := r.titleIndex[title]
	if !ok {
		return nil
	}
	return r.objects[id]
}

// Objects returns all objects in insertion order.
func (r *Repository) Objects() []DataObject {
	out := make([]DataObject, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.objects[id])
	}
	return out
}

// ByTag returns the objects with the given tag in insertion order.
func (r *Repository) ByTag(tag string) []DataObject {
	var out []DataObject
	for _, id := range r.order {
		if o := r.objects[id]; o.XMLTag() == tag {
			out = append(out, o)
		}
	}
	return out
}

// Titles returns all registered titles, sorted.
func (r *Repository) Titles() []string {
	titles := make([]string, 0, len(r.titleIndex))
	for t := range r.titleIndex {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Len returns the number of registered objects.
func (r *Repository) Len() int {
	return len(r.objects)
}
