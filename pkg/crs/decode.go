package crs

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/ugrid/pkg/repo"
)

// Decode rebuilds a Local3D from a manifest entry. The entry's UUID and
// title fill in what the body leaves out.
func Decode(r *repo.Repository, e repo.Entry) (repo.DataObject, error) {
	c := &Local3D{}
	if !e.Body.IsZero() {
		if err := e.Body.Decode(c); err != nil {
			return nil, err
		}
	}
	if c.ID == uuid.Nil {
		id, err := uuid.Parse(e.UUID)
		if err != nil {
			return nil, fmt.Errorf("crs %q: bad uuid: %w", e.Title, err)
		}
		c.ID = id
	}
	if c.Name == "" {
		c.Name = e.Title
	}
	return c, nil
}
