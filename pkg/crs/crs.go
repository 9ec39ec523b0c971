// Package crs defines the local 3D coordinate reference system data object
// that grid geometry is expressed in. The grid core never interprets it; it
// only records which CRS its points refer to.
package crs

import (
	"fmt"

	"github.com/google/uuid"
)

// XMLTag is the data-object tag of a local depth 3D CRS.
const XMLTag = "LocalDepth3dCrs"

// Local3D is a local engineering CRS placed in a projected CRS by an origin
// and an areal rotation.
type Local3D struct {
	ID                  uuid.UUID `yaml:"uuid"`
	Name                string    `yaml:"title"`
	OriginX             float64   `yaml:"origin_x"`
	OriginY             float64   `yaml:"origin_y"`
	OriginDepth         float64   `yaml:"origin_depth"`
	ArealRotation       float64   `yaml:"areal_rotation"` // radians
	ProjectedUnit       string    `yaml:"projected_unit"`
	VerticalUnit        string    `yaml:"vertical_unit"`
	ZIncreasingDownward bool      `yaml:"z_increasing_downward"`
}

// New returns a CRS with a fresh UUID, metre units and no offset.
func New(title string) *Local3D {
	return &Local3D{
		ID:            uuid.New(),
		Name:          title,
		ProjectedUnit: "m",
		VerticalUnit:  "m",
	}
}

func (c *Local3D) UUID() uuid.UUID { return c.ID }
func (c *Local3D) Title() string   { return c.Name }
func (c *Local3D) XMLTag() string  { return XMLTag }

// Describe returns the manifest body for this CRS.
func (c *Local3D) Describe() (any, error) { return c, nil }

func (c *Local3D) String() string {
	return fmt.Sprintf("%s %q (%s)", XMLTag, c.Name, c.ID)
}
