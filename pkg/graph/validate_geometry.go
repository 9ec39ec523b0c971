package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePositiveDimensions(g)...)
	errs = append(errs, validateTransforms(g)...)
	errs = append(errs, validateBooleanArity(g)...)
	gridErrs, gridWarnings := validateCellSizes(g)
	errs = append(errs, gridErrs...)
	warnings = append(warnings, gridWarnings...)

	return errs, warnings
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// validatePositiveDimensions checks that every primitive has positive,
// finite dimensions for its kind.
func validatePositiveDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, what string, v float64) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf("%s %s is %.4f, must be positive", n.Data.(PrimitiveData).Kind, what, v),
			Severity: SeverityError,
		})
	}
	for _, node := range g.Nodes {
		pd, ok := node.Data.(PrimitiveData)
		if !ok {
			continue
		}
		switch pd.Kind {
		case PrimBox:
			if !positive(pd.Size.X) {
				bad(node, "size X", pd.Size.X)
			}
			if !positive(pd.Size.Y) {
				bad(node, "size Y", pd.Size.Y)
			}
			if !positive(pd.Size.Z) {
				bad(node, "size Z", pd.Size.Z)
			}
		case PrimCylinder:
			if !positive(pd.Radius) {
				bad(node, "radius", pd.Radius)
			}
			if !positive(pd.Height) {
				bad(node, "height", pd.Height)
			}
		case PrimSphere:
			if !positive(pd.Radius) {
				bad(node, "radius", pd.Radius)
			}
		}
	}
	return errs
}

// validateTransforms rejects NaN or infinite translations and rotations.
func validateTransforms(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		if (td.Translation != nil && !td.Translation.IsFinite()) || (td.Rotation != nil && !td.Rotation.IsFinite()) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "transform has a non-finite component",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateBooleanArity checks that booleans combine at least two solids.
func validateBooleanArity(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		bd, ok := node.Data.(BooleanData)
		if !ok {
			continue
		}
		if len(node.Children) < 2 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s needs at least two solids, has %d", bd.Op, len(node.Children)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateCellSizes checks grid request cell sizes and warns when a cell is
// coarser than the thinnest primitive under the request, which can leave
// that primitive without any cell.
func validateCellSizes(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		gd, ok := node.Data.(GridData)
		if !ok {
			continue
		}
		if !positive(gd.CellSize) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("grid request %q cell size is %.4f, must be positive", node.Label(), gd.CellSize),
				Severity: SeverityError,
			})
			continue
		}
		if thin := thinnestPrimitive(g, node); thin > 0 && gd.CellSize > thin {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("cell size %.4f exceeds the thinnest primitive dimension %.4f", gd.CellSize, thin),
			})
		}
	}
	return errs, warnings
}

// thinnestPrimitive returns the smallest primitive dimension under n, or 0.
func thinnestPrimitive(g *SceneGraph, n *Node) float64 {
	thin := 0.0
	g.Walk(n, func(c *Node) bool {
		pd, ok := c.Data.(PrimitiveData)
		if !ok {
			return true
		}
		var t float64
		switch pd.Kind {
		case PrimBox:
			t = min(pd.Size.X, pd.Size.Y, pd.Size.Z)
		case PrimCylinder:
			t = min(2*pd.Radius, pd.Height)
		case PrimSphere:
			t = 2 * pd.Radius
		}
		if t > 0 && (thin == 0 || t < thin) {
			thin = t
		}
		return true
	})
	return thin
}
