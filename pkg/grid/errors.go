package grid

import (
	"errors"
	"fmt"
)

// Argument errors
var (
	// ErrInvalidArgument indicates a missing buffer or store, or inconsistent input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates a patch, cell, face or local face index beyond its count.
	ErrOutOfRange = errors.New("index out of range")
)

// State errors
var (
	// ErrInvalidState indicates an operation that needs loaded geometry ran while unloaded.
	ErrInvalidState = errors.New("geometry must be loaded first")

	// ErrLogic indicates an operation that does not apply to the grid as described,
	// such as asking for cumulative counts of a constant-shape dimension.
	ErrLogic = errors.New("logic error")

	// ErrStaleView indicates an IndexView was used after the geometry it points
	// into was unloaded or reloaded.
	ErrStaleView = errors.New("view invalidated by a later load or unload")
)

var (
	errConstantFaces  = fmt.Errorf("%w: face count per cell is constant, there are no cumulative counts", ErrLogic)
	errConstantNodes  = fmt.Errorf("%w: node count per face is constant, there are no cumulative counts", ErrLogic)
	errVariableFaces  = fmt.Errorf("%w: face count per cell is not constant", ErrLogic)
	errVariableNodes  = fmt.Errorf("%w: node count per face is not constant", ErrLogic)
	errNotLoadedLogic = fmt.Errorf("%w: %w", ErrLogic, ErrInvalidState)
	errNoGeometry     = fmt.Errorf("%w: no geometry has been set", ErrInvalidState)
)

func missing(field string) error {
	return fmt.Errorf("%w: %s must be provided", ErrInvalidArgument, field)
}
