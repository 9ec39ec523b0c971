package arraystore

import (
	"errors"
	"fmt"
)

// ErrStoreIO is matched by every failure a Store reports. Callers that only
// care whether persistence failed test errors.Is(err, ErrStoreIO).
var ErrStoreIO = errors.New("array store I/O failure")

// Causes carried inside an IOError.
var (
	// ErrNotFound indicates that no dataset exists at the requested path.
	ErrNotFound = errors.New("dataset not found")

	// ErrExists indicates a write targeted a path that already holds a dataset.
	ErrExists = errors.New("dataset already exists")

	// ErrTypeMismatch indicates a read with an element type other than the stored one.
	ErrTypeMismatch = errors.New("element type mismatch")

	// ErrShapeMismatch indicates a shape whose product disagrees with the data length.
	ErrShapeMismatch = errors.New("shape does not match data length")

	// ErrLengthMismatch indicates a destination buffer of the wrong length.
	ErrLengthMismatch = errors.New("destination length does not match dataset")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// IOError records the operation and dataset path of a store failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("arraystore: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("arraystore: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes every IOError match ErrStoreIO.
func (e *IOError) Is(target error) bool { return target == ErrStoreIO }

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
