// Package arraystore persists typed, shaped numeric arrays under hierarchical
// path keys such as "/RESQML/<uuid>/FacesPerCell/elements".
//
// Two backends are provided: MemStore keeps datasets in memory and records
// their creation order, and SQLiteStore keeps them in a single SQLite file
// with CBOR-encoded payloads.
package arraystore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ElementType enumerates the element types a dataset can hold.
type ElementType int

const (
	Uint8   ElementType = iota + 1 // orientation flags
	Uint64                         // indices and counts
	Float64                        // coordinates
)

func (t ElementType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Uint64:
		return "uint64"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// Dataset names used for itemized lists of lists.
const (
	ElementsName         = "elements"
	CumulativeLengthName = "cumulativeLength"
)

// Dataset describes a stored array without its payload.
type Dataset struct {
	Path  string
	Type  ElementType
	Shape []uint64
}

// Len returns the number of elements, the product of Shape.
func (d Dataset) Len() uint64 {
	return shapeLen(d.Shape)
}

// Store is a key-addressed binary array service.
//
// Writes fail with ErrExists when the path is taken. Reads copy into a
// caller-owned destination whose length must equal the dataset length. The
// shape arguments of writes default to one dimension of len(data).
type Store interface {
	WriteUint8(ctx context.Context, path string, data []uint8, shape ...uint64) error
	WriteUint64(ctx context.Context, path string, data []uint64, shape ...uint64) error
	WriteFloat64(ctx context.Context, path string, data []float64, shape ...uint64) error

	ReadUint8(ctx context.Context, path string, dst []uint8) error
	ReadUint64(ctx context.Context, path string, dst []uint64) error
	ReadFloat64(ctx context.Context, path string, dst []float64) error

	// Describe returns the element type and shape stored at path.
	Describe(ctx context.Context, path string) (Dataset, error)

	// Exists reports whether a dataset is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the dataset at path. Deleting a missing dataset
	// succeeds.
	Delete(ctx context.Context, path string) error

	Close() error
}

// WriteItemizedListOfList writes a list of variable-length lists as two
// sibling datasets under group/name: the cumulative lengths first, then the
// flattened elements. If the elements cannot be written the cumulative
// lengths are removed again.
func WriteItemizedListOfList(ctx context.Context, s Store, group, name string, cumulative, elements []uint64) error {
	base := Join(group, name)
	cum := Join(base, CumulativeLengthName)
	if err := s.WriteUint64(ctx, cum, cumulative); err != nil {
		return err
	}
	if err := s.WriteUint64(ctx, Join(base, ElementsName), elements); err != nil {
		if derr := s.Delete(context.WithoutCancel(ctx), cum); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}

// ReadUint64Dataset allocates a buffer sized to the dataset at path and
// reads it.
func ReadUint64Dataset(ctx context.Context, s Store, p string) ([]uint64, error) {
	ds, err := s.Describe(ctx, p)
	if err != nil {
		return nil, err
	}
	if ds.Type != Uint64 {
		return nil, ioErr("read", p, fmt.Errorf("%w: stored %s, requested %s", ErrTypeMismatch, ds.Type, Uint64))
	}
	buf := make([]uint64, ds.Len())
	if err := s.ReadUint64(ctx, p, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Join joins path elements with "/" and cleans the result. The result is
// always absolute.
func Join(elem ...string) string {
	p := path.Join(elem...)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func shapeLen(shape []uint64) uint64 {
	if len(shape) == 0 {
		return 0
	}
	n := uint64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// normalizeShape defaults an empty shape to one dimension and checks that
// the shape product equals n.
func normalizeShape(op, p string, n int, shape []uint64) ([]uint64, error) {
	if len(shape) == 0 {
		return []uint64{uint64(n)}, nil
	}
	if shapeLen(shape) != uint64(n) {
		return nil, ioErr(op, p, fmt.Errorf("%w: shape %v holds %d elements, data has %d",
			ErrShapeMismatch, shape, shapeLen(shape), n))
	}
	return append([]uint64(nil), shape...), nil
}
