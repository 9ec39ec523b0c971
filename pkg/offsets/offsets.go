// Package offsets converts between per-element count sequences and their
// cumulative (inclusive prefix sum) form. Both directions work in place on a
// caller-owned buffer and never allocate.
//
// The cumulative form used throughout ugrid is inclusive: entry i holds the
// total count of elements 0..i, so entry 0 already equals the count of
// element 0 and there is no leading zero.
package offsets

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmpty indicates a conversion was requested on an empty buffer.
	ErrEmpty = errors.New("offsets: buffer must hold at least one element")

	// ErrNotMonotonic indicates a cumulative buffer decreases somewhere.
	ErrNotMonotonic = errors.New("offsets: cumulative counts must be non-decreasing")

	// ErrOverflow indicates a prefix sum does not fit in a uint64.
	ErrOverflow = errors.New("offsets: cumulative count overflows uint64")
)

// ToCumulative replaces buf[i] with the sum of buf[0..i] inclusive.
// On overflow the buffer is left unchanged.
func ToCumulative(buf []uint64) error {
	if len(buf) == 0 {
		return ErrEmpty
	}
	var sum uint64
	for _, v := range buf {
		if v > math.MaxUint64-sum {
			return ErrOverflow
		}
		sum += v
	}
	for i := 1; i < len(buf); i++ {
		buf[i] += buf[i-1]
	}
	return nil
}

// ToPerElement is the inverse of ToCumulative: for i from len(buf)-1 down to
// 1, buf[i] -= buf[i-1]. buf[0] is unchanged. A buffer that is not
// non-decreasing is rejected with ErrNotMonotonic and left untouched.
func ToPerElement(buf []uint64) error {
	if len(buf) == 0 {
		return ErrEmpty
	}
	if err := Validate(buf); err != nil {
		return err
	}
	for i := len(buf) - 1; i > 0; i-- {
		buf[i] -= buf[i-1]
	}
	return nil
}

// Validate reports whether cumulative is non-decreasing.
func Validate(cumulative []uint64) error {
	for i := 1; i < len(cumulative); i++ {
		if cumulative[i] < cumulative[i-1] {
			return fmt.Errorf("%w: entry %d (%d) is below entry %d (%d)",
				ErrNotMonotonic, i, cumulative[i], i-1, cumulative[i-1])
		}
	}
	return nil
}

// Last returns the total slot count described by a cumulative buffer, or 0
// for an empty one.
func Last(cumulative []uint64) uint64 {
	if len(cumulative) == 0 {
		return 0
	}
	return cumulative[len(cumulative)-1]
}

// Segment returns the half-open [start, end) slot range of element i.
// The caller guarantees i < len(cumulative).
func Segment(cumulative []uint64, i int) (start, end uint64) {
	if i == 0 {
		return 0, cumulative[0]
	}
	return cumulative[i-1], cumulative[i]
}
