package grid

// Layout describes how a flat slot array is segmented per element: either
// every element has the same count (ConstantLayout) or segment boundaries
// come from an inclusive cumulative count array (CumulativeLayout).
//
// Callers guarantee element indices are in range.
type Layout interface {
	// Count returns the number of slots of element i.
	Count(i uint64) uint64
	// Start returns the first slot of element i.
	Start(i uint64) uint64
	// Total returns the number of slots used by the first n elements.
	Total(n uint64) uint64

	layout() // restricts implementations to this package
}

// ConstantLayout gives every element the same number of slots.
type ConstantLayout uint64

func (c ConstantLayout) Count(uint64) uint64   { return uint64(c) }
func (c ConstantLayout) Start(i uint64) uint64 { return uint64(c) * i }
func (c ConstantLayout) Total(n uint64) uint64 { return uint64(c) * n }
func (ConstantLayout) layout()                 {}

// CumulativeLayout segments slots by inclusive cumulative counts: entry i is
// the number of slots used by elements 0..i.
type CumulativeLayout []uint64

func (c CumulativeLayout) Count(i uint64) uint64 {
	if i == 0 {
		return c[0]
	}
	return c[i] - c[i-1]
}

func (c CumulativeLayout) Start(i uint64) uint64 {
	if i == 0 {
		return 0
	}
	return c[i-1]
}

func (c CumulativeLayout) Total(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return c[n-1]
}

func (CumulativeLayout) layout() {}
