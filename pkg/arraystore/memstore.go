package arraystore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

type memDataset struct {
	info Dataset
	u8   []uint8
	u64  []uint64
	f64  []float64
}

// MemStore is an in-memory Store. It is safe for concurrent use and records
// the order in which datasets were created.
type MemStore struct {
	mu       sync.RWMutex
	datasets map[string]*memDataset
	order    []string
	closed   bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{datasets: make(map[string]*memDataset)}
}

// CreationOrder returns dataset paths in the order they were written.
func (m *MemStore) CreationOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Paths returns all dataset paths, sorted.
func (m *MemStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.datasets))
	for p := range m.datasets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Truncate drops the trailing elements of a stored dataset so tests can
// simulate corrupt payloads. The shape is collapsed to one dimension.
func (m *MemStore) Truncate(p string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[p]
	if !ok {
		return ioErr("truncate", p, ErrNotFound)
	}
	switch ds.info.Type {
	case Uint8:
		ds.u8 = ds.u8[:n]
	case Uint64:
		ds.u64 = ds.u64[:n]
	case Float64:
		ds.f64 = ds.f64[:n]
	}
	ds.info.Shape = []uint64{uint64(n)}
	return nil
}

// Delete removes a dataset. A missing dataset is not an error.
func (m *MemStore) Delete(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ioErr("delete", p, ErrClosed)
	}
	delete(m.datasets, p)
	for i, q := range m.order {
		if q == p {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemStore) put(p string, ds *memDataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ioErr("write", p, ErrClosed)
	}
	if _, ok := m.datasets[p]; ok {
		return ioErr("write", p, ErrExists)
	}
	m.datasets[p] = ds
	m.order = append(m.order, p)
	return nil
}

func (m *MemStore) get(p string, want ElementType) (*memDataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ioErr("read", p, ErrClosed)
	}
	ds, ok := m.datasets[p]
	if !ok {
		return nil, ioErr("read", p, ErrNotFound)
	}
	if want != 0 && ds.info.Type != want {
		return nil, ioErr("read", p, fmt.Errorf("%w: stored %s, requested %s", ErrTypeMismatch, ds.info.Type, want))
	}
	return ds, nil
}

func (m *MemStore) WriteUint8(ctx context.Context, p string, data []uint8, shape ...uint64) error {
	s, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	return m.put(p, &memDataset{
		info: Dataset{Path: p, Type: Uint8, Shape: s},
		u8:   append([]uint8(nil), data...),
	})
}

func (m *MemStore) WriteUint64(ctx context.Context, p string, data []uint64, shape ...uint64) error {
	s, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	return m.put(p, &memDataset{
		info: Dataset{Path: p, Type: Uint64, Shape: s},
		u64:  append([]uint64(nil), data...),
	})
}

func (m *MemStore) WriteFloat64(ctx context.Context, p string, data []float64, shape ...uint64) error {
	s, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	return m.put(p, &memDataset{
		info: Dataset{Path: p, Type: Float64, Shape: s},
		f64:  append([]float64(nil), data...),
	})
}

func (m *MemStore) ReadUint8(ctx context.Context, p string, dst []uint8) error {
	ds, err := m.get(p, Uint8)
	if err != nil {
		return err
	}
	return copyExact(p, dst, ds.u8)
}

func (m *MemStore) ReadUint64(ctx context.Context, p string, dst []uint64) error {
	ds, err := m.get(p, Uint64)
	if err != nil {
		return err
	}
	return copyExact(p, dst, ds.u64)
}

func (m *MemStore) ReadFloat64(ctx context.Context, p string, dst []float64) error {
	ds, err := m.get(p, Float64)
	if err != nil {
		return err
	}
	return copyExact(p, dst, ds.f64)
}

func (m *MemStore) Describe(ctx context.Context, p string) (Dataset, error) {
	ds, err := m.get(p, 0)
	if err != nil {
		return Dataset{}, err
	}
	info := ds.info
	info.Shape = append([]uint64(nil), info.Shape...)
	return info, nil
}

func (m *MemStore) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ioErr("exists", p, ErrClosed)
	}
	_, ok := m.datasets[p]
	return ok, nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func copyExact[T any](p string, dst, src []T) error {
	if len(dst) != len(src) {
		return ioErr("read", p, fmt.Errorf("%w: destination holds %d, dataset holds %d",
			ErrLengthMismatch, len(dst), len(src)))
	}
	copy(dst, src)
	return nil
}
