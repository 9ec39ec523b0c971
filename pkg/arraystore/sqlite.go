package arraystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	path    TEXT PRIMARY KEY,
	dtype   INTEGER NOT NULL,
	shape   BLOB NOT NULL,
	payload BLOB NOT NULL
);`

// SQLiteStore keeps datasets as rows of a single SQLite table. Shapes and
// payloads are CBOR encoded.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *zap.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// OpenSQLite opens (creating if needed) the SQLite database at path. The
// special path ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, ioErr("open", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	// One connection: an in-memory database is private to its connection,
	// and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		s.logger.Debug("failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, ioErr("open", path, fmt.Errorf("create schema: %w", err))
	}

	s.db = db
	s.logger.Debug("opened sqlite array store", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) checkOpen(op, p string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ioErr(op, p, ErrClosed)
	}
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, p string, t ElementType, shape []uint64, payload any) error {
	if err := s.checkOpen("write", p); err != nil {
		return err
	}
	shapeBlob, err := cbor.Marshal(shape)
	if err != nil {
		return ioErr("write", p, fmt.Errorf("encode shape: %w", err))
	}
	payloadBlob, err := cbor.Marshal(payload)
	if err != nil {
		return ioErr("write", p, fmt.Errorf("encode payload: %w", err))
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets (path, dtype, shape, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO NOTHING`,
		p, int(t), shapeBlob, payloadBlob)
	if err != nil {
		return ioErr("write", p, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("write", p, err)
	}
	if n == 0 {
		return ioErr("write", p, ErrExists)
	}

	s.logger.Debug("wrote dataset",
		zap.String("path", p),
		zap.Stringer("type", t),
		zap.Uint64s("shape", shape),
		zap.Int("bytes", len(payloadBlob)))
	return nil
}

// row loads the raw row for p.
func (s *SQLiteStore) row(ctx context.Context, p string) (ElementType, []uint64, []byte, error) {
	if err := s.checkOpen("read", p); err != nil {
		return 0, nil, nil, err
	}
	var (
		dtype     int
		shapeBlob []byte
		payload   []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT dtype, shape, payload FROM datasets WHERE path = ?`, p).
		Scan(&dtype, &shapeBlob, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, nil, ioErr("read", p, ErrNotFound)
	}
	if err != nil {
		return 0, nil, nil, ioErr("read", p, err)
	}
	var shape []uint64
	if err := cbor.Unmarshal(shapeBlob, &shape); err != nil {
		return 0, nil, nil, ioErr("read", p, fmt.Errorf("decode shape: %w", err))
	}
	return ElementType(dtype), shape, payload, nil
}

func readInto[T any](ctx context.Context, s *SQLiteStore, p string, want ElementType, dst []T) error {
	t, shape, payload, err := s.row(ctx, p)
	if err != nil {
		return err
	}
	if t != want {
		return ioErr("read", p, fmt.Errorf("%w: stored %s, requested %s", ErrTypeMismatch, t, want))
	}
	var data []T
	if err := cbor.Unmarshal(payload, &data); err != nil {
		return ioErr("read", p, fmt.Errorf("decode payload: %w", err))
	}
	if uint64(len(data)) != shapeLen(shape) {
		return ioErr("read", p, fmt.Errorf("%w: payload holds %d, shape %v", ErrShapeMismatch, len(data), shape))
	}
	return copyExact(p, dst, data)
}

func (s *SQLiteStore) WriteUint8(ctx context.Context, p string, data []uint8, shape ...uint64) error {
	sh, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	if data == nil {
		data = []uint8{}
	}
	return s.insert(ctx, p, Uint8, sh, data)
}

func (s *SQLiteStore) WriteUint64(ctx context.Context, p string, data []uint64, shape ...uint64) error {
	sh, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	if data == nil {
		data = []uint64{}
	}
	return s.insert(ctx, p, Uint64, sh, data)
}

func (s *SQLiteStore) WriteFloat64(ctx context.Context, p string, data []float64, shape ...uint64) error {
	sh, err := normalizeShape("write", p, len(data), shape)
	if err != nil {
		return err
	}
	if data == nil {
		data = []float64{}
	}
	return s.insert(ctx, p, Float64, sh, data)
}

func (s *SQLiteStore) ReadUint8(ctx context.Context, p string, dst []uint8) error {
	return readInto(ctx, s, p, Uint8, dst)
}

func (s *SQLiteStore) ReadUint64(ctx context.Context, p string, dst []uint64) error {
	return readInto(ctx, s, p, Uint64, dst)
}

func (s *SQLiteStore) ReadFloat64(ctx context.Context, p string, dst []float64) error {
	return readInto(ctx, s, p, Float64, dst)
}

func (s *SQLiteStore) Describe(ctx context.Context, p string) (Dataset, error) {
	if err := s.checkOpen("describe", p); err != nil {
		return Dataset{}, err
	}
	var (
		dtype     int
		shapeBlob []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT dtype, shape FROM datasets WHERE path = ?`, p).Scan(&dtype, &shapeBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return Dataset{}, ioErr("describe", p, ErrNotFound)
	}
	if err != nil {
		return Dataset{}, ioErr("describe", p, err)
	}
	var shape []uint64
	if err := cbor.Unmarshal(shapeBlob, &shape); err != nil {
		return Dataset{}, ioErr("describe", p, fmt.Errorf("decode shape: %w", err))
	}
	return Dataset{Path: p, Type: ElementType(dtype), Shape: shape}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, p string) (bool, error) {
	if err := s.checkOpen("exists", p); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM datasets WHERE path = ?`, p).Scan(&n)
	if err != nil {
		return false, ioErr("exists", p, err)
	}
	return n > 0, nil
}

// Delete removes the dataset at p. A missing dataset is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, p string) error {
	if err := s.checkOpen("delete", p); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE path = ?`, p); err != nil {
		return ioErr("delete", p, err)
	}
	s.logger.Debug("deleted dataset", zap.String("path", p))
	return nil
}

// Paths returns all stored dataset paths in creation order.
func (s *SQLiteStore) Paths(ctx context.Context) ([]string, error) {
	if err := s.checkOpen("list", ""); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM datasets ORDER BY rowid`)
	if err != nil {
		return nil, ioErr("list", "", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, ioErr("list", "", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list", "", err)
	}
	return paths, nil
}

// Close closes the underlying database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return ioErr("close", s.path, err)
	}
	return nil
}
