package opsdata

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSnapshot indicates the snapshot table holds no rows yet.
var ErrNoSnapshot = errors.New("opsdata: no snapshot available")

// Source yields the raw dashboard payload. Implementations wrap whatever the
// reporting job writes to; the dashboard only reads.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads a JSON export from disk.
type FileSource struct {
	Path string
}

// Name identifies the source in cache keys and logs.
func (s FileSource) Name() string {
	return "file:" + s.Path
}

// Load reads the file contents.
func (s FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, errors.New("opsdata: file source path required")
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opsdata: read %s: %w", s.Path, err)
	}
	return raw, nil
}

// StaticSource serves a payload held in memory.
type StaticSource struct {
	Label   string
	Payload []byte
}

// Name identifies the source.
func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return "static:" + s.Label
}

// Load returns a copy of the payload.
func (s StaticSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(s.Payload))
	copy(out, s.Payload)
	return out, nil
}

const latestSnapshotQuery = `SELECT payload FROM dashboard_snapshots ORDER BY generated_at DESC LIMIT 1`

// RowQuerier is the subset of pgxpool.Pool used by PostgresSource.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ RowQuerier = (*pgxpool.Pool)(nil)

// PostgresSource reads the newest snapshot written by the reporting job.
type PostgresSource struct {
	db RowQuerier
}

// NewPostgresSource wires a pool or any compatible querier.
func NewPostgresSource(db RowQuerier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Name identifies the source.
func (s *PostgresSource) Name() string {
	return "postgres:dashboard_snapshots"
}

// Load fetches the latest payload.
func (s *PostgresSource) Load(ctx context.Context) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("opsdata: postgres source not configured")
	}
	var payload []byte
	if err := s.db.QueryRow(ctx, latestSnapshotQuery).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("opsdata: load snapshot: %w", err)
	}
	return payload, nil
}
