// Package modelcache persists built model documents in SQLite so a language
// server restart does not re-read and merge the model directory.
package modelcache

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// PayloadVersion is bumped when the encoded APIDocument layout changes.
// Rows written with another version are treated as misses.
const PayloadVersion = 1

// Cache is a SQLite-backed model document cache.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database at path and migrates it.
// Use ":memory:" for an in-memory cache.
func Open(path string) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and the
	// file cache sees only light traffic.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db, path: path}, nil
}

// NewWithDB wraps an already migrated database.
func NewWithDB(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached document for key.
func (c *Cache) Get(ctx context.Context, key model.Key) (*model.APIDocument, bool, error) {
	var (
		schema  int
		payload []byte
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT schema_version, payload FROM model_cache WHERE framework = ? AND version = ?`,
		key.Framework, key.Version,
	).Scan(&schema, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached model %s: %w", key, err)
	}
	if schema != PayloadVersion {
		return nil, false, nil
	}

	var doc model.APIDocument
	if err := msgpack.NewDecoder(bytes.NewReader(payload)).Decode(&doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached model %s: %w", key, err)
	}
	return &doc, true, nil
}

// Put stores doc, replacing any earlier entry for the same key.
func (c *Cache) Put(ctx context.Context, doc *model.APIDocument) error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO model_cache (id, framework, version, schema_version, payload, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (framework, version) DO UPDATE SET
		   id = excluded.id,
		   schema_version = excluded.schema_version,
		   payload = excluded.payload,
		   size_bytes = excluded.size_bytes,
		   created_at = excluded.created_at`,
		uuid.New().String(), doc.Framework, doc.Version, PayloadVersion,
		buf.Bytes(), buf.Len(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store model %s@%s: %w", doc.Framework, doc.Version, err)
	}
	return nil
}

// Entry describes one cached model.
type Entry struct {
	ID        string
	Key       model.Key
	SizeBytes int64
	CreatedAt time.Time
}

// List returns all cached entries ordered by framework and version.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, framework, version, size_bytes, created_at FROM model_cache ORDER BY framework, version`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Key.Framework, &e.Key.Version, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached model: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge removes every cached model and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM model_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge model cache: %w", err)
	}
	return res.RowsAffected()
}
