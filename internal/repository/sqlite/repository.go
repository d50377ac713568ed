package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"sticky-wall/internal/errors"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Options tunes how the database is opened
type Options struct {
	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration
	// Now stamps updated_at; defaults to time.Now.
	Now func() time.Time
}

// SQLiteRepository implements repository.Repository on a single slots table
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Repository = (*SQLiteRepository)(nil)

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens dbPath, applies pending migrations and returns the repository
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if opts.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds())
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.NewStorageError("set busy timeout", err)
		}
	}

	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SQLiteRepository{db: db, now: now}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Get retrieves a slot value by key
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	slot, err := r.GetSlot(ctx, key)
	if err != nil {
		return "", err
	}
	return slot.Value, nil
}

// GetSlot retrieves a slot with its metadata
func (r *SQLiteRepository) GetSlot(ctx context.Context, key string) (*Slot, error) {
	query := `SELECT key, value, updated_at FROM slots WHERE key = ?`
	return QuerySingle(ctx, r.db, query, ScanSlot, "slot", key, key)
}

// GetMany retrieves the values of every existing key
func (r *SQLiteRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `SELECT key, value, updated_at FROM slots WHERE key IN (` + placeholders + `)`
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	slots, err := QueryMultiple(ctx, r.db, query, ScanSlots, "slots", args...)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		out[s.Key] = s.Value
	}
	return out, nil
}

// ListSlots returns every stored slot ordered by key
func (r *SQLiteRepository) ListSlots(ctx context.Context) ([]*Slot, error) {
	query := `SELECT key, value, updated_at FROM slots ORDER BY key ASC`
	return QueryMultiple(ctx, r.db, query, ScanSlots, "slots")
}

const upsertSlot = `
	INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Set writes a single slot
func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertSlot, key, value, FormatTimeForDB(r.now())); err != nil {
		return HandleDatabaseError("set "+key, err)
	}
	return nil
}

// SetMany writes every slot in one transaction
func (r *SQLiteRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	stamp := FormatTimeForDB(r.now())

	return WithTx(ctx, r.db, "set slots", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertSlot)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, k := range keys {
			if _, err := stmt.ExecContext(ctx, k, values[k], stamp); err != nil {
				return fmt.Errorf("set %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes slots by key
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, "delete slots", func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
}
