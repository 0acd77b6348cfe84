// Package entkv implements the storage.Driver key-value contract on top of
// ent's dialect-aware SQL builders. It is database-agnostic and is embedded by
// the sqlite and postgres drivers.
package entkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/verso/pkg/storage"
)

const (
	// Table is the name of the table holding every slot.
	Table = "kv_slots"

	colKey       = "slot_key"
	colValue     = "value"
	colUpdatedAt = "updated_at"
)

// schema holds the table DDL per dialect.
var schema = map[string]string{
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key   TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key   TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

// EntDriver provides slot operations using an ent SQL driver.
type EntDriver struct {
	Driver *entsql.Driver

	// now is overridable in tests.
	now func() time.Time
}

// New wraps an ent SQL driver and creates the slot table if needed.
func New(ctx context.Context, drv *entsql.Driver) (*EntDriver, error) {
	if drv == nil {
		return nil, errors.New("ent driver is nil")
	}

	ddl, ok := schema[drv.Dialect()]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s", drv.Dialect())
	}

	if err := drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{
		Driver: drv,
		now:    time.Now,
	}, nil
}

// Get returns the value stored under key.
func (ed *EntDriver) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Select(colValue).
		From(entsql.Table(Table)).
		Where(entsql.EQ(colKey, key)).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to query slot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read slot: %w", err)
		}
		return nil, storage.NotFoundError{Key: key}
	}

	var value string
	if err := rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("failed to scan slot: %w", err)
	}

	return []byte(value), nil
}

// Set upserts the value stored under key in a single statement.
func (ed *EntDriver) Set(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Insert(Table).
		Columns(colKey, colValue, colUpdatedAt).
		Values(key, string(value), ed.now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns(colKey),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("could not write slot %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (ed *EntDriver) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Delete(Table).
		Where(entsql.EQ(colKey, key)).
		Query()

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("could not delete slot %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}
