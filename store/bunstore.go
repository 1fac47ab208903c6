package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Interface assertion to ensure BunStore implements UserStore
var _ UserStore = (*BunStore)(nil)

// BunStore implements RecordStore and UserStore over a SQL table using bun
// map models, so records keep their field-mapping shape end to end.
type BunStore struct {
	db    *bun.DB
	table string
}

// NewBunStore wraps a bun handle for one table.
func NewBunStore(db *bun.DB, table string) *BunStore {
	return &BunStore{db: db, table: table}
}

// OpenSQLite opens a SQLite-backed bun handle. Used for development and
// tests; the DSN follows the mattn/go-sqlite3 format.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// OpenPostgres opens a Postgres-backed bun handle via lib/pq.
func OpenPostgres(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// FindByID implements RecordStore.
func (s *BunStore) FindByID(ctx context.Context, id int64) (Record, error) {
	var m map[string]any
	err := s.db.NewSelect().
		Model(&m).
		Table(s.table).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Record(m), nil
}

// FindAll implements RecordStore. Filter fields are ANDed together; keys are
// applied in sorted order so generated SQL is deterministic.
func (s *BunStore) FindAll(ctx context.Context, filter map[string]any) ([]Record, error) {
	q := s.db.NewSelect().Table(s.table)
	for _, k := range sortedKeys(filter) {
		q = q.Where("? = ?", bun.Ident(k), filter[k])
	}

	var ms []map[string]any
	if err := q.Model(&ms).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	records := make([]Record, len(ms))
	for i, m := range ms {
		records[i] = Record(m)
	}
	return records, nil
}

// Insert implements RecordStore.
func (s *BunStore) Insert(ctx context.Context, data Record) (int64, error) {
	m := map[string]any(data)
	var id int64
	_, err := s.db.NewInsert().
		Model(&m).
		Table(s.table).
		Returning("id").
		Exec(ctx, &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update implements RecordStore.
func (s *BunStore) Update(ctx context.Context, id int64, data Record) (bool, error) {
	m := map[string]any(data)
	res, err := s.db.NewUpdate().
		Model(&m).
		Table(s.table).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res), nil
}

// Delete implements RecordStore.
func (s *BunStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.NewDelete().
		Table(s.table).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res), nil
}

// FindByEmailAndTenant implements UserStore.
func (s *BunStore) FindByEmailAndTenant(ctx context.Context, email string, tenantID int64) (Record, error) {
	var m map[string]any
	err := s.db.NewSelect().
		Model(&m).
		Table(s.table).
		Where("email = ?", email).
		Where("tenant_id = ?", tenantID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Record(m), nil
}

// EmailExists implements UserStore.
func (s *BunStore) EmailExists(ctx context.Context, email string, tenantID int64) (bool, error) {
	return s.db.NewSelect().
		Table(s.table).
		Where("email = ?", email).
		Where("tenant_id = ?", tenantID).
		Exists(ctx)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rowsAffected(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
