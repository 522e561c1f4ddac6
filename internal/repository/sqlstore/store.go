// Package sqlstore implements the repository contracts over database/sql for every entity,
// rendering list plans through the query package's dialects.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
	"github.com/maxviazov/member-crm/internal/repository"
)

// Table maps an entity onto its table. Columns lists the data columns after the Base ones;
// Values and Targets return arguments and scan destinations in the same order.
type Table[T any] struct {
	model.Descriptor[T]
	Columns []string
	Values  func(*T) []any
	Targets func(*T) []any
}

var baseColumns = []string{"id", "row_version", "created_at", "updated_at"}

// Store is a Repository[T] for one table.
type Store[T any] struct {
	db      *sql.DB
	dialect query.Dialect
	table   Table[T]
	now     func() time.Time
	columns string
}

func New[T any](db *sql.DB, dialect query.Dialect, table Table[T]) *Store[T] {
	return &Store[T]{
		db:      db,
		dialect: dialect,
		table:   table,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		columns: strings.Join(append(append([]string{}, baseColumns...), table.Columns...), ", "),
	}
}

func (s *Store[T]) scan(row interface{ Scan(...any) error }) (T, error) {
	var out T
	b := s.table.Base(&out)
	dest := append([]any{&b.ID, &b.RowVersion, &b.CreatedAt, &b.UpdatedAt}, s.table.Targets(&out)...)
	if err := row.Scan(dest...); err != nil {
		var zero T
		return zero, repository.MapError(err)
	}
	b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
	return out, nil
}

func (s *Store[T]) placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = s.dialect.Placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

func (s *Store[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	if err := ensureDB(s.db); err != nil {
		return zero, err
	}
	now := s.now()
	cols := append([]string{"row_version", "created_at", "updated_at"}, s.table.Columns...)
	args := append([]any{int64(1), now, now}, s.table.Values(&v)...)
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.table.Name, strings.Join(cols, ", "), s.placeholders(1, len(args)))

	exec := getQ(ctx, s.db)
	var id int64
	if err := exec.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		return zero, repository.MapError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	if err := ensureDB(s.db); err != nil {
		var zero T
		return zero, err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", s.columns, s.table.Name, s.dialect.Placeholder(1))
	return s.scan(getQ(ctx, s.db).QueryRowContext(ctx, stmt, id))
}

// Update writes every data column when the stored row version still matches v's.
func (s *Store[T]) Update(ctx context.Context, v T) (T, error) {
	var zero T
	if err := ensureDB(s.db); err != nil {
		return zero, err
	}
	b := s.table.Base(&v)
	sets := make([]string, 0, len(s.table.Columns)+2)
	for i, c := range s.table.Columns {
		sets = append(sets, c+" = "+s.dialect.Placeholder(i+1))
	}
	n := len(s.table.Columns)
	sets = append(sets, "updated_at = "+s.dialect.Placeholder(n+1), "row_version = row_version + 1")
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s AND row_version = %s",
		s.table.Name, strings.Join(sets, ", "), s.dialect.Placeholder(n+2), s.dialect.Placeholder(n+3))
	args := append(s.table.Values(&v), s.now(), b.ID, b.RowVersion)

	exec := getQ(ctx, s.db)
	res, err := exec.ExecContext(ctx, stmt, args...)
	if err != nil {
		return zero, repository.MapError(err)
	}
	if err := s.checkAffected(ctx, res, b.ID); err != nil {
		return zero, err
	}
	return s.GetByID(ctx, b.ID)
}

func (s *Store[T]) Delete(ctx context.Context, id, version int64) error {
	if err := ensureDB(s.db); err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.table.Name, s.dialect.Placeholder(1))
	args := []any{id}
	if version > 0 {
		stmt += " AND row_version = " + s.dialect.Placeholder(2)
		args = append(args, version)
	}
	res, err := getQ(ctx, s.db).ExecContext(ctx, stmt, args...)
	if err != nil {
		return repository.MapError(err)
	}
	return s.checkAffected(ctx, res, id)
}

// checkAffected tells a vanished row (ErrNotFound) from a stale version (ErrConflict).
func (s *Store[T]) checkAffected(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return repository.MapError(err)
	}
	if n > 0 {
		return nil
	}
	var one int
	stmt := fmt.Sprintf("SELECT 1 FROM %s WHERE id = %s", s.table.Name, s.dialect.Placeholder(1))
	err = getQ(ctx, s.db).QueryRowContext(ctx, stmt, id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case err != nil:
		return repository.MapError(err)
	}
	return repository.ErrConflict
}

func (s *Store[T]) where(p query.Plan) (string, []any, error) {
	cond, args, err := query.RenderWhere(s.dialect, s.table.Schema, p.Where, 1)
	if err != nil || cond == "" {
		return "", args, err
	}
	return " WHERE " + cond, args, nil
}

func (s *Store[T]) Count(ctx context.Context, p query.Plan) (int, error) {
	if err := ensureDB(s.db); err != nil {
		return 0, err
	}
	where, args, err := s.where(p)
	if err != nil {
		return 0, err
	}
	var n int
	stmt := "SELECT COUNT(*) FROM " + s.table.Name + where
	if err := getQ(ctx, s.db).QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, repository.MapError(err)
	}
	return n, nil
}

// Fetch returns one window of the plan's rows. id breaks ties so windows never overlap.
func (s *Store[T]) Fetch(ctx context.Context, p query.Plan, offset, limit int) ([]T, error) {
	if err := ensureDB(s.db); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("fetch %s: limit must be positive, got %d", s.table.Name, limit)
	}
	if offset < 0 {
		offset = 0
	}
	where, args, err := s.where(p)
	if err != nil {
		return nil, err
	}
	order, err := query.RenderOrder(s.dialect, s.table.Schema, p.Order, "id")
	if err != nil {
		return nil, err
	}
	n := len(args)
	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %s OFFSET %s",
		s.columns, s.table.Name, where, order, s.dialect.Placeholder(n+1), s.dialect.Placeholder(n+2))
	args = append(args, limit, offset)

	rows, err := getQ(ctx, s.db).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, repository.MapError(err)
	}
	defer rows.Close()

	out := make([]T, 0, limit)
	for rows.Next() {
		v, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapError(err)
	}
	return out, nil
}

var _ repository.Repository[model.Member] = (*Store[model.Member])(nil)
