package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SimpleRow adapts a scan func to pgx.Row for handler tests.
type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type TestRowsBase struct{}

func (TestRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (TestRowsBase) Conn() *pgx.Conn { return nil }

func (TestRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (TestRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (TestRowsBase) RawValues() [][]byte { return nil }

// fakeRows serves pre-baked row tuples as pgx.Rows.
type fakeRows struct {
	TestRowsBase
	rows [][]any
	idx  int
}

func newFakeRows(rows [][]any) *fakeRows { return &fakeRows{rows: rows} }

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.idx-1])
}

func scanInto(dest []any, row []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("scan arity %d != %d", len(dest), len(row))
	}
	for i, val := range row {
		if err := assignValue(dest[i], val); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func assignValue(dest, val any) error {
	switch d := dest.(type) {
	case *string:
		if val == nil {
			*d = ""
			return nil
		}
		*d = val.(string)
	case *int:
		*d = val.(int)
	case *int64:
		*d = val.(int64)
	case *[]byte:
		if val == nil {
			*d = nil
			return nil
		}
		*d = val.([]byte)
	case *json.RawMessage:
		if val == nil {
			*d = nil
			return nil
		}
		*d = val.([]byte)
	case *time.Time:
		*d = val.(time.Time)
	case **string:
		if val == nil {
			*d = nil
			return nil
		}
		s := val.(string)
		*d = &s
	case **time.Time:
		if val == nil {
			*d = nil
			return nil
		}
		ts := val.(time.Time)
		*d = &ts
	default:
		return fmt.Errorf("unsupported scan target %T", dest)
	}
	return nil
}

// stubExecutor satisfies infra.SQLExecutor with per-test hooks. Handlers pass
// the sqlinline constants through untouched, so hooks can switch on them.
type stubExecutor struct {
	execFn      func(query string, args ...any) (pgconn.CommandTag, error)
	queryRowFn  func(query string, args ...any) pgx.Row
	queryFn     func(query string, args ...any) (pgx.Rows, error)
	execQueries []string
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execQueries = append(s.execQueries, query)
	if s.execFn == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFn(query, args...)
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFn == nil {
		return SimpleRow{}
	}
	return s.queryRowFn(query, args...)
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.queryFn == nil {
		return newFakeRows(nil), nil
	}
	return s.queryFn(query, args...)
}
