package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

// fakeResult is what a scripted statement returns.
type fakeResult struct {
	rows     [][]any
	affected int64
	err      error
}

type fakeCall struct {
	sql  string
	args []any
	inTx bool
}

type fakeHandler struct {
	match string
	fn    func(args []any) fakeResult
}

// fakeDB answers statements by the first handler whose match is a substring
// of the SQL, and records every call.
type fakeDB struct {
	handlers   []fakeHandler
	calls      []fakeCall
	begun      int
	committed  int
	rolledBack int
}

func (f *fakeDB) on(match string, fn func(args []any) fakeResult) {
	f.handlers = append(f.handlers, fakeHandler{match: match, fn: fn})
}

func (f *fakeDB) respond(match string, res fakeResult) {
	f.on(match, func([]any) fakeResult { return res })
}

func (f *fakeDB) exec(sql string, args []any, inTx bool) fakeResult {
	f.calls = append(f.calls, fakeCall{sql: sql, args: args, inTx: inTx})
	for _, h := range f.handlers {
		if strings.Contains(sql, h.match) {
			return h.fn(args)
		}
	}
	return fakeResult{err: fmt.Errorf("unexpected statement: %s", sql)}
}

// callsMatching returns recorded calls whose SQL contains match.
func (f *fakeDB) callsMatching(match string) []fakeCall {
	var out []fakeCall
	for _, c := range f.calls {
		if strings.Contains(c.sql, match) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	res := f.exec(sql, args, false)
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{rows: res.rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) Row {
	return &fakeRow{res: f.exec(sql, args, false)}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	res := f.exec(sql, args, false)
	return fakeTag(res.affected), res.err
}

func (f *fakeDB) Begin(context.Context) (Tx, error) {
	f.begun++
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) Ping(context.Context) error { return nil }

func (f *fakeDB) Close() {}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	res := t.db.exec(sql, args, true)
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{rows: res.rows, pos: -1}, nil
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) Row {
	return &fakeRow{res: t.db.exec(sql, args, true)}
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	res := t.db.exec(sql, args, true)
	return fakeTag(res.affected), res.err
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.committed++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.rolledBack++
	return nil
}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeRow struct {
	res fakeResult
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.res.err != nil {
		return r.res.err
	}
	if len(r.res.rows) == 0 {
		return pgx.ErrNoRows
	}
	return assign(dest, r.res.rows[0])
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.rows[r.pos]) }

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() {}

// assign copies vals into scan destinations, converting between named types
// and allocating pointer targets the way pgx does for nullable columns.
func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if vals[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(vals[i])
		if dv.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
			p := reflect.New(dv.Type().Elem())
			p.Elem().Set(v.Convert(dv.Type().Elem()))
			dv.Set(p)
			continue
		}
		dv.Set(v.Convert(dv.Type()))
	}
	return nil
}
