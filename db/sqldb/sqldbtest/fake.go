// Package sqldbtest provides an in-memory sqldb.Querier that replays scripted results.
package sqldbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

// Call is one statement the fake received
type Call struct {
	Query string
	Args  []any
}

// Reply scripts the outcome of the next statement whose text contains Match
type Reply struct {
	Match        string
	Rows         [][]any // for queries
	Err          error
	RowsAffected int64
	LastInsertID int64
}

// Querier records every call and answers from the scripted replies in order.
// Unscripted queries return no rows; unscripted Exec affects one row.
type Querier struct {
	Prefix byte
	Stmts  map[string]string

	mu      sync.Mutex
	replies []Reply
	store   *sqldb.RawSQLStore
	Calls   []Call
}

var _ sqldb.Querier = (*Querier)(nil)

func New(prefix byte) *Querier {
	return &Querier{Prefix: prefix, Stmts: map[string]string{}}
}

// LoadStmts fills Stmts from every registered sql group, as a real client would
func (q *Querier) LoadStmts(dbtype string) error {
	store := sqldb.NewRawStore()
	if err := sqldb.LoadRawStmtsToStore(store, dbtype, q.Prefix); err != nil {
		return err
	}
	q.store = store
	return nil
}

func (q *Querier) Expect(r Reply) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.replies = append(q.replies, r)
	return q
}

func (q *Querier) CallsMatching(s string) []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Call
	for _, c := range q.Calls {
		if strings.Contains(c.Query, s) {
			out = append(out, c)
		}
	}
	return out
}

func (q *Querier) next(query string, args []any) (Reply, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Calls = append(q.Calls, Call{Query: query, Args: args})
	for i, r := range q.replies {
		if strings.Contains(query, r.Match) {
			q.replies = append(q.replies[:i], q.replies[i+1:]...)
			return r, true
		}
	}
	return Reply{}, false
}

func (q *Querier) PlaceholderPrefix() byte { return q.Prefix }

func (q *Querier) Stmt(key string) (string, error) {
	if q.store != nil {
		return q.store.MustGet(key)
	}
	s, ok := q.Stmts[key]
	if !ok {
		return "", fmt.Errorf("sql statement %q not registered", key)
	}
	return s, nil
}

func (q *Querier) Exec(_ context.Context, query string, args ...any) (sqldb.Result, error) {
	r, ok := q.next(query, args)
	if !ok {
		return result{affected: 1}, nil
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return result{affected: r.RowsAffected, id: r.LastInsertID}, nil
}

func (q *Querier) InsertStmt(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	return q.Exec(ctx, query, args...)
}

func (q *Querier) QueryRows(_ context.Context, query string, args ...any) (sqldb.Rows, error) {
	r, _ := q.next(query, args)
	if r.Err != nil {
		return nil, r.Err
	}
	return &rows{data: r.Rows, pos: -1}, nil
}

func (q *Querier) QueryRow(_ context.Context, query string, args ...any) sqldb.Row {
	r, _ := q.next(query, args)
	return row{data: r.Rows, err: r.Err}
}

type result struct {
	affected int64
	id       int64
}

func (r result) RowsAffected() (int64, error) { return r.affected, nil }
func (r result) LastInsertId() (int64, error) { return r.id, nil }

type rows struct {
	data [][]any
	pos  int
}

func (r *rows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *rows) Scan(dest ...any) error { return assign(dest, r.data[r.pos]) }
func (r *rows) Close() error           { return nil }
func (r *rows) Err() error             { return nil }

type row struct {
	data [][]any
	err  error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(r.data) == 0 {
		return sqldb.ErrNoRows
	}
	return assign(dest, r.data[0])
}

// assign copies src values into dest pointers, using sql.Scanner when dest implements it
func assign(dest []any, src []any) error {
	if len(dest) != len(src) {
		return fmt.Errorf("sqldbtest: %d columns scanned into %d targets", len(src), len(dest))
	}
	for i, d := range dest {
		if sc, ok := d.(interface{ Scan(any) error }); ok {
			if err := sc.Scan(src[i]); err != nil {
				return err
			}
			continue
		}
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return errors.New("sqldbtest: scan target must be a non-nil pointer")
		}
		if src[i] == nil {
			dv.Elem().SetZero()
			continue
		}
		sv := reflect.ValueOf(src[i])
		if !sv.Type().AssignableTo(dv.Elem().Type()) {
			if !sv.Type().ConvertibleTo(dv.Elem().Type()) {
				return fmt.Errorf("sqldbtest: column %d: cannot assign %T to %s", i, src[i], dv.Elem().Type())
			}
			sv = sv.Convert(dv.Elem().Type())
		}
		dv.Elem().Set(sv)
	}
	return nil
}

// Tx is a transaction over a Querier; statements go to the same script.
type Tx struct {
	*Querier
	Committed  bool
	RolledBack bool
}

var _ sqldb.Tx = (*Tx)(nil)

func (q *Querier) Begin() *Tx { return &Tx{Querier: q} }

func (t *Tx) Commit(context.Context) error {
	if t.Committed || t.RolledBack {
		return errors.New("sqldbtest: tx already closed")
	}
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if t.Committed || t.RolledBack {
		return nil
	}
	t.RolledBack = true
	return nil
}
