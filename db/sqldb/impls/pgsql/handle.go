package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

// querier is what *pgxpool.Pool and pgx.Tx have in common
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Handle struct {
	q querier
}

var _ sqldb.Handle = Handle{}

func (h Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	tag, err := h.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{tag: tag}, nil
}

func (h Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := h.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (h Handle) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: h.q.QueryRow(ctx, query, args...)}
}

// InsertStmt appends `RETURNING id` when missing so LastInsertId works as on MySQL
func (h Handle) InsertStmt(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "INSERT") {
		return nil, fmt.Errorf("InsertStmt must start with INSERT")
	}
	if !strings.Contains(strings.ToUpper(trimmed), "RETURNING") {
		trimmed = strings.TrimSuffix(trimmed, ";") + " RETURNING id"
	}
	var id int64
	if err := h.q.QueryRow(ctx, trimmed, args...).Scan(&id); err != nil {
		return nil, err
	}
	return &Result{tag: pgconn.NewCommandTag("INSERT 0 1"), lastInsertID: id}, nil
}
