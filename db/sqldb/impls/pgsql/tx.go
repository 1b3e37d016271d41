package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

type Tx struct {
	Handle
	tx pgx.Tx
}

// Ensure pgsql.Tx implements sqldb.Tx
var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
