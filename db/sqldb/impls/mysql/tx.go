package mysql

import (
	"context"
	"database/sql"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

type Tx struct {
	Handle
	tx *sql.Tx
}

// Ensure mysql.Tx implements sqldb.Tx interface
var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *Tx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
