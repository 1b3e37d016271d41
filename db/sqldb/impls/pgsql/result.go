package pgsql

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

type Result struct {
	tag          pgconn.CommandTag
	lastInsertID int64 // from RETURNING id
}

// Ensure pgsql.Result implements sqldb.Result
var _ sqldb.Result = (*Result)(nil)

func (r *Result) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

// LastInsertId - PostgreSQL has none; only InsertStmt fills it
func (r *Result) LastInsertId() (int64, error) {
	if r.lastInsertID != 0 {
		return r.lastInsertID, nil
	}
	return 0, fmt.Errorf("LastInsertId not supported; use InsertStmt or `RETURNING id`")
}
