package mysql

import (
	"database/sql"
	"errors"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

// *sql.Rows and sql.Result already satisfy the sqldb interfaces
var (
	_ sqldb.Rows   = (*sql.Rows)(nil)
	_ sqldb.Result = sql.Result(nil)
)

type Row struct {
	row *sql.Row
}

// Ensure mysql.Row implements sqldb.Row interface
var _ sqldb.Row = (*Row)(nil)

func (r *Row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return sqldb.ErrNoRows
	}
	return err
}
