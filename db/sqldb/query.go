package sqldb

import (
	"context"
	"fmt"
	"log"

	"github.com/zeptools/gw-cardpress/orm"
)

func QueryItem[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](
	ctx context.Context,
	h Handle,
	rawSQLStmt string,
	args ...any, // variadic
) (*M, error) { // Returns the Pointer to the Newly Created Item
	row := h.QueryRow(ctx, rawSQLStmt, args...)
	var item M     // struct with zero values for the fields
	p := MP(&item) // p is *M, which satisfies targetFieldsProvider interface
	if err := row.Scan(p.TargetFields()...); err != nil {
		return nil, err
	}
	return &item, nil
}

// QueryCollection queries items using rawSQLStmt and scan rows to an ordered collection
func QueryCollection[
	M any, // Model struct
	MP ScannableIdentifiable[M, ID], // *Model implementing ScannableIdentifiable[M, ID]
	ID comparable,
](
	ctx context.Context,
	h Handle,
	rawSQLStmt string,
	args ...any, // variadic
) (*orm.Collection[MP, ID], error) {
	rows, err := h.QueryRows(ctx, rawSQLStmt, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	coll := orm.NewEmptyOrderedCollection[MP, ID]()
	for rows.Next() {
		var item M
		p := MP(&item) // *M implementing ScannableIdentifiable
		if err := rows.Scan(p.TargetFields()...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		coll.Add(p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during iterating rows: %w", err)
	}
	return coll, nil
}

// QueryInt64 scans a single integer, e.g. COUNT(*)
func QueryInt64(ctx context.Context, h Handle, rawSQLStmt string, args ...any) (int64, error) {
	var n int64
	if err := h.QueryRow(ctx, rawSQLStmt, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadBelongsTo - Load Parents on Children from SQL DB and Link Child-BelongsTo-Parent Relation
// sqlSelectByIDs must hold one `??` for the id list, e.g. "... WHERE id IN (??)".
// Returns the Parents
func LoadBelongsTo[
	CP orm.Identifiable[CID],
	CID comparable,
	P any, // Model struct
	PP ScannableIdentifiable[P, PID],
	PID comparable,
](
	ctx context.Context,
	q Querier,
	children *orm.Collection[CP, CID],
	sqlSelectByIDs string,
	foreignKey func(c CP) PID,
	relationFieldPtr func(c CP) *PP,
) (*orm.Collection[PP, PID], error) {
	if children.Len() == 0 {
		return orm.NewEmptyOrderedCollection[PP, PID](), nil
	}
	fKeys := orm.CollectUniqueToSlice[CP, CID, PID](children, func(c CP) *PID {
		fk := foreignKey(c)
		return &fk
	})
	args := make([]any, len(fKeys))
	for i, fk := range fKeys {
		args[i] = fk
	}
	sqlStmt, err := ExpandDynamicPlaceholders(sqlSelectByIDs, q.PlaceholderPrefix(), []int{len(args)}, 1)
	if err != nil {
		return nil, err
	}
	parents, err := QueryCollection[P, PP, PID](ctx, q, sqlStmt, args...)
	if err != nil {
		return nil, err
	}
	if err = orm.LinkBelongsTo[CP, CID, PP, PID](children, parents, foreignKey, relationFieldPtr); err != nil {
		return nil, err
	}
	return parents, nil
}

func closeRows(rows Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("[WARN] rows.Close() failed: %v", err)
	}
}
