package sqldb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/db/sqldb"
	"github.com/zeptools/gw-cardpress/db/sqldb/sqldbtest"
	"github.com/zeptools/gw-cardpress/orm"
)

type shop struct {
	ID   int64
	Name string
}

func (s *shop) GetID() int64        { return s.ID }
func (s *shop) TargetFields() []any { return []any{&s.ID, &s.Name} }

type order struct {
	ID     int64
	ShopID int64
	Shop   *shop
}

func (o *order) GetID() int64        { return o.ID }
func (o *order) TargetFields() []any { return []any{&o.ID, &o.ShopID} }

func TestQueryCollectionAndLoadBelongsTo(t *testing.T) {
	ctx := context.Background()
	q := sqldbtest.New('$')
	q.Expect(sqldbtest.Reply{Match: "FROM orders", Rows: [][]any{{int64(3), int64(7)}, {int64(2), int64(5)}, {int64(1), int64(7)}}})
	q.Expect(sqldbtest.Reply{Match: "FROM shops", Rows: [][]any{{int64(5), "Tulip"}, {int64(7), "Rose"}}})

	orders, err := sqldb.QueryCollection[order, *order, int64](ctx, q, "SELECT id, shop_id FROM orders")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, orders.IDs())

	shops, err := sqldb.LoadBelongsTo[*order, int64, shop, *shop, int64](ctx, q, orders,
		"SELECT id, name FROM shops WHERE id IN (??)",
		func(o *order) int64 { return o.ShopID },
		func(o *order) **shop { return &o.Shop })
	require.NoError(t, err)
	assert.Equal(t, 2, shops.Len())

	calls := q.CallsMatching("FROM shops")
	require.Len(t, calls, 1)
	assert.Equal(t, "SELECT id, name FROM shops WHERE id IN ($1, $2)", calls[0].Query)
	assert.Equal(t, []any{int64(7), int64(5)}, calls[0].Args)

	first, _ := orders.Find(3)
	assert.Equal(t, "Rose", first.Shop.Name)
}

func TestLoadBelongsToEmpty(t *testing.T) {
	q := sqldbtest.New('?')
	empty := orm.NewEmptyOrderedCollection[*order, int64]()
	shops, err := sqldb.LoadBelongsTo[*order, int64, shop, *shop, int64](context.Background(), q, empty,
		"SELECT id, name FROM shops WHERE id IN (??)",
		func(o *order) int64 { return o.ShopID },
		func(o *order) **shop { return &o.Shop })
	require.NoError(t, err)
	assert.Equal(t, 0, shops.Len())
	assert.Empty(t, q.Calls)
}

func TestQueryItemNoRows(t *testing.T) {
	q := sqldbtest.New('$')
	_, err := sqldb.QueryItem[shop, *shop](context.Background(), q, "SELECT id, name FROM shops WHERE id = $1", 1)
	assert.ErrorIs(t, err, sqldb.ErrNoRows)

	q.Expect(sqldbtest.Reply{Match: "COUNT", Rows: [][]any{{int64(42)}}})
	n, err := sqldb.QueryInt64(context.Background(), q, "SELECT COUNT(*) FROM orders")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestQueryInsideTx(t *testing.T) {
	q := sqldbtest.New('$')
	q.Expect(sqldbtest.Reply{Match: "FROM shops", Rows: [][]any{{int64(3), "Rose Studio"}}})
	var tx sqldb.Tx = q.Begin()

	s, err := sqldb.QueryItem[shop, *shop](context.Background(), tx, "SELECT id, name FROM shops WHERE id = $1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Rose Studio", s.Name)
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, tx.Rollback(context.Background()))
	assert.Len(t, q.Calls, 1)
}
