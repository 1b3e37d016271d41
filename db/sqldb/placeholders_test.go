package sqldb

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceStaticPlaceholders(t *testing.T) {
	in := "UPDATE orders SET status = ? WHERE id = ? AND shop_id IN (??)"
	assert.Equal(t, "UPDATE orders SET status = $1 WHERE id = $2 AND shop_id IN (??)", ReplaceStaticPlaceholders(in, '$'))
	assert.Equal(t, in, ReplaceStaticPlaceholders(in, '?'))
}

func TestExpandDynamicPlaceholders(t *testing.T) {
	got, err := ExpandDynamicPlaceholders("SELECT * FROM shops WHERE id IN (??)", '$', []int{3}, 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM shops WHERE id IN ($1, $2, $3)", got)

	got, err = ExpandDynamicPlaceholders("a IN (??) AND b IN (??)", '?', []int{2, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "a IN (?, ?) AND b IN (?)", got)

	_, err = ExpandDynamicPlaceholders("a IN (??)", '$', nil, 1)
	assert.Error(t, err)
	_, err = ExpandDynamicPlaceholders("a = 1", '$', []int{1}, 1)
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3, $4", Placeholders('$', 2, 3))
	assert.Equal(t, "?, ?, ?", Placeholders('?', 3, 1))
	assert.Equal(t, "", Placeholders('$', 0, 1))
}

func TestOrderByClause(t *testing.T) {
	clause := OrderByClause(OrderBy{Column: MustColumn("created_at"), Desc: true}, OrderBy{Column: MustColumn("id")})
	assert.Equal(t, " ORDER BY created_at DESC, id ASC", clause)
	_, err := NewColumn("id; DROP TABLE shops")
	assert.Error(t, err)
}

func TestLoadGroupPrefersDialectFile(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/find.sql":   {Data: []byte("SELECT * FROM t WHERE id = ?\n")},
		"sql/find.pgsql": {Data: []byte("SELECT * FROM t WHERE id = $1::bigint")},
		"sql/count.sql":  {Data: []byte("SELECT COUNT(*) FROM t WHERE a = ? AND b = ?")},
	}
	store := NewRawStore()
	n := 0
	require.NoError(t, loadGroup(store, GroupFS{Group: "t", FS: fsys}, "pgsql", '$', &n))
	assert.Equal(t, 2, n)

	find, ok := store.Get("t.find")
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM t WHERE id = $1::bigint", find)
	count, err := store.MustGet("t.count")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM t WHERE a = $1 AND b = $2", count)
	_, err = store.MustGet("t.missing")
	assert.Error(t, err)

	mysql := NewRawStore()
	require.NoError(t, loadGroup(mysql, GroupFS{Group: "t", FS: fsys}, "mysql", '?', &n))
	find, _ = mysql.Get("t.find")
	assert.Equal(t, "SELECT * FROM t WHERE id = ?", find)
}
