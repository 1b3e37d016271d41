package orders

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/zeptools/gw-cardpress/db/sqldb"
	"github.com/zeptools/gw-cardpress/nullable"
	"github.com/zeptools/gw-cardpress/orm"
	"github.com/zeptools/gw-cardpress/shops"
)

//go:embed sql
var sqlFS embed.FS

const StmtGroup = "orders"

// shortIDTries bounds collision retries on insert
const shortIDTries = 5

func init() {
	sqldb.RegisterGroup(sqlFS, StmtGroup)
}

type Store interface {
	Create(ctx context.Context, o *Order, shopSlug string) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByShortID(ctx context.Context, shortID string) (*Order, error)
	SetStatus(ctx context.Context, id int64, status Status, sentAt nullable.Time) error
	ListPage(ctx context.Context, page, size int) (*orm.Collection[*Order, int64], error)
	Count(ctx context.Context) (int64, error)
	ListRetryable(ctx context.Context, maxAttempts, limit int) (*orm.Collection[*Order, int64], error)
	FailStalePending(ctx context.Context, createdBefore time.Time) (int64, error)
}

type SQLStore struct {
	Q                 sqldb.Querier
	IsUniqueViolation func(error) bool
	Now               func() time.Time
	IntN              func(n int) int // short id randomness, nil = math/rand/v2
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(c sqldb.Client) *SQLStore {
	return &SQLStore{Q: c, IsUniqueViolation: c.IsUniqueViolation, Now: time.Now}
}

func (s *SQLStore) stmt(name string) (string, error) {
	return s.Q.Stmt(StmtGroup + "." + name)
}

// Create inserts o as pending, drawing a fresh short id on collision.
func (s *SQLStore) Create(ctx context.Context, o *Order, shopSlug string) error {
	q, err := s.stmt("insert")
	if err != nil {
		return err
	}
	now := s.Now().UTC().Truncate(time.Second)
	o.Status = StatusPending
	for try := 0; try < shortIDTries; try++ {
		o.ShortID = NewShortID(shopSlug, s.IntN)
		res, err := s.Q.InsertStmt(ctx, q,
			o.ShopID, o.ShortID, o.CustomerText, o.CustomerSign, o.PhoneLast4, o.DesignID, o.FontID, o.Status, now, now)
		if err != nil {
			if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("orders: insert: %w", err)
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("orders: insert id: %w", err)
		}
		o.Attempts = 0
		o.CreatedAt, o.UpdatedAt = now, now
		return nil
	}
	return ErrShortIDExhausted
}

func (s *SQLStore) FindByID(ctx context.Context, id int64) (*Order, error) {
	return s.findOne(ctx, "select_by_id", id)
}

func (s *SQLStore) FindByShortID(ctx context.Context, shortID string) (*Order, error) {
	return s.findOne(ctx, "select_by_short_id", shortID)
}

func (s *SQLStore) findOne(ctx context.Context, name string, arg any) (*Order, error) {
	q, err := s.stmt(name)
	if err != nil {
		return nil, err
	}
	o, err := sqldb.QueryItem[Order, *Order](ctx, s.Q, q, arg)
	if errors.Is(err, sqldb.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// SetStatus records one delivery attempt. sentAt is kept when null.
func (s *SQLStore) SetStatus(ctx context.Context, id int64, status Status, sentAt nullable.Time) error {
	q, err := s.stmt("set_status")
	if err != nil {
		return err
	}
	res, err := s.Q.Exec(ctx, q, status, sentAt, s.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPage returns page (1-based) of size orders, newest first, with their shops.
func (s *SQLStore) ListPage(ctx context.Context, page, size int) (*orm.Collection[*Order, int64], error) {
	if page < 1 {
		page = 1
	}
	q, err := s.stmt("select_page")
	if err != nil {
		return nil, err
	}
	coll, err := sqldb.QueryCollection[Order, *Order, int64](ctx, s.Q, q, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	if err = s.loadShops(ctx, coll); err != nil {
		return nil, err
	}
	return coll, nil
}

func (s *SQLStore) loadShops(ctx context.Context, coll *orm.Collection[*Order, int64]) error {
	q, err := s.Q.Stmt(shops.StmtGroup + ".select_by_ids")
	if err != nil {
		return err
	}
	_, err = sqldb.LoadBelongsTo[*Order, int64, shops.Shop, *shops.Shop, int64](ctx, s.Q, coll, q,
		func(o *Order) int64 { return o.ShopID },
		func(o *Order) **shops.Shop { return &o.Shop },
	)
	return err
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	q, err := s.stmt("count")
	if err != nil {
		return 0, err
	}
	return sqldb.QueryInt64(ctx, s.Q, q)
}

func (s *SQLStore) ListRetryable(ctx context.Context, maxAttempts, limit int) (*orm.Collection[*Order, int64], error) {
	q, err := s.stmt("select_retryable")
	if err != nil {
		return nil, err
	}
	return sqldb.QueryCollection[Order, *Order, int64](ctx, s.Q, q, maxAttempts, limit)
}

func (s *SQLStore) FailStalePending(ctx context.Context, createdBefore time.Time) (int64, error) {
	q, err := s.stmt("fail_stale")
	if err != nil {
		return 0, err
	}
	res, err := s.Q.Exec(ctx, q, s.Now().UTC(), createdBefore.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
