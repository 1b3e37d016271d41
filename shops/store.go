package shops

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/zeptools/gw-cardpress/db/sqldb"
	"github.com/zeptools/gw-cardpress/orm"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// StmtGroup prefixes every statement key of this package, e.g. "shops.select_by_ids"
const StmtGroup = "shops"

func init() {
	sqldb.RegisterGroup(sqlFS, StmtGroup)
}

type Store interface {
	Create(ctx context.Context, s *Shop) error
	Update(ctx context.Context, s *Shop) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Shop, error)
	FindBySlug(ctx context.Context, slug string) (*Shop, error)
	List(ctx context.Context) (*orm.Collection[*Shop, int64], error)
}

type SQLStore struct {
	Q                 sqldb.Querier
	IsUniqueViolation func(error) bool
	Now               func() time.Time
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(c sqldb.Client) *SQLStore {
	return &SQLStore{Q: c, IsUniqueViolation: c.IsUniqueViolation, Now: time.Now}
}

func (s *SQLStore) stmt(name string) (string, error) {
	return s.Q.Stmt(StmtGroup + "." + name)
}

func (s *SQLStore) mapWriteErr(err error) error {
	if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (s *SQLStore) Create(ctx context.Context, shop *Shop) error {
	q, err := s.stmt("insert")
	if err != nil {
		return err
	}
	now := s.Now().UTC().Truncate(time.Second)
	res, err := s.Q.InsertStmt(ctx, q,
		shop.Slug, shop.Name, shop.Email, shop.LogoURL, shop.IsActive, shop.ShowNameOnPDF, now, now)
	if err != nil {
		return s.mapWriteErr(err)
	}
	if shop.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("shops: insert id: %w", err)
	}
	shop.CreatedAt, shop.UpdatedAt = now, now
	return nil
}

func (s *SQLStore) Update(ctx context.Context, shop *Shop) error {
	q, err := s.stmt("update")
	if err != nil {
		return err
	}
	now := s.Now().UTC().Truncate(time.Second)
	res, err := s.Q.Exec(ctx, q,
		shop.Slug, shop.Name, shop.Email, shop.LogoURL, shop.IsActive, shop.ShowNameOnPDF, now, shop.ID)
	if err != nil {
		return s.mapWriteErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	shop.UpdatedAt = now
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	q, err := s.stmt("delete")
	if err != nil {
		return err
	}
	res, err := s.Q.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) FindByID(ctx context.Context, id int64) (*Shop, error) {
	return s.findOne(ctx, "select_by_id", id)
}

func (s *SQLStore) FindBySlug(ctx context.Context, slug string) (*Shop, error) {
	return s.findOne(ctx, "select_by_slug", slug)
}

func (s *SQLStore) findOne(ctx context.Context, name string, arg any) (*Shop, error) {
	q, err := s.stmt(name)
	if err != nil {
		return nil, err
	}
	shop, err := sqldb.QueryItem[Shop, *Shop](ctx, s.Q, q, arg)
	if errors.Is(err, sqldb.ErrNoRows) {
		return nil, ErrNotFound
	}
	return shop, err
}

func (s *SQLStore) List(ctx context.Context) (*orm.Collection[*Shop, int64], error) {
	q, err := s.stmt("select_all")
	if err != nil {
		return nil, err
	}
	return sqldb.QueryCollection[Shop, *Shop, int64](ctx, s.Q, q)
}
