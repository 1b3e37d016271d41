package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	lowimpl "github.com/go-sql-driver/mysql"

	"github.com/zeptools/gw-cardpress/db/sqldb"
)

const DBType = "mysql"

func init() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf, stmts *sqldb.RawSQLStore) (sqldb.Client, error) {
		return &Client{Conf: conf, RawStore: stmts}, nil
	})
}

type Client struct {
	Handle   // [Embedded] for Promoted Methods
	Conf     *sqldb.Conf
	RawStore *sqldb.RawSQLStore

	// db fields are implementation details, not exported
	db  *sql.DB
	dsn string
}

// Ensure mysql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

func (c *Client) Init() error {
	var err error
	if c.Conf.DSN != "" {
		c.dsn = c.Conf.DSN
	} else {
		tz := c.Conf.TZ
		if tz == "" {
			tz = "UTC"
		}
		c.dsn = fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=%s&sql_mode=ANSI_QUOTES",
			c.Conf.User,
			c.Conf.PW,
			c.Conf.Host,
			c.Conf.Port,
			c.Conf.DB,
			url.QueryEscape(tz),
		)
	}
	if c.db, err = sql.Open(DBType, c.dsn); err != nil {
		return err
	}
	c.db.SetConnMaxLifetime(time.Duration(c.Conf.ConnLifetime()) * time.Second)
	c.db.SetMaxOpenConns(c.Conf.PoolSize())
	c.db.SetMaxIdleConns(c.Conf.PoolSize())
	c.Handle = Handle{q: c.db}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	log.Println("[INFO] mysql client initialized")
	return nil
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) GetDSN() string {
	return c.dsn
}

func (c *Client) PlaceholderPrefix() byte {
	return '?'
}

func (c *Client) Stmt(key string) (string, error) {
	return c.RawStore.MustGet(key)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	log.Println("[INFO] closing mysql client")
	if err := c.db.Close(); err != nil {
		return err
	}
	log.Println("[INFO] mysql client closed")
	return nil
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{Handle: Handle{q: tx}, tx: tx}, nil
}

// IsUniqueViolation matches ER_DUP_ENTRY
func (c *Client) IsUniqueViolation(err error) bool {
	var myErr *lowimpl.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
