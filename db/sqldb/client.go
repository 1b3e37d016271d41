package sqldb

import (
	"context"
)

type Client interface {
	Init() error
	Close() error
	Querier // Methods required for Querier are also required, so, promote it
	GetConf() *Conf
	GetDSN() string
	Ping(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	// IsUniqueViolation reports whether err came from a UNIQUE constraint
	IsUniqueViolation(err error) bool
}

// Querier is a Handle that knows its placeholder dialect
type Querier interface {
	Handle
	PlaceholderPrefix() byte
	// Stmt returns the raw statement registered as "group.name", rewritten for the dialect
	Stmt(key string) (string, error)
}
