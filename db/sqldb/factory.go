package sqldb

import "fmt"

// ClientFactory is a callback that constructs a Client from Conf and the raw statements.
// It is registered with RegisterFactory and called by sqldb.New.
type ClientFactory func(conf *Conf, stmts *RawSQLStore) (Client, error)

var registry = map[string]ClientFactory{}

func RegisterFactory(dbType string, factory ClientFactory) {
	registry[dbType] = factory
}

// New builds a client of conf.Type with every registered statement group loaded for its dialect
func New(conf *Conf) (Client, error) {
	factory, ok := registry[conf.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", conf.Type)
	}
	prefix, ok := PlaceholderPrefixForDBType[conf.Type]
	if !ok {
		return nil, fmt.Errorf("no placeholder dialect for %s", conf.Type)
	}
	stmts := NewRawStore()
	if err := LoadRawStmtsToStore(stmts, conf.Type, prefix); err != nil {
		return nil, err
	}
	return factory(conf, stmts)
}
