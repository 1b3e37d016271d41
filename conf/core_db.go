package conf

import (
	"errors"
	"fmt"
	"log"

	"github.com/zeptools/gw-cardpress/db/kvdb/impls/memory"
	"github.com/zeptools/gw-cardpress/db/kvdb/impls/redis"
	"github.com/zeptools/gw-cardpress/db/sqldb"
	_ "github.com/zeptools/gw-cardpress/db/sqldb/impls/mysql" // registers "mysql"
	_ "github.com/zeptools/gw-cardpress/db/sqldb/impls/pgsql" // registers "pgsql"
)

// MainSQLDB is the key of the application database in .sql-databases.json
const MainSQLDB = "main"

func (c *Core[B]) PrepareKVDatabase() error {
	if err := c.loadJSON(".kv-databases.json", &c.KVDBConf); err != nil {
		return err
	}
	return c.prepareKVDBClient()
}

func (c *Core[B]) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
	case "memory":
		log.Printf("[WARN][KVDB] in-process kv store: sessions do not survive restarts")
		c.BackendKVDBClient = memory.NewClient(&c.KVDBConf)
	default:
		return fmt.Errorf("unsupported key-value database type %q", c.KVDBConf.Type)
	}
	return c.BackendKVDBClient.Init()
}

func (c *Core[B]) loadSQLDBConfs() error {
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	return c.loadJSON(".sql-databases.json", &c.SQLDBConfs)
}

// PrepareSQLDatabases builds one client per entry of .sql-databases.json.
// Statement groups register in package init, so every store package must be linked in by now.
func (c *Core[B]) PrepareSQLDatabases() error {
	if err := c.loadSQLDBConfs(); err != nil {
		return err
	}
	c.BackendSQLDBClients = make(map[string]sqldb.Client)
	for dbName, sqlDBConf := range c.SQLDBConfs {
		dbClient, err := sqldb.New(sqlDBConf)
		if err != nil {
			return fmt.Errorf("sql db %q: %w", dbName, err)
		}
		if err = dbClient.Init(); err != nil {
			return fmt.Errorf("sql db %q: %w", dbName, err)
		}
		c.BackendSQLDBClients[dbName] = dbClient
	}
	if _, ok := c.BackendSQLDBClients[MainSQLDB]; !ok {
		return errors.New("sql db \"main\" is not configured")
	}
	return nil
}

func (c *Core[B]) MainSQLDBClient() sqldb.Client {
	return c.BackendSQLDBClients[MainSQLDB]
}
