package sqldb

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"
	"sync"
)

type RawSQLStore struct {
	stmts map[string]string
}

func NewRawStore() *RawSQLStore {
	return &RawSQLStore{stmts: make(map[string]string)}
}

func (s *RawSQLStore) Set(key string, rawStmt string) {
	s.stmts[key] = rawStmt
}

func (s *RawSQLStore) Get(key string) (string, bool) {
	stmt, exists := s.stmts[key]
	return stmt, exists
}

// MustGet is Get with an error naming the missing key
func (s *RawSQLStore) MustGet(key string) (string, error) {
	stmt, ok := s.stmts[key]
	if !ok {
		return "", fmt.Errorf("sql statement %q not registered", key)
	}
	return stmt, nil
}

func (s *RawSQLStore) Len() int {
	return len(s.stmts)
}

type StoreGroupedStmtKey struct {
	Group    string
	StmtName string
}

func (k StoreGroupedStmtKey) String() string {
	return k.Group + "." + k.StmtName
}

type GroupFS struct {
	Group string
	FS    fs.FS
}

var (
	registryMu       sync.Mutex
	rawStoreRegistry []GroupFS
)

// RegisterGroup adds the `sql` directory of fsys under group.
// Call from package init of each store package with its embed.FS.
func RegisterGroup(fsys fs.FS, group string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	rawStoreRegistry = append(rawStoreRegistry, GroupFS{FS: fsys, Group: group})
}

func registeredGroups() []GroupFS {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]GroupFS(nil), rawStoreRegistry...)
}

// LoadRawStmtsToStore reads every registered group.
// A file with the dialect's extension (name.pgsql) wins over the portable name.sql.
func LoadRawStmtsToStore(store *RawSQLStore, dbtype string, placeholderPrefix byte) error {
	groupCnt := 0
	stmtCnt := 0
	for _, groupFS := range registeredGroups() {
		if err := loadGroup(store, groupFS, dbtype, placeholderPrefix, &stmtCnt); err != nil {
			return err
		}
		groupCnt++
	}
	log.Printf("[INFO][%s] %d sql raw stmts loaded for %d groups", dbtype, stmtCnt, groupCnt)
	return nil
}

func loadGroup(store *RawSQLStore, groupFS GroupFS, dbtype string, prefix byte, cnt *int) error {
	files, err := fs.ReadDir(groupFS.FS, "sql")
	if err != nil {
		return fmt.Errorf("failed to read embedded `sql` dir of %s: %w", groupFS.Group, err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		filename := f.Name()
		ext := path.Ext(filename)
		name := strings.TrimSuffix(filename, ext)
		ext = strings.TrimPrefix(ext, ".")
		data, err := fs.ReadFile(groupFS.FS, path.Join("sql", filename))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		key := StoreGroupedStmtKey{Group: groupFS.Group, StmtName: name}.String()

		switch ext {
		case dbtype:
			// exact matching file extension -> use it as-is for dialects
			store.Set(key, strings.TrimSpace(string(data)))
			*cnt++
		case "sql":
			// Standard SQL with Placeholders: `?` (static) and `??` (dynamic)
			if _, exists := store.Get(key); !exists && !hasDialectFile(files, name, dbtype) {
				store.Set(key, ReplaceStaticPlaceholders(strings.TrimSpace(string(data)), prefix))
				*cnt++
			}
		}
	}
	return nil
}

func hasDialectFile(files []fs.DirEntry, name, dbtype string) bool {
	for _, f := range files {
		if f.Name() == name+"."+dbtype {
			return true
		}
	}
	return false
}
