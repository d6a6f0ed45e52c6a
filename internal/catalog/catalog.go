package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/novasql/core/internal/disk"
)

var (
	ErrTableExists   = errors.New("catalog: table already exists")
	ErrTableNotFound = errors.New("catalog: table not found")
	ErrIndexExists   = errors.New("catalog: index already exists")
	ErrIndexNotFound = errors.New("catalog: index not found")
	ErrUnknownColumn = errors.New("catalog: unknown key column")
)

// cacheSize bounds the in-memory TableInfo resolution cache that table
// lookups consult first; index lookups are not cached. The JSON meta
// files are read once, when the catalog is opened.
const cacheSize = 256

// Catalog is the schema registry. It persists one JSON file per table
// under dataDir/catalog, following the teacher's TableMeta convention,
// and keeps a bounded LRU cache of resolved handles in memory.
type Catalog struct {
	mu      sync.RWMutex
	dataDir string

	tables  map[string]*TableInfo
	indexes map[string]*IndexInfo // keyed by "table.index"

	tableCache *lru.Cache[string, *TableInfo]
}

// New opens (or initializes) the catalog rooted at dataDir, loading any
// existing table/index metadata from dataDir/catalog.
func New(dataDir string) (*Catalog, error) {
	cache, err := lru.New[string, *TableInfo](cacheSize)
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		dataDir:    dataDir,
		tables:     make(map[string]*TableInfo),
		indexes:    make(map[string]*IndexInfo),
		tableCache: cache,
	}
	if err := c.loadAll(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) metaDir() string { return filepath.Join(c.dataDir, "catalog") }

func (c *Catalog) tableMetaPath(name string) string {
	return filepath.Join(c.metaDir(), name+".table.json")
}

func (c *Catalog) indexMetaPath(table, index string) string {
	return filepath.Join(c.metaDir(), table+"."+index+".index.json")
}

func (c *Catalog) loadAll() error {
	entries, err := os.ReadDir(c.metaDir())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(c.metaDir(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		switch {
		case strings.HasSuffix(e.Name(), ".table.json"):
			var ti TableInfo
			if err := json.Unmarshal(data, &ti); err != nil {
				return fmt.Errorf("catalog: loading %s: %w", path, err)
			}
			c.tables[ti.Name] = &ti
		case strings.HasSuffix(e.Name(), ".index.json"):
			var ii IndexInfo
			if err := json.Unmarshal(data, &ii); err != nil {
				return fmt.Errorf("catalog: loading %s: %w", path, err)
			}
			c.indexes[ii.TableName+"."+ii.Name] = &ii
		}
	}
	return nil
}

func (c *Catalog) writeTableMeta(ti *TableInfo) error {
	if err := os.MkdirAll(c.metaDir(), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.tableMetaPath(ti.Name), data, 0o644)
}

func (c *Catalog) writeIndexMeta(ii *IndexInfo) error {
	if err := os.MkdirAll(c.metaDir(), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ii, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.indexMetaPath(ii.TableName, ii.Name), data, 0o644)
}

// CreateTable registers a new table whose TableHeap already begins at
// firstPageID (allocated and initialized by the caller via
// tableheap.Create, since initializing a table page is tableheap's
// layout concern, not the catalog's). It fails if the name is already
// taken.
func (c *Catalog) CreateTable(name string, schema Schema, firstPageID disk.PageId) (*TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return nil, ErrTableExists
	}

	now := time.Now()
	ti := &TableInfo{
		OID:         uuid.New(),
		Name:        name,
		Schema:      schema,
		FirstPageID: firstPageID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.writeTableMeta(ti); err != nil {
		return nil, err
	}
	c.tables[name] = ti
	c.tableCache.Add(name, ti)
	return ti, nil
}

// GetTable resolves name to its TableInfo, consulting the LRU cache
// before the in-memory map (both are kept in sync; the cache exists so
// hot-path lookups measure and bound memory the way the teacher's own
// LRU (pkg/cache/lru.go) does for its page cache).
func (c *Catalog) GetTable(name string) (*TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if ti, ok := c.tableCache.Get(name); ok {
		return ti, nil
	}
	ti, ok := c.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}
	c.tableCache.Add(name, ti)
	return ti, nil
}

// ListTables returns all registered tables, sorted by name is not
// guaranteed; callers needing stable order should sort themselves.
func (c *Catalog) ListTables() []*TableInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*TableInfo, 0, len(c.tables))
	for _, ti := range c.tables {
		out = append(out, ti)
	}
	return out
}

// DropTable removes name's metadata. It does not reclaim the pages of the
// table or of its indexes, and engine.Database.DropTable does not either.
func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[name]; !ok {
		return ErrTableNotFound
	}
	delete(c.tables, name)
	c.tableCache.Remove(name)
	for k, ii := range c.indexes {
		if ii.TableName == name {
			delete(c.indexes, k)
			_ = os.Remove(c.indexMetaPath(ii.TableName, ii.Name))
		}
	}
	return os.Remove(c.tableMetaPath(name))
}

// CreateIndex registers a new extendible hash index over table, rooted at
// headerPageID (already allocated by the caller via the hash index
// package, since building the header page requires the hash package's
// own bucket-sizing logic).
func (c *Catalog) CreateIndex(table, name string, keyColumns []string, headerPageID disk.PageId) (*IndexInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ti, ok := c.tables[table]
	if !ok {
		return nil, ErrTableNotFound
	}
	for _, col := range keyColumns {
		if ti.Schema.ColumnIndex(col) < 0 {
			return nil, ErrUnknownColumn
		}
	}
	key := table + "." + name
	if _, exists := c.indexes[key]; exists {
		return nil, ErrIndexExists
	}

	ii := &IndexInfo{
		OID:          uuid.New(),
		Name:         name,
		TableName:    table,
		KeyColumns:   keyColumns,
		HeaderPageID: headerPageID,
		CreatedAt:    time.Now(),
	}
	if err := c.writeIndexMeta(ii); err != nil {
		return nil, err
	}
	c.indexes[key] = ii
	return ii, nil
}

// GetIndex resolves (table, name) to its IndexInfo.
func (c *Catalog) GetIndex(table, name string) (*IndexInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ii, ok := c.indexes[table+"."+name]
	if !ok {
		return nil, ErrIndexNotFound
	}
	return ii, nil
}

// IndexesOn returns every index registered against table.
func (c *Catalog) IndexesOn(table string) []*IndexInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*IndexInfo
	for _, ii := range c.indexes {
		if ii.TableName == table {
			out = append(out, ii)
		}
	}
	return out
}

// DropIndex removes an index's metadata.
func (c *Catalog) DropIndex(table, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := table + "." + name
	if _, ok := c.indexes[key]; !ok {
		return ErrIndexNotFound
	}
	delete(c.indexes, key)
	return os.Remove(c.indexMetaPath(table, name))
}
