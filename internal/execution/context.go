// Package execution implements the iterator-model physical operators
// spec.md §4.6 requires: each Executor is a pull-based iterator over
// (Tuple, RID) pairs, built from a internal/plan.Node tree resolved
// against internal/catalog and run over internal/tableheap/
// internal/index/hash through a shared internal/buffer.Pool. Grounded on
// the teacher's internal/sql/executor/executor.go switch-on-plan-node
// dispatch style, generalized from its ad hoc Result{Columns,Rows} batch
// shape to a proper Next()-driven pull iterator per operator so
// HashJoin/Aggregation can materialize their build phase lazily, on
// first Next, exactly as spec.md §4.6's "stateful operators materialize
// in-memory structures on first next" calls for.
package execution

import (
	"fmt"
	"sync"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/index/hash"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// Row is one decoded tuple flowing through the pipeline: its identity
// (for Delete/Update to act on) and its per-column typed values.
type Row struct {
	RID    tableheap.RID
	Values []types.Value
}

// Context is the shared handle every executor is built and run with
// (engine.Database keeps one for its whole lifetime, across statements):
// catalog access plus opened table/index handles, cached
// so a plan referencing the same table twice (e.g. a self-join) does not
// reopen its heap. Mirrors the teacher's *novasql.Database role in
// executor.go, narrowed to exactly what spec.md §4.6's operators need.
type Context struct {
	Catalog *catalog.Catalog
	Pool    *buffer.Pool

	mu      sync.Mutex
	heaps   map[string]*tableheap.TableHeap
	indexes map[string]*hash.HashTable
}

// NewContext builds an executor Context bound to cat/pool.
func NewContext(cat *catalog.Catalog, pool *buffer.Pool) *Context {
	return &Context{
		Catalog: cat,
		Pool:    pool,
		heaps:   make(map[string]*tableheap.TableHeap),
		indexes: make(map[string]*hash.HashTable),
	}
}

// RegisterHeap seeds the Context's cache with an already-open heap, so a
// table created in the same session doesn't pay a redundant Open call
// (engine.Database.CreateTable uses this right after allocating the
// table's first page).
func (c *Context) RegisterHeap(tableName string, h *tableheap.TableHeap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heaps[tableName] = h
}

// ForgetHeap evicts tableName's cached heap handle, e.g. after DROP TABLE.
func (c *Context) ForgetHeap(tableName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.heaps, tableName)
}

// RegisterIndex seeds the Context's cache with an already-open index
// handle (engine.Database.CreateIndex uses this right after allocating
// the index's header page).
func (c *Context) RegisterIndex(tableName, indexName string, h *hash.HashTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[tableName+"."+indexName] = h
}

// OpenTable resolves tableName's catalog entry and its TableHeap,
// reusing an already-opened heap for the lifetime of the Context.
func (c *Context) OpenTable(tableName string) (*catalog.TableInfo, *tableheap.TableHeap, error) {
	ti, err := c.Catalog.GetTable(tableName)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Bind, "unknown table "+tableName, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.heaps[tableName]; ok {
		return ti, h, nil
	}
	h := tableheap.Open(c.Pool, ti.FirstPageID)
	c.heaps[tableName] = h
	return ti, h, nil
}

// OpenIndex resolves (tableName, indexName) and its HashTable, reusing
// an already-opened handle the same way OpenTable does.
func (c *Context) OpenIndex(tableName, indexName string) (*catalog.IndexInfo, *hash.HashTable, error) {
	ii, err := c.Catalog.GetIndex(tableName, indexName)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Bind, fmt.Sprintf("unknown index %s.%s", tableName, indexName), err)
	}

	key := tableName + "." + indexName
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.indexes[key]; ok {
		return ii, h, nil
	}

	ti, err := c.Catalog.GetTable(tableName)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Bind, "unknown table "+tableName, err)
	}
	colTypes := make([]types.TypeID, len(ii.KeyColumns))
	for i, col := range ii.KeyColumns {
		idx := ti.Schema.ColumnIndex(col)
		if idx < 0 {
			return nil, nil, errs.New(errs.Bind, "index key column not found: "+col)
		}
		colTypes[i] = ti.Schema.Columns[idx].Type
	}
	keySize := hash.KeyWidth(colTypes)

	h := hash.Open(c.Pool, ii.HeaderPageID, keySize, 0, hash.FNVHasher{}, hash.BytesComparator{})
	c.indexes[key] = h
	return ii, h, nil
}

// IndexesOn returns every index registered on tableName, opening each
// one (so callers can maintain them all on Insert/Delete without
// re-resolving the catalog per index).
func (c *Context) IndexesOn(tableName string) ([]*catalog.IndexInfo, []*hash.HashTable, error) {
	infos := c.Catalog.IndexesOn(tableName)
	tables := make([]*hash.HashTable, 0, len(infos))
	for _, ii := range infos {
		_, h, err := c.OpenIndex(tableName, ii.Name)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, h)
	}
	return infos, tables, nil
}

// encodeIndexKey packs values (in the index's key-column order) into the
// fixed-width byte key hash.HashTable stores, resolving each key
// column's position in the table schema.
func encodeIndexKey(ti *catalog.TableInfo, ii *catalog.IndexInfo, values []types.Value) ([]byte, error) {
	keyVals := make([]types.Value, len(ii.KeyColumns))
	colTypes := make([]types.TypeID, len(ii.KeyColumns))
	for i, col := range ii.KeyColumns {
		idx := ti.Schema.ColumnIndex(col)
		if idx < 0 {
			return nil, fmt.Errorf("execution: index key column %s not found on table %s", col, ti.Name)
		}
		keyVals[i] = values[idx]
		colTypes[i] = ti.Schema.Columns[idx].Type
	}
	return hash.EncodeKey(keyVals, colTypes)
}
