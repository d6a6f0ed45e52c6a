// Package engine wires together the storage and execution core —
// internal/disk, internal/buffer, internal/catalog, internal/tableheap,
// internal/index/hash and internal/execution — into one Database handle,
// the single entry point a SQL front end (out of scope per spec.md §1)
// or a test harness drives. Grounded on the teacher's *novasql.Database
// (internal/engine/db.go): one struct owning the storage manager, the
// buffer pool and the catalog, exposing CreateTable/DropTable (plus
// CreateIndex), generalized to also own an internal/execution.Context so
// callers build internal/plan.Node trees directly (SQL parsing/binding
// stay external collaborators, per spec.md §1) and run them with Execute.
package engine

import (
	"errors"
	"path/filepath"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/config"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/execution"
	"github.com/novasql/core/internal/index/hash"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
)

// Database owns every layer of the storage/execution stack for one data
// directory: the disk manager and its scheduler, the buffer pool, the
// catalog, and a shared execution.Context executors are built against.
type Database struct {
	cfg     config.Config
	mgr     *disk.Manager
	sched   *disk.Scheduler
	pool    *buffer.Pool
	catalog *catalog.Catalog
	execCtx *execution.Context
}

// Open creates or reopens a database rooted at cfg.DataDir: one paged
// file (novasql.db) behind the buffer pool, and the catalog's JSON
// metadata store alongside it.
func Open(cfg config.Config) (*Database, error) {
	mgr, err := disk.NewManager(filepath.Join(cfg.DataDir, "novasql.db"))
	if err != nil {
		return nil, errs.Wrap(errs.BufferPool, "opening data file", err)
	}
	sched := disk.NewScheduler(mgr, cfg.SchedulerQueueLen)
	pool := buffer.NewPool(sched, cfg.PoolSize, cfg.ReplacerK)

	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		_ = sched.Shutdown()
		return nil, errs.Wrap(errs.BufferPool, "opening catalog", err)
	}

	db := &Database{cfg: cfg, mgr: mgr, sched: sched, pool: pool, catalog: cat}
	db.execCtx = execution.NewContext(cat, pool)
	return db, nil
}

// Close flushes every dirty page and shuts down the disk scheduler's
// worker goroutine.
func (db *Database) Close() error {
	if err := db.pool.FlushAllPages(); err != nil {
		return err
	}
	return db.sched.Shutdown()
}

// Catalog exposes the schema registry for read-only consumers (the shell's
// \dt/\di commands, per spec.md §6: "they read catalog snapshots only").
func (db *Database) Catalog() *catalog.Catalog { return db.catalog }

// Pool exposes the buffer pool, for tests asserting on pin counts and
// eviction behavior against a live database.
func (db *Database) Pool() *buffer.Pool { return db.pool }

// CreateTable allocates a table's first page and registers it in the
// catalog.
func (db *Database) CreateTable(name string, schema catalog.Schema) (*catalog.TableInfo, error) {
	heap, firstPageID, err := tableheap.Create(db.pool)
	if err != nil {
		return nil, errs.Wrap(errs.BufferPool, "allocating table "+name, err)
	}
	ti, err := db.catalog.CreateTable(name, schema, firstPageID)
	if err != nil {
		return nil, errs.Wrap(errs.Bind, "creating table "+name, err)
	}
	db.execCtx.RegisterHeap(name, heap)
	return ti, nil
}

// DropTable removes a table's catalog entry. If ifExists is false and
// the table is missing, it returns a BindError (spec.md §8 scenario 3:
// "DROP TABLE books; when absent -> error 'missing table'").
func (db *Database) DropTable(name string, ifExists bool) error {
	err := db.catalog.DropTable(name)
	if err == nil {
		db.execCtx.ForgetHeap(name)
		return nil
	}
	if errors.Is(err, catalog.ErrTableNotFound) {
		if ifExists {
			return nil
		}
		return errs.Wrap(errs.Bind, "missing table "+name, err)
	}
	return errs.Wrap(errs.Execution, "dropping table "+name, err)
}

// CreateIndex builds a fresh extendible hash index over table's
// keyColumns and registers it in the catalog.
func (db *Database) CreateIndex(table, name string, keyColumns []string) (*catalog.IndexInfo, error) {
	ti, err := db.catalog.GetTable(table)
	if err != nil {
		return nil, errs.Wrap(errs.Bind, "unknown table "+table, err)
	}
	keySize := 0
	for _, col := range keyColumns {
		idx := ti.Schema.ColumnIndex(col)
		if idx < 0 {
			return nil, errs.New(errs.Bind, "unknown key column "+col)
		}
		keySize += hash.ColumnKeyWidth(ti.Schema.Columns[idx].Type)
	}

	idx, headerPageID, err := hash.Create(db.pool, keySize, 0, hash.FNVHasher{}, hash.BytesComparator{})
	if err != nil {
		return nil, errs.Wrap(errs.BufferPool, "allocating index "+name, err)
	}
	ii, err := db.catalog.CreateIndex(table, name, keyColumns, headerPageID)
	if err != nil {
		return nil, errs.Wrap(errs.Bind, "creating index "+name, err)
	}
	db.execCtx.RegisterIndex(table, name, idx)
	return ii, nil
}

// Execute builds and drains an executor tree for node, returning every
// row it produces. Callers needing to stream results instead should call
// execution.Build directly against db.ExecContext().
func (db *Database) Execute(node plan.Node) ([]execution.Row, error) {
	ex, err := execution.Build(node, db.execCtx)
	if err != nil {
		return nil, errs.Wrap(errs.Plan, "building executor", err)
	}
	rows, err := execution.Collect(ex)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecContext exposes the shared execution.Context, for callers that
// want to build an Executor tree themselves (e.g. to stream results one
// row at a time instead of collecting them all).
func (db *Database) ExecContext() *execution.Context { return db.execCtx }
