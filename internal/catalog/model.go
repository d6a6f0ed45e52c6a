// Package catalog tracks schema: which tables and indexes exist, their
// column layouts, and where their first pages live. It persists metadata
// as JSON files alongside the data directory, following the teacher's
// TableMeta convention in internal/engine/db.go, generalized to also
// track indexes and to key entries by a stable OID rather than name
// alone.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/types"
)

// Column describes one field of a table's schema.
type Column struct {
	Name     string       `json:"name"`
	Type     types.TypeID `json:"type"`
	Nullable bool         `json:"nullable"`
	Default  *types.Value `json:"-"` // defaults are resolved at bind time, not persisted
}

// Schema is an ordered list of columns.
type Schema struct {
	Columns []Column `json:"columns"`
}

// ColumnIndex returns the position of name in the schema, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// TableInfo is the catalog's resolved handle for one table: its schema,
// stable identity, and the page where its TableHeap begins.
type TableInfo struct {
	OID         uuid.UUID   `json:"oid"`
	Name        string      `json:"name"`
	Schema      Schema      `json:"schema"`
	FirstPageID disk.PageId `json:"first_page_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IndexInfo is the catalog's resolved handle for one extendible hash
// index over a table.
type IndexInfo struct {
	OID          uuid.UUID   `json:"oid"`
	Name         string      `json:"name"`
	TableName    string      `json:"table_name"`
	KeyColumns   []string    `json:"key_columns"`
	HeaderPageID disk.PageId `json:"header_page_id"`
	CreatedAt    time.Time   `json:"created_at"`
}
