package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// InsertExecutor materializes child tuples, reorders/defaults them per
// node.ColumnMapping, inserts each into the table's heap, updates every
// index on the table, and (if node.Returning) re-emits every inserted row,
// one per Next call, the same materialize-on-first-next-then-stream shape
// HashJoin and Aggregation use for their own stateful build phase. A
// duplicate key on any index is fatal for the statement — previously
// inserted tuples in the same statement are not rolled back (spec.md §7:
// "no partial commits ... acceptable for the teaching core").
type InsertExecutor struct {
	node  *plan.Insert
	child Executor
	ctx   *Context

	built    bool
	affected int64
	rows     []Row
	cursor   int
}

func NewInsertExecutor(node *plan.Insert, child Executor, ctx *Context) *InsertExecutor {
	return &InsertExecutor{node: node, child: child, ctx: ctx}
}

func (e *InsertExecutor) Init() error {
	e.built = false
	e.affected = 0
	e.rows = nil
	e.cursor = 0
	return e.child.Init()
}

func (e *InsertExecutor) build() error {
	ti, heap, err := e.ctx.OpenTable(e.node.TableName)
	if err != nil {
		return err
	}
	infos, indexes, err := e.ctx.IndexesOn(e.node.TableName)
	if err != nil {
		return err
	}

	for {
		childRow, ok, err := e.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		values, err := mapInsertValues(ti.Schema, e.node.ColumnMapping, childRow.Values)
		if err != nil {
			return errs.Wrap(errs.Execution, "mapping insert values", err)
		}

		data, err := tableheap.Encode(ti.Schema, values)
		if err != nil {
			return errs.Wrap(errs.Tuple, "encoding inserted tuple", err)
		}
		rid, err := heap.InsertTuple(data)
		if err != nil {
			return errs.Wrap(errs.BufferPool, "inserting into "+e.node.TableName, err)
		}

		for i, ii := range infos {
			key, err := encodeIndexKey(ti, ii, values)
			if err != nil {
				return errs.Wrap(errs.Index, "encoding key for index "+ii.Name, err)
			}
			if err := indexes[i].Insert(key, rid); err != nil {
				return errs.Wrap(errs.Index, "inserting into index "+ii.Name, err)
			}
		}

		e.affected++
		if e.node.Returning {
			e.rows = append(e.rows, Row{RID: rid, Values: values})
		}
	}

	e.built = true
	return nil
}

func (e *InsertExecutor) Next() (Row, bool, error) {
	if !e.built {
		if err := e.build(); err != nil {
			return Row{}, false, err
		}
	}
	if !e.node.Returning {
		if e.cursor > 0 {
			return Row{}, false, nil
		}
		e.cursor++
		return Row{RID: tableheap.InvalidRID, Values: []types.Value{types.NewBigInt(e.affected)}}, true, nil
	}
	if e.cursor >= len(e.rows) {
		return Row{}, false, nil
	}
	row := e.rows[e.cursor]
	e.cursor++
	return row, true, nil
}

// mapInsertValues builds one row in table-column order from child's
// values per mapping: mapping[i] >= 0 selects child value mapping[i];
// mapping[i] == -1 uses the column's default, or NULL if nullable and no
// default is set, and fails if the column is NOT NULL with neither
// (spec.md §4.6: "Validated at bind time to ensure non-null columns
// either are provided or have non-null defaults" — enforced again here
// since this package does not trust the binder to have run).
func mapInsertValues(schema catalog.Schema, mapping []int, childValues []types.Value) ([]types.Value, error) {
	out := make([]types.Value, len(schema.Columns))
	for i, col := range schema.Columns {
		idx := -1
		if i < len(mapping) {
			idx = mapping[i]
		}
		switch {
		case idx >= 0:
			out[i] = childValues[idx]
		case col.Default != nil:
			out[i] = *col.Default
		case col.Nullable:
			out[i] = types.NullValue(col.Type)
		default:
			return nil, errs.New(errs.Execution, "column "+col.Name+" is NOT NULL and has no value or default")
		}
	}
	return out, nil
}
