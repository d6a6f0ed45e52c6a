package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/index/hash"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// IndexScanExecutor resolves a constant key through a named index and
// fetches each matching tuple from the table's heap (spec.md §4.6:
// "Given a constant key, returns the RID(s) from an index, then fetches
// each tuple").
type IndexScanExecutor struct {
	node *plan.IndexScan
	ctx  *Context

	ti     *catalog.TableInfo
	heap   *tableheap.TableHeap
	rids   []tableheap.RID
	cursor int
}

func NewIndexScanExecutor(node *plan.IndexScan, ctx *Context) *IndexScanExecutor {
	return &IndexScanExecutor{node: node, ctx: ctx}
}

func (e *IndexScanExecutor) Init() error {
	ti, heap, err := e.ctx.OpenTable(e.node.TableName)
	if err != nil {
		return err
	}
	ii, idx, err := e.ctx.OpenIndex(e.node.TableName, e.node.IndexName)
	if err != nil {
		return err
	}
	e.ti = ti
	e.heap = heap

	keyVals := make([]types.Value, len(e.node.Key))
	for i, ke := range e.node.Key {
		v, err := ke.Evaluate(nil, catalog.Schema{})
		if err != nil {
			return errs.Wrap(errs.Plan, "evaluating index scan key", err)
		}
		keyVals[i] = v
	}
	colTypes := make([]types.TypeID, len(ii.KeyColumns))
	for i, col := range ii.KeyColumns {
		colTypes[i] = ti.Schema.Columns[ti.Schema.ColumnIndex(col)].Type
	}
	key, err := hash.EncodeKey(keyVals, colTypes)
	if err != nil {
		return errs.Wrap(errs.Index, "encoding index scan key", err)
	}

	rids, err := idx.GetValue(key)
	if err != nil {
		return errs.Wrap(errs.Index, "looking up "+e.node.IndexName, err)
	}
	e.rids = rids
	return nil
}

func (e *IndexScanExecutor) Next() (Row, bool, error) {
	for e.cursor < len(e.rids) {
		rid := e.rids[e.cursor]
		e.cursor++

		data, _, err := e.heap.GetTuple(rid)
		if err != nil {
			// Stale/dangling index entry (deleted tuple, reclaimed slot):
			// skip it rather than fail the whole scan.
			continue
		}
		values, err := tableheap.Decode(e.ti.Schema, data)
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Tuple, "decoding "+e.node.TableName, err)
		}
		return Row{RID: rid, Values: values}, true, nil
	}
	return Row{}, false, nil
}
