package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
)

// SeqScanExecutor walks a table's full tuple chain, skipping
// tombstoned (is_deleted) slots and, if the plan carries a pushed-down
// predicate, rows that don't satisfy it (spec.md §4.6: "respects
// is_deleted tombstones ... may push a filter predicate").
type SeqScanExecutor struct {
	node *plan.SeqScan
	ctx  *Context

	schema catalog.Schema
	it     *tableheap.Iterator
}

func NewSeqScanExecutor(node *plan.SeqScan, ctx *Context) *SeqScanExecutor {
	return &SeqScanExecutor{node: node, ctx: ctx}
}

func (e *SeqScanExecutor) Init() error {
	ti, heap, err := e.ctx.OpenTable(e.node.TableName)
	if err != nil {
		return err
	}
	e.schema = ti.Schema
	e.it = heap.Begin()
	return nil
}

func (e *SeqScanExecutor) Next() (Row, bool, error) {
	for {
		rid, data, meta, ok := e.it.Next()
		if !ok {
			return Row{}, false, nil
		}
		if meta.IsDeleted {
			continue
		}
		values, err := tableheap.Decode(e.schema, data)
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Tuple, "decoding "+e.node.TableName, err)
		}
		if e.node.Predicate != nil {
			v, err := e.node.Predicate.Evaluate(values, e.schema)
			if err != nil {
				return Row{}, false, errs.Wrap(errs.Execution, "evaluating predicate", err)
			}
			if !isTruthy(v) {
				continue
			}
		}
		return Row{RID: rid, Values: values}, true, nil
	}
}
