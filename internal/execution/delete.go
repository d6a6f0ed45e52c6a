package execution

import (
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// DeleteExecutor marks every tuple its child produces as deleted in the
// heap and removes the matching entry from every index on the table
// (spec.md §4.6), emitting every deleted row, one per Next call, if
// node.Returning.
type DeleteExecutor struct {
	node  *plan.Delete
	child Executor
	ctx   *Context

	built    bool
	affected int64
	rows     []Row
	cursor   int
}

func NewDeleteExecutor(node *plan.Delete, child Executor, ctx *Context) *DeleteExecutor {
	return &DeleteExecutor{node: node, child: child, ctx: ctx}
}

func (e *DeleteExecutor) Init() error {
	e.built = false
	e.affected = 0
	e.rows = nil
	e.cursor = 0
	return e.child.Init()
}

func (e *DeleteExecutor) build() error {
	ti, heap, err := e.ctx.OpenTable(e.node.TableName)
	if err != nil {
		return err
	}
	infos, indexes, err := e.ctx.IndexesOn(e.node.TableName)
	if err != nil {
		return err
	}

	for {
		row, ok, err := e.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		if err := heap.MarkDelete(row.RID); err != nil {
			return errs.Wrap(errs.BufferPool, "deleting from "+e.node.TableName, err)
		}
		for i, ii := range infos {
			key, err := encodeIndexKey(ti, ii, row.Values)
			if err != nil {
				return errs.Wrap(errs.Index, "encoding key for index "+ii.Name, err)
			}
			if _, err := indexes[i].Remove(key); err != nil {
				return errs.Wrap(errs.Index, "removing from index "+ii.Name, err)
			}
		}

		e.affected++
		if e.node.Returning {
			e.rows = append(e.rows, row)
		}
	}

	e.built = true
	return nil
}

func (e *DeleteExecutor) Next() (Row, bool, error) {
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
