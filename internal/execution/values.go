package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// ValuesExecutor emits the literal rows carried in the plan (spec.md
// §4.6: "Values: Emits literal rows from the plan"), e.g. the
// right-hand side of `INSERT INTO t VALUES (...), (...)`.
type ValuesExecutor struct {
	node   *plan.Values
	cursor int
}

func NewValuesExecutor(node *plan.Values) *ValuesExecutor {
	return &ValuesExecutor{node: node}
}

func (e *ValuesExecutor) Init() error {
	e.cursor = 0
	return nil
}

func (e *ValuesExecutor) Next() (Row, bool, error) {
	if e.cursor >= len(e.node.Rows) {
		return Row{}, false, nil
	}
	row := e.node.Rows[e.cursor]
	e.cursor++

	values := make([]types.Value, len(row))
	for i, ex := range row {
		v, err := ex.Evaluate(nil, catalog.Schema{})
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Execution, "evaluating VALUES row", err)
		}
		values[i] = v
	}
	return Row{RID: tableheap.InvalidRID, Values: values}, true, nil
}
