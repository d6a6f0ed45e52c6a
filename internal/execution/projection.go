package execution

import (
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/types"
)

// ProjectionExecutor applies node.Exprs to each child tuple, producing
// the plan's output schema (spec.md §4.6).
type ProjectionExecutor struct {
	node  *plan.Projection
	child Executor
}

func NewProjectionExecutor(node *plan.Projection, child Executor) *ProjectionExecutor {
	return &ProjectionExecutor{node: node, child: child}
}

func (e *ProjectionExecutor) Init() error { return e.child.Init() }

func (e *ProjectionExecutor) Next() (Row, bool, error) {
	row, ok, err := e.child.Next()
	if err != nil || !ok {
		return Row{}, false, err
	}
	childSchema := e.node.Child.OutputSchema()
	out := make([]types.Value, len(e.node.Exprs))
	for i, ex := range e.node.Exprs {
		v, err := ex.Evaluate(row.Values, childSchema)
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Execution, "evaluating projection expression", err)
		}
		out[i] = v
	}
	return Row{RID: row.RID, Values: out}, true, nil
}
