package execution

import (
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
)

// FilterExecutor emits only child tuples for which node.Predicate
// evaluates truthy (spec.md §4.6: "SQL 3-valued logic: NULL is not
// truthy").
type FilterExecutor struct {
	node  *plan.Filter
	child Executor
}

func NewFilterExecutor(node *plan.Filter, child Executor) *FilterExecutor {
	return &FilterExecutor{node: node, child: child}
}

func (e *FilterExecutor) Init() error { return e.child.Init() }

func (e *FilterExecutor) Next() (Row, bool, error) {
	schema := e.node.Child.OutputSchema()
	for {
		row, ok, err := e.child.Next()
		if err != nil || !ok {
			return Row{}, false, err
		}
		v, err := e.node.Predicate.Evaluate(row.Values, schema)
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Execution, "evaluating filter predicate", err)
		}
		if isTruthy(v) {
			return row, true, nil
		}
	}
}
