package execution

import "github.com/novasql/core/internal/plan"

// LimitExecutor emits at most node.Count tuples from its child.
type LimitExecutor struct {
	node    *plan.Limit
	child   Executor
	emitted int
}

func NewLimitExecutor(node *plan.Limit, child Executor) *LimitExecutor {
	return &LimitExecutor{node: node, child: child}
}

func (e *LimitExecutor) Init() error {
	e.emitted = 0
	return e.child.Init()
}

func (e *LimitExecutor) Next() (Row, bool, error) {
	if e.emitted >= e.node.Count {
		return Row{}, false, nil
	}
	row, ok, err := e.child.Next()
	if err != nil || !ok {
		return Row{}, false, err
	}
	e.emitted++
	return row, true, nil
}
