package execution

import (
	"fmt"

	"github.com/novasql/core/internal/plan"
)

// Executor is one pull-based physical operator. Init prepares the
// operator (opening table/index handles, resetting child iterators);
// Next returns the next row, or ok=false once the operator is exhausted
// (spec.md §4.6: "Next() advances one tuple; None terminates").
type Executor interface {
	Init() error
	Next() (Row, bool, error)
}

// Build compiles a plan.Node tree into its matching Executor tree,
// the one place plan-node-kind dispatch happens (grounded on the
// teacher's execPlan switch in internal/sql/executor/executor.go,
// generalized from a flat statement-kind switch to a recursive
// operator-tree build so every node can wrap its already-built
// children).
func Build(node plan.Node, ctx *Context) (Executor, error) {
	switch n := node.(type) {
	case *plan.SeqScan:
		return NewSeqScanExecutor(n, ctx), nil
	case *plan.IndexScan:
		return NewIndexScanExecutor(n, ctx), nil
	case *plan.Values:
		return NewValuesExecutor(n), nil
	case *plan.Projection:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewProjectionExecutor(n, child), nil
	case *plan.Filter:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewFilterExecutor(n, child), nil
	case *plan.Limit:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewLimitExecutor(n, child), nil
	case *plan.Insert:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewInsertExecutor(n, child, ctx), nil
	case *plan.Delete:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewDeleteExecutor(n, child, ctx), nil
	case *plan.HashJoin:
		left, err := Build(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := Build(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return NewHashJoinExecutor(n, left, right), nil
	case *plan.Aggregation:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return NewAggregationExecutor(n, child), nil
	default:
		return nil, fmt.Errorf("execution: unsupported plan node %T", n)
	}
}

// Collect drains executor to completion, for callers (the engine layer,
// tests) that want the whole result set rather than streaming it.
func Collect(ex Executor) ([]Row, error) {
	if err := ex.Init(); err != nil {
		return nil, err
	}
	var out []Row
	for {
		row, ok, err := ex.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, row)
	}
}
