package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/types"
)

// AggregationExecutor groups its child's tuples by node.GroupBys and
// computes node.Aggregates per group, materializing every group on the
// first Next call (spec.md §4.6: "Group-by + aggregate functions ...
// with single-group fallback"). GROUP BY stays enabled here — see
// DESIGN.md on the source's disabled group_by branch, which spec.md
// resolves explicitly in favor of keeping it.
type AggregationExecutor struct {
	node  *plan.Aggregation
	child Executor

	built  bool
	schema catalog.Schema
	groups []*aggGroup
	cursor int
}

type aggGroup struct {
	key    []types.Value
	states []aggState
}

// aggState accumulates one AggregateExpr's running value across a group.
type aggState struct {
	fn           plan.AggregateFunc
	rowCount     int64 // every row seen, for COUNT(*)
	nonNullCount int64 // non-null argument values seen, for COUNT(expr)
	sum          types.Value
	sumSet       bool
	min          types.Value
	max          types.Value
	minMax       bool
}

func NewAggregationExecutor(node *plan.Aggregation, child Executor) *AggregationExecutor {
	return &AggregationExecutor{node: node, child: child}
}

func (e *AggregationExecutor) Init() error {
	e.built = false
	e.groups = nil
	e.cursor = 0
	return e.child.Init()
}

func (e *AggregationExecutor) build() error {
	e.schema = e.node.Child.OutputSchema()
	index := make(map[string]*aggGroup)

	for {
		row, ok, err := e.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		keyVals := make([]types.Value, len(e.node.GroupBys))
		for i, g := range e.node.GroupBys {
			v, err := g.Evaluate(row.Values, e.schema)
			if err != nil {
				return errs.Wrap(errs.Execution, "evaluating GROUP BY expression", err)
			}
			keyVals[i] = v
		}
		keyStr, err := joinKey(e.node.GroupBys, row.Values, e.schema)
		if err != nil {
			return errs.Wrap(errs.Execution, "hashing GROUP BY key", err)
		}

		g, ok := index[keyStr]
		if !ok {
			g = &aggGroup{key: keyVals, states: make([]aggState, len(e.node.Aggregates))}
			for i, a := range e.node.Aggregates {
				g.states[i] = aggState{fn: a.Func}
			}
			index[keyStr] = g
			e.groups = append(e.groups, g)
		}

		for i, a := range e.node.Aggregates {
			if err := applyAggregate(&g.states[i], a, row.Values, e.schema); err != nil {
				return errs.Wrap(errs.Execution, "evaluating aggregate", err)
			}
		}
	}

	// Single-group fallback: no GROUP BY and no input rows still produce
	// one group (COUNT(*) of an empty table is 0, not "no rows").
	if len(e.node.GroupBys) == 0 && len(e.groups) == 0 {
		g := &aggGroup{states: make([]aggState, len(e.node.Aggregates))}
		for i, a := range e.node.Aggregates {
			g.states[i] = aggState{fn: a.Func}
		}
		e.groups = append(e.groups, g)
	}

	e.built = true
	return nil
}

func applyAggregate(st *aggState, a plan.AggregateExpr, values []types.Value, schema catalog.Schema) error {
	st.rowCount++
	if a.Func == plan.CountStar {
		return nil
	}

	v, err := a.Arg.Evaluate(values, schema)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}

	switch a.Func {
	case plan.Count:
		st.nonNullCount++
	case plan.Sum:
		if !st.sumSet {
			st.sum = v
			st.sumSet = true
			return nil
		}
		sum, err := types.Add(st.sum, v)
		if err != nil {
			return err
		}
		st.sum = sum
	case plan.Min:
		if !st.minMax {
			st.min = v
			st.minMax = true
			return nil
		}
		lt, err := types.Lt(v, st.min)
		if err != nil {
			return err
		}
		if lt == types.True {
			st.min = v
		}
	case plan.Max:
		if !st.minMax {
			st.max = v
			st.minMax = true
			return nil
		}
		gt, err := types.Gt(v, st.max)
		if err != nil {
			return err
		}
		if gt == types.True {
			st.max = v
		}
	}
	return nil
}

func (e *AggregationExecutor) Next() (Row, bool, error) {
	if !e.built {
		if err := e.build(); err != nil {
			return Row{}, false, err
		}
	}
	if e.cursor >= len(e.groups) {
		return Row{}, false, nil
	}
	g := e.groups[e.cursor]
	e.cursor++

	out := make([]types.Value, 0, len(g.key)+len(e.node.Aggregates))
	out = append(out, g.key...)
	for i, a := range e.node.Aggregates {
		st := g.states[i]
		switch a.Func {
		case plan.CountStar:
			out = append(out, types.NewBigInt(st.rowCount))
		case plan.Count:
			out = append(out, types.NewBigInt(st.nonNullCount))
		case plan.Sum:
			if st.sumSet {
				out = append(out, st.sum)
			} else {
				out = append(out, types.NullValue(types.BigInt))
			}
		case plan.Min:
			if st.minMax {
				out = append(out, st.min)
			} else {
				out = append(out, types.NullValue(types.BigInt))
			}
		case plan.Max:
			if st.minMax {
				out = append(out, st.max)
			} else {
				out = append(out, types.NullValue(types.BigInt))
			}
		}
	}
	return Row{Values: out}, true, nil
}
