package execution

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/errs"
	"github.com/novasql/core/internal/expr"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/types"
)

// HashJoinExecutor builds an in-memory hash table over its right child,
// keyed by node.RightKeys, on the first Next call, then probes it with
// each left tuple using node.LeftKeys. The build side is always the right
// child; input sizes are not compared. Inner and left joins are supported.
// Key equality uses the typed-value serialization from internal/types so
// a VARCHAR and a numeric key never collide on their raw bytes the way a
// naive fmt.Sprintf("%v") key would.
type HashJoinExecutor struct {
	node        *plan.HashJoin
	left, right Executor

	built       bool
	buildSchema catalog.Schema
	probeSchema catalog.Schema
	table       map[string][]Row

	// probe state
	probeRow    Row
	probeOK     bool
	matches     []Row
	matchCursor int
}

func NewHashJoinExecutor(node *plan.HashJoin, left, right Executor) *HashJoinExecutor {
	return &HashJoinExecutor{node: node, left: left, right: right}
}

func (e *HashJoinExecutor) Init() error {
	if err := e.left.Init(); err != nil {
		return err
	}
	if err := e.right.Init(); err != nil {
		return err
	}
	e.built = false
	e.table = nil
	e.probeOK = false
	e.matches = nil
	e.matchCursor = 0
	return nil
}

func (e *HashJoinExecutor) build() error {
	e.buildSchema = e.node.Right.OutputSchema()
	e.probeSchema = e.node.Left.OutputSchema()
	e.table = make(map[string][]Row)
	for {
		row, ok, err := e.right.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key, err := joinKey(e.node.RightKeys, row.Values, e.buildSchema)
		if err != nil {
			return errs.Wrap(errs.Execution, "evaluating hash join build key", err)
		}
		e.table[key] = append(e.table[key], row)
	}
	e.built = true
	return nil
}

func (e *HashJoinExecutor) Next() (Row, bool, error) {
	if !e.built {
		if err := e.build(); err != nil {
			return Row{}, false, err
		}
	}

	for {
		if e.matchCursor < len(e.matches) {
			m := e.matches[e.matchCursor]
			e.matchCursor++
			return combineRows(e.probeRow, m), true, nil
		}

		row, ok, err := e.left.Next()
		if err != nil {
			return Row{}, false, err
		}
		if !ok {
			return Row{}, false, nil
		}
		e.probeRow = row

		key, err := joinKey(e.node.LeftKeys, row.Values, e.probeSchema)
		if err != nil {
			return Row{}, false, errs.Wrap(errs.Execution, "evaluating hash join probe key", err)
		}
		e.matches = e.table[key]
		e.matchCursor = 0

		if len(e.matches) > 0 {
			continue
		}
		if e.node.Type == plan.LeftJoin {
			nulls := make([]types.Value, len(e.buildSchema.Columns))
			for i, col := range e.buildSchema.Columns {
				nulls[i] = types.NullValue(col.Type)
			}
			return combineRows(row, Row{Values: nulls}), true, nil
		}
		// InnerJoin with no match: advance to the next left tuple.
	}
}

func combineRows(left, right Row) Row {
	out := make([]types.Value, 0, len(left.Values)+len(right.Values))
	out = append(out, left.Values...)
	out = append(out, right.Values...)
	return Row{RID: left.RID, Values: out}
}

// joinKey serializes the key expressions' values into one byte-distinct
// string, reusing internal/types.SerializeTo so values of different
// types never collide on their textual form.
func joinKey(keys []expr.Expression, values []types.Value, schema catalog.Schema) (string, error) {
	buf := make([]byte, 0, 16*len(keys))
	for _, k := range keys {
		v, err := k.Evaluate(values, schema)
		if err != nil {
			return "", err
		}
		if v.IsNull() {
			buf = append(buf, 0)
			continue
		}
		tmp := make([]byte, types.SerializedLen(v))
		n, err := types.SerializeTo(v, tmp)
		if err != nil {
			return "", err
		}
		buf = append(buf, byte(v.TypeID()))
		buf = append(buf, tmp[:n]...)
	}
	return string(buf), nil
}
