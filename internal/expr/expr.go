// Package expr implements the planner's expression trees (spec.md's
// ExpressionRef): the small set of node kinds the executor pipeline needs
// to evaluate WHERE predicates, projections, join conditions and
// aggregate arguments. SQL parsing/binding is out of scope (spec.md §1);
// a binder builds these trees directly against internal/catalog.Schema
// column indices, the same "resolve once, evaluate many times" shape the
// teacher's internal/sql/planner uses for its WhereEq/Assignment nodes,
// generalized here to a full expression tree so Filter/Projection/
// HashJoin/Aggregation can share one evaluator.
package expr

import (
	"fmt"

	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/types"
)

// Expression is one node of a bound expression tree. Evaluate resolves it
// against a single tuple's decoded values (spec.md §4.6:
// "evaluate(tuple, schema) -> Value"); EvaluateJoin resolves it against a
// pair of tuples from a join's two input schemas
// ("evaluate_join(left, ls, right, rs) -> Value").
type Expression interface {
	// ReturnType reports the SQL type Evaluate produces, so callers
	// (Projection's output schema, Aggregation's group key width) can
	// size storage without evaluating a row.
	ReturnType(schema catalog.Schema) (types.TypeID, error)
	Evaluate(values []types.Value, schema catalog.Schema) (types.Value, error)
	EvaluateJoin(left []types.Value, leftSchema catalog.Schema, right []types.Value, rightSchema catalog.Schema) (types.Value, error)
}

// Constant is a literal value, independent of any row.
type Constant struct {
	Value types.Value
}

func (c *Constant) ReturnType(catalog.Schema) (types.TypeID, error) { return c.Value.TypeID(), nil }
func (c *Constant) Evaluate([]types.Value, catalog.Schema) (types.Value, error) {
	return c.Value, nil
}
func (c *Constant) EvaluateJoin([]types.Value, catalog.Schema, []types.Value, catalog.Schema) (types.Value, error) {
	return c.Value, nil
}

// ColumnValue references one column by index within a side of the tuple.
// Side distinguishes the left/right input of a join; for single-child
// operators (Filter, Projection, SeqScan predicates) Side is always Left.
type ColumnValue struct {
	Side  JoinSide
	Index int
}

// JoinSide selects which child tuple a ColumnValue is read from in a
// join's combined expression context.
type JoinSide uint8

const (
	Left JoinSide = iota
	Right
)

func (c *ColumnValue) ReturnType(schema catalog.Schema) (types.TypeID, error) {
	if c.Index < 0 || c.Index >= len(schema.Columns) {
		return types.Invalid, fmt.Errorf("expr: column index %d out of range for schema of %d columns", c.Index, len(schema.Columns))
	}
	return schema.Columns[c.Index].Type, nil
}

func (c *ColumnValue) Evaluate(values []types.Value, schema catalog.Schema) (types.Value, error) {
	if c.Index < 0 || c.Index >= len(values) {
		return types.Value{}, fmt.Errorf("expr: column index %d out of range for tuple of %d values", c.Index, len(values))
	}
	return values[c.Index], nil
}

func (c *ColumnValue) EvaluateJoin(left []types.Value, leftSchema catalog.Schema, right []types.Value, rightSchema catalog.Schema) (types.Value, error) {
	switch c.Side {
	case Left:
		return c.Evaluate(left, leftSchema)
	default:
		return c.Evaluate(right, rightSchema)
	}
}

// CompareOp enumerates the comparison operators a Comparison node supports.
type CompareOp uint8

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Comparison evaluates Left <op> Right to a BOOLEAN value, following
// spec.md §4.7's 3-valued logic: either operand NULL produces a NULL
// BOOLEAN, never a Go panic or a silently-false comparison.
type Comparison struct {
	Op          CompareOp
	Left, Right Expression
}

func (c *Comparison) ReturnType(catalog.Schema) (types.TypeID, error) { return types.Boolean, nil }

func (c *Comparison) Evaluate(values []types.Value, schema catalog.Schema) (types.Value, error) {
	l, err := c.Left.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	r, err := c.Right.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	return c.apply(l, r)
}

func (c *Comparison) EvaluateJoin(left []types.Value, leftSchema catalog.Schema, right []types.Value, rightSchema catalog.Schema) (types.Value, error) {
	l, err := c.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	r, err := c.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	return c.apply(l, r)
}

func (c *Comparison) apply(l, r types.Value) (types.Value, error) {
	var (
		tb  types.TriBool
		err error
	)
	switch c.Op {
	case Eq:
		tb, err = types.Eq(l, r)
	case Ne:
		tb, err = types.Ne(l, r)
	case Lt:
		tb, err = types.Lt(l, r)
	case Le:
		tb, err = types.Le(l, r)
	case Gt:
		tb, err = types.Gt(l, r)
	case Ge:
		tb, err = types.Ge(l, r)
	default:
		return types.Value{}, fmt.Errorf("expr: unknown comparison operator %v", c.Op)
	}
	if err != nil {
		return types.Value{}, err
	}
	return triBoolToValue(tb), nil
}

func triBoolToValue(tb types.TriBool) types.Value {
	switch tb {
	case types.True:
		return types.NewBoolean(true)
	case types.False:
		return types.NewBoolean(false)
	default:
		return types.NullValue(types.Boolean)
	}
}

// LogicOp enumerates Kleene 3-valued logical connectives.
type LogicOp uint8

const (
	And LogicOp = iota
	Or
	Not
)

// Logic evaluates AND/OR/NOT over BOOLEAN operands with SQL's 3-valued
// semantics (spec.md §4.6: "logical AND/OR follow Kleene 3-valued
// logic"). Right is nil for Not.
type Logic struct {
	Op          LogicOp
	Left, Right Expression
}

func (l *Logic) ReturnType(catalog.Schema) (types.TypeID, error) { return types.Boolean, nil }

func (l *Logic) Evaluate(values []types.Value, schema catalog.Schema) (types.Value, error) {
	lv, err := l.Left.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	if l.Op == Not {
		return triBoolToValue(valueToTriBool(lv).Not()), nil
	}
	rv, err := l.Right.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	return l.combine(lv, rv)
}

func (l *Logic) EvaluateJoin(left []types.Value, leftSchema catalog.Schema, right []types.Value, rightSchema catalog.Schema) (types.Value, error) {
	lv, err := l.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	if l.Op == Not {
		return triBoolToValue(valueToTriBool(lv).Not()), nil
	}
	rv, err := l.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	return l.combine(lv, rv)
}

func (l *Logic) combine(lv, rv types.Value) (types.Value, error) {
	a, b := valueToTriBool(lv), valueToTriBool(rv)
	switch l.Op {
	case And:
		return triBoolToValue(a.And(b)), nil
	case Or:
		return triBoolToValue(a.Or(b)), nil
	default:
		return types.Value{}, fmt.Errorf("expr: unknown logic operator %v", l.Op)
	}
}

func valueToTriBool(v types.Value) types.TriBool {
	if v.IsNull() {
		return types.Unknown
	}
	return types.FromBool(v.Equal(types.NewBoolean(true)))
}

// ArithOp enumerates the five arithmetic operators an Arithmetic node
// supports (spec.md §4.7's pairwise numeric table).
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

// Arithmetic evaluates Left <op> Right at the widened numeric result
// type, propagating NULL per spec.md §4.7 ("NULL poisons arithmetic").
type Arithmetic struct {
	Op          ArithOp
	Left, Right Expression
}

func (a *Arithmetic) ReturnType(schema catalog.Schema) (types.TypeID, error) {
	lt, err := a.Left.ReturnType(schema)
	if err != nil {
		return types.Invalid, err
	}
	rt, err := a.Right.ReturnType(schema)
	if err != nil {
		return types.Invalid, err
	}
	if lt >= rt {
		return lt, nil
	}
	return rt, nil
}

func (a *Arithmetic) Evaluate(values []types.Value, schema catalog.Schema) (types.Value, error) {
	l, err := a.Left.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	r, err := a.Right.Evaluate(values, schema)
	if err != nil {
		return types.Value{}, err
	}
	return a.apply(l, r)
}

func (a *Arithmetic) EvaluateJoin(left []types.Value, leftSchema catalog.Schema, right []types.Value, rightSchema catalog.Schema) (types.Value, error) {
	l, err := a.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	r, err := a.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return types.Value{}, err
	}
	return a.apply(l, r)
}

func (a *Arithmetic) apply(l, r types.Value) (types.Value, error) {
	switch a.Op {
	case Add:
		return types.Add(l, r)
	case Sub:
		return types.Sub(l, r)
	case Mul:
		return types.Mul(l, r)
	case Div:
		return types.Div(l, r)
	case Mod:
		return types.Mod(l, r)
	default:
		return types.Value{}, fmt.Errorf("expr: unknown arithmetic operator %v", a.Op)
	}
}
