package expr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/expr"
	"github.com/novasql/core/internal/types"
)

func intSchema() catalog.Schema {
	return catalog.Schema{Columns: []catalog.Column{
		{Name: "a", Type: types.Integer},
		{Name: "b", Type: types.Integer},
	}}
}

func TestComparisonNullPropagatesToNull(t *testing.T) {
	schema := intSchema()
	cmp := &expr.Comparison{Op: expr.Eq, Left: &expr.ColumnValue{Index: 0}, Right: &expr.Constant{Value: types.NewInteger(1)}}

	v, err := cmp.Evaluate([]types.Value{types.NullValue(types.Integer), types.NewInteger(2)}, schema)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestLogicAndShortCircuitsToFalseEvenWithNullOperand(t *testing.T) {
	// FALSE AND NULL = FALSE (Kleene): a known-false operand dominates.
	l := &expr.Logic{Op: expr.And, Left: &expr.Constant{Value: types.NewBoolean(false)}, Right: &expr.Constant{Value: types.NullValue(types.Boolean)}}
	v, err := l.Evaluate(nil, catalog.Schema{})
	require.NoError(t, err)
	require.False(t, v.IsNull())
	require.True(t, v.Equal(types.NewBoolean(false)))
}

func TestLogicOrWithNullAndUnknownIsUnknown(t *testing.T) {
	// UNKNOWN OR UNKNOWN = UNKNOWN.
	l := &expr.Logic{Op: expr.Or, Left: &expr.Constant{Value: types.NullValue(types.Boolean)}, Right: &expr.Constant{Value: types.NullValue(types.Boolean)}}
	v, err := l.Evaluate(nil, catalog.Schema{})
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestLogicNotIgnoresRight(t *testing.T) {
	l := &expr.Logic{Op: expr.Not, Left: &expr.Constant{Value: types.NewBoolean(true)}}
	v, err := l.Evaluate(nil, catalog.Schema{})
	require.NoError(t, err)
	require.True(t, v.Equal(types.NewBoolean(false)))
}

func TestArithmeticNullPoisonsResult(t *testing.T) {
	a := &expr.Arithmetic{Op: expr.Add, Left: &expr.Constant{Value: types.NullValue(types.Integer)}, Right: &expr.Constant{Value: types.NewInteger(5)}}
	v, err := a.Evaluate(nil, catalog.Schema{})
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestColumnValueJoinSideSelectsCorrectTuple(t *testing.T) {
	schema := intSchema()
	leftVals := []types.Value{types.NewInteger(1), types.NewInteger(2)}
	rightVals := []types.Value{types.NewInteger(10), types.NewInteger(20)}

	leftCol := &expr.ColumnValue{Side: expr.Left, Index: 1}
	v, err := leftCol.EvaluateJoin(leftVals, schema, rightVals, schema)
	require.NoError(t, err)
	require.Equal(t, int32(2), int32(v.AsFloat64()))

	rightCol := &expr.ColumnValue{Side: expr.Right, Index: 0}
	v, err = rightCol.EvaluateJoin(leftVals, schema, rightVals, schema)
	require.NoError(t, err)
	require.Equal(t, int32(10), int32(v.AsFloat64()))
}

func TestColumnValueOutOfRangeErrors(t *testing.T) {
	schema := intSchema()
	col := &expr.ColumnValue{Index: 5}
	_, err := col.Evaluate([]types.Value{types.NewInteger(1)}, schema)
	require.Error(t, err)
}
