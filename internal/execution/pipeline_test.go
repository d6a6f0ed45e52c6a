package execution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/execution"
	"github.com/novasql/core/internal/expr"
	"github.com/novasql/core/internal/plan"
	"github.com/novasql/core/internal/types"
)

func intSchema() catalog.Schema {
	return catalog.Schema{Columns: []catalog.Column{{Name: "n", Type: types.Integer}}}
}

func lit(v types.Value) expr.Expression { return &expr.Constant{Value: v} }

func drain(t *testing.T, ex execution.Executor) []execution.Row {
	t.Helper()
	require.NoError(t, ex.Init())
	var rows []execution.Row
	for {
		row, ok, err := ex.Next()
		require.NoError(t, err)
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestLimitStopsAtCount(t *testing.T) {
	schema := intSchema()
	values := plan.NewValues(schema, [][]expr.Expression{
		{lit(types.NewInteger(1))}, {lit(types.NewInteger(2))}, {lit(types.NewInteger(3))},
	})
	limit := plan.NewLimit(values, 2)

	ex := execution.NewLimitExecutor(limit, execution.NewValuesExecutor(values))
	rows := drain(t, ex)
	require.Len(t, rows, 2)
	require.Equal(t, int32(1), int32(rows[0].Values[0].AsFloat64()))
	require.Equal(t, int32(2), int32(rows[1].Values[0].AsFloat64()))
}

func TestLimitZeroEmitsNothing(t *testing.T) {
	schema := intSchema()
	values := plan.NewValues(schema, [][]expr.Expression{{lit(types.NewInteger(1))}})
	limit := plan.NewLimit(values, 0)

	ex := execution.NewLimitExecutor(limit, execution.NewValuesExecutor(values))
	rows := drain(t, ex)
	require.Empty(t, rows)
}

func TestFilterDropsNullPredicateRows(t *testing.T) {
	schema := intSchema()
	values := plan.NewValues(schema, [][]expr.Expression{
		{lit(types.NewInteger(1))}, {lit(types.NullValue(types.Integer))}, {lit(types.NewInteger(3))},
	})
	pred := &expr.Comparison{Op: expr.Gt, Left: &expr.ColumnValue{Index: 0}, Right: lit(types.NewInteger(0))}
	filter := plan.NewFilter(values, pred)

	ex := execution.NewFilterExecutor(filter, execution.NewValuesExecutor(values))
	rows := drain(t, ex)
	require.Len(t, rows, 2)
	require.Equal(t, int32(1), int32(rows[0].Values[0].AsFloat64()))
	require.Equal(t, int32(3), int32(rows[1].Values[0].AsFloat64()))
}

func TestProjectionAppliesExpressions(t *testing.T) {
	schema := intSchema()
	values := plan.NewValues(schema, [][]expr.Expression{{lit(types.NewInteger(5))}})
	doubled := &expr.Arithmetic{Op: expr.Add, Left: &expr.ColumnValue{Index: 0}, Right: &expr.ColumnValue{Index: 0}}
	proj := plan.NewProjection(schema, values, []expr.Expression{doubled})

	ex := execution.NewProjectionExecutor(proj, execution.NewValuesExecutor(values))
	rows := drain(t, ex)
	require.Len(t, rows, 1)
	require.Equal(t, int32(10), int32(rows[0].Values[0].AsFloat64()))
}
