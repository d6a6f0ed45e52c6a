package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/types"
)

func TestValue_NullSentinelsRoundTrip(t *testing.T) {
	for _, tid := range []types.TypeID{
		types.Boolean, types.TinyInt, types.SmallInt, types.Integer,
		types.BigInt, types.Decimal, types.Varchar, types.Timestamp,
	} {
		v := types.NullValue(tid)
		require.True(t, v.IsNull(), tid.String())
		require.Equal(t, tid, v.TypeID())
	}
	require.False(t, types.NewInteger(0).IsNull())
	require.False(t, types.NewBoolean(false).IsNull())
}

func TestValue_WidenLadder(t *testing.T) {
	v, err := types.Widen(types.NewTinyInt(5), types.BigInt)
	require.NoError(t, err)
	require.Equal(t, types.BigInt, v.TypeID())
	require.Equal(t, "5", v.String())

	_, err = types.Widen(types.NewBigInt(5), types.TinyInt)
	require.Error(t, err)
}

func TestValue_NarrowingOutOfRangeFails(t *testing.T) {
	_, err := types.TryCastAs(types.NewInteger(1000), types.TinyInt)
	require.Error(t, err)
	var convErr *types.NumericConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestValue_NarrowingInRangeSucceeds(t *testing.T) {
	v, err := types.TryCastAs(types.NewInteger(100), types.TinyInt)
	require.NoError(t, err)
	require.Equal(t, "100", v.String())
}

func TestValue_VarcharNumericCoercion(t *testing.T) {
	v, err := types.TryCastAs(types.NewVarchar("42"), types.Integer)
	require.NoError(t, err)
	require.Equal(t, "42", v.String())

	s, err := types.TryCastAs(types.NewInteger(42), types.Varchar)
	require.NoError(t, err)
	require.Equal(t, "42", s.String())

	_, err = types.TryCastAs(types.NewVarchar("not-a-number"), types.Integer)
	require.Error(t, err)
}

func TestValue_ComparisonNullPropagates(t *testing.T) {
	eq, err := types.Eq(types.NullValue(types.Integer), types.NewInteger(1))
	require.NoError(t, err)
	require.Equal(t, types.Unknown, eq)

	lt, err := types.Lt(types.NewInteger(1), types.NewBigInt(2))
	require.NoError(t, err)
	require.Equal(t, types.True, lt)
}

func TestValue_ArithmeticNullPropagates(t *testing.T) {
	v, err := types.Add(types.NullValue(types.Integer), types.NewInteger(1))
	require.NoError(t, err)
	require.True(t, v.IsNull())
	require.Equal(t, types.Integer, v.TypeID())
}

func TestValue_DivisionByZero(t *testing.T) {
	_, err := types.Div(types.NewInteger(10), types.NewInteger(0))
	require.ErrorIs(t, err, types.ErrDivisionByZero)
}

func TestValue_KleeneLogic(t *testing.T) {
	require.Equal(t, types.False, types.Unknown.And(types.False))
	require.Equal(t, types.Unknown, types.Unknown.And(types.True))
	require.Equal(t, types.True, types.Unknown.Or(types.True))
	require.Equal(t, types.Unknown, types.Unknown.Or(types.False))
	require.Equal(t, types.Unknown, types.Unknown.Not())
}

func TestValue_SerializeRoundTrip(t *testing.T) {
	cases := []types.Value{
		types.NewBoolean(true),
		types.NewTinyInt(-12),
		types.NewSmallInt(1234),
		types.NewInteger(-99999),
		types.NewBigInt(123456789012),
		types.NewDecimal(3.25),
		types.NewVarchar("hello world"),
		types.NewTimestamp(1700000000000000),
		types.NullValue(types.Varchar),
		types.NullValue(types.Integer),
	}
	for _, v := range cases {
		buf := make([]byte, 2+len("hello world"))
		n, err := types.SerializeTo(v, buf)
		require.NoError(t, err)
		got, consumed, err := types.Deserialize(v.TypeID(), buf[:n])
		require.NoError(t, err)
		require.Equal(t, n, consumed)
		require.True(t, v.Equal(got))
	}
}
