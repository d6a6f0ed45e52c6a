package types

import (
	"fmt"
	"math"
	"strconv"
)

// Widen implicitly coerces v to target when target is equal or wider on
// the tinyint→smallint→int→bigint→decimal ladder (spec.md §4.7). It fails
// when target is narrower than v's type or either type is not numeric;
// callers pick the wider of two operand types before arithmetic or
// comparison and call Widen on each operand.
func Widen(v Value, target TypeID) (Value, error) {
	if v.tag == target {
		return v, nil
	}
	if !v.tag.isNumeric() || !target.isNumeric() || target.rank() < v.tag.rank() {
		return Value{}, fmt.Errorf("types: %s does not implicitly widen to %s", v.tag, target)
	}
	if v.IsNull() {
		return NullValue(target), nil
	}
	if target == Decimal {
		return NewDecimal(float64(v.asInt64())), nil
	}
	return castInt(v.asInt64(), target), nil
}

// TryCastAs explicitly casts v to target, the one place narrowing,
// varchar↔numeric and boolean conversions happen. It mirrors
// original_source's `Value::try_cast_as`, which several specific types
// leave as `todo!()`; this implementation completes all of them.
func TryCastAs(v Value, target TypeID) (Value, error) {
	if v.tag == target {
		return v, nil
	}
	if v.IsNull() {
		return NullValue(target), nil
	}

	switch {
	case v.tag.isNumeric() && target.isNumeric():
		return castNumeric(v, target)
	case v.tag.isNumeric() && target == Varchar:
		return NewVarchar(v.String()), nil
	case v.tag == Varchar && target.isNumeric():
		return parseNumeric(v.asString(), target)
	case v.tag == Boolean || target == Boolean:
		return Value{}, fmt.Errorf("types: cannot cast %s to %s: boolean only converts from/to NULL", v.tag, target)
	default:
		return Value{}, fmt.Errorf("types: unsupported cast from %s to %s", v.tag, target)
	}
}

func castNumeric(v Value, target TypeID) (Value, error) {
	if target.rank() >= v.tag.rank() {
		return Widen(v, target)
	}
	// Narrowing: range-check against the destination type.
	if v.tag == Decimal {
		f := v.asFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, &NumericConversionError{From: v.tag, To: target, Value: v.String()}
		}
		return rangeCheckedInt(int64(f), v, target)
	}
	return rangeCheckedInt(v.asInt64(), v, target)
}

func rangeCheckedInt(x int64, src Value, target TypeID) (Value, error) {
	lo, hi := intRange(target)
	if x < lo || x > hi {
		return Value{}, &NumericConversionError{From: src.tag, To: target, Value: src.String()}
	}
	return castInt(x, target), nil
}

func intRange(t TypeID) (lo, hi int64) {
	switch t {
	case TinyInt:
		return math.MinInt8 + 1, math.MaxInt8
	case SmallInt:
		return math.MinInt16 + 1, math.MaxInt16
	case Integer:
		return math.MinInt32 + 1, math.MaxInt32
	case BigInt:
		return math.MinInt64 + 1, math.MaxInt64
	default:
		return 0, 0
	}
}

func castInt(x int64, target TypeID) Value {
	switch target {
	case TinyInt:
		return NewTinyInt(int8(x))
	case SmallInt:
		return NewSmallInt(int16(x))
	case Integer:
		return NewInteger(int32(x))
	case BigInt:
		return NewBigInt(x)
	case Decimal:
		return NewDecimal(float64(x))
	default:
		return Value{}
	}
}

func parseNumeric(s string, target TypeID) (Value, error) {
	if target == Decimal {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, &NumericConversionError{From: Varchar, To: target, Value: s}
		}
		return NewDecimal(f), nil
	}
	x, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, &NumericConversionError{From: Varchar, To: target, Value: s}
	}
	return rangeCheckedInt(x, NewVarchar(s), target)
}
