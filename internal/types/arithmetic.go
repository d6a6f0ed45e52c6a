package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrDivisionByZero is returned by Div/Mod when the divisor is a concrete
// zero value (spec.md §4.6: "division by zero ... fatal for the
// statement").
var ErrDivisionByZero = errors.New("types: division by zero")

// arithResultType picks the widening result type of a binary arithmetic
// op between two numeric operands (spec.md §4.7).
func arithResultType(a, b TypeID) (TypeID, error) {
	if !a.isNumeric() || !b.isNumeric() {
		return Invalid, fmt.Errorf("types: arithmetic requires numeric operands, got %s and %s", a, b)
	}
	if a.rank() >= b.rank() {
		return a, nil
	}
	return b, nil
}

func widenPair(l, r Value) (Value, Value, TypeID, error) {
	target, err := arithResultType(l.tag, r.tag)
	if err != nil {
		return Value{}, Value{}, Invalid, err
	}
	cl, err := Widen(l, target)
	if err != nil {
		return Value{}, Value{}, Invalid, err
	}
	cr, err := Widen(r, target)
	if err != nil {
		return Value{}, Value{}, Invalid, err
	}
	return cl, cr, target, nil
}

// Add, Sub, Mul, Div, Mod implement pairwise numeric arithmetic at the
// widened result type. NULL operands propagate to a NULL result of that
// type (spec.md §4.6: "NULL poisons arithmetic").
func Add(l, r Value) (Value, error) { return arith(l, r, func(a, b float64) float64 { return a + b }) }
func Sub(l, r Value) (Value, error) { return arith(l, r, func(a, b float64) float64 { return a - b }) }
func Mul(l, r Value) (Value, error) { return arith(l, r, func(a, b float64) float64 { return a * b }) }

func Div(l, r Value) (Value, error) {
	cl, cr, target, err := widenPair(l, r)
	if err != nil {
		return Value{}, err
	}
	if cl.IsNull() || cr.IsNull() {
		return NullValue(target), nil
	}
	if cr.AsFloat64() == 0 {
		return Value{}, ErrDivisionByZero
	}
	if target == Decimal {
		return NewDecimal(cl.AsFloat64() / cr.AsFloat64()), nil
	}
	return castInt(cl.asInt64()/cr.asInt64(), target), nil
}

func Mod(l, r Value) (Value, error) {
	cl, cr, target, err := widenPair(l, r)
	if err != nil {
		return Value{}, err
	}
	if cl.IsNull() || cr.IsNull() {
		return NullValue(target), nil
	}
	if cr.AsFloat64() == 0 {
		return Value{}, ErrDivisionByZero
	}
	if target == Decimal {
		return NewDecimal(math.Mod(cl.AsFloat64(), cr.AsFloat64())), nil
	}
	return castInt(cl.asInt64()%cr.asInt64(), target), nil
}

func arith(l, r Value, op func(a, b float64) float64) (Value, error) {
	cl, cr, target, err := widenPair(l, r)
	if err != nil {
		return Value{}, err
	}
	if cl.IsNull() || cr.IsNull() {
		return NullValue(target), nil
	}
	result := op(cl.AsFloat64(), cr.AsFloat64())
	if target == Decimal {
		return NewDecimal(result), nil
	}
	return castInt(int64(result), target), nil
}
