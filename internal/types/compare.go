package types

import (
	"fmt"
	"strings"
)

// TriBool is a Kleene three-valued logic result: True, False or Unknown
// (SQL NULL). Comparisons and AND/OR/NOT all produce a TriBool; only a
// WHERE clause's final result coerces Unknown to "not selected".
type TriBool uint8

const (
	Unknown TriBool = iota
	False
	True
)

// FromBool lifts a concrete Go bool into TriBool.
func FromBool(b bool) TriBool {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether t is definitely true; used to decide whether a
// row survives a WHERE/JOIN predicate.
func (t TriBool) IsTrue() bool { return t == True }

// And implements Kleene conjunction: NULL AND false = false; NULL AND
// true = NULL.
func (t TriBool) And(o TriBool) TriBool {
	if t == False || o == False {
		return False
	}
	if t == Unknown || o == Unknown {
		return Unknown
	}
	return True
}

// Or implements Kleene disjunction: NULL OR true = true; NULL OR false = NULL.
func (t TriBool) Or(o TriBool) TriBool {
	if t == True || o == True {
		return True
	}
	if t == Unknown || o == Unknown {
		return Unknown
	}
	return False
}

// Not implements Kleene negation: NOT NULL = NULL.
func (t TriBool) Not() TriBool {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// commonCompareType picks the representation two operand types compare
// under: the wider of two numeric types, or a common numeric/string
// representation when one side is Varchar (spec.md §4.7: "equality
// between varchar and numeric first coerces both to a common
// representation"). We choose Decimal as that common representation.
func commonCompareType(a, b TypeID) (TypeID, error) {
	if a == b {
		return a, nil
	}
	if a.isNumeric() && b.isNumeric() {
		if a.rank() >= b.rank() {
			return a, nil
		}
		return b, nil
	}
	if (a.isNumeric() && b == Varchar) || (a == Varchar && b.isNumeric()) {
		return Decimal, nil
	}
	return Invalid, fmt.Errorf("types: %s and %s are not comparable", a, b)
}

func coerceForCompare(v Value, target TypeID) (Value, error) {
	if v.tag == target {
		return v, nil
	}
	return TryCastAs(v, target)
}

// Compare3 returns l<r, l==r, l>r as TriBool, propagating Unknown when
// either side is NULL (spec.md §4.7: "NULL poisons ... comparison").
func Compare3(l, r Value) (lt, eq, gt TriBool, err error) {
	if l.tag == Boolean && r.tag == Boolean {
		if l.IsNull() || r.IsNull() {
			return Unknown, Unknown, Unknown, nil
		}
		lb, rb := l.asBool(), r.asBool()
		return FromBool(!lb && rb), FromBool(lb == rb), FromBool(lb && !rb), nil
	}

	target, err := commonCompareType(l.tag, r.tag)
	if err != nil {
		return Unknown, Unknown, Unknown, err
	}
	cl, err := coerceForCompare(l, target)
	if err != nil {
		return Unknown, Unknown, Unknown, err
	}
	cr, err := coerceForCompare(r, target)
	if err != nil {
		return Unknown, Unknown, Unknown, err
	}
	if cl.IsNull() || cr.IsNull() {
		return Unknown, Unknown, Unknown, nil
	}

	if target == Varchar {
		c := strings.Compare(cl.asString(), cr.asString())
		return FromBool(c < 0), FromBool(c == 0), FromBool(c > 0), nil
	}
	a, b := cl.AsFloat64(), cr.AsFloat64()
	return FromBool(a < b), FromBool(a == b), FromBool(a > b), nil
}

// Eq, Lt, Le, Gt, Ge are convenience wrappers over Compare3 for the
// expression evaluator's comparison operators.
func Eq(l, r Value) (TriBool, error) { _, eq, _, err := Compare3(l, r); return eq, err }
func Lt(l, r Value) (TriBool, error) { lt, _, _, err := Compare3(l, r); return lt, err }
func Gt(l, r Value) (TriBool, error) { _, _, gt, err := Compare3(l, r); return gt, err }

func Le(l, r Value) (TriBool, error) {
	lt, eq, _, err := Compare3(l, r)
	if err != nil {
		return Unknown, err
	}
	return lt.Or(eq), nil
}

func Ge(l, r Value) (TriBool, error) {
	_, eq, gt, err := Compare3(l, r)
	if err != nil {
		return Unknown, err
	}
	return gt.Or(eq), nil
}

func Ne(l, r Value) (TriBool, error) {
	eq, err := Eq(l, r)
	if err != nil {
		return Unknown, err
	}
	return eq.Not(), nil
}
