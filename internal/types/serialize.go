package types

import (
	"fmt"

	"github.com/novasql/core/internal/bx"
)

// FixedLen returns the on-page width of t, or 0 for Varchar (which is
// length-prefixed; see SerializeTo). Mirrors the teacher's rowcodec.go
// per-column switch, generalized to the full type set.
func FixedLen(t TypeID) int {
	switch t {
	case Boolean, TinyInt:
		return 1
	case SmallInt:
		return 2
	case Integer:
		return 4
	case BigInt, Decimal, Timestamp:
		return 8
	case Varchar:
		return 0
	default:
		return 0
	}
}

// SerializedLen returns the exact number of bytes SerializeTo will write
// for v, so callers can size a destination buffer precisely.
func SerializedLen(v Value) int {
	if v.tag == Varchar {
		if v.IsNull() {
			return 2
		}
		return 2 + len(v.raw)
	}
	return FixedLen(v.tag)
}

// SerializeTo writes v's on-page encoding to dst, returning the number of
// bytes written. For Varchar, dst must have room for a 2-byte length
// prefix plus the string bytes (or just the 2-byte NULL-length marker).
func SerializeTo(v Value, dst []byte) (int, error) {
	switch v.tag {
	case Boolean, TinyInt:
		dst[0] = byte(int8(v.num))
		return 1, nil
	case SmallInt:
		bx.PutU16(dst, uint16(int16(v.num)))
		return 2, nil
	case Integer:
		bx.PutU32(dst, uint32(int32(v.num)))
		return 4, nil
	case BigInt, Decimal, Timestamp:
		bx.PutU64(dst, uint64(v.num))
		return 8, nil
	case Varchar:
		if v.IsNull() {
			bx.PutU16(dst, 0xFFFF)
			return 2, nil
		}
		if len(v.raw) > 0xFFFE {
			return 0, fmt.Errorf("types: varchar value exceeds %d bytes", 0xFFFE)
		}
		bx.PutU16(dst, uint16(len(v.raw)))
		n := copy(dst[2:], v.raw)
		return 2 + n, nil
	default:
		return 0, fmt.Errorf("types: cannot serialize %s", v.tag)
	}
}

// Deserialize reads one value of type t from the front of src, returning
// the value and the number of bytes consumed.
func Deserialize(t TypeID, src []byte) (Value, int, error) {
	switch t {
	case Boolean:
		return Value{tag: Boolean, num: int64(int8(src[0]))}, 1, nil
	case TinyInt:
		return Value{tag: TinyInt, num: int64(int8(src[0]))}, 1, nil
	case SmallInt:
		return Value{tag: SmallInt, num: int64(bx.I16(src))}, 2, nil
	case Integer:
		return Value{tag: Integer, num: int64(bx.I32(src))}, 4, nil
	case BigInt:
		return Value{tag: BigInt, num: bx.I64(src)}, 8, nil
	case Decimal:
		return Value{tag: Decimal, num: bx.I64(src)}, 8, nil
	case Timestamp:
		return Value{tag: Timestamp, num: bx.I64(src)}, 8, nil
	case Varchar:
		if len(src) < 2 {
			return Value{}, 0, fmt.Errorf("types: truncated varchar length prefix")
		}
		l := bx.U16(src)
		if l == 0xFFFF {
			return NullValue(Varchar), 2, nil
		}
		n := int(l)
		if len(src) < 2+n {
			return Value{}, 0, fmt.Errorf("types: truncated varchar payload")
		}
		raw := make([]byte, n)
		copy(raw, src[2:2+n])
		return Value{tag: Varchar, raw: raw}, 2 + n, nil
	default:
		return Value{}, 0, fmt.Errorf("types: cannot deserialize %s", t)
	}
}
