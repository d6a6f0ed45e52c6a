package tableheap

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/types"
)

// TupleMeta is the per-tuple metadata tracked alongside its bytes
// (spec.md §3): creation timestamp (unix micros) and a deletion
// tombstone. Deletes are logical: MarkDelete flips IsDeleted without
// reclaiming the slot, matching bustub's table heap semantics.
type TupleMeta struct {
	InsertedAtMicros int64
	IsDeleted        bool
}

// Tuple is one row: its identity and its schema-encoded bytes.
type Tuple struct {
	RID  RID
	Data []byte
}

// Encode serializes values, in schema column order, into a tuple's wire
// bytes: a leading null bitmap (one bit per column, teacher's
// rowcodec.go convention) followed by each non-null column's
// fixed/length-prefixed encoding from internal/types.
func Encode(schema catalog.Schema, values []types.Value) ([]byte, error) {
	nc := len(schema.Columns)
	nullBytes := (nc + 7) / 8
	buf := make([]byte, nullBytes, nullBytes+64)

	for i, v := range values {
		if v.IsNull() {
			buf[i/8] |= 1 << uint(i%8)
			continue
		}
		tmp := make([]byte, types.SerializedLen(v))
		n, err := types.SerializeTo(v, tmp)
		if err != nil {
			return nil, err
		}
		buf = append(buf, tmp[:n]...)
	}
	return buf, nil
}

// Decode reverses Encode, producing one Value per schema column.
func Decode(schema catalog.Schema, data []byte) ([]types.Value, error) {
	nc := len(schema.Columns)
	nullBytes := (nc + 7) / 8
	if len(data) < nullBytes {
		return nil, errShortTuple
	}
	nullmap := data[:nullBytes]
	off := nullBytes

	out := make([]types.Value, nc)
	for i, col := range schema.Columns {
		isNull := (nullmap[i/8]>>(uint(i)%8))&1 == 1
		if isNull {
			out[i] = types.NullValue(col.Type)
			continue
		}
		v, n, err := types.Deserialize(col.Type, data[off:])
		if err != nil {
			return nil, err
		}
		out[i] = v
		off += n
	}
	return out, nil
}
