package hash

import (
	"fmt"

	"github.com/novasql/core/internal/bx"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

// encodeRID packs a tableheap.RID into the table's fixed 8-byte value
// width: PageId (4 bytes) then Slot (2 bytes), BE per the index's
// byte-lexicographic convention (internal/bx), padded to valueSize.
func encodeRID(rid tableheap.RID) []byte {
	buf := make([]byte, valueSize)
	bx.PutU32BE(buf, uint32(rid.PageID))
	bx.PutU16BE(buf[4:], rid.Slot)
	return buf
}

func decodeRID(buf []byte) tableheap.RID {
	return tableheap.RID{
		PageID: disk.PageId(bx.U32BE(buf[0:4])),
		Slot:   bx.U16BE(buf[4:6]),
	}
}

// varcharKeyWidth is the fixed slot width reserved for a Varchar column
// within an index key (spec.md §4.5 calls for fixed-width keys; a hash
// index only ever tests equality, so truncation only matters for keys
// longer than this, which are rejected rather than silently collapsed).
const varcharKeyWidth = 64

// ColumnKeyWidth returns the fixed number of bytes a column of type t
// occupies within an encoded index key.
func ColumnKeyWidth(t types.TypeID) int {
	if t == types.Varchar {
		return varcharKeyWidth
	}
	return types.FixedLen(t)
}

// KeyWidth returns the total encoded width of a composite key over
// colTypes, the value EncodeKey always produces and the width every
// bucket page on an index built over colTypes is sized with.
func KeyWidth(colTypes []types.TypeID) int {
	w := 0
	for _, t := range colTypes {
		w += ColumnKeyWidth(t)
	}
	return w
}

// EncodeKey packs values (in key-column order) into a single fixed-width
// byte key, reusing the tuple wire format (internal/types.SerializeTo) so
// null sentinels and numeric widths agree with table storage, and
// zero-padding each Varchar column out to its reserved slot.
func EncodeKey(values []types.Value, colTypes []types.TypeID) ([]byte, error) {
	if len(values) != len(colTypes) {
		return nil, fmt.Errorf("hash: key has %d values, expected %d", len(values), len(colTypes))
	}
	out := make([]byte, KeyWidth(colTypes))
	off := 0
	for i, v := range values {
		width := ColumnKeyWidth(colTypes[i])
		if colTypes[i] == types.Varchar && types.SerializedLen(v) > width {
			return nil, fmt.Errorf("hash: varchar key value exceeds %d-byte key width", width)
		}
		if _, err := types.SerializeTo(v, out[off:off+width]); err != nil {
			return nil, err
		}
		off += width
	}
	return out, nil
}
