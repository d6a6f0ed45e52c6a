// Package disk implements the paged file and the serialized I/O worker that
// sits underneath the buffer pool manager.
package disk

import "github.com/novasql/core/internal/bx"

const (
	// PageSize is the fixed size of every on-disk page, matching the
	// teacher's 8KB slotted-page convention.
	PageSize = 8192

	// lsnSize is the width of the LSN header reserved at the front of
	// every page per the external page-format contract. Recovery itself
	// is out of scope; the field exists so on-disk layout stays
	// forward-compatible with a WAL that isn't implemented here.
	lsnSize = 4

	// PageHeaderSize is the offset at which operator-defined page
	// contents begin, after the reserved LSN prefix.
	PageHeaderSize = lsnSize
)

// PageId is a stable logical identifier for a page. It is allocated
// monotonically by the buffer pool manager and never reused while the
// process runs.
type PageId int32

// InvalidPageId is the sentinel PageId meaning "no page".
const InvalidPageId PageId = -1

// Page is a fixed-size byte buffer. It carries no metadata of its own —
// pin count, dirty flag and identity live on the buffer pool's Frame.
type Page struct {
	Data [PageSize]byte
}

// LSN returns the log sequence number stored in the page's reserved header.
func (p *Page) LSN() uint32 {
	return bx.U32(p.Data[:])
}

// SetLSN stores a log sequence number in the page's reserved header.
func (p *Page) SetLSN(lsn uint32) {
	bx.PutU32(p.Data[:], lsn)
}

// Reset zeroes the page buffer, as the buffer pool does when handing out a
// brand-new page.
func (p *Page) Reset() {
	for i := range p.Data {
		p.Data[i] = 0
	}
}
