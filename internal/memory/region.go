package memory

import (
	"unsafe"

	"github.com/pkg/errors"
)

const (
	DefaultPageSize  = 16 << 10
	DefaultAlignment = 8
)

/*
Region is a bump-pointer allocator that owns a list of pages. Memory is
handed out from the tail of the last page and is never freed one allocation
at a time; Truncate drops everything allocated above an offset in one step.

The first base bytes of a region are reserved when it is created (a
transaction keeps its own header there), so truncating to Base leaves the
reservation intact.

A region belongs to one transaction and is not safe for concurrent use.
*/
type Region struct {
	pageSize int
	limit    int
	base     int
	used     int
	pages    []page
}

type page struct {
	buf  []byte
	used int
}

// NewRegion creates a region with the given page size, reserving base bytes.
// limit caps Used; 0 means unlimited.
func NewRegion(pageSize, base, limit int) (*Region, error) {
	if pageSize <= 0 || base < 0 || limit < 0 || (limit > 0 && base > limit) {
		return nil, errors.Wrapf(ErrBadSize, "page size %d, base %d, limit %d", pageSize, base, limit)
	}
	r := &Region{pageSize: pageSize, limit: limit}
	if base > 0 {
		r.Alloc(base)
	}
	r.base = r.used
	return r, nil
}

func (r *Region) Alloc(size int) []byte {
	return r.AlignedAlloc(size, 1)
}

// AlignedAlloc returns size bytes whose address is a multiple of alignment.
// Padding inserted for alignment counts towards Used.
func (r *Region) AlignedAlloc(size, alignment int) []byte {
	if size < 0 || alignment <= 0 || alignment&(alignment-1) != 0 {
		panic(errors.Wrapf(ErrBadSize, "alloc of %d bytes aligned to %d", size, alignment))
	}

	pad := 0
	if n := len(r.pages); n > 0 {
		pad = r.pages[n-1].padding(alignment)
	}
	if len(r.pages) == 0 || !r.pages[len(r.pages)-1].fits(size+pad) {
		r.newPage(size + alignment - 1)
		pad = r.pages[len(r.pages)-1].padding(alignment)
	}
	r.checkLimit(size + pad)

	p := &r.pages[len(r.pages)-1]
	start := p.used + pad
	p.used = start + size
	r.used += pad + size
	return p.buf[start : start+size : start+size]
}

func (r *Region) checkLimit(size int) {
	if r.limit > 0 && r.used+size > r.limit {
		panic(errors.Wrapf(ErrExhausted, "region: %d bytes used, %d requested, limit %d", r.used, size, r.limit))
	}
}

func (r *Region) newPage(need int) {
	size := r.pageSize
	if need > size {
		size = need
	}
	r.pages = append(r.pages, page{buf: make([]byte, size)})
}

func (p *page) fits(size int) bool {
	return len(p.buf)-p.used >= size
}

func (p *page) padding(alignment int) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p.buf))) + uintptr(p.used)
	return int((uintptr(alignment) - addr%uintptr(alignment)) % uintptr(alignment))
}

// Used returns the number of bytes allocated, including the base reservation and alignment padding.
func (r *Region) Used() int {
	return r.used
}

func (r *Region) Base() int {
	return r.base
}

func (r *Region) Pages() int {
	return len(r.pages)
}

// Truncate frees everything allocated above offset. Pages that become empty
// are released.
func (r *Region) Truncate(offset int) {
	if offset < 0 || offset > r.used {
		panic(errors.Wrapf(ErrBadTruncate, "offset %d, used %d", offset, r.used))
	}
	for n := len(r.pages); n > 0; n = len(r.pages) {
		last := &r.pages[n-1]
		if r.used-last.used < offset {
			last.used -= r.used - offset
			r.used = offset
			break
		}
		r.used -= last.used
		r.pages[n-1] = page{}
		r.pages = r.pages[:n-1]
	}
}
