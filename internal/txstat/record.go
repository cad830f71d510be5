package txstat

import "github.com/genc-murat/txstat/internal/core/models"

// record holds one transaction's running totals. It refers to the
// transaction only by id.
type record struct {
	id     models.TxnID
	totals [models.NumCategories]int64
	// contributed has bit c set while category c has a sample in its histogram.
	contributed uint8
}

func (r *record) has(cat models.Category) bool {
	return r.contributed&(1<<cat) != 0
}

func (r *record) mark(cat models.Category) {
	r.contributed |= 1 << cat
}

// recordPool recycles records through a free list.
type recordPool struct {
	free  []*record
	stats PoolStats
}

type PoolStats struct {
	Allocated int64
	InUse     int64
	Free      int64
}

func newRecordPool(capacity int) *recordPool {
	p := &recordPool{free: make([]*record, 0, capacity)}
	for i := 0; i < capacity; i++ {
		p.free = append(p.free, &record{})
	}
	p.stats.Allocated = int64(capacity)
	p.stats.Free = int64(capacity)
	return p
}

// New returns a zeroed record with no identity.
func (p *recordPool) New() *record {
	var r *record
	if n := len(p.free); n > 0 {
		r = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.stats.Free--
	} else {
		r = &record{}
		p.stats.Allocated++
	}
	p.stats.InUse++
	return r
}

func (p *recordPool) Put(r *record) {
	*r = record{}
	p.free = append(p.free, r)
	p.stats.InUse--
	p.stats.Free++
}
