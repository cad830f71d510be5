package txn

import (
	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/core/ports"
)

// Allocator binds an Accountant to one transaction so that engine code can
// allocate without passing the id and region around.
type Allocator struct {
	acc ports.Accountant
	txn *Txn
}

func NewAllocator(acc ports.Accountant, t *Txn) *Allocator {
	return &Allocator{acc: acc, txn: t}
}

func (a *Allocator) Txn() *Txn {
	return a.txn
}

func (a *Allocator) Charge(cat models.Category, delta int64) {
	a.acc.Charge(a.txn.ID, cat, delta)
}

func (a *Allocator) PoolAlloc(pool ports.FixedPool, cat models.Category) []byte {
	return a.acc.AllocFromPool(a.txn.ID, pool, cat)
}

func (a *Allocator) PoolFree(pool ports.FixedPool, buf []byte, cat models.Category) {
	a.acc.FreeToPool(a.txn.ID, pool, buf, cat)
}

func (a *Allocator) Alloc(size int, cat models.Category) []byte {
	return a.acc.AllocFromRegion(a.txn.ID, a.txn.Region, size, cat)
}

func (a *Allocator) AlignedAlloc(size, alignment int, cat models.Category) []byte {
	return a.acc.AlignedAllocFromRegion(a.txn.ID, a.txn.Region, size, alignment, cat)
}

func (a *Allocator) Used() int {
	return a.acc.RegionUsed(a.txn.Region)
}

func (a *Allocator) PinTuple() {
	a.acc.PinTuple(a.txn.ID)
}

func (a *Allocator) UnpinTuple() {
	a.acc.UnpinTuple(a.txn.ID)
}

// Truncate rolls the region back to its base. A transaction that never
// allocated through the accountant only has its region reset.
func (a *Allocator) Truncate() {
	if !a.acc.Tracked(a.txn.ID) {
		a.txn.Region.Truncate(a.txn.Region.Base())
		return
	}
	a.acc.Truncate(a.txn.ID, a.txn.Region)
}
