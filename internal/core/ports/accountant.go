package ports

import "github.com/genc-murat/txstat/internal/core/models"

// Accountant attributes allocations made on behalf of a transaction to a category.
type Accountant interface {
	Charge(id models.TxnID, cat models.Category, delta int64)
	AllocFromPool(id models.TxnID, pool FixedPool, cat models.Category) []byte
	FreeToPool(id models.TxnID, pool FixedPool, buf []byte, cat models.Category)
	AllocFromRegion(id models.TxnID, region Region, size int, cat models.Category) []byte
	AlignedAllocFromRegion(id models.TxnID, region Region, size, alignment int, cat models.Category) []byte
	RegionUsed(region Region) int
	Truncate(id models.TxnID, region Region)
	PinTuple(id models.TxnID)
	UnpinTuple(id models.TxnID)
	Tracked(id models.TxnID) bool
	Stats() models.StatInfo
}
