package txstat

import (
	"unsafe"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/core/ports"
)

// AllocObject reserves room for one T in the transaction's region, aligned
// for T, and returns the memory together with the size that was charged.
func AllocObject[T any](a ports.Accountant, id models.TxnID, region ports.Region, cat models.Category) ([]byte, int) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	return a.AlignedAllocFromRegion(id, region, size, int(unsafe.Alignof(zero)), cat), size
}
