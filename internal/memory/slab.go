package memory

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

const (
	MinObjectSize = 8
	// slabBytes is the target size of one slab; small objects share a slab.
	slabBytes = 64 << 10
)

// SlabPool hands out fixed-size objects carved from larger slabs. Freed
// slots go on a free list and are reused before a new slab is allocated.
// Running out of slots when a limit is set panics with ErrExhausted.
type SlabPool struct {
	objSize    int
	perSlab    int
	maxObjects int
	slabs      [][]byte
	free       []int
	usage      map[uintptr]int
	mu         sync.RWMutex
	stats      SlabStats
}

type SlabStats struct {
	ObjectSize  int
	TotalMemory int64
	UsedMemory  int64
	Slabs       int
	InUse       int64
	AllocCount  int64
	FreeCount   int64
}

// NewFixedPool creates a pool of objSize-byte objects. maxObjects caps the
// number of live objects; 0 means unlimited.
func NewFixedPool(objSize, maxObjects int) (*SlabPool, error) {
	if objSize <= 0 || maxObjects < 0 {
		return nil, errors.Wrapf(ErrBadSize, "object size %d, max objects %d", objSize, maxObjects)
	}
	if objSize < MinObjectSize {
		objSize = MinObjectSize
	}
	perSlab := slabBytes / objSize
	if perSlab == 0 {
		perSlab = 1
	}
	pool := &SlabPool{
		objSize:    objSize,
		perSlab:    perSlab,
		maxObjects: maxObjects,
		usage:      make(map[uintptr]int),
	}
	pool.stats.ObjectSize = objSize
	return pool, nil
}

func (sp *SlabPool) ObjectSize() int {
	return sp.objSize
}

// Alloc returns a zeroed object.
func (sp *SlabPool) Alloc() []byte {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.maxObjects > 0 && len(sp.usage) >= sp.maxObjects {
		panic(errors.Wrapf(ErrExhausted, "slab pool of %d-byte objects: %d objects in use", sp.objSize, len(sp.usage)))
	}

	if len(sp.free) == 0 {
		sp.grow()
	}
	slot := sp.free[len(sp.free)-1]
	sp.free = sp.free[:len(sp.free)-1]

	memory := sp.slot(slot)
	clear(memory)

	sp.stats.AllocCount++
	sp.stats.InUse++
	sp.stats.UsedMemory += int64(sp.objSize)
	sp.usage[uintptr(unsafe.Pointer(&memory[0]))] = slot

	return memory
}

// Free returns an object to the pool. Freeing a buffer that is not a live
// object of this pool panics with ErrBadFree.
func (sp *SlabPool) Free(memory []byte) {
	if len(memory) == 0 {
		panic(errors.Wrap(ErrBadFree, "empty buffer"))
	}

	sp.mu.Lock()
	defer sp.mu.Unlock()

	ptr := uintptr(unsafe.Pointer(&memory[0]))
	slot, exists := sp.usage[ptr]
	if !exists {
		panic(errors.Wrapf(ErrBadFree, "slab pool of %d-byte objects", sp.objSize))
	}
	delete(sp.usage, ptr)
	sp.free = append(sp.free, slot)

	sp.stats.FreeCount++
	sp.stats.InUse--
	sp.stats.UsedMemory -= int64(sp.objSize)
}

func (sp *SlabPool) grow() {
	slab := make([]byte, sp.perSlab*sp.objSize)
	base := len(sp.slabs) * sp.perSlab
	sp.slabs = append(sp.slabs, slab)
	// Push in reverse so that slots are handed out in address order.
	for i := sp.perSlab - 1; i >= 0; i-- {
		sp.free = append(sp.free, base+i)
	}
	sp.stats.Slabs = len(sp.slabs)
	sp.stats.TotalMemory += int64(len(slab))
}

func (sp *SlabPool) slot(slot int) []byte {
	slab := sp.slabs[slot/sp.perSlab]
	start := (slot % sp.perSlab) * sp.objSize
	return slab[start : start+sp.objSize : start+sp.objSize]
}

func (sp *SlabPool) GetStats() SlabStats {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.stats
}
