package ports

// Region is a bump-pointer memory area reclaimed only in bulk.
type Region interface {
	Alloc(size int) []byte
	AlignedAlloc(size, alignment int) []byte
	Used() int
	// Base is the offset a region is truncated to when its owner rolls back.
	Base() int
	Truncate(offset int)
}

// FixedPool hands out objects of a single size.
type FixedPool interface {
	Alloc() []byte
	Free(buf []byte)
	ObjectSize() int
}
