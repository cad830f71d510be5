package ports

// Histogram is a frequency distribution that supports removal of samples.
// Discard must exactly undo a prior Collect of the same value.
type Histogram interface {
	Collect(value int64)
	Discard(value int64)
	// Update replaces a previously collected sample with a new one. A nil old
	// value only collects.
	Update(old *int64, value int64)
	Max() int64
	PercentileLower(p float64) int64
	Count() int64
}
