package histogram

import (
	"sort"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

var (
	// ErrMismatch indicates a Discard of a value that is not currently collected.
	ErrMismatch = errors.New("histogram: discard without matching collect")

	// ErrBadBuckets indicates bucket boundaries that are empty, non-positive or not strictly increasing.
	ErrBadBuckets = errors.New("histogram: bucket boundaries must be positive and strictly increasing")
)

// DefaultBuckets are the upper bounds used for per-transaction memory totals.
var DefaultBuckets = []int64{1, 2, 3, 5, 10, 1000, 10000, 100000}

// btreeDegree is the fan-out of the ordered set of distinct values.
const btreeDegree = 32

// Histogram counts samples in fixed buckets. Bucket i holds values in
// (bounds[i-1], bounds[i]]; the last bucket is unbounded. Alongside the
// buckets it keeps the exact multiset of collected values so that Max stays
// exact after removals and a Discard that does not match a Collect is caught.
// Distinct values are also kept ordered, so a new Max after removing the
// largest sample costs O(log n).
//
// Histogram is not safe for concurrent use.
type Histogram struct {
	bounds  []int64
	counts  []int64
	values  map[int64]int64
	ordered *btree.BTreeG[int64]
	count   int64
	max     int64
}

func New(bounds []int64) (*Histogram, error) {
	if err := ValidateBuckets(bounds); err != nil {
		return nil, err
	}
	return &Histogram{
		bounds:  append([]int64(nil), bounds...),
		counts:  make([]int64, len(bounds)+1),
		values:  make(map[int64]int64),
		ordered: btree.NewOrderedG[int64](btreeDegree),
	}, nil
}

func MustNew(bounds []int64) *Histogram {
	h, err := New(bounds)
	if err != nil {
		panic(err)
	}
	return h
}

func ValidateBuckets(bounds []int64) error {
	if len(bounds) == 0 {
		return ErrBadBuckets
	}
	for i, b := range bounds {
		if b <= 0 || (i > 0 && b <= bounds[i-1]) {
			return errors.Wrapf(ErrBadBuckets, "bound %d at position %d", b, i)
		}
	}
	return nil
}

func (h *Histogram) bucket(value int64) int {
	return sort.Search(len(h.bounds), func(i int) bool {
		return h.bounds[i] >= value
	})
}

func (h *Histogram) Collect(value int64) {
	h.counts[h.bucket(value)]++
	if h.values[value] == 0 {
		h.ordered.ReplaceOrInsert(value)
	}
	h.values[value]++
	h.count++
	if h.count == 1 || value > h.max {
		h.max = value
	}
}

// Discard removes one sample equal to value. It panics with ErrMismatch if no
// such sample is present; the histogram is left untouched in that case.
func (h *Histogram) Discard(value int64) {
	n, ok := h.values[value]
	if !ok {
		panic(errors.Wrapf(ErrMismatch, "value %d", value))
	}
	if n == 1 {
		delete(h.values, value)
		h.ordered.Delete(value)
	} else {
		h.values[value] = n - 1
	}
	h.counts[h.bucket(value)]--
	h.count--

	if n == 1 && value == h.max {
		// Zero when the histogram is now empty.
		h.max, _ = h.ordered.Max()
	}
}

func (h *Histogram) Update(old *int64, value int64) {
	if old != nil {
		h.Discard(*old)
	}
	h.Collect(value)
}

// Max returns the largest collected value, or 0 when empty.
func (h *Histogram) Max() int64 {
	return h.max
}

func (h *Histogram) Count() int64 {
	return h.count
}

// PercentileLower returns the lower bound of the bucket that holds the p-th
// percentile sample, p in [0, 100]. The first bucket has a lower bound of 0.
// An empty histogram reports 0.
func (h *Histogram) PercentileLower(p float64) int64 {
	if h.count == 0 {
		return 0
	}
	var seen int64
	for i, c := range h.counts {
		seen += c
		if float64(seen)*100 > float64(h.count)*p {
			if i == 0 {
				return 0
			}
			return h.bounds[i-1]
		}
	}
	return h.max
}

// Values returns a copy of the collected multiset, value -> occurrences.
func (h *Histogram) Values() map[int64]int64 {
	out := make(map[int64]int64, len(h.values))
	for v, n := range h.values {
		out[v] = n
	}
	return out
}

// BucketCounts returns a copy of the per-bucket counts; the last entry is the overflow bucket.
func (h *Histogram) BucketCounts() []int64 {
	return append([]int64(nil), h.counts...)
}

func (h *Histogram) Bounds() []int64 {
	return append([]int64(nil), h.bounds...)
}
