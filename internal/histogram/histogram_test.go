package histogram

import (
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesBuckets(t *testing.T) {
	tests := []struct {
		name   string
		bounds []int64
		ok     bool
	}{
		{"default", DefaultBuckets, true},
		{"single", []int64{10}, true},
		{"empty", nil, false},
		{"zero bound", []int64{0, 1}, false},
		{"not increasing", []int64{1, 5, 5}, false},
		{"decreasing", []int64{10, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.bounds)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrBadBuckets), "got %v", err)
			}
		})
	}
}

func TestHistogram_CollectDiscard(t *testing.T) {
	h := MustNew(DefaultBuckets)

	h.Collect(100)
	h.Collect(5)
	h.Collect(100)
	assert.Equal(t, int64(3), h.Count())
	assert.Equal(t, int64(100), h.Max())
	assert.Equal(t, map[int64]int64{100: 2, 5: 1}, h.Values())

	h.Discard(100)
	assert.Equal(t, int64(100), h.Max(), "one 100 is still present")

	h.Discard(100)
	assert.Equal(t, int64(5), h.Max())

	h.Discard(5)
	assert.Equal(t, int64(0), h.Count())
	assert.Equal(t, int64(0), h.Max())
	assert.Empty(t, h.Values())
	for _, c := range h.BucketCounts() {
		assert.Zero(t, c)
	}
}

func TestHistogram_DiscardMismatchPanics(t *testing.T) {
	h := MustNew(DefaultBuckets)
	h.Collect(7)

	defer func() {
		r := recover()
		require.NotNil(t, r, "discard of an absent value must panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrMismatch))
		// Nothing was removed.
		assert.Equal(t, map[int64]int64{7: 1}, h.Values())
		assert.Equal(t, int64(1), h.Count())
	}()

	// 8 shares the bucket of 7 but was never collected.
	h.Discard(8)
}

func TestHistogram_Update(t *testing.T) {
	h := MustNew(DefaultBuckets)

	h.Update(nil, 100)
	assert.Equal(t, map[int64]int64{100: 1}, h.Values())

	old := int64(100)
	h.Update(&old, 150)
	assert.Equal(t, map[int64]int64{150: 1}, h.Values())
	assert.Equal(t, int64(150), h.Max())

	stale := int64(100)
	assert.Panics(t, func() { h.Update(&stale, 200) })
	assert.Equal(t, map[int64]int64{150: 1}, h.Values(), "failed update must not collect")
}

func TestHistogram_Buckets(t *testing.T) {
	h := MustNew([]int64{1, 10, 100})

	for _, v := range []int64{0, 1, 2, 10, 11, 100, 101, 5000} {
		h.Collect(v)
	}
	assert.Equal(t, []int64{2, 2, 2, 2}, h.BucketCounts())
}

func TestHistogram_PercentileLower(t *testing.T) {
	h := MustNew(DefaultBuckets)
	assert.Equal(t, int64(0), h.PercentileLower(0), "empty histogram")

	h.Collect(150)
	assert.Equal(t, int64(10), h.PercentileLower(0), "150 lives in (10, 1000]")

	h.Collect(1)
	assert.Equal(t, int64(0), h.PercentileLower(0))
	assert.Equal(t, int64(10), h.PercentileLower(50))

	h.Collect(500000)
	assert.Equal(t, int64(100000), h.PercentileLower(99))
	assert.Equal(t, int64(500000), h.PercentileLower(100))
}

func TestHistogram_BoundsAreCopied(t *testing.T) {
	bounds := []int64{1, 2, 3}
	h := MustNew(bounds)
	bounds[0] = 100
	assert.Equal(t, []int64{1, 2, 3}, h.Bounds())
}

func TestHistogram_MaxAfterGrowingLargest(t *testing.T) {
	h := MustNew(DefaultBuckets)
	for v := int64(1); v <= 1000; v++ {
		h.Collect(v)
	}

	largest := int64(1000)
	for i := 0; i < 50; i++ {
		next := largest + 1
		h.Update(&largest, next)
		largest = next
		require.Equal(t, largest, h.Max())
	}

	h.Discard(largest)
	assert.Equal(t, int64(999), h.Max(), "max falls back to the next distinct value")

	h.Collect(999)
	h.Discard(999)
	assert.Equal(t, int64(999), h.Max(), "a remaining duplicate keeps the max")

	for v := int64(1); v <= 999; v++ {
		h.Discard(v)
	}
	assert.Equal(t, int64(0), h.Max())
	assert.Equal(t, int64(0), h.Count())
}

// updateLargest grows the largest of live distinct samples one step at a time.
func updateLargest(b *testing.B, live int) {
	h := MustNew(DefaultBuckets)
	for v := int64(1); v <= int64(live); v++ {
		h.Collect(v)
	}
	largest := int64(live)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next := largest + 1
		h.Update(&largest, next)
		largest = next
	}
}

func BenchmarkHistogram_UpdateLargest(b *testing.B) {
	for _, live := range []int{1_000, 10_000, 100_000} {
		b.Run(strconv.Itoa(live), func(b *testing.B) {
			updateLargest(b, live)
		})
	}
}

func TestHistogram_UpdateLargestCostIsFlat(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	small := testing.Benchmark(func(b *testing.B) { updateLargest(b, 1_000) })
	large := testing.Benchmark(func(b *testing.B) { updateLargest(b, 100_000) })

	// A scan of every live value would make the large case about 100x slower.
	ratio := float64(large.NsPerOp()+1) / float64(small.NsPerOp()+1)
	assert.Less(t, ratio, 10.0, "small %v, large %v", small, large)
}
