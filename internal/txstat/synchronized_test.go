package txstat

import (
	"sync"
	"testing"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronized_ConcurrentTransactions(t *testing.T) {
	m := newTestManager(t)
	s := NewSynchronized(m)
	pool, err := memory.NewFixedPool(24, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := uint32(1); w <= 8; w++ {
		wg.Add(1)
		go func(id models.TxnID) {
			defer wg.Done()
			region, err := memory.NewRegion(512, 32, 0)
			if !assert.NoError(t, err) {
				return
			}
			for i := 0; i < 200; i++ {
				buf := s.AllocFromPool(id, pool, models.CategoryTracker)
				s.AllocFromRegion(id, region, 16, models.CategoryStory)
				s.PinTuple(id)
				s.FreeToPool(id, pool, buf, models.CategoryTracker)
				s.UnpinTuple(id)
			}
			assert.True(t, s.Tracked(id))
			s.Truncate(id, region)
			assert.Equal(t, region.Base(), s.RegionUsed(region))
		}(txnID(w))
	}
	wg.Wait()

	stats, tracked := s.Snapshot()
	assert.Equal(t, 0, tracked)
	for _, cat := range models.Categories() {
		assert.Equal(t, int64(0), stats[cat].Total, "%s", cat)
	}
	requireConsistent(t, m)
}

func TestSynchronized_SnapshotAndClose(t *testing.T) {
	m := newTestManager(t)
	s := NewSynchronized(m)
	region := newTestRegion(t)

	s.AllocFromRegion(txnID(1), region, 40, models.CategoryStory)
	s.PinTuple(txnID(2))

	stats, tracked := s.Snapshot()
	assert.Equal(t, 2, tracked)
	assert.Equal(t, int64(40), stats[models.CategoryStory].Total)
	assert.Equal(t, int64(1), stats[models.CategoryPinnedTuple].Total)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			stats, tracked := s.Snapshot()
			// A live transaction always has a positive total in some category.
			if tracked > 0 {
				var sum int64
				for _, st := range stats {
					sum += st.Total
				}
				assert.Positive(t, sum)
			}
		}
	}()
	go func() {
		defer wg.Done()
		s.Close()
	}()
	wg.Wait()

	stats, tracked = s.Snapshot()
	assert.Equal(t, 0, tracked)
	assert.Equal(t, models.StatInfo{}, stats)
	requireConsistent(t, m)

	err := recoverError(t, func() { s.Charge(txnID(3), models.CategoryStory, 1) })
	assert.True(t, errors.Is(err, ErrClosed))
}
