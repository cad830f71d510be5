package txstat

import (
	"testing"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FindOrCreate(t *testing.T) {
	r := newRegistry(2)

	_, ok := r.Find(txnID(1))
	assert.False(t, ok)

	rec, created := r.FindOrCreate(txnID(1))
	require.True(t, created)
	assert.Equal(t, txnID(1), rec.id)
	assert.Equal(t, [models.NumCategories]int64{}, rec.totals)

	again, created := r.FindOrCreate(txnID(1))
	assert.False(t, created)
	assert.Same(t, rec, again)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GenerationsAreDistinct(t *testing.T) {
	r := newRegistry(0)

	old := models.TxnID{Index: 3, Generation: 1}
	reused := models.TxnID{Index: 3, Generation: 2}
	a, _ := r.FindOrCreate(old)
	b, _ := r.FindOrCreate(reused)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RemoveAbsentPanics(t *testing.T) {
	r := newRegistry(0)

	err := recoverError(t, func() { r.Remove(txnID(5)) })
	assert.True(t, errors.Is(err, ErrUntracked))
}

func TestRegistry_ForgetRecycles(t *testing.T) {
	r := newRegistry(1)

	rec, _ := r.FindOrCreate(txnID(1))
	rec.totals[models.CategoryStory] = 99
	rec.mark(models.CategoryStory)
	assert.Equal(t, PoolStats{Allocated: 1, InUse: 1, Free: 0}, r.pool.stats)

	r.Forget(rec)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, PoolStats{Allocated: 1, InUse: 0, Free: 1}, r.pool.stats)

	fresh, _ := r.FindOrCreate(txnID(2))
	assert.Same(t, rec, fresh, "the pooled record is reused")
	assert.Equal(t, int64(0), fresh.totals[models.CategoryStory])
	assert.False(t, fresh.has(models.CategoryStory))
	assert.Equal(t, txnID(2), fresh.id)
}

func TestRecordPool_GrowsPastCapacity(t *testing.T) {
	p := newRecordPool(1)
	a := p.New()
	b := p.New()
	assert.NotSame(t, a, b)
	assert.Equal(t, PoolStats{Allocated: 2, InUse: 2, Free: 0}, p.stats)
}

func TestRegistry_Range(t *testing.T) {
	r := newRegistry(0)
	for i := uint32(1); i <= 4; i++ {
		r.FindOrCreate(txnID(i))
	}

	seen := 0
	r.Range(func(*record) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}
