package txstat

import (
	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/pkg/errors"
)

// registry maps a transaction id to its record. It owns the records and
// returns them to the pool when they are forgotten.
type registry struct {
	records map[models.TxnID]*record
	pool    *recordPool
}

func newRegistry(poolCapacity int) *registry {
	return &registry{
		records: make(map[models.TxnID]*record, poolCapacity),
		pool:    newRecordPool(poolCapacity),
	}
}

func (r *registry) Find(id models.TxnID) (*record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// FindOrCreate returns the record for id, creating a zeroed one if absent.
func (r *registry) FindOrCreate(id models.TxnID) (rec *record, created bool) {
	if rec, ok := r.records[id]; ok {
		return rec, false
	}
	rec = r.pool.New()
	rec.id = id
	r.records[id] = rec
	return rec, true
}

// Remove detaches the record for id. The caller owns the result. Removing an
// id without a record panics with ErrUntracked.
func (r *registry) Remove(id models.TxnID) *record {
	rec, ok := r.records[id]
	if !ok {
		panic(errors.Wrapf(ErrUntracked, "remove %s", id))
	}
	delete(r.records, id)
	return rec
}

// Forget removes the record from the registry and recycles it.
func (r *registry) Forget(rec *record) {
	r.pool.Put(r.Remove(rec.id))
}

func (r *registry) Len() int {
	return len(r.records)
}

func (r *registry) Range(fn func(rec *record) bool) {
	for _, rec := range r.records {
		if !fn(rec) {
			return
		}
	}
}
