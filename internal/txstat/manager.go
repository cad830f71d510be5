package txstat

import (
	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/core/ports"
	"github.com/genc-murat/txstat/internal/histogram"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	// Buckets are the histogram upper bounds shared by every category.
	Buckets []int64
	// RecordPoolSize is the number of records preallocated for the registry.
	RecordPoolSize int
}

func DefaultConfig() Config {
	return Config{
		Buckets:        histogram.DefaultBuckets,
		RecordPoolSize: 64,
	}
}

// Observer is notified after every successful accounting operation.
type Observer interface {
	OnCharge(cat models.Category, delta int64)
	OnTruncate(id models.TxnID)
}

// Manager attributes every allocation made on behalf of a transaction to a
// category and keeps the per-category histograms in step with the running
// totals.
//
// The manager is NOT thread-safe. All calls must come from a single goroutine;
// wrap it in Synchronized to share it.
//
// Contract violations (a total going negative, tearing down an untracked
// transaction, an unknown category) are fatal: they are logged and the
// manager panics with an error wrapping one of the package sentinels.
type Manager struct {
	logger     *zap.Logger
	registry   *registry
	aggregates [models.NumCategories]aggregate
	observers  []Observer
	closed     bool
}

var _ ports.Accountant = (*Manager)(nil)

func New(cfg Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Buckets == nil {
		cfg.Buckets = histogram.DefaultBuckets
	}
	if cfg.RecordPoolSize < 0 {
		return nil, errors.Errorf("txstat: negative record pool size %d", cfg.RecordPoolSize)
	}

	m := &Manager{
		logger:   logger,
		registry: newRegistry(cfg.RecordPoolSize),
	}
	for i := range m.aggregates {
		h, err := histogram.New(cfg.Buckets)
		if err != nil {
			return nil, err
		}
		m.aggregates[i].hist = h
	}
	return m, nil
}

func (m *Manager) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

func (m *Manager) fatal(err error) {
	m.logger.Error("transaction accounting contract violation", zap.Error(err))
	panic(err)
}

func (m *Manager) check(id models.TxnID, cat models.Category) {
	if m.closed {
		m.fatal(ErrClosed)
	}
	if !id.Valid() {
		m.fatal(ErrInvalidTxn)
	}
	if !cat.Valid() {
		m.fatal(errors.Wrapf(ErrUnknownCategory, "%d", uint8(cat)))
	}
}

// Charge adds delta to the running total of (id, cat), creating the
// transaction's record on first use.
func (m *Manager) Charge(id models.TxnID, cat models.Category, delta int64) {
	m.check(id, cat)

	rec, tracked := m.registry.Find(id)
	var old int64
	if tracked {
		old = rec.totals[cat]
	}
	next := old + delta
	if next < 0 {
		m.fatal(errors.Wrapf(ErrNegativeTotal, "txn %s %s: %d%+d", id, cat, old, delta))
	}

	if !tracked {
		rec, _ = m.registry.FindOrCreate(id)
		m.logger.Debug("tracking transaction", zap.Stringer("txn", id))
	}
	m.aggregates[cat].applyDelta(old, next, !rec.has(cat))
	rec.totals[cat] = next
	rec.mark(cat)

	for _, o := range m.observers {
		o.OnCharge(cat, delta)
	}
}

func (m *Manager) AllocFromPool(id models.TxnID, pool ports.FixedPool, cat models.Category) []byte {
	m.Charge(id, cat, int64(pool.ObjectSize()))
	return pool.Alloc()
}

func (m *Manager) FreeToPool(id models.TxnID, pool ports.FixedPool, buf []byte, cat models.Category) {
	m.Charge(id, cat, -int64(pool.ObjectSize()))
	pool.Free(buf)
}

// AllocFromRegion bump-allocates from the transaction's region. Region
// memory is only given back by Truncate.
func (m *Manager) AllocFromRegion(id models.TxnID, region ports.Region, size int, cat models.Category) []byte {
	m.checkAlloc(id, size, 1)
	m.Charge(id, cat, int64(size))
	return region.Alloc(size)
}

func (m *Manager) AlignedAllocFromRegion(id models.TxnID, region ports.Region, size, alignment int, cat models.Category) []byte {
	m.checkAlloc(id, size, alignment)
	m.Charge(id, cat, int64(size))
	return region.AlignedAlloc(size, alignment)
}

// checkAlloc rejects a region request before it is charged.
func (m *Manager) checkAlloc(id models.TxnID, size, alignment int) {
	if size < 0 || alignment <= 0 || alignment&(alignment-1) != 0 {
		m.fatal(errors.Wrapf(ErrBadAlloc, "txn %s: %d bytes aligned to %d", id, size, alignment))
	}
}

func (m *Manager) RegionUsed(region ports.Region) int {
	return region.Used()
}

func (m *Manager) PinTuple(id models.TxnID) {
	m.Charge(id, models.CategoryPinnedTuple, 1)
}

func (m *Manager) UnpinTuple(id models.TxnID) {
	m.Charge(id, models.CategoryPinnedTuple, -1)
}

// Truncate rolls the transaction's region back to its base and drops every
// sample the transaction contributed. The transaction must be tracked.
func (m *Manager) Truncate(id models.TxnID, region ports.Region) {
	if m.closed {
		m.fatal(ErrClosed)
	}
	rec, ok := m.registry.Find(id)
	if !ok {
		m.fatal(errors.Wrapf(ErrUntracked, "truncate %s", id))
	}

	m.forget(rec)
	region.Truncate(region.Base())
	m.logger.Debug("transaction truncated", zap.Stringer("txn", id), zap.Int("region_used", region.Used()))

	for _, o := range m.observers {
		o.OnTruncate(id)
	}
}

func (m *Manager) forget(rec *record) {
	for _, cat := range models.Categories() {
		if rec.has(cat) {
			m.aggregates[cat].finalizeRemoval(rec.totals[cat])
		}
	}
	m.registry.Forget(rec)
}

func (m *Manager) Tracked(id models.TxnID) bool {
	_, ok := m.registry.Find(id)
	return ok
}

// Totals returns the running totals of a tracked transaction, indexed by category.
func (m *Manager) Totals(id models.TxnID) ([models.NumCategories]int64, bool) {
	rec, ok := m.registry.Find(id)
	if !ok {
		return [models.NumCategories]int64{}, false
	}
	return rec.totals, true
}

// Len returns the number of tracked transactions.
func (m *Manager) Len() int {
	return m.registry.Len()
}

func (m *Manager) PoolStats() PoolStats {
	return m.registry.pool.stats
}

// Close drops every record and its samples. The manager must not be used afterwards.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	var recs []*record
	m.registry.Range(func(rec *record) bool {
		recs = append(recs, rec)
		return true
	})
	for _, rec := range recs {
		m.forget(rec)
	}
	m.logger.Debug("transaction accounting closed", zap.Int("dropped", len(recs)))
	m.closed = true
}
