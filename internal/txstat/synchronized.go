package txstat

import (
	"sync"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/core/ports"
)

// Synchronized guards a Manager with one coarse mutex so it can be shared
// between goroutines. Pool and region calls run under the lock too, which
// keeps the charge and the allocation it describes in one critical section.
type Synchronized struct {
	mu sync.Mutex
	m  *Manager
}

var _ ports.Accountant = (*Synchronized)(nil)

func NewSynchronized(m *Manager) *Synchronized {
	return &Synchronized{m: m}
}

func (s *Synchronized) Charge(id models.TxnID, cat models.Category, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Charge(id, cat, delta)
}

func (s *Synchronized) AllocFromPool(id models.TxnID, pool ports.FixedPool, cat models.Category) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.AllocFromPool(id, pool, cat)
}

func (s *Synchronized) FreeToPool(id models.TxnID, pool ports.FixedPool, buf []byte, cat models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.FreeToPool(id, pool, buf, cat)
}

func (s *Synchronized) AllocFromRegion(id models.TxnID, region ports.Region, size int, cat models.Category) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.AllocFromRegion(id, region, size, cat)
}

func (s *Synchronized) AlignedAllocFromRegion(id models.TxnID, region ports.Region, size, alignment int, cat models.Category) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.AlignedAllocFromRegion(id, region, size, alignment, cat)
}

func (s *Synchronized) RegionUsed(region ports.Region) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.RegionUsed(region)
}

func (s *Synchronized) Truncate(id models.TxnID, region ports.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Truncate(id, region)
}

func (s *Synchronized) PinTuple(id models.TxnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.PinTuple(id)
}

func (s *Synchronized) UnpinTuple(id models.TxnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.UnpinTuple(id)
}

func (s *Synchronized) Tracked(id models.TxnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Tracked(id)
}

func (s *Synchronized) Stats() models.StatInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Stats()
}


// Snapshot reads Stats and Len under one lock acquisition, so the two agree.
func (s *Synchronized) Snapshot() (models.StatInfo, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Snapshot()
}

func (s *Synchronized) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Close()
}
