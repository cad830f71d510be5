// Package txn hands out transaction identities and the region each
// transaction allocates from.
//
// Identities are slot index / generation pairs. Ending a transaction frees
// its slot; the next transaction placed in that slot gets the next
// generation, so ids are never reused while anything may still hold one.
package txn

import (
	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/memory"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownTxn indicates an id that does not name a live transaction.
	ErrUnknownTxn = errors.New("txn: unknown transaction")
)

type RegionConfig struct {
	PageSize int
	// HeaderSize is reserved at the base of every region for the transaction itself.
	HeaderSize int
	// Limit caps a region's Used; 0 means unlimited.
	Limit int
}

func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		PageSize:   memory.DefaultPageSize,
		HeaderSize: 256,
	}
}

// Txn is a live transaction as far as memory accounting is concerned.
type Txn struct {
	ID     models.TxnID
	Region *memory.Region
}

type slot struct {
	gen uint32
	txn *Txn
}

// Table is not safe for concurrent use.
type Table struct {
	cfg   RegionConfig
	slots []slot
	free  []uint32
	live  int
}

func NewTable(cfg RegionConfig) (*Table, error) {
	if _, err := memory.NewRegion(cfg.PageSize, cfg.HeaderSize, cfg.Limit); err != nil {
		return nil, errors.Wrap(err, "txn: region config")
	}
	return &Table{cfg: cfg}, nil
}

func (t *Table) Begin() *Txn {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}

	s := &t.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	region, err := memory.NewRegion(t.cfg.PageSize, t.cfg.HeaderSize, t.cfg.Limit)
	if err != nil {
		// NewTable validated the config.
		panic(err)
	}
	s.txn = &Txn{
		ID:     models.TxnID{Index: idx, Generation: s.gen},
		Region: region,
	}
	t.live++
	return s.txn
}

func (t *Table) Get(id models.TxnID) (*Txn, bool) {
	if int(id.Index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[id.Index]
	if s.txn == nil || s.gen != id.Generation {
		return nil, false
	}
	return s.txn, true
}

// End releases the transaction's slot. Accounting state must already have
// been torn down by the caller.
func (t *Table) End(id models.TxnID) error {
	if _, ok := t.Get(id); !ok {
		return errors.Wrapf(ErrUnknownTxn, "end %s", id)
	}
	t.slots[id.Index].txn = nil
	t.free = append(t.free, id.Index)
	t.live--
	return nil
}

// Len returns the number of live transactions.
func (t *Table) Len() int {
	return t.live
}
