package workload

import (
	"github.com/genc-murat/txstat/internal/core/ports"
	"github.com/genc-murat/txstat/internal/txn"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrState indicates an operation that does not fit the script's own state,
// such as freeing from a pool the transaction holds nothing from.
var ErrState = errors.New("workload: invalid state")

// Runner drives an Accountant from a parsed workload. Script transaction
// names are bound to transactions from the table on first use.
type Runner struct {
	acc    ports.Accountant
	table  *txn.Table
	pools  map[string]ports.FixedPool
	logger *zap.Logger

	txns map[string]*txn.Allocator
	held map[string]map[string][][]byte
}

func NewRunner(acc ports.Accountant, table *txn.Table, pools map[string]ports.FixedPool, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		acc:    acc,
		table:  table,
		pools:  pools,
		logger: logger,
		txns:   make(map[string]*txn.Allocator),
		held:   make(map[string]map[string][][]byte),
	}
}

// Run applies ops in order and stops at the first failure. Accounting
// contract violations are returned as errors wrapping the accounting sentinel.
func (r *Runner) Run(ops []Op) error {
	for _, op := range ops {
		if err := r.apply(op); err != nil {
			return err
		}
	}
	r.logger.Info("workload replayed", zap.Int("ops", len(ops)), zap.Int("live_transactions", r.Live()))
	return nil
}

// Live returns the number of script transactions that have begun and not ended.
func (r *Runner) Live() int {
	return len(r.txns)
}

func (r *Runner) apply(op Op) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = errors.Wrapf(e, "line %d", op.Line)
			} else {
				err = errors.Errorf("line %d: %v", op.Line, p)
			}
		}
	}()

	if op.Kind == KindBegin {
		if _, ok := r.txns[op.Txn]; ok {
			return errors.Wrapf(ErrState, "line %d: transaction %q already begun", op.Line, op.Txn)
		}
		r.begin(op.Txn)
		return nil
	}

	a := r.txns[op.Txn]
	if a == nil {
		a = r.begin(op.Txn)
	}

	switch op.Kind {
	case KindCharge:
		a.Charge(op.Category, op.Delta)
	case KindPoolAlloc:
		pool, err := r.pool(op)
		if err != nil {
			return err
		}
		r.hold(op.Txn, op.Pool, a.PoolAlloc(pool, op.Category))
	case KindPoolFree:
		pool, err := r.pool(op)
		if err != nil {
			return err
		}
		buf, ok := r.release(op.Txn, op.Pool)
		if !ok {
			return errors.Wrapf(ErrState, "line %d: %q holds nothing from pool %q", op.Line, op.Txn, op.Pool)
		}
		a.PoolFree(pool, buf, op.Category)
	case KindRegionAlloc:
		if op.Align > 0 {
			a.AlignedAlloc(op.Size, op.Align, op.Category)
		} else {
			a.Alloc(op.Size, op.Category)
		}
	case KindPin:
		a.PinTuple()
	case KindUnpin:
		a.UnpinTuple()
	case KindTruncate:
		r.truncate(op.Txn, a)
	case KindEnd:
		r.truncate(op.Txn, a)
		if err := r.table.End(a.Txn().ID); err != nil {
			return err
		}
		delete(r.txns, op.Txn)
	default:
		return errors.Wrapf(ErrSyntax, "line %d: unknown op %q", op.Line, op.Kind)
	}
	return nil
}

func (r *Runner) begin(name string) *txn.Allocator {
	t := r.table.Begin()
	a := txn.NewAllocator(r.acc, t)
	r.txns[name] = a
	r.logger.Debug("transaction begun", zap.String("name", name), zap.Stringer("txn", t.ID))
	return a
}

func (r *Runner) pool(op Op) (ports.FixedPool, error) {
	pool, ok := r.pools[op.Pool]
	if !ok {
		return nil, errors.Wrapf(ErrState, "line %d: unknown pool %q", op.Line, op.Pool)
	}
	return pool, nil
}

func (r *Runner) hold(name, pool string, buf []byte) {
	if r.held[name] == nil {
		r.held[name] = make(map[string][][]byte)
	}
	r.held[name][pool] = append(r.held[name][pool], buf)
}

func (r *Runner) release(name, pool string) ([]byte, bool) {
	bufs := r.held[name][pool]
	if len(bufs) == 0 {
		return nil, false
	}
	buf := bufs[len(bufs)-1]
	r.held[name][pool] = bufs[:len(bufs)-1]
	return buf, true
}

// truncate tears down the transaction's accounting and hands any pool
// objects it still holds back to their pools.
func (r *Runner) truncate(name string, a *txn.Allocator) {
	for pool, bufs := range r.held[name] {
		for _, buf := range bufs {
			r.pools[pool].Free(buf)
		}
	}
	delete(r.held, name)
	a.Truncate()
	r.logger.Debug("transaction truncated", zap.String("name", name), zap.Int("region_used", a.Used()))
}
