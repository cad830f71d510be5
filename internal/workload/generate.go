package workload

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// GenerateOptions shapes a random workload.
type GenerateOptions struct {
	Seed int64
	// Txns is the number of concurrently named script transactions.
	Txns int
	Ops  int
	// Pools maps pool names to object sizes, as in the memory config.
	Pools map[string]int
	// PoolCapacity caps live objects per pool across all transactions; 0 means unlimited.
	PoolCapacity int
	// RegionBudget caps the bytes a transaction allocates from its region
	// between truncations; 0 means unlimited.
	RegionBudget int
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Seed: 1,
		Txns: 8,
		Ops:  1000,
		Pools: map[string]int{
			"tracker": 48,
			"story":   96,
		},
		PoolCapacity: 64,
		RegionBudget: 1 << 20,
	}
}

type heldObject struct {
	category models.Category
	size     int64
}

type genTxn struct {
	totals [models.NumCategories]int64
	// pooled is the part of each total backed by held pool objects.
	pooled [models.NumCategories]int64
	held   map[string][]heldObject
	region int
}

func (t *genTxn) reset() {
	*t = genTxn{held: make(map[string][]heldObject)}
}

type generator struct {
	opts  GenerateOptions
	rng   *rand.Rand
	names []string
	pools []string
	live  map[string]int
	txns  map[string]*genTxn
	cats  []models.Category
}

// Generate produces a workload that replays without contract violations:
// discharges never exceed what the transaction holds, unpins follow pins and
// pool frees follow pool allocations from the same pool. The same options
// always produce the same ops.
func Generate(opts GenerateOptions) ([]Op, error) {
	if opts.Txns <= 0 || opts.Ops < 0 {
		return nil, errors.Errorf("workload: generate needs txns > 0 and ops >= 0, got %d and %d", opts.Txns, opts.Ops)
	}
	bad := lo.PickBy(opts.Pools, func(_ string, size int) bool { return size <= 0 })
	if len(bad) > 0 {
		return nil, errors.Errorf("workload: non-positive pool object size for %v", lo.Keys(bad))
	}

	g := &generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		live: make(map[string]int),
		txns: make(map[string]*genTxn),
		cats: lo.Reject(models.Categories(), func(c models.Category, _ int) bool { return c.IsCount() }),
	}
	for i := 0; i < opts.Txns; i++ {
		g.names = append(g.names, fmt.Sprintf("t%d", i))
	}
	g.pools = lo.Keys(opts.Pools)
	sort.Strings(g.pools)

	ops := make([]Op, 0, opts.Ops)
	for len(ops) < opts.Ops {
		ops = append(ops, g.next())
	}
	for i := range ops {
		ops[i].Line = i + 1
	}
	return ops, nil
}

func (g *generator) txn(name string) *genTxn {
	t := g.txns[name]
	if t == nil {
		t = &genTxn{}
		t.reset()
		g.txns[name] = t
	}
	return t
}

func (g *generator) next() Op {
	name := g.names[g.rng.Intn(len(g.names))]
	t := g.txn(name)

	for {
		switch roll := g.rng.Intn(100); {
		case roll < 30:
			return g.charge(name, t)
		case roll < 45:
			if op, ok := g.poolAlloc(name, t); ok {
				return op
			}
		case roll < 55:
			if op, ok := g.poolFree(name, t); ok {
				return op
			}
		case roll < 72:
			if op, ok := g.regionAlloc(name, t); ok {
				return op
			}
		case roll < 82:
			t.totals[models.CategoryPinnedTuple]++
			return Op{Kind: KindPin, Txn: name}
		case roll < 90:
			if t.totals[models.CategoryPinnedTuple] > 0 {
				t.totals[models.CategoryPinnedTuple]--
				return Op{Kind: KindUnpin, Txn: name}
			}
		case roll < 96:
			g.release(t)
			return Op{Kind: KindTruncate, Txn: name}
		default:
			g.release(t)
			delete(g.txns, name)
			return Op{Kind: KindEnd, Txn: name}
		}
	}
}

func (g *generator) charge(name string, t *genTxn) Op {
	cat := g.cats[g.rng.Intn(len(g.cats))]
	delta := int64(g.rng.Intn(4096) + 1)
	// Only charges may be discharged freely; pool-backed bytes go back with their free.
	if free := t.totals[cat] - t.pooled[cat]; free > 0 && g.rng.Intn(3) == 0 {
		delta = -(g.rng.Int63n(free) + 1)
	}
	t.totals[cat] += delta
	return Op{Kind: KindCharge, Txn: name, Category: cat, Delta: delta}
}

func (g *generator) poolAlloc(name string, t *genTxn) (Op, bool) {
	if len(g.pools) == 0 {
		return Op{}, false
	}
	pool := g.pools[g.rng.Intn(len(g.pools))]
	if g.opts.PoolCapacity > 0 && g.live[pool] >= g.opts.PoolCapacity {
		return Op{}, false
	}
	cat := g.cats[g.rng.Intn(len(g.cats))]
	size := int64(g.opts.Pools[pool])

	t.held[pool] = append(t.held[pool], heldObject{category: cat, size: size})
	t.totals[cat] += size
	t.pooled[cat] += size
	g.live[pool]++
	return Op{Kind: KindPoolAlloc, Txn: name, Pool: pool, Category: cat}, true
}

func (g *generator) poolFree(name string, t *genTxn) (Op, bool) {
	pools := lo.Filter(g.pools, func(p string, _ int) bool { return len(t.held[p]) > 0 })
	if len(pools) == 0 {
		return Op{}, false
	}
	pool := pools[g.rng.Intn(len(pools))]
	objs := t.held[pool]
	obj := objs[len(objs)-1]
	t.held[pool] = objs[:len(objs)-1]

	t.totals[obj.category] -= obj.size
	t.pooled[obj.category] -= obj.size
	g.live[pool]--
	return Op{Kind: KindPoolFree, Txn: name, Pool: pool, Category: obj.category}, true
}

func (g *generator) regionAlloc(name string, t *genTxn) (Op, bool) {
	size := g.rng.Intn(512) + 1
	align := 0
	if g.rng.Intn(2) == 0 {
		align = 1 << g.rng.Intn(5)
	}
	if g.opts.RegionBudget > 0 && t.region+size+align > g.opts.RegionBudget {
		return Op{}, false
	}
	cat := g.cats[g.rng.Intn(len(g.cats))]
	t.region += size + align
	t.totals[cat] += int64(size)
	return Op{Kind: KindRegionAlloc, Txn: name, Category: cat, Size: size, Align: align}, true
}

// release mirrors the runner handing held pool objects back on truncation.
func (g *generator) release(t *genTxn) {
	for pool, objs := range t.held {
		g.live[pool] -= len(objs)
	}
	t.reset()
}

type encodedOp struct {
	Op       Kind   `json:"op"`
	Txn      string `json:"txn"`
	Category string `json:"category,omitempty"`
	Delta    *int64 `json:"delta,omitempty"`
	Pool     string `json:"pool,omitempty"`
	Size     int    `json:"size,omitempty"`
	Align    int    `json:"align,omitempty"`
}

// Encode writes ops as a JSON-lines workload that Parse reads back.
func Encode(w io.Writer, ops []Op) error {
	enc := json.NewEncoder(w)
	for _, op := range ops {
		e := encodedOp{Op: op.Kind, Txn: op.Txn, Pool: op.Pool, Size: op.Size, Align: op.Align}
		switch op.Kind {
		case KindCharge:
			delta := op.Delta
			e.Delta = &delta
			e.Category = op.Category.String()
		case KindPoolAlloc, KindPoolFree, KindRegionAlloc:
			e.Category = op.Category.String()
		}
		if err := enc.Encode(e); err != nil {
			return errors.Wrapf(err, "encode line %d", op.Line)
		}
	}
	return nil
}
