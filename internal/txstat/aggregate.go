package txstat

import (
	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/genc-murat/txstat/internal/core/ports"
)

// aggregate tracks the live per-transaction totals of one category. Every
// sample collected for a (transaction, category) pair is discarded exactly
// once: when the total changes again or when the record is torn down.
type aggregate struct {
	hist      ports.Histogram
	total     int64
	liveCount int64
}

func (a *aggregate) applyDelta(old, next int64, first bool) {
	if first {
		a.hist.Update(nil, next)
		a.liveCount++
		a.total += next
		return
	}
	a.hist.Update(&old, next)
	a.total += next - old
}

func (a *aggregate) finalizeRemoval(final int64) {
	a.hist.Discard(final)
	a.liveCount--
	a.total -= final
}

func (a *aggregate) snapshot() models.CategoryStat {
	stat := models.CategoryStat{
		Min:   a.hist.PercentileLower(0),
		Max:   a.hist.Max(),
		Total: a.total,
	}
	if a.liveCount > 0 {
		stat.Avg = a.total / a.liveCount
	}
	return stat
}
