package metrics

import (
	"sync/atomic"
	"time"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is read on every scrape. When scrapes run alongside accounting
// calls, pass a txstat.Synchronized.
type StatsSource interface {
	Snapshot() (models.StatInfo, int)
}

// Metrics counts accounting operations and exports the per-category
// summaries as Prometheus metrics. Register it as an observer on the manager
// and as a collector on a registry.
type Metrics struct {
	source    StatsSource
	startTime time.Time
	charges   [models.NumCategories]int64
	truncates int64

	statDesc      *prometheus.Desc
	trackedDesc   *prometheus.Desc
	chargesDesc   *prometheus.Desc
	truncatesDesc *prometheus.Desc
}

func NewMetrics(namespace string, source StatsSource) *Metrics {
	return &Metrics{
		source:    source,
		startTime: time.Now(),
		statDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "txn", "stat"),
			"Summary of live per-transaction totals by category.",
			[]string{"category", "kind"}, nil,
		),
		trackedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "txn", "tracked"),
			"Number of transactions with an accounting record.",
			nil, nil,
		),
		chargesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "txn", "charges_total"),
			"Accounting charges applied.",
			[]string{"category"}, nil,
		),
		truncatesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "txn", "truncates_total"),
			"Transactions torn down by truncate.",
			nil, nil,
		),
	}
}

func (m *Metrics) OnCharge(cat models.Category, _ int64) {
	atomic.AddInt64(&m.charges[cat], 1)
}

func (m *Metrics) OnTruncate(models.TxnID) {
	atomic.AddInt64(&m.truncates, 1)
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.statDesc
	ch <- m.trackedDesc
	ch <- m.chargesDesc
	ch <- m.truncatesDesc
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	stats, tracked := m.source.Snapshot()
	for _, cat := range models.Categories() {
		s := stats[cat]
		for _, kv := range []struct {
			kind  string
			value int64
		}{{"min", s.Min}, {"max", s.Max}, {"avg", s.Avg}, {"total", s.Total}} {
			ch <- prometheus.MustNewConstMetric(m.statDesc, prometheus.GaugeValue, float64(kv.value), cat.String(), kv.kind)
		}
		ch <- prometheus.MustNewConstMetric(m.chargesDesc, prometheus.CounterValue,
			float64(atomic.LoadInt64(&m.charges[cat])), cat.String())
	}
	ch <- prometheus.MustNewConstMetric(m.trackedDesc, prometheus.GaugeValue, float64(tracked))
	ch <- prometheus.MustNewConstMetric(m.truncatesDesc, prometheus.CounterValue, float64(atomic.LoadInt64(&m.truncates)))
}

func (m *Metrics) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})
	stats["uptime_in_seconds"] = int(time.Since(m.startTime).Seconds())
	stats["truncates"] = atomic.LoadInt64(&m.truncates)

	charges := make(map[string]int64)
	for _, cat := range models.Categories() {
		charges[cat.String()] = atomic.LoadInt64(&m.charges[cat])
	}
	stats["charges"] = charges

	return stats
}
