package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/genc-murat/txstat/internal/config"
	"github.com/genc-murat/txstat/internal/core/ports"
	"github.com/genc-murat/txstat/internal/memory"
	"github.com/genc-murat/txstat/internal/metrics"
	"github.com/genc-murat/txstat/internal/txn"
	"github.com/genc-murat/txstat/internal/txstat"
	"github.com/genc-murat/txstat/internal/workload"
	util "github.com/genc-murat/txstat/pkg/utils"
	"github.com/genc-murat/txstat/pkg/utils/pattern"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App owns the accounting context for one process: the manager, the
// transaction table, the shared slab pools and the metrics registry. It is
// built at startup and closed at shutdown.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	acc      *txstat.Synchronized
	table    *txn.Table
	pools    map[string]ports.FixedPool
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manager, err := txstat.New(cfg.Accounting(), logger.Named("txstat"))
	if err != nil {
		return nil, err
	}
	table, err := txn.NewTable(cfg.Regions())
	if err != nil {
		return nil, err
	}

	pools := make(map[string]ports.FixedPool, len(cfg.Memory.Pools))
	for name, size := range cfg.Memory.Pools {
		pool, err := memory.NewFixedPool(size, cfg.Memory.PoolMaxObjects)
		if err != nil {
			return nil, errors.Wrapf(err, "pool %q", name)
		}
		pools[name] = pool
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		acc:    txstat.NewSynchronized(manager),
		table:  table,
		pools:  pools,
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewMetrics(cfg.Metrics.Namespace, a.acc)
		manager.AddObserver(a.metrics)
		a.registry = prometheus.NewRegistry()
		if err := a.registry.Register(a.metrics); err != nil {
			return nil, errors.Wrap(err, "register metrics")
		}
	}
	return a, nil
}

func (a *App) Accountant() ports.Accountant {
	return a.acc
}

// Replay parses a workload script and runs it against the accountant.
func (a *App) Replay(r io.Reader) error {
	ops, err := workload.Parse(r)
	if err != nil {
		return err
	}
	runner := workload.NewRunner(a.acc, a.table, a.pools, a.logger.Named("workload"))
	return runner.Run(ops)
}

// Report renders the current statistics as an INFO section, keeping only
// the fields that match one of patterns when any are given.
func (a *App) Report(patterns ...string) string {
	fields := txstat.InfoFields(a.acc.Snapshot())
	return util.FormatInfoSection("Transactions", pattern.NewMatcher().Filter(fields, patterns))
}

// Serve exposes the metrics registry over HTTP until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	if a.registry == nil {
		return errors.New("metrics are disabled")
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving metrics", zap.String("addr", srv.Addr), zap.String("path", a.cfg.Metrics.Path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Gatherer is nil when metrics are disabled.
func (a *App) Gatherer() prometheus.Gatherer {
	if a.registry == nil {
		return nil
	}
	return a.registry
}

func (a *App) Close() {
	a.acc.Close()
	_ = a.logger.Sync()
}
