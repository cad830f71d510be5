package app

import (
	"context"
	"strings"
	"testing"

	"github.com/genc-murat/txstat/internal/config"
	"github.com/genc-murat/txstat/internal/txstat"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `{"op":"charge","txn":"a","category":"story","delta":100}
{"op":"charge","txn":"a","category":"story","delta":50}
{"op":"pool_alloc","txn":"b","pool":"tracker","category":"tracker"}
`

func TestApp_ReplayAndReport(t *testing.T) {
	a, err := New(config.Default(), nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Replay(strings.NewReader(script)))

	report := a.Report()
	assert.True(t, strings.HasPrefix(report, "# Transactions\r\n"))
	assert.Contains(t, report, "story_max:150\r\n")
	assert.Contains(t, report, "tracker_total:48\r\n")
	assert.Contains(t, report, "tracked_transactions:2\r\n")

	filtered := a.Report("story_*", "tracked_transactions")
	assert.Contains(t, filtered, "story_max:150\r\n")
	assert.Contains(t, filtered, "tracked_transactions:2\r\n")
	assert.NotContains(t, filtered, "tracker_total")

	families, err := a.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestApp_ReplayViolation(t *testing.T) {
	a, err := New(config.Default(), nil)
	require.NoError(t, err)
	defer a.Close()

	err = a.Replay(strings.NewReader(`{"op":"unpin","txn":"a"}`))
	assert.True(t, errors.Is(err, txstat.ErrNegativeTotal), "got %v", err)
}

func TestApp_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Gatherer())
	assert.Error(t, a.Serve(context.Background()))
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Pools["tracker"] = -1
	_, err := New(cfg, nil)
	assert.Error(t, err)
}
