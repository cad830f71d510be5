package txstat

import (
	"strconv"

	"github.com/genc-murat/txstat/internal/core/models"
)

// Stats summarizes every category. It does not mutate the manager.
func (m *Manager) Stats() models.StatInfo {
	var info models.StatInfo
	for i := range m.aggregates {
		info[i] = m.aggregates[i].snapshot()
	}
	return info
}

// LiveCount returns the number of transactions that currently have a sample in cat.
func (m *Manager) LiveCount(cat models.Category) int64 {
	return m.aggregates[cat].liveCount
}

// Snapshot returns Stats and Len together.
func (m *Manager) Snapshot() (models.StatInfo, int) {
	return m.Stats(), m.Len()
}

// InfoFields renders a snapshot as INFO-style fields, e.g. "story_max" -> "150".
func InfoFields(stats models.StatInfo, tracked int) map[string]string {
	info := map[string]string{
		"tracked_transactions": strconv.Itoa(tracked),
	}
	for _, cat := range models.Categories() {
		s := stats[cat]
		name := cat.String()
		info[name+"_min"] = strconv.FormatInt(s.Min, 10)
		info[name+"_max"] = strconv.FormatInt(s.Max, 10)
		info[name+"_avg"] = strconv.FormatInt(s.Avg, 10)
		info[name+"_total"] = strconv.FormatInt(s.Total, 10)
	}
	return info
}
