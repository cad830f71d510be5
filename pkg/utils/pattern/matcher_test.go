package pattern_test

import (
	"testing"

	"github.com/genc-murat/txstat/pkg/utils/pattern"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		str     string
		want    bool
	}{
		{"*", "story_max", true},
		{"story_*", "story_max", true},
		{"story_*", "statement_max", false},
		{"*_total", "tracker_total", true},
		{"s?ory_min", "story_min", true},
		{"[st]*_avg", "story_avg", true},
		{"[st]*_avg", "savepoint_avg", true},
		{"[st]*_avg", "pinned_tuple_avg", false},
		{"tracked_transactions", "tracked_transactions", true},
		{"\\*", "*", true},
		{"\\.", ".", true},
		{"a.b", "axb", false},
		{"[unterminated", "[unterminated", false},
	}

	m := pattern.NewMatcher()
	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.str, func(t *testing.T) {
			assert.Equal(t, tt.want, m.MatchCached(tt.pattern, tt.str))
		})
	}
}

func TestMatchCached(t *testing.T) {
	m := pattern.NewMatcher()
	for i := 0; i < 3; i++ {
		assert.True(t, m.MatchCached("story_*", "story_total"))
		assert.False(t, m.MatchCached("story_*", "tracker_total"))
	}
	assert.True(t, m.MatchAny([]string{"tracker_*", "story_*"}, "story_min"))
	assert.False(t, m.MatchAny(nil, "story_min"))
}

func TestFilter(t *testing.T) {
	fields := map[string]string{
		"story_min":            "0",
		"story_max":            "10",
		"tracker_max":          "5",
		"tracked_transactions": "1",
	}
	m := pattern.NewMatcher()

	assert.Equal(t, fields, m.Filter(fields, nil))
	assert.Equal(t, map[string]string{
		"story_max":   "10",
		"tracker_max": "5",
	}, m.Filter(fields, []string{"*_max"}))
	assert.Equal(t, map[string]string{
		"tracked_transactions": "1",
		"story_min":            "0",
	}, m.Filter(fields, []string{"tracked_*", "story_min"}))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, pattern.Validate([]string{"story_*", "[ab]?"}))
	assert.Error(t, pattern.Validate([]string{"ok", "[broken"}))
}
