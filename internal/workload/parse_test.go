package workload

import (
	"os"
	"strings"
	"testing"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_File(t *testing.T) {
	f, err := os.Open("testdata/basic.jsonl")
	require.NoError(t, err)
	defer f.Close()

	ops, err := Parse(f)
	require.NoError(t, err)
	require.Len(t, ops, 11)

	assert.Equal(t, Op{Line: 2, Kind: KindBegin, Txn: "t1"}, ops[0])
	assert.Equal(t, Op{Line: 3, Kind: KindCharge, Txn: "t1", Category: models.CategoryStory, Delta: 100}, ops[1])
	assert.Equal(t, Op{Line: 5, Kind: KindPoolAlloc, Txn: "t1", Category: models.CategoryTracker, Pool: "tracker"}, ops[3])
	assert.Equal(t, Op{Line: 6, Kind: KindRegionAlloc, Txn: "t2", Category: models.CategoryStatement, Size: 64, Align: 8}, ops[4])
	assert.Equal(t, 11, ops[8].Line, "blank lines still count")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{"op":`},
		{"missing txn", `{"op":"pin"}`},
		{"unknown op", `{"op":"explode","txn":"a"}`},
		{"unknown category", `{"op":"charge","txn":"a","category":"heap","delta":1}`},
		{"charge without delta", `{"op":"charge","txn":"a","category":"story"}`},
		{"pool op without pool", `{"op":"pool_alloc","txn":"a","category":"tracker"}`},
		{"negative size", `{"op":"region_alloc","txn":"a","category":"story","size":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("\n" + tt.input + "\n"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "got %v", err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}
