package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOrdersByScoreThenID(t *testing.T) {
	got := Rank(map[string]int{
		"c": 1,
		"a": 2,
		"b": 1,
		"z": 0,
	})
	want := []ScoredDoc{
		{DocID: "a", Score: 2},
		{DocID: "b", Score: 1},
		{DocID: "c", Score: 1},
	}
	assert.Equal(t, want, got)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestEqual(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 1}}
	assert.True(t, Equal(a, []ScoredDoc{{DocID: "x", Score: 1}}))
	assert.False(t, Equal(a, []ScoredDoc{{DocID: "x", Score: 2}}))
	assert.False(t, Equal(a, nil))
}
