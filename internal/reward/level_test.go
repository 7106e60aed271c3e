package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{
		{0, 1}, {10, 1}, {499, 1}, {500, 2}, {999, 2}, {1000, 3}, {-20, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.total), "total=%d", tc.total)
	}
}

func TestRankBandsAreExhaustiveAndDisjoint(t *testing.T) {
	for level := 1; level <= 500; level++ {
		matches := 0
		for _, r := range Ranks() {
			if level >= r.MinLevel && (r.MaxLevel == 0 || level <= r.MaxLevel) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "level %d", level)
	}
}

func TestRankFor(t *testing.T) {
	assert.Equal(t, "Bronze", RankFor(1).Name)
	assert.Equal(t, "Bronze", RankFor(5).Name)
	assert.Equal(t, "Silver", RankFor(6).Name)
	assert.Equal(t, "Gold", RankFor(20).Name)
	assert.Equal(t, "Platinum", RankFor(21).Name)
	assert.Equal(t, "Diamond", RankFor(50).Name)
	assert.Equal(t, "Heroic", RankFor(51).Name)
	assert.Equal(t, "Master", RankFor(100).Name)
	assert.Equal(t, "Grandmaster", RankFor(101).Name)
	assert.Equal(t, "fa-dragon", RankFor(9999).Icon)
	assert.Equal(t, "Bronze", RankFor(0).Name)
}
