package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_MissingDifficultySortsLast(t *testing.T) {
	metrics := map[string]Metrics{
		"d": {Volume: vol(300)},
		"e": {Volume: vol(300), Difficulty: num(30)},
	}
	assert.Equal(t, []string{"e", "d"}, Rank([]string{"d", "e"}, metrics, ByVolume))
}

func TestRank_ZeroDifficultyIsReal(t *testing.T) {
	metrics := map[string]Metrics{
		"hard": {Volume: vol(10), Difficulty: num(90)},
		"easy": {Volume: vol(10), Difficulty: num(0)},
	}
	assert.Equal(t, []string{"easy", "hard"}, Rank([]string{"hard", "easy"}, metrics, ByVolume))
}

func TestRank_ByCPCThenVolume(t *testing.T) {
	metrics := map[string]Metrics{
		"a": {CPC: num(1.5), Volume: vol(100)},
		"b": {CPC: num(2.5), Volume: vol(10)},
		"c": {CPC: num(1.5), Volume: vol(900)},
		"d": {},
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, Rank([]string{"a", "b", "c", "d"}, metrics, ByCPC))
}

func TestRank_StableOnFullTie(t *testing.T) {
	in := []string{"z", "y", "x"}
	assert.Equal(t, in, Rank(in, nil, ByVolume))
	assert.Equal(t, in, Rank(in, nil, ByCPC))
	// input untouched
	assert.Equal(t, []string{"z", "y", "x"}, in)
}

func TestRepresentative(t *testing.T) {
	metrics := map[string]Metrics{
		"a": {Volume: vol(100)},
		"b": {Volume: vol(500)},
		"c": {Volume: vol(50)},
	}
	assert.Equal(t, "b", Representative([]string{"a", "b", "c"}, metrics, ByVolume))
	assert.Equal(t, "", Representative(nil, metrics, ByVolume))
}

func TestMetricsDefaults(t *testing.T) {
	var m Metrics
	assert.Equal(t, int64(0), m.SearchVolume())
	assert.Equal(t, 0.0, m.CostPerClick())
	assert.Equal(t, MissingDifficulty, m.KeywordDifficulty())
}

func TestEntriesFromMap(t *testing.T) {
	entries := EntriesFromMap(map[string][]string{"b": {"2"}, "a": {"1"}})
	assert.Equal(t, []Entry{{Keyword: "a", URLs: []string{"1"}}, {Keyword: "b", URLs: []string{"2"}}}, entries)
}
