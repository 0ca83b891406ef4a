package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fiveWithCore returns five keywords that all share the "core" URL and each
// own one private URL a1..a5.
func fiveWithCore() []Entry {
	entries := make([]Entry, 0, 5)
	for i := 1; i <= 5; i++ {
		entries = append(entries, Entry{
			Keyword: fmt.Sprintf("k%d", i),
			URLs:    []string{"core", fmt.Sprintf("a%d", i)},
		})
	}
	return entries
}

func TestBalancedStrict_EightyPercentForSixthMember(t *testing.T) {
	entries := append(fiveWithCore(), Entry{Keyword: "x", URLs: []string{"a1", "a2", "a3", "a4"}})
	opts := Options{MinIntersections: 1, URLsToCheck: 10, TieBreak: ByVolume}

	opts.Algorithm = AlgorithmBalancedStrict
	res := Run(entries, opts)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "x"}, res.Clusters[0].Members)

	opts.Algorithm = AlgorithmStrict
	res = Run(entries, opts)
	assert.Equal(t, [][]string{{"k1", "k2", "k3", "k4", "k5"}, {"x"}}, members(res))
}

func TestBalancedStrict_BelowEightyPercentStaysOut(t *testing.T) {
	entries := append(fiveWithCore(), Entry{Keyword: "x", URLs: []string{"a1", "a2", "a3"}})
	res := Run(entries, Options{Algorithm: AlgorithmBalancedStrict, MinIntersections: 1, URLsToCheck: 10})
	assert.Equal(t, [][]string{{"k1", "k2", "k3", "k4", "k5"}, {"x"}}, members(res))
}

func TestBalancedStrict_SmallClustersNeedEveryMember(t *testing.T) {
	entries := []Entry{
		{Keyword: "k1", URLs: []string{"core", "a1"}},
		{Keyword: "k2", URLs: []string{"core", "a2"}},
		{Keyword: "k3", URLs: []string{"core", "a3"}},
		{Keyword: "y", URLs: []string{"a1", "a2"}},
	}
	res := Run(entries, Options{Algorithm: AlgorithmBalancedStrict, MinIntersections: 1, URLsToCheck: 10})
	assert.Equal(t, [][]string{{"k1", "k2", "k3"}, {"y"}}, members(res))
}

func TestBalancedStrict_RepeatsPassesUntilStable(t *testing.T) {
	// z is ranked before k3..k5 and fails the 100% rule against {k1, k2},
	// then qualifies on the second pass once the cluster has five members.
	entries := []Entry{
		{Keyword: "k1", URLs: []string{"core", "a1"}},
		{Keyword: "k2", URLs: []string{"core", "b2"}},
		{Keyword: "z", URLs: []string{"a1", "a3", "a4", "a5"}},
		{Keyword: "k3", URLs: []string{"core", "a3"}},
		{Keyword: "k4", URLs: []string{"core", "a4"}},
		{Keyword: "k5", URLs: []string{"core", "a5"}},
	}
	opts := Options{MinIntersections: 1, URLsToCheck: 10, TieBreak: ByVolume}

	opts.Algorithm = AlgorithmBalancedStrict
	res := Run(entries, opts)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "z"}, res.Clusters[0].Members)

	opts.Algorithm = AlgorithmStrict
	assert.Equal(t, [][]string{{"k1", "k2", "k3", "k4", "k5"}, {"z"}}, members(Run(entries, opts)))
}

func TestBalancedStrict_SixtyPercentForLargeClusters(t *testing.T) {
	// ten keywords sharing "core", then w matching exactly six of them
	entries := make([]Entry, 0, 11)
	for i := 1; i <= 10; i++ {
		entries = append(entries, Entry{Keyword: fmt.Sprintf("k%02d", i), URLs: []string{"core", fmt.Sprintf("a%d", i)}})
	}
	w := Entry{Keyword: "w", URLs: []string{"a1", "a2", "a3", "a4", "a5", "a6"}}
	res := Run(append(entries, w), Options{Algorithm: AlgorithmBalancedStrict, MinIntersections: 1, URLsToCheck: 10})
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, 11, res.Clusters[0].Size())

	w.URLs = w.URLs[:5]
	res = Run(append(entries, w), Options{Algorithm: AlgorithmBalancedStrict, MinIntersections: 1, URLsToCheck: 10})
	assert.Len(t, res.Clusters, 2)
}

func TestRequiredMatchPercent(t *testing.T) {
	cases := map[int]int{2: 100, 5: 100, 6: 80, 10: 80, 11: 60, 40: 60}
	for size, want := range cases {
		assert.Equal(t, want, requiredMatchPercent(size), "size %d", size)
	}
}

func TestLegacy_FixedSeedThresholds(t *testing.T) {
	seed := make([]string, 10)
	for i := range seed {
		seed[i] = fmt.Sprintf("u%d", i)
	}
	eight := append(append([]string{}, seed[:8]...), "x1", "x2")
	seven := append(append([]string{}, seed[:7]...), "y1", "y2", "y3")

	entries := []Entry{
		{Keyword: "seed", URLs: seed},
		{Keyword: "eight", URLs: eight},
		{Keyword: "seven", URLs: seven},
	}
	res := Run(entries, Options{Algorithm: AlgorithmLegacy, MinIntersections: 3, URLsToCheck: 10})
	assert.Equal(t, [][]string{{"seed", "eight"}, {"seven"}}, members(res))

	// the minimum still applies on top of the fixed threshold
	res = Run(entries, Options{Algorithm: AlgorithmLegacy, MinIntersections: 9, URLsToCheck: 10})
	assert.Len(t, res.Clusters, 3)
}

func TestLegacyThreshold(t *testing.T) {
	assert.Equal(t, 8, legacyThreshold(2))
	assert.Equal(t, 8, legacyThreshold(5))
	assert.Equal(t, 6, legacyThreshold(6))
	assert.Equal(t, 6, legacyThreshold(10))
	assert.Equal(t, 4, legacyThreshold(11))
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmStrict, a)

	a, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBalancedStrict, a)

	_, err = ParseAlgorithm("semantic")
	assert.Error(t, err)

	tb, err := ParseTieBreak("CPC")
	require.NoError(t, err)
	assert.Equal(t, ByCPC, tb)

	_, err = ParseTieBreak("kd")
	assert.Error(t, err)
}
