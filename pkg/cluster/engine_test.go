package cluster

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allAlgorithms = []Algorithm{AlgorithmDefault, AlgorithmStrict, AlgorithmBalancedStrict, AlgorithmLegacy}

func vol(v int64) *int64     { return &v }
func num(f float64) *float64 { return &f }

func members(res *Result) [][]string {
	out := make([][]string, 0, len(res.Clusters))
	for _, c := range res.Clusters {
		out = append(out, c.Members)
	}
	return out
}

func TestRun_TwoOverlappingOneApart(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"u1", "u2", "u3"}},
		{Keyword: "b", URLs: []string{"u1", "u2", "u4"}},
		{Keyword: "c", URLs: []string{"u9", "u10", "u11"}},
	}

	for _, algo := range []Algorithm{AlgorithmDefault, AlgorithmStrict, AlgorithmBalancedStrict} {
		t.Run(string(algo), func(t *testing.T) {
			res := Run(entries, Options{
				Algorithm:        algo,
				MinIntersections: 2,
				URLsToCheck:      10,
				TieBreak:         ByVolume,
			})
			assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, members(res))
			assert.Equal(t, "a", res.Clusters[0].Representative)
			assert.Equal(t, "c", res.Clusters[1].Representative)
		})
	}
}

func TestRun_AllPairsClearTheBar(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3", "4", "5"}},
		{Keyword: "b", URLs: []string{"1", "2", "3", "6", "7"}},
		{Keyword: "c", URLs: []string{"1", "2", "8", "9", "10"}},
	}
	require.Equal(t, 3, Intersections(entries[0].URLs, entries[1].URLs, 10))
	require.Equal(t, 2, Intersections(entries[0].URLs, entries[2].URLs, 10))
	require.Equal(t, 2, Intersections(entries[1].URLs, entries[2].URLs, 10))

	for _, algo := range []Algorithm{AlgorithmDefault, AlgorithmStrict, AlgorithmBalancedStrict} {
		res := Run(entries, Options{Algorithm: algo, MinIntersections: 2, URLsToCheck: 10, TieBreak: ByVolume})
		assert.Equal(t, [][]string{{"a", "b", "c"}}, members(res), algo)
	}
}

func TestRun_RepresentativeByVolume(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3", "4", "5"}},
		{Keyword: "b", URLs: []string{"1", "2", "3", "6", "7"}},
		{Keyword: "c", URLs: []string{"1", "2", "8", "9", "10"}},
	}
	metrics := map[string]Metrics{
		"a": {Volume: vol(100)},
		"b": {Volume: vol(500)},
		"c": {Volume: vol(50)},
	}

	res := Run(entries, Options{
		Algorithm:        AlgorithmDefault,
		MinIntersections: 2,
		URLsToCheck:      10,
		TieBreak:         ByVolume,
		Metrics:          metrics,
	})

	require.Len(t, res.Clusters, 1)
	assert.Equal(t, "b", res.Clusters[0].Representative)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, res.Clusters[0].Members)

	assert.Equal(t, 5, res.Intersections("b"))
	assert.Equal(t, 3, res.Intersections("a"))
	assert.Equal(t, 2, res.Intersections("c"))
	assert.Equal(t, 0, res.Intersections("unknown"))
}

func TestRun_RepresentativeFollowsStrategy(t *testing.T) {
	// by CPC the seed is "b", but "a" has the highest volume
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3"}},
		{Keyword: "b", URLs: []string{"1", "2", "4"}},
	}
	metrics := map[string]Metrics{
		"a": {Volume: vol(900), CPC: num(0.5)},
		"b": {Volume: vol(10), CPC: num(3.2)},
	}

	byCPC := Run(entries, Options{Algorithm: AlgorithmStrict, MinIntersections: 2, URLsToCheck: 10, TieBreak: ByCPC, Metrics: metrics})
	assert.Equal(t, "b", byCPC.Clusters[0].Seed)
	assert.Equal(t, "b", byCPC.Clusters[0].Representative)

	byVolume := Run(entries, Options{Algorithm: AlgorithmStrict, MinIntersections: 2, URLsToCheck: 10, TieBreak: ByVolume, Metrics: metrics})
	assert.Equal(t, "a", byVolume.Clusters[0].Seed)
	assert.Equal(t, "a", byVolume.Clusters[0].Representative)
}

func TestRun_StrictRejectsWhatDefaultAccepts(t *testing.T) {
	// a-b and a-c overlap, b-c do not
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3", "4"}},
		{Keyword: "b", URLs: []string{"1", "2", "5", "6"}},
		{Keyword: "c", URLs: []string{"3", "4", "7", "8"}},
	}
	opts := Options{MinIntersections: 2, URLsToCheck: 10, TieBreak: ByVolume}

	opts.Algorithm = AlgorithmDefault
	assert.Equal(t, [][]string{{"a", "b", "c"}}, members(Run(entries, opts)))

	opts.Algorithm = AlgorithmStrict
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, members(Run(entries, opts)))

	opts.Algorithm = AlgorithmBalancedStrict
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, members(Run(entries, opts)))
}

func TestRun_ThresholdIsInclusive(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3"}},
		{Keyword: "b", URLs: []string{"1", "2", "9"}},
	}
	for _, algo := range []Algorithm{AlgorithmDefault, AlgorithmStrict, AlgorithmBalancedStrict} {
		joined := Run(entries, Options{Algorithm: algo, MinIntersections: 2, URLsToCheck: 10})
		assert.Len(t, joined.Clusters, 1, algo)

		apart := Run(entries, Options{Algorithm: algo, MinIntersections: 3, URLsToCheck: 10})
		assert.Len(t, apart.Clusters, 2, algo)
	}
}

func TestRun_TruncatesBeforeComparing(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2", "3", "4"}},
		{Keyword: "b", URLs: []string{"9", "8", "3", "4"}},
	}
	res := Run(entries, Options{Algorithm: AlgorithmDefault, MinIntersections: 2, URLsToCheck: 2})
	assert.Len(t, res.Clusters, 2)

	res = Run(entries, Options{Algorithm: AlgorithmDefault, MinIntersections: 2, URLsToCheck: 4})
	assert.Len(t, res.Clusters, 1)
}

func TestRun_EmptyAndSingle(t *testing.T) {
	for _, algo := range allAlgorithms {
		res := Run(nil, Options{Algorithm: algo, MinIntersections: 3, URLsToCheck: 10})
		assert.Empty(t, res.Clusters)
		assert.Equal(t, Stats{}, res.Stats())

		res = Run([]Entry{{Keyword: "solo", URLs: []string{"1"}}}, Options{Algorithm: algo, MinIntersections: 50, URLsToCheck: 1})
		require.Len(t, res.Clusters, 1)
		assert.Equal(t, Cluster{Seed: "solo", Representative: "solo", Members: []string{"solo"}}, res.Clusters[0])
	}
}

func TestRun_DuplicateKeywordsCollapse(t *testing.T) {
	entries := []Entry{
		{Keyword: "a", URLs: []string{"1", "2"}},
		{Keyword: "a", URLs: []string{"7", "8"}},
		{Keyword: "b", URLs: []string{"1", "2"}},
	}
	res := Run(entries, Options{Algorithm: AlgorithmDefault, MinIntersections: 2, URLsToCheck: 10})
	assert.Equal(t, [][]string{{"a", "b"}}, members(res))
}

func TestRun_SingletonsWhenMinExceedsURLs(t *testing.T) {
	entries := randomEntries(rand.New(rand.NewSource(7)), 40, 12)
	for _, algo := range allAlgorithms {
		res := Run(entries, Options{Algorithm: algo, MinIntersections: 6, URLsToCheck: 5, TieBreak: ByVolume})
		assert.Len(t, res.Clusters, len(entries), algo)
		for _, c := range res.Clusters {
			assert.Equal(t, 1, c.Size())
		}
	}
}

func TestRun_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		entries := randomEntries(rng, 30+rng.Intn(40), 15+rng.Intn(20))
		metrics := randomMetrics(rng, entries)
		for _, algo := range allAlgorithms {
			for _, tb := range []TieBreak{ByVolume, ByCPC} {
				res := Run(entries, Options{
					Algorithm:        algo,
					MinIntersections: 1 + rng.Intn(4),
					URLsToCheck:      5 + rng.Intn(6),
					TieBreak:         tb,
					Metrics:          metrics,
				})

				seen := make(map[string]int)
				for _, c := range res.Clusters {
					require.NotEmpty(t, c.Members)
					assert.Equal(t, c.Seed, c.Members[0])
					assert.Contains(t, c.Members, c.Representative)
					for _, m := range c.Members {
						seen[m]++
					}
				}
				assert.Len(t, seen, len(entries))
				for kw, n := range seen {
					assert.Equal(t, 1, n, "keyword %s placed %d times", kw, n)
				}
				assert.Equal(t, len(entries), res.Stats().Keywords)
			}
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	entries := randomEntries(rng, 80, 25)
	metrics := randomMetrics(rng, entries)

	for _, algo := range allAlgorithms {
		opts := Options{Algorithm: algo, MinIntersections: 2, URLsToCheck: 10, TieBreak: ByVolume, Metrics: metrics}
		first := Run(entries, opts)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first.Clusters, Run(entries, opts).Clusters, algo)
		}
	}
}

func TestRun_StrictRefinesDefault(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 25; round++ {
		entries := randomEntries(rng, 40, 18)
		metrics := randomMetrics(rng, entries)
		opts := Options{MinIntersections: 2, URLsToCheck: 8, TieBreak: ByVolume, Metrics: metrics}

		opts.Algorithm = AlgorithmStrict
		strict := Run(entries, opts)
		opts.Algorithm = AlgorithmDefault
		def := Run(entries, opts)

		// both start from the same top-ranked seed and the same pool
		require.Equal(t, strict.Clusters[0].Seed, def.Clusters[0].Seed)
		assert.Subset(t, def.Clusters[0].Members, strict.Clusters[0].Members)

		for _, c := range strict.Clusters {
			for i := range c.Members {
				for j := i + 1; j < len(c.Members); j++ {
					assert.GreaterOrEqual(t, strict.Between(c.Members[i], c.Members[j]), opts.MinIntersections)
				}
			}
		}
		for _, c := range def.Clusters {
			for _, m := range c.Members[1:] {
				assert.GreaterOrEqual(t, def.Between(m, c.Seed), opts.MinIntersections)
			}
		}
	}
}

func TestIntersections_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	entries := randomEntries(rng, 30, 20)
	for _, a := range entries {
		for _, b := range entries {
			for _, n := range []int{1, 5, 10, 20} {
				assert.Equal(t, Intersections(a.URLs, b.URLs, n), Intersections(b.URLs, a.URLs, n))
			}
		}
	}
}

func TestIntersections_SetSemantics(t *testing.T) {
	assert.Equal(t, 1, Intersections([]string{"u1", "u1", "u2"}, []string{"u1"}, 10))
	assert.Equal(t, 0, Intersections([]string{"a", "b", "c"}, []string{"c"}, 2))
	assert.Equal(t, 0, Intersections(nil, []string{"c"}, 10))
	assert.Equal(t, 2, Intersections([]string{"b", "a"}, []string{"a", "b"}, 2))
}

func randomEntries(rng *rand.Rand, n, universe int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		urls := make([]string, 10)
		for j := range urls {
			urls[j] = fmt.Sprintf("https://site-%d.example/", rng.Intn(universe))
		}
		entries[i] = Entry{Keyword: fmt.Sprintf("kw-%03d", i), URLs: urls}
	}
	return entries
}

func randomMetrics(rng *rand.Rand, entries []Entry) map[string]Metrics {
	metrics := make(map[string]Metrics, len(entries))
	for _, e := range entries {
		var m Metrics
		// small ranges so that ties actually happen
		if rng.Intn(4) > 0 {
			m.Volume = vol(int64(rng.Intn(5) * 100))
		}
		if rng.Intn(3) > 0 {
			m.CPC = num(float64(rng.Intn(4)) / 2)
		}
		if rng.Intn(2) > 0 {
			m.Difficulty = num(float64(rng.Intn(3) * 20))
		}
		metrics[e.Keyword] = m
	}
	return metrics
}
