package cluster

// Result is the output of one clustering run. It is owned by the caller and
// keeps the truncated URL sets so that consumers can compute overlaps.
type Result struct {
	Clusters []Cluster

	sets      map[string]urlSet
	clusterOf map[string]int
}

// Intersections returns how many URLs keyword shares with the main keyword
// of its cluster. Unknown keywords return 0.
func (r *Result) Intersections(keyword string) int {
	idx, ok := r.clusterOf[keyword]
	if !ok {
		return 0
	}
	main := r.Clusters[idx].Representative
	return r.sets[keyword].overlap(r.sets[main])
}

// Between returns the overlap of two clustered keywords
func (r *Result) Between(a, b string) int {
	return r.sets[a].overlap(r.sets[b])
}

// ClusterOf returns the cluster a keyword was placed in
func (r *Result) ClusterOf(keyword string) (Cluster, bool) {
	idx, ok := r.clusterOf[keyword]
	if !ok {
		return Cluster{}, false
	}
	return r.Clusters[idx], true
}

// Stats summarizes cluster sizes
func (r *Result) Stats() Stats {
	st := Stats{Clusters: len(r.Clusters)}
	for _, c := range r.Clusters {
		size := c.Size()
		st.Keywords += size
		if size == 1 {
			st.Singletons++
		}
		if size >= 6 {
			st.LargeClusters++
		}
		if size > st.LargestSize {
			st.LargestSize = size
		}
	}
	if st.Clusters > 0 {
		st.AverageSize = float64(st.Keywords) / float64(st.Clusters)
	}
	return st
}

// engine carries the per-run state shared by the membership rules.
type engine struct {
	sets map[string]urlSet
	min  int
}

func (e *engine) overlap(a, b string) int {
	return e.sets[a].overlap(e.sets[b])
}

func (e *engine) meets(a, b string) bool {
	return e.overlap(a, b) >= e.min
}

// grower builds one cluster around seed from the ranked pool and returns the
// members plus the keywords left in the pool, still in rank order.
type grower func(e *engine, seed string, pool []string) (members, rest []string)

func growerFor(a Algorithm) grower {
	switch a {
	case AlgorithmDefault:
		return growDefault
	case AlgorithmStrict:
		return growStrict
	case AlgorithmLegacy:
		return growLegacy
	default:
		return growBalancedStrict
	}
}

// Run partitions the entries into clusters.
//
// Entries are expected to share one location/language/device context. A
// repeated keyword keeps its first URL list. The returned clusters are in
// seed selection order and cover every distinct keyword exactly once.
func Run(entries []Entry, opts Options) *Result {
	e := &engine{
		sets: make(map[string]urlSet, len(entries)),
		min:  opts.MinIntersections,
	}
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, dup := e.sets[entry.Keyword]; dup {
			continue
		}
		e.sets[entry.Keyword] = newURLSet(entry.URLs, opts.URLsToCheck)
		order = append(order, entry.Keyword)
	}

	res := &Result{
		sets:      e.sets,
		clusterOf: make(map[string]int, len(order)),
	}

	grow := growerFor(opts.Algorithm)
	pool := Rank(order, opts.Metrics, opts.TieBreak)
	for len(pool) > 0 {
		seed := pool[0]
		var members []string
		members, pool = grow(e, seed, pool[1:])

		idx := len(res.Clusters)
		for _, m := range members {
			res.clusterOf[m] = idx
		}
		res.Clusters = append(res.Clusters, Cluster{
			Seed:           seed,
			Representative: Representative(members, opts.Metrics, opts.TieBreak),
			Members:        members,
		})
	}
	return res
}
