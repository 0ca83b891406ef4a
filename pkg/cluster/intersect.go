package cluster

// urlSet is a truncated SERP URL list compared as a set.
type urlSet map[string]struct{}

func newURLSet(urls []string, urlsToCheck int) urlSet {
	n := urlsToCheck
	if n < 0 {
		n = 0
	}
	if n > len(urls) {
		n = len(urls)
	}
	set := make(urlSet, n)
	for _, u := range urls[:n] {
		set[u] = struct{}{}
	}
	return set
}

func (s urlSet) overlap(other urlSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	count := 0
	for u := range small {
		if _, ok := large[u]; ok {
			count++
		}
	}
	return count
}

// Intersections counts URLs shared by the first urlsToCheck entries of a and b.
func Intersections(a, b []string, urlsToCheck int) int {
	return newURLSet(a, urlsToCheck).overlap(newURLSet(b, urlsToCheck))
}
