package cluster

// growDefault admits every candidate that overlaps the seed enough.
func growDefault(e *engine, seed string, pool []string) ([]string, []string) {
	members := []string{seed}
	rest := make([]string, 0, len(pool))
	for _, c := range pool {
		if e.meets(c, seed) {
			members = append(members, c)
		} else {
			rest = append(rest, c)
		}
	}
	return members, rest
}

// growStrict admits a candidate only if it overlaps every member present at
// the time it is considered, including members added earlier in the pass.
func growStrict(e *engine, seed string, pool []string) ([]string, []string) {
	members := []string{seed}
	rest := make([]string, 0, len(pool))
	for _, c := range pool {
		ok := true
		for _, m := range members {
			if !e.meets(c, m) {
				ok = false
				break
			}
		}
		if ok {
			members = append(members, c)
		} else {
			rest = append(rest, c)
		}
	}
	return members, rest
}

// requiredMatchPercent is the share of members a candidate must match for a
// cluster that would reach the given size.
func requiredMatchPercent(prospective int) int {
	switch {
	case prospective <= 5:
		return 100
	case prospective <= 10:
		return 80
	default:
		return 60
	}
}

// growBalancedStrict repeats passes over the pool until one adds nothing.
// Small clusters need every member matched, larger ones a shrinking fraction.
func growBalancedStrict(e *engine, seed string, pool []string) ([]string, []string) {
	members := []string{seed}
	rest := append([]string(nil), pool...)
	for {
		added := false
		next := make([]string, 0, len(rest))
		for _, c := range rest {
			size := len(members)
			matching := 0
			for _, m := range members {
				if e.meets(c, m) {
					matching++
				}
			}
			// matching/size >= percent/100, kept in integers
			if matching*100 >= requiredMatchPercent(size+1)*size {
				members = append(members, c)
				added = true
			} else {
				next = append(next, c)
			}
		}
		rest = next
		if !added || len(rest) == 0 {
			return members, rest
		}
	}
}

// legacyThreshold is the fixed seed overlap required for a cluster that would
// reach the given size.
func legacyThreshold(prospective int) int {
	switch {
	case prospective <= 5:
		return 8
	case prospective <= 10:
		return 6
	default:
		return 4
	}
}

// growLegacy is a single seed-only pass with fixed thresholds on top of the
// minimum intersection requirement.
func growLegacy(e *engine, seed string, pool []string) ([]string, []string) {
	members := []string{seed}
	rest := make([]string, 0, len(pool))
	for _, c := range pool {
		n := e.overlap(c, seed)
		if n >= e.min && n >= legacyThreshold(len(members)+1) {
			members = append(members, c)
		} else {
			rest = append(rest, c)
		}
	}
	return members, rest
}
