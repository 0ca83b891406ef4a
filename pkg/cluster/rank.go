package cluster

import "sort"

// less reports whether keyword a ranks ahead of keyword b.
//
// ByVolume: volume desc, then difficulty asc.
// ByCPC: cpc desc, then volume desc.
func less(a, b Metrics, tieBreak TieBreak) bool {
	if tieBreak == ByCPC {
		if ca, cb := a.CostPerClick(), b.CostPerClick(); ca != cb {
			return ca > cb
		}
		return a.SearchVolume() > b.SearchVolume()
	}
	if va, vb := a.SearchVolume(), b.SearchVolume(); va != vb {
		return va > vb
	}
	return a.KeywordDifficulty() < b.KeywordDifficulty()
}

// Rank returns keywords ordered best first. Equal keywords keep their input order.
func Rank(keywords []string, metrics map[string]Metrics, tieBreak TieBreak) []string {
	ranked := append([]string(nil), keywords...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(metrics[ranked[i]], metrics[ranked[j]], tieBreak)
	})
	return ranked
}

// Representative picks the main keyword of a cluster
func Representative(members []string, metrics map[string]Metrics, tieBreak TieBreak) string {
	if len(members) == 0 {
		return ""
	}
	return Rank(members, metrics, tieBreak)[0]
}
