package cluster

import (
	"fmt"
	"sort"
	"strings"
)

// Algorithm selects the membership rule used while growing a cluster
type Algorithm string

const (
	AlgorithmDefault        Algorithm = "default"
	AlgorithmStrict         Algorithm = "strict"
	AlgorithmBalancedStrict Algorithm = "balanced_strict"
	// AlgorithmLegacy compares candidates against the seed only, with fixed
	// intersection thresholds. Kept for reproducing older exports.
	AlgorithmLegacy Algorithm = "legacy"
)

// ParseAlgorithm converts a configuration value into an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmDefault, AlgorithmStrict, AlgorithmBalancedStrict, AlgorithmLegacy:
		return a, nil
	case "":
		return AlgorithmBalancedStrict, nil
	default:
		return "", fmt.Errorf("unknown clustering algorithm %q", s)
	}
}

// TieBreak selects the metric used to rank seeds and representatives
type TieBreak string

const (
	ByVolume TieBreak = "volume"
	ByCPC    TieBreak = "cpc"
)

// ParseTieBreak converts a configuration value into a TieBreak
func ParseTieBreak(s string) (TieBreak, error) {
	switch t := TieBreak(strings.ToLower(strings.TrimSpace(s))); t {
	case ByVolume, ByCPC:
		return t, nil
	case "":
		return ByVolume, nil
	default:
		return "", fmt.Errorf("unknown cluster strategy %q", s)
	}
}

// MissingDifficulty ranks keywords without difficulty data behind every real score.
const MissingDifficulty = 101.0

// Metrics holds the optional per-keyword data used for ranking.
type Metrics struct {
	Volume     *int64   `json:"volume,omitempty" yaml:"volume,omitempty"`
	CPC        *float64 `json:"cpc,omitempty" yaml:"cpc,omitempty"`
	Difficulty *float64 `json:"kd,omitempty" yaml:"kd,omitempty"`
}

// SearchVolume returns the volume, 0 when absent
func (m Metrics) SearchVolume() int64 {
	if m.Volume == nil {
		return 0
	}
	return *m.Volume
}

// CostPerClick returns the CPC, 0 when absent
func (m Metrics) CostPerClick() float64 {
	if m.CPC == nil {
		return 0
	}
	return *m.CPC
}

// KeywordDifficulty returns the difficulty, MissingDifficulty when absent
func (m Metrics) KeywordDifficulty() float64 {
	if m.Difficulty == nil {
		return MissingDifficulty
	}
	return *m.Difficulty
}

// Entry is one keyword with its ranked SERP URLs.
type Entry struct {
	Keyword string   `json:"keyword"`
	URLs    []string `json:"urls"`
}

// EntriesFromMap builds entries in lexical keyword order so map input clusters deterministically.
func EntriesFromMap(m map[string][]string) []Entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Keyword: k, URLs: m[k]})
	}
	return entries
}

// Options controls a clustering run.
//
// MinIntersections and URLsToCheck are expected to be at least 1. When
// MinIntersections exceeds URLsToCheck no candidate can ever join and every
// cluster is a singleton.
type Options struct {
	Algorithm        Algorithm
	MinIntersections int
	URLsToCheck      int
	TieBreak         TieBreak
	Metrics          map[string]Metrics
}

// Cluster is one group of keywords. Members are in join order, seed first.
type Cluster struct {
	Seed           string   `json:"seed" yaml:"seed"`
	Representative string   `json:"main_keyword" yaml:"main_keyword"`
	Members        []string `json:"keywords" yaml:"keywords"`
}

// Size returns the number of members
func (c Cluster) Size() int {
	return len(c.Members)
}

// Stats summarizes the shape of a result
type Stats struct {
	Clusters      int     `json:"clusters" yaml:"clusters"`
	Keywords      int     `json:"keywords" yaml:"keywords"`
	Singletons    int     `json:"singletons" yaml:"singletons"`
	LargeClusters int     `json:"large_clusters" yaml:"large_clusters"`
	LargestSize   int     `json:"largest_size" yaml:"largest_size"`
	AverageSize   float64 `json:"average_size" yaml:"average_size"`
}
