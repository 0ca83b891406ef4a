// Package report turns a clustering result into rows, per-cluster
// summaries and advisories, and writes them in several formats.
package report

import (
	"fmt"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/cluster"
	"seo-cluster/pkg/dataset"
)

// NotAvailable marks absent intent data.
const NotAvailable = "N/A"

// Row is one keyword of one cluster.
type Row struct {
	MainKeyword   string   `json:"main_keyword" yaml:"main_keyword"`
	Keyword       string   `json:"keyword" yaml:"keyword"`
	Intersections int      `json:"intersections" yaml:"intersections"`
	Volume        *int64   `json:"volume" yaml:"volume"`
	CPC           *float64 `json:"cpc" yaml:"cpc"`
	KD            *float64 `json:"kd" yaml:"kd"`
	Intent        string   `json:"search_intent" yaml:"search_intent"`
}

// Summary aggregates the rows of one cluster. Averages skip keywords
// without the metric and are nil when no keyword has it.
type Summary struct {
	MainKeyword          string   `json:"main_keyword" yaml:"main_keyword"`
	Size                 int      `json:"size" yaml:"size"`
	TotalVolume          int64    `json:"total_volume" yaml:"total_volume"`
	AverageCPC           *float64 `json:"average_cpc" yaml:"average_cpc"`
	AverageKD            *float64 `json:"average_kd" yaml:"average_kd"`
	AverageIntersections float64  `json:"average_intersections" yaml:"average_intersections"`
	PrimaryIntent        string   `json:"primary_intent" yaml:"primary_intent"`
}

type Advisory struct {
	Level   string `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
}

type Params struct {
	Algorithm        cluster.Algorithm `json:"algorithm" yaml:"algorithm"`
	TieBreak         cluster.TieBreak  `json:"strategy" yaml:"strategy"`
	MinIntersections int               `json:"min_intersections" yaml:"min_intersections"`
	URLsToCheck      int               `json:"urls_to_check" yaml:"urls_to_check"`
	Target           api.Target        `json:"target" yaml:"target"`
}

type Report struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
	Params     Params            `json:"params" yaml:"params"`
	Stats      cluster.Stats     `json:"stats" yaml:"stats"`
	Clusters   []cluster.Cluster `json:"clusters" yaml:"clusters"`
	Rows       []Row             `json:"rows" yaml:"rows"`
	Summaries  []Summary         `json:"summaries" yaml:"summaries"`
	Advisories []Advisory        `json:"advisories" yaml:"advisories"`
	// Missing lists requested keywords that were left out for lack of data.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Build assembles a report. Rows follow cluster order and, within a
// cluster, member order.
func Build(runID string, res *cluster.Result, ds *dataset.Dataset, opts cluster.Options) *Report {
	rep := &Report{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Params: Params{
			Algorithm:        opts.Algorithm,
			TieBreak:         opts.TieBreak,
			MinIntersections: opts.MinIntersections,
			URLsToCheck:      opts.URLsToCheck,
			Target:           ds.Target,
		},
		Stats:      res.Stats(),
		Clusters:   res.Clusters,
		Rows:       make([]Row, 0, len(ds.Entries)),
		Summaries:  make([]Summary, 0, len(res.Clusters)),
		Advisories: []Advisory{},
		Missing:    ds.Missing,
	}

	for _, c := range res.Clusters {
		start := len(rep.Rows)
		for _, kw := range c.Members {
			m := ds.Metrics[kw]
			intent, ok := ds.Intents[kw]
			if !ok || intent == "" {
				intent = NotAvailable
			}
			rep.Rows = append(rep.Rows, Row{
				MainKeyword:   c.Representative,
				Keyword:       kw,
				Intersections: res.Intersections(kw),
				Volume:        m.Volume,
				CPC:           m.CPC,
				KD:            m.Difficulty,
				Intent:        intent,
			})
		}
		rep.Summaries = append(rep.Summaries, summarize(c.Representative, rep.Rows[start:]))
	}

	rep.Advisories = advise(opts, rep.Stats)
	return rep
}

func summarize(main string, rows []Row) Summary {
	s := Summary{MainKeyword: main, Size: len(rows), PrimaryIntent: NotAvailable}

	var (
		cpcSum, kdSum float64
		cpcN, kdN     int
		intersections int
		intentCount   = map[string]int{}
		intentOrder   []string
	)
	for _, r := range rows {
		if r.Volume != nil {
			s.TotalVolume += *r.Volume
		}
		if r.CPC != nil {
			cpcSum += *r.CPC
			cpcN++
		}
		if r.KD != nil {
			kdSum += *r.KD
			kdN++
		}
		intersections += r.Intersections
		if r.Intent != NotAvailable {
			if intentCount[r.Intent] == 0 {
				intentOrder = append(intentOrder, r.Intent)
			}
			intentCount[r.Intent]++
		}
	}

	if cpcN > 0 {
		avg := cpcSum / float64(cpcN)
		s.AverageCPC = &avg
	}
	if kdN > 0 {
		avg := kdSum / float64(kdN)
		s.AverageKD = &avg
	}
	if len(rows) > 0 {
		s.AverageIntersections = float64(intersections) / float64(len(rows))
	}

	// ties go to the intent seen first
	best := 0
	for _, intent := range intentOrder {
		if intentCount[intent] > best {
			best = intentCount[intent]
			s.PrimaryIntent = intent
		}
	}
	return s
}

func advise(opts cluster.Options, st cluster.Stats) []Advisory {
	advisories := []Advisory{}
	if st.Clusters == 0 {
		return advisories
	}

	if opts.MinIntersections > opts.URLsToCheck {
		advisories = append(advisories, Advisory{
			Level: "warning",
			Message: fmt.Sprintf("Minimum intersections (%d) exceeds URLs to check (%d); every cluster is a single keyword.",
				opts.MinIntersections, opts.URLsToCheck),
		})
	}

	switch opts.Algorithm {
	case cluster.AlgorithmStrict:
		if float64(st.Singletons) > float64(st.Clusters)*0.5 {
			advisories = append(advisories, Advisory{
				Level: "warning",
				Message: fmt.Sprintf("Strict algorithm created %d single-keyword clusters. Consider using 'balanced_strict' or lowering minimum intersections.",
					st.Singletons),
			})
		}
	case cluster.AlgorithmDefault:
		advisories = append(advisories, Advisory{
			Level:   "info",
			Message: fmt.Sprintf("Average cluster size: %.1f keywords. Default algorithm creates broader topic groups.", st.AverageSize),
		})
	case cluster.AlgorithmBalancedStrict:
		advisories = append(advisories, Advisory{
			Level:   "info",
			Message: fmt.Sprintf("Balanced strict created %d clusters with 6+ keywords, using progressive thresholds for natural growth.", st.LargeClusters),
		})
	case cluster.AlgorithmLegacy:
		advisories = append(advisories, Advisory{
			Level:   "info",
			Message: "Legacy algorithm uses fixed seed-only thresholds; prefer 'balanced_strict' for new work.",
		})
	}
	return advisories
}
