package report

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HierarchicalHeader is the column order of hierarchical exports.
var HierarchicalHeader = []string{"Cluster", "Keyword", "Intersections", "Volume", "CPC", "KD", "Search Intent"}

// Line is one formatted row of the hierarchical view. Summary lines carry
// the main keyword in Cluster; detail lines leave it blank.
type Line struct {
	Summary bool
	Cells   []string
}

var (
	numberPrinter = message.NewPrinter(language.English)
	intentCaser   = cases.Title(language.English)
)

// Hierarchical renders each cluster as one summary line followed by its
// keywords.
func (r *Report) Hierarchical() []Line {
	lines := make([]Line, 0, len(r.Rows)+len(r.Summaries))
	row := 0
	for _, s := range r.Summaries {
		lines = append(lines, Line{Summary: true, Cells: []string{
			s.MainKeyword,
			s.MainKeyword,
			strconv.FormatFloat(s.AverageIntersections, 'f', 1, 64),
			numberPrinter.Sprintf("%d", s.TotalVolume),
			formatMoney(s.AverageCPC),
			formatFloat(s.AverageKD, 1),
			capitalize(s.PrimaryIntent),
		}})
		for i := 0; i < s.Size && row < len(r.Rows); i++ {
			d := r.Rows[row]
			row++
			lines = append(lines, Line{Cells: []string{
				"",
				d.Keyword,
				strconv.Itoa(d.Intersections),
				formatInt(d.Volume),
				formatFloat(d.CPC, 2),
				formatFloat(d.KD, 1),
				d.Intent,
			}})
		}
	}
	return lines
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return numberPrinter.Sprintf("$%.2f", *v)
}

func capitalize(intent string) string {
	if intent == NotAvailable {
		return intent
	}
	return intentCaser.String(intent)
}
