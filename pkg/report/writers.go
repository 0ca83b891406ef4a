package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Write encodes the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatYAML:
		return r.WriteYAML(w)
	case FormatTable, "":
		return r.WriteTable(w)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteCSV writes the hierarchical view.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HierarchicalHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, line := range r.Hierarchical() {
		if err := cw.Write(line.Cells); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	summaryStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	advisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

// WriteTable renders the hierarchical view as a terminal table followed by
// advisories and the list of skipped keywords.
func (r *Report) WriteTable(w io.Writer) error {
	lines := r.Hierarchical()
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = line.Cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(HierarchicalHeader...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(lines) && lines[row].Summary:
				return summaryStyle
			default:
				return detailStyle
			}
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d clusters, %d keywords (%s, %s)\n",
		r.Stats.Clusters, r.Stats.Keywords, r.Params.Algorithm, r.Params.TieBreak)
	for _, a := range r.Advisories {
		b.WriteString(advisoryStyle.Render(fmt.Sprintf("[%s] %s", a.Level, a.Message)))
		b.WriteString("\n")
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "Skipped %d keywords without SERP data: %s\n", len(r.Missing), strings.Join(r.Missing, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
