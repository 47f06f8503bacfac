// Package format renders run results as terminal or Markdown tables.
package format

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"jsoncollate/internal/analyze"
	"jsoncollate/internal/curate"
	"jsoncollate/internal/display"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// maxValueWidth bounds category values in console tables.
const maxValueWidth = 40

// newWriter returns a go-pretty writer styled for m.
func newWriter(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Counts renders the processed/accepted/rejected overview with one row per
// rejection reason that occurred.
func Counts(s analyze.Summary, m Mode) string {
	w := newWriter(m)
	w.SetTitle("Overview")
	w.AppendHeader(table.Row{"Metric", "Value"})
	w.AppendRow(table.Row{"Input files processed", s.Processed})
	w.AppendRow(table.Row{"Records accepted", s.Accepted})
	w.AppendRow(table.Row{"Records rejected", s.Rejected})
	for _, r := range s.Rejections {
		if r.Count == 0 {
			continue
		}
		w.AppendRow(table.Row{"  " + display.Reason(string(r.Reason)), r.Count})
	}
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return render(w, m)
}

// Numeric renders one row per analyzed numeric field.
func Numeric(stats []analyze.NumericStats, m Mode) string {
	w := newWriter(m)
	w.SetTitle("Numeric Summary")
	w.AppendHeader(table.Row{"Field", "Count", "Min", "Max", "Mean", "Std Dev"})
	for _, n := range stats {
		w.AppendRow(table.Row{n.Field, n.Count, FmtFloat(n.Min), FmtFloat(n.Max), FmtFloat(n.Mean), FmtFloat(n.StdDev)})
	}
	cfgs := make([]table.ColumnConfig, 0, 5)
	for col := 2; col <= 6; col++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}
	w.SetColumnConfigs(cfgs)
	return render(w, m)
}

// Frequency renders a breakdown table with the top limit entries and a
// total footer. limit <= 0 shows every entry.
func Frequency(t analyze.FrequencyTable, limit int, m Mode) string {
	w := newWriter(m)
	w.SetTitle(t.Label)
	w.AppendHeader(table.Row{t.Label, "Count"})

	entries := t.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		w.AppendRow(table.Row{Truncate(e.Value, maxValueWidth), e.Count})
	}
	if hidden := len(t.Entries) - len(entries); hidden > 0 {
		w.AppendRow(table.Row{fmt.Sprintf("(%d more)", hidden), ""})
	}
	w.AppendFooter(table.Row{"Total", t.Total})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return render(w, m)
}

// WriteSummary writes every table for s to out, separated by blank lines.
// Empty summaries get an explicit no-data line instead of field tables.
func WriteSummary(out io.Writer, s analyze.Summary, limit int, m Mode) error {
	parts := []string{Counts(s, m)}
	if s.Empty() {
		parts = append(parts, "No data: no valid records were found.")
	} else {
		if len(s.Numeric) > 0 {
			parts = append(parts, Numeric(s.Numeric, m))
		}
		for _, t := range s.Tables {
			parts = append(parts, Frequency(t, limit, m))
		}
	}
	_, err := fmt.Fprintln(out, strings.Join(parts, "\n\n"))
	return err
}

// Outcomes renders one row per loaded file with its verdict.
func Outcomes(outcomes []curate.Outcome, m Mode) string {
	w := newWriter(m)
	w.AppendHeader(table.Row{"File", "Status", "Reason", "Detail"})
	accepted := 0
	for _, o := range outcomes {
		if o.Accepted() {
			accepted++
			w.AppendRow(table.Row{filepath.Base(o.Path), "valid", "", ""})
			continue
		}
		w.AppendRow(table.Row{filepath.Base(o.Path), "rejected", display.Reason(string(o.Reason())), o.Err.Error()})
	}
	w.AppendFooter(table.Row{"Total", len(outcomes), fmt.Sprintf("%d valid", accepted), fmt.Sprintf("%d rejected", len(outcomes)-accepted)})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 80}})
	return render(w, m)
}
