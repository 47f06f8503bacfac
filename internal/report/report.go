// Package report renders an analysis Summary as a multi-sheet xlsx workbook.
//
// Sheet order is fixed: Overview, Rejections, Numeric Summary, then one
// "<Label> Report" sheet per breakdown table in configuration order.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"jsoncollate/internal/analyze"
	"jsoncollate/internal/atomicfile"
	"jsoncollate/internal/display"
)

// Fixed sheet names.
const (
	SheetOverview   = "Overview"
	SheetRejections = "Rejections"
	SheetNumeric    = "Numeric Summary"
)

// NoData marks sheets with nothing to show.
const NoData = "No data"

const maxSheetName = 31

var border = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// Write renders s and writes the workbook to path atomically.
func Write(path string, s analyze.Summary) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	return atomicfile.Write(path, 0o644, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

// Build renders s into an in-memory workbook.
func Build(s analyze.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	wb := &workbook{f: f, used: map[string]bool{}}
	if err := wb.init(); err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return wb.overview(s) },
		func() error { return wb.rejections(s) },
		func() error { return wb.numeric(s) },
	}
	for _, t := range s.Tables {
		steps = append(steps, func() error { return wb.frequency(t) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

type workbook struct {
	f      *excelize.File
	used   map[string]bool
	header int
	cell   int
	number int
}

func (wb *workbook) init() error {
	var err error
	if wb.header, err = wb.f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"003660"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}
	if wb.cell, err = wb.f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return fmt.Errorf("report: cell style: %w", err)
	}
	numFmt := "0.00"
	if wb.number, err = wb.f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &numFmt}); err != nil {
		return fmt.Errorf("report: number style: %w", err)
	}
	if err := wb.f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("report: rename default sheet: %w", err)
	}
	wb.used[SheetOverview] = true
	return nil
}

// sheet creates a sheet with a unique, valid name derived from want.
func (wb *workbook) sheet(want string) (string, error) {
	name := sanitizeSheetName(want)
	base := name
	for i := 2; wb.used[name]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	if _, err := wb.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("report: add sheet %q: %w", name, err)
	}
	wb.used[name] = true
	return name, nil
}

// row writes vals starting at column A of the given 1-based row.
func (wb *workbook) row(sheet string, row, style int, vals ...any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(vals), row)
	if err != nil {
		return err
	}
	if err := wb.f.SetSheetRow(sheet, start, &vals); err != nil {
		return fmt.Errorf("report: %s row %d: %w", sheet, row, err)
	}
	return wb.f.SetCellStyle(sheet, start, end, style)
}

func (wb *workbook) widths(sheet string, widths ...float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) overview(s analyze.Summary) error {
	rows := [][]any{
		{"Input files processed", s.Processed},
		{"Records accepted", s.Accepted},
		{"Records rejected", s.Rejected},
	}
	for _, r := range s.Rejections {
		rows = append(rows, []any{"Rejected: " + display.Reason(string(r.Reason)), r.Count})
	}
	rows = append(rows,
		[]any{"Numeric fields analyzed", len(s.Numeric)},
		[]any{"Breakdown tables", len(s.Tables)},
	)
	if s.Empty() {
		rows = append(rows, []any{"Status", NoData + ": no valid records"})
	}

	if err := wb.row(SheetOverview, 1, wb.header, "Metric", "Value"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := wb.row(SheetOverview, i+2, wb.cell, r...); err != nil {
			return err
		}
	}
	return wb.widths(SheetOverview, 50, 20)
}

func (wb *workbook) rejections(s analyze.Summary) error {
	name, err := wb.sheet(SheetRejections)
	if err != nil {
		return err
	}
	if err := wb.row(name, 1, wb.header, "File", "Reason", "Detail"); err != nil {
		return err
	}
	if len(s.RejectedFiles) == 0 {
		if err := wb.row(name, 2, wb.cell, NoData, "", ""); err != nil {
			return err
		}
	}
	for i, rf := range s.RejectedFiles {
		if err := wb.row(name, i+2, wb.cell, rf.File, display.ReasonWithCode(string(rf.Reason)), rf.Detail); err != nil {
			return err
		}
	}
	return wb.widths(name, 40, 25, 80)
}

func (wb *workbook) numeric(s analyze.Summary) error {
	name, err := wb.sheet(SheetNumeric)
	if err != nil {
		return err
	}
	if err := wb.row(name, 1, wb.header, "Field", "Count", "Min", "Max", "Mean", "Std Dev", "Sum", "Non-numeric"); err != nil {
		return err
	}
	if len(s.Numeric) == 0 {
		if err := wb.row(name, 2, wb.cell, NoData); err != nil {
			return err
		}
	}
	for i, n := range s.Numeric {
		row := i + 2
		if err := wb.row(name, row, wb.number, n.Field, n.Count, n.Min, n.Max, n.Mean, n.StdDev, n.Sum, n.Skipped); err != nil {
			return err
		}
	}
	return wb.widths(name, 30, 10, 14, 14, 14, 14, 16, 12)
}

func (wb *workbook) frequency(t analyze.FrequencyTable) error {
	name, err := wb.sheet(t.Label + " Report")
	if err != nil {
		return err
	}
	if err := wb.row(name, 1, wb.header, t.Label, "Count"); err != nil {
		return err
	}

	row := 2
	if len(t.Entries) == 0 {
		if err := wb.row(name, row, wb.cell, NoData, 0); err != nil {
			return err
		}
		row++
	}
	for _, e := range t.Entries {
		if err := wb.row(name, row, wb.cell, e.Value, e.Count); err != nil {
			return err
		}
		row++
	}
	if err := wb.row(name, row, wb.header, "Total", t.Total); err != nil {
		return err
	}
	if err := wb.row(name, row+1, wb.cell, "Records without value", t.Missing); err != nil {
		return err
	}
	if err := wb.widths(name, 30, 15); err != nil {
		return err
	}

	if len(t.Entries) == 0 {
		return nil
	}
	ref := "'" + name + "'"
	last := len(t.Entries) + 1
	return wb.f.AddChart(name, "D2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       t.Label + " Distribution",
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, last),
		}},
		Title:    []excelize.RichTextRun{{Text: t.Label + " Distribution"}},
		PlotArea: excelize.ChartPlotArea{ShowPercent: true},
	})
}

// sanitizeSheetName drops characters Excel forbids in sheet names and
// truncates to the 31 character limit.
func sanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(truncateRunes(s, maxSheetName))
	if s == "" {
		return "Report"
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
