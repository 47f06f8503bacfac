// Package analyze computes descriptive statistics over a collated dataset:
// overall and per-reason counts, numeric aggregates and frequency tables.
package analyze

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"jsoncollate/internal/curate"
	"jsoncollate/internal/display"
)

// Analyzer turns load outcomes into a Summary.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Analyzer aggregating the fields named in opts.
func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Run computes the Summary for one run. Counts cover every outcome; field
// statistics cover accepted records only. Zero accepted records yield a
// zero-filled Summary.
func (a *Analyzer) Run(outcomes []curate.Outcome) Summary {
	s := Summary{Processed: len(outcomes)}

	byReason := make(map[curate.Reason]int)
	var records []curate.Record
	for _, o := range outcomes {
		if o.Accepted() {
			records = append(records, o.Record)
			continue
		}
		reason := o.Reason()
		byReason[reason]++
		s.RejectedFiles = append(s.RejectedFiles, RejectedFile{
			File:   o.Path,
			Reason: reason,
			Detail: o.Err.Error(),
		})
	}
	s.Accepted = len(records)
	s.Rejected = len(outcomes) - len(records)

	for _, r := range curate.Reasons {
		s.Rejections = append(s.Rejections, Rejection{Reason: r, Count: byReason[r]})
	}

	fields := a.opts.Numeric
	if len(fields) == 0 {
		fields = inferNumeric(records)
		if len(fields) > 0 {
			a.logger.Debug("inferred numeric fields", slog.Any("fields", fields))
		}
	}
	for _, f := range fields {
		s.Numeric = append(s.Numeric, numericStats(f, records))
	}

	for _, d := range a.opts.Categorical {
		s.Tables = append(s.Tables, categoricalTable(d, records))
	}
	for _, d := range a.opts.Dates {
		s.Tables = append(s.Tables, a.dateTable(d, records))
	}
	return s
}

func numericStats(field string, records []curate.Record) NumericStats {
	s := NumericStats{Field: field}

	var values []float64
	for _, r := range records {
		v, ok := r.Lookup(field)
		if !ok {
			continue
		}
		f, err := v.Float64()
		if v.Type() != fastjson.TypeNumber || err != nil {
			s.Skipped++
			continue
		}
		values = append(values, f)
	}
	if len(values) == 0 {
		return s
	}

	s.Count = len(values)
	s.Min, s.Max = values[0], values[0]
	for _, f := range values {
		s.Sum += f
		s.Min = min(s.Min, f)
		s.Max = max(s.Max, f)
	}
	s.Mean = s.Sum / float64(s.Count)

	var sq float64
	for _, f := range values {
		d := f - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.Count))
	return s
}

// inferNumeric returns the top-level keys whose non-null values are all
// numbers, sorted by name.
func inferNumeric(records []curate.Record) []string {
	numeric := make(map[string]bool)
	other := make(map[string]bool)
	for _, r := range records {
		r.Each(func(key string, v *fastjson.Value) {
			switch v.Type() {
			case fastjson.TypeNumber:
				numeric[key] = true
			case fastjson.TypeNull:
			default:
				other[key] = true
			}
		})
	}

	var fields []string
	for k := range numeric {
		if !other[k] {
			fields = append(fields, k)
		}
	}
	slices.Sort(fields)
	return fields
}

func categoricalTable(d Dimension, records []curate.Record) FrequencyTable {
	counts := make(map[string]int)
	missing := 0
	for _, r := range records {
		var keys []string
		for _, v := range dimensionValues(d, r) {
			keys = append(keys, categoryKeys(v)...)
		}
		if len(keys) == 0 {
			missing++
			continue
		}
		for _, k := range keys {
			counts[k]++
		}
	}

	label := d.Label
	if label == "" && d.Keyed() {
		label = display.Label(d.Field + " " + d.Match)
	}
	t := newTable(d.Path(), label, KindCategorical, counts, missing)
	slices.SortFunc(t.Entries, func(a, b Frequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return t
}

// dimensionValues returns the values d reads from r: the field itself, or
// the selected member of every matching element for keyed dimensions.
func dimensionValues(d Dimension, r curate.Record) []*fastjson.Value {
	v, ok := r.Lookup(d.Field)
	if !ok {
		return nil
	}
	if !d.Keyed() {
		return []*fastjson.Value{v}
	}

	items, err := v.Array()
	if err != nil {
		return nil
	}
	keyPath := strings.Split(d.Key, ".")
	valuePath := strings.Split(d.valueField(), ".")
	var out []*fastjson.Value
	for _, item := range items {
		k := item.Get(keyPath...)
		if k == nil || literal(k) != d.Match {
			continue
		}
		if val := item.Get(valuePath...); val != nil && val.Type() != fastjson.TypeNull {
			out = append(out, val)
		}
	}
	return out
}

// literal returns a scalar's text: string contents, or the JSON literal for
// numbers and booleans.
func literal(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return string(v.MarshalTo(nil))
}

// categoryKeys maps a value to the categories it counts towards. Arrays
// count once per element; empty strings and empty arrays count as missing.
func categoryKeys(v *fastjson.Value) []string {
	if v.Type() != fastjson.TypeArray {
		if k, ok := scalarKey(v); ok {
			return []string{k}
		}
		return nil
	}
	items, _ := v.Array()
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if k, ok := scalarKey(item); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func scalarKey(v *fastjson.Value) (string, bool) {
	switch v.Type() {
	case fastjson.TypeNull:
		return "", false
	default:
		s := literal(v)
		return s, s != ""
	}
}

func (a *Analyzer) dateTable(d DateDimension, records []curate.Record) FrequencyTable {
	layouts := d.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	counts := make(map[string]int)
	missing := 0
	for _, r := range records {
		v, ok := r.Lookup(d.Field)
		if !ok {
			missing++
			continue
		}
		raw := string(v.GetStringBytes())
		ts, ok := parseDate(raw, layouts)
		if v.Type() != fastjson.TypeString || !ok {
			a.logger.Warn("invalid date format",
				slog.String("record_id", r.ID),
				slog.String("field", d.Field),
				slog.String("value", string(v.MarshalTo(nil))),
			)
			counts[InvalidDate]++
			continue
		}
		counts[strconv.Itoa(ts.Year())]++
	}

	t := newTable(d.Field, d.Label, KindDate, counts, missing)
	slices.SortFunc(t.Entries, func(a, b Frequency) int {
		if (a.Value == InvalidDate) != (b.Value == InvalidDate) {
			if a.Value == InvalidDate {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Value, b.Value)
	})
	return t
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func newTable(field, label string, kind TableKind, counts map[string]int, missing int) FrequencyTable {
	if label == "" {
		label = display.Label(field)
	}
	t := FrequencyTable{
		Field:   field,
		Label:   label,
		Kind:    kind,
		Entries: make([]Frequency, 0, len(counts)),
		Missing: missing,
	}
	for v, c := range counts {
		t.Entries = append(t.Entries, Frequency{Value: v, Count: c})
		t.Total += c
	}
	return t
}
