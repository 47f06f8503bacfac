package analyze

import (
	"fmt"
	"strings"
	"time"
)

// Dimension is a categorical field broken down into a frequency table.
//
// When Key is set, Field must hold an array of objects and the dimension
// counts the Value member of every element whose Key member equals Match:
//
//	field: custom_fields
//	key: id
//	match: "38830788"
//	value: value
//
// Match is compared against the key's literal text, so numeric ids are
// written as their digits.
type Dimension struct {
	Field string `json:"field" yaml:"field"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Match string `json:"match,omitempty" yaml:"match,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"` // default "value"
}

// DefaultSelectValue is the element member counted when Value is unset.
const DefaultSelectValue = "value"

// Keyed reports whether the dimension selects from an array of objects.
func (d Dimension) Keyed() bool { return d.Key != "" }

// Path identifies the dimension: the field itself, or
// "custom_fields[id=38830788].value" for keyed dimensions.
func (d Dimension) Path() string {
	if !d.Keyed() {
		return d.Field
	}
	return fmt.Sprintf("%s[%s=%s].%s", d.Field, d.Key, d.Match, d.valueField())
}

func (d Dimension) valueField() string {
	if d.Value == "" {
		return DefaultSelectValue
	}
	return d.Value
}

// DateDimension is a timestamp field bucketed by year.
type DateDimension struct {
	Field   string   `json:"field" yaml:"field"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Layouts []string `json:"layouts,omitempty" yaml:"layouts,omitempty"`
}

// DefaultDateLayouts are tried in order when a DateDimension sets none.
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02",
}

// Options selects the fields the analyzer aggregates. Field names are
// dotted paths. When Numeric is empty the numeric fields are inferred from
// the accepted records.
type Options struct {
	Numeric     []string        `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical []Dimension     `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	Dates       []DateDimension `json:"dates,omitempty" yaml:"dates,omitempty"`
}

// Validate checks for empty and repeated field names and incomplete
// keyed selections.
func (o Options) Validate() []error {
	var errs []error
	check := func(kind string, seen map[string]bool, field string) {
		switch {
		case strings.TrimSpace(field) == "":
			errs = append(errs, fmt.Errorf("analysis %s: field is required", kind))
		case seen[field]:
			errs = append(errs, fmt.Errorf("analysis %s %q: listed twice", kind, field))
		}
		seen[field] = true
	}

	numeric := make(map[string]bool)
	for _, f := range o.Numeric {
		check("numeric", numeric, f)
	}
	tables := make(map[string]bool)
	for _, d := range o.Categorical {
		if strings.TrimSpace(d.Field) == "" {
			check("categorical", tables, d.Field)
			continue
		}
		switch {
		case d.Keyed() && d.Match == "":
			errs = append(errs, fmt.Errorf("analysis categorical %q: key %q needs a match value", d.Field, d.Key))
		case !d.Keyed() && (d.Match != "" || d.Value != ""):
			errs = append(errs, fmt.Errorf("analysis categorical %q: match and value require key", d.Field))
		}
		check("categorical", tables, d.Path())
	}
	for _, d := range o.Dates {
		check("date", tables, d.Field)
	}
	return errs
}
