package curate

import (
	"fmt"
	"math"
	"strings"

	"github.com/valyala/fastjson"
)

// FieldRequirement defines whether a field is required or optional.
type FieldRequirement string

const (
	Required FieldRequirement = "required"
	Optional FieldRequirement = "optional"
)

// FieldType is the JSON shape a field value must have.
type FieldType string

const (
	TypeAny     FieldType = "any"
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

var knownTypes = map[FieldType]bool{
	"": true, TypeAny: true, TypeString: true, TypeNumber: true,
	TypeInteger: true, TypeBoolean: true, TypeObject: true, TypeArray: true,
}

// Matches reports whether v has the shape t describes.
// An empty type accepts any value.
func (t FieldType) Matches(v *fastjson.Value) bool {
	switch t {
	case TypeString:
		return v.Type() == fastjson.TypeString
	case TypeNumber:
		return v.Type() == fastjson.TypeNumber
	case TypeInteger:
		if v.Type() != fastjson.TypeNumber {
			return false
		}
		f, err := v.Float64()
		return err == nil && !math.IsInf(f, 0) && f == math.Trunc(f)
	case TypeBoolean:
		return v.Type() == fastjson.TypeTrue || v.Type() == fastjson.TypeFalse
	case TypeObject:
		return v.Type() == fastjson.TypeObject
	case TypeArray:
		return v.Type() == fastjson.TypeArray
	default:
		return true
	}
}

// FieldSpec describes one field in a schema: its dotted path, expected type
// and requirement level. An empty requirement means required.
type FieldSpec struct {
	Name        string           `json:"name" yaml:"name"`
	Type        FieldType        `json:"type,omitempty" yaml:"type,omitempty"`
	Requirement FieldRequirement `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsRequired reports whether records without this field are rejected.
func (f FieldSpec) IsRequired() bool { return f.Requirement != Optional }

// Schema is the ordered list of field rules every record must satisfy.
type Schema struct {
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []FieldSpec `json:"fields" yaml:"fields"`
}

// RequiredFields returns only the fields marked as required.
func (s Schema) RequiredFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.IsRequired() {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the schema definition itself.
func (s Schema) Validate() []error {
	var errs []error
	seen := make(map[string]bool)
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Errorf("schema field %d: name is required", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("schema field %q: defined twice", f.Name))
		}
		seen[f.Name] = true
		if !knownTypes[f.Type] {
			errs = append(errs, fmt.Errorf("schema field %q: unknown type %q", f.Name, f.Type))
		}
		if f.Requirement != "" && f.Requirement != Required && f.Requirement != Optional {
			errs = append(errs, fmt.Errorf("schema field %q: requirement must be required or optional; got %q", f.Name, f.Requirement))
		}
	}
	return errs
}

// TypeMismatch records a present field whose value has the wrong shape.
type TypeMismatch struct {
	Field string    `json:"field"`
	Want  FieldType `json:"want"`
	Got   string    `json:"got"`
}

func (m TypeMismatch) String() string {
	return fmt.Sprintf("%s (want %s, got %s)", m.Field, m.Want, m.Got)
}

// CheckResult is the outcome of checking one record against a schema.
type CheckResult struct {
	RecordID string         `json:"record_id"`
	Score    float64        `json:"score"`
	Present  []string       `json:"present"`
	Missing  []string       `json:"missing,omitempty"`
	Invalid  []TypeMismatch `json:"invalid,omitempty"`
	Valid    bool           `json:"valid"`
}

// Reason classifies a failed check. Missing fields win over type errors.
func (c CheckResult) Reason() Reason {
	switch {
	case len(c.Missing) > 0:
		return ReasonMissingField
	case len(c.Invalid) > 0:
		return ReasonWrongType
	default:
		return ""
	}
}

// Detail names every violated rule, for log lines and the report.
func (c CheckResult) Detail() string {
	var parts []string
	if len(c.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(c.Missing, ", "))
	}
	if len(c.Invalid) > 0 {
		bad := make([]string, len(c.Invalid))
		for i, m := range c.Invalid {
			bad[i] = m.String()
		}
		parts = append(parts, "wrong type "+strings.Join(bad, ", "))
	}
	return strings.Join(parts, "; ")
}

// Check evaluates a Record against a Schema. Optional fields are type-checked
// only when present. Score is the fraction of required fields satisfied.
func Check(r Record, s Schema) CheckResult {
	result := CheckResult{RecordID: r.ID}

	total, satisfied := 0, 0
	for _, field := range s.Fields {
		required := field.IsRequired()
		if required {
			total++
		}

		v, ok := r.Lookup(field.Name)
		if !ok {
			if required {
				result.Missing = append(result.Missing, field.Name)
			}
			continue
		}
		if !field.Type.Matches(v) {
			result.Invalid = append(result.Invalid, TypeMismatch{
				Field: field.Name,
				Want:  field.Type,
				Got:   kindOf(v),
			})
			continue
		}

		if required {
			satisfied++
		}
		result.Present = append(result.Present, field.Name)
	}

	result.Score = 1
	if total > 0 {
		result.Score = float64(satisfied) / float64(total)
	}
	result.Valid = len(result.Missing) == 0 && len(result.Invalid) == 0
	return result
}
