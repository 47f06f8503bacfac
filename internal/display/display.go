// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in console output, report sheets and log summaries.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// --- Rejection Reasons ---

var reasons = map[string]string{
	"parse_error":   "Malformed JSON",
	"unreadable":    "Unreadable file",
	"not_object":    "Not a JSON object",
	"missing_field": "Missing required field",
	"wrong_type":    "Wrong field type",
}

// Reason returns the human-readable name for a rejection reason code.
// Unknown codes are returned as-is.
func Reason(code string) string {
	if name, ok := reasons[code]; ok {
		return name
	}
	return code
}

// ReasonWithCode returns "Malformed JSON (parse_error)" format.
func ReasonWithCode(code string) string {
	if name, ok := reasons[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Run States ---

var states = map[string]string{
	"start":         "Start",
	"discover":      "Discover",
	"load_validate": "Load & Validate",
	"collate":       "Collate",
	"analyze":       "Analyze",
	"report":        "Report",
	"done":          "Done",
	"failed":        "Failed",
}

// State returns the human-readable name for a run state code.
func State(code string) string {
	if name, ok := states[code]; ok {
		return name
	}
	return code
}

// StatePath converts a slice of state codes to a human-readable path.
// ["discover", "collate"] -> "Discover → Collate"
func StatePath(codes []string) string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = State(c)
	}
	return strings.Join(names, " → ")
}

// --- Field Labels ---

// Label turns a field path into a column or sheet label.
// "program_area" -> "Program Area", "meta.owner" -> "Meta Owner".
func Label(field string) string {
	words := strings.FieldsFunc(field, func(r rune) bool {
		return r == '_' || r == '.' || r == '-' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
