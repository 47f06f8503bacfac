package curate

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Reason is the machine code for why a file was rejected.
type Reason string

const (
	ReasonUnreadable   Reason = "unreadable"
	ReasonParse        Reason = "parse_error"
	ReasonNotObject    Reason = "not_object"
	ReasonMissingField Reason = "missing_field"
	ReasonWrongType    Reason = "wrong_type"
)

// Reasons lists every rejection reason in report order.
var Reasons = []Reason{
	ReasonParse,
	ReasonUnreadable,
	ReasonNotObject,
	ReasonMissingField,
	ReasonWrongType,
}

// ParseError reports an input file that could not be read or is not
// well-formed JSON. The file is skipped.
type ParseError struct {
	path   string
	reason Reason
	err    error
}

func (e *ParseError) Error() string {
	if e.reason == ReasonUnreadable {
		return fmt.Sprintf("read %s: %v", filepath.Base(e.path), e.err)
	}
	return fmt.Sprintf("parse %s: %v", filepath.Base(e.path), e.err)
}

func (e *ParseError) Unwrap() error { return e.err }

// Path returns the offending file.
func (e *ParseError) Path() string { return e.path }

// Reason returns ReasonParse or ReasonUnreadable.
func (e *ParseError) Reason() Reason { return e.reason }

// ValidationError reports well-formed JSON that breaks the schema.
type ValidationError struct {
	path   string
	reason Reason
	detail string
	result CheckResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %s: %s", filepath.Base(e.path), e.reason, e.detail)
}

// Path returns the offending file.
func (e *ValidationError) Path() string { return e.path }

// Reason returns the violated rule.
func (e *ValidationError) Reason() Reason { return e.reason }

// Detail names the fields that broke the rule.
func (e *ValidationError) Detail() string { return e.detail }

// Result returns the schema check behind the error. It is zero for
// ReasonNotObject, where no field checks ran.
func (e *ValidationError) Result() CheckResult { return e.result }

// IsParseError reports whether err is a per-file parse or read failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is a per-file schema failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RejectionReason extracts the rejection reason from a per-file error.
// It returns false for errors that are not per-file rejections.
func RejectionReason(err error) (Reason, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.reason, true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.reason, true
	}
	return "", false
}
