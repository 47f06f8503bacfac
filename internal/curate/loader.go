package curate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Outcome is the result of loading one discovered file: either an accepted
// Record or the error that rejected the file.
type Outcome struct {
	Path   string
	Record Record
	Err    error
}

// Accepted reports whether the file produced a valid record.
func (o Outcome) Accepted() bool { return o.Err == nil }

// Reason returns the rejection reason, or "" for accepted files.
func (o Outcome) Reason() Reason {
	r, _ := RejectionReason(o.Err)
	return r
}

// Loader reads input files and checks them against a Schema.
type Loader struct {
	schema Schema
	logger *slog.Logger
}

// NewLoader returns a Loader that validates records against s.
func NewLoader(s Schema, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{schema: s, logger: logger}
}

// Load reads and validates one file. Failures are *ParseError or
// *ValidationError; a record is never returned alongside an error.
func (l *Loader) Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, &ParseError{path: path, reason: ReasonUnreadable, err: err}
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, err := ParseRecord(id, path, data)
	if err != nil {
		return Record{}, &ParseError{path: path, reason: ReasonParse, err: err}
	}
	if kind := rec.Kind(); kind != "object" {
		return Record{}, &ValidationError{
			path:   path,
			reason: ReasonNotObject,
			detail: "top-level value is " + kind,
		}
	}

	res := Check(rec, l.schema)
	if !res.Valid {
		return Record{}, &ValidationError{
			path:   path,
			reason: res.Reason(),
			detail: res.Detail(),
			result: res,
		}
	}
	return rec, nil
}

// LoadAll loads every path in order and logs each outcome. Per-file failures
// are recorded in the outcomes, never returned; the only error is ctx's.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		name := filepath.Base(p)
		l.logger.Info("processing file", slog.String("file", name))

		rec, err := l.Load(p)
		outcomes = append(outcomes, Outcome{Path: p, Record: rec, Err: err})

		switch {
		case err == nil:
			l.logger.Debug("record accepted", slog.String("file", name), slog.String("record_id", rec.ID))
		case IsParseError(err):
			l.logger.Error("file skipped",
				slog.String("file", name),
				slog.String("reason", string(outcomes[len(outcomes)-1].Reason())),
				slog.String("error", err.Error()),
			)
		default:
			attrs := []any{
				slog.String("file", name),
				slog.String("reason", string(outcomes[len(outcomes)-1].Reason())),
				slog.String("error", err.Error()),
			}
			var verr *ValidationError
			if errors.As(err, &verr) && verr.reason != ReasonNotObject {
				attrs = append(attrs, slog.Float64("completeness", verr.Result().Score))
			}
			l.logger.Warn("record rejected", attrs...)
		}
	}
	return outcomes, nil
}
