// Package pipeline runs one collation pass:
// Discover → LoadValidate → Collate → Analyze → Report.
//
// Per-file rejections never fail a run. Discovery problems surface as
// ErrConfiguration, output write problems as ErrOutput; both end the run
// in StateFailed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"jsoncollate/internal/analyze"
	"jsoncollate/internal/curate"
	"jsoncollate/internal/display"
	"jsoncollate/internal/logging"
	"jsoncollate/internal/report"
)

// Fatal error classes. Returned errors wrap exactly one of these.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrOutput        = errors.New("output error")
)

// State is a step of the run state machine.
type State string

const (
	StateStart        State = "start"
	StateDiscover     State = "discover"
	StateLoadValidate State = "load_validate"
	StateCollate      State = "collate"
	StateAnalyze      State = "analyze"
	StateReport       State = "report"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Options configures one run.
type Options struct {
	InputDir string
	Output   string // combined JSON path
	Report   string // xlsx path
	Schema   curate.Schema
	Analysis analyze.Options
	Logger   *slog.Logger
}

// Result describes a finished (or failed) run.
type Result struct {
	RunID    string
	Files    []string
	Outcomes []curate.Outcome
	Dataset  curate.Dataset
	Combined curate.WriteResult
	Summary  analyze.Summary
	Path     []State // states visited, in order
	Duration time.Duration
}

// State returns the state the run ended in.
func (r *Result) State() State {
	if len(r.Path) == 0 {
		return StateStart
	}
	return r.Path[len(r.Path)-1]
}

// pathText renders the visited states for humans: "Start → Discover → ...".
func (r *Result) pathText() string {
	codes := make([]string, len(r.Path))
	for i, s := range r.Path {
		codes[i] = string(s)
	}
	return display.StatePath(codes)
}

type run struct {
	opts   Options
	logger *slog.Logger
	res    *Result
}

// Run executes the whole pass. The returned Result is never nil; on error it
// holds whatever was computed before the failure.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	started := time.Now()
	res := &Result{RunID: uuid.NewString(), Path: []State{StateStart}}
	r := &run{
		opts:   opts,
		logger: logging.For(opts.Logger, "pipeline").With(slog.String("run_id", res.RunID)),
		res:    res,
	}

	r.logger.Info("starting collation and analysis",
		slog.String("input_dir", opts.InputDir),
		slog.String("output", opts.Output),
		slog.String("report", opts.Report),
		slog.Int("schema_fields", len(opts.Schema.Fields)),
		slog.Int("required_fields", len(opts.Schema.RequiredFields())),
	)
	err := r.execute(ctx)
	res.Duration = time.Since(started)
	if err != nil {
		stage := res.State()
		r.enter(StateFailed)
		r.logger.Error("run failed",
			slog.String("stage", display.State(string(stage))),
			slog.String("path", res.pathText()),
			slog.String("error", err.Error()),
		)
		return res, err
	}
	r.enter(StateDone)
	r.logger.Info("process finished",
		slog.Int("processed", res.Summary.Processed),
		slog.Int("accepted", res.Summary.Accepted),
		slog.Int("rejected", res.Summary.Rejected),
		slog.String("path", res.pathText()),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (r *run) enter(s State) {
	r.res.Path = append(r.res.Path, s)
	r.logger.Debug("state", slog.String("state", string(s)))
}

func (r *run) execute(ctx context.Context) error {
	r.enter(StateDiscover)
	files, err := curate.Discover(r.opts.InputDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	r.res.Files = files
	r.logger.Info("discovered input files", slog.Int("files", len(files)))

	r.enter(StateLoadValidate)
	loader := curate.NewLoader(r.opts.Schema, logging.For(r.opts.Logger, "loader"))
	outcomes, err := loader.LoadAll(ctx, files)
	r.res.Outcomes = outcomes
	if err != nil {
		return fmt.Errorf("load interrupted after %d of %d files: %w", len(outcomes), len(files), err)
	}

	r.enter(StateCollate)
	r.res.Dataset = curate.Collate("combined", outcomes)
	combined, err := curate.WriteCombined(r.opts.Output, r.res.Dataset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	r.res.Combined = combined
	if combined.Unchanged {
		r.logger.Info("combined output already up to date", slog.String("path", combined.Path), slog.Int("records", combined.Records))
	} else {
		r.logger.Info("wrote combined output",
			slog.String("path", combined.Path),
			slog.Int("records", combined.Records),
			slog.String("size", humanize.Bytes(uint64(combined.Bytes))),
		)
	}

	r.enter(StateAnalyze)
	r.res.Summary = analyze.New(r.opts.Analysis, logging.For(r.opts.Logger, "analyze")).Run(outcomes)
	if r.res.Summary.Empty() {
		r.logger.Warn("no valid records; report will show no data")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	r.enter(StateReport)
	r.logger.Info("writing analysis report", slog.String("path", r.opts.Report))
	if err := report.Write(r.opts.Report, r.res.Summary); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}
