package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jsoncollate/internal/config"
	"jsoncollate/internal/format"
	"jsoncollate/internal/logging"
	"jsoncollate/internal/pipeline"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootFlags holds flags shared by the root command and its subcommands.
type rootFlags struct {
	configPath string
	inputDir   string
	output     string
	report     string
	logFile    string
	logLevel   string
	logFormat  string
	top        int
	markdown   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "jsoncollate",
		Short: "Collate JSON records and report descriptive statistics",
		Long: `jsoncollate reads every .json file in the input directory, validates each
record against the configured schema, writes the valid records to one combined
JSON array and summarizes them in an xlsx report.

Rejected files are logged and counted but never stop the run.

The config file (YAML or JSON) is read from --config or from the
JSONCOLLATE_CONFIG environment variable. Flags override config values.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollate(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (YAML/JSON) (default: $"+config.EnvConfigPath+")")
	pf.StringVar(&flags.inputDir, "input-dir", config.DefaultInputDir, "Directory of .json input files")
	pf.StringVar(&flags.logFile, "log-file", config.DefaultLogFile, "Run log file, truncated each run")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json")

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", config.DefaultOutput, "Combined JSON output path")
	f.StringVar(&flags.report, "report", config.DefaultReport, "Analysis report path (.xlsx)")
	f.IntVar(&flags.top, "top", 10, "Rows per breakdown in the console summary (0 shows all)")
	f.BoolVar(&flags.markdown, "markdown", false, "Print the console summary as Markdown tables")

	cmd.AddCommand(newCheckCmd(flags))
	return cmd
}

func runCollate(cmd *cobra.Command, flags *rootFlags) error {
	cfg, loadErr := resolveConfig(cmd, flags)

	logger, closeLog, err := openLogger(cmd, cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, errors.Join(loadErr, err))
	}
	defer closeLog()

	if loadErr != nil {
		logger.Error("load configuration", slog.String("error", loadErr.Error()))
		return loadErr
	}
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, pipeline.Options{
		InputDir: cfg.InputDir,
		Output:   cfg.Output,
		Report:   cfg.Report,
		Schema:   cfg.Schema,
		Analysis: cfg.Analysis,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	mode := format.ASCII
	if flags.markdown {
		mode = format.Markdown
	}
	out := cmd.OutOrStdout()
	if err := format.WriteSummary(out, res.Summary, flags.top, mode); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCombined: %s (%d records)\nReport:   %s\nLog:      %s\nElapsed:  %s\n",
		res.Combined.Path, res.Combined.Records, cfg.Report, cfg.LogFile, format.FmtDuration(res.Duration))
	return nil
}

// resolveConfig loads the config file, if any, and applies explicitly set
// flags on top of it. The result is not validated. The returned config is
// never nil: when the file cannot be loaded it holds the defaults plus
// flags, enough to open the run log and report the error there.
func resolveConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg := config.Default()
	var loadErr error
	if path != "" {
		loaded, err := config.LoadFromPath(path)
		if err != nil {
			loadErr = fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
		} else {
			cfg = *loaded
		}
	}

	set := cmd.Flags().Changed
	override := func(name string, dst *string, val string) {
		if set(name) {
			*dst = val
		}
	}
	override("input-dir", &cfg.InputDir, flags.inputDir)
	override("log-file", &cfg.LogFile, flags.logFile)
	override("log-level", &cfg.LogLevel, flags.logLevel)
	override("log-format", &cfg.LogFormat, flags.logFormat)
	override("output", &cfg.Output, flags.output)
	override("report", &cfg.Report, flags.report)
	return &cfg, loadErr
}

func validateConfig(cfg *config.Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// openLogger opens the run log. An unparseable level falls back to info
// here; validateConfig reports it afterwards through the opened logger.
func openLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func() error, error) {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return logging.Open(logging.Config{
		Path:    cfg.LogFile,
		Level:   level,
		Format:  cfg.LogFormat,
		Console: cmd.ErrOrStderr(),
	})
}
