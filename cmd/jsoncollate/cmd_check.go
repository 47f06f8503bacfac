package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jsoncollate/internal/curate"
	"jsoncollate/internal/format"
	"jsoncollate/internal/logging"
	"jsoncollate/internal/pipeline"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate input files against the schema without writing outputs",
		Long: `Check loads and validates files exactly as a collation run would, prints
one row per file and exits non-zero if any file is rejected. No combined
output, report or log file is written.

With no arguments every .json file in --input-dir is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			if err := validateConfig(cfg); err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				paths, err = curate.Discover(cfg.InputDir)
				if err != nil {
					return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
				}
			}

			level, _ := logging.ParseLevel(cfg.LogLevel)
			logger := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
			loader := curate.NewLoader(cfg.Schema, logging.For(logger, "loader"))
			outcomes, err := loader.LoadAll(cmd.Context(), paths)
			if err != nil {
				return err
			}

			mode := format.ASCII
			if markdown {
				mode = format.Markdown
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Outcomes(outcomes, mode))

			rejected := 0
			for _, o := range outcomes {
				if !o.Accepted() {
					rejected++
				}
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d files rejected", rejected, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the result as a Markdown table")
	return cmd
}
