package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/estimator"
)

type estimateOptions struct {
	configFile string
	seed       int64
	samples    int
	workers    int
	maxRounds  int
	method     string
	jsonOutput bool
	logLevel   string
	traceFile  string
}

func newEstimateCmd() *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate [instance-file]",
		Short: "Run the Monte Carlo and Moser-Tardos estimators on an instance",
		Long: `Reads an election instance (stdin when the file is omitted or "-"):

  c n
  p
  <reference ranking of voter 1> <dispersion of voter 1>
  ...
  epsilon delta

and prints montecarlo=<estimate> and LLL=<estimate>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "estimator config file (yaml, json or toml)")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed (default: current time)")
	flags.IntVar(&opts.samples, "samples", 0, "trials per estimator (default: ceil(n^2 ln(1/delta) / epsilon^2))")
	flags.IntVar(&opts.workers, "workers", 0, "parallel workers; 1 uses a single sequential stream")
	flags.IntVar(&opts.maxRounds, "max-rounds", 0, "round cap per Moser-Tardos run (default: 100 x voters)")
	flags.StringVar(&opts.method, "method", "both", "estimator: montecarlo, lll or both")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the full report as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.StringVar(&opts.traceFile, "trace", "", "write one JSON line per Moser-Tardos run to this file")

	return cmd
}

func (o *estimateOptions) apply(cmd *cobra.Command, config *estimator.Config) error {
	if o.configFile != "" {
		if err := config.LoadFromFile(o.configFile); err != nil {
			return fmt.Errorf("loading config %s: %w", o.configFile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		config.Set("algorithm.random_seed", o.seed)
	}
	if flags.Changed("samples") {
		config.Set("algorithm.samples", o.samples)
	}
	if flags.Changed("workers") {
		config.Set("performance.parallel", o.workers > 1)
		config.Set("performance.num_workers", o.workers)
	}
	if flags.Changed("max-rounds") {
		config.Set("lll.max_rounds", o.maxRounds)
	}
	if flags.Changed("log-level") {
		config.Set("logging.level", o.logLevel)
	}
	if o.traceFile != "" {
		config.Set("analysis.track_runs", true)
		config.Set("analysis.output_file", o.traceFile)
	}
	return nil
}

func readInstance(args []string, stdin io.Reader) (*election.Election, error) {
	if len(args) == 0 || args[0] == "-" {
		return election.Parse(stdin)
	}
	return election.LoadFromFile(args[0])
}

func runEstimate(cmd *cobra.Command, opts *estimateOptions, args []string) error {
	config := estimator.NewConfig()
	if err := opts.apply(cmd, config); err != nil {
		return err
	}
	logger := config.CreateLogger()

	methods, err := estimator.ParseMethod(opts.method)
	if err != nil {
		return err
	}

	e, err := readInstance(args, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading instance: %w", err)
	}

	logger.Info().
		Int64("seed", config.RandomSeed()).
		Int("samples", estimator.Samples(e, config)).
		Int("workers", config.Workers()).
		Msg("Instance loaded")

	report, err := estimator.Estimate(cmd.Context(), e, config, methods...)
	if err != nil && !errors.Is(err, estimator.ErrNotConverged) {
		return err
	}

	if werr := writeReport(cmd.OutOrStdout(), report, opts.jsonOutput); werr != nil {
		return werr
	}
	return err
}

func writeReport(w io.Writer, report *estimator.Report, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if report.MonteCarlo != nil {
		fmt.Fprintf(w, "montecarlo=%g\n", report.MonteCarlo.Estimate)
	}
	if report.LLL != nil {
		if report.LLL.Converged {
			fmt.Fprintf(w, "LLL=%g\n", report.LLL.Estimate)
		} else {
			fmt.Fprintf(w, "LLL=not-converged (%d of %d runs capped at %d rounds)\n",
				report.LLL.LLL.NonConverged, report.LLL.Samples, report.LLL.LLL.RoundCap)
		}
	}
	return nil
}
