package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/keff-search/internal/engine"
	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

type searchOptions struct {
	engine        string
	lo, hi        float64
	target        float64
	tol           float64
	maxIterations int
	method        string
	criterion     string
	timeout       string
	quiet         bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for the critical boron concentration",
		Long: `Runs the configured root finder over the boron concentration until the
pin cell's k-effective matches the target. Every evaluation is printed unless
--quiet is set. On failure the failure class and the partial history are
printed and the command exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.engine, "engine", "", "engine kind: surrogate or command")
	f.Float64Var(&opts.lo, "lo", 0, "lower bracket bound in ppm")
	f.Float64Var(&opts.hi, "hi", 0, "upper bracket bound in ppm")
	f.Float64Var(&opts.target, "target", 1.0, "target k-effective")
	f.Float64Var(&opts.tol, "tol", 0, "convergence tolerance")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "maximum number of iterations")
	f.StringVar(&opts.method, "method", "", "root finder: bisect, secant or brentq")
	f.StringVar(&opts.criterion, "criterion", "", "convergence criterion: value, bracket_width or any")
	f.StringVar(&opts.timeout, "evaluation-timeout", "", "timeout for a single evaluation, e.g. 10m")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print iterations")
	return cmd
}

// apply copies the flags that were set on the command line into cfg.
func (o *searchOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.Engine.Kind = o.engine
	}
	if f.Changed("lo") || f.Changed("hi") {
		bracket := append([]float64(nil), cfg.Search.Bracket...)
		if len(bracket) != 2 {
			bracket = []float64{0, 0}
		}
		if f.Changed("lo") {
			bracket[0] = o.lo
		}
		if f.Changed("hi") {
			bracket[1] = o.hi
		}
		cfg.Search.Bracket = bracket
	}
	if f.Changed("target") {
		cfg.Search.Target = o.target
	}
	if f.Changed("tol") {
		cfg.Search.Tolerance = o.tol
	}
	if f.Changed("max-iterations") {
		cfg.Search.MaxIterations = o.maxIterations
	}
	if f.Changed("method") {
		cfg.Search.Method = o.method
	}
	if f.Changed("criterion") {
		cfg.Search.Criterion = o.criterion
	}
	if f.Changed("evaluation-timeout") {
		cfg.Search.EvaluationTimeout = o.timeout
	}
	if o.quiet {
		cfg.Search.PrintIterations = false
	}
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions) error {
	cfg, err := root.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	m := metrics.NewCollector()
	evaluator, err := engine.NewEvaluator(cfg, m)
	if err != nil {
		return err
	}
	searchOpts, err := engine.OptionsFromConfig(cfg.Search)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Search.PrintIterations {
		searchOpts.Progress = func(ev search.Evaluation) {
			printEvaluation(out, ev)
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting search", "engine", cfg.Engine.Kind, "method", cfg.Search.Method, "bracket", cfg.Search.Bracket)
	outcome, err := search.Search(ctx, evaluator, searchOpts)
	if err != nil {
		printFailure(out, err)
		return &exitError{code: 1, err: err}
	}

	fmt.Fprintf(out, "Critical Boron Concentration: %4.0f ppm\n", outcome.Root)
	if agg := m.EvaluationSummary(evaluator.Engine.Name()); agg != nil {
		logger.Info("search finished",
			"root_ppm", outcome.Root,
			"keff", outcome.Result.Value,
			"iterations", outcome.Iterations(),
			"evaluations", outcome.History.Len(),
			"mean_evaluation_time", agg.MeanDuration())
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printEvaluation(w io.Writer, ev search.Evaluation) {
	fmt.Fprintf(w, "Iteration: %d; Guess of %.2e produced a keff of %1.5f +/- %1.5f\n",
		ev.Index, ev.Guess, ev.Result.Value, ev.Result.StdDev)
}

func printFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "Search failed [%s]: %v\n", search.Classify(err), err)
	h, ok := search.PartialHistory(err)
	if !ok || h.Len() == 0 {
		return
	}
	fmt.Fprintln(w, "Evaluations before the failure:")
	for i := range h.Guesses {
		fmt.Fprintf(w, "  %3d  %10.2f ppm  keff %1.5f +/- %1.5f\n", i+1, h.Guesses[i], h.Results[i].Value, h.Results[i].StdDev)
	}
}
