package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/bigo/internal/complexity"
	"github.com/haskel/bigo/internal/config"
	"github.com/haskel/bigo/internal/executor"
	"github.com/haskel/bigo/internal/report"
	"github.com/haskel/bigo/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <candidate> [candidate...]",
	Short: "Estimate the complexity of registered candidates",
	Long: `Estimate the time complexity of one or more registered candidates.

An expectation can be checked with -O (upper bound: the guess or any
converging class must match) or -T (tight: the guess must match). The
class may be written as "n log n", "(n log n)" or "O(n log n)".

Exit codes:
  0  every candidate was classified and met its expectation
  1  a candidate could not be classified
  3  a candidate missed its expectation`,
	Example: `  bigo run sleep/linear
  bigo run -T n sleep/linear
  bigo run -O "n^2" --budget 10s fib/iterative heap/push
  bigo run -v --export --label fib fib/naive`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runUpper      string
	runTight      string
	runBudget     time.Duration
	runCallBudget time.Duration
	runVerbose    bool
	runExport     bool
	runLabel      string
	runJSON       bool
)

const exitExpectationFailed = 3

var errExpectationFailed = errors.New("expectation not met")

func init() {
	runCmd.Flags().StringVarP(&runUpper, "upper", "O", "", "expected upper bound, e.g. \"n log n\"")
	runCmd.Flags().StringVarP(&runTight, "tight", "T", "", "expected tight bound, e.g. \"n\"")
	runCmd.Flags().DurationVar(&runBudget, "budget", 0, "total sampling budget (default from config)")
	runCmd.Flags().DurationVar(&runCallBudget, "call-budget", 0, "budget of one probe call (default from config)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print samples, ratio tables and fits")
	runCmd.Flags().BoolVar(&runExport, "export", false, "export run records (default from config)")
	runCmd.Flags().StringVar(&runLabel, "label", "", "label of the run (single candidate only)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print run records as JSON instead of summaries")
	runCmd.MarkFlagsMutuallyExclusive("upper", "tight")
	runCmd.MarkFlagsMutuallyExclusive("verbose", "json")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runLabel != "" && len(args) > 1 {
		return fmt.Errorf("--label requires exactly one candidate")
	}

	candidates := make([]executor.Candidate, len(args))
	for i, name := range args {
		c, err := executor.Lookup(name)
		if err != nil {
			return err
		}
		candidates[i] = c
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	engineCfg, err := engineConfig(cfg, runBudget, runCallBudget)
	if err != nil {
		return err
	}

	runner, err := newRunner(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}
	host := newHost(cfg, log)

	out := cmd.OutOrStdout()
	var opts []complexity.Option
	if !runJSON {
		opts = append(opts, complexity.WithReporter(report.New(out, runVerbose)))
	}
	if runExport || cfg.Export.Enabled {
		opts = append(opts, complexity.WithExporter(newStore(cfg, log, host)))
	}

	engine, err := complexity.New(engineCfg, runner, log, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expected := expectationTag(runUpper, runTight)
	failed, missed := 0, 0
	for _, c := range candidates {
		label := c.Name
		if runLabel != "" {
			label = runLabel
		}

		if host != nil {
			host.Check()
		}

		res, err := engine.Compute(ctx, label, c, expected)
		if runJSON {
			if jerr := printRecord(out, res); jerr != nil {
				return jerr
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			failed++
			continue
		}
		if !res.Passed {
			missed++
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d candidates could not be classified", failed, len(candidates))
	case missed > 0:
		return &ExitError{
			Code: exitExpectationFailed,
			Err:  fmt.Errorf("%d of %d candidates: %w", missed, len(candidates), errExpectationFailed),
		}
	}
	return nil
}

// engineConfig applies non-zero budget overrides to the configured engine
// settings.
func engineConfig(cfg *config.Config, total, call time.Duration) (complexity.Config, error) {
	engineCfg, err := cfg.Engine()
	if err != nil {
		return complexity.Config{}, err
	}
	if total > 0 {
		engineCfg.TotalBudget = total
	}
	if call > 0 {
		engineCfg.CallBudget = call
	}
	return engineCfg, nil
}

// expectationTag turns the -O / -T flag values into an expectation tag.
// Any prefix already present on the class is replaced.
func expectationTag(upper, tight string) string {
	switch {
	case upper != "":
		x := complexity.ParseExpectation(upper)
		x.Bound = complexity.UpperBound
		return x.String()
	case tight != "":
		x := complexity.ParseExpectation(tight)
		x.Bound = complexity.TightBound
		return x.String()
	}
	return ""
}

func printRecord(w io.Writer, res *complexity.Result) error {
	enc := json.NewEncoder(w)
	return enc.Encode(storage.NewRecord(res, time.Now()))
}
