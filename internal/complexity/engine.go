// Package complexity estimates the asymptotic running time of a candidate
// by sampling it under a budget and fitting each growth class to the
// measured ratios.
package complexity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haskel/bigo/internal/executor"
)

// Reporter receives one result per computation, including failed ones.
type Reporter interface {
	Report(res *Result)
}

// Exporter persists a successful result.
type Exporter interface {
	Export(res *Result) error
}

// Engine runs complexity computations. Computations on one Engine must not
// overlap; measurements are strictly sequential.
type Engine struct {
	cfg      Config
	runner   executor.Runner
	logger   *slog.Logger
	reporter Reporter
	exporter Exporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the reporter called after every computation.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithExporter sets the exporter called after every successful computation.
func WithExporter(x Exporter) Option {
	return func(e *Engine) {
		e.exporter = x
	}
}

// New creates an engine. Unset numeric fields of cfg take their defaults.
func New(cfg Config, runner executor.Runner, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if runner == nil {
		return nil, ErrNoRunner
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Compute classifies c. The result is always reported; on a fatal error
// (too few samples, a broken child, cancellation) it carries the failure
// and the error is returned as well.
func (e *Engine) Compute(ctx context.Context, label string, c executor.Candidate, expected string) (*Result, error) {
	began := time.Now()
	res := &Result{
		Label:      label,
		Candidate:  c.Name,
		Expected:   expected,
		Guess:      NotFound,
		Accepted:   []string{},
		Resolution: e.cfg.Resolution,
	}

	err := e.compute(ctx, c, res)
	res.Elapsed = time.Since(began)
	if err != nil {
		res.Failure = err.Error()
		e.logger.Error("complexity computation failed", "label", label, "candidate", c.Name, "error", err)
	}

	if e.reporter != nil {
		e.reporter.Report(res)
	}
	if err != nil {
		return res, err
	}

	if e.exporter != nil {
		if xerr := e.exporter.Export(res); xerr != nil {
			e.logger.Warn("failed to export result", "label", label, "error", xerr)
		}
	}
	return res, nil
}

// ComputeComplexity classifies c and reports whether the outcome matches
// expected.
func (e *Engine) ComputeComplexity(ctx context.Context, label string, c executor.Candidate, expected string) (bool, error) {
	res, err := e.Compute(ctx, label, c, expected)
	if err != nil {
		return false, err
	}
	return res.Passed, nil
}

func (e *Engine) compute(ctx context.Context, c executor.Candidate, res *Result) error {
	iv := e.cfg.Interval
	if e.cfg.AutoInterval {
		found, err := e.FindInterval(ctx, c)
		if err != nil {
			return fmt.Errorf("finding interval: %w", err)
		}
		iv = found
	}
	res.Probed = iv

	if err := e.collect(ctx, c, iv, res); err != nil {
		return fmt.Errorf("sampling %s: %w", c.Name, err)
	}

	res.Ratios = BuildRatios(e.cfg.Bank, res.Samples, res.Interval)
	res.Fits = make([]FitResult, len(res.Ratios))
	opts := e.fitOptions()
	for i, series := range res.Ratios {
		res.Fits[i] = Fit(series, opts)
		e.logger.Debug("fit",
			"class", series.Name,
			"a", res.Fits[i].A,
			"b", res.Fits[i].B,
			"error", res.Fits[i].Error,
			"accepted", res.Fits[i].Accepted,
		)
	}

	res.Guess, res.Accepted = Decide(res.Fits, e.cfg.NearZero)
	res.Passed = ParseExpectation(res.Expected).Matches(res.Guess, res.Accepted)

	e.logger.Info("complexity computed",
		"label", res.Label,
		"guess", res.Guess,
		"samples", len(res.Samples),
		"spent", res.Spent,
		"passed", res.Passed,
	)
	return nil
}
