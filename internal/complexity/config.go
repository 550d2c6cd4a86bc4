package complexity

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/haskel/bigo/internal/growth"
)

// Interval is a semi-open sampling window [Start, End) walked by Step.
type Interval struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
	Step  int `json:"step" yaml:"step"`
}

// String formats the interval for logs and reports.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d) step %d", iv.Start, iv.End, iv.Step)
}

// FullInterval walks every size from 1.
var FullInterval = Interval{Start: 1, End: math.MaxInt32, Step: 1}

// Config holds engine tunables.
type Config struct {
	// TotalBudget bounds the wall time of one sampling pass.
	TotalBudget time.Duration
	// CallBudget bounds a single probe of the interval finder.
	CallBudget time.Duration

	Bank growth.Bank

	// ConvergenceError is the largest fit residual that still counts as
	// converged.
	ConvergenceError float64
	// NearZero is the smallest asymptote that is not treated as decay.
	// It is never defaulted: zero counts every converging class, so start
	// from DefaultConfig to get the usual threshold.
	NearZero float64

	// AutoInterval probes the candidate for a window; otherwise Interval
	// is used as given.
	AutoInterval bool
	Interval     Interval

	// Resolution is the time unit durations are counted in.
	Resolution time.Duration

	MinSamples    int
	RateStepEvery int
	MaxSamples    int
	MaxProbe      int

	FitIterations int
	BandLow       float64
	BandHigh      float64
	// MaxShape caps the log-spread parameter of the convergence model.
	MaxShape float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		TotalBudget:      5 * time.Second,
		CallBudget:       100 * time.Millisecond,
		Bank:             growth.Default(),
		ConvergenceError: 0.01,
		NearZero:         0.3,
		AutoInterval:     true,
		Interval:         FullInterval,
		Resolution:       time.Microsecond,
		MinSamples:       3,
		RateStepEvery:    500,
		MaxSamples:       5000,
		MaxProbe:         10_000_000,
		FitIterations:    100,
		BandLow:          0.9,
		BandHigh:         1.1,
		MaxShape:         1.0,
	}
}

// withDefaults fills unset numeric fields from DefaultConfig, except
// NearZero, for which zero is a meaningful setting.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TotalBudget == 0 {
		c.TotalBudget = d.TotalBudget
	}
	if c.CallBudget == 0 {
		c.CallBudget = d.CallBudget
	}
	if c.Bank == nil {
		c.Bank = d.Bank
	}
	if c.ConvergenceError == 0 {
		c.ConvergenceError = d.ConvergenceError
	}
	if c.Interval == (Interval{}) {
		c.Interval = d.Interval
	}
	if c.Resolution == 0 {
		c.Resolution = d.Resolution
	}
	if c.MinSamples == 0 {
		c.MinSamples = d.MinSamples
	}
	if c.RateStepEvery == 0 {
		c.RateStepEvery = d.RateStepEvery
	}
	if c.MaxSamples == 0 {
		c.MaxSamples = d.MaxSamples
	}
	if c.MaxProbe == 0 {
		c.MaxProbe = d.MaxProbe
	}
	if c.FitIterations == 0 {
		c.FitIterations = d.FitIterations
	}
	if c.BandLow == 0 && c.BandHigh == 0 {
		c.BandLow, c.BandHigh = d.BandLow, d.BandHigh
	}
	if c.MaxShape == 0 {
		c.MaxShape = d.MaxShape
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error

	if c.TotalBudget <= 0 {
		errs = append(errs, errors.New("total budget must be positive"))
	}
	if c.CallBudget <= 0 {
		errs = append(errs, errors.New("call budget must be positive"))
	}
	if c.CallBudget > c.TotalBudget {
		errs = append(errs, fmt.Errorf("call budget %v exceeds total budget %v", c.CallBudget, c.TotalBudget))
	}
	if len(c.Bank) == 0 {
		errs = append(errs, ErrEmptyBank)
	}
	if c.ConvergenceError <= 0 {
		errs = append(errs, errors.New("convergence error must be positive"))
	}
	if c.NearZero < 0 {
		errs = append(errs, errors.New("near-zero threshold must not be negative"))
	}
	if c.Interval.Start < 1 || c.Interval.Step < 1 || c.Interval.End <= c.Interval.Start {
		errs = append(errs, fmt.Errorf("invalid interval %s", c.Interval))
	}
	if c.Resolution <= 0 {
		errs = append(errs, errors.New("resolution must be positive"))
	}
	if c.MinSamples < 2 {
		errs = append(errs, errors.New("min samples must be at least 2"))
	}
	if c.RateStepEvery < 1 {
		errs = append(errs, errors.New("rate step period must be positive"))
	}
	if c.MaxSamples < c.MinSamples {
		errs = append(errs, errors.New("max samples must be at least min samples"))
	}
	if c.MaxProbe < 2 || c.MaxProbe > math.MaxInt32 {
		errs = append(errs, fmt.Errorf("max probe must be within [2, %d]", math.MaxInt32))
	}
	if c.FitIterations < 1 {
		errs = append(errs, errors.New("fit iterations must be positive"))
	}
	if c.BandLow >= c.BandHigh {
		errs = append(errs, fmt.Errorf("band [%g, %g] is empty", c.BandLow, c.BandHigh))
	}
	if c.MaxShape <= minShape {
		errs = append(errs, fmt.Errorf("max shape must exceed %g", float64(minShape)))
	}

	return errors.Join(errs...)
}
