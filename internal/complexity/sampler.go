package complexity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/haskel/bigo/internal/executor"
)

// Sample measures c at n = Start, Start+Step, ... while n < End and the
// total budget lasts. Each call is limited to the per-call budget, or to
// what is left of the total when that is smaller. A call that overruns is
// killed, charged and skipped; sampling goes on with the next size. The
// step doubles every RateStepEvery samples and sampling stops at
// MaxSamples.
//
// spent is the wall time consumed, including process overhead and killed
// calls.
func (e *Engine) Sample(ctx context.Context, c executor.Candidate, iv Interval) (samples []Sample, spent time.Duration, err error) {
	progress := rate.Sometimes{First: 1, Interval: time.Second}
	step := iv.Step
	timeouts := 0

	for n := iv.Start; n < iv.End; {
		remaining := e.cfg.TotalBudget - spent
		if remaining <= 0 {
			break
		}

		budget := min(e.cfg.CallBudget, remaining)
		m, err := e.runner.Run(ctx, c, n, budget)
		switch {
		case errors.Is(err, executor.ErrTimedOut):
			// an overrun costs at least its budget
			spent += max(m.Elapsed, budget)
			timeouts++
			e.logger.Debug("call killed, size skipped",
				"candidate", c.Name,
				"n", n,
				"spent", spent,
				"timeouts", timeouts,
			)
		case err != nil:
			spent += m.Elapsed
			return samples, spent, fmt.Errorf("measuring n=%d: %w", n, err)
		default:
			spent += m.Elapsed
			samples = append(samples, Sample{N: n, Duration: m.Duration, Units: e.units(m.Duration)})
			progress.Do(func() {
				e.logger.Debug("sampling",
					"candidate", c.Name,
					"samples", len(samples),
					"n", n,
					"spent", spent,
				)
			})

			if len(samples)%e.cfg.RateStepEvery == 0 {
				step *= 2
			}
		}

		if spent >= e.cfg.TotalBudget || len(samples) >= e.cfg.MaxSamples {
			break
		}
		if n > math.MaxInt-step {
			break
		}
		n += step
	}

	return samples, spent, nil
}

// units converts d to resolution units, never less than one.
func (e *Engine) units(d time.Duration) int64 {
	u := int64(d / e.cfg.Resolution)
	if u < 1 {
		return 1
	}
	return u
}

// collect runs a sampling pass over iv and restarts once over the full
// interval when too few samples were gathered with a coarse step.
func (e *Engine) collect(ctx context.Context, c executor.Candidate, iv Interval, res *Result) error {
	for {
		samples, spent, err := e.Sample(ctx, c, iv)
		res.Interval = iv
		res.Samples = samples
		res.Spent = spent
		if err != nil {
			return err
		}

		if len(samples) >= e.cfg.MinSamples {
			return nil
		}
		if iv.Step <= 1 {
			return fmt.Errorf("%w: %d of %d collected", ErrInsufficientData, len(samples), e.cfg.MinSamples)
		}

		e.logger.Debug("restarting with full interval",
			"candidate", c.Name,
			"samples", len(samples),
			"interval", iv.String(),
		)
		iv = FullInterval
		res.Restarted = true
	}
}
