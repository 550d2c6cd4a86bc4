package complexity

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/haskel/bigo/internal/executor"
)

const probeFactor = 2

// FindInterval doubles the probe size from 2 until one call overruns the
// per-call budget. The window then starts at 1 and steps by the last size
// that fit. When nothing overruns up to MaxProbe the step is 1.
func (e *Engine) FindInterval(ctx context.Context, c executor.Candidate) (Interval, error) {
	for size := probeFactor; size <= e.cfg.MaxProbe; size *= probeFactor {
		m, err := e.runner.Run(ctx, c, size, e.cfg.CallBudget)
		if errors.Is(err, executor.ErrTimedOut) {
			iv := Interval{Start: 1, End: math.MaxInt32, Step: size / probeFactor}
			e.logger.Debug("interval found",
				"candidate", c.Name,
				"boundary", size,
				"interval", iv.String(),
			)
			return iv, nil
		}
		if err != nil {
			return Interval{}, fmt.Errorf("probing n=%d: %w", size, err)
		}
		e.logger.Debug("probe fit budget", "candidate", c.Name, "n", size, "duration", m.Duration)
		if size > e.cfg.MaxProbe/probeFactor {
			break
		}
	}

	e.logger.Debug("no probe overran the call budget", "candidate", c.Name, "max_probe", e.cfg.MaxProbe)
	return FullInterval, nil
}
