package executor

import (
	"context"
	"fmt"
	"time"
)

// InProcess runs candidates on a goroutine of the current process. A call
// that overruns is reported as timed out but keeps running in the
// background, so it is only suitable for well-behaved candidates or
// platforms without process isolation.
type InProcess struct{}

// Run executes c(n) on a new goroutine and waits for at most budget.
func (InProcess) Run(ctx context.Context, c Candidate, n int, budget time.Duration) (Measurement, error) {
	fn, ok := lookupFunc(c.Name)
	if !ok {
		return Measurement{N: n}, fmt.Errorf("%w: %s", ErrUnknownCandidate, c.Name)
	}
	if budget <= 0 {
		return Measurement{N: n}, ErrTimedOut
	}

	type result struct {
		start, end time.Time
		panicked   any
	}
	done := make(chan result, 1)

	began := time.Now()
	go func() {
		var res result
		defer func() {
			res.panicked = recover()
			res.end = time.Now()
			done <- res
		}()
		res.start = time.Now()
		fn(n)
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case res := <-done:
		elapsed := time.Since(began)
		if res.panicked != nil {
			return Measurement{N: n, Elapsed: elapsed}, fmt.Errorf("%w: %s panicked: %v", ErrCandidateFailed, c.Name, res.panicked)
		}
		return measured(n, res.start.UnixNano(), res.end.UnixNano(), elapsed), nil
	case <-timer.C:
		return Measurement{N: n, Elapsed: time.Since(began)}, ErrTimedOut
	case <-ctx.Done():
		return Measurement{N: n, Elapsed: time.Since(began)}, ctx.Err()
	}
}
