// Package executor times candidate functions under a hard budget.
//
// Candidates are registered by name at init time. The Process runner
// re-executes the current binary, which must call ServeChild first thing
// in main (or TestMain), so the candidate runs in a child process that
// can be killed when it overruns.
package executor

import (
	"context"
	"time"
)

// Measurement is the outcome of one call.
type Measurement struct {
	N int `json:"n"`
	// Start and End are monotonic clock readings taken around the call.
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	// Duration is End-Start, at least one nanosecond.
	Duration time.Duration `json:"duration"`
	// Elapsed is the wall time the caller spent, including process
	// creation and teardown. It is set on timeout too.
	Elapsed time.Duration `json:"elapsed"`
}

// Runner runs a candidate once for size n under budget.
// A call that overruns returns ErrTimedOut with Elapsed set.
type Runner interface {
	Run(ctx context.Context, c Candidate, n int, budget time.Duration) (Measurement, error)
}

func measured(n int, start, end int64, elapsed time.Duration) Measurement {
	d := time.Duration(end - start)
	if d < 1 {
		d = 1
	}
	return Measurement{N: n, Start: start, End: end, Duration: d, Elapsed: elapsed}
}
