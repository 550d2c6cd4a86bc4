package complexity

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haskel/bigo/internal/executor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner charges cost(n) microseconds plus a fixed overhead per call
// and times out like the process runner when the budget is too small.
type fakeRunner struct {
	cost     func(n int) float64
	overhead time.Duration
	failAt   int
	failErr  error
	calls    []int
	elapsed  []time.Duration
}

func (f *fakeRunner) Run(_ context.Context, _ executor.Candidate, n int, budget time.Duration) (executor.Measurement, error) {
	f.calls = append(f.calls, n)
	if f.failErr != nil && n >= f.failAt {
		f.elapsed = append(f.elapsed, f.overhead)
		return executor.Measurement{N: n, Elapsed: f.overhead}, f.failErr
	}

	units := math.Max(1, math.Round(f.cost(n)))
	if units*float64(time.Microsecond)+float64(f.overhead) > float64(budget) {
		f.elapsed = append(f.elapsed, budget)
		return executor.Measurement{N: n, Elapsed: budget}, executor.ErrTimedOut
	}

	d := time.Duration(units) * time.Microsecond
	f.elapsed = append(f.elapsed, d+f.overhead)
	return executor.Measurement{N: n, Start: 0, End: int64(d), Duration: d, Elapsed: d + f.overhead}, nil
}

// timeoutRunner times out without reporting any elapsed time.
type timeoutRunner struct{}

func (timeoutRunner) Run(_ context.Context, _ executor.Candidate, n int, _ time.Duration) (executor.Measurement, error) {
	return executor.Measurement{N: n}, executor.ErrTimedOut
}

type recordingReporter struct {
	results []*Result
}

func (r *recordingReporter) Report(res *Result) {
	r.results = append(r.results, res)
}

type recordingExporter struct {
	results []*Result
}

func (r *recordingExporter) Export(res *Result) error {
	r.results = append(r.results, res)
	return nil
}

var candidate = executor.Candidate{Name: "fake"}

// fixedConfig lets a single call use the whole budget; tests of the
// per-call limit lower CallBudget themselves.
func fixedConfig(step int) Config {
	cfg := DefaultConfig()
	cfg.TotalBudget = 5000 * time.Microsecond
	cfg.CallBudget = 5000 * time.Microsecond
	cfg.AutoInterval = false
	cfg.Interval = Interval{Start: 1, End: math.MaxInt32, Step: step}
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, r executor.Runner, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, r, testLogger(), opts...)
	require.NoError(t, err)
	return e
}

func TestCompute_Classifies(t *testing.T) {
	tests := []struct {
		name string
		cost func(n int) float64
		step int
		want string
	}{
		{"constant", func(int) float64 { return 10 }, 1, "O(1)"},
		{"logarithmic", func(n int) float64 { return 10*math.Log(float64(n)) + 1 }, 1, "O(log n)"},
		{"square root", func(n int) float64 { return 5 * math.Sqrt(float64(n)) }, 1024, "O(sqrt(n))"},
		{"linear", func(n int) float64 { return float64(n) }, 64, "O(n)"},
		{"quadratic", func(n int) float64 { return 0.01 * float64(n) * float64(n) }, 64, "O(n^2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{cost: tt.cost, overhead: 2 * time.Microsecond}
			e := newTestEngine(t, fixedConfig(tt.step), r)

			res, err := e.Compute(context.Background(), tt.name, candidate, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Guess)
			assert.Contains(t, res.Accepted, tt.want)
			assert.True(t, res.Passed)
		})
	}
}

func TestCompute_Expectations(t *testing.T) {
	tests := []struct {
		name     string
		cost     func(n int) float64
		step     int
		expected string
		pass     bool
	}{
		{"constant upper", func(int) float64 { return 10 }, 1, "O(1)", true},
		{"constant tight", func(int) float64 { return 10 }, 1, "T(1)", true},
		{"linear tight", func(n int) float64 { return float64(n) }, 64, "T(n)", true},
		{"linear loose upper", func(n int) float64 { return float64(n) }, 64, "O(n^2)", true},
		{"linear not constant", func(n int) float64 { return float64(n) }, 64, "T(1)", false},
		{"linear not upper constant", func(n int) float64 { return float64(n) }, 64, "O(1)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{cost: tt.cost, overhead: 2 * time.Microsecond}
			e := newTestEngine(t, fixedConfig(tt.step), r)

			ok, err := e.ComputeComplexity(context.Background(), tt.name, candidate, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, ok)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	cost := func(n int) float64 { return float64(n) }
	e := newTestEngine(t, fixedConfig(64), &fakeRunner{cost: cost, overhead: 2 * time.Microsecond})

	first, err := e.Compute(context.Background(), "linear", candidate, "")
	require.NoError(t, err)
	second, err := e.Compute(context.Background(), "linear", candidate, "")
	require.NoError(t, err)

	assert.Equal(t, first.Guess, second.Guess)
	assert.Equal(t, len(first.Samples), len(second.Samples))
}

func TestCompute_BudgetDiscipline(t *testing.T) {
	r := &fakeRunner{cost: func(n int) float64 { return float64(n) }, overhead: 2 * time.Microsecond}
	cfg := fixedConfig(16)
	e := newTestEngine(t, cfg, r)

	res, err := e.Compute(context.Background(), "linear", candidate, "")
	require.NoError(t, err)

	var total time.Duration
	for _, d := range r.elapsed {
		total += d
	}
	assert.Equal(t, total, res.Spent)
	assert.LessOrEqual(t, res.Spent, cfg.TotalBudget)

	for i := 1; i < len(res.Samples); i++ {
		assert.Greater(t, res.Samples[i].N, res.Samples[i-1].N)
	}
}

func TestCompute_SharedSizes(t *testing.T) {
	r := &fakeRunner{cost: func(n int) float64 { return float64(n) }, overhead: 2 * time.Microsecond}
	e := newTestEngine(t, fixedConfig(64), r)

	res, err := e.Compute(context.Background(), "linear", candidate, "")
	require.NoError(t, err)
	require.Len(t, res.Ratios, 10)

	for _, series := range res.Ratios {
		require.Len(t, series.Points, len(res.Samples))
		for i, p := range series.Points {
			assert.Equal(t, res.Samples[i].N, p.N)
		}
	}
}

func TestCompute_RestartsOnTooFewSamples(t *testing.T) {
	r := &fakeRunner{cost: func(n int) float64 { return math.Pow(2, float64(n)) }, overhead: 2 * time.Microsecond}
	cfg := fixedConfig(1)
	cfg.AutoInterval = true
	e := newTestEngine(t, cfg, r)

	res, err := e.Compute(context.Background(), "exponential", candidate, "")
	require.NoError(t, err)

	assert.Equal(t, 8, res.Probed.Step)
	assert.True(t, res.Restarted)
	assert.Equal(t, FullInterval, res.Interval)
	assert.Len(t, res.Samples, 11)
}

func TestCompute_InsufficientData(t *testing.T) {
	rep := &recordingReporter{}
	exp := &recordingExporter{}
	r := &fakeRunner{cost: func(int) float64 { return 10_000 }}
	e := newTestEngine(t, fixedConfig(1), r, WithReporter(rep), WithExporter(exp))

	res, err := e.Compute(context.Background(), "slow", candidate, "O(1)")
	require.ErrorIs(t, err, ErrInsufficientData)

	assert.Equal(t, NotFound, res.Guess)
	assert.NotEmpty(t, res.Failure)
	require.Len(t, rep.results, 1)
	assert.Same(t, res, rep.results[0])
	assert.Empty(t, exp.results)
}

func TestCompute_ChannelFailureIsFatal(t *testing.T) {
	rep := &recordingReporter{}
	r := &fakeRunner{
		cost:    func(n int) float64 { return float64(n) },
		failAt:  5,
		failErr: executor.ErrChannelFailure,
	}
	e := newTestEngine(t, fixedConfig(1), r, WithReporter(rep))

	_, err := e.Compute(context.Background(), "broken", candidate, "")
	require.ErrorIs(t, err, executor.ErrChannelFailure)
	assert.Len(t, rep.results, 1)
	assert.Equal(t, 5, r.calls[len(r.calls)-1])
}

func TestCompute_ReportsAndExports(t *testing.T) {
	rep := &recordingReporter{}
	exp := &recordingExporter{}
	r := &fakeRunner{cost: func(int) float64 { return 10 }, overhead: 2 * time.Microsecond}
	e := newTestEngine(t, fixedConfig(1), r, WithReporter(rep), WithExporter(exp))

	res, err := e.Compute(context.Background(), "constant", candidate, "T(1)")
	require.NoError(t, err)

	require.Len(t, rep.results, 1)
	require.Len(t, exp.results, 1)
	assert.Same(t, res, exp.results[0])
	assert.Equal(t, "constant", res.Label)
	assert.Equal(t, "fake", res.Candidate)
	assert.Equal(t, time.Microsecond, res.Resolution)
	assert.Positive(t, res.Elapsed)
}

func TestFindInterval(t *testing.T) {
	t.Run("linear candidate", func(t *testing.T) {
		r := &fakeRunner{cost: func(n int) float64 { return float64(n) }, overhead: 2 * time.Microsecond}
		cfg := fixedConfig(1)
		cfg.CallBudget = 1000 * time.Microsecond
		e := newTestEngine(t, cfg, r)

		iv, err := e.FindInterval(context.Background(), candidate)
		require.NoError(t, err)
		assert.Equal(t, Interval{Start: 1, End: math.MaxInt32, Step: 512}, iv)
		assert.Equal(t, []int{2, 4, 8, 16, 32, 64, 128, 256, 512, 1024}, r.calls)
	})

	t.Run("never overruns", func(t *testing.T) {
		r := &fakeRunner{cost: func(int) float64 { return 1 }}
		cfg := fixedConfig(1)
		cfg.MaxProbe = 1 << 10
		e := newTestEngine(t, cfg, r)

		iv, err := e.FindInterval(context.Background(), candidate)
		require.NoError(t, err)
		assert.Equal(t, FullInterval, iv)
		assert.Len(t, r.calls, 10)
	})

	t.Run("stops at the probe cap", func(t *testing.T) {
		r := &fakeRunner{cost: func(int) float64 { return 1 }}
		cfg := fixedConfig(1)
		cfg.MaxProbe = math.MaxInt32
		e := newTestEngine(t, cfg, r)

		iv, err := e.FindInterval(context.Background(), candidate)
		require.NoError(t, err)
		assert.Equal(t, FullInterval, iv)
		require.Len(t, r.calls, 30)
		for _, n := range r.calls {
			assert.Positive(t, n)
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		r := &fakeRunner{cost: func(int) float64 { return 1 }, failAt: 1, failErr: executor.ErrCandidateFailed}
		e := newTestEngine(t, fixedConfig(1), r)

		_, err := e.FindInterval(context.Background(), candidate)
		assert.ErrorIs(t, err, executor.ErrCandidateFailed)
	})
}

func TestSample_RateStepAndCap(t *testing.T) {
	r := &fakeRunner{cost: func(int) float64 { return 1 }}
	cfg := fixedConfig(1)
	cfg.TotalBudget = time.Hour
	cfg.RateStepEvery = 4
	cfg.MaxSamples = 10
	e := newTestEngine(t, cfg, r)

	samples, _, err := e.Sample(context.Background(), candidate, cfg.Interval)
	require.NoError(t, err)

	var sizes []int
	for _, s := range samples {
		sizes = append(sizes, s.N)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 6, 8, 10, 12, 16, 20}, sizes)
}

func TestSample_KillsRunawayCallsAtCallBudget(t *testing.T) {
	r := &fakeRunner{cost: func(int) float64 { return math.Inf(1) }}
	cfg := fixedConfig(1)
	cfg.CallBudget = 200 * time.Microsecond
	e := newTestEngine(t, cfg, r)

	samples, spent, err := e.Sample(context.Background(), candidate, cfg.Interval)
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Equal(t, cfg.TotalBudget, spent)
	assert.Len(t, r.calls, 25)
	for _, d := range r.elapsed {
		assert.Equal(t, cfg.CallBudget, d)
	}
}

func TestSample_SkipsOverrunAndContinues(t *testing.T) {
	cost := func(n int) float64 {
		if n == 5 {
			return 1e9
		}
		return float64(n)
	}
	r := &fakeRunner{cost: cost, overhead: 2 * time.Microsecond}
	cfg := fixedConfig(1)
	cfg.CallBudget = 1000 * time.Microsecond
	e := newTestEngine(t, cfg, r)

	samples, spent, err := e.Sample(context.Background(), candidate, Interval{Start: 1, End: 11, Step: 1})
	require.NoError(t, err)

	var sizes []int
	for _, s := range samples {
		sizes = append(sizes, s.N)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 6, 7, 8, 9, 10}, sizes)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, r.calls)
	assert.Equal(t, 1068*time.Microsecond, spent)
}

func TestSample_TimeoutWithoutElapsedStillCharged(t *testing.T) {
	e := newTestEngine(t, fixedConfig(1), timeoutRunner{})

	samples, spent, err := e.Sample(context.Background(), candidate, FullInterval)
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Equal(t, 5000*time.Microsecond, spent)
}

func TestSample_StopsAtEnd(t *testing.T) {
	r := &fakeRunner{cost: func(int) float64 { return 1 }}
	cfg := fixedConfig(1)
	cfg.TotalBudget = time.Hour
	e := newTestEngine(t, cfg, r)

	samples, _, err := e.Sample(context.Background(), candidate, Interval{Start: 1, End: 10, Step: 3})
	require.NoError(t, err)
	assert.Len(t, samples, 3)
}

func TestSample_Units(t *testing.T) {
	r := &fakeRunner{cost: func(n int) float64 { return float64(n) * 1500 }}
	cfg := fixedConfig(1)
	cfg.TotalBudget = time.Hour
	cfg.Resolution = time.Millisecond
	e := newTestEngine(t, cfg, r)

	samples, _, err := e.Sample(context.Background(), candidate, Interval{Start: 1, End: 4, Step: 1})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{samples[0].Units, samples[1].Units, samples[2].Units})
}

func TestNew_Validation(t *testing.T) {
	_, err := New(DefaultConfig(), nil, testLogger())
	assert.ErrorIs(t, err, ErrNoRunner)

	cfg := DefaultConfig()
	cfg.BandLow, cfg.BandHigh = 1.2, 1.1
	_, err = New(cfg, &fakeRunner{}, testLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MaxProbe = math.MaxInt
	_, err = New(cfg, &fakeRunner{}, testLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.CallBudget = 2 * cfg.TotalBudget
	_, err = New(cfg, &fakeRunner{}, testLogger())
	assert.Error(t, err)

	e, err := New(Config{}, &fakeRunner{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MinSamples, e.Config().MinSamples)
	assert.Len(t, e.Config().Bank, 10)
	assert.Zero(t, e.Config().NearZero)

	cfg = DefaultConfig()
	cfg.NearZero = 0
	e, err = New(cfg, &fakeRunner{}, testLogger())
	require.NoError(t, err)
	assert.Zero(t, e.Config().NearZero)
}
