package complexity

import (
	"math"

	"github.com/haskel/bigo/internal/optimizer"
)

// negligibleRatio drops ratios that are effectively zero before fitting.
const negligibleRatio = 1e-8

// FitOptions controls the convergence fit of one series.
type FitOptions struct {
	Iterations       int
	BandLow          float64
	BandHigh         float64
	MaxShape         float64
	ConvergenceError float64
}

func (e *Engine) fitOptions() FitOptions {
	return FitOptions{
		Iterations:       e.cfg.FitIterations,
		BandLow:          e.cfg.BandLow,
		BandHigh:         e.cfg.BandHigh,
		MaxShape:         e.cfg.MaxShape,
		ConvergenceError: e.cfg.ConvergenceError,
	}
}

// Fit fits the convergence curve to series. Leading points outside the
// band are skipped; fewer than two remaining points never converge.
func Fit(series RatioSeries, opts FitOptions) FitResult {
	pts := convergingPoints(series.Points, opts.BandLow, opts.BandHigh)
	res := FitResult{Name: series.Name, Points: len(pts), Error: math.Inf(1)}
	if len(pts) < 2 {
		return res
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = float64(p.N)
		ys[i] = p.Ratio
	}

	m := convergence{c: xs[0], d: xs[len(xs)-1] / 5, maxShape: opts.MaxShape}
	if m.d <= 0 {
		m.d = 1
	}

	objective := optimizer.MSE(m.eval, xs, ys)
	opt := optimizer.New(objective, 2, opts.Iterations)
	res.InitialA, res.InitialB = ys[len(ys)-1], 0
	_ = opt.SetGuess([]float64{res.InitialA, res.InitialB})

	params := opt.Run()
	res.A = params[0]
	res.B = m.shape(params[1])
	res.Error = objective(params)
	res.Accepted = res.Error < opts.ConvergenceError
	return res
}

// convergingPoints drops non-finite and negligible ratios, then skips the
// leading points until one lies inside [low, high].
func convergingPoints(points []Point, low, high float64) []Point {
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if !finite(p.Ratio) || math.Abs(p.Ratio) < negligibleRatio {
			continue
		}
		kept = append(kept, p)
	}

	for i, p := range kept {
		if p.Ratio >= low && p.Ratio <= high {
			return kept[i:]
		}
	}
	return nil
}

// Decide picks the guess from fits in bank order: the last accepted class
// whose asymptote is at least nearZero, else the first accepted class,
// else NotFound. It also returns every accepted class.
func Decide(fits []FitResult, nearZero float64) (guess string, accepted []string) {
	accepted = []string{}
	for _, f := range fits {
		if !f.Accepted {
			continue
		}
		accepted = append(accepted, f.Name)
		if f.A >= nearZero {
			guess = f.Name
		}
	}

	if guess == "" && len(accepted) > 0 {
		guess = accepted[0]
	}
	if guess == "" {
		guess = NotFound
	}
	return guess, accepted
}
