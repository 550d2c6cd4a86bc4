package complexity

import "time"

// NotFound is the guess reported when no growth class converges.
const NotFound = "NOT FOUND"

// Sample is one successful measurement.
type Sample struct {
	N        int           `json:"n"`
	Duration time.Duration `json:"duration"`
	// Units is Duration counted in the configured resolution, at least 1.
	Units int64 `json:"units"`
}

// Point is one normalized ratio.
type Point struct {
	N     int     `json:"n"`
	Ratio float64 `json:"ratio"`
}

// RatioSeries is the ratio of measured cost to one growth function.
type RatioSeries struct {
	Name string `json:"name"`
	// Norm is the raw ratio every point was divided by.
	Norm   float64 `json:"norm"`
	Points []Point `json:"points"`
}

// FitResult is the convergence fit of one ratio series.
type FitResult struct {
	Name string `json:"name"`
	// InitialA and InitialB are the optimizer seed.
	InitialA float64 `json:"initial_a"`
	InitialB float64 `json:"initial_b"`
	// A is the fitted asymptote, B the fitted spread shape.
	A float64 `json:"a"`
	B float64 `json:"b"`
	// Error is the residual MSE; +Inf when too few points remained.
	Error    float64 `json:"error"`
	Points   int     `json:"points"`
	Accepted bool    `json:"accepted"`
}

// Result is the record of one complexity computation.
type Result struct {
	Label     string `json:"label"`
	Candidate string `json:"candidate"`
	Expected  string `json:"expected,omitempty"`

	Guess    string   `json:"guess"`
	Accepted []string `json:"accepted"`
	Passed   bool     `json:"passed"`

	// Probed is the interval found by probing, Interval the one sampled.
	Probed    Interval `json:"probed"`
	Interval  Interval `json:"interval"`
	Restarted bool     `json:"restarted"`

	Samples []Sample      `json:"samples"`
	Ratios  []RatioSeries `json:"ratios"`
	Fits    []FitResult   `json:"fits"`

	// Spent is the budget consumed by the final sampling pass.
	Spent time.Duration `json:"spent"`
	// Elapsed is the wall time of the whole computation.
	Elapsed    time.Duration `json:"elapsed"`
	Resolution time.Duration `json:"resolution"`

	// Failure holds the fatal error message of an aborted run.
	Failure string `json:"failure,omitempty"`
}

// Fit returns the fit for the named class.
func (r *Result) Fit(name string) (FitResult, bool) {
	for _, f := range r.Fits {
		if f.Name == name {
			return f, true
		}
	}
	return FitResult{}, false
}
