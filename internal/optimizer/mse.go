package optimizer

import "math"

// Model is a parametric curve y = f(x; params).
type Model[T Float] func(x T, params []T) T

// MSE returns the mean-squared-error objective of model over the points
// (xs[i], ys[i]). Terms that are not finite are skipped; when no term
// remains the objective is +Inf.
func MSE[T Float](model Model[T], xs, ys []T) Objective[T] {
	n := min(len(xs), len(ys))
	return func(params []T) T {
		var sum float64
		count := 0
		for i := 0; i < n; i++ {
			d := float64(ys[i] - model(xs[i], params))
			term := d * d
			if math.IsNaN(term) || math.IsInf(term, 0) {
				continue
			}
			sum += term
			count++
		}
		if count == 0 {
			return T(math.Inf(1))
		}
		return T(sum / float64(count))
	}
}
