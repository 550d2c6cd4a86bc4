package complexity

import (
	"math"

	"github.com/haskel/bigo/internal/growth"
)

// BuildRatios divides every sample by each growth function of bank and
// normalizes each series by its first finite non-zero ratio. Values that
// are not finite become zero. All series share the sample sizes.
func BuildRatios(bank growth.Bank, samples []Sample, iv Interval) []RatioSeries {
	series := make([]RatioSeries, len(bank))
	for i, f := range bank {
		raw := make([]float64, len(samples))
		norm := 1.0
		found := false
		for j, s := range samples {
			raw[j] = float64(s.Units) / f.Evaluate(s.N, iv.Start, iv.End)
			if !found && raw[j] != 0 && finite(raw[j]) {
				norm = raw[j]
				found = true
			}
		}

		points := make([]Point, len(samples))
		for j, s := range samples {
			points[j] = Point{N: s.N, Ratio: sanitize(raw[j] / norm)}
		}
		series[i] = RatioSeries{Name: f.Name, Norm: norm, Points: points}
	}
	return series
}

// Differences returns, per series, the change between consecutive ratios
// divided by step and normalized by the first finite non-zero magnitude.
func Differences(series []RatioSeries, step int) []RatioSeries {
	if step < 1 {
		step = 1
	}

	diffs := make([]RatioSeries, len(series))
	for i, s := range series {
		if len(s.Points) < 2 {
			diffs[i] = RatioSeries{Name: s.Name, Norm: 1}
			continue
		}

		raw := make([]float64, len(s.Points)-1)
		norm := 1.0
		found := false
		for j := 1; j < len(s.Points); j++ {
			raw[j-1] = (s.Points[j].Ratio - s.Points[j-1].Ratio) / float64(step)
			if mag := math.Abs(raw[j-1]); !found && mag != 0 && finite(mag) {
				norm = mag
				found = true
			}
		}

		points := make([]Point, len(raw))
		for j, d := range raw {
			points[j] = Point{N: s.Points[j+1].N, Ratio: sanitize(d / norm)}
		}
		diffs[i] = RatioSeries{Name: s.Name, Norm: norm, Points: points}
	}
	return diffs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sanitize(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}
