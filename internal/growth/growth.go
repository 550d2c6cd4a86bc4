// Package growth holds the reference cost models used as complexity
// hypotheses.
package growth

import (
	"fmt"
	"math"
)

// IntMax is the overflow scale shared by the saturating functions.
const IntMax = math.MaxInt32

var (
	quadraticLimit   = math.Pow(IntMax, 0.5)
	cubicLimit       = math.Pow(IntMax, 0.332)
	exp15Limit       = math.Log(IntMax) / math.Log(1.51)
	exp2Limit        = math.Log(IntMax) / math.Log(2.01)
	superExpMaxN     = 8
	superExpDivideAt = 4
)

// Evaluator returns the reference cost of size n inside the sampling
// window [start, end). It may return +Inf once n is past a safe limit.
type Evaluator func(n, start, end int) float64

// Function is a named growth model.
type Function struct {
	Name     string
	Evaluate Evaluator
}

// Bank is an ordered set of growth functions. Order is tie-break priority.
type Bank []Function

// Names returns the function names in bank order.
func (b Bank) Names() []string {
	names := make([]string, len(b))
	for i, f := range b {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of name in the bank, or -1.
func (b Bank) Index(name string) int {
	for i, f := range b {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Default returns the ten-class bank, loosest to tightest.
func Default() Bank {
	return Bank{
		{Name: "O(1)", Evaluate: constant},
		{Name: "O(log n)", Evaluate: logarithmic},
		{Name: "O(sqrt(n))", Evaluate: squareRoot},
		{Name: "O(n)", Evaluate: linear},
		{Name: "O(n log n)", Evaluate: linearithmic},
		{Name: "O(n^2)", Evaluate: quadratic},
		{Name: "O(n^3)", Evaluate: cubic},
		{Name: "O(1.5^n)", Evaluate: exponential15},
		{Name: "O(2^n)", Evaluate: exponential2},
		{Name: "O(n^n)", Evaluate: superExponential},
	}
}

// Select returns the default bank restricted to names, keeping bank order.
// An empty selection returns the whole bank.
func Select(names []string) (Bank, error) {
	all := Default()
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(names))
	for _, name := range names {
		if all.Index(name) < 0 {
			return nil, fmt.Errorf("unknown growth function: %s", name)
		}
		want[name] = true
	}

	bank := make(Bank, 0, len(want))
	for _, f := range all {
		if want[f.Name] {
			bank = append(bank, f)
		}
	}
	return bank, nil
}

func constant(n, start, end int) float64 {
	return 1
}

func logarithmic(n, start, end int) float64 {
	return math.Log(float64(n))
}

func squareRoot(n, start, end int) float64 {
	return math.Sqrt(float64(n))
}

func linear(n, start, end int) float64 {
	return float64(n)
}

func linearithmic(n, start, end int) float64 {
	if n == 1 {
		return 1
	}
	x := float64(n)
	return x * math.Log(x)
}

func quadratic(n, start, end int) float64 {
	x := float64(n)
	if x > quadraticLimit {
		return math.Inf(1)
	}
	return x * x
}

func cubic(n, start, end int) float64 {
	x := float64(n)
	if x > cubicLimit {
		return math.Inf(1)
	}
	return x * x * x
}

func exponential15(n, start, end int) float64 {
	if float64(n) > exp15Limit {
		return math.Inf(1)
	}
	return math.Pow(1.5, float64(n))
}

func exponential2(n, start, end int) float64 {
	if float64(n) > exp2Limit {
		return math.Inf(1)
	}
	return math.Pow(2, float64(n))
}

// superExponential scales n by the window start once the window is far
// from the origin, so n^n stays representable for a few steps.
func superExponential(n, start, end int) float64 {
	if start > superExpDivideAt {
		n /= start
	}
	if n > superExpMaxN {
		return math.Inf(1)
	}
	s := float64(start)
	return math.Pow(float64(n), float64(n)) / math.Pow(s, s)
}
