// Package optimizer implements a finite-difference gradient descent with
// Barzilai-Borwein step sizes.
package optimizer

import (
	"fmt"
	"math"
)

// Float is the set of supported floating-point representations.
type Float interface {
	~float32 | ~float64
}

// Objective maps a parameter vector to a scalar cost.
type Objective[T Float] func(x []T) T

const (
	// DefaultDelta is the finite-difference perturbation.
	DefaultDelta = 1e-5
	// BootstrapRate is the learning rate of the first iteration.
	BootstrapRate = 0.1
	// FallbackRate is used when the Barzilai-Borwein step is undefined.
	FallbackRate = 1e-4
)

// Optimizer minimizes (or maximizes) an objective over a fixed-size vector.
// It is not safe for concurrent use; give each fit its own Optimizer.
type Optimizer[T Float] struct {
	objective  Objective[T]
	dim        int
	iterations int
	delta      T
	maximize   bool
	initial    []T

	guess     []T
	prevGuess []T
	grad      []T
	prevGrad  []T
	rate      T
	iteration int
}

// New creates an optimizer for objective over dim parameters running the
// given number of iterations. The initial guess is the zero vector.
func New[T Float](objective Objective[T], dim, iterations int) *Optimizer[T] {
	if dim < 1 {
		dim = 1
	}
	if iterations < 1 {
		iterations = 1
	}
	return &Optimizer[T]{
		objective:  objective,
		dim:        dim,
		iterations: iterations,
		delta:      T(DefaultDelta),
		initial:    make([]T, dim),
	}
}

// SetGuess sets the starting point used by the next Run.
func (o *Optimizer[T]) SetGuess(guess []T) error {
	if len(guess) != o.dim {
		return fmt.Errorf("guess has %d parameters, want %d", len(guess), o.dim)
	}
	copy(o.initial, guess)
	return nil
}

// SetDelta changes the finite-difference perturbation. Non-positive values
// are ignored.
func (o *Optimizer[T]) SetDelta(delta T) {
	if delta > 0 {
		o.delta = delta
	}
}

// SetMaximize switches between minimizing and maximizing.
func (o *Optimizer[T]) SetMaximize(maximize bool) {
	o.maximize = maximize
}

// Guess returns a copy of the current guess.
func (o *Optimizer[T]) Guess() []T {
	if o.guess == nil {
		return append([]T(nil), o.initial...)
	}
	return append([]T(nil), o.guess...)
}

// Iterations returns the number of iterations completed by the last Run.
func (o *Optimizer[T]) Iterations() int {
	return o.iteration
}

// Rate returns the learning rate used by the last iteration.
func (o *Optimizer[T]) Rate() T {
	return o.rate
}

// Run resets the state to the initial guess and performs all iterations.
// It returns a copy of the final guess.
func (o *Optimizer[T]) Run() []T {
	o.reset()

	for o.iteration = 0; o.iteration < o.iterations; o.iteration++ {
		o.prevGrad, o.grad = o.grad, o.prevGrad
		o.gradient()

		if o.iteration == 0 {
			o.rate = T(BootstrapRate)
		} else {
			o.rate = o.step()
		}

		copy(o.prevGuess, o.guess)
		for i := range o.guess {
			if o.maximize {
				o.guess[i] += o.rate * o.grad[i]
			} else {
				o.guess[i] -= o.rate * o.grad[i]
			}
			o.guess[i] = sanitize(o.guess[i])
		}
	}

	return o.Guess()
}

func (o *Optimizer[T]) reset() {
	o.guess = append(o.guess[:0], o.initial...)
	o.prevGuess = make([]T, o.dim)
	o.grad = make([]T, o.dim)
	o.prevGrad = make([]T, o.dim)
	o.rate = 0
	o.iteration = 0
}

// gradient fills o.grad with forward differences around o.guess.
func (o *Optimizer[T]) gradient() {
	base := sanitize(o.objective(o.guess))
	probe := make([]T, o.dim)
	copy(probe, o.guess)

	for i := range probe {
		saved := probe[i]
		probe[i] = saved + o.delta
		shifted := sanitize(o.objective(probe))
		probe[i] = saved
		o.grad[i] = sanitize((shifted - base) / o.delta)
	}
}

// step computes the Barzilai-Borwein learning rate
// sqrt(sum(((x-px)*(g-pg))^2)) / sum((g-pg)^2).
func (o *Optimizer[T]) step() T {
	var num, den float64
	for i := range o.guess {
		dx := float64(o.guess[i] - o.prevGuess[i])
		dg := float64(o.grad[i] - o.prevGrad[i])
		num += (dx * dg) * (dx * dg)
		den += dg * dg
	}
	if den == 0 {
		return T(FallbackRate)
	}
	rate := math.Sqrt(num) / den
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return T(FallbackRate)
	}
	return T(rate)
}

func sanitize[T Float](v T) T {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return v
}
