package complexity

import "errors"

var (
	// ErrInsufficientData indicates that even the finest sampling pass
	// collected fewer than the minimum number of samples.
	ErrInsufficientData = errors.New("complexity: too few samples, increase the total budget")

	// ErrNoRunner indicates that the engine was built without a runner.
	ErrNoRunner = errors.New("complexity: no runner")

	// ErrEmptyBank indicates that the growth bank has no functions.
	ErrEmptyBank = errors.New("complexity: empty growth bank")
)
