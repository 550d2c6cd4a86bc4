//go:build !(linux || darwin)

package executor

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the parent checks on a running child.
const DefaultPollInterval = 100 * time.Microsecond

// Process is unavailable on this platform.
type Process struct{}

// Option configures a Process.
type Option func(*Process)

// WithPollInterval is a no-op on this platform.
func WithPollInterval(time.Duration) Option { return func(*Process) {} }

// WithExecutable is a no-op on this platform.
func WithExecutable(string, ...string) Option { return func(*Process) {} }

// WithLogger is a no-op on this platform.
func WithLogger(*slog.Logger) Option { return func(*Process) {} }

// NewProcess reports ErrUnsupported; use InProcess instead.
func NewProcess(...Option) (*Process, error) {
	return nil, ErrUnsupported
}

// Run reports ErrUnsupported.
func (*Process) Run(_ context.Context, _ Candidate, n int, _ time.Duration) (Measurement, error) {
	return Measurement{N: n}, ErrUnsupported
}

// ServeChild is a no-op on this platform.
func ServeChild() {}
