//go:build linux || darwin

package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultPollInterval is how often the parent checks on a running child.
const DefaultPollInterval = 100 * time.Microsecond

// Process runs each call in a fresh child process.
type Process struct {
	path   string
	args   []string
	poll   time.Duration
	logger *slog.Logger
}

// Option configures a Process.
type Option func(*Process)

// WithPollInterval sets the child polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.poll = d
		}
	}
}

// WithExecutable overrides the binary that is re-executed. The binary
// must call ServeChild and register the same candidates.
func WithExecutable(path string, args ...string) Option {
	return func(p *Process) {
		p.path = path
		p.args = args
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

// NewProcess creates a runner that re-executes the current binary.
func NewProcess(opts ...Option) (*Process, error) {
	p := &Process{
		poll:   DefaultPollInterval,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolving executable: %w", err)
		}
		p.path = exe
	}
	return p, nil
}

// Run executes c(n) in a child and kills it once budget has elapsed or
// ctx is done.
func (p *Process) Run(ctx context.Context, c Candidate, n int, budget time.Duration) (Measurement, error) {
	if _, ok := lookupFunc(c.Name); !ok {
		return Measurement{N: n}, fmt.Errorf("%w: %s", ErrUnknownCandidate, c.Name)
	}
	if budget <= 0 {
		return Measurement{N: n}, ErrTimedOut
	}

	r, w, err := os.Pipe()
	if err != nil {
		return Measurement{N: n}, fmt.Errorf("%w: pipe: %v", ErrChannelFailure, err)
	}
	defer r.Close()

	cmd := exec.Command(p.path, p.args...)
	cmd.Env = append(os.Environ(),
		envCandidate+"="+c.Name,
		envSize+"="+strconv.Itoa(n),
	)
	cmd.ExtraFiles = []*os.File{w}
	cmd.Stderr = os.Stderr

	began := time.Now()
	if err := cmd.Start(); err != nil {
		w.Close()
		return Measurement{N: n}, fmt.Errorf("%w: start: %v", ErrChannelFailure, err)
	}
	// the child holds its own copy; EOF must only depend on the child
	w.Close()

	pid := cmd.Process.Pid
	status, waitErr := p.wait(ctx, pid, began, budget)
	_ = cmd.Process.Release()
	elapsed := time.Since(began)

	if waitErr != nil {
		if errors.Is(waitErr, ErrTimedOut) {
			p.logger.Debug("candidate killed",
				"candidate", c.Name,
				"n", n,
				"budget", budget,
				"elapsed", elapsed,
			)
		}
		return Measurement{N: n, Elapsed: elapsed}, waitErr
	}

	if err := exitError(c.Name, status); err != nil {
		return Measurement{N: n, Elapsed: elapsed}, err
	}

	buf := make([]byte, resultSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Measurement{N: n, Elapsed: elapsed}, fmt.Errorf("%w: reading result: %v", ErrChannelFailure, err)
	}

	start, end := decodeResult(buf)
	return measured(n, start, end, elapsed), nil
}

// wait polls the child without blocking until it exits, the budget runs
// out, or ctx is done. The child is always reaped before returning.
func (p *Process) wait(ctx context.Context, pid int, began time.Time, budget time.Duration) (unix.WaitStatus, error) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	var status unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			p.kill(pid)
			return status, fmt.Errorf("%w: wait4: %v", ErrChannelFailure, err)
		}
		if wpid == pid {
			return status, nil
		}

		if time.Since(began) > budget {
			p.kill(pid)
			return status, ErrTimedOut
		}

		select {
		case <-ctx.Done():
			p.kill(pid)
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

// kill sends SIGKILL and reaps the child.
func (p *Process) kill(pid int) {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		p.logger.Warn("failed to kill child", "pid", pid, "error", err)
	}

	var status unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &status, 0, nil)
		if err != unix.EINTR {
			return
		}
	}
}

func exitError(name string, status unix.WaitStatus) error {
	switch {
	case status.Exited() && status.ExitStatus() == 0:
		return nil
	case status.Exited() && status.ExitStatus() == exitUnknownCandidate:
		return fmt.Errorf("%w: %s (child)", ErrUnknownCandidate, name)
	case status.Exited() && status.ExitStatus() == exitChannelFailure:
		return fmt.Errorf("%w: child could not write result", ErrChannelFailure)
	case status.Exited():
		return fmt.Errorf("%w: %s exited with status %d", ErrCandidateFailed, name, status.ExitStatus())
	case status.Signaled():
		return fmt.Errorf("%w: %s killed by %v", ErrCandidateFailed, name, status.Signal())
	default:
		return fmt.Errorf("%w: %s stopped unexpectedly", ErrCandidateFailed, name)
	}
}
