package executor

import "errors"

var (
	// ErrTimedOut indicates that a call exceeded its budget and was killed.
	ErrTimedOut = errors.New("executor: timed out")

	// ErrChannelFailure indicates that the result channel could not be
	// drained or the child could not be waited on.
	ErrChannelFailure = errors.New("executor: channel failure")

	// ErrUnknownCandidate indicates that no candidate is registered under
	// the requested name.
	ErrUnknownCandidate = errors.New("executor: unknown candidate")

	// ErrCandidateFailed indicates that the child exited abnormally.
	ErrCandidateFailed = errors.New("executor: candidate failed")

	// ErrUnsupported indicates that process isolation is not available on
	// this platform.
	ErrUnsupported = errors.New("executor: process isolation unsupported")
)
