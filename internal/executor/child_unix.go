//go:build linux || darwin

package executor

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const (
	envCandidate = "BIGO_CHILD_CANDIDATE"
	envSize      = "BIGO_CHILD_N"

	// resultFD is the first entry of exec.Cmd.ExtraFiles in the child.
	resultFD   = 3
	resultSize = 16

	exitBadArgs          = 2
	exitUnknownCandidate = 3
	exitChannelFailure   = 4
)

// ServeChild runs the requested candidate and exits when the process was
// started as a measurement child. Otherwise it returns immediately.
func ServeChild() {
	name := os.Getenv(envCandidate)
	if name == "" {
		return
	}
	os.Exit(serveChild(name, os.Getenv(envSize)))
}

func serveChild(name, size string) int {
	fn, ok := lookupFunc(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "bigo child: unknown candidate %q\n", name)
		return exitUnknownCandidate
	}

	n, err := strconv.Atoi(size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bigo child: invalid size %q\n", size)
		return exitBadArgs
	}

	out := os.NewFile(resultFD, "result")
	if out == nil {
		return exitChannelFailure
	}
	defer out.Close()

	start := monotonic()
	fn(n)
	end := monotonic()

	var buf [resultSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(start))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(end))
	if _, err := out.Write(buf[:]); err != nil {
		fmt.Fprintf(os.Stderr, "bigo child: write result: %v\n", err)
		return exitChannelFailure
	}
	return 0
}

func monotonic() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}

func decodeResult(buf []byte) (start, end int64) {
	start = int64(binary.LittleEndian.Uint64(buf[0:8]))
	end = int64(binary.LittleEndian.Uint64(buf[8:16]))
	return start, end
}
