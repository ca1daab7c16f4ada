package proc

import "errors"

var (
	// ErrNoStat indicates that /proc/<pid>/stat was empty or malformed.
	ErrNoStat = errors.New("proc: malformed or empty stat")

	// ErrNoRSS indicates that resident set size could not be determined
	// (neither smaps_rollup nor statm succeeded).
	ErrNoRSS = errors.New("proc: no rss")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("proc: short stat")

	// ErrNoMatch indicates that no live process has the requested comm name.
	ErrNoMatch = errors.New("proc: no matching process")

	// ErrExited indicates that a tracked PID is gone, became a zombie or was
	// reused by another process.
	ErrExited = errors.New("proc: process exited")
)
