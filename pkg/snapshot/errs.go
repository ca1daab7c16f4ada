package snapshot

import "errors"

var (
	// ErrNotFound is returned by Resolve when no live process matches.
	ErrNotFound = errors.New("snapshot: process not found")

	// ErrExited is returned by Handle.Sample once the process is gone.
	ErrExited = errors.New("snapshot: process exited")

	// ErrUnsupported is returned for a backend the platform cannot run.
	ErrUnsupported = errors.New("snapshot: backend not supported on this platform")

	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("snapshot: unknown backend")
)
