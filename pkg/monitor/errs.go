package monitor

import "errors"

var (
	// ErrLogWrite marks a failure to open or append to a session's log. It is
	// fatal: the program exits with ExitLogWrite.
	ErrLogWrite = errors.New("monitor: log write failed")

	// ErrRead is returned by the command reader after repeated read failures.
	ErrRead = errors.New("monitor: control channel read failed")

	// ErrHandshake is reported when a launched child never signals that it
	// started.
	ErrHandshake = errors.New("monitor: launch handshake failed")

	// ErrSelector is returned for contradictory target selections.
	ErrSelector = errors.New("monitor: invalid selector")

	// ErrConfig is returned by Config.Validate.
	ErrConfig = errors.New("monitor: invalid config")
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitLogWrite = 74 // EX_IOERR from sysexits.h
)

// ExitCode maps the error a run ended with to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrLogWrite):
		return ExitLogWrite
	default:
		return ExitFailure
	}
}
