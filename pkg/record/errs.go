package record

import "errors"

var (
	// ErrMalformed is returned for lines or file names that do not follow the
	// log format.
	ErrMalformed = errors.New("record: malformed")

	// ErrLockedElsewhere is returned when another process holds the lock of a
	// log file.
	ErrLockedElsewhere = errors.New("record: log file locked elsewhere")
)
