package monitor

import (
	"fmt"
	"time"

	"github.com/ja7ad/procmon/pkg/snapshot"
)

// Config holds the tunables of a monitoring run.
type Config struct {
	Interval time.Duration // between two samples of a session
	Slice    time.Duration // granularity of the interruptible sleep
	Poll     time.Duration // how often dynamic mode looks at the target name

	LogDir  string  // where log_pid_*_name_*.txt files go
	Backend string  // snapshot backend
	EMA     float64 // CPU smoothing factor in [0,1]; 0 disables

	MaxReadFailures int // consecutive control channel errors tolerated
}

// DefaultConfig returns the values procmon runs with unless told otherwise.
func DefaultConfig() Config {
	return Config{
		Interval:        50 * time.Millisecond,
		Slice:           5 * time.Millisecond,
		Poll:            50 * time.Millisecond,
		LogDir:          ".",
		Backend:         snapshot.BackendGopsutil,
		EMA:             0,
		MaxReadFailures: 10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be > 0", ErrConfig)
	case c.Slice <= 0:
		return fmt.Errorf("%w: slice must be > 0", ErrConfig)
	case c.Slice > c.Interval:
		return fmt.Errorf("%w: slice %s exceeds interval %s", ErrConfig, c.Slice, c.Interval)
	case c.Poll <= 0:
		return fmt.Errorf("%w: poll must be > 0", ErrConfig)
	case c.EMA < 0 || c.EMA > 1:
		return fmt.Errorf("%w: ema must be in [0,1]", ErrConfig)
	case c.MaxReadFailures <= 0:
		return fmt.Errorf("%w: max read failures must be > 0", ErrConfig)
	}
	return nil
}
