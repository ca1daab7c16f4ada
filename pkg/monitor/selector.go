package monitor

import (
	"fmt"

	"github.com/ja7ad/procmon/pkg/snapshot"
)

// Mode is how the orchestrator picks its targets.
type Mode int

const (
	ModeDynamic Mode = iota // follow names typed on the control channel
	ModeFixed               // one named or PID-selected process
	ModeLaunch              // start a program, then monitor it
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeLaunch:
		return "launch"
	default:
		return "dynamic"
	}
}

// Selector is the resolved command line. At most one of Name, PID and Exec
// is set; Args only apply to Exec.
type Selector struct {
	Name string
	PID  int
	Exec string
	Args []string

	// Interest lists names that dynamic mode re-tracks even when they are
	// submitted twice in a row.
	Interest []string
}

func (s Selector) Mode() Mode {
	switch {
	case s.Exec != "":
		return ModeLaunch
	case s.Name != "" || s.PID > 0:
		return ModeFixed
	default:
		return ModeDynamic
	}
}

func (s Selector) Validate() error {
	set := 0
	for _, ok := range []bool{s.Name != "", s.PID != 0, s.Exec != ""} {
		if ok {
			set++
		}
	}
	switch {
	case set > 1:
		return fmt.Errorf("%w: process name, pid and executable are mutually exclusive", ErrSelector)
	case s.PID < 0:
		return fmt.Errorf("%w: pid must be positive", ErrSelector)
	case len(s.Args) > 0 && s.Exec == "":
		return fmt.Errorf("%w: arguments given without an executable", ErrSelector)
	}
	return nil
}

// Identity is the fixed-mode target.
func (s Selector) Identity() snapshot.Identity {
	return snapshot.Identity{Name: s.Name, PID: s.PID}
}

func (s Selector) interestSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Interest))
	for _, n := range s.Interest {
		set[n] = struct{}{}
	}
	return set
}
