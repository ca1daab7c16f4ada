//go:build linux

package launch

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr makes the child receive SIGTERM when procmon dies, so a
// monitored program never outlives its monitor.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}
}
