//go:build linux

package proc

import (
	"errors"
	"io/fs"
	"time"

	"github.com/ja7ad/procmon/pkg/system/util"
)

// Usage is one reading of a tracked PID.
type Usage struct {
	RSS        uint64
	CPUPercent float64 // since the previous reading; 100 = one full core

	// Deltas since the previous reading.
	ReadBytes  uint64
	WriteBytes uint64
	// Cumulative counters from /proc/<pid>/io.
	TotalRead  uint64
	TotalWrite uint64
}

// Tracker samples a single PID using only /proc:
//   - CPU: /proc/<pid>/stat (utime+stime jiffies)
//   - IO:  /proc/<pid>/io (read_bytes/write_bytes)
//   - RSS: /proc/<pid>/smaps_rollup|statm
//
// The starttime seen at construction pins the tracker to one process, so a
// recycled PID reads as ErrExited rather than as someone else's usage.
type Tracker struct {
	pid       int
	starttime uint64
	clkTck    int
	now       func() time.Time

	cpuPrev    uint64 // utime+stime (jiffies)
	wallPrev   time.Time
	rbytesPrev uint64
	wbytesPrev uint64
}

// NewTracker seeds a tracker from the current counters of pid.
func NewTracker(pid int) (*Tracker, error) {
	return newTracker(pid, time.Now)
}

func newTracker(pid int, now func() time.Time) (*Tracker, error) {
	st, err := ReadProcStat(pid)
	if err != nil {
		return nil, exitedIfGone(err)
	}
	if st.Zombie() {
		return nil, ErrExited
	}
	t := &Tracker{
		pid:       pid,
		starttime: st.Starttime,
		clkTck:    ClockTicks(),
		now:       now,
		cpuPrev:   st.CPUJiffies(),
		wallPrev:  now(),
	}
	if r, w, err := ReadProcIO(pid); err == nil {
		t.rbytesPrev, t.wbytesPrev = r, w
	}
	return t, nil
}

// PID returns the tracked process id.
func (t *Tracker) PID() int { return t.pid }

// Sample reads the current counters and returns the usage since the previous
// call (or since construction).
func (t *Tracker) Sample() (Usage, error) {
	st, err := ReadProcStat(t.pid)
	if err != nil {
		return Usage{}, exitedIfGone(err)
	}
	if st.Zombie() || st.Starttime != t.starttime {
		return Usage{}, ErrExited
	}

	now := t.now()
	wall := now.Sub(t.wallPrev).Seconds()
	jiffies := st.CPUJiffies()
	cpuSec := float64(util.DeltaU64(jiffies, t.cpuPrev)) / float64(t.clkTck)
	t.cpuPrev, t.wallPrev = jiffies, now

	u := Usage{CPUPercent: util.BusyPercent(cpuSec, wall)}

	// Unreadable io (other users' processes) leaves the counters at zero.
	if rNow, wNow, err := ReadProcIO(t.pid); err == nil {
		u.ReadBytes = util.DeltaU64(rNow, t.rbytesPrev)
		u.WriteBytes = util.DeltaU64(wNow, t.wbytesPrev)
		u.TotalRead, u.TotalWrite = rNow, wNow
		t.rbytesPrev, t.wbytesPrev = rNow, wNow
	}

	rss, err := ReadProcRSS(t.pid)
	if err != nil && !Exists(t.pid) {
		return Usage{}, ErrExited
	}
	u.RSS = rss
	return u, nil
}

func exitedIfGone(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNoStat) {
		return ErrExited
	}
	return err
}
