//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100 (common default).
//
// Note: On real systems, the authoritative way is `sysconf(_SC_CLK_TCK)`,
// but calling that requires cgo.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// PageSize returns the system memory page size in bytes.
// Like ClockTicks, it first checks an env override (PAGE_SIZE).
func PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// Exists reports whether a given PID currently exists in /proc.
func Exists(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

// Stat is the subset of /proc/<pid>/stat the tracker needs.
type Stat struct {
	State     byte   // R, S, D, Z, ...
	Minflt    uint64 // minor page faults
	Majflt    uint64 // major page faults
	Utime     uint64 // user CPU jiffies
	Stime     uint64 // system CPU jiffies
	Starttime uint64 // jiffies after boot; identifies the process across PID reuse
}

// CPUJiffies is utime+stime.
func (s Stat) CPUJiffies() uint64 { return s.Utime + s.Stime }

// Zombie reports whether the process has exited but was not reaped yet.
func (s Stat) Zombie() bool { return s.State == 'Z' || s.State == 'X' }

// ReadProcStat parses /proc/<pid>/stat.
//
// comm (2nd field) is in parens and may contain spaces, so everything up to
// the last ") " is skipped. Indexes below are relative to the remaining
// fields: overall field n lives at fields[n-3].
func ReadProcStat(pid int) (Stat, error) {
	b, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return Stat{}, err
	}
	line := strings.TrimSpace(string(b))
	if line == "" {
		return Stat{}, ErrNoStat
	}

	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return Stat{}, ErrNoStat
	}
	fields := strings.Fields(line[i+2:])
	if len(fields) < 20 {
		return Stat{}, ErrShortStat
	}

	get := func(idx int) uint64 {
		v, _ := strconv.ParseUint(fields[idx], 10, 64)
		return v
	}

	return Stat{
		State:     fields[0][0],
		Minflt:    get(7),
		Majflt:    get(9),
		Utime:     get(11),
		Stime:     get(12),
		Starttime: get(19),
	}, nil
}

// ReadProcIO reads /proc/<pid>/io and returns read_bytes and write_bytes.
// These counters are monotonic and in bytes.
//
// Note: the file is only readable for processes of the same user (or with
// CAP_SYS_PTRACE); kernel threads may not expose it at all.
func ReadProcIO(pid int) (readBytes, writeBytes uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/io", pid))
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "read_bytes:") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "read_bytes:"))
			readBytes, _ = strconv.ParseUint(v, 10, 64)
		} else if strings.HasPrefix(line, "write_bytes:") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "write_bytes:"))
			writeBytes, _ = strconv.ParseUint(v, 10, 64)
		}
	}
	return readBytes, writeBytes, sc.Err()
}

// ReadProcRSS returns the Resident Set Size (RSS) in bytes for a PID.
// It prefers smaps_rollup (aggregated, since kernel 4.14) and falls back to
// statm's resident page count.
func ReadProcRSS(pid int) (uint64, error) {
	if f, err := os.Open(fmt.Sprintf("/proc/%d/smaps_rollup", pid)); err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "Rss:") {
				fs := strings.Fields(sc.Text())
				if len(fs) >= 2 {
					kb, _ := strconv.ParseUint(fs[1], 10, 64)
					return kb * 1024, nil
				}
			}
		}
	}
	if b, err := os.ReadFile(fmt.Sprintf("/proc/%d/statm", pid)); err == nil {
		fs := strings.Fields(string(b))
		if len(fs) >= 2 {
			pages, _ := strconv.ParseUint(fs[1], 10, 64)
			return pages * uint64(PageSize()), nil
		}
	}
	return 0, ErrNoRSS
}

// ReadProcComm returns the process name from /proc/<pid>/comm. The kernel
// truncates it to 15 bytes.
func ReadProcComm(pid int) (string, error) {
	b, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// ListPIDs returns the numeric entries of /proc in directory order.
func ListPIDs() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if pid, err := strconv.Atoi(e.Name()); err == nil && pid > 0 {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// FindByName returns the first PID whose comm equals name. Processes that
// vanish during the scan are skipped. The order follows ListPIDs and is not
// a contract: with several matches any of them may be returned.
func FindByName(name string) (int, error) {
	pids, err := ListPIDs()
	if err != nil {
		return 0, err
	}
	for _, pid := range pids {
		comm, err := ReadProcComm(pid)
		if err != nil {
			continue
		}
		if comm == name {
			return pid, nil
		}
	}
	return 0, ErrNoMatch
}
