//go:build linux

package cgroup

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type Version int

const (
	Unsupported Version = iota // no cgroup mounts
	V1                         // legacy multi-hierarchy cgroup v1
	V2                         // unified cgroup v2
	Hybrid                     // both v1 and v2 present
)

func (v Version) String() string {
	switch v {
	case V1:
		return "cgroup v1"
	case V2:
		return "cgroup v2"
	case Hybrid:
		return "cgroup hybrid"
	default:
		return "unsupported"
	}
}

// Detect returns the detected cgroup version and a human-readable detail string.
//
// It parses /proc/self/mountinfo looking for cgroup filesystems.
// The line format has a " - fstype " separator; we only care about fstype.
func Detect() (Version, string, error) {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return Unsupported, "", fmt.Errorf("open mountinfo: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var (
		v1Pts []string
		v2Pts []string
		sc    = bufio.NewScanner(f)
	)
	for sc.Scan() {
		fstype, mountPoint, ok := parseMountInfo(sc.Text())
		if !ok {
			continue
		}
		switch fstype {
		case "cgroup2":
			v2Pts = append(v2Pts, mountPoint)
		case "cgroup":
			v1Pts = append(v1Pts, mountPoint)
		}
	}
	if err := sc.Err(); err != nil {
		return Unsupported, "", fmt.Errorf("scan mountinfo: %w", err)
	}

	hasV1, hasV2 := len(v1Pts) > 0, len(v2Pts) > 0
	switch {
	case hasV1 && hasV2:
		return Hybrid, fmt.Sprintf("cgroup2 on %v; cgroup v1 on %v",
			strings.Join(v2Pts, ","), strings.Join(v1Pts, ",")), nil
	case hasV2:
		return V2, fmt.Sprintf("cgroup2 on %v", strings.Join(v2Pts, ",")), nil
	case hasV1:
		return V1, fmt.Sprintf("cgroup v1 on %v", strings.Join(v1Pts, ",")), nil
	default:
		return Unsupported, "no cgroup mounts found", nil
	}
}

// parseMountInfo extracts fstype and mount point from one mountinfo line:
// <id> <parent> <maj:min> <root> <mountpoint> <opts>... - <fstype> <source> <superopts>
func parseMountInfo(line string) (fstype, mountPoint string, ok bool) {
	const sep = " - "
	i := strings.LastIndex(line, sep)
	if i < 0 {
		return "", "", false
	}
	tail := strings.Fields(line[i+len(sep):])
	pre := strings.Fields(line[:i])
	if len(tail) < 1 || len(pre) < 5 {
		return "", "", false
	}
	return tail[0], pre[4], true
}

// ProcessPath returns the cgroup a process belongs to, as listed in
// /proc/<pid>/cgroup. The unified (v2) entry "0::<path>" wins; on pure v1
// hosts the first hierarchy with a non-root path is used.
func ProcessPath(pid int) (string, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	return parseProcCgroup(bufio.NewScanner(f))
}

func parseProcCgroup(sc *bufio.Scanner) (string, error) {
	var fallback string
	for sc.Scan() {
		// hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(sc.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] == "0" && parts[1] == "" {
			return parts[2], nil
		}
		if fallback == "" && parts[2] != "/" {
			fallback = parts[2]
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if fallback == "" {
		return "/", nil
	}
	return fallback, nil
}
