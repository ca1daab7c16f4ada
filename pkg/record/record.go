// Package record formats, writes and reads back the per-sample log lines:
//
//	Time: 2240, Cpu usage: 0, memory usage: 119.546875 MB, disk util (0, 26071040, 0, 323584)
//
// Files are named log_pid_<pid>_name_<name>.txt and only ever appended to.
package record

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ja7ad/procmon/pkg/types"
)

// Record is one sample as it appears in a log file.
type Record struct {
	Elapsed time.Duration // since the session started; logged in ms
	CPU     float32       // percent
	Memory  types.Bytes
	Disk    types.DiskIO
}

// String renders the log line without the trailing newline.
func (r Record) String() string {
	return fmt.Sprintf("Time: %d, Cpu usage: %s, memory usage: %s MB, disk util %s",
		r.Elapsed.Milliseconds(), formatFloat(r.CPU), formatFloat(r.Memory.MB()), r.Disk)
}

// formatFloat prints the shortest representation that round-trips a float32.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

var lineRe = regexp.MustCompile(
	`^Time: (\d+), Cpu usage: ([-+0-9.eE]+|NaN|[-+]?Inf), memory usage: ([-+0-9.eE]+) MB, disk util \((\d+), (\d+), (\d+), (\d+)\)$`)

// Parse reads back a line produced by Record.String. Memory comes back with
// megabyte precision at float32 resolution.
func Parse(line string) (Record, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: time: %v", ErrMalformed, err)
	}
	cpu, err := strconv.ParseFloat(m[2], 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: cpu: %v", ErrMalformed, err)
	}
	mb, err := strconv.ParseFloat(m[3], 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: memory: %v", ErrMalformed, err)
	}

	var disk [4]uint64
	for i := range disk {
		disk[i], err = strconv.ParseUint(m[4+i], 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: disk: %v", ErrMalformed, err)
		}
	}

	return Record{
		Elapsed: time.Duration(ms) * time.Millisecond,
		CPU:     float32(cpu),
		Memory:  types.FromMB(mb),
		Disk: types.DiskIO{
			Read:         types.ToBytes(disk[0]),
			TotalRead:    types.ToBytes(disk[1]),
			Written:      types.ToBytes(disk[2]),
			TotalWritten: types.ToBytes(disk[3]),
		},
	}, nil
}
