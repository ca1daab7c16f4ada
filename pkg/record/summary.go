package record

import (
	"time"

	"github.com/ja7ad/procmon/pkg/types"
)

// Summary condenses the records of one log file.
type Summary struct {
	Samples  int
	Duration time.Duration // elapsed time of the last record

	CPUAvg float64
	CPUMax float32

	MemAvg types.Bytes
	MemMax types.Bytes

	// Cumulative counters from the last record.
	TotalRead    types.Bytes
	TotalWritten types.Bytes
}

// Summarize computes a Summary. Records from several sessions appended to the
// same file are treated as one series.
func Summarize(recs []Record) Summary {
	var s Summary
	if len(recs) == 0 {
		return s
	}

	var cpuSum, memSum float64
	for _, r := range recs {
		cpuSum += float64(r.CPU)
		memSum += float64(r.Memory)
		s.CPUMax = max(s.CPUMax, r.CPU)
		s.MemMax = max(s.MemMax, r.Memory)
		s.Duration = max(s.Duration, r.Elapsed)
	}

	last := recs[len(recs)-1]
	n := float64(len(recs))
	s.Samples = len(recs)
	s.CPUAvg = cpuSum / n
	s.MemAvg = types.Bytes(memSum / n)
	s.TotalRead = last.Disk.TotalRead
	s.TotalWritten = last.Disk.TotalWritten
	return s
}
