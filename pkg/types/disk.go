package types

import "fmt"

// DiskIO holds the disk counters of one sample. Read and Written are the bytes
// moved since the previous sample of the same process; the totals are the
// cumulative counters reported by the OS.
type DiskIO struct {
	Read         Bytes
	TotalRead    Bytes
	Written      Bytes
	TotalWritten Bytes
}

// String renders the counters as the tuple used in log records.
func (d DiskIO) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", d.Read, d.TotalRead, d.Written, d.TotalWritten)
}
