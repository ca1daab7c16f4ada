// Package proc reads per-process counters straight from /proc on Linux. It
// backs the "procfs" snapshot backend and needs no privileges beyond what
// /proc grants the calling user.
//
// # Readers
//
//   - ReadProcStat: state, utime, stime, fault counters and starttime from
//     /proc/<pid>/stat.
//   - ReadProcIO: read_bytes/write_bytes from /proc/<pid>/io. Only readable
//     for processes of the same user.
//   - ReadProcRSS: resident set size from smaps_rollup, falling back to statm.
//   - ReadProcComm, ListPIDs, FindByName: name lookups over the process table.
//
// # Tracker
//
// Tracker pins one PID (by its starttime) and turns the monotonic counters
// into per-interval figures:
//
//	CPUPercent = Δ(utime+stime) / CLK_TCK / Δwall * 100
//	ReadBytes  = Δ read_bytes
//	WriteBytes = Δ write_bytes
//
// A PID that disappears, turns into a zombie or gets reused reads as
// ErrExited.
//
// # Testing
//
// Tests read the test binary's own /proc entries and skip when a file is not
// exposed by the running kernel. CLK_TCK and PAGE_SIZE can be overridden
// through the environment.
package proc
