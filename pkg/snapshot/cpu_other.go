//go:build !windows

package snapshot

// CPUScale is 1: the raw unit is already percent of one core.
const CPUScale = 1
