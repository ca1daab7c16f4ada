package types

import (
	"fmt"
	"strconv"
)

// Bytes is a uint64 wrapper representing a size in bytes.
type Bytes uint64

// ToBytes converts a raw counter into Bytes.
func ToBytes(v uint64) Bytes { return Bytes(v) }

// Uint64 returns the raw counter.
func (b Bytes) Uint64() uint64 { return uint64(b) }

// String renders the plain decimal count, as it appears in log records.
func (b Bytes) String() string { return strconv.FormatUint(uint64(b), 10) }

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB).
func (b Bytes) Humanized() string {
	v := float64(b)
	switch {
	case b >= 1<<40:
		return fmt.Sprintf("%.2f TB", v/(1<<40))
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", v/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MB", v/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.2f KB", v/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// MB returns the number of megabytes (1024 base) at float32 precision, the
// unit memory is logged in.
func (b Bytes) MB() float32 { return float32(b) / 1024 / 1024 }

// FromMB converts a logged megabyte figure back into bytes, rounding down.
func FromMB(mb float64) Bytes {
	if mb <= 0 {
		return 0
	}
	return Bytes(mb * 1024 * 1024)
}
