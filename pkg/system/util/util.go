package util

import (
	"context"
	"math"
	"runtime"
	"strconv"

	"github.com/ja7ad/procmon/pkg/types"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// EMA is an exponential moving average. An alpha of 1 passes values through,
// an alpha of 0 holds the first value.
type EMA struct {
	alpha, prev float64
	ok          bool
}

func NewEMA(alpha float64) *EMA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return &EMA{alpha: alpha}
}

func (e *EMA) Next(v float64) float64 {
	if !e.ok {
		e.prev, e.ok = v, true
		return v
	}
	e.prev = e.alpha*v + (1-e.alpha)*e.prev
	return e.prev
}

func DeltaU64(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// counter wrapped or prev unset
	return 0
}

func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}

// BusyPercent turns a CPU-seconds delta measured over wallSec into a percent
// of one core. NaN and negative inputs yield 0.
func BusyPercent(cpuSec, wallSec float64) float64 {
	p := SafeDiv(cpuSec, wallSec) * 100
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	return p
}

// SystemSummary returns host name, kernel, CPU count and total memory for the
// startup banner. Fields that cannot be read are reported as "unknown".
func SystemSummary(ctx context.Context) (hostname, kernel, cpus, memory string) {
	hostname, kernel, memory = "unknown", "unknown", "unknown"
	cpus = strconv.Itoa(runtime.NumCPU())

	if info, err := host.InfoWithContext(ctx); err == nil {
		if info.Hostname != "" {
			hostname = info.Hostname
		}
		if info.KernelVersion != "" {
			kernel = info.KernelVersion
		}
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memory = types.ToBytes(vm.Total).Humanized()
	}
	return hostname, kernel, cpus, memory
}
