package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"slices"
	"time"

	"github.com/ja7ad/procmon/pkg/system/util"
	"github.com/ja7ad/procmon/pkg/types"
	"github.com/shirou/gopsutil/v4/process"
)

// Gopsutil is the cross-platform Provider built on gopsutil's process package.
type Gopsutil struct {
	now func() time.Time
}

var _ Provider = (*Gopsutil)(nil)

// NewGopsutil creates a gopsutil backed Provider.
func NewGopsutil() *Gopsutil {
	return &Gopsutil{now: time.Now}
}

// Resolve opens id.PID when set, otherwise scans the process table for the
// first process whose name equals id.Name.
func (g *Gopsutil) Resolve(ctx context.Context, id Identity) (Handle, error) {
	var p *process.Process

	if id.PID > 0 {
		if id.PID > math.MaxInt32 {
			return nil, ErrNotFound
		}
		var err error
		p, err = process.NewProcessWithContext(ctx, int32(id.PID)) // #nosec G115 -- range checked above
		if err != nil {
			if gone(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("snapshot: open pid %d: %w", id.PID, err)
		}
	} else {
		procs, err := process.ProcessesWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot: list processes: %w", err)
		}
		for _, c := range procs {
			// processes can vanish mid-scan
			name, err := c.NameWithContext(ctx)
			if err != nil {
				continue
			}
			if name == id.Name {
				p = c
				break
			}
		}
		if p == nil {
			return nil, ErrNotFound
		}
	}

	// cached by gopsutil; IsRunning compares against it later
	if _, err := p.CreateTimeWithContext(ctx); err != nil && gone(err) {
		return nil, ErrNotFound
	}

	name, err := p.NameWithContext(ctx)
	if err != nil || name == "" {
		name = id.Name
	}

	h := &gopsutilHandle{p: p, name: name, now: g.now, wallPrev: g.now()}
	if t, err := p.TimesWithContext(ctx); err == nil {
		h.busyPrev = t.User + t.System
	}
	if io, err := p.IOCountersWithContext(ctx); err == nil {
		h.readPrev, h.writePrev = io.ReadBytes, io.WriteBytes
	}
	return h, nil
}

type gopsutilHandle struct {
	p    *process.Process
	name string
	now  func() time.Time

	busyPrev  float64 // user+system CPU seconds
	wallPrev  time.Time
	readPrev  uint64
	writePrev uint64
}

func (h *gopsutilHandle) PID() int     { return int(h.p.Pid) }
func (h *gopsutilHandle) Name() string { return h.name }

func (h *gopsutilHandle) Sample(ctx context.Context) (Sample, error) {
	// IsRunning compares create times, so a recycled PID reads as exited.
	running, err := h.p.IsRunningWithContext(ctx)
	if err != nil && !gone(err) {
		return Sample{}, fmt.Errorf("snapshot: pid %d: %w", h.p.Pid, err)
	}
	if !running {
		return Sample{}, ErrExited
	}
	if st, err := h.p.StatusWithContext(ctx); err == nil && slices.Contains(st, process.Zombie) {
		return Sample{}, ErrExited
	}

	mem, err := h.p.MemoryInfoWithContext(ctx)
	if err != nil {
		if gone(err) {
			return Sample{}, ErrExited
		}
		return Sample{}, fmt.Errorf("snapshot: memory of pid %d: %w", h.p.Pid, err)
	}

	now := h.now()
	var s Sample
	s.Memory = types.ToBytes(mem.RSS)

	if t, err := h.p.TimesWithContext(ctx); err == nil {
		busy := t.User + t.System
		pct := util.BusyPercent(busy-h.busyPrev, now.Sub(h.wallPrev).Seconds())
		s.CPU = float32(pct / 100 * rawUnit)
		h.busyPrev = busy
	}
	h.wallPrev = now

	// io counters need the same user or elevated rights; leave them at zero otherwise
	if io, err := h.p.IOCountersWithContext(ctx); err == nil {
		s.Disk = types.DiskIO{
			Read:         types.ToBytes(util.DeltaU64(io.ReadBytes, h.readPrev)),
			TotalRead:    types.ToBytes(io.ReadBytes),
			Written:      types.ToBytes(util.DeltaU64(io.WriteBytes, h.writePrev)),
			TotalWritten: types.ToBytes(io.WriteBytes),
		}
		h.readPrev, h.writePrev = io.ReadBytes, io.WriteBytes
	}
	return s, nil
}

func gone(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, fs.ErrNotExist)
}
