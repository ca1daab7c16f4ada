//go:build linux

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ja7ad/procmon/pkg/system/cgroup"
	"github.com/ja7ad/procmon/pkg/system/proc"
	"github.com/ja7ad/procmon/pkg/types"
)

type procfs struct {
	logger *slog.Logger
}

func newProcfs(logger *slog.Logger) (Provider, error) {
	return &procfs{logger: logger}, nil
}

func (p *procfs) Resolve(_ context.Context, id Identity) (Handle, error) {
	pid := id.PID
	if pid <= 0 {
		var err error
		pid, err = proc.FindByName(id.Name)
		if err != nil {
			if errors.Is(err, proc.ErrNoMatch) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("snapshot: scan /proc: %w", err)
		}
	}

	tr, err := proc.NewTracker(pid)
	if err != nil {
		if errors.Is(err, proc.ErrExited) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("snapshot: track pid %d: %w", pid, err)
	}

	name, err := proc.ReadProcComm(pid)
	if err != nil {
		name = id.Name
	}
	if cg, err := cgroup.ProcessPath(pid); err == nil {
		p.logger.Debug("resolved process", "pid", pid, "name", name, "cgroup", cg)
	}
	return &procfsHandle{tr: tr, name: name}, nil
}

type procfsHandle struct {
	tr   *proc.Tracker
	name string
}

func (h *procfsHandle) PID() int     { return h.tr.PID() }
func (h *procfsHandle) Name() string { return h.name }

func (h *procfsHandle) Sample(context.Context) (Sample, error) {
	u, err := h.tr.Sample()
	if err != nil {
		if errors.Is(err, proc.ErrExited) {
			return Sample{}, ErrExited
		}
		return Sample{}, fmt.Errorf("snapshot: pid %d: %w", h.tr.PID(), err)
	}
	return Sample{
		Memory: types.ToBytes(u.RSS),
		CPU:    float32(u.CPUPercent / 100 * rawUnit),
		Disk: types.DiskIO{
			Read:         types.ToBytes(u.ReadBytes),
			TotalRead:    types.ToBytes(u.TotalRead),
			Written:      types.ToBytes(u.WriteBytes),
			TotalWritten: types.ToBytes(u.TotalWrite),
		},
	}, nil
}
