// Package snapshot resolves processes by name or PID and reads their point in
// time resource usage. Two backends exist: "gopsutil" (default, any platform
// gopsutil supports) and "procfs" (Linux, plain /proc reads).
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ja7ad/procmon/pkg/types"
)

const (
	BackendGopsutil = "gopsutil"
	BackendProcfs   = "procfs"
)

// Identity is what an operator asks to monitor. A positive PID takes
// precedence over Name.
type Identity struct {
	Name string
	PID  int
}

func (id Identity) String() string {
	if id.PID > 0 {
		if id.Name != "" {
			return id.Name + " (pid " + strconv.Itoa(id.PID) + ")"
		}
		return "pid " + strconv.Itoa(id.PID)
	}
	return id.Name
}

// Sample is the usage of one process at one tick. CPU is in the provider's
// raw unit; pass it through ScaleCPU before presenting it.
type Sample struct {
	Memory types.Bytes
	CPU    float32
	Disk   types.DiskIO
}

// Handle is bound to exactly one OS process. Sample does a full refresh on
// every call and returns ErrExited once the process is gone; a Handle is not
// safe for concurrent use.
type Handle interface {
	PID() int
	Name() string
	Sample(ctx context.Context) (Sample, error)
}

// Provider resolves identities against the live process table.
//
// Name lookups return the first exact match in process table order. That
// order is up to the OS, so with several same-named processes the pick is not
// deterministic.
type Provider interface {
	Resolve(ctx context.Context, id Identity) (Handle, error)
}

// New returns the provider for backend. An empty backend selects gopsutil.
func New(backend string, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch backend {
	case "", BackendGopsutil:
		return NewGopsutil(), nil
	case BackendProcfs:
		return newProcfs(logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
