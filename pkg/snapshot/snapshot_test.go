package snapshot

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Provider {
	t.Helper()
	out := map[string]Provider{BackendGopsutil: NewGopsutil()}
	if runtime.GOOS == "linux" {
		p, err := New(BackendProcfs, nil)
		require.NoError(t, err)
		out[BackendProcfs] = p
	}
	return out
}

func TestNew(t *testing.T) {
	p, err := New("", nil)
	require.NoError(t, err)
	assert.IsType(t, &Gopsutil{}, p)

	_, err = New("sysinfo", nil)
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, err = New(BackendProcfs, nil)
	if runtime.GOOS == "linux" {
		require.NoError(t, err)
	} else {
		require.ErrorIs(t, err, ErrUnsupported)
	}
}

func TestIdentity_String(t *testing.T) {
	assert.Equal(t, "app", Identity{Name: "app"}.String())
	assert.Equal(t, "pid 42", Identity{PID: 42}.String())
	assert.Equal(t, "app (pid 42)", Identity{Name: "app", PID: 42}.String())
}

func TestScaleCPU(t *testing.T) {
	assert.Equal(t, float32(0), ScaleCPU(0))
	if runtime.GOOS == "windows" {
		assert.Equal(t, float32(50), ScaleCPU(0.5))
	} else {
		assert.Equal(t, float32(0.5), ScaleCPU(0.5))
	}
	// one full core always ends up as 100 after scaling
	assert.Equal(t, float32(100), ScaleCPU(rawUnit))
}

func TestResolve_NotFound(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := p.Resolve(ctx, Identity{Name: "ghost-process-that-never-exists"})
			require.ErrorIs(t, err, ErrNotFound)

			_, err = p.Resolve(ctx, Identity{PID: 99999999})
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolve_SelfAndSample(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			h, err := p.Resolve(ctx, Identity{PID: os.Getpid()})
			require.NoError(t, err)
			assert.Equal(t, os.Getpid(), h.PID())
			assert.NotEmpty(t, h.Name())

			s, err := h.Sample(ctx)
			require.NoError(t, err)
			assert.Greater(t, s.Memory.Uint64(), uint64(0))
			assert.GreaterOrEqual(t, s.CPU, float32(0))
			assert.GreaterOrEqual(t, s.Disk.TotalRead, s.Disk.Read)
			assert.GreaterOrEqual(t, s.Disk.TotalWritten, s.Disk.Written)

			// the name we got back resolves to some process of that name
			byName, err := p.Resolve(ctx, Identity{Name: h.Name()})
			require.NoError(t, err)
			assert.Equal(t, h.Name(), byName.Name())
		})
	}
}

func TestSample_CPUUnit(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			h, err := p.Resolve(ctx, Identity{PID: os.Getpid()})
			require.NoError(t, err)

			spin(200 * time.Millisecond)
			s, err := h.Sample(ctx)
			require.NoError(t, err)

			// raw readings are in rawUnit per core, scaled ones in percent per core
			cores := float32(runtime.NumCPU())
			assert.LessOrEqual(t, s.CPU, rawUnit*cores*1.1)
			assert.LessOrEqual(t, ScaleCPU(s.CPU), 100*cores*1.1)
			assert.Greater(t, ScaleCPU(s.CPU), float32(10), "a busy loop shows up as CPU usage")
		})
	}
}

func spin(d time.Duration) {
	n := 0
	for end := time.Now().Add(d); time.Now().Before(end); {
		n++
	}
	_ = n
}

func TestSample_ExitedChild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a sleep binary")
	}
	bin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skipf("skipping: %v", err)
	}

	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			cmd := exec.Command(bin, "30")
			require.NoError(t, cmd.Start())

			h, err := p.Resolve(ctx, Identity{PID: cmd.Process.Pid})
			require.NoError(t, err)
			_, err = h.Sample(ctx)
			require.NoError(t, err)

			require.NoError(t, cmd.Process.Kill())
			_ = cmd.Wait() // reap, so the PID leaves the table

			_, err = h.Sample(ctx)
			require.ErrorIs(t, err, ErrExited)
		})
	}
}
