package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/procmon/pkg/record"
	"github.com/ja7ad/procmon/pkg/snapshot"
	"github.com/ja7ad/procmon/pkg/types"
)

func TestSampler_RunUntilExit(t *testing.T) {
	h := newHarness(t)
	h.provider.add("app", 10, 3)

	sess, err := h.sampler.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)
	assert.Equal(t, 10, sess.PID)
	assert.Equal(t, "app", sess.Name)

	outcome, err := h.sampler.Run(context.Background(), sess, h.flag)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)

	recs := h.sinks.get(record.FileName(10, "app"))
	require.Len(t, recs, 3)
	for i, r := range recs {
		n := i + 1
		assert.InDelta(t, float32(n), r.CPU, 1e-6)
		assert.Equal(t, types.Bytes(n)<<20, r.Memory)
		assert.Equal(t, types.Bytes(2*n), r.Disk.TotalWritten)
		if i > 0 {
			assert.GreaterOrEqual(t, r.Elapsed, recs[i-1].Elapsed)
		}
	}

	out := h.out.String()
	assert.Contains(t, out, "Requested process app has an id 10\n")
	assert.Contains(t, out, "Process app has ended\n")
}

func TestSampler_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.sampler.Begin(context.Background(), snapshot.Identity{Name: "ghost"})
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
	assert.Empty(t, h.sinks.sessions())
}

func TestSampler_Cancelled(t *testing.T) {
	h := newHarness(t)
	h.provider.add("app", 10, forever)

	sess, err := h.sampler.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)

	time.AfterFunc(30*time.Millisecond, func() { h.flag.Raise() })

	start := time.Now()
	outcome, err := h.sampler.Run(context.Background(), sess, h.flag)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Less(t, time.Since(start), time.Second)
	assert.NotEmpty(t, h.sinks.get(record.FileName(10, "app")))
	assert.Contains(t, h.out.String(), "Stop monitoring\n")
}

func TestSampler_CancelledBeforeFirstSample(t *testing.T) {
	h := newHarness(t)
	h.provider.add("app", 10, forever)

	sess, err := h.sampler.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)
	h.flag.Raise()

	outcome, err := h.sampler.Run(context.Background(), sess, h.flag)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Empty(t, h.sinks.get(record.FileName(10, "app")))
}

func TestSampler_WriteFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.sinks.failOn = 2
	h.provider.add("app", 10, forever)

	sess, err := h.sampler.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)

	outcome, err := h.sampler.Run(context.Background(), sess, h.flag)
	assert.Equal(t, Fatal, outcome)
	require.ErrorIs(t, err, ErrLogWrite)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, h.sinks.get(record.FileName(10, "app")), 1)
	assert.Equal(t, ExitLogWrite, ExitCode(err))
}

func TestSampler_OpenFailureIsFatal(t *testing.T) {
	provider := newFakeProvider()
	provider.add("app", 10, forever)
	open := func(int, string) (record.Sink, error) { return nil, errors.New("read-only fs") }
	s := NewSampler(provider, open, testConfig(), nil, nil)

	_, err := s.Begin(context.Background(), snapshot.Identity{Name: "app"})
	assert.ErrorIs(t, err, ErrLogWrite)
}

func TestSampler_EMA(t *testing.T) {
	provider := newFakeProvider()
	provider.add("app", 10, 3)
	sinks := newMemSinks()
	cfg := testConfig()
	cfg.EMA = 0.5
	s := NewSampler(provider, sinks.open, cfg, nil, nil)

	var flag CancelFlag
	sess, err := s.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)
	_, err = s.Run(context.Background(), sess, &flag)
	require.NoError(t, err)

	recs := sinks.get(record.FileName(10, "app"))
	require.Len(t, recs, 3)
	assert.InDelta(t, 1.0, recs[0].CPU, 1e-6)
	assert.InDelta(t, 1.5, recs[1].CPU, 1e-6)
	assert.InDelta(t, 2.25, recs[2].CPU, 1e-6)
}

func TestSampler_FileSinks(t *testing.T) {
	dir := t.TempDir()
	provider := newFakeProvider()
	provider.add("app", 10, 2)
	s := NewSampler(provider, FileSinks(dir), testConfig(), nil, nil)

	var flag CancelFlag
	sess, err := s.Begin(context.Background(), snapshot.Identity{Name: "app"})
	require.NoError(t, err)
	outcome, err := s.Run(context.Background(), sess, &flag)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)

	recs, err := record.ReadFile(filepath.Join(dir, record.FileName(10, "app")))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "fatal", Fatal.String())
}
