package monitor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ja7ad/procmon/pkg/launch"
	"github.com/ja7ad/procmon/pkg/record"
	"github.com/ja7ad/procmon/pkg/snapshot"
	"github.com/ja7ad/procmon/pkg/types"
)

// forever keeps a fake process alive until the test stops it.
const forever = -1

// fakeProvider serves processes from a map instead of the OS process table.
type fakeProvider struct {
	mu       sync.Mutex
	byName   map[string]fakeProc
	resolved []snapshot.Identity
}

type fakeProc struct {
	pid   int
	ticks int // samples before the process exits; forever for never
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{byName: map[string]fakeProc{}}
}

func (p *fakeProvider) add(name string, pid, ticks int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byName[name] = fakeProc{pid: pid, ticks: ticks}
}

func (p *fakeProvider) Resolve(_ context.Context, id snapshot.Identity) (snapshot.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolved = append(p.resolved, id)
	for name, fp := range p.byName {
		if (id.PID > 0 && fp.pid == id.PID) || (id.PID <= 0 && name == id.Name) {
			return &fakeHandle{pid: fp.pid, name: name, left: fp.ticks}, nil
		}
	}
	return nil, snapshot.ErrNotFound
}

func (p *fakeProvider) resolves() []snapshot.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]snapshot.Identity(nil), p.resolved...)
}

type fakeHandle struct {
	pid  int
	name string
	left int
	n    int
}

func (h *fakeHandle) PID() int     { return h.pid }
func (h *fakeHandle) Name() string { return h.name }

func (h *fakeHandle) Sample(context.Context) (snapshot.Sample, error) {
	if h.left == 0 {
		return snapshot.Sample{}, snapshot.ErrExited
	}
	if h.left > 0 {
		h.left--
	}
	h.n++
	return snapshot.Sample{
		Memory: types.Bytes(h.n) << 20,
		CPU:    float32(h.n) / snapshot.CPUScale,
		Disk:   types.DiskIO{Read: 1, TotalRead: types.Bytes(h.n), Written: 2, TotalWritten: types.Bytes(2 * h.n)},
	}, nil
}

// memSinks collects the records of every session in memory.
type memSinks struct {
	mu      sync.Mutex
	opened  []string
	records map[string][]record.Record
	failOn  int // fail the n-th write of a sink (1-based); 0 never fails
}

func newMemSinks() *memSinks {
	return &memSinks{records: map[string][]record.Record{}}
}

func (m *memSinks) open(pid int, name string) (record.Sink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.FileName(pid, name)
	m.opened = append(m.opened, key)
	return &memSink{m: m, key: key}, nil
}

func (m *memSinks) sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

func (m *memSinks) get(key string) []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]record.Record(nil), m.records[key]...)
}

type memSink struct {
	m      *memSinks
	key    string
	writes int
	closed bool
}

var errDiskFull = errors.New("disk full")

func (s *memSink) Write(r record.Record) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.writes++
	if s.m.failOn > 0 && s.writes >= s.m.failOn {
		return errDiskFull
	}
	s.m.records[s.key] = append(s.m.records[s.key], r)
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// fakeChild stands in for a launched program.
type fakeChild struct {
	started chan launch.Started
	done    chan launch.ExitStatus

	mu     sync.Mutex
	killed bool
	once   sync.Once
}

func newFakeChild() *fakeChild {
	return &fakeChild{
		started: make(chan launch.Started, 1),
		done:    make(chan launch.ExitStatus, 1),
	}
}

func (c *fakeChild) Started() <-chan launch.Started { return c.started }
func (c *fakeChild) Done() <-chan launch.ExitStatus { return c.done }

func (c *fakeChild) Kill() error {
	c.mu.Lock()
	c.killed = true
	c.mu.Unlock()
	c.exit(launch.ExitStatus{Code: -1, Err: errors.New("signal: killed")})
	return nil
}

func (c *fakeChild) exit(st launch.ExitStatus) {
	c.once.Do(func() {
		c.done <- st
		close(c.done)
	})
}

func (c *fakeChild) wasKilled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killed
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 10 * time.Millisecond
	cfg.Slice = 2 * time.Millisecond
	cfg.Poll = 5 * time.Millisecond
	return cfg
}

type harness struct {
	provider *fakeProvider
	sinks    *memSinks
	flag     *CancelFlag
	target   *TargetName
	out      *syncBuffer
	sampler  *Sampler
	orch     *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		provider: newFakeProvider(),
		sinks:    newMemSinks(),
		flag:     &CancelFlag{},
		target:   &TargetName{},
		out:      &syncBuffer{},
	}
	cfg := testConfig()
	h.sampler = NewSampler(h.provider, h.sinks.open, cfg, h.out, nil)
	h.orch = NewOrchestrator(h.sampler, h.flag, h.target, cfg, h.out, nil)
	h.orch.Exit = func(code int) { t.Errorf("unexpected exit(%d)", code) }
	return h
}
