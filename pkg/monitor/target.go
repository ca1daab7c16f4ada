package monitor

import "sync"

// TargetName holds the process names the operator submitted. Every Set is
// queued, so two submissions of the same name stay two submissions even when
// nobody looked in between.
type TargetName struct {
	mu      sync.Mutex
	name    string
	seq     uint64
	pending []string
}

// Set queues name and returns its sequence number.
func (t *TargetName) Set(name string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.name = name
	t.seq++
	t.pending = append(t.pending, name)
	return t.seq
}

// Get returns the latest name and its sequence number. Sequence 0 means
// nothing was submitted yet.
func (t *TargetName) Get() (string, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name, t.seq
}

// Take returns the submissions queued since the last call, oldest first.
func (t *TargetName) Take() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := t.pending
	t.pending = nil
	return names
}
