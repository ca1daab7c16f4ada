package monitor

import "sync"

// CancelFlag is the shared stop signal. The counter only ever goes up, so once
// raised it stays raised for the life of the process. The zero value is ready
// to use.
type CancelFlag struct {
	mu   sync.Mutex
	n    int
	done chan struct{}
}

// Raise increments the flag and returns the new value. The Done channel is
// closed on the first call.
func (f *CancelFlag) Raise() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++
	if f.n == 1 {
		close(f.doneLocked())
	}
	return f.n
}

// Value returns the current count.
func (f *CancelFlag) Value() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// Raised reports whether Raise has been called.
func (f *CancelFlag) Raised() bool { return f.Value() > 0 }

// Done returns a channel that is closed once the flag is raised.
func (f *CancelFlag) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doneLocked()
}

func (f *CancelFlag) doneLocked() chan struct{} {
	if f.done == nil {
		f.done = make(chan struct{})
	}
	return f.done
}
