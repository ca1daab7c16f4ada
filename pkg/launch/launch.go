// Package launch starts the external program procmon monitors in
// launch-then-monitor mode and hands its PID over through a one-shot channel.
package launch

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// Started is delivered once the child exists in the process table.
type Started struct {
	PID  int
	Name string
}

// ExitStatus is the outcome of a child process.
type ExitStatus struct {
	PID  int
	Code int // -1 when killed by a signal or never started
	Err  error
}

// Launcher starts children. The zero value discards the child's output.
type Launcher struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Child is a launched process.
type Child struct {
	started chan Started
	done    chan ExitStatus

	mu   sync.Mutex
	cmd  *exec.Cmd
	kill bool
}

// Start spawns path with args on a dedicated goroutine. The goroutine stays
// locked to its OS thread until the child is reaped, because the parent death
// signal is tied to the spawning thread on Linux.
//
// Started is sent exactly once; when the spawn fails the channel is closed
// without a value and Done reports the error.
func (l Launcher) Start(ctx context.Context, path string, args []string) *Child {
	c := &Child{
		started: make(chan Started, 1),
		done:    make(chan ExitStatus, 1),
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Stdin = nil // stdin belongs to the command reader
		cmd.Stdout = l.Stdout
		cmd.Stderr = l.Stderr
		cmd.SysProcAttr = sysProcAttr()

		if err := c.spawn(cmd); err != nil {
			close(c.started)
			c.done <- ExitStatus{Code: -1, Err: err}
			close(c.done)
			return
		}

		pid := cmd.Process.Pid
		c.started <- Started{PID: pid, Name: filepath.Base(path)}
		close(c.started)

		err := cmd.Wait()
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		c.done <- ExitStatus{PID: pid, Code: code, Err: err}
		close(c.done)
	}()

	return c
}

func (c *Child) spawn(cmd *exec.Cmd) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kill {
		return context.Canceled
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	c.cmd = cmd
	return nil
}

// Started yields the handshake value once, then is closed.
func (c *Child) Started() <-chan Started { return c.started }

// Done yields the exit status once the child is reaped.
func (c *Child) Done() <-chan ExitStatus { return c.done }

// Kill kills the child, or prevents it from starting if it has not yet.
func (c *Child) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.kill = true
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Kill()
}
