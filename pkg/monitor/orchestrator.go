package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ja7ad/procmon/pkg/launch"
	"github.com/ja7ad/procmon/pkg/snapshot"
)

// Child is a launched program as the orchestrator sees it.
type Child interface {
	Started() <-chan launch.Started
	Done() <-chan launch.ExitStatus
	Kill() error
}

// StartFunc launches path with args.
type StartFunc func(ctx context.Context, path string, args []string) Child

// Launcher adapts a launch.Launcher to a StartFunc.
func Launcher(l launch.Launcher) StartFunc {
	return func(ctx context.Context, path string, args []string) Child {
		return l.Start(ctx, path, args)
	}
}

// Orchestrator drives at most one session at a time according to the mode of
// the selector it is run with.
type Orchestrator struct {
	sampler *Sampler
	flag    *CancelFlag
	target  *TargetName
	poll    time.Duration

	// Start launches the program in launch mode.
	Start StartFunc
	// Exit terminates the process. The launch mode watchdog calls it once the
	// flag is raised.
	Exit func(code int)

	out    io.Writer
	logger *slog.Logger
}

// NewOrchestrator wires the sampler to the shared flag and target name. A nil
// out discards operator messages and a nil logger falls back to slog.Default.
func NewOrchestrator(s *Sampler, flag *CancelFlag, target *TargetName, cfg Config, out io.Writer, logger *slog.Logger) *Orchestrator {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sampler: s,
		flag:    flag,
		target:  target,
		poll:    cfg.Poll,
		Start:   Launcher(launch.Launcher{}),
		Exit:    os.Exit,
		out:     out,
		logger:  logger,
	}
}

// Run executes the mode picked by sel. It returns an error wrapping
// ErrLogWrite when a session could not write its log; every other failure is
// reported and ends the mode with a nil error.
func (o *Orchestrator) Run(ctx context.Context, sel Selector) error {
	if err := sel.Validate(); err != nil {
		return err
	}

	mode := sel.Mode()
	o.logger.Info("orchestrator started", "mode", mode.String())

	switch mode {
	case ModeFixed:
		return o.track(ctx, sel.Identity())
	case ModeLaunch:
		return o.launch(ctx, sel)
	default:
		return o.watch(ctx, sel.interestSet())
	}
}

// track runs one full session against id.
func (o *Orchestrator) track(ctx context.Context, id snapshot.Identity) error {
	if o.flag.Raised() || ctx.Err() != nil {
		return nil
	}

	sess, err := o.sampler.Begin(ctx, id)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		fmt.Fprintf(o.out, "Process %s not found\n", id)
		return nil
	case errors.Is(err, ErrLogWrite):
		return err
	case err != nil:
		o.logger.Error("resolve process", "target", id.String(), "err", err)
		return nil
	}

	fmt.Fprintf(o.out, "Running process %s and process id %d\n", sess.Name, sess.PID)
	outcome, err := o.sampler.Run(ctx, sess, o.flag)
	o.logger.Info("session ended", "target", id.String(), "pid", sess.PID, "outcome", outcome.String())
	return err
}

// watch is dynamic mode: every submission of a name starts a session, unless
// it repeats the last tracked name and that name is not of interest.
// Submissions made while a session runs are handled in order once it ends.
func (o *Orchestrator) watch(ctx context.Context, interest map[string]struct{}) error {
	var last string
	for !o.flag.Raised() {
		for _, name := range o.target.Take() {
			if o.flag.Raised() {
				return nil
			}
			_, keen := interest[name]
			if name == "" || (name == last && !keen) {
				o.logger.Debug("skip repeated target", "name", name)
				continue
			}
			o.logger.Debug("retarget", "name", name, "previous", last)
			last = name
			if err := o.track(ctx, snapshot.Identity{Name: name}); err != nil {
				return err
			}
		}
		if !pause(ctx, o.flag, o.poll, o.poll) {
			return nil
		}
	}
	return nil
}

// launch is launch-then-monitor mode.
func (o *Orchestrator) launch(ctx context.Context, sel Selector) error {
	child := o.Start(ctx, sel.Exec, sel.Args)

	var (
		started launch.Started
		ok      bool
	)
	select {
	case started, ok = <-child.Started():
	case <-ctx.Done():
		_ = child.Kill()
		return nil
	}
	if !ok {
		st := <-child.Done()
		err := fmt.Errorf("%w: %s: %w", ErrHandshake, sel.Exec, st.Err)
		fmt.Fprintf(o.out, "Could not start %s\n", sel.Exec)
		o.logger.Error("launch", "err", err)
		return nil
	}
	o.logger.Info("child started", "pid", started.PID, "name", started.Name)

	stop := make(chan struct{})
	defer close(stop)
	go o.watchdog(child, stop)

	if err := o.track(ctx, snapshot.Identity{Name: started.Name, PID: started.PID}); err != nil {
		_ = child.Kill()
		return err
	}

	select {
	case st := <-child.Done():
		fmt.Fprintf(o.out, "Process %s exited with code %d\n", started.Name, st.Code)
	case <-ctx.Done():
		_ = child.Kill()
	}
	return nil
}

// watchdog ends the whole program once the flag is raised while a launched
// child is being monitored.
func (o *Orchestrator) watchdog(child Child, stop <-chan struct{}) {
	select {
	case <-o.flag.Done():
		fmt.Fprintln(o.out, "Stop requested, terminating the launched process")
		if err := child.Kill(); err != nil {
			o.logger.Warn("kill child", "err", err)
		}
		o.Exit(ExitOK)
	case <-stop:
	}
}
