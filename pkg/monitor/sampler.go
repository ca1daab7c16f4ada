package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ja7ad/procmon/pkg/record"
	"github.com/ja7ad/procmon/pkg/snapshot"
	"github.com/ja7ad/procmon/pkg/system/util"
)

// Outcome is how a session ended.
type Outcome int

const (
	Completed Outcome = iota // the process exited
	Cancelled                // the flag was raised or the context ended
	Fatal                    // the log could not be written
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "fatal"
	}
}

// SinkOpener opens the record sink of a new session.
type SinkOpener func(pid int, name string) (record.Sink, error)

// FileSinks opens log_pid_<pid>_name_<name>.txt files in dir.
func FileSinks(dir string) SinkOpener {
	return func(pid int, name string) (record.Sink, error) {
		return record.OpenFile(dir, pid, name)
	}
}

// Session is one continuous run of sampling against one process.
type Session struct {
	Identity snapshot.Identity
	PID      int
	Name     string
	Start    time.Time

	handle snapshot.Handle
	sink   record.Sink
	ema    *util.EMA
}

func (s *Session) cpu(v float32) float32 {
	if s.ema == nil {
		return v
	}
	return float32(s.ema.Next(float64(v)))
}

// Sampler runs sessions: one sample per interval, one record per sample.
type Sampler struct {
	provider snapshot.Provider
	open     SinkOpener
	interval time.Duration
	slice    time.Duration
	ema      float64

	out    io.Writer
	logger *slog.Logger
	now    func() time.Time
}

// NewSampler creates a Sampler. A nil out discards operator messages and a nil
// logger falls back to slog.Default.
func NewSampler(provider snapshot.Provider, open SinkOpener, cfg Config, out io.Writer, logger *slog.Logger) *Sampler {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		provider: provider,
		open:     open,
		interval: cfg.Interval,
		slice:    cfg.Slice,
		ema:      cfg.EMA,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

// Begin resolves id and opens its log. It returns snapshot.ErrNotFound when
// no process matches right now; nothing is retried. A log that cannot be
// opened is reported as ErrLogWrite.
func (s *Sampler) Begin(ctx context.Context, id snapshot.Identity) (*Session, error) {
	h, err := s.provider.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "Requested process %s has an id %d\n", h.Name(), h.PID())

	sink, err := s.open(h.PID(), h.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogWrite, err)
	}

	sess := &Session{
		Identity: id,
		PID:      h.PID(),
		Name:     h.Name(),
		Start:    s.now(),
		handle:   h,
		sink:     sink,
	}
	if s.ema > 0 {
		sess.ema = util.NewEMA(s.ema)
	}
	return sess, nil
}

// Run samples sess until the process exits, the flag is raised, ctx ends or a
// record cannot be written. The session's sink is closed on return.
func (s *Sampler) Run(ctx context.Context, sess *Session, flag *CancelFlag) (Outcome, error) {
	defer func() {
		if err := sess.sink.Close(); err != nil {
			s.logger.Warn("close log", "pid", sess.PID, "err", err)
		}
	}()

	for {
		if flag.Raised() || ctx.Err() != nil {
			return Cancelled, nil
		}

		smp, err := sess.handle.Sample(ctx)
		switch {
		case errors.Is(err, snapshot.ErrExited):
			fmt.Fprintf(s.out, "Process %s has ended\n", sess.Name)
			return Completed, nil
		case err != nil:
			s.logger.Warn("sample error", "pid", sess.PID, "err", err)
		default:
			rec := record.Record{
				Elapsed: s.now().Sub(sess.Start),
				CPU:     sess.cpu(snapshot.ScaleCPU(smp.CPU)),
				Memory:  smp.Memory,
				Disk:    smp.Disk,
			}
			if err := sess.sink.Write(rec); err != nil {
				return Fatal, fmt.Errorf("%w: %w", ErrLogWrite, err)
			}
			s.logger.Debug("sample", "pid", sess.PID, "name", sess.Name, "record", rec.String())
		}

		if !pause(ctx, flag, s.interval, s.slice) {
			fmt.Fprintln(s.out, "Stop monitoring")
			return Cancelled, nil
		}
	}
}
