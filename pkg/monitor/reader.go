package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EndCommand stops procmon. It is matched against the trimmed line, case
// sensitively.
const EndCommand = "END"

// CommandReader turns operator lines into target names, or raises the flag on
// EndCommand and at the end of input.
type CommandReader struct {
	in          io.Reader
	target      *TargetName
	flag        *CancelFlag
	maxFailures int

	out    io.Writer
	logger *slog.Logger
}

// NewCommandReader creates a reader over in. A nil out discards operator
// messages and a nil logger falls back to slog.Default.
func NewCommandReader(in io.Reader, target *TargetName, flag *CancelFlag, cfg Config, out io.Writer, logger *slog.Logger) *CommandReader {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandReader{
		in:          in,
		target:      target,
		flag:        flag,
		maxFailures: max(cfg.MaxReadFailures, 1),
		out:         out,
		logger:      logger,
	}
}

type readResult struct {
	line string
	err  error
}

// Run reads until EndCommand, end of input, maxFailures consecutive read
// errors or ctx cancellation. Only cancellation leaves the flag untouched.
func (r *CommandReader) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)

	lines := make(chan readResult)
	go r.scan(lines, stop)

	failures := 0
	for {
		var res readResult
		select {
		case <-ctx.Done():
			return nil
		case res = <-lines:
		}

		// a final line without newline arrives together with io.EOF
		if line := strings.TrimSpace(res.line); line != "" && r.handle(line) {
			return nil
		}

		switch {
		case res.err == nil:
			failures = 0
		case errors.Is(res.err, io.EOF):
			r.logger.Debug("control channel closed")
			r.flag.Raise()
			return nil
		default:
			failures++
			r.logger.Warn("read command", "err", res.err, "failures", failures)
			if failures >= r.maxFailures {
				r.flag.Raise()
				return fmt.Errorf("%w: %w", ErrRead, res.err)
			}
		}
	}
}

// scan does the blocking reads, which cannot be interrupted, on its own
// goroutine.
func (r *CommandReader) scan(lines chan<- readResult, stop <-chan struct{}) {
	br := bufio.NewReader(r.in)
	for {
		line, err := br.ReadString('\n')
		select {
		case lines <- readResult{line: line, err: err}:
		case <-stop:
			return
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// handle applies one trimmed line and reports whether it was EndCommand.
func (r *CommandReader) handle(line string) bool {
	if line == EndCommand {
		fmt.Fprintln(r.out, "Ending the program")
		r.flag.Raise()
		return true
	}
	r.target.Set(line)
	fmt.Fprintf(r.out, "The user requested the process %s\n", line)
	return false
}
