package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/procmon/pkg/launch"
	"github.com/ja7ad/procmon/pkg/monitor"
	"github.com/ja7ad/procmon/pkg/snapshot"
	"github.com/ja7ad/procmon/pkg/system/util"
)

type opts struct {
	// target
	name     string
	pid      int
	exec     string
	interest []string

	// sampling
	interval time.Duration
	ema      float64
	backend  string

	// outputs
	logDir  string
	verbose bool
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout)
	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(monitor.ExitCode(err))
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "procmon [-p NAME | --pid PID | -e PATH] [flags] [-- ARGS...]",
		Short: "Process resource monitor",
		Long: `procmon samples the CPU, resident memory and disk I/O of one process at a
fixed cadence and appends every sample to log_pid_<pid>_name_<name>.txt.

Without a target it reads process names from stdin, one per line, and switches
to each new name as it arrives. A line reading END stops the program.

Examples:
  procmon -p nginx
  procmon --pid 4242 -i 100ms --log-dir /var/log/procmon
  procmon -e ./bench -- --rounds 10
  printf 'redis-server\nEND\n' | procmon
  procmon report log_pid_4242_name_nginx.txt`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, args, in, out)
		},
	}

	f := root.Flags()
	f.StringVarP(&o.name, "process", "p", "", "monitor the process with this name")
	f.IntVar(&o.pid, "pid", 0, "monitor the process with this PID")
	f.StringVarP(&o.exec, "exec", "e", "", "launch this executable, then monitor it; arguments follow --")
	f.StringSliceVar(&o.interest, "interest", nil, "names re-tracked even when submitted twice in a row")

	def := monitor.DefaultConfig()
	f.DurationVarP(&o.interval, "interval", "i", def.Interval, "sampling interval (e.g. 50ms, 1s)")
	f.Float64Var(&o.ema, "ema", def.EMA, "EMA alpha for CPU smoothing [0..1], 0 disables")
	f.StringVar(&o.backend, "backend", def.Backend, "snapshot backend: gopsutil or procfs")
	f.StringVar(&o.logDir, "log-dir", def.LogDir, "directory for the per-process log files")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "debug logging on stderr")

	root.MarkFlagsMutuallyExclusive("process", "pid", "exec")
	root.AddCommand(newReportCmd(out))
	return root
}

func run(ctx context.Context, o opts, args []string, in io.Reader, out io.Writer) error {
	logger := newLogger(o.verbose)

	cfg := monitor.DefaultConfig()
	cfg.Interval = o.interval
	cfg.Slice = min(cfg.Slice, o.interval)
	cfg.Poll = o.interval
	cfg.EMA = o.ema
	cfg.Backend = o.backend
	cfg.LogDir = o.logDir
	if err := cfg.Validate(); err != nil {
		return err
	}

	sel := monitor.Selector{
		Name:     o.name,
		PID:      o.pid,
		Exec:     o.exec,
		Args:     args,
		Interest: o.interest,
	}
	if err := sel.Validate(); err != nil {
		return err
	}

	provider, err := snapshot.New(cfg.Backend, logger)
	if err != nil {
		return fmt.Errorf("snapshot backend: %w", err)
	}

	host, kernel, cpus, mem := util.SystemSummary(ctx)
	fmt.Fprintf(out, _console, host, kernel, cpus, mem, cgroupMode(),
		cfg.Backend, sel.Mode(), cfg.Interval, time.Now().Format("2006-01-02 15:04:05"))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		flag   monitor.CancelFlag
		target monitor.TargetName
	)
	sampler := monitor.NewSampler(provider, monitor.FileSinks(cfg.LogDir), cfg, out, logger)
	orch := monitor.NewOrchestrator(sampler, &flag, &target, cfg, out, logger)
	orch.Start = monitor.Launcher(launch.Launcher{Stdout: os.Stdout, Stderr: os.Stderr})
	reader := monitor.NewCommandReader(in, &target, &flag, cfg, out, logger)

	g, gctx := errgroup.WithContext(ctx)
	// fixed and launch modes end on their own; the reader must not outlive them
	rctx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error { return reader.Run(rctx) })
	g.Go(func() error {
		defer cancel()
		return orch.Run(gctx, sel)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Info("interrupted")
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

const _console = `procmon - Process Resource Monitor

* GitHub: https://github.com/ja7ad/procmon

       Host: %s
       Kernel: %s
       CPUs: %s
       Mem: %s
       Cgroup: %s

Backend %s, %s mode, sampling every %s, started %s

`
