package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ja7ad/procmon/pkg/record"
)

type reportRow struct {
	pid     int
	name    string
	summary record.Summary
}

func newReportCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "report FILE...",
		Short: "Summarize procmon log files",
		Long: `report parses log_pid_<pid>_name_<name>.txt files written by procmon and
prints one line per file: sample count, duration, average and peak CPU and
memory, and the cumulative disk counters of the last sample.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadReport(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", renderReport(rows))
			return nil
		},
	}
}

func loadReport(paths []string) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(paths))
	for _, p := range paths {
		pid, name, err := record.ParseFileName(p)
		if err != nil {
			return nil, err
		}
		recs, err := record.ReadFile(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, reportRow{pid: pid, name: name, summary: record.Summarize(recs)})
	}
	return rows, nil
}

func renderReport(rows []reportRow) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"PID", "Name", "Samples", "Duration", "CPU avg %", "CPU max %", "Mem avg", "Mem max", "Read", "Written"})
	for _, r := range rows {
		s := r.summary
		tw.AppendRow(table.Row{
			r.pid,
			r.name,
			s.Samples,
			s.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%.2f", s.CPUAvg),
			fmt.Sprintf("%.2f", s.CPUMax),
			s.MemAvg.Humanized(),
			s.MemMax.Humanized(),
			s.TotalRead.Humanized(),
			s.TotalWritten.Humanized(),
		})
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	return tw.Render()
}
