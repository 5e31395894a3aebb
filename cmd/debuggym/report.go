package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/debuggym/report"
)

func newReportCommand() *cobra.Command {
	var (
		width    int
		humanize bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "report <results-dir>",
		Short: "Aggregate run logs into a performance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			stats, err := report.Collect(args[0], logger)
			if err != nil {
				return err
			}
			text := report.Report{
				Title:          filepath.Base(args[0]),
				GeneratedAt:    time.Now(),
				Stats:          stats,
				Width:          width,
				HumanizeAgents: humanize,
			}.Render()
			if output != "" {
				return os.WriteFile(output, []byte(text), 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", report.DefaultWidth, "report width in columns")
	cmd.Flags().BoolVar(&humanize, "humanize", false, "render agent types as words")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}
