package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/debuggym/metrics"
	"github.com/jonwraymond/debuggym/runlog"
	"github.com/jonwraymond/debuggym/viewer"
)

func newServeCommand() *cobra.Command {
	var (
		addr        string
		withMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve <task-dir or debug_gym.jsonl>",
		Short: "Serve a run log for step by step inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			path := args[0]
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, runlog.LogFile)
			}
			l, err := runlog.Load(path)
			if err != nil {
				return err
			}
			opts := viewer.Options{Logger: logger}
			if withMetrics {
				opts.Metrics = metrics.New()
			}
			logger.Info().Str("addr", addr).Str("problem", l.Problem).Int("steps", len(l.Log)).Msg("serving run log")
			return viewer.New(l, opts).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "expose Prometheus metrics on /metrics")
	return cmd
}
