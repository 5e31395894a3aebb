package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/debuggym/config"
	"github.com/jonwraymond/debuggym/run"
)

func newRunCommand() *cobra.Command {
	var (
		agent     string
		overrides []string
		trace     bool
	)
	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run a scripted tool sequence against a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(args[0], overrides...)
			if err != nil {
				return err
			}
			section, err := cfg.Agent(agent)
			if err != nil {
				return err
			}
			var settings run.Settings
			if err := section.Decode(&settings); err != nil {
				return err
			}
			runner := run.New(settings, run.WithLogger(logger), run.WithTrace(trace))
			res, err := runner.Run(cmd.Context(), agent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: solved=%v score=%d/%d steps=%d\n",
				res.Problem, res.Solved, res.Score, res.MaxScore, res.Steps)
			return nil
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "rewrite_agent", "config section to run")
	cmd.Flags().StringArrayVarP(&overrides, "param", "p", nil, `config override, "section.key=value"`)
	cmd.Flags().BoolVar(&trace, "trace", false, "log lifecycle events from the event stream")
	return cmd
}
