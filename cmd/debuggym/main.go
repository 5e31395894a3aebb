// Command debuggym drives sandboxed debugging episodes. It runs scripted
// tool sequences against task repositories, aggregates the resulting run
// logs into a performance report, and serves individual logs for
// inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/debuggym/workspace"
)

var (
	flagVerbose bool
	flagDebug   bool
)

func main() {
	root := &cobra.Command{
		Use:           "debuggym",
		Short:         "Sandboxed task execution for debugging agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log progress at info level")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log at debug level")
	root.AddCommand(newRunCommand(), newReportCommand(), newServeCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	workspace.ReleaseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the console logger the subcommands share and installs
// it as the global logger for packages that log through it.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.InfoLevel
	}
	if flagDebug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
