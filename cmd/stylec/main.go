package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"stylec/misc"
	"stylec/state"
)

func main() {
	// compilation checks context between snapshots, so interrupt stops the
	// worker pool cleanly and partial results are still reported
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var h errorHandler
	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "style sheet compiler producing readable or atomic CSS",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  h.exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{compileCommand(), dumpCommand(), dumpConfigCommand()},
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		// log may be not ready yet (argument parsing) or already closed
		if !h.handled {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
