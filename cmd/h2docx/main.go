package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"h2docx/misc"
	"h2docx/state"
)

// app owns command tree and knows whether final error was already logged.
type app struct {
	root   *cli.Command
	stderr io.Writer
	logged bool
}

func newApp(stderr io.Writer) *app {
	a := &app{stderr: stderr}
	a.root = &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converts HTML pages to Word (DOCX) documents",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          prepareEnv,
		After:           releaseEnv,
		OnUsageError:    passUsageError,
		ExitErrHandler:  a.logExitError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			convertCommand(),
			dumpConfigCommand(),
		},
	}
	return a
}

// run executes command line, errors not seen by the log go to stderr.
func (a *app) run(ctx context.Context, args []string) error {
	err := a.root.Run(ctx, args)
	if err != nil && !a.logged {
		fmt.Fprintf(a.stderr, "Program ended with error: %v\n", err)
	}
	return err
}

func main() {
	// interrupt cancels context, downloads and directory walks stop early
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stderr).run(ctx, os.Args)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
