package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"h2docx/config"
	"h2docx/convert"
	"h2docx/state"
)

const convertHelp = `
SOURCE:
    HTML document(s) to process, following forms are supported:
        path to a file: "[path_to_file]file.html" (.html, .htm and .xhtml are recognized)
        path to a directory: "[path_to_directory]directory" - recursively process all HTML files under directory (symbolic links are not followed)
        URL of a page: "http(s)://host/path" - page is downloaded, relative images are resolved against it

	Relative image references of local files are resolved against file
	directory and never leave it.

DESTINATION:
    always a path, output file name(s) will be derived from source names
    if absent - current working directory
`

const dumpConfigHelp = `

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts HTML file(s) to DOCX",
		OnUsageError: passUsageError,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
			&cli.StringFlag{Name: "charset",
				Usage: "Force `ENCODING` for ALL processed sources ignoring declared one (see IANA.org for character set names)"},
		},
		ArgsUsage:          "SOURCE [DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + convertHelp,
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Dumps either default or actual configuration (YAML)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		OnUsageError:       passUsageError,
		Action:             dumpConfig,
		ArgsUsage:          "DESTINATION",
		CustomHelpTemplate: cli.CommandHelpTemplate + dumpConfigHelp,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	kind := "actual"
	get := func() ([]byte, error) { return config.Dump(env.Cfg) }
	if cmd.Bool("default") {
		kind, get = "default", config.Prepare
	}
	data, err := get()
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().First()
	if fname == "" {
		env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", "STDOUT"))
		return writeConfiguration(os.Stdout, data)
	}
	env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", fname))

	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	return multierr.Append(writeConfiguration(out, data), out.Close())
}

func writeConfiguration(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
