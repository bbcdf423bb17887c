package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylec/build"
	"stylec/config"
	"stylec/state"
)

// engineFlags are shared by commands which compile snapshots.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"},
			Usage: "compile `MODE` (supported modes: " + strings.Join(config.CompileModeNames(), ", ") + ")"},
		&cli.StringSliceFlag{Name: "breakpoint", Aliases: []string{"bp"}, Usage: "emit media blocks only for breakpoint `ID` (may be repeated)"},
		&cli.StringSliceFlag{Name: "atomic-rule", Aliases: []string{"ar"}, Usage: "compile rule `ID` to atomic classes in readable mode (may be repeated)"},
		&cli.BoolFlag{Name: "no-prefixes", Usage: "do not add vendor prefixed declarations"},
		&cli.BoolFlag{Name: "no-merge", Usage: "do not merge longhands into shorthands in readable mode"},
		&cli.StringFlag{Name: "assets", Usage: "resolve asset references from `DIRECTORY`"},
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:         "compile",
		Usage:        "Compiles style snapshot(s) to CSS",
		OnUsageError: usageErrorHandler,
		Action:       build.Run,
		Flags: append(engineFlags(),
			&cli.StringFlag{Name: "classes",
				Usage: "class map `FORMAT` for atomic mode (supported formats: " + strings.Join(config.ClassMapFmtNames(), ", ") + ")"},
			&cli.StringFlag{Name: "bundle", Aliases: []string{"b"}, Usage: "put all outputs into zip archive `FILE` instead of destination directory"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "compile up to `N` snapshots concurrently (0 - one per CPU)"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
		),
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    snapshot file(s) (YAML or JSON) to compile, following forms are supported:
        path to a file: "[path_to_file]site.yaml"
        path to a directory: "[path_to_directory]directory" - all snapshots under directory, symbolic links are not followed
        path inside archive to a snapshot: "[path_to_archive]archive.zip[path_in_archive]/site.yaml"
        path inside archive: "[path_to_archive]archive.zip[path_in_archive]" - all snapshots under archive path

DESTINATION:
    directory for produced style sheets and class maps, file names come from
    configured name template. If absent - current working directory
`,
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:         "dump",
		Usage:        "Dumps rule tree of a style snapshot",
		OnUsageError: usageErrorHandler,
		Action:       build.Dump,
		Flags: append(engineFlags(),
			&cli.BoolFlag{Name: "compile", Usage: "compile before dumping, show atomic classes and diagnostics"},
		),
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    snapshot file (YAML or JSON)

DESTINATION:
    file to write rule tree to, if absent - STDOUT
`,
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Dumps either default or actual configuration (YAML)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		OnUsageError: usageErrorHandler,
		Action:       outputConfiguration,
		ArgsUsage:    "DESTINATION",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file to write configuration to, if absent - STDOUT

Produces actual configuration: default values combined with values from
configuration file. Use --default to see configuration embedded into the program.
`,
	}
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	kind, data, err := "actual", []byte(nil), error(nil)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().First()
	if fname == "" {
		env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", "STDOUT"))
		_, err = os.Stdout.Write(data)
	} else {
		env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", fname))
		err = os.WriteFile(fname, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
