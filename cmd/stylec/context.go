package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylec/config"
	"stylec/misc"
	"stylec/state"
)

// initializeAppContext loads configuration, opens debug report and sets up
// logging. It runs after command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := state.EnvFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		storeConfiguration(env, configFile)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if configFile == "" {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// storeConfiguration puts processed configuration and referenced tables into
// debug report.
func storeConfiguration(env *state.LocalEnv, configFile string) {
	name := "config/default.yaml"
	if configFile != "" {
		name = "config/" + filepath.Base(configFile)
	}
	if data, err := config.Dump(env.Cfg); err == nil {
		env.Rpt.StoreData(name, data)
	}
	if t := env.Cfg.Engine.ShorthandTable; t != "" {
		env.Rpt.Store("config/shorthand/"+filepath.Base(t), t)
	}
	if t := env.Cfg.Engine.PrefixTable; t != "" {
		env.Rpt.Store("config/prefix/"+filepath.Base(t), t)
	}
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	if er := env.Release(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close build cache: %w", er))
	}

	// log is synced after this point, so it could go into report. Errors
	// must be reported directly to stderr from now on
	env.RestoreStdLog()

	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	if env.Cfg != nil {
		err = multierr.Append(err, removeEmptyPanicLog(env.Cfg.Logging.FileLogger.Destination))
	}
	return err
}

func removeEmptyPanicLog(logFile string) error {
	if logFile == "" {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})

	fname := filepath.Join(filepath.Dir(logFile), misc.GetAppName()+"-panic.log")
	if fi, err := os.Stat(fname); err != nil || fi.Size() != 0 {
		return nil
	}
	if err := os.Remove(fname); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, err)
	}
	return nil
}

// errorHandler replaces urfave/cli exit handling: subcommands return regular
// errors, which are logged here before application context is destroyed.
type errorHandler struct {
	handled bool
}

func (h *errorHandler) exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		h.handled = true
	}
}

// usageErrorHandler leaves reporting to exitErrHandler or main.
func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Warn("Unknown command, nothing to do", zap.String("command", name))
		return
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q, nothing to do\n", name)
}
