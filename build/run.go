// Package build drives batch compilation: it finds snapshot documents,
// compiles them concurrently and writes style sheets, class maps and
// bundles.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylec/archive"
	"stylec/buildcache"
	"stylec/classmap"
	"stylec/config"
	"stylec/snapshot"
	"stylec/state"
	"stylec/stylesheet"
)

// job follows one source through the pipeline.
type job struct {
	index int
	src   source
	snap  *snapshot.Snapshot
	sheet *stylesheet.StyleSheet
	key   string
	mode  config.CompileMode

	// either fresh compile result or cached entry
	res    *stylesheet.Result
	cached bool
	entry  buildcache.Entry

	output string
}

func (j *job) values() Values {
	hash := j.key
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return Values{
		Name:   j.snap.Name,
		Source: j.src.stem(),
		Dir:    j.src.dir(),
		Mode:   j.mode.String(),
		Index:  j.index,
		Hash:   hash,
	}
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := applyFlags(cmd, env.Cfg, log); err != nil {
		return err
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if err := env.Prepare(); err != nil {
		return fmt.Errorf("unable to prepare compile engine: %w", err)
	}
	defer func() {
		if er := env.Release(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to release build cache: %w", er))
		}
	}()

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("mode", env.Cfg.Engine.Mode))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, cmd.String("bundle"), env, log)
}

// applyFlags lets command line override configuration.
func applyFlags(cmd *cli.Command, cfg *config.Config, log *zap.Logger) error {
	if cmd.IsSet("mode") {
		mode, err := config.ParseCompileMode(cmd.String("mode"))
		if err != nil {
			return fmt.Errorf("unknown compile mode requested: %w", err)
		}
		cfg.Engine.Mode = mode
	}
	if cmd.IsSet("classes") {
		f, err := config.ParseClassMapFmt(cmd.String("classes"))
		if err != nil {
			log.Warn("Unknown class map format requested, switching to json", zap.Error(err))
			f = config.ClassMapFmtJson
		}
		cfg.Output.ClassMap = f
	}
	if bps := cmd.StringSlice("breakpoint"); len(bps) > 0 {
		cfg.Engine.Breakpoints = bps
	}
	if ids := cmd.StringSlice("atomic-rule"); len(ids) > 0 {
		cfg.Engine.AtomicRules = ids
	}
	if cmd.Bool("no-prefixes") {
		cfg.Engine.IncludePrefixes = false
	}
	if cmd.Bool("no-merge") {
		cfg.Engine.MergeShorthands = false
	}
	if cmd.IsSet("assets") {
		cfg.Assets.Dir = cmd.String("assets")
	}
	if cmd.IsSet("workers") {
		cfg.Output.Workers = int(cmd.Int("workers"))
	}
	return nil
}

func compileOptions(cfg *config.EngineConfig) stylesheet.Options {
	return stylesheet.Options{
		Mode:             cfg.Mode.Mode(),
		IncludePrefixes:  cfg.IncludePrefixes,
		MergeShorthands:  cfg.MergeShorthands,
		BreakpointFilter: cfg.Breakpoints,
		AtomicRules:      cfg.AtomicRules,
	}
}

// process handles the core compile logic independently of CLI framework.
func process(ctx context.Context, src, dst, bundle string, env *state.LocalEnv, log *zap.Logger) error {
	sources, err := collect(ctx, src, log)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Warn("No snapshots found", zap.String("source", src))
		return nil
	}

	opts := compileOptions(&env.Cfg.Engine)
	optsKey := strings.Join([]string{opts.Key(), env.Cfg.Output.ClassMap.String(), assetsSignature(env)}, "|")

	var (
		errs    error
		jobs    []*job
		pending []*job
	)
	for i, s := range sources {
		j, err := prepare(i, s, env, optsKey)
		if err != nil {
			log.Error("Unable to process snapshot", zap.String("file", s.origin), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		j.output = buildOutputName(j, &env.Cfg.Output, env.NoDirs, log)
		jobs = append(jobs, j)
		if !j.cached {
			pending = append(pending, j)
		}
	}

	if err := compile(ctx, pending, opts, env, log); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := newWriter(dst, bundle, env, log)
	if err != nil {
		return multierr.Append(errs, err)
	}
	written := 0
	for _, j := range jobs {
		if !j.cached && j.res == nil {
			continue
		}
		if err := w.write(j); err != nil {
			log.Error("Unable to write output", zap.String("file", j.src.origin), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", j.src.name, err))
			continue
		}
		written++
	}
	if err := w.close(); err != nil {
		errs = multierr.Append(errs, err)
	}

	log.Info("Style sheets ready", zap.Int("sources", len(sources)), zap.Int("written", written),
		zap.Int("compiled", len(pending)), zap.Int("cached", len(jobs)-len(pending)))
	if errs != nil {
		return fmt.Errorf("unable to build %d of %d snapshots: %w", len(sources)-written, len(sources), errs)
	}
	return nil
}

// prepare loads snapshot and either finds its output in the build cache or
// builds a style sheet ready for compilation.
func prepare(index int, s source, env *state.LocalEnv, optsKey string) (*job, error) {
	snap, err := snapshot.Load(bytes.NewReader(s.data))
	if err != nil {
		return nil, err
	}
	if snap.Name == "" {
		snap.Name = s.stem()
	}
	j := &job{
		index: index,
		src:   s,
		snap:  snap,
		mode:  env.Cfg.Engine.Mode,
		key:   buildcache.Key(s.data, optsKey, env.Engine.Tables()),
	}

	if env.Cache != nil {
		entry, found, err := env.Cache.Get(j.key)
		if err != nil {
			env.Log.Warn("Build cache is not available", zap.Error(err))
		} else if found {
			j.cached, j.entry = true, entry
			return j, nil
		}
	}

	if env.Assets != nil {
		snap.UseFonts(env.Assets)
	}
	j.sheet = stylesheet.New(env.Log, env.Engine)
	if err := snap.Apply(j.sheet); err != nil {
		return nil, err
	}
	return j, nil
}

// compile runs pending jobs on the worker pool, encodes class maps and
// fills the build cache.
func compile(ctx context.Context, pending []*job, opts stylesheet.Options, env *state.LocalEnv, log *zap.Logger) error {
	if len(pending) == 0 {
		return nil
	}
	sheets := make([]*stylesheet.StyleSheet, len(pending))
	for i, j := range pending {
		sheets[i] = j.sheet
	}
	workers := env.Cfg.Output.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	results, errs := stylesheet.CompileAll(ctx, sheets, opts, workers)
	for i, j := range pending {
		res := results[i]
		if res == nil {
			continue
		}
		j.res = res
		for _, d := range res.Diagnostics {
			log.Warn("Declaration problem", zap.String("sheet", j.snap.Name), zap.Stringer("diagnostic", d))
		}

		j.entry = buildcache.Entry{CSS: res.CSS}
		if len(res.Classes) > 0 && env.Cfg.Output.ClassMap != config.ClassMapFmtNone {
			data, err := encodeClassMap(j.snap.Name, res, env.Cfg.Output.ClassMap)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", j.src.name, err))
				j.res = nil
				continue
			}
			j.entry.ClassMap = string(data)
		}
		if env.Cache != nil {
			if err := env.Cache.Put(j.key, j.entry); err != nil {
				log.Warn("Unable to store build result", zap.String("sheet", j.snap.Name), zap.Error(err))
			}
		}
		if env.Rpt != nil {
			env.Rpt.StoreData(fmt.Sprintf("dump/%s.txt", j.output), []byte(j.sheet.Dump()))
		}
	}
	return errs
}

func encodeClassMap(name string, res *stylesheet.Result, f config.ClassMapFmt) ([]byte, error) {
	format, err := classmap.FormatFromPath("classes" + f.Ext())
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := classmap.FromResult(name, res).Write(buf, format); err != nil {
		return nil, fmt.Errorf("unable to encode class map: %w", err)
	}
	return buf.Bytes(), nil
}

// assetsSignature changes whenever resolved asset URLs change.
func assetsSignature(env *state.LocalEnv) string {
	if env.Assets == nil {
		return ""
	}
	var b strings.Builder
	for _, id := range env.Assets.IDs() {
		a, _ := env.Assets.Lookup(id)
		b.WriteString(id)
		b.WriteByte('=')
		b.WriteString(a.URL)
		b.WriteByte(';')
	}
	return b.String()
}

// writer puts outputs either into destination directory or into a bundle.
type writer struct {
	dst    string
	env    *state.LocalEnv
	log    *zap.Logger
	bundle *archive.Bundle
}

func newWriter(dst, bundle string, env *state.LocalEnv, log *zap.Logger) (*writer, error) {
	w := &writer{dst: dst, env: env, log: log}
	if bundle == "" {
		return w, nil
	}
	if !filepath.IsAbs(bundle) {
		bundle = filepath.Join(dst, bundle)
	}
	if err := w.prepareTarget(bundle); err != nil {
		return nil, err
	}
	b, err := archive.NewBundle(bundle, env.Cfg.Output.Bundle.FixZip)
	if err != nil {
		return nil, err
	}
	w.bundle = b
	return w, nil
}

func (w *writer) write(j *job) error {
	files := []struct {
		name string
		data []byte
	}{
		{j.output + ".css", []byte(j.entry.CSS)},
	}
	if j.entry.ClassMap != "" {
		files = append(files, struct {
			name string
			data []byte
		}{j.output + ".classes" + w.env.Cfg.Output.ClassMap.Ext(), []byte(j.entry.ClassMap)})
	}

	if w.bundle != nil {
		for _, f := range files {
			if err := w.bundle.Add(f.name, f.data, j.src.modified); err != nil {
				return err
			}
		}
		cfg := w.env.Cfg.Output.Bundle
		if cfg.Sources {
			if err := w.bundle.Add("sources/"+j.src.name, j.src.data, j.src.modified); err != nil {
				return err
			}
		}
		if cfg.Dumps && j.sheet != nil {
			if err := w.bundle.Add("dump/"+j.output+".txt", []byte(j.sheet.Dump()), time.Now()); err != nil {
				return err
			}
		}
		w.log.Debug("Bundled", zap.String("from", j.src.origin), zap.String("to", files[0].name), zap.Bool("cached", j.cached))
		return nil
	}

	for _, f := range files {
		name := filepath.Join(w.dst, filepath.FromSlash(f.name))
		if err := w.prepareTarget(name); err != nil {
			return err
		}
		if err := os.WriteFile(name, f.data, 0644); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		if w.env.Rpt != nil {
			w.env.Rpt.Store("result/"+f.name, name)
		}
	}
	w.log.Info("Compiled", zap.String("from", j.src.origin), zap.String("to", files[0].name), zap.Bool("cached", j.cached))
	return nil
}

// prepareTarget checks existing file and creates directories.
func (w *writer) prepareTarget(name string) error {
	if _, err := os.Stat(name); err == nil {
		if !w.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		w.log.Warn("Overwriting existing file", zap.String("file", name))
		return os.Remove(name)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func (w *writer) close() error {
	if w.bundle == nil {
		return nil
	}
	if err := w.bundle.Close(); err != nil {
		return err
	}
	w.log.Info("Bundle ready", zap.Int("entries", w.bundle.Len()))
	if w.env.Rpt != nil {
		w.env.Rpt.Store("result/bundle.zip", w.bundle.Target())
	}
	return nil
}
