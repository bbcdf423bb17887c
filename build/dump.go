package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylec/snapshot"
	"stylec/state"
	"stylec/stylesheet"
)

// Dump prints rule tree of a single snapshot. When compile is requested the
// tree reflects sheet state after compilation and diagnostics are listed.
func Dump(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dump")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if err := applyFlags(cmd, env.Cfg, log); err != nil {
		return err
	}
	if err := env.Prepare(); err != nil {
		return fmt.Errorf("unable to prepare compile engine: %w", err)
	}
	defer env.Release()

	out := os.Stdout
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}
	return dumpSnapshot(out, src, cmd.Bool("compile"), env, log)
}

// dumpSnapshot writes rule tree of snapshot src to w.
func dumpSnapshot(w io.Writer, src string, compile bool, env *state.LocalEnv, log *zap.Logger) error {
	snap, err := snapshot.LoadFile(src)
	if err != nil {
		return err
	}
	if env.Assets != nil {
		snap.UseFonts(env.Assets)
	}
	sheet := stylesheet.New(env.Log, env.Engine)
	if err := snap.Apply(sheet); err != nil {
		return fmt.Errorf("unable to apply snapshot: %w", err)
	}

	if compile {
		res, err := sheet.Compile(compileOptions(&env.Cfg.Engine))
		if err != nil {
			return fmt.Errorf("unable to compile snapshot: %w", err)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "# %s\n", d)
		}
	}

	tree := sheet.Dump()
	env.Rpt.StoreData(fmt.Sprintf("dump/%s.txt", snap.Name), []byte(tree))
	log.Debug("Dumping sheet", zap.String("name", snap.Name), zap.Int("rules", sheet.Len()))
	_, err = fmt.Fprint(w, tree)
	return err
}
