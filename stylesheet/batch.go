package stylesheet

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// CompileAll compiles independent sheets concurrently with at most workers
// running at once (no limit when workers <= 0). Results are positional; a
// sheet that failed leaves a nil result and contributes to the combined
// error.
func CompileAll(ctx context.Context, sheets []*StyleSheet, opts Options, workers int) ([]*Result, error) {
	results := make([]*Result, len(sheets))
	errs := make([]error, len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, sheet := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			res, err := sheet.Compile(opts)
			if err != nil {
				errs[i] = fmt.Errorf("sheet %d: %w", i, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// goroutines never fail, errors are collected per sheet
	_ = g.Wait()
	return results, multierr.Combine(errs...)
}
