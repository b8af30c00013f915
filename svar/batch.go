// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package svar

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SolveBatch solves independent problems in parallel, one per worker,
// with at most runtime.NumCPU() workers. results[i] belongs to problems[i].
// The first error (validation, strict policies, or ctx cancellation)
// stops the remaining problems from starting and is returned.
// The Minimizer in opts is shared between workers and must be safe for
// concurrent use; the default SQP is.
func SolveBatch(ctx context.Context, problems []Problem, opts ...Option) ([]*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]*Result, len(problems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range problems {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := solve(p.Omega, p.ShortRun, p.LongRun, p.F, o)
			if err != nil {
				return fmt.Errorf("problem %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
