package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/ir"
)

// lowerFuncs lowers every function of the module against the shared
// read-only signature and string tables. Results, bags and errors land in
// per-index slots, so no mutex is needed and declaration order survives any
// schedule. Lowering does not stop at the first failing function: each
// function's diagnostics are collected, and the caller picks the first error
// in declaration order.
func lowerFuncs(ctx context.Context, m *ast.Module, sigs *ir.Signatures, strs *ir.StrTable, opts Options) ([]*ir.Func, []*diag.Bag, []error) {
	n := len(m.Funcs)
	funcs := make([]*ir.Func, n)
	bags := make([]*diag.Bag, n)
	errs := make([]error, n)

	lowerOne := func(i int) {
		bag := diag.NewBag(opts.maxDiagnostics())
		bags[i] = bag
		fn, err := ir.LowerFunc(m.Funcs[i], ir.FuncID(i), sigs, strs, &diag.BagReporter{Bag: bag})
		funcs[i] = fn
		errs[i] = err
	}

	jobs := opts.jobs()
	if jobs <= 1 || n < 2 {
		for i := range m.Funcs {
			lowerOne(i)
		}
		return funcs, bags, errs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i := range m.Funcs {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			lowerOne(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancellation can leave slots unfilled; give them empty bags so
		// the caller's merge loop stays index-safe.
		for i := range errs {
			if bags[i] == nil {
				bags[i] = diag.NewBag(opts.maxDiagnostics())
				errs[i] = err
			}
		}
	}
	return funcs, bags, errs
}
