package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/ir"
	"sarac/internal/observ"
	"sarac/internal/source"
)

// Options controls a lowering run.
type Options struct {
	// Jobs bounds the number of functions lowered concurrently. Values
	// below 2 select the serial path. Zero means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the merged diagnostic bag.
	MaxDiagnostics int
	// ModuleName overrides the name carried by the AST document.
	ModuleName string
	// Cache, when non-nil, is consulted before lowering and updated after.
	Cache *DiskCache
	// Timer, when non-nil, records per-phase durations.
	Timer *observ.Timer
}

func (o Options) jobs() int {
	if o.Jobs == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// Result is the outcome of a lowering run. On failure Module and Text are
// empty and Bag holds the diagnostics; no partial IR escapes.
type Result struct {
	Module   *ir.Module
	Text     string
	Bag      *diag.Bag
	CacheHit bool
}

// LowerFile reads an AST document from disk and lowers it.
func LowerFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		bag := diag.NewBag(opts.maxDiagnostics())
		bag.Add(diag.New(diag.SevError, diag.DrvBadInput, source.Span{},
			"failed to read "+path+": "+err.Error()))
		return &Result{Bag: bag}, err
	}
	return LowerDocument(ctx, data, opts)
}

// LowerDocument decodes a versioned msgpack AST document and lowers it.
// Decode failures are mapped onto driver diagnostic codes so callers can
// render them alongside lowering diagnostics.
func LowerDocument(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if opts.Cache != nil {
		key := DigestOf(data)
		var payload CachePayload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
			return &Result{
				Text:     payload.Text,
				Bag:      diag.NewBag(opts.maxDiagnostics()),
				CacheHit: true,
			}, nil
		}
	}

	decode := opts.Timer.Begin("decode")
	m, err := ast.DecodeDocument(bytes.NewReader(data))
	opts.Timer.End(decode, "")
	if err != nil {
		bag := diag.NewBag(opts.maxDiagnostics())
		code := diag.DrvBadInput
		if errors.Is(err, ast.ErrBadVersion) {
			code = diag.DrvBadVersion
		}
		bag.Add(diag.New(diag.SevError, code, source.Span{}, err.Error()))
		return &Result{Bag: bag}, err
	}

	res, err := Lower(ctx, m, opts)
	if err == nil && opts.Cache != nil {
		// Cache failures never fail the run.
		_ = opts.Cache.Put(DigestOf(data), &CachePayload{
			Schema: cacheSchemaVersion,
			Name:   res.Module.Name,
			Text:   res.Text,
		})
	}
	return res, err
}

// Lower runs the two collection passes, lowers every function, validates the
// assembled module and renders its text. Functions are lowered independently:
// with jobs > 1 they run concurrently, each with its own lowerer and
// diagnostic bag, and the per-index result slots keep the merged output
// byte-identical to the serial path.
func Lower(ctx context.Context, m *ast.Module, opts Options) (*Result, error) {
	if opts.ModuleName != "" {
		m.Name = opts.ModuleName
	}
	bag := diag.NewBag(opts.maxDiagnostics())

	collect := opts.Timer.Begin("collect")
	sigs, err := ir.CollectSignatures(m, &diag.BagReporter{Bag: bag})
	if err != nil {
		opts.Timer.End(collect, "")
		return &Result{Bag: bag}, err
	}
	strs := ir.CollectStrings(m)
	opts.Timer.End(collect, "")

	lower := opts.Timer.Begin("lower")
	funcs, bags, errs := lowerFuncs(ctx, m, sigs, strs, opts)
	opts.Timer.End(lower, fmt.Sprintf("%d funcs", len(m.Funcs)))
	for i := range m.Funcs {
		bag.Merge(bags[i])
	}
	for _, e := range errs {
		if e != nil {
			// First failure in declaration order, schedule-independent.
			return &Result{Bag: bag}, e
		}
	}

	mod := ir.AssembleModule(m.Name, funcs, strs)
	validate := opts.Timer.Begin("validate")
	err = ir.Validate(mod)
	opts.Timer.End(validate, "")
	if err != nil {
		return &Result{Bag: bag}, fmt.Errorf("internal error: invalid ir: %w", err)
	}

	render := opts.Timer.Begin("render")
	text := ir.ModuleText(mod)
	opts.Timer.End(render, "")
	return &Result{Module: mod, Text: text, Bag: bag}, nil
}
