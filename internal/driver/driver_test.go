package driver

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/types"
)

func testModule() *ast.Module {
	fib := ast.Fn("fib", types.Int,
		[]ast.Param{{Name: "n", Type: types.Int}},
		ast.Body(
			ast.If(ast.Binary(ast.OpLe, ast.Ident("n"), ast.Int(1)),
				ast.Return(ast.Ident("n")), nil),
			ast.Return(ast.Binary(ast.OpAdd,
				ast.Call("fib", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1))),
				ast.Call("fib", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(2))))),
		))
	max := ast.Fn("max", types.Int,
		[]ast.Param{{Name: "a", Type: types.Int}, {Name: "b", Type: types.Int}},
		ast.Body(
			ast.If(ast.Binary(ast.OpGt, ast.Ident("a"), ast.Ident("b")),
				ast.Return(ast.Ident("a")), nil),
			ast.Return(ast.Ident("b")),
		))
	main := ast.Fn("main", types.Int, nil,
		ast.Body(
			ast.ExprStmt(ast.Call("print",
				ast.Call("max", ast.Call("fib", ast.Int(10)), ast.Int(42)))),
			ast.Return(ast.Int(0)),
		))
	return &ast.Module{Name: "demo", Funcs: []*ast.FuncDecl{fib, max, main}}
}

func encodeModule(t *testing.T, m *ast.Module) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := ast.EncodeDocument(&buf, m); err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}
	return buf.Bytes()
}

func bagHas(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestSerialAndParallelIdentical(t *testing.T) {
	ctx := context.Background()

	serial, err := Lower(ctx, testModule(), Options{Jobs: 1})
	if err != nil {
		t.Fatalf("serial Lower: %v", err)
	}
	if serial.Text == "" || !strings.Contains(serial.Text, "define i32 @fib(i32 %a.n)") {
		t.Fatalf("unexpected output:\n%s", serial.Text)
	}

	// The schedule must not leak into the output.
	for i := 0; i < 10; i++ {
		parallel, err := Lower(ctx, testModule(), Options{Jobs: 8})
		if err != nil {
			t.Fatalf("parallel Lower: %v", err)
		}
		if parallel.Text != serial.Text {
			t.Fatalf("parallel output differs from serial:\n--- serial ---\n%s\n--- parallel ---\n%s",
				serial.Text, parallel.Text)
		}
	}
}

func TestLowerDocumentRoundTrip(t *testing.T) {
	data := encodeModule(t, testModule())
	res, err := LowerDocument(context.Background(), data, Options{Jobs: 1})
	if err != nil {
		t.Fatalf("LowerDocument: %v", err)
	}
	if res.Module == nil || res.Module.Name != "demo" {
		t.Fatalf("module not decoded: %+v", res.Module)
	}
	if !strings.Contains(res.Text, "; module demo") {
		t.Fatalf("missing module header:\n%s", res.Text)
	}
}

func TestBadVersionIsDiagnosed(t *testing.T) {
	var buf bytes.Buffer
	doc := ast.Document{Version: 99, Module: &ast.Module{Name: "x"}}
	if err := msgpack.NewEncoder(&buf).Encode(doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := LowerDocument(context.Background(), buf.Bytes(), Options{})
	if err == nil {
		t.Fatal("expected version error")
	}
	if !bagHas(res.Bag, diag.DrvBadVersion) {
		t.Fatalf("want DrvBadVersion in bag, got %+v", res.Bag.Items())
	}
}

func TestGarbageInputIsDiagnosed(t *testing.T) {
	res, err := LowerDocument(context.Background(), []byte("definitely not msgpack"), Options{})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !bagHas(res.Bag, diag.DrvBadInput) {
		t.Fatalf("want DrvBadInput in bag, got %+v", res.Bag.Items())
	}
}

func TestLoweringErrorYieldsNoModule(t *testing.T) {
	m := &ast.Module{Name: "bad", Funcs: []*ast.FuncDecl{
		ast.Fn("f", types.Int, nil, ast.Body(
			ast.Return(ast.Ident("ghost")),
		)),
	}}
	res, err := Lower(context.Background(), m, Options{Jobs: 1})
	if err == nil {
		t.Fatal("expected lowering error")
	}
	if res.Module != nil || res.Text != "" {
		t.Fatal("no partial IR may escape a failed run")
	}
	if !bagHas(res.Bag, diag.LowerUnresolvedSymbol) {
		t.Fatalf("want LowerUnresolvedSymbol, got %+v", res.Bag.Items())
	}
}

func TestDiagnosticsCollectedAcrossFunctions(t *testing.T) {
	m := &ast.Module{Name: "bad", Funcs: []*ast.FuncDecl{
		ast.Fn("f", types.Int, nil, ast.Body(ast.Return(ast.Ident("ghost")))),
		ast.Fn("g", types.Void, nil, ast.Body(ast.ExprStmt(ast.Call("missing")))),
	}}
	for _, jobs := range []int{1, 4} {
		res, err := Lower(context.Background(), m, Options{Jobs: jobs})
		if err == nil {
			t.Fatalf("jobs=%d: expected error", jobs)
		}
		if !bagHas(res.Bag, diag.LowerUnresolvedSymbol) || !bagHas(res.Bag, diag.LowerUnknownCallee) {
			t.Fatalf("jobs=%d: both functions must be diagnosed, got %+v", jobs, res.Bag.Items())
		}
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	data := encodeModule(t, testModule())

	first, err := LowerDocument(context.Background(), data, Options{Jobs: 1, Cache: cache})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first run must miss")
	}

	second, err := LowerDocument(context.Background(), data, Options{Jobs: 1, Cache: cache})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run must hit")
	}
	if second.Text != first.Text {
		t.Fatalf("cached text differs:\n%s\nvs\n%s", second.Text, first.Text)
	}
}

func TestDiskCacheMissOnDifferentInput(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	a := DigestOf([]byte("one"))
	if err := cache.Put(a, &CachePayload{Schema: cacheSchemaVersion, Text: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out CachePayload
	if ok, err := cache.Get(DigestOf([]byte("two")), &out); err != nil || ok {
		t.Fatalf("want miss, got ok=%v err=%v", ok, err)
	}
	if ok, err := cache.Get(a, &out); err != nil || !ok || out.Text != "x" {
		t.Fatalf("want hit with text, got ok=%v err=%v out=%+v", ok, err, out)
	}
}
