package ir

import (
	"strings"
	"testing"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/types"
)

func lowerModule(t *testing.T, m *ast.Module) (*Module, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(64)
	mod, err := LowerModule(m, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("LowerModule: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate: %v\n%s", err, ModuleText(mod))
	}
	return mod, bag
}

func lowerExpectError(t *testing.T, m *ast.Module, code diag.Code) *diag.Bag {
	t.Helper()
	bag := diag.NewBag(64)
	mod, err := LowerModule(m, diag.BagReporter{Bag: bag})
	if err == nil {
		t.Fatalf("LowerModule succeeded, want %v error\n%s", code, ModuleText(mod))
	}
	if mod != nil {
		t.Fatal("failed lowering must not return a partial module")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == code && d.Severity == diag.SevError {
			found = true
		}
	}
	if !found {
		t.Fatalf("no %v diagnostic reported, got %+v", code, bag.Items())
	}
	return bag
}

func fibModule() *ast.Module {
	return &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("fib", types.Int,
				[]ast.Param{{Name: "n", Type: types.Int}},
				ast.Body(
					ast.If(ast.Binary(ast.OpLe, ast.Ident("n"), ast.Int(1)),
						ast.Return(ast.Ident("n")),
						ast.Return(ast.Binary(ast.OpAdd,
							ast.Call("fib", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1))),
							ast.Call("fib", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(2))),
						)),
					),
				),
			),
		},
	}
}

const fibText = `declare void @print(...)

define i32 @fib(i32 %a.n) {
entry:
  %0 = alloca i32
  store i32 %a.n, i32* %0
  %1 = load i32, i32* %0
  %2 = icmp sle i32 %1, 1
  br i1 %2, label %bb1, label %bb2
bb1:
  %3 = load i32, i32* %0
  ret i32 %3
bb2:
  %4 = load i32, i32* %0
  %5 = sub i32 %4, 1
  %6 = call i32 @fib(i32 %5)
  %7 = load i32, i32* %0
  %8 = sub i32 %7, 2
  %9 = call i32 @fib(i32 %8)
  %10 = add i32 %6, %9
  ret i32 %10
}
`

func TestLowerFib(t *testing.T) {
	mod, bag := lowerModule(t, fibModule())
	if bag.HasWarnings() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if got := ModuleText(mod); got != fibText {
		t.Errorf("fib lowering mismatch:\n--- got ---\n%s--- want ---\n%s", got, fibText)
	}
}

func TestLowerDeterministic(t *testing.T) {
	first, _ := lowerModule(t, fibModule())
	second, _ := lowerModule(t, fibModule())
	if ModuleText(first) != ModuleText(second) {
		t.Error("lowering the same tree twice must produce byte-identical output")
	}
}

func TestMutualRecursionResolvesForward(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("is_even", types.Int,
				[]ast.Param{{Name: "n", Type: types.Int}},
				ast.Body(
					ast.If(ast.Binary(ast.OpEq, ast.Ident("n"), ast.Int(0)),
						ast.Return(ast.Int(1)),
						ast.Return(ast.Call("is_odd", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1)))),
					),
				),
			),
			ast.Fn("is_odd", types.Int,
				[]ast.Param{{Name: "n", Type: types.Int}},
				ast.Body(
					ast.If(ast.Binary(ast.OpEq, ast.Ident("n"), ast.Int(0)),
						ast.Return(ast.Int(0)),
						ast.Return(ast.Call("is_even", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1)))),
					),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	if !strings.Contains(text, "call i32 @is_odd(") || !strings.Contains(text, "call i32 @is_even(") {
		t.Errorf("forward references must lower to calls:\n%s", text)
	}
}

func TestDegenerateIfKeepsTwoTargets(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(
					ast.If(ast.Int(1), ast.Return(ast.Int(0)), nil),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	if !strings.Contains(text, "br i1 %0, label %bb1, label %bb1") {
		t.Errorf("trivially-true conditional must keep a two-target branch:\n%s", text)
	}
	if strings.Contains(text, "br label %bb1") {
		t.Errorf("degenerate branch must not collapse to an unconditional branch:\n%s", text)
	}
}

func TestUnreachableCodeStillEmitted(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(
					ast.If(ast.Int(1), ast.Return(ast.Int(1)), nil),
					ast.Return(ast.Int(2)),
				),
			),
		},
	}
	mod, bag := lowerModule(t, m)
	warned := false
	for _, d := range bag.Items() {
		if d.Code == diag.LowerUnreachableCode && d.Severity == diag.SevWarning {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected an unreachable-code warning, got %+v", bag.Items())
	}
	text := ModuleText(mod)
	if !strings.Contains(text, "bb2:\n  ret i32 2") {
		t.Errorf("unreachable code must still be lowered and emitted:\n%s", text)
	}
}

func TestSynthesizedReturnOnFallOff(t *testing.T) {
	// shift_test: the false edge of the conditional reaches the end of the
	// function with no explicit return.
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("shift_test", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}},
				ast.Body(
					ast.Decl("b", types.Int, ast.Binary(ast.OpShl, ast.Ident("a"), ast.Int(2))),
					ast.If(ast.Binary(ast.OpGt, ast.Ident("b"), ast.Int(0)),
						ast.Return(ast.Ident("b")), nil),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	if !strings.Contains(text, "shl i32") {
		t.Errorf("missing shift instruction:\n%s", text)
	}
	if !strings.Contains(text, "ret i32 0") {
		t.Errorf("fall-off path must synthesize a zero return:\n%s", text)
	}
}

func TestVoidFallOffReturnsVoid(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("noop", types.Void, nil, ast.Body()),
		},
	}
	mod, _ := lowerModule(t, m)
	if !strings.Contains(ModuleText(mod), "ret void") {
		t.Errorf("void fall-off must return void:\n%s", ModuleText(mod))
	}
}

func TestForLowersLikeWhile(t *testing.T) {
	forFn := ast.Fn("loop", types.Int,
		[]ast.Param{{Name: "n", Type: types.Int}},
		ast.Body(
			ast.For(nil,
				ast.Binary(ast.OpGt, ast.Ident("n"), ast.Int(0)),
				ast.Assign("n", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1))),
				ast.Block(ast.ExprStmt(ast.Call("print", ast.Ident("n")))),
			),
			ast.Return(ast.Int(0)),
		),
	)
	whileFn := ast.Fn("loop", types.Int,
		[]ast.Param{{Name: "n", Type: types.Int}},
		ast.Body(
			ast.While(
				ast.Binary(ast.OpGt, ast.Ident("n"), ast.Int(0)),
				ast.Block(
					ast.ExprStmt(ast.Call("print", ast.Ident("n"))),
					ast.Assign("n", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1))),
				),
			),
			ast.Return(ast.Int(0)),
		),
	)

	forMod, _ := lowerModule(t, &ast.Module{Funcs: []*ast.FuncDecl{forFn}})
	whileMod, _ := lowerModule(t, &ast.Module{Funcs: []*ast.FuncDecl{whileFn}})
	forText, whileText := ModuleText(forMod), ModuleText(whileMod)
	if forText != whileText {
		t.Errorf("for with empty init must lower like the equivalent while:\n--- for ---\n%s--- while ---\n%s", forText, whileText)
	}
	if !strings.Contains(forText, "br label %bb1") {
		t.Errorf("loop must branch back to its condition block:\n%s", forText)
	}
}

func TestForWithoutCondBranchesOnTrue(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("spin", types.Int, nil,
				ast.Body(
					ast.For(nil, nil, nil, ast.Block(ast.Return(ast.Int(1)))),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	if !strings.Contains(ModuleText(mod), "br i1 1, label %bb2, label %bb3") {
		t.Errorf("condition-less for must branch on constant true:\n%s", ModuleText(mod))
	}
}

func TestPrintCallWithMixedArguments(t *testing.T) {
	m := &ast.Module{
		Name: "hello",
		Funcs: []*ast.FuncDecl{
			ast.Fn("main", types.Int, nil,
				ast.Body(
					ast.Decl("x", types.Int, ast.Int(42)),
					ast.ExprStmt(ast.Call("print",
						ast.Str("x = "), ast.Ident("x"), ast.Char('\n'), ast.Float(2.5))),
					ast.Return(ast.Int(0)),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	for _, want := range []string{
		"; module hello",
		`@.str.0 = private constant [5 x i8] c"x = \00"`,
		"declare void @print(...)",
		"call void @print(i8* @.str.0, i32 %1, i8 10, i32 2)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestCharWidensToInt(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(
					ast.Decl("c", types.Char, ast.Char('A')),
					ast.Return(ast.Binary(ast.OpAdd, ast.Ident("c"), ast.Int(1))),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	if !strings.Contains(text, "alloca i8") || !strings.Contains(text, "store i8 65") {
		t.Errorf("char local must live in an i8 slot:\n%s", text)
	}
	if !strings.Contains(text, "sext i8 %1 to i32") {
		t.Errorf("char operand in int arithmetic must widen:\n%s", text)
	}
}

func TestIntNarrowsToCharOnAssignment(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Void,
				[]ast.Param{{Name: "n", Type: types.Int}},
				ast.Body(
					ast.Decl("c", types.Char, nil),
					ast.Assign("c", ast.Ident("n")),
					ast.Return(nil),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	if !strings.Contains(ModuleText(mod), "trunc i32 %2 to i8") {
		t.Errorf("int-to-char assignment must truncate:\n%s", ModuleText(mod))
	}
}

func TestRegistersStrictlyIncreasing(t *testing.T) {
	mod, _ := lowerModule(t, fibModule())
	f := mod.Func("fib")
	prev := NoReg
	for _, b := range f.Blocks {
		for i := range b.Instrs {
			dst := b.Instrs[i].Dst
			if !dst.IsValid() {
				continue
			}
			if dst <= prev {
				t.Fatalf("register %%%d defined after %%%d", int32(dst), int32(prev))
			}
			prev = dst
		}
	}
	if int32(prev) != f.NumRegs-1 {
		t.Fatalf("NumRegs = %d, last defined register %%%d", f.NumRegs, int32(prev))
	}
}

func TestStoresDefineNoRegister(t *testing.T) {
	mod, _ := lowerModule(t, fibModule())
	for _, f := range mod.Funcs {
		for _, b := range f.Blocks {
			for i := range b.Instrs {
				in := &b.Instrs[i]
				if in.Kind == InstrStore && in.Dst.IsValid() {
					t.Fatalf("%s: store defines %%%d", b.ID.Label(), int32(in.Dst))
				}
			}
		}
	}
}

// A loop whose body branches fills the loop's exit block after the inner
// if's blocks exist, so the exit block sits earlier in the layout than
// blocks holding lower-numbered registers. The module must still validate.
func TestNestedControlFlowValidates(t *testing.T) {
	m := &ast.Module{Funcs: []*ast.FuncDecl{
		ast.Fn("f", types.Int,
			[]ast.Param{{Name: "n", Type: types.Int}},
			ast.Body(
				ast.While(ast.Binary(ast.OpGt, ast.Ident("n"), ast.Int(0)),
					ast.Block(
						ast.If(ast.Binary(ast.OpGt, ast.Ident("n"), ast.Int(5)),
							ast.Block(ast.Assign("n", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(2)))),
							nil),
						ast.Assign("n", ast.Binary(ast.OpSub, ast.Ident("n"), ast.Int(1))),
					)),
				ast.Return(ast.Ident("n")),
			)),
	}}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)

	// Exit block bb3 holds the highest-numbered registers despite preceding
	// the if's then and merge blocks in the layout.
	if !strings.Contains(text, "bb3:\n  %9 = load i32, i32* %0\n  ret i32 %9") {
		t.Fatalf("loop exit block shape wrong:\n%s", text)
	}
	if !strings.Contains(text, "%6 = sub i32 %5, 2") {
		t.Fatalf("then branch shape wrong:\n%s", text)
	}
	if !strings.Contains(text, "bb5:\n  %7 = load i32, i32* %0") {
		t.Fatalf("merge block shape wrong:\n%s", text)
	}
	if !strings.Contains(text, "br label %bb1") {
		t.Fatalf("missing loop back-edge:\n%s", text)
	}
}

func TestDuplicateDeclarationFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(
					ast.Decl("x", types.Int, ast.Int(1)),
					ast.Decl("x", types.Int, ast.Int(2)),
					ast.Return(ast.Ident("x")),
				),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerDuplicateDeclaration)
}

func TestShadowingInNestedScope(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(
					ast.Decl("x", types.Int, ast.Int(1)),
					ast.Block(
						ast.Decl("x", types.Char, ast.Char('a')),
					),
					ast.Return(ast.Ident("x")),
				),
			),
		},
	}
	mod, bag := lowerModule(t, m)
	if bag.HasErrors() {
		t.Fatalf("shadowing must be legal: %+v", bag.Items())
	}
	f := mod.Func("f")
	if len(f.Slots) != 2 {
		t.Fatalf("both declarations need slots, got %d", len(f.Slots))
	}
	text := ModuleText(mod)
	if !strings.Contains(text, "alloca i32") || !strings.Contains(text, "alloca i8") {
		t.Errorf("hoisted allocas must cover nested scopes:\n%s", text)
	}
}

func TestDuplicateParameterFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}, {Name: "a", Type: types.Int}},
				ast.Body(ast.Return(ast.Int(0))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerDuplicateDeclaration)
}

func TestDuplicateFunctionFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil, ast.Body(ast.Return(ast.Int(0)))),
			ast.Fn("f", types.Int, nil, ast.Body(ast.Return(ast.Int(1)))),
		},
	}
	lowerExpectError(t, m, diag.LowerDuplicateDeclaration)
}

func TestUnresolvedIdentifierFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(ast.Return(ast.Ident("ghost"))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerUnresolvedSymbol)
}

func TestUnknownCalleeFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int, nil,
				ast.Body(ast.Return(ast.Call("missing"))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerUnknownCallee)
}

func TestShiftByFloatFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}},
				ast.Body(ast.Return(ast.Binary(ast.OpShl, ast.Ident("a"), ast.Float(1.5)))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerTypeMismatch)
}

func TestWrongArgumentCountFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("g", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}},
				ast.Body(ast.Return(ast.Ident("a"))),
			),
			ast.Fn("f", types.Int, nil,
				ast.Body(ast.Return(ast.Call("g", ast.Int(1), ast.Int(2)))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerTypeMismatch)
}

func TestReturnValueInVoidFunctionFails(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Void, nil,
				ast.Body(ast.Return(ast.Int(1))),
			),
		},
	}
	lowerExpectError(t, m, diag.LowerReturnMismatch)
}

func TestLogicalOperatorsLowerToI1(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}, {Name: "b", Type: types.Int}},
				ast.Body(
					ast.If(
						ast.Binary(ast.OpAnd,
							ast.Binary(ast.OpGt, ast.Ident("a"), ast.Int(0)),
							ast.Unary(ast.OpNot, ast.Binary(ast.OpEq, ast.Ident("b"), ast.Int(0)))),
						ast.Return(ast.Int(1)),
						ast.Return(ast.Int(0)),
					),
				),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	text := ModuleText(mod)
	for _, want := range []string{"xor i1", "and i1"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestUnaryNegation(t *testing.T) {
	m := &ast.Module{
		Funcs: []*ast.FuncDecl{
			ast.Fn("f", types.Int,
				[]ast.Param{{Name: "a", Type: types.Int}},
				ast.Body(ast.Return(ast.Unary(ast.OpNeg, ast.Ident("a")))),
			),
		},
	}
	mod, _ := lowerModule(t, m)
	if !strings.Contains(ModuleText(mod), "sub i32 0, %1") {
		t.Errorf("negation must lower to a subtraction from zero:\n%s", ModuleText(mod))
	}
}
