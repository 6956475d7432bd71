package ir

import (
	"fmt"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/source"
	"sarac/internal/types"
)

// PrintName is the variadic print built-in. It is pre-registered in every
// signature table; the runtime provides its implementation.
const PrintName = "print"

// Sig is one callable signature.
type Sig struct {
	Name     string
	Params   []types.Kind
	Ret      types.Kind
	Variadic bool
	Extern   bool
	Span     source.Span
}

// Signatures is the whole-module callable table. It is built in a read-only
// pre-pass and never written afterwards, which is what lets a function's
// body reference itself or any later function while it is being lowered,
// and lets independent functions lower in parallel against it.
type Signatures struct {
	byName map[string]*Sig
}

// CollectSignatures walks the module's function declarations into an
// immutable signature table. A function name declared twice is a fatal
// duplicate-declaration error.
func CollectSignatures(m *ast.Module, reporter diag.Reporter) (*Signatures, error) {
	sigs := &Signatures{byName: make(map[string]*Sig, len(m.Funcs)+1)}
	sigs.byName[PrintName] = &Sig{
		Name:     PrintName,
		Ret:      types.Void,
		Variadic: true,
		Extern:   true,
	}

	for _, fd := range m.Funcs {
		if prev, exists := sigs.byName[fd.Name]; exists {
			diag.ReportError(reporter, diag.LowerDuplicateDeclaration, fd.Span,
				fmt.Sprintf("function %q is already defined", fd.Name)).
				WithNote(prev.Span, "previous definition is here").
				Emit()
			return nil, fmt.Errorf("ir: function %q is already defined", fd.Name)
		}
		params := make([]types.Kind, len(fd.Params))
		for i, p := range fd.Params {
			params[i] = p.Type
		}
		sigs.byName[fd.Name] = &Sig{
			Name:   fd.Name,
			Params: params,
			Ret:    fd.Ret,
			Span:   fd.Span,
		}
	}
	return sigs, nil
}

// Lookup resolves a callee by name.
func (s *Signatures) Lookup(name string) (*Sig, bool) {
	sig, ok := s.byName[name]
	return sig, ok
}

// StrTable interns the string literals of a module. Like Signatures it is
// collected in a pre-pass and read-only during lowering.
type StrTable struct {
	byVal map[string]StrID
	vals  []string
}

// CollectStrings gathers every string literal in declaration order, so the
// constant numbering is deterministic for a given input.
func CollectStrings(m *ast.Module) *StrTable {
	t := &StrTable{byVal: make(map[string]StrID)}
	for _, fd := range m.Funcs {
		if fd.Body != nil {
			for _, s := range fd.Body.Stmts {
				t.collectStmt(s)
			}
		}
	}
	return t
}

func (t *StrTable) collectStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.StmtDecl:
		t.collectExpr(s.Decl.Init)
	case ast.StmtAssign:
		t.collectExpr(s.Assign.Value)
	case ast.StmtIf:
		t.collectExpr(s.If.Cond)
		t.collectStmt(s.If.Then)
		t.collectStmt(s.If.Else)
	case ast.StmtWhile:
		t.collectExpr(s.While.Cond)
		t.collectStmt(s.While.Body)
	case ast.StmtFor:
		t.collectStmt(s.For.Init)
		t.collectExpr(s.For.Cond)
		t.collectStmt(s.For.Step)
		t.collectStmt(s.For.Body)
	case ast.StmtReturn:
		t.collectExpr(s.Return.Value)
	case ast.StmtExpr:
		t.collectExpr(s.Expr)
	case ast.StmtBlock:
		for _, inner := range s.Block.Stmts {
			t.collectStmt(inner)
		}
	}
}

func (t *StrTable) collectExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprStrLit:
		t.intern(e.StrVal)
	case ast.ExprBinary:
		t.collectExpr(e.X)
		t.collectExpr(e.Y)
	case ast.ExprUnary:
		t.collectExpr(e.X)
	case ast.ExprCall:
		for _, a := range e.Args {
			t.collectExpr(a)
		}
	}
}

func (t *StrTable) intern(s string) StrID {
	if id, ok := t.byVal[s]; ok {
		return id
	}
	id := StrID(len(t.vals))
	t.byVal[s] = id
	t.vals = append(t.vals, s)
	return id
}

// Lookup returns the ID of an interned literal.
func (t *StrTable) Lookup(s string) (StrID, bool) {
	id, ok := t.byVal[s]
	return id, ok
}

// Values returns the interned literals in ID order.
func (t *StrTable) Values() []string {
	return t.vals
}
