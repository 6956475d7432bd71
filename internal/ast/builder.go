package ast

import (
	"sarac/internal/types"
)

// Constructors for building trees in code. The external parser emits the
// serialized form; these exist for the driver's virtual inputs and for tests.

func Int(v int64) *Expr {
	return &Expr{Kind: ExprIntLit, IntVal: v}
}

func Float(v float64) *Expr {
	return &Expr{Kind: ExprFloatLit, FloatVal: v}
}

func Char(c byte) *Expr {
	return &Expr{Kind: ExprCharLit, CharVal: c}
}

func Str(s string) *Expr {
	return &Expr{Kind: ExprStrLit, StrVal: s}
}

func Ident(name string) *Expr {
	return &Expr{Kind: ExprIdent, Name: name}
}

func Binary(op Op, x, y *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, X: x, Y: y}
}

func Unary(op Op, x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Op: op, X: x}
}

func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Name: name, Args: args}
}

func Decl(name string, ty types.Kind, init *Expr) *Stmt {
	return &Stmt{Kind: StmtDecl, Decl: &DeclStmt{Name: name, Type: ty, Init: init}}
}

func Assign(name string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Assign: &AssignStmt{Name: name, Value: value}}
}

func If(cond *Expr, then, els *Stmt) *Stmt {
	return &Stmt{Kind: StmtIf, If: &IfStmt{Cond: cond, Then: then, Else: els}}
}

func While(cond *Expr, body *Stmt) *Stmt {
	return &Stmt{Kind: StmtWhile, While: &WhileStmt{Cond: cond, Body: body}}
}

func For(init *Stmt, cond *Expr, step *Stmt, body *Stmt) *Stmt {
	return &Stmt{Kind: StmtFor, For: &ForStmt{Init: init, Cond: cond, Step: step, Body: body}}
}

func Return(value *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Return: &ReturnStmt{Value: value}}
}

func ExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Expr: e}
}

func Block(stmts ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtBlock, Block: &BlockStmt{Stmts: stmts}}
}

func Body(stmts ...*Stmt) *BlockStmt {
	return &BlockStmt{Stmts: stmts}
}

func Fn(name string, ret types.Kind, params []Param, body *BlockStmt) *FuncDecl {
	return &FuncDecl{Name: name, Ret: ret, Params: params, Body: body}
}
