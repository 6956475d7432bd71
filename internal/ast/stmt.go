package ast

import (
	"sarac/internal/source"
	"sarac/internal/types"
)

// StmtKind discriminates the Stmt payload.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtDecl
	StmtAssign
	StmtIf
	StmtWhile
	StmtFor
	StmtReturn
	StmtExpr
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtDecl:
		return "decl"
	case StmtAssign:
		return "assign"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtFor:
		return "for"
	case StmtReturn:
		return "return"
	case StmtExpr:
		return "expr"
	case StmtBlock:
		return "block"
	}
	return "invalid"
}

// Stmt is a statement node. Exactly the payload named by Kind is set.
type Stmt struct {
	Kind StmtKind `msgpack:"kind"`

	Decl   *DeclStmt   `msgpack:"decl,omitempty"`
	Assign *AssignStmt `msgpack:"assign,omitempty"`
	If     *IfStmt     `msgpack:"if,omitempty"`
	While  *WhileStmt  `msgpack:"while,omitempty"`
	For    *ForStmt    `msgpack:"for,omitempty"`
	Return *ReturnStmt `msgpack:"return,omitempty"`
	Expr   *Expr       `msgpack:"expr,omitempty"`
	Block  *BlockStmt  `msgpack:"block,omitempty"`

	Span source.Span `msgpack:"span"`
}

// DeclStmt declares a typed local, optionally initialized.
type DeclStmt struct {
	Name string     `msgpack:"name"`
	Type types.Kind `msgpack:"type"`
	Init *Expr      `msgpack:"init,omitempty"`
}

// AssignStmt stores an expression into a named local.
type AssignStmt struct {
	Name  string `msgpack:"name"`
	Value *Expr  `msgpack:"value"`
}

// IfStmt branches on a condition; Else may be nil.
type IfStmt struct {
	Cond *Expr `msgpack:"cond"`
	Then *Stmt `msgpack:"then"`
	Else *Stmt `msgpack:"else,omitempty"`
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Cond *Expr `msgpack:"cond"`
	Body *Stmt `msgpack:"body"`
}

// ForStmt is init/cond/step sugar over while. Any of the three header
// positions may be nil; a nil Cond loops unconditionally.
type ForStmt struct {
	Init *Stmt `msgpack:"init,omitempty"`
	Cond *Expr `msgpack:"cond,omitempty"`
	Step *Stmt `msgpack:"step,omitempty"`
	Body *Stmt `msgpack:"body"`
}

// ReturnStmt returns from the enclosing function; Value is nil for a bare
// return.
type ReturnStmt struct {
	Value *Expr `msgpack:"value,omitempty"`
}
