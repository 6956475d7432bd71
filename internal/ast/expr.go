package ast

import (
	"sarac/internal/source"
)

// ExprKind discriminates the Expr payload.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntLit
	ExprFloatLit
	ExprCharLit
	ExprStrLit
	ExprIdent
	ExprBinary
	ExprUnary
	ExprCall
)

func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "int"
	case ExprFloatLit:
		return "float"
	case ExprCharLit:
		return "char"
	case ExprStrLit:
		return "string"
	case ExprIdent:
		return "ident"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprCall:
		return "call"
	}
	return "invalid"
}

// Op is a binary or unary operator.
type Op uint8

const (
	OpInvalid Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	}
	return "?"
}

// IsComparison reports whether o yields a boolean.
func (o Op) IsComparison() bool {
	return o >= OpEq && o <= OpGe
}

// IsLogical reports whether o operates on booleans.
func (o Op) IsLogical() bool {
	return o == OpAnd || o == OpOr || o == OpNot
}

// Expr is an expression node. The fields used depend on Kind:
// literals carry their value, ExprIdent and ExprCall carry Name,
// ExprBinary uses Op/X/Y, ExprUnary uses Op/X, ExprCall uses Name/Args.
type Expr struct {
	Kind ExprKind `msgpack:"kind"`

	IntVal   int64   `msgpack:"int,omitempty"`
	FloatVal float64 `msgpack:"float,omitempty"`
	CharVal  byte    `msgpack:"char,omitempty"`
	StrVal   string  `msgpack:"str,omitempty"`
	Name     string  `msgpack:"name,omitempty"`

	Op   Op      `msgpack:"op,omitempty"`
	X    *Expr   `msgpack:"x,omitempty"`
	Y    *Expr   `msgpack:"y,omitempty"`
	Args []*Expr `msgpack:"args,omitempty"`

	Span source.Span `msgpack:"span"`
}
