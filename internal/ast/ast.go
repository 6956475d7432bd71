// Package ast defines the input syntax tree the lowering pipeline consumes.
//
// The tree is produced by an external parser and handed over as a
// msgpack-encoded document, so every node is a plain struct with exported,
// tagged fields. The tree is assumed syntax-valid; name resolution and type
// agreement are checked during lowering.
package ast

import (
	"sarac/internal/source"
	"sarac/internal/types"
)

// Module is the root of one compilation unit.
type Module struct {
	Name  string      `msgpack:"name"`
	Funcs []*FuncDecl `msgpack:"funcs"`
}

// FuncDecl is a function definition: signature plus body.
type FuncDecl struct {
	Name   string      `msgpack:"name"`
	Ret    types.Kind  `msgpack:"ret"`
	Params []Param     `msgpack:"params"`
	Body   *BlockStmt  `msgpack:"body"`
	Span   source.Span `msgpack:"span"`
}

// Param is one typed formal parameter.
type Param struct {
	Name string      `msgpack:"name"`
	Type types.Kind  `msgpack:"type"`
	Span source.Span `msgpack:"span"`
}

// BlockStmt is a braced statement sequence with its own scope.
type BlockStmt struct {
	Stmts []*Stmt     `msgpack:"stmts"`
	Span  source.Span `msgpack:"span"`
}
