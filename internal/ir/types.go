// Package ir defines the control-flow-graph intermediate form the compiler
// lowers to: functions split into basic blocks of typed instructions over
// single-assignment virtual registers, with mutable locals modeled as
// alloca'd stack slots accessed through load/store.
//
// The package also hosts the lowering pipeline itself (lower*.go), the
// structural validator (validate.go) and the textual printer (print.go).
package ir

import (
	"fmt"

	"fortio.org/safecast"

	"sarac/internal/types"
)

type (
	// FuncID identifies a function within a Module.
	FuncID int32
	// BlockID identifies a basic block within a Func. Block 0 is the entry.
	BlockID int32
	// Reg is a virtual register. Registers are numbered in strictly
	// increasing order of definition within a function and are assigned
	// exactly once.
	Reg int32
	// StrID indexes the module string constant table.
	StrID int32
)

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoReg     Reg     = -1
	NoStrID   StrID   = -1
)

func (id BlockID) IsValid() bool { return id >= 0 }
func (r Reg) IsValid() bool      { return r >= 0 }

// Label returns the textual label of the block: "entry" for block 0,
// "bbN" otherwise.
func (id BlockID) Label() string {
	if id == 0 {
		return "entry"
	}
	return fmt.Sprintf("bb%d", int32(id))
}

// Type is the value type of a register, slot, or operand.
type Type uint8

const (
	TypeVoid Type = iota
	TypeI1
	TypeI8
	TypeI32
	// TypeStr is a pointer to a module string constant, used only for
	// arguments to variadic externals.
	TypeStr
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeI1:
		return "i1"
	case TypeI8:
		return "i8"
	case TypeI32:
		return "i32"
	case TypeStr:
		return "i8*"
	}
	return "invalid"
}

// TypeOf maps a source-level kind to its IR type. Float lowers to i32: the
// language's float literals truncate to integers on arithmetic use, so float
// slots and registers are i32 throughout.
func TypeOf(k types.Kind) Type {
	switch k {
	case types.Void:
		return TypeVoid
	case types.Bool:
		return TypeI1
	case types.Char:
		return TypeI8
	case types.Int, types.Float:
		return TypeI32
	}
	return TypeVoid
}

func blockIDFromInt(n int) BlockID {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("block id overflow: %w", err))
	}
	return BlockID(v)
}
