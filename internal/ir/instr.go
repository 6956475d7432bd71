package ir

import (
	"sarac/internal/symbols"
)

// InstrKind discriminates the Instr payload.
type InstrKind uint8

const (
	InstrInvalid InstrKind = iota
	InstrAlloca
	InstrStore
	InstrLoad
	InstrBin
	InstrCmp
	InstrCast
	InstrCall
)

// BinOp is a two-operand arithmetic, bitwise, or shift opcode.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinSDiv
	BinSRem
	BinShl
	BinAShr
	BinAnd
	BinOr
	BinXor
)

func (o BinOp) String() string {
	switch o {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinSDiv:
		return "sdiv"
	case BinSRem:
		return "srem"
	case BinShl:
		return "shl"
	case BinAShr:
		return "ashr"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinXor:
		return "xor"
	}
	return "invalid"
}

// Pred is a signed integer comparison predicate. Comparisons always yield i1.
type Pred uint8

const (
	PredEq Pred = iota
	PredNe
	PredSlt
	PredSle
	PredSgt
	PredSge
)

func (p Pred) String() string {
	switch p {
	case PredEq:
		return "eq"
	case PredNe:
		return "ne"
	case PredSlt:
		return "slt"
	case PredSle:
		return "sle"
	case PredSgt:
		return "sgt"
	case PredSge:
		return "sge"
	}
	return "invalid"
}

// CastOp converts between integer widths.
type CastOp uint8

const (
	// CastTrunc narrows (i32 -> i8).
	CastTrunc CastOp = iota
	// CastSext sign-extends (i8 -> i32).
	CastSext
)

func (c CastOp) String() string {
	switch c {
	case CastTrunc:
		return "trunc"
	case CastSext:
		return "sext"
	}
	return "invalid"
}

// Instr is one non-terminator instruction. Dst is the defined register, or
// NoReg for stores and void calls. Type is the result type; for allocas it is
// the slot's element type, for stores the stored value's type.
type Instr struct {
	Kind InstrKind
	Dst  Reg
	Type Type

	Alloca AllocaInstr
	Store  StoreInstr
	Load   LoadInstr
	Bin    BinInstr
	Cmp    CmpInstr
	Cast   CastInstr
	Call   CallInstr
}

// AllocaInstr reserves the stack slot; Dst is the slot's stable address
// register.
type AllocaInstr struct {
	Slot symbols.SlotID
}

// StoreInstr writes Val through the slot address in Addr.
type StoreInstr struct {
	Addr Reg
	Val  Operand
}

// LoadInstr reads through the slot address in Addr.
type LoadInstr struct {
	Addr Reg
}

type BinInstr struct {
	Op BinOp
	X  Operand
	Y  Operand
}

type CmpInstr struct {
	Pred Pred
	X    Operand
	Y    Operand
}

// CastInstr converts Val to the instruction's Type.
type CastInstr struct {
	Op  CastOp
	Val Operand
}

// CallInstr invokes a function or the print external. Dst is NoReg when the
// callee returns void.
type CallInstr struct {
	Callee string
	Args   []Operand
}
