package ir

import (
	"fmt"
)

// OperandKind discriminates the Operand payload.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	// OperandReg reads a virtual register.
	OperandReg
	// OperandParam reads the incoming value of a parameter. Used only by
	// the entry-block stores that spill parameters into their slots.
	OperandParam
	// OperandConst is an immediate integer (int, truncated float, char
	// code point, or i1 bit).
	OperandConst
	// OperandStr is the address of a module string constant.
	OperandStr
)

// Operand is a value an instruction or terminator consumes.
type Operand struct {
	Kind  OperandKind
	Reg   Reg
	Param string
	Const int64
	Str   StrID
	Type  Type
}

func RegOperand(r Reg, t Type) Operand {
	return Operand{Kind: OperandReg, Reg: r, Type: t}
}

func ParamOperand(name string, t Type) Operand {
	return Operand{Kind: OperandParam, Param: name, Type: t}
}

func ConstOperand(v int64, t Type) Operand {
	return Operand{Kind: OperandConst, Const: v, Type: t}
}

func StrOperand(id StrID) Operand {
	return Operand{Kind: OperandStr, Str: id, Type: TypeStr}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return fmt.Sprintf("%%%d", int32(o.Reg))
	case OperandParam:
		return "%a." + o.Param
	case OperandConst:
		return fmt.Sprintf("%d", o.Const)
	case OperandStr:
		return fmt.Sprintf("@.str.%d", int32(o.Str))
	}
	return "<none>"
}
