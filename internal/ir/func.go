package ir

import (
	"sarac/internal/symbols"
)

// Param is one formal parameter of a lowered function. Its incoming value is
// addressable as the named %a.<name> operand inside the entry block only; all
// other reads go through the parameter's stack slot.
type Param struct {
	Name string
	Type Type
}

// Slot is one alloca'd stack cell: a mutable memory location owned by the
// function activation. Addr is the stable address register produced by the
// slot's alloca in the entry block.
type Slot struct {
	ID   symbols.SlotID
	Name string
	Type Type
	Addr Reg
}

// Func is one lowered function.
type Func struct {
	ID     FuncID
	Name   string
	Params []Param
	Ret    Type
	Blocks []*Block // Blocks[0] is the entry; order is creation order
	Slots  []Slot
	// NumRegs is the count of virtual registers defined in the function;
	// registers are 0..NumRegs-1 in definition order.
	NumRegs int32
}

// Entry returns the entry block.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Block returns the block with the given ID, or nil.
func (f *Func) Block(id BlockID) *Block {
	if !id.IsValid() || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}
