package ir

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a lowered module: every block
// ends in exactly one terminator, branch targets exist, registers are
// defined in strictly increasing order exactly once and before any use,
// returns agree with the function's result type, and every callee resolves.
// All violations are reported, joined into one error.
func Validate(m *Module) error {
	var errs []error
	seen := make(map[string]bool, len(m.Funcs))
	for _, f := range m.Funcs {
		if f == nil {
			errs = append(errs, fmt.Errorf("module %q: nil function", m.Name))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("module %q: duplicate function %q", m.Name, f.Name))
		}
		seen[f.Name] = true
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("fn %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *Module, f *Func) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("no entry block")
	}
	return errors.Join(
		validateBlocksTerminated(f),
		validateBlockTargets(f),
		validateRegisters(f),
		validateReturns(f),
		validateCalls(m, f),
		validateAllocas(f),
		validateStrings(m, f),
	)
}

func validateBlocksTerminated(f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		if !b.Terminated() {
			errs = append(errs, fmt.Errorf("%s: unterminated block", b.ID.Label()))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		for _, succ := range b.Term.Successors() {
			if f.Block(succ) == nil {
				errs = append(errs, fmt.Errorf("%s: branch target bb%d does not exist",
					b.ID.Label(), int32(succ)))
			}
		}
	}
	return errors.Join(errs...)
}

// validateRegisters requires every register to be defined exactly once,
// within its block in strictly increasing order, and before any use. The
// lowerer numbers registers in temporal definition order, which is not the
// block layout order: nested control flow fills earlier-layout blocks (a
// loop's exit block, an if's merge block) after later-created ones, so
// monotonicity across blocks is deliberately not required.
func validateRegisters(f *Func) error {
	var errs []error
	defined := make(map[Reg]bool, f.NumRegs)
	params := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		params[p.Name] = true
	}

	checkUse := func(b *Block, o Operand) {
		switch o.Kind {
		case OperandReg:
			if !defined[o.Reg] {
				errs = append(errs, fmt.Errorf("%s: use of undefined register %%%d",
					b.ID.Label(), int32(o.Reg)))
			}
		case OperandParam:
			if !params[o.Param] {
				errs = append(errs, fmt.Errorf("%s: unknown parameter %%a.%s",
					b.ID.Label(), o.Param))
			}
		}
	}

	for _, b := range f.Blocks {
		prev := NoReg
		for i := range b.Instrs {
			in := &b.Instrs[i]
			for _, o := range instrUses(in) {
				checkUse(b, o)
			}
			if in.Dst.IsValid() {
				if in.Dst <= prev {
					errs = append(errs, fmt.Errorf("%s: register %%%d defined out of order",
						b.ID.Label(), int32(in.Dst)))
				}
				if defined[in.Dst] {
					errs = append(errs, fmt.Errorf("%s: register %%%d defined twice",
						b.ID.Label(), int32(in.Dst)))
				}
				defined[in.Dst] = true
				prev = in.Dst
			}
		}
		for _, o := range termUses(&b.Term) {
			checkUse(b, o)
		}
	}
	return errors.Join(errs...)
}

func validateReturns(f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		if b.Term.Kind != TermReturn {
			continue
		}
		ret := b.Term.Ret
		switch {
		case f.Ret == TypeVoid && ret.HasValue:
			errs = append(errs, fmt.Errorf("%s: return with value in void function", b.ID.Label()))
		case f.Ret != TypeVoid && !ret.HasValue:
			errs = append(errs, fmt.Errorf("%s: missing return value in %s function",
				b.ID.Label(), f.Ret))
		case ret.HasValue && ret.Value.Type != f.Ret:
			errs = append(errs, fmt.Errorf("%s: return value is %s, function returns %s",
				b.ID.Label(), ret.Value.Type, f.Ret))
		}
	}
	return errors.Join(errs...)
}

func validateCalls(m *Module, f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		for i := range b.Instrs {
			in := &b.Instrs[i]
			if in.Kind != InstrCall {
				continue
			}
			callee := in.Call.Callee
			if target := m.Func(callee); target != nil {
				if len(in.Call.Args) != len(target.Params) {
					errs = append(errs, fmt.Errorf("%s: call to %q with %d args, want %d",
						b.ID.Label(), callee, len(in.Call.Args), len(target.Params)))
				}
				continue
			}
			if !moduleHasExtern(m, callee) {
				errs = append(errs, fmt.Errorf("%s: call to unknown callee %q",
					b.ID.Label(), callee))
			}
		}
	}
	return errors.Join(errs...)
}

// validateAllocas enforces the hoisting discipline: every alloca sits in the
// entry block and matches its slot record.
func validateAllocas(f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		for i := range b.Instrs {
			in := &b.Instrs[i]
			if in.Kind != InstrAlloca {
				continue
			}
			if b.ID != 0 {
				errs = append(errs, fmt.Errorf("%s: alloca outside entry block", b.ID.Label()))
			}
			slot := in.Alloca.Slot
			if !slot.IsValid() || int(slot) >= len(f.Slots) {
				errs = append(errs, fmt.Errorf("entry: alloca references unknown slot %d", slot))
				continue
			}
			s := f.Slots[slot]
			if s.Addr != in.Dst {
				errs = append(errs, fmt.Errorf("entry: slot %q address %%%d does not match alloca %%%d",
					s.Name, int32(s.Addr), int32(in.Dst)))
			}
			if s.Type != in.Type {
				errs = append(errs, fmt.Errorf("entry: slot %q type %s does not match alloca %s",
					s.Name, s.Type, in.Type))
			}
		}
	}
	return errors.Join(errs...)
}

func validateStrings(m *Module, f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		for i := range b.Instrs {
			for _, o := range instrUses(&b.Instrs[i]) {
				if o.Kind == OperandStr && (o.Str < 0 || int(o.Str) >= len(m.Strs)) {
					errs = append(errs, fmt.Errorf("%s: string constant %d does not exist",
						b.ID.Label(), int32(o.Str)))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func moduleHasExtern(m *Module, name string) bool {
	for _, e := range m.Externs {
		if e.Name == name {
			return true
		}
	}
	return false
}

// instrUses returns the operands an instruction reads.
func instrUses(in *Instr) []Operand {
	switch in.Kind {
	case InstrStore:
		return []Operand{in.Store.Val}
	case InstrBin:
		return []Operand{in.Bin.X, in.Bin.Y}
	case InstrCmp:
		return []Operand{in.Cmp.X, in.Cmp.Y}
	case InstrCast:
		return []Operand{in.Cast.Val}
	case InstrCall:
		return in.Call.Args
	}
	return nil
}

// termUses returns the operands a terminator reads.
func termUses(t *Terminator) []Operand {
	switch t.Kind {
	case TermReturn:
		if t.Ret.HasValue {
			return []Operand{t.Ret.Value}
		}
	case TermIf:
		return []Operand{t.If.Cond}
	}
	return nil
}
