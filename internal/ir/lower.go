package ir

import (
	"fmt"

	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/source"
	"sarac/internal/symbols"
)

// LowerModule lowers every function of the AST module serially and returns
// the assembled IR module. Any fatal diagnostic aborts the whole module: no
// partial IR is returned.
func LowerModule(m *ast.Module, reporter diag.Reporter) (*Module, error) {
	sigs, err := CollectSignatures(m, reporter)
	if err != nil {
		return nil, err
	}
	strs := CollectStrings(m)

	funcs := make([]*Func, 0, len(m.Funcs))
	for i, fd := range m.Funcs {
		fn, err := LowerFunc(fd, FuncID(i), sigs, strs, reporter)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return AssembleModule(m.Name, funcs, strs), nil
}

// AssembleModule builds the final Module from independently lowered
// functions. Callers must pass funcs in declaration order; the driver's
// parallel path relies on this to keep output deterministic.
func AssembleModule(name string, funcs []*Func, strs *StrTable) *Module {
	return &Module{
		Name:    name,
		Funcs:   funcs,
		Externs: []Extern{PrintExtern()},
		Strs:    strs.Values(),
	}
}

// PrintExtern describes the variadic print built-in.
func PrintExtern() Extern {
	return Extern{Name: PrintName, Ret: TypeVoid, Variadic: true}
}

// funcLowerer carries the mutable state for lowering one function: the
// block cursor, the register counter, and the scope table. Each function
// gets its own lowerer; only sigs and strs are shared, and both are
// read-only by the time lowering starts.
type funcLowerer struct {
	sigs     *Signatures
	strs     *StrTable
	reporter diag.Reporter

	decl   *ast.FuncDecl
	fn     *Func
	cur    BlockID
	scopes *symbols.Table

	slotForDecl map[*ast.DeclStmt]symbols.SlotID
	nextReg     Reg
}

// LowerFunc lowers a single function declaration against the pre-collected
// signature and string tables.
func LowerFunc(fd *ast.FuncDecl, id FuncID, sigs *Signatures, strs *StrTable, reporter diag.Reporter) (*Func, error) {
	l := &funcLowerer{
		sigs:     sigs,
		strs:     strs,
		reporter: reporter,
		decl:     fd,
		fn: &Func{
			ID:   id,
			Name: fd.Name,
			Ret:  TypeOf(fd.Ret),
		},
		cur:         NoBlockID,
		scopes:      symbols.NewTable(),
		slotForDecl: make(map[*ast.DeclStmt]symbols.SlotID),
	}

	for _, p := range fd.Params {
		l.fn.Params = append(l.fn.Params, Param{Name: p.Name, Type: TypeOf(p.Type)})
	}

	entry := l.newBlock()
	l.startBlock(entry)

	if err := l.emitPrologue(); err != nil {
		return nil, err
	}

	if fd.Body != nil {
		if err := l.lowerStmts(fd.Body.Stmts); err != nil {
			return nil, err
		}
	}

	// Control fell off the end: synthesize a return of the zero value of
	// the declared result type (ret void for void functions).
	if !l.curBlock().Terminated() {
		l.setTerm(l.syntheticReturn())
	}

	return l.fn, nil
}

// emitPrologue hoists every slot to the entry block: one alloca per
// parameter and per local declared anywhere in the body, parameters first,
// then one store per incoming parameter value. Parameter name collisions are
// caught here; body-local collisions are caught when their scope is entered.
func (l *funcLowerer) emitPrologue() error {
	for _, p := range l.decl.Params {
		slot := l.addSlot(p.Name, TypeOf(p.Type))
		if prev, ok := l.scopes.Declare(p.Name, p.Type, slot, p.Span); !ok {
			return l.fail(diag.LowerDuplicateDeclaration, p.Span,
				"parameter %q is already defined", prev.Name)
		}
	}
	collectDecls(l.decl.Body, func(d *ast.DeclStmt) {
		l.slotForDecl[d] = l.addSlot(d.Name, TypeOf(d.Type))
	})

	for _, s := range l.fn.Slots {
		l.emit(Instr{
			Kind:   InstrAlloca,
			Dst:    s.Addr,
			Type:   s.Type,
			Alloca: AllocaInstr{Slot: s.ID},
		})
	}
	for i, p := range l.fn.Params {
		s := l.fn.Slots[i]
		l.emit(Instr{
			Kind:  InstrStore,
			Dst:   NoReg,
			Type:  p.Type,
			Store: StoreInstr{Addr: s.Addr, Val: ParamOperand(p.Name, p.Type)},
		})
	}
	return nil
}

// addSlot reserves the next stack slot and its address register. The address
// registers are allocated in slot order, so the entry block's alloca group
// defines registers 0..len(slots)-1.
func (l *funcLowerer) addSlot(name string, t Type) symbols.SlotID {
	id := symbols.SlotID(len(l.fn.Slots))
	l.fn.Slots = append(l.fn.Slots, Slot{
		ID:   id,
		Name: name,
		Type: t,
		Addr: l.newReg(),
	})
	return id
}

// collectDecls walks a statement tree in source order and reports every
// declaration, without descending into expressions (declarations cannot
// nest there).
func collectDecls(b *ast.BlockStmt, fn func(*ast.DeclStmt)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		collectStmtDecls(s, fn)
	}
}

func collectStmtDecls(s *ast.Stmt, fn func(*ast.DeclStmt)) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.StmtDecl:
		fn(s.Decl)
	case ast.StmtIf:
		collectStmtDecls(s.If.Then, fn)
		collectStmtDecls(s.If.Else, fn)
	case ast.StmtWhile:
		collectStmtDecls(s.While.Body, fn)
	case ast.StmtFor:
		collectStmtDecls(s.For.Init, fn)
		collectStmtDecls(s.For.Step, fn)
		collectStmtDecls(s.For.Body, fn)
	case ast.StmtBlock:
		for _, inner := range s.Block.Stmts {
			collectStmtDecls(inner, fn)
		}
	}
}

func (l *funcLowerer) newBlock() BlockID {
	id := blockIDFromInt(len(l.fn.Blocks))
	l.fn.Blocks = append(l.fn.Blocks, &Block{ID: id})
	return id
}

func (l *funcLowerer) startBlock(id BlockID) {
	l.cur = id
}

func (l *funcLowerer) curBlock() *Block {
	return l.fn.Blocks[l.cur]
}

func (l *funcLowerer) newReg() Reg {
	r := l.nextReg
	l.nextReg++
	l.fn.NumRegs = int32(l.nextReg)
	return r
}

// emit appends to the current block. Callers never emit into a terminated
// block; statement lowering redirects unreachable code to a fresh block
// first.
func (l *funcLowerer) emit(in Instr) {
	b := l.curBlock()
	b.Instrs = append(b.Instrs, in)
}

// define allocates the result register for in, emits it, and returns the
// register as an operand.
func (l *funcLowerer) define(t Type, in Instr) Operand {
	in.Dst = l.newReg()
	in.Type = t
	l.emit(in)
	return RegOperand(in.Dst, t)
}

// setTerm seals the current block. A second terminator is a lowering bug,
// not an input error.
func (l *funcLowerer) setTerm(t Terminator) {
	b := l.curBlock()
	if b.Terminated() {
		panic(fmt.Errorf("ir: block %s already terminated", b.ID.Label()))
	}
	b.Term = t
}

func (l *funcLowerer) syntheticReturn() Terminator {
	if l.fn.Ret == TypeVoid {
		return Terminator{Kind: TermReturn}
	}
	return Terminator{
		Kind: TermReturn,
		Ret:  ReturnTerm{HasValue: true, Value: ConstOperand(0, l.fn.Ret)},
	}
}

// slotAddr returns the address register and element type of a slot.
func (l *funcLowerer) slotAddr(id symbols.SlotID) (Reg, Type) {
	s := l.fn.Slots[id]
	return s.Addr, s.Type
}

// fail reports a fatal diagnostic and returns the matching error. The error
// aborts lowering of the whole module.
func (l *funcLowerer) fail(code diag.Code, span source.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	diag.ReportError(l.reporter, code, span, msg).Emit()
	return fmt.Errorf("ir: %s: %s", l.fn.Name, msg)
}

func (l *funcLowerer) warn(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(l.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}
