package ir

import (
	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/types"
)

// lowerStmts drives the cursor over a statement list. A statement that
// follows a terminator is unreachable: it is diagnosed with a warning and
// lowered into a fresh block, which stays in the function. Dead code is
// emitted faithfully, never dropped.
func (l *funcLowerer) lowerStmts(stmts []*ast.Stmt) error {
	for _, s := range stmts {
		if l.curBlock().Terminated() {
			l.warn(diag.LowerUnreachableCode, s.Span, "unreachable code")
			l.startBlock(l.newBlock())
		}
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *funcLowerer) lowerStmt(s *ast.Stmt) error {
	switch s.Kind {
	case ast.StmtDecl:
		return l.lowerDecl(s)
	case ast.StmtAssign:
		return l.lowerAssign(s)
	case ast.StmtIf:
		return l.lowerIf(s)
	case ast.StmtWhile:
		return l.lowerWhile(s)
	case ast.StmtFor:
		return l.lowerFor(s)
	case ast.StmtReturn:
		return l.lowerReturn(s)
	case ast.StmtExpr:
		_, _, err := l.lowerExpr(s.Expr)
		return err
	case ast.StmtBlock:
		l.scopes.Push()
		defer l.scopes.Pop()
		return l.lowerStmts(s.Block.Stmts)
	}
	return l.fail(diag.UnknownCode, s.Span, "cannot lower %s statement", s.Kind)
}

func (l *funcLowerer) lowerDecl(s *ast.Stmt) error {
	d := s.Decl
	slot, ok := l.slotForDecl[d]
	if !ok {
		// Slots are hoisted before lowering starts; a miss is a bug.
		return l.fail(diag.UnknownCode, s.Span, "no slot collected for %q", d.Name)
	}
	if prev, declared := l.scopes.Declare(d.Name, d.Type, slot, s.Span); !declared {
		return l.fail(diag.LowerDuplicateDeclaration, s.Span,
			"%q is already defined", prev.Name)
	}
	if d.Init == nil {
		return nil
	}
	val, kind, err := l.lowerExpr(d.Init)
	if err != nil {
		return err
	}
	val, err = l.coerce(val, kind, d.Type, s.Span)
	if err != nil {
		return err
	}
	addr, elem := l.slotAddr(slot)
	l.emit(Instr{
		Kind:  InstrStore,
		Dst:   NoReg,
		Type:  elem,
		Store: StoreInstr{Addr: addr, Val: val},
	})
	return nil
}

func (l *funcLowerer) lowerAssign(s *ast.Stmt) error {
	a := s.Assign
	sym, ok := l.scopes.Lookup(a.Name)
	if !ok {
		return l.fail(diag.LowerUnresolvedSymbol, s.Span, "%q is not defined", a.Name)
	}
	val, kind, err := l.lowerExpr(a.Value)
	if err != nil {
		return err
	}
	val, err = l.coerce(val, kind, sym.Type, s.Span)
	if err != nil {
		return err
	}
	addr, elem := l.slotAddr(sym.Slot)
	l.emit(Instr{
		Kind:  InstrStore,
		Dst:   NoReg,
		Type:  elem,
		Store: StoreInstr{Addr: addr, Val: val},
	})
	return nil
}

// lowerIf lowers a conditional. The condition is evaluated in the current
// block, whose terminator is patched in last, after both branches are known.
//
// One degenerate shape survives from the source: a trivially-true condition
// guarding an else-less branch that returns. It lowers to a genuine
// two-target branch with both targets naming the then block — never
// collapsed to an unconditional branch — and anything after it becomes
// unreachable code, which is still emitted. A non-constant condition always
// keeps its false edge: it targets the else block or the merge block.
func (l *funcLowerer) lowerIf(s *ast.Stmt) error {
	data := s.If
	cond, err := l.lowerCond(data.Cond)
	if err != nil {
		return err
	}
	condBlock := l.cur

	thenBB := l.newBlock()
	elseBB := NoBlockID
	if data.Else != nil {
		elseBB = l.newBlock()
	}

	l.startBlock(thenBB)
	if err := l.lowerStmt(data.Then); err != nil {
		return err
	}
	thenEnd := l.cur
	thenTerminated := l.curBlock().Terminated()

	elseEnd := NoBlockID
	elseTerminated := false
	if elseBB.IsValid() {
		l.startBlock(elseBB)
		if err := l.lowerStmt(data.Else); err != nil {
			return err
		}
		elseEnd = l.cur
		elseTerminated = l.curBlock().Terminated()
	}

	degenerate := !elseBB.IsValid() && thenTerminated && isConstTrue(data.Cond)

	// A merge block exists if any branch falls through to it, or if an
	// else-less conditional needs a real target for its false edge.
	mergeBB := NoBlockID
	needMerge := !thenTerminated ||
		(elseBB.IsValid() && !elseTerminated) ||
		(!elseBB.IsValid() && !degenerate)
	if needMerge {
		mergeBB = l.newBlock()
		if !thenTerminated {
			l.startBlock(thenEnd)
			l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: mergeBB}})
		}
		if elseBB.IsValid() && !elseTerminated {
			l.startBlock(elseEnd)
			l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: mergeBB}})
		}
	}

	elseTarget := thenBB
	switch {
	case elseBB.IsValid():
		elseTarget = elseBB
	case mergeBB.IsValid():
		elseTarget = mergeBB
	}
	l.startBlock(condBlock)
	l.setTerm(Terminator{
		Kind: TermIf,
		If:   IfTerm{Cond: cond, Then: thenBB, Else: elseTarget},
	})

	switch {
	case mergeBB.IsValid():
		l.startBlock(mergeBB)
	case elseEnd.IsValid():
		l.startBlock(elseEnd)
	default:
		l.startBlock(thenEnd)
	}
	return nil
}

// isConstTrue reports whether the expression is a nonzero literal.
func isConstTrue(e *ast.Expr) bool {
	switch e.Kind {
	case ast.ExprIntLit:
		return e.IntVal != 0
	case ast.ExprFloatLit:
		return int64(e.FloatVal) != 0
	case ast.ExprCharLit:
		return e.CharVal != 0
	}
	return false
}

func (l *funcLowerer) lowerWhile(s *ast.Stmt) error {
	condBB := l.newBlock()
	bodyBB := l.newBlock()
	exitBB := l.newBlock()

	l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: condBB}})

	l.startBlock(condBB)
	cond, err := l.lowerCond(s.While.Cond)
	if err != nil {
		return err
	}
	l.setTerm(Terminator{
		Kind: TermIf,
		If:   IfTerm{Cond: cond, Then: bodyBB, Else: exitBB},
	})

	l.startBlock(bodyBB)
	if err := l.lowerStmt(s.While.Body); err != nil {
		return err
	}
	if !l.curBlock().Terminated() {
		l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: condBB}})
	}

	l.startBlock(exitBB)
	return nil
}

// lowerFor desugars to the while shape: init in the current block, then the
// cond/body/exit triangle, with the step lowered at the end of the body
// immediately before the back-edge. An absent condition branches on a
// constant true.
func (l *funcLowerer) lowerFor(s *ast.Stmt) error {
	f := s.For
	l.scopes.Push()
	defer l.scopes.Pop()

	if f.Init != nil {
		if err := l.lowerStmt(f.Init); err != nil {
			return err
		}
	}

	condBB := l.newBlock()
	bodyBB := l.newBlock()
	exitBB := l.newBlock()

	l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: condBB}})

	l.startBlock(condBB)
	cond := ConstOperand(1, TypeI1)
	if f.Cond != nil {
		var err error
		cond, err = l.lowerCond(f.Cond)
		if err != nil {
			return err
		}
	}
	l.setTerm(Terminator{
		Kind: TermIf,
		If:   IfTerm{Cond: cond, Then: bodyBB, Else: exitBB},
	})

	l.startBlock(bodyBB)
	if err := l.lowerStmt(f.Body); err != nil {
		return err
	}
	if !l.curBlock().Terminated() {
		if f.Step != nil {
			if err := l.lowerStmt(f.Step); err != nil {
				return err
			}
		}
		l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: condBB}})
	}

	l.startBlock(exitBB)
	return nil
}

func (l *funcLowerer) lowerReturn(s *ast.Stmt) error {
	r := s.Return
	if r.Value == nil {
		if l.decl.Ret != types.Void {
			return l.fail(diag.LowerReturnMismatch, s.Span,
				"missing return value in %s function", l.decl.Ret)
		}
		l.setTerm(Terminator{Kind: TermReturn})
		return nil
	}
	if l.decl.Ret == types.Void {
		return l.fail(diag.LowerReturnMismatch, s.Span,
			"return with value in void function")
	}
	val, kind, err := l.lowerExpr(r.Value)
	if err != nil {
		return err
	}
	val, err = l.coerce(val, kind, l.decl.Ret, s.Span)
	if err != nil {
		return err
	}
	l.setTerm(Terminator{
		Kind: TermReturn,
		Ret:  ReturnTerm{HasValue: true, Value: val},
	})
	return nil
}
