package ir

import (
	"sarac/internal/ast"
	"sarac/internal/diag"
	"sarac/internal/source"
	"sarac/internal/types"
)

// lowerExpr lowers one expression into the current block and returns the
// operand holding its value together with its source-level kind. Literals
// fold into constant operands without emitting an instruction; everything
// else defines a fresh register.
func (l *funcLowerer) lowerExpr(e *ast.Expr) (Operand, types.Kind, error) {
	switch e.Kind {
	case ast.ExprIntLit:
		return ConstOperand(e.IntVal, TypeI32), types.Int, nil
	case ast.ExprFloatLit:
		// Float literals truncate to integers on use; the IR carries no
		// floating-point values.
		return ConstOperand(int64(e.FloatVal), TypeI32), types.Float, nil
	case ast.ExprCharLit:
		return ConstOperand(int64(e.CharVal), TypeI8), types.Char, nil
	case ast.ExprStrLit:
		id, ok := l.strs.Lookup(e.StrVal)
		if !ok {
			// The pre-pass interns every literal; a miss is a bug.
			return Operand{}, types.Void, l.fail(diag.UnknownCode, e.Span,
				"string literal not interned")
		}
		return StrOperand(id), types.String, nil
	case ast.ExprIdent:
		return l.lowerIdent(e)
	case ast.ExprUnary:
		return l.lowerUnary(e)
	case ast.ExprBinary:
		return l.lowerBinary(e)
	case ast.ExprCall:
		return l.lowerCall(e)
	}
	return Operand{}, types.Void, l.fail(diag.UnknownCode, e.Span,
		"cannot lower %s expression", e.Kind)
}

func (l *funcLowerer) lowerIdent(e *ast.Expr) (Operand, types.Kind, error) {
	sym, ok := l.scopes.Lookup(e.Name)
	if !ok {
		return Operand{}, types.Void, l.fail(diag.LowerUnresolvedSymbol, e.Span,
			"%q is not defined", e.Name)
	}
	addr, elem := l.slotAddr(sym.Slot)
	val := l.define(elem, Instr{
		Kind: InstrLoad,
		Load: LoadInstr{Addr: addr},
	})
	return val, sym.Type, nil
}

func (l *funcLowerer) lowerUnary(e *ast.Expr) (Operand, types.Kind, error) {
	switch e.Op {
	case ast.OpNeg:
		x, kind, err := l.lowerExpr(e.X)
		if err != nil {
			return Operand{}, types.Void, err
		}
		if !kind.IsNumeric() {
			return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.Span,
				"operator - is not defined on %s", kind)
		}
		val := l.define(x.Type, Instr{
			Kind: InstrBin,
			Bin:  BinInstr{Op: BinSub, X: ConstOperand(0, x.Type), Y: x},
		})
		return val, kind, nil
	case ast.OpNot:
		x, err := l.lowerCond(e.X)
		if err != nil {
			return Operand{}, types.Void, err
		}
		val := l.define(TypeI1, Instr{
			Kind: InstrBin,
			Bin:  BinInstr{Op: BinXor, X: x, Y: ConstOperand(1, TypeI1)},
		})
		return val, types.Bool, nil
	}
	return Operand{}, types.Void, l.fail(diag.UnknownCode, e.Span,
		"cannot lower unary operator %s", e.Op)
}

func (l *funcLowerer) lowerBinary(e *ast.Expr) (Operand, types.Kind, error) {
	op := e.Op
	switch {
	case op.IsComparison():
		return l.lowerComparison(e)
	case op.IsLogical():
		return l.lowerLogical(e)
	case op == ast.OpShl || op == ast.OpShr:
		return l.lowerShift(e)
	}
	return l.lowerArith(e)
}

func (l *funcLowerer) lowerArith(e *ast.Expr) (Operand, types.Kind, error) {
	x, xk, err := l.lowerExpr(e.X)
	if err != nil {
		return Operand{}, types.Void, err
	}
	y, yk, err := l.lowerExpr(e.Y)
	if err != nil {
		return Operand{}, types.Void, err
	}
	kind, ok := types.Generalize(xk, yk)
	if !ok {
		return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.Span,
			"operator %s is not defined on %s and %s", e.Op, xk, yk)
	}
	if x, err = l.coerce(x, xk, kind, e.X.Span); err != nil {
		return Operand{}, types.Void, err
	}
	if y, err = l.coerce(y, yk, kind, e.Y.Span); err != nil {
		return Operand{}, types.Void, err
	}

	var bin BinOp
	switch e.Op {
	case ast.OpAdd:
		bin = BinAdd
	case ast.OpSub:
		bin = BinSub
	case ast.OpMul:
		bin = BinMul
	case ast.OpDiv:
		bin = BinSDiv
	case ast.OpMod:
		bin = BinSRem
	default:
		return Operand{}, types.Void, l.fail(diag.UnknownCode, e.Span,
			"cannot lower binary operator %s", e.Op)
	}
	val := l.define(TypeOf(kind), Instr{
		Kind: InstrBin,
		Bin:  BinInstr{Op: bin, X: x, Y: y},
	})
	return val, kind, nil
}

// lowerShift types the result after the left operand; the shift amount must
// be integral and is brought to the left operand's width.
func (l *funcLowerer) lowerShift(e *ast.Expr) (Operand, types.Kind, error) {
	x, xk, err := l.lowerExpr(e.X)
	if err != nil {
		return Operand{}, types.Void, err
	}
	y, yk, err := l.lowerExpr(e.Y)
	if err != nil {
		return Operand{}, types.Void, err
	}
	if !xk.IsIntegral() {
		return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.X.Span,
			"operator %s is not defined on %s", e.Op, xk)
	}
	if !yk.IsIntegral() {
		return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.Y.Span,
			"shift amount must be an integer, not %s", yk)
	}
	if y, err = l.coerce(y, yk, xk, e.Y.Span); err != nil {
		return Operand{}, types.Void, err
	}

	bin := BinShl
	if e.Op == ast.OpShr {
		bin = BinAShr
	}
	val := l.define(x.Type, Instr{
		Kind: InstrBin,
		Bin:  BinInstr{Op: bin, X: x, Y: y},
	})
	return val, xk, nil
}

func (l *funcLowerer) lowerComparison(e *ast.Expr) (Operand, types.Kind, error) {
	x, xk, err := l.lowerExpr(e.X)
	if err != nil {
		return Operand{}, types.Void, err
	}
	y, yk, err := l.lowerExpr(e.Y)
	if err != nil {
		return Operand{}, types.Void, err
	}
	kind, ok := types.Generalize(xk, yk)
	if !ok {
		return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.Span,
			"operator %s is not defined on %s and %s", e.Op, xk, yk)
	}
	if x, err = l.coerce(x, xk, kind, e.X.Span); err != nil {
		return Operand{}, types.Void, err
	}
	if y, err = l.coerce(y, yk, kind, e.Y.Span); err != nil {
		return Operand{}, types.Void, err
	}

	var pred Pred
	switch e.Op {
	case ast.OpEq:
		pred = PredEq
	case ast.OpNe:
		pred = PredNe
	case ast.OpLt:
		pred = PredSlt
	case ast.OpLe:
		pred = PredSle
	case ast.OpGt:
		pred = PredSgt
	case ast.OpGe:
		pred = PredSge
	}
	val := l.define(TypeI1, Instr{
		Kind: InstrCmp,
		Cmp:  CmpInstr{Pred: pred, X: x, Y: y},
	})
	return val, types.Bool, nil
}

// lowerLogical lowers && and ||. The language has no short-circuit
// semantics: both operands evaluate unconditionally and combine with a
// single i1 instruction.
func (l *funcLowerer) lowerLogical(e *ast.Expr) (Operand, types.Kind, error) {
	x, err := l.lowerCond(e.X)
	if err != nil {
		return Operand{}, types.Void, err
	}
	y, err := l.lowerCond(e.Y)
	if err != nil {
		return Operand{}, types.Void, err
	}
	bin := BinAnd
	if e.Op == ast.OpOr {
		bin = BinOr
	}
	val := l.define(TypeI1, Instr{
		Kind: InstrBin,
		Bin:  BinInstr{Op: bin, X: x, Y: y},
	})
	return val, types.Bool, nil
}

func (l *funcLowerer) lowerCall(e *ast.Expr) (Operand, types.Kind, error) {
	sig, ok := l.sigs.Lookup(e.Name)
	if !ok {
		return Operand{}, types.Void, l.fail(diag.LowerUnknownCallee, e.Span,
			"call to undefined function %q", e.Name)
	}

	args := make([]Operand, 0, len(e.Args))
	if sig.Variadic {
		for _, a := range e.Args {
			op, _, err := l.lowerExpr(a)
			if err != nil {
				return Operand{}, types.Void, err
			}
			args = append(args, op)
		}
	} else {
		if len(e.Args) != len(sig.Params) {
			return Operand{}, types.Void, l.fail(diag.LowerTypeMismatch, e.Span,
				"wrong number of arguments to %q: have %d, want %d",
				e.Name, len(e.Args), len(sig.Params))
		}
		for i, a := range e.Args {
			op, kind, err := l.lowerExpr(a)
			if err != nil {
				return Operand{}, types.Void, err
			}
			if op, err = l.coerce(op, kind, sig.Params[i], a.Span); err != nil {
				return Operand{}, types.Void, err
			}
			args = append(args, op)
		}
	}

	if sig.Ret == types.Void {
		l.emit(Instr{
			Kind: InstrCall,
			Dst:  NoReg,
			Type: TypeVoid,
			Call: CallInstr{Callee: sig.Name, Args: args},
		})
		return Operand{Kind: OperandNone, Type: TypeVoid}, types.Void, nil
	}
	val := l.define(TypeOf(sig.Ret), Instr{
		Kind: InstrCall,
		Call: CallInstr{Callee: sig.Name, Args: args},
	})
	return val, sig.Ret, nil
}

// lowerCond lowers an expression used as a branch condition or logical
// operand down to an i1: comparisons pass through, numeric values compare
// against zero.
func (l *funcLowerer) lowerCond(e *ast.Expr) (Operand, error) {
	val, kind, err := l.lowerExpr(e)
	if err != nil {
		return Operand{}, err
	}
	if kind == types.Bool {
		return val, nil
	}
	if !kind.IsNumeric() {
		return Operand{}, l.fail(diag.LowerTypeMismatch, e.Span,
			"%s value is not a valid condition", kind)
	}
	return l.define(TypeI1, Instr{
		Kind: InstrCmp,
		Cmp:  CmpInstr{Pred: PredNe, X: val, Y: ConstOperand(0, val.Type)},
	}), nil
}

// coerce brings val, known to have source kind from, to the kind want.
// Constants retype in place; registers widen with sext or narrow with
// trunc. Only numeric-to-numeric coercions exist.
func (l *funcLowerer) coerce(val Operand, from, want types.Kind, span source.Span) (Operand, error) {
	if from == want {
		return val, nil
	}
	if !from.IsNumeric() || !want.IsNumeric() {
		return Operand{}, l.fail(diag.LowerTypeMismatch, span,
			"cannot use %s value as %s", from, want)
	}
	wantType := TypeOf(want)
	if val.Type == wantType {
		// Same representation (int and float both lower to i32).
		return val, nil
	}
	if val.Kind == OperandConst {
		val.Type = wantType
		return val, nil
	}
	op := CastSext
	if wantType == TypeI8 {
		op = CastTrunc
	}
	return l.define(wantType, Instr{
		Kind: InstrCast,
		Cast: CastInstr{Op: op, Val: val},
	}), nil
}
