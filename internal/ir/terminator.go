package ir

// TermKind discriminates the Terminator payload.
type TermKind uint8

const (
	// TermNone marks a block still under construction. Validation rejects
	// it; lowering must leave no block unterminated.
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
)

// Terminator is the single control transfer ending a block.
type Terminator struct {
	Kind TermKind

	Ret  ReturnTerm
	Goto GotoTerm
	If   IfTerm
}

// ReturnTerm leaves the function. HasValue is false for void returns.
type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// GotoTerm branches unconditionally.
type GotoTerm struct {
	Target BlockID
}

// IfTerm branches on an i1 condition. Then and Else may name the same block:
// a degenerate conditional produced by the source is kept as a genuine
// two-target branch, never collapsed.
type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

// Successors returns the blocks this terminator may transfer to.
func (t Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermIf:
		return []BlockID{t.If.Then, t.If.Else}
	}
	return nil
}
