// Package symbols tracks local declarations during function lowering.
//
// Each function gets its own Table: a stack of lexical scopes mapping names
// to the stack slot holding the local. Declarations collide only within one
// scope; an inner scope may shadow an outer name.
package symbols

import (
	"sarac/internal/source"
	"sarac/internal/types"
)

// SlotID indexes a stack slot in the function being lowered.
type SlotID int32

// NoSlotID marks the absence of a slot.
const NoSlotID SlotID = -1

func (id SlotID) IsValid() bool { return id >= 0 }

// Symbol is one declared local or parameter.
type Symbol struct {
	Name string
	Type types.Kind
	Slot SlotID
	Span source.Span
}

type scope struct {
	names map[string]*Symbol
}

// Table is a per-function scope stack. Not safe for concurrent use; every
// lowered function owns its own table.
type Table struct {
	scopes []scope
}

// NewTable creates a table with the function-level scope already open.
func NewTable() *Table {
	t := &Table{}
	t.Push()
	return t
}

// Push opens a nested scope.
func (t *Table) Push() {
	t.scopes = append(t.scopes, scope{names: make(map[string]*Symbol)})
}

// Pop closes the innermost scope. The function-level scope stays open.
func (t *Table) Pop() {
	if len(t.scopes) <= 1 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of open scopes.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Declare binds name in the innermost scope. If the name is already bound in
// that same scope the previous symbol is returned with ok=false and the
// binding is left untouched.
func (t *Table) Declare(name string, ty types.Kind, slot SlotID, span source.Span) (*Symbol, bool) {
	cur := t.scopes[len(t.scopes)-1]
	if prev, exists := cur.names[name]; exists {
		return prev, false
	}
	sym := &Symbol{Name: name, Type: ty, Slot: slot, Span: span}
	cur.names[name] = sym
	return sym, true
}

// Lookup resolves name innermost-scope-first.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}
