// Package types defines the value model of the source language: the kinds a
// declaration or expression may carry and the numeric generalization rules
// lowering applies to mixed-kind operators.
package types

// Kind is a source-level type.
type Kind uint8

const (
	Void Kind = iota
	Bool
	Char
	Int
	Float
	// String exists only for literal arguments to the print built-in;
	// the language has no string variables or string operators.
	String
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return "invalid"
}

// IsNumeric reports whether k participates in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == Char || k == Int || k == Float
}

// IsIntegral reports whether k is a valid shift amount.
func (k Kind) IsIntegral() bool {
	return k == Char || k == Int
}

// numeric widening order: char < int < float
func rank(k Kind) int {
	switch k {
	case Char:
		return 1
	case Int:
		return 2
	case Float:
		return 3
	}
	return 0
}

// Generalize returns the common type of two operands of a numeric binary
// operator. The wider operand wins (char < int < float). Non-numeric
// operands do not generalize.
func Generalize(a, b Kind) (Kind, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Void, false
	}
	if rank(a) >= rank(b) {
		return a, true
	}
	return b, true
}
