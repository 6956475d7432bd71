package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lowering (the 1000 range is the only phase this compiler owns; the
	// source language is parsed by an external front end).
	LowerInfo                 Code = 1000
	LowerUnresolvedSymbol     Code = 1001
	LowerUnknownCallee        Code = 1002
	LowerDuplicateDeclaration Code = 1003
	LowerTypeMismatch         Code = 1004
	LowerUnreachableCode      Code = 1005
	LowerReturnMismatch       Code = 1006

	// Driver / input document errors.
	DrvInfo       Code = 2000
	DrvBadInput   Code = 2001
	DrvBadVersion Code = 2002
)

func (c Code) String() string {
	return fmt.Sprintf("L%04d", uint16(c))
}

// IsFatal reports whether diagnostics with this code abort module lowering.
// UnreachableCode is tolerated: the code after an already-terminated block is
// still lowered and emitted.
func (c Code) IsFatal() bool {
	switch c {
	case LowerUnreachableCode, LowerInfo, DrvInfo:
		return false
	}
	return true
}
