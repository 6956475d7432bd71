package ast

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrBadVersion marks a document whose version does not match DocVersion.
	ErrBadVersion = errors.New("unsupported ast document version")
	// ErrNoModule marks a document that decoded but carries no module.
	ErrNoModule = errors.New("ast document has no module")
)

// DocVersion guards the wire format between the external parser and this
// tool. Bump on any incompatible change to the node structs.
const DocVersion = 1

// Document wraps a Module with the wire-format version.
type Document struct {
	Version int     `msgpack:"version"`
	Module  *Module `msgpack:"module"`
}

// EncodeDocument writes a versioned msgpack document for the module.
func EncodeDocument(w io.Writer, m *Module) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(Document{Version: DocVersion, Module: m}); err != nil {
		return fmt.Errorf("encode ast document: %w", err)
	}
	return nil
}

// DecodeDocument reads a versioned msgpack document and returns its module.
func DecodeDocument(r io.Reader) (*Module, error) {
	var doc Document
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ast document: %w", err)
	}
	if doc.Version != DocVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, doc.Version, DocVersion)
	}
	if doc.Module == nil {
		return nil, ErrNoModule
	}
	return doc.Module, nil
}
