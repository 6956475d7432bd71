package ast

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeRaw(w io.Writer, doc Document) error {
	return msgpack.NewEncoder(w).Encode(doc)
}
