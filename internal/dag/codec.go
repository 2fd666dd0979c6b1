package dag

import (
	"bytes"
	"encoding/json"

	"github.com/alxayo/chronicle/internal/bufpool"
)

// Encoded is a marshaled node paired with a Release function that returns
// its backing buffer to the package's bufpool. Callers must call Release
// once they are done with Bytes (typically right after the CAS put that
// consumes it).
type Encoded struct {
	Bytes   []byte
	Release func()
}

// EncodeNode marshals v (one of the node types in this package) into a
// bufpool-backed buffer rather than letting encoding/json allocate a fresh
// slice, keeping the Chronicler's per-flush CAS-put path allocation-free in
// steady state.
func EncodeNode(v any) (Encoded, error) {
	backing := bufpool.Get(4096)
	buf := bytes.NewBuffer(backing[:0])
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		bufpool.Put(backing)
		return Encoded{}, err
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return Encoded{
		Bytes:   out,
		Release: func() { bufpool.Put(backing) },
	}, nil
}

// DecodeNode unmarshals data into v. Provided for symmetry with EncodeNode
// and used by the round-trip tests; CAS gets that fetch tier nodes back for
// inspection go through this, not direct json.Unmarshal, so callers have a
// single choke point to add validation later.
func DecodeNode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
