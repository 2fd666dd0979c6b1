// Package cas defines the content-addressed storage client consumed by the
// Chronicler and the Chat Verifier. The CAS itself is an external
// collaborator (put/get/pin of immutable blocks keyed by content
// identifiers, assumed idempotent and retrying); this package only fixes
// the interface and ships two concrete implementations: an in-memory map
// for tests and an Azure Blob Storage backed client for deployments.
package cas

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get/Resolve when a CID is not present in the
// backing store.
var ErrNotFound = errors.New("cas: cid not found")

// CID is the opaque, self-describing content identifier returned by a CAS
// put. It is equatable, hashable, and printable; the string form is the
// multibase representation the CAS itself produced and is not reparsed for
// equality in-session.
type CID string

// String returns the multibase string form of the identifier.
func (c CID) String() string { return string(c) }

// Empty reports whether the CID is the zero value.
func (c CID) Empty() bool { return c == "" }

// Link is the tagged wire form of a cross-block reference, distinguishing a
// link from a raw string during JSON serialization: `{"/": "<cid-string>"}`.
type Link struct {
	Target CID
}

// NewLink wraps a CID as a link value.
func NewLink(c CID) Link { return Link{Target: c} }

// MarshalJSON implements the spec's self-describing link form.
func (l Link) MarshalJSON() ([]byte, error) {
	return []byte(`{"/":"` + string(l.Target) + `"}`), nil
}

// UnmarshalJSON parses the self-describing link form.
func (l *Link) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Target string `json:"/"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	l.Target = CID(wrapper.Target)
	return nil
}

// Client is the CAS surface the Chronicler and Chat Verifier depend on. Per
// spec.md §5 ("shared ownership of the CAS client") and §9, an
// implementation's state is expected to be thread-safe or cheaply
// duplicable; both concrete implementations in this package satisfy that by
// wrapping a shared pointer behind a small value type.
type Client interface {
	// Put stores bytes and returns their content identifier. Idempotent:
	// putting identical bytes twice yields the same CID.
	Put(ctx context.Context, data []byte) (CID, error)

	// Get dereferences a CID, optionally under a path suffix for
	// CAS backends that support UnixFS-style path resolution. An empty
	// suffix fetches the raw block.
	Get(ctx context.Context, id CID, pathSuffix string) ([]byte, error)

	// Pin instructs the CAS to retain a CID indefinitely. If recursive is
	// set, reachable children are retained as well.
	Pin(ctx context.Context, id CID, recursive bool) error

	// Resolve dereferences a mutable name to its current CID. Not used by
	// the core archival/verification flows but available per spec.md §6.
	Resolve(ctx context.Context, name string) (CID, error)
}
